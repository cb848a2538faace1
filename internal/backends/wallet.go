package backends

import "context"

// WalletBackend serves wallet.create_pass: a mobile-wallet pass for a
// booking confirmation.
type WalletBackend struct{}

func (b *WalletBackend) Tools() []string {
	return []string{"wallet.create_pass"}
}

func (b *WalletBackend) Handle(ctx context.Context, method string, payload map[string]any) (map[string]any, error) {
	if method != "create_pass" {
		return nil, unknownMethod("wallet", method)
	}
	title, _ := payload["title"].(string)
	if title == "" {
		title = "Trip Pass"
	}
	return mockResponse(map[string]any{
		"pass_id": "pass_mock_001",
		"title":   title,
		"url":     "https://wallet.example.com/p/pass_mock_001",
		"status":  "issued",
	}), nil
}
