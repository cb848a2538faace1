package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/tripsmith/tripsmith/internal/dispatch"
	"github.com/tripsmith/tripsmith/internal/export"
	"github.com/tripsmith/tripsmith/internal/observability"
	"github.com/tripsmith/tripsmith/internal/plan"
	"github.com/tripsmith/tripsmith/internal/toolrouter"
)

const (
	// DefaultMaxRounds bounds the tool-call loop for one user turn.
	DefaultMaxRounds = 5

	// historyLimit caps how many stored messages are replayed to the model.
	historyLimit = 40

	// resultLimit caps how much of a tool result is folded back into the
	// conversation. Backends can return arbitrarily large payloads.
	resultLimit = 2000

	budgetReply = "I'm still working on this but ran out of steps. Could you simplify your request?"
	errorReply  = "I ran into an issue processing that. Could you try rephrasing?"
)

// Store is the persistence surface the orchestrator needs: plans plus
// conversation history. *store.Store satisfies it.
type Store interface {
	Create(p *plan.Plan) error
	Get(userID, planID string) (*plan.Plan, error)
	ListByUser(userID string) ([]*plan.Plan, error)
	UpdateStep(userID, planID, stepID string, updates map[string]any) (bool, error)
	AddStep(userID, planID string, st *plan.Step) (bool, error)
	RemoveStep(userID, planID, stepID string) (bool, error)
	SetStatus(planID string, status plan.Status) error
	SetStepResult(planID, stepID string, status plan.StepStatus, result map[string]any) error

	AddMessage(conversationID, role, content string) error
	GetHistory(conversationID string, limit int) ([]llms.MessageContent, error)
	HasMessages(conversationID string) (bool, error)
}

// ToolCaller is the slice of the tool router the orchestrator needs.
type ToolCaller interface {
	Call(ctx context.Context, tool string, payload map[string]any) (map[string]any, error)
}

// ToolTrace summarizes one tool invocation made during a turn.
type ToolTrace struct {
	Tool        string `json:"tool"`
	OK          bool   `json:"ok"`
	LatencyMS   int64  `json:"latency_ms"`
	PayloadHash string `json:"payload_hash"`
	Error       string `json:"error,omitempty"`
}

// Reply is the outcome of one conversational turn.
type Reply struct {
	Text           string      `json:"text"`
	ConversationID string      `json:"conversation_id"`
	Intent         Intent      `json:"intent"`
	Traces         []ToolTrace `json:"traces,omitempty"`
}

// Orchestrator runs the conversation loop: it feeds history to the model,
// executes the tool calls the model makes, folds the results back in, and
// stops when the model answers in plain text or the round budget runs out.
type Orchestrator struct {
	Model      llms.Model
	Router     ToolCaller
	Dispatcher *dispatch.Dispatcher
	Exporter   *export.Exporter
	Store      Store
	Prompts    *PromptManager
	Logger     *observability.Logger
	MaxRounds  int
	AutoExport bool

	convLocks *keyedMutex
	planLocks *keyedMutex
}

func New(model llms.Model, router ToolCaller, st Store, prompts *PromptManager, logger *observability.Logger) *Orchestrator {
	return &Orchestrator{
		Model:      model,
		Router:     router,
		Dispatcher: dispatch.New(router),
		Exporter:   export.New(router, export.DefaultRetryLimit),
		Store:      st,
		Prompts:    prompts,
		Logger:     logger,
		MaxRounds:  DefaultMaxRounds,
		convLocks:  newKeyedMutex(),
		planLocks:  newKeyedMutex(),
	}
}

// Chat handles one user message. A blank conversationID starts a fresh
// conversation. Turns on the same conversation are serialized; a model or
// loop failure comes back as a polite reply, not an error, so gateways can
// always show the user something.
func (o *Orchestrator) Chat(ctx context.Context, userID, conversationID, message string) (Reply, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	unlock := o.convLocks.Lock(conversationID)
	defer unlock()

	o.injectContext(userID, conversationID)

	if err := o.Store.AddMessage(conversationID, "human", message); err != nil {
		return Reply{}, fmt.Errorf("failed to record message: %w", err)
	}

	text, traces, err := o.runLoop(ctx, userID, conversationID)
	if err != nil {
		log.Printf("Chat loop failed for conversation %s: %v", conversationID, err)
		text = errorReply
	}
	if err := o.Store.AddMessage(conversationID, "ai", text); err != nil {
		log.Printf("Failed to record reply for conversation %s: %v", conversationID, err)
	}

	return Reply{
		Text:           text,
		ConversationID: conversationID,
		Intent:         classifyIntent(message, traces),
		Traces:         traces,
	}, nil
}

// Handle adapts Chat for message gateways that only need the text.
func (o *Orchestrator) Handle(ctx context.Context, userID, conversationID, message string) (string, error) {
	reply, err := o.Chat(ctx, userID, conversationID, message)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// injectContext seeds a brand-new conversation with the user's newest open
// itinerary, so "move my dinner to 8pm" works without the user pasting the
// plan back in. Runs at most once per conversation: any existing history,
// including a previous injection, suppresses it.
func (o *Orchestrator) injectContext(userID, conversationID string) {
	has, err := o.Store.HasMessages(conversationID)
	if err != nil || has {
		return
	}
	digest := o.openPlanDigest(userID)
	if digest == "" {
		return
	}
	o.Store.AddMessage(conversationID, "human", digest)
	o.Store.AddMessage(conversationID, "ai", "Got it. I have your current itinerary in front of me. What would you like to do?")
}

func (o *Orchestrator) openPlanDigest(userID string) string {
	plans, err := o.Store.ListByUser(userID)
	if err != nil {
		return ""
	}
	for _, header := range plans {
		if header.Status.Terminal() {
			continue
		}
		p, err := o.Store.Get(userID, header.ID)
		if err != nil || p == nil {
			continue
		}
		data, err := json.Marshal(p)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("My current itinerary, for context:\n%s\nUse it when I refer to my trip or its steps. Modify it with itinerary.update_step, itinerary.add_step or itinerary.remove_step, and run it with itinerary.execute once I confirm.", data)
	}
	return ""
}

func (o *Orchestrator) runLoop(ctx context.Context, userID, conversationID string) (string, []ToolTrace, error) {
	history, err := o.Store.GetHistory(conversationID, historyLimit)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load history: %w", err)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, o.Prompts.SystemPrompt()),
	}
	messages = append(messages, history...)

	tools := Catalog()

	// The last two rounds run without tools so the model is forced to
	// answer instead of chaining lookups until the budget is gone.
	toolRounds := o.MaxRounds - 2
	if toolRounds < 1 {
		toolRounds = o.MaxRounds
	}

	var traces []ToolTrace
	for round := 1; round <= o.MaxRounds; round++ {
		var opts []llms.CallOption
		if round <= toolRounds {
			opts = append(opts, llms.WithTools(tools))
		}

		resp, err := o.Model.GenerateContent(ctx, messages, opts...)
		if err != nil {
			return "", traces, err
		}
		if len(resp.Choices) == 0 {
			return "", traces, fmt.Errorf("model returned no choices")
		}
		choice := resp.Choices[0]
		if o.Logger != nil {
			o.Logger.LogLLM(conversationID, round, choice.Content, choice.ToolCalls)
		}

		if len(choice.ToolCalls) == 0 {
			if choice.Content == "" {
				break
			}
			return choice.Content, traces, nil
		}

		var called, results []string
		for _, tc := range choice.ToolCalls {
			name := tc.FunctionCall.Name
			var args map[string]any
			if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil {
				args = map[string]any{}
			}
			if o.Logger != nil {
				o.Logger.LogToolCall(conversationID, name, tc.FunctionCall.Arguments)
			}

			start := time.Now()
			var result map[string]any
			var callErr error
			if strings.HasPrefix(name, "itinerary.") {
				result, callErr = o.handlePlanTool(ctx, userID, conversationID, name, args)
			} else {
				args["user_id"] = userID
				result, callErr = o.Router.Call(ctx, name, args)
			}

			trace := ToolTrace{
				Tool:        name,
				OK:          callErr == nil,
				LatencyMS:   time.Since(start).Milliseconds(),
				PayloadHash: toolrouter.Fingerprint(args),
			}
			var rendered string
			if callErr != nil {
				trace.Error = callErr.Error()
				rendered = fmt.Sprintf("%s failed: %v", name, callErr)
			} else {
				rendered = fmt.Sprintf("%s -> %s", name, compactJSON(result))
			}
			traces = append(traces, trace)
			called = append(called, name)
			results = append(results, rendered)
		}

		// Fold this round into both the stored history and the working
		// message list, so later turns see what happened mid-loop.
		assistantTurn := fmt.Sprintf("[Called: %s]", strings.Join(called, ", "))
		userTurn := "Tool results:\n" + strings.Join(results, "\n")
		o.Store.AddMessage(conversationID, "ai", assistantTurn)
		o.Store.AddMessage(conversationID, "human", userTurn)
		messages = append(messages,
			llms.TextParts(llms.ChatMessageTypeAI, assistantTurn),
			llms.TextParts(llms.ChatMessageTypeHuman, userTurn),
		)
	}

	return budgetReply, traces, nil
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	s := string(data)
	if len(s) > resultLimit {
		s = s[:resultLimit] + "...(truncated)"
	}
	return s
}
