package observability

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/term"
)

var startTime = time.Now()

const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
	colorBold  = "\033[1m"
)

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// PrintBanner prints the startup banner with build/runtime info.
func PrintBanner(mode string) {
	width := termWidth()
	if width > 72 {
		width = 72
	}
	line := strings.Repeat("─", width)

	fmt.Println(colorCyan + line + colorReset)
	fmt.Printf("%s%s  TRIPSMITH%s: conversational travel concierge\n", colorBold, colorCyan, colorReset)
	fmt.Printf("  go: %s   os: %s/%s   tool mode: %s\n",
		runtime.Version(), runtime.GOOS, runtime.GOARCH, mode)
	fmt.Println(colorCyan + line + colorReset)
}

// Uptime returns the time elapsed since process start.
func Uptime() time.Duration {
	return time.Since(startTime).Round(time.Second)
}
