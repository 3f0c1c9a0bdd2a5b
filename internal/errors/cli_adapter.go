package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// Exit codes returned by the CLI, one per error category.
const (
	ExitOK            = 0
	ExitUnclassified  = 1
	ExitUsage         = 2
	ExitConfig        = 7
	ExitBroker        = 8
	ExitSerialization = 9
	ExitInternal      = 10
)

var exitCodes = map[ErrorCategory]int{
	CategoryValidation:    ExitUsage,
	CategoryConfig:        ExitConfig,
	CategoryTransport:     ExitBroker,
	CategorySerialization: ExitSerialization,
	CategoryInternal:      ExitInternal,
}

var hints = map[ErrorCategory]string{
	CategoryConfig:    "check the file passed with -c and the KOS_* environment",
	CategoryTransport: "is the NATS broker reachable?",
}

// CLIErrorAdapter turns command errors into a message and an exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

// ExitCodeFor maps err to the exit code of its category.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	te, ok := As(err)
	if !ok {
		return ExitUnclassified
	}
	if code, ok := exitCodes[te.Category]; ok {
		return code
	}
	return ExitUnclassified
}

// FormatError renders err for the terminal. Non-verbose output is one line:
// the message, the offending field or topic, and a hint per category.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	te, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return te.Error()
	}

	var b strings.Builder
	if te.Category != CategoryConfig && te.Category != CategoryValidation {
		b.WriteString(string(te.Category))
		b.WriteString(": ")
	}
	b.WriteString(te.Message)
	for _, key := range []string{"field", "topic", "robot_id", "broker"} {
		if v, ok := te.Context[key]; ok {
			fmt.Fprintf(&b, " [%s=%v]", key, v)
		}
	}
	if reason, ok := te.Context["reason"]; ok {
		fmt.Fprintf(&b, ": %v", reason)
	}
	if hint, ok := hints[te.Category]; ok {
		fmt.Fprintf(&b, " (%s)", hint)
	}
	return b.String()
}

// Report writes the formatted error to w, logs it when warranted, and
// returns the exit code. A nil err writes nothing and returns ExitOK.
func (a *CLIErrorAdapter) Report(err error, w io.Writer) int {
	if err == nil {
		return ExitOK
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	fmt.Fprintln(w, a.FormatError(err))
	return a.ExitCodeFor(err)
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	te, ok := As(err)
	if !ok {
		return true
	}
	return te.Category == CategoryInternal || te.Severity == SeverityFatal
}

func (a *CLIErrorAdapter) logError(err error) {
	te, ok := As(err)
	if !ok {
		a.logger.Error("Unclassified error", slog.Any("error", err))
		return
	}

	level := slog.LevelError
	if te.Severity == SeverityWarning {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{slog.String("category", string(te.Category))}
	keys := make([]string, 0, len(te.Context))
	for k := range te.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, te.Context[k]))
	}
	if te.Cause != nil {
		attrs = append(attrs, slog.String("cause", te.Cause.Error()))
	}
	a.logger.LogAttrs(context.Background(), level, te.Message, attrs...)
}
