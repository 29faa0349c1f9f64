package initializer

import (
	"io"
	"log/slog"

	"github.com/amirasaad/mobank/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	infoTxtColor  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warnTxtColor  = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	errorTxtColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	debugTxtColor = lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}
	keyTxtColor   = lipgloss.AdaptiveColor{Light: "#0077B6", Dark: "#48CAE4"}
)

var formatters = map[string]log.Formatter{
	"json":   log.JSONFormatter,
	"text":   log.TextFormatter,
	"logfmt": log.LogfmtFormatter,
}

// highlighted are the attributes operators grep for when reconciling money
// movements.
var highlighted = []string{"userID", "accountID", "transactionID", "reference", "code", "kind", "amount"}

func styles() *log.Styles {
	s := log.DefaultStyles()
	levels := []struct {
		level log.Level
		icon  string
		color lipgloss.AdaptiveColor
	}{
		{log.ErrorLevel, "❌", errorTxtColor},
		{log.WarnLevel, "⚠️", warnTxtColor},
		{log.InfoLevel, "ℹ️", infoTxtColor},
		{log.DebugLevel, "🐛", debugTxtColor},
	}
	for _, l := range levels {
		s.Levels[l.level] = lipgloss.NewStyle().
			SetString(l.icon).
			Bold(true).
			Padding(0, 1).
			Foreground(l.color)
	}

	s.Keys["error"] = lipgloss.NewStyle().Foreground(errorTxtColor)
	s.Values["error"] = lipgloss.NewStyle().Bold(true)
	for _, key := range highlighted {
		s.Keys[key] = lipgloss.NewStyle().Foreground(keyTxtColor)
		s.Values[key] = lipgloss.NewStyle().Bold(true)
	}
	return s
}

// setupLogger builds the process logger from cfg and installs it as the
// slog default. Unknown formats fall back to text.
func setupLogger(cfg *config.Log, w io.Writer) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text"}
	}
	formatter := log.TextFormatter
	if f, ok := formatters[cfg.Format]; ok {
		formatter = f
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(styles())

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
