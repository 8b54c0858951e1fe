// Package logger provides structured logging for the survival engine. All
// state-machine transitions (debuff/buff entry-exit, poison apply, ability
// trigger, level-up, death) should be traceable through this.
//
// Grounded on the teacher's internal/platform/logger/logger.go (three
// log.Logger instances + an Event helper), re-themed for this domain and
// extended with dustin/go-humanize for magnitude formatting,
// ncruces/go-strftime for the GameTime engine-clock timestamp helper, and
// mattn/go-isatty to gate ANSI color to real terminals.
package logger

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorWarn  = "\033[33m"
)

// Logger provides structured logging with context.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
	color       bool
}

// New creates a new logger instance. Color output is only enabled when out
// is a real terminal (via go-isatty), matching the teacher's policy of
// always writing plain, greppable log lines to redirected output.
func New(out io.Writer) *Logger {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	return &Logger{
		infoLogger:  log.New(out, "[SURVIVAL-INFO] ", log.Ldate|log.Ltime),
		warnLogger:  log.New(out, "[SURVIVAL-WARN] ", log.Ldate|log.Ltime),
		errorLogger: log.New(os.Stderr, "[SURVIVAL-ERROR] ", log.Ldate|log.Ltime),
		color:       color,
	}
}

// NewDefault creates a logger writing Info/Warn to stdout and Error to
// stderr, mirroring the teacher's NewLogger().
func NewDefault() *Logger {
	return New(os.Stdout)
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.infoLogger.Println(msg)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	l.warnLogger.Println(l.paint(colorWarn, msg))
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	l.errorLogger.Println(l.paint(colorRed, msg))
}

// Event logs a specific engine event (debuff/buff transition, poison
// application, ability trigger, level-up, death) for an actor.
func (l *Logger) Event(eventType string, actorID string, details string) {
	l.infoLogger.Printf("[EVENT:%s] Player:%s | %s", eventType, actorID, details)
}

// Chat logs a chat line the engine sent via the Host Adapter, colored by
// its "red"/"green" tag when writing to a terminal (§4.8 entry/exit chat).
func (l *Logger) Chat(playerID, text, colorTag string) {
	l.infoLogger.Printf("[CHAT:%s] %s", playerID, l.paint(l.colorTagFor(colorTag), text))
}

// GameTime formats a monotonic engine-tick timestamp (milliseconds since
// engine start) using go-strftime, replacing the teacher's hand-rolled
// two-digit rune arithmetic in ticker.go.
func GameTime(startedAt time.Time, nowMs int64) string {
	t := startedAt.Add(time.Duration(nowMs) * time.Millisecond)
	return strftime.Format("%Y-%m-%d %H:%M:%S", t)
}

// Magnitude renders a drain/damage/xp float using humanize, so log lines
// read "3.5" rather than Go's default float formatting noise for values
// like 3.4999999999999996.
func Magnitude(v float64) string {
	return humanize.FtoaWithDigits(v, 2)
}

// Comma renders an integer count with thousands separators, used for xp and
// cumulative totals in chat/event summaries.
func Comma(v int64) string {
	return humanize.Comma(v)
}

func (l *Logger) paint(color, msg string) string {
	if !l.color || color == "" {
		return msg
	}
	return color + msg + colorReset
}

func (l *Logger) colorTagFor(tag string) string {
	switch tag {
	case "green":
		return colorGreen
	case "red":
		return colorRed
	default:
		return ""
	}
}
