// Package genkit provides code generation utilities.
package genkit

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ANSI color codes
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorGray    = "\033[90m"
)

// Emoji for log levels
const (
	EmojiInfo  = "📦"
	EmojiWarn  = "⚠️"
	EmojiError = "❌"
	EmojiDone  = "✅"
	EmojiFind  = "🔍"
	EmojiWrite = "📝"
	EmojiLoad  = "📂"
)

// Logger provides styled logging for code generators.
type Logger struct {
	w       io.Writer
	noColor bool
}

// NewLogger creates a new Logger writing to stdout.
func NewLogger() *Logger {
	return &Logger{w: os.Stdout}
}

// NewLoggerWithWriter creates a new Logger with custom writer.
func NewLoggerWithWriter(w io.Writer) *Logger {
	return &Logger{w: w}
}

// SetNoColor disables color output.
func (l *Logger) SetNoColor(noColor bool) *Logger {
	l.noColor = noColor
	return l
}

// logf prints one tagged line: emoji, colored [LEVEL] tag, highlighted message.
func (l *Logger) logf(emoji, tag, tagColor, format string, args ...any) {
	_, _ = fmt.Fprintf(l.w, "%s %s%s%s %s\n",
		emoji, l.color(tagColor), tag, l.color(colorReset), l.format(format, args...))
}

// format applies automatic highlighting to args based on type.
func (l *Logger) format(format string, args ...any) string {
	highlighted := make([]any, len(args))
	for i, arg := range args {
		highlighted[i] = l.highlight(arg)
	}
	return fmt.Sprintf(format, highlighted...)
}

// highlight applies color based on argument type.
func (l *Logger) highlight(arg any) any {
	switch v := arg.(type) {
	case GoImportPath:
		return l.quote(string(v))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		if l.noColor {
			return arg
		}
		return fmt.Sprintf("%s%v%s", colorYellow, v, colorReset)
	case string:
		// Paths and dotted names get quoted, identifiers get cyan
		if strings.Contains(v, "/") || (strings.Contains(v, ".") && !strings.Contains(v, " ")) {
			return l.quote(v)
		}
		if !l.noColor && !strings.Contains(v, " ") && len(v) > 0 && v[0] >= 'A' && v[0] <= 'Z' {
			return fmt.Sprintf("%s%s%s", colorCyan, v, colorReset)
		}
		return v
	default:
		return arg
	}
}

// quote wraps a path-like value in quotes, magenta when color is on.
func (l *Logger) quote(v string) string {
	if l.noColor {
		return fmt.Sprintf("'%s'", v)
	}
	return fmt.Sprintf("%s'%s'%s", colorMagenta, v, colorReset)
}

// color returns the color code if color is enabled, empty string otherwise.
func (l *Logger) color(c string) string {
	if l.noColor {
		return ""
	}
	return c
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...any) {
	l.logf(EmojiInfo+" ", "[INFO]", colorBlue, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.logf(EmojiWarn+" ", "[WARN]", colorYellow, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.logf(EmojiError, "[ERROR]", colorRed, format, args...)
}

// Done logs a completion message.
func (l *Logger) Done(format string, args ...any) {
	l.logf(EmojiDone+" ", "[DONE]", colorGreen, format, args...)
}

// Find logs a discovery message.
func (l *Logger) Find(format string, args ...any) {
	l.logf(EmojiFind+" ", "[FIND]", colorCyan, format, args...)
}

// Write logs a file write message.
func (l *Logger) Write(format string, args ...any) {
	l.logf(EmojiWrite, "[WRITE]", colorGreen, format, args...)
}

// Load logs a loading message.
func (l *Logger) Load(format string, args ...any) {
	l.logf(EmojiLoad+" ", "[LOAD]", colorBlue, format, args...)
}

// Item logs an indented item under the previous log entry.
func (l *Logger) Item(format string, args ...any) {
	_, _ = fmt.Fprintf(l.w, "           %s•%s %s\n", l.color(colorGray), l.color(colorReset), l.format(format, args...))
}
