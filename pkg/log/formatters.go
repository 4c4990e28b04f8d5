package log

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// JSONFormatter formats log entries as one JSON object per line.
type JSONFormatter struct {
	TimestampFormat string
}

// Format formats the entry as JSON.
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	layout := time.RFC3339
	if f.TimestampFormat != "" {
		layout = f.TimestampFormat
	}

	data := make(map[string]interface{}, len(entry.Fields)+4)
	for k, v := range entry.Fields {
		data[k] = v
	}
	// standard keys win over fields of the same name
	data["timestamp"] = entry.Timestamp.Format(layout)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message
	if entry.Caller != "" {
		data["caller"] = entry.Caller
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// TextFormatter formats log entries for a terminal.
type TextFormatter struct {
	TimestampFormat  string
	DisableColors    bool
	DisableTimestamp bool
}

// NewTextFormatter creates a TextFormatter with colors enabled.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{TimestampFormat: "2006-01-02T15:04:05.000"}
}

// forcedColor ignores the terminal detection done by fatih/color; DisableColors
// decides instead.
func forcedColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

var (
	dimColor   = forcedColor(color.FgHiBlack)
	keyColor   = forcedColor(color.FgCyan)
	levelColor = map[Level]*color.Color{
		DebugLevel: forcedColor(color.FgBlue),
		InfoLevel:  forcedColor(color.FgGreen),
		WarnLevel:  forcedColor(color.FgYellow),
		ErrorLevel: forcedColor(color.FgRed),
		FatalLevel: forcedColor(color.FgRed, color.Bold),
	}
	levelTag = map[Level]string{
		DebugLevel: "DBG",
		InfoLevel:  "INF",
		WarnLevel:  "WRN",
		ErrorLevel: "ERR",
		FatalLevel: "FTL",
	}
)

// Format formats the entry as "time LVL message key=value ...". Fields are sorted
// by key so lines are stable.
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	paint := func(c *color.Color, s string) string {
		if f.DisableColors || c == nil {
			return s
		}
		return c.Sprint(s)
	}

	var b strings.Builder
	if !f.DisableTimestamp {
		layout := f.TimestampFormat
		if layout == "" {
			layout = time.RFC3339
		}
		b.WriteString(paint(dimColor, entry.Timestamp.Format(layout)))
		b.WriteByte(' ')
	}

	tag, ok := levelTag[entry.Level]
	if !ok {
		tag = entry.Level.String()
	}
	b.WriteString(paint(levelColor[entry.Level], tag))
	if entry.Caller != "" {
		b.WriteString(" " + paint(dimColor, "("+entry.Caller+")"))
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", paint(keyColor, k), entry.Fields[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}
