package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockPicker/internal/collector"
	"StockPicker/internal/report"
)

// maxMessageLen is the Telegram limit on message text, in characters.
const maxMessageLen = 4096

// FormatReport renders res as HTML messages with the tables in <pre> blocks.
// Long reports are split on line boundaries so each message stays under the limit.
func FormatReport(res *collector.Result) ([]string, error) {
	body, err := report.String(res, report.FormatTable)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	when := res.FinishedAt
	if when.IsZero() {
		when = time.Now()
	}
	header := fmt.Sprintf("📊 <b>StockPicker</b> | %s | %s\n", when.Format("2006-01-02 15:04"), html.EscapeString(res.Provider))

	const open, closing = "<pre>", "</pre>"
	budget := maxMessageLen - len([]rune(header)) - len(open) - len(closing)

	var (
		msgs  []string
		chunk strings.Builder
		size  int
	)
	flush := func() {
		if chunk.Len() == 0 {
			return
		}
		prefix := ""
		if len(msgs) == 0 {
			prefix = header
		}
		msgs = append(msgs, prefix+open+chunk.String()+closing)
		chunk.Reset()
		size = 0
	}
	for _, line := range strings.SplitAfter(body, "\n") {
		escaped := escapeLine(line, budget)
		n := len([]rune(escaped))
		if size+n > budget {
			flush()
		}
		chunk.WriteString(escaped)
		size += n
	}
	flush()
	if len(msgs) == 0 {
		msgs = append(msgs, header)
	}
	return msgs, nil
}

// escapeLine HTML-escapes line, cutting it before the first character whose
// escaped form would exceed limit runes. Entities are never split.
func escapeLine(line string, limit int) string {
	escaped := html.EscapeString(line)
	if len([]rune(escaped)) <= limit {
		return escaped
	}
	var (
		b    strings.Builder
		size int
	)
	for _, r := range line {
		e := html.EscapeString(string(r))
		n := len([]rune(e))
		if size+n > limit {
			break
		}
		b.WriteString(e)
		size += n
	}
	return b.String()
}
