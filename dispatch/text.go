package dispatch

import (
	"strings"

	"github.com/dhamidi/blockfile/tag"
)

// ReplaceText scans text for inline tags per the delimiter rules and
// replaces each matched tag with its resolved text. Tags with no
// matching rule are kept verbatim; an unterminated tag marker is
// treated as plain text.
func (c *Config) ReplaceText(text string, rules tag.Delimiters, ctx any) string {
	var out strings.Builder
	walkTags(text, rules, func(plain string) {
		out.WriteString(plain)
	}, func(raw string, t tag.Data) {
		if replacement, ok := c.TryReplace(t, ctx); ok {
			out.WriteString(replacement)
		} else {
			out.WriteString(raw)
		}
	})
	return out.String()
}

// ProcessText scans text for inline tags and resolves each through the
// event rules. It returns the text with all recognized tags removed,
// plus the emitted events in document order. Unrecognized tags stay in
// the text.
func (c *Config) ProcessText(text string, rules tag.Delimiters, ctx any) (string, []Event) {
	var out strings.Builder
	var events []Event
	walkTags(text, rules, func(plain string) {
		out.WriteString(plain)
	}, func(raw string, t tag.Data) {
		if ev, ok := c.TryProcess(t, ctx); ok {
			events = append(events, ev)
		} else {
			out.WriteString(raw)
		}
	})
	return out.String(), events
}

// walkTags splits text into plain-text runs and tag occurrences. The
// raw argument to onTag includes the surrounding tag markers.
func walkTags(text string, rules tag.Delimiters, onPlain func(string), onTag func(string, tag.Data)) {
	open, closing := rules.TagOpen, rules.TagClose
	if open == "" || closing == "" {
		onPlain(text)
		return
	}
	for len(text) > 0 {
		start := strings.Index(text, open)
		if start < 0 {
			onPlain(text)
			return
		}
		end := strings.Index(text[start+len(open):], closing)
		if end < 0 {
			onPlain(text)
			return
		}
		end += start + len(open)
		if start > 0 {
			onPlain(text[:start])
		}
		raw := text[start : end+len(closing)]
		onTag(raw, tag.Parse(raw, rules))
		text = text[end+len(closing):]
	}
}
