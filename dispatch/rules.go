// Package dispatch implements the tag dispatch tables: ordered,
// pattern-matched rule sets mapping tag identifiers to textual
// replacement or structured event emission, with parent-configuration
// fallback.
package dispatch

import (
	"strings"

	"github.com/dhamidi/blockfile/convert"
	"github.com/dhamidi/blockfile/tag"
)

// ReplaceFunc resolves a tag to replacement text.
type ReplaceFunc func(t tag.Data) string

// ContextReplaceFunc resolves a tag to replacement text using the
// caller-supplied parse context.
type ContextReplaceFunc func(t tag.Data, ctx any) string

// TryReplaceFunc may decline a match, in which case resolution falls
// through to the inherited configuration.
type TryReplaceFunc func(t tag.Data, ctx any) (string, bool)

// EventFunc adjusts an event before it is emitted.
type EventFunc func(ev *Event, ctx any)

// Event is the structured result of processing one tag occurrence.
type Event struct {
	// Type identifies the event; by default the matched rule's
	// identifier, or its closing identifier for closing tags.
	Type string

	// Value carries the typed payload, if the rule declares one;
	// Value.Kind is convert.Invalid otherwise.
	Value convert.Value

	// Tag is the occurrence that produced the event.
	Tag tag.Data
}

// ReplaceRule maps matching tags to replacement text. All resolution
// members are optional; the first applicable one wins: the try
// callback, then (for closing tags) the closing text or callback, then
// the general text or callbacks, then the empty string.
type ReplaceRule struct {
	pattern  string
	wildcard bool

	try       TryReplaceFunc
	text      string
	hasText   bool
	fn        ReplaceFunc
	ctxFn     ContextReplaceFunc
	closeText string
	hasClose  bool
	closeFn   ReplaceFunc
}

// WithText sets constant replacement text.
func (r *ReplaceRule) WithText(text string) *ReplaceRule {
	r.text = text
	r.hasText = true
	return r
}

// WithFunc sets a replacement callback.
func (r *ReplaceRule) WithFunc(fn ReplaceFunc) *ReplaceRule {
	r.fn = fn
	return r
}

// WithContextFunc sets a context-aware replacement callback.
func (r *ReplaceRule) WithContextFunc(fn ContextReplaceFunc) *ReplaceRule {
	r.ctxFn = fn
	return r
}

// WithTry sets a callback that may decline the match.
func (r *ReplaceRule) WithTry(fn TryReplaceFunc) *ReplaceRule {
	r.try = fn
	return r
}

// WithCloseText sets constant replacement text for closing tags.
func (r *ReplaceRule) WithCloseText(text string) *ReplaceRule {
	r.closeText = text
	r.hasClose = true
	return r
}

// WithCloseFunc sets a replacement callback for closing tags.
func (r *ReplaceRule) WithCloseFunc(fn ReplaceFunc) *ReplaceRule {
	r.closeFn = fn
	r.hasClose = true
	return r
}

func (r *ReplaceRule) resolve(t tag.Data, ctx any) string {
	if t.IsClosing() && r.hasClose {
		if r.closeFn != nil {
			return r.closeFn(t)
		}
		return r.closeText
	}
	switch {
	case r.hasText:
		return r.text
	case r.fn != nil:
		return r.fn(t)
	case r.ctxFn != nil:
		return r.ctxFn(t, ctx)
	}
	return ""
}

// EventRule maps matching tags to structured events.
type EventRule struct {
	pattern  string
	wildcard bool

	eventType   string
	closeType   string
	hasClose    bool
	payloadKind convert.Kind
	defaultVal  convert.Value
	fn          EventFunc
	closeFn     EventFunc
}

// WithCloseType sets a distinct event type for closing tags.
func (r *EventRule) WithCloseType(eventType string) *EventRule {
	r.closeType = eventType
	r.hasClose = true
	return r
}

// WithStringPayload declares a string payload with the given default.
func (r *EventRule) WithStringPayload(def string) *EventRule {
	r.payloadKind = convert.String
	r.defaultVal = convert.StringValue(def)
	return r
}

// WithFloatPayload declares a float payload with the given default,
// used when the raw payload does not parse.
func (r *EventRule) WithFloatPayload(def float64) *EventRule {
	r.payloadKind = convert.Float
	r.defaultVal = convert.FloatValue(def)
	return r
}

// WithBoolPayload declares a bool payload with the given default.
func (r *EventRule) WithBoolPayload(def bool) *EventRule {
	r.payloadKind = convert.Bool
	r.defaultVal = convert.BoolValue(def)
	return r
}

// WithFunc sets a callback invoked on the built event.
func (r *EventRule) WithFunc(fn EventFunc) *EventRule {
	r.fn = fn
	return r
}

// WithCloseFunc sets a callback invoked on events built from closing
// tags.
func (r *EventRule) WithCloseFunc(fn EventFunc) *EventRule {
	r.closeFn = fn
	r.hasClose = true
	return r
}

func (r *EventRule) resolve(t tag.Data, ctx any, conv convert.Service) Event {
	ev := Event{Type: r.eventType, Tag: t}
	closing := t.IsClosing() && r.hasClose
	if closing && r.closeType != "" {
		ev.Type = r.closeType
	}
	if r.payloadKind != convert.Invalid {
		ev.Value = r.defaultVal
		if t.Body != "" {
			if v, ok := conv.Convert(t.Body, r.payloadKind, ctx); ok {
				ev.Value = v
			}
		}
	}
	if closing && r.closeFn != nil {
		r.closeFn(&ev, ctx)
	} else if r.fn != nil {
		r.fn(&ev, ctx)
	}
	return ev
}

// ruleKey normalizes identifiers and patterns: matching is
// case-insensitive.
func ruleKey(id string) string {
	return strings.ToLower(id)
}

// splitPattern recognizes trailing-asterisk wildcard patterns and
// returns the literal prefix.
func splitPattern(pattern string) (prefix string, wildcard bool) {
	pattern = ruleKey(pattern)
	if strings.HasSuffix(pattern, "*") {
		return pattern[:len(pattern)-1], true
	}
	return pattern, false
}
