package dispatch

import (
	"errors"
	"sort"
	"strings"

	"github.com/dhamidi/blockfile/convert"
	"github.com/dhamidi/blockfile/tag"
)

// ErrLocked is returned when a rule is added to a locked configuration.
var ErrLocked = errors.New("dispatch: configuration is locked")

// Config is an ordered rule set for tag dispatch. It is mutable during
// a build phase and locked before parsing starts; a locked Config is
// safe to share between parses. Lookups that miss locally are delegated
// to the parent configuration, if any.
type Config struct {
	parent *Config
	conv   convert.Service

	replace     map[string]*ReplaceRule
	replaceWild []*ReplaceRule
	events      map[string]*EventRule
	eventsWild  []*EventRule

	locked bool
}

// NewConfig creates an empty configuration chained to parent. A nil
// parent means lookups terminate here.
func NewConfig(parent *Config) *Config {
	return &Config{
		parent:  parent,
		conv:    convert.Default,
		replace: make(map[string]*ReplaceRule),
		events:  make(map[string]*EventRule),
	}
}

// SetConverter replaces the conversion service used for event payloads.
func (c *Config) SetConverter(conv convert.Service) error {
	if c.locked {
		return ErrLocked
	}
	c.conv = conv
	return nil
}

// AddReplace registers a replace rule for the given identifier or
// trailing-asterisk wildcard pattern. Matching is case-insensitive; a
// later registration for the same pattern overrides the earlier one.
func (c *Config) AddReplace(pattern string) (*ReplaceRule, error) {
	if c.locked {
		return nil, ErrLocked
	}
	prefix, wildcard := splitPattern(pattern)
	r := &ReplaceRule{pattern: prefix, wildcard: wildcard}
	if wildcard {
		c.replaceWild = insertByLength(c.replaceWild, r, func(r *ReplaceRule) string { return r.pattern })
	} else {
		c.replace[prefix] = r
	}
	return r, nil
}

// AddReplaceText registers a constant-text replace rule.
func (c *Config) AddReplaceText(pattern, text string) (*ReplaceRule, error) {
	r, err := c.AddReplace(pattern)
	if err != nil {
		return nil, err
	}
	return r.WithText(text), nil
}

// AddEvent registers an event rule mapping matching tags to the given
// event type.
func (c *Config) AddEvent(pattern, eventType string) (*EventRule, error) {
	if c.locked {
		return nil, ErrLocked
	}
	prefix, wildcard := splitPattern(pattern)
	r := &EventRule{pattern: prefix, wildcard: wildcard, eventType: eventType}
	if wildcard {
		c.eventsWild = insertByLength(c.eventsWild, r, func(r *EventRule) string { return r.pattern })
	} else {
		c.events[prefix] = r
	}
	return r, nil
}

// Lock freezes the configuration. Rule additions after Lock fail with
// ErrLocked; this guards against rule tables changing while a parse
// using them is in flight.
func (c *Config) Lock() {
	c.locked = true
}

// Locked reports whether the configuration has been locked.
func (c *Config) Locked() bool { return c.locked }

// TryReplace resolves a tag to replacement text. It reports false when
// neither this configuration nor any parent has a matching rule, or
// when every matching try-callback declined.
func (c *Config) TryReplace(t tag.Data, ctx any) (string, bool) {
	if r := findRule(c.replace, c.replaceWild, t.ID, func(r *ReplaceRule) (string, bool) { return r.pattern, r.wildcard }); r != nil {
		if r.try != nil {
			if text, ok := r.try(t, ctx); ok {
				return text, true
			}
			// Declined: fall through to the inherited configuration.
		} else {
			return r.resolve(t, ctx), true
		}
	}
	if c.parent != nil {
		return c.parent.TryReplace(t, ctx)
	}
	return "", false
}

// TryProcess resolves a tag to a structured event. It reports false
// when no rule in the chain matches.
func (c *Config) TryProcess(t tag.Data, ctx any) (Event, bool) {
	if r := findRule(c.events, c.eventsWild, t.ID, func(r *EventRule) (string, bool) { return r.pattern, r.wildcard }); r != nil {
		return r.resolve(t, ctx, c.conv), true
	}
	if c.parent != nil {
		return c.parent.TryProcess(t, ctx)
	}
	return Event{}, false
}

// findRule looks up an exact match first, then the longest matching
// wildcard prefix. Wildcard slices are kept sorted longest-first, so
// the first hit is the most specific.
func findRule[R any](exact map[string]*R, wild []*R, id string, meta func(*R) (string, bool)) *R {
	key := ruleKey(id)
	if r, ok := exact[key]; ok {
		return r
	}
	for _, r := range wild {
		prefix, _ := meta(r)
		if strings.HasPrefix(key, prefix) {
			return r
		}
	}
	return nil
}

func insertByLength[R any](rules []*R, r *R, pattern func(*R) string) []*R {
	rules = append(rules, r)
	sort.SliceStable(rules, func(i, j int) bool {
		return len(pattern(rules[i])) > len(pattern(rules[j]))
	})
	return rules
}
