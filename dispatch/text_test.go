package dispatch

import (
	"testing"

	"github.com/dhamidi/blockfile/convert"
	"github.com/dhamidi/blockfile/tag"
)

func TestReplaceText(t *testing.T) {
	c := NewConfig(nil)
	c.AddReplaceText("nl", "\n")
	r, _ := c.AddReplace("name")
	r.WithContextFunc(func(d tag.Data, ctx any) string {
		return ctx.(string)
	})
	c.Lock()

	got := c.ReplaceText("Hello {name}!{nl}Bye {name}.", delims, "Anna")
	want := "Hello Anna!\nBye Anna."
	if got != want {
		t.Errorf("ReplaceText = %q, want %q", got, want)
	}
}

func TestReplaceTextKeepsUnknownTags(t *testing.T) {
	c := NewConfig(nil)
	c.AddReplaceText("known", "K")
	c.Lock()

	got := c.ReplaceText("a {known} b {unknown=1} c", delims, nil)
	want := "a K b {unknown=1} c"
	if got != want {
		t.Errorf("ReplaceText = %q, want %q", got, want)
	}
}

func TestReplaceTextUnterminatedMarker(t *testing.T) {
	c := NewConfig(nil)
	c.AddReplaceText("x", "!")
	c.Lock()

	got := c.ReplaceText("before {x} after {oops", delims, nil)
	want := "before ! after {oops"
	if got != want {
		t.Errorf("ReplaceText = %q, want %q", got, want)
	}
}

func TestProcessText(t *testing.T) {
	c := NewConfig(nil)
	wait, _ := c.AddEvent("wait", "timing.wait")
	wait.WithFloatPayload(1)
	c.AddEvent("sfx", "audio.play")
	c.Lock()

	text, events := c.ProcessText("Look out!{wait=0.25} Boom.{sfx=explosion}", delims, nil)
	if text != "Look out! Boom." {
		t.Errorf("text = %q, want %q", text, "Look out! Boom.")
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != "timing.wait" || events[0].Value != convert.FloatValue(0.25) {
		t.Errorf("event[0] = %+v", events[0])
	}
	if events[1].Type != "audio.play" || events[1].Tag.Body != "explosion" {
		t.Errorf("event[1] = %+v", events[1])
	}
}

func TestProcessTextKeepsUnmatchedTags(t *testing.T) {
	c := NewConfig(nil)
	c.AddEvent("known", "k")
	c.Lock()

	text, events := c.ProcessText("{known} {stray}", delims, nil)
	if text != " {stray}" {
		t.Errorf("text = %q, want %q", text, " {stray}")
	}
	if len(events) != 1 {
		t.Errorf("got %d events, want 1", len(events))
	}
}
