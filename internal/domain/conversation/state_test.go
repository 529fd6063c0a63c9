package conversation

import (
	"encoding/json"
	"testing"
)

func TestParseState(t *testing.T) {
	for _, s := range All() {
		got, ok := ParseState(s.String())
		if !ok {
			t.Fatalf("ParseState(%q) not found", s.String())
		}
		if got != s {
			t.Errorf("ParseState(%q) = %v, want %v", s.String(), got, s)
		}
	}

	invalid := []string{"", "start", " START", "START ", "ACTION_WRITE_EMAIL | x", "DONE"}
	for _, tok := range invalid {
		if _, ok := ParseState(tok); ok {
			t.Errorf("ParseState(%q) matched, want no match", tok)
		}
	}
}

func TestParseAction(t *testing.T) {
	s, ok := ParseAction("ACTION_WRITE_EMAIL")
	if !ok || s != ActionWriteEmail {
		t.Fatalf("ParseAction(ACTION_WRITE_EMAIL) = %v, %v", s, ok)
	}
	if _, ok := ParseAction("WRITE_EMAIL"); ok {
		t.Error("WRITE_EMAIL must not parse as an action")
	}
}

func TestIsAction(t *testing.T) {
	for _, s := range All() {
		want := s == ActionWriteEmail
		if s.IsAction() != want {
			t.Errorf("%v.IsAction() = %v, want %v", s, s.IsAction(), want)
		}
	}
}

func TestNames(t *testing.T) {
	want := []string{"START", "QUESTION", "ANSWER", "MORE", "OTHER", "WRITE_EMAIL", "ACTION_WRITE_EMAIL", "EXIT"}
	all := All()
	if len(all) != len(want) {
		t.Fatalf("len(All()) = %d, want %d", len(all), len(want))
	}
	for i, s := range all {
		if s.String() != want[i] {
			t.Errorf("state %d = %q, want %q", i, s.String(), want[i])
		}
	}
	if State(200).IsValid() {
		t.Error("State(200) must be invalid")
	}
}

func TestJSON(t *testing.T) {
	b, err := json.Marshal(map[string]State{"state": WriteEmail})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"state":"WRITE_EMAIL"}` {
		t.Errorf("marshal = %s", b)
	}

	var out map[string]State
	if err := json.Unmarshal([]byte(`{"state":"EXIT"}`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["state"] != Exit {
		t.Errorf("unmarshal = %v, want EXIT", out["state"])
	}
	if err := json.Unmarshal([]byte(`{"state":"NOPE"}`), &out); err == nil {
		t.Error("expected error for unknown state")
	}
}

func TestConversation_Reset(t *testing.T) {
	c := New("sys")
	if c.State != Start || len(c.History) != 1 || c.History[0].Content != "sys" {
		t.Fatalf("new conversation = %+v", c)
	}
	c.State = Exit
	c.History = append(c.History, c.History[0], c.History[0])

	msgs := c.Messages()
	msgs[0].Content = "changed"
	if c.History[0].Content != "sys" {
		t.Error("Messages must return a copy")
	}

	c.Reset()
	if c.State != Start || len(c.History) != 1 || c.History[0].Content != "sys" {
		t.Errorf("reset conversation = %+v", c)
	}
}
