package search

import (
	"encoding/json"
	"testing"
)

func TestServiceType_IsValid(t *testing.T) {
	for _, st := range ServiceTypes() {
		if !st.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", st)
		}
		if st.Description() == "" {
			t.Errorf("%q has no description", st)
		}
	}

	invalid := []ServiceType{"", "blog", "VIDEO", "WEB"}
	for _, st := range invalid {
		if st.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", st)
		}
	}
}

func TestMerge_PreservesOrderAndCount(t *testing.T) {
	date := "Mon, 01 Jan 2024 00:00:00 +0900"
	naver := Result{Provider: "naver", BuildDate: &date, Items: raw(`{"n":1}`, `{"n":2}`)}
	kakao := Result{Provider: "kakao", Items: raw(`{"k":1}`)}
	google := Result{Provider: "google", Items: raw(`{"g":1}`, `{"g":2}`, `{"g":3}`)}

	b := Merge(naver, kakao, google)

	if len(b.Items) != 6 {
		t.Fatalf("len(items) = %d, want 6", len(b.Items))
	}
	want := []string{`{"n":1}`, `{"n":2}`, `{"k":1}`, `{"g":1}`, `{"g":2}`, `{"g":3}`}
	for i, w := range want {
		if string(b.Items[i]) != w {
			t.Errorf("items[%d] = %s, want %s", i, b.Items[i], w)
		}
	}
	if b.SearchTime == nil || *b.SearchTime != date {
		t.Errorf("search time = %v, want %q", b.SearchTime, date)
	}
}

func TestMerge_NoDedup(t *testing.T) {
	b := Merge(Result{Items: raw(`{"a":1}`)}, Result{Items: raw(`{"a":1}`)})
	if len(b.Items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(b.Items))
	}
}

func TestRender(t *testing.T) {
	var nilBundle *Bundle
	if got := nilBundle.Render(); got != "null" {
		t.Errorf("nil render = %q, want null", got)
	}

	b := Merge(Result{Items: raw(`{"title":"x"}`)})
	var decoded map[string]any
	if err := json.Unmarshal([]byte(b.Render()), &decoded); err != nil {
		t.Fatalf("render is not JSON: %v", err)
	}
	if _, ok := decoded["search time"]; !ok {
		t.Error(`missing "search time" key`)
	}
	if items, ok := decoded["items"].([]any); !ok || len(items) != 1 {
		t.Errorf("items = %v", decoded["items"])
	}
}

func raw(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, s := range items {
		out[i] = json.RawMessage(s)
	}
	return out
}
