package search

import "encoding/json"

// Result is the provider-native response of one search call.
// Items keep the provider's own schema.
type Result struct {
	Provider  string
	BuildDate *string
	Items     []json.RawMessage
}

// Bundle is the grounding data handed to the model.
type Bundle struct {
	SearchTime *string           `json:"search time"`
	Items      []json.RawMessage `json:"items"`
}

// Merge concatenates the items of results in order. The search time is the
// build date of the first result that reports one.
func Merge(results ...Result) *Bundle {
	b := &Bundle{Items: []json.RawMessage{}}
	for _, r := range results {
		if b.SearchTime == nil && r.BuildDate != nil {
			b.SearchTime = r.BuildDate
		}
		b.Items = append(b.Items, r.Items...)
	}
	return b
}

// Render serialises the bundle for a prompt. A nil bundle renders as "null".
func (b *Bundle) Render() string {
	if b == nil {
		return "null"
	}
	data, err := json.Marshal(b)
	if err != nil {
		return "null"
	}
	return string(data)
}
