// Package snippetfmt checks documentation code snippets against an external
// code formatter and reports, per snippet, whether it is already formatted.
package snippetfmt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Snippet is one input record.
type Snippet struct {
	Code string `json:"code"`
}

// Status classifies one snippet.
type Status string

const (
	StatusSuccess Status = "success"
	StatusUpdated Status = "updated"
	StatusError   Status = "error"
)

// Result is one output record. NewCode is set only for StatusUpdated and
// Error only for StatusError.
type Result struct {
	Status  Status `json:"status"`
	NewCode string `json:"newCode,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoadSnippets reads a JSON array of snippets from path.
func LoadSnippets(path string) ([]Snippet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snippets, err := DecodeSnippets(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snippets, nil
}

// DecodeSnippets reads a JSON array of {"code": ...} objects.
func DecodeSnippets(r io.Reader) ([]Snippet, error) {
	var raw []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("expected a JSON array of snippets: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("expected a JSON array of snippets, got null")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after the snippet array")
	}

	snippets := make([]Snippet, len(raw))
	for i, msg := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(msg, &fields); err != nil {
			return nil, fmt.Errorf("snippet %d: must be an object", i)
		}
		code, ok := fields["code"]
		if !ok {
			return nil, fmt.Errorf("snippet %d: missing \"code\"", i)
		}
		var text *string
		if err := json.Unmarshal(code, &text); err != nil || text == nil {
			return nil, fmt.Errorf("snippet %d: \"code\" must be a string", i)
		}
		snippets[i].Code = *text
	}
	return snippets, nil
}

// EncodeResults writes results as one JSON array followed by a newline.
func EncodeResults(w io.Writer, results []Result) error {
	if results == nil {
		results = []Result{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
