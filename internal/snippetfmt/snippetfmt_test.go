package snippetfmt

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// spaceEquals mimics a formatter that normalizes "x=1" to "x = 1\n".
func spaceEquals(_ context.Context, code string) (string, error) {
	if strings.Contains(code, "syntax error") {
		return "", errors.New("cannot parse: 1:7: syntax error")
	}
	out := strings.ReplaceAll(strings.TrimSpace(code), " = ", "=")
	out = strings.ReplaceAll(out, "=", " = ")
	return out + "\n", nil
}

func TestCheck(t *testing.T) {
	snippets := []Snippet{
		{Code: "x=1"},
		{Code: "y = 2\n"},
		{Code: "syntax error here"},
		{Code: "  z = 3  "},
	}
	want := []Result{
		{Status: StatusUpdated, NewCode: "x = 1\n"},
		{Status: StatusSuccess},
		{Status: StatusError, Error: "cannot parse: 1:7: syntax error"},
		{Status: StatusSuccess},
	}

	got := NewChecker(FormatterFunc(spaceEquals)).Check(context.Background(), snippets)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Check mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_JSONExample(t *testing.T) {
	snippets, err := DecodeSnippets(strings.NewReader(`[{"code":"x=1"}]` + "\n"))
	if err != nil {
		t.Fatalf("DecodeSnippets failed: %v", err)
	}
	results := NewChecker(FormatterFunc(spaceEquals)).Check(context.Background(), snippets)

	var buf bytes.Buffer
	if err := EncodeResults(&buf, results); err != nil {
		t.Fatal(err)
	}
	want := `[{"status":"updated","newCode":"x = 1\n"}]` + "\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestCheck_EmptyInput(t *testing.T) {
	results := NewChecker(FormatterFunc(spaceEquals)).Check(context.Background(), nil)
	var buf bytes.Buffer
	if err := EncodeResults(&buf, results); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[]\n" {
		t.Errorf("output = %q, want %q", buf.String(), "[]\n")
	}
}

func TestCheck_ErrorMessagesAreNonEmpty(t *testing.T) {
	f := FormatterFunc(func(context.Context, string) (string, error) {
		return "", errors.New("")
	})
	got := NewChecker(f).Check(context.Background(), []Snippet{{Code: "a"}})
	if got[0].Status != StatusError || got[0].Error == "" {
		t.Errorf("got %+v, want error status with a message", got[0])
	}

	empty := FormatterFunc(func(context.Context, string) (string, error) { return "", nil })
	got = NewChecker(empty).Check(context.Background(), []Snippet{{Code: "a"}})
	if got[0].Status != StatusError || got[0].Error == "" {
		t.Errorf("empty output: got %+v, want error status with a message", got[0])
	}
}

func TestCheck_Cache(t *testing.T) {
	tests := []struct {
		name      string
		cacheSize int
		wantCalls int
	}{
		{"cached", 16, 2},
		{"disabled", 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			f := FormatterFunc(func(ctx context.Context, code string) (string, error) {
				calls++
				return spaceEquals(ctx, code)
			})
			c := NewChecker(f, WithCacheSize(tt.cacheSize))
			got := c.Check(context.Background(), []Snippet{{Code: "x=1"}, {Code: "a = b"}, {Code: "x=1"}, {Code: "a = b"}})

			if calls != tt.wantCalls {
				t.Errorf("formatter called %d times, want %d", calls, tt.wantCalls)
			}
			if got[0] != got[2] || got[1] != got[3] {
				t.Errorf("duplicate snippets got different results: %+v", got)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Status: StatusSuccess},
		{Status: StatusUpdated, NewCode: "x"},
		{Status: StatusUpdated, NewCode: "y"},
		{Status: StatusError, Error: "boom"},
	}
	want := Summary{Total: 4, Success: 1, Updated: 2, Errors: 1}
	if diff := cmp.Diff(want, Summarize(results)); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSnippets_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"not json", `nope`, "JSON array"},
		{"object instead of array", `{"code": "x"}`, "JSON array"},
		{"element not an object", `["x=1"]`, "snippet 0: must be an object"},
		{"missing code", `[{"code": "a"}, {"text": "x"}]`, `snippet 1: missing "code"`},
		{"code not a string", `[{"code": 1}]`, "must be a string"},
		{"null code", `[{"code": "a"}, {"code": null}]`, `snippet 1: "code" must be a string`},
		{"null document", `null`, "got null"},
		{"trailing data", `[{"code": "a"}] garbage`, "unexpected data after the snippet array"},
		{"second array", `[{"code": "a"}][{"code": "b"}]`, "unexpected data after the snippet array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSnippets(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadSnippets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippets.json")
	if err := os.WriteFile(path, []byte(`[{"code": "a"}, {"code": "b", "lang": "py"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadSnippets(path)
	if err != nil {
		t.Fatalf("LoadSnippets failed: %v", err)
	}
	if diff := cmp.Diff([]Snippet{{Code: "a"}, {Code: "b"}}, got); diff != "" {
		t.Errorf("LoadSnippets mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadSnippets(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewExecFormatter(t *testing.T) {
	f, err := NewExecFormatter(`sed -e 's/=/ = /'`, 0)
	if err != nil {
		t.Fatalf("NewExecFormatter failed: %v", err)
	}
	if diff := cmp.Diff([]string{"-e", "s/=/ = /"}, f.args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"", "   ", `black "unterminated`} {
		if _, err := NewExecFormatter(bad, 0); err == nil {
			t.Errorf("NewExecFormatter(%q) should fail", bad)
		}
	}
}

func TestExecFormatter(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping on windows")
	}

	f, err := NewExecFormatter(`sed -e 's/=/ = /'`, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.Format(context.Background(), "x=1\n")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if got != "x = 1\n" {
		t.Errorf("Format() = %q, want %q", got, "x = 1\n")
	}
}

func TestExecFormatter_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping on windows")
	}

	f, err := NewExecFormatter(`sh -c 'echo "cannot parse input" >&2; exit 123'`, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.Format(context.Background(), "x=")
	if err == nil || err.Error() != "cannot parse input" {
		t.Errorf("Format() error = %v, want stderr message", err)
	}

	missing, err := NewExecFormatter("definitely-not-a-formatter-binary", 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := missing.Format(context.Background(), "x"); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestExecFormatter_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping on windows")
	}

	f, err := NewExecFormatter("sleep 10", 300*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	_, err = f.Format(context.Background(), "")
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", err)
	}
}
