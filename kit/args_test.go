package kit

import (
	"encoding/json"
	"testing"
)

func TestArgsRequiredString(t *testing.T) {
	// WHAT: missing required fields raise an error naming the field.
	a, err := DecodeArgs(json.RawMessage(`{"query": "golang"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := a.String("id"); err == nil {
		t.Fatal("expected error for missing field")
	} else if got := err.Error(); got != `missing required parameter "id"` {
		t.Errorf("message: got %q", got)
	}
	q, err := a.String("query")
	if err != nil || q != "golang" {
		t.Errorf("query: got %q, %v", q, err)
	}
}

func TestArgsWrongTypedOptionalsDropped(t *testing.T) {
	// WHAT: optional fields of the wrong type fall back to defaults.
	// WHY: the host boundary drops bad optionals rather than rejecting calls.
	a, _ := DecodeArgs(json.RawMessage(`{"count": "five", "force": 1, "max": 3.5}`))
	if got := a.OptInt("count", 5); got != 5 {
		t.Errorf("count: got %d, want default 5", got)
	}
	if got := a.OptBool("force", false); got != false {
		t.Errorf("force: got %v, want default", got)
	}
	if got := a.OptInt("max", 7); got != 7 {
		t.Errorf("non-integral max: got %d, want default 7", got)
	}
}

func TestArgsStrings(t *testing.T) {
	a, _ := DecodeArgs(json.RawMessage(`{"urls": ["https://a", 3, "https://b"]}`))
	urls, err := a.Strings("urls")
	if err != nil {
		t.Fatalf("strings: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://a" || urls[1] != "https://b" {
		t.Errorf("got %v", urls)
	}
	if _, err := a.Strings("queries"); err == nil {
		t.Error("expected missing-parameter error")
	}
}

func TestDecodeArgsEmpty(t *testing.T) {
	a, err := DecodeArgs(nil)
	if err != nil || a == nil {
		t.Fatalf("empty decode: %v %v", a, err)
	}
}
