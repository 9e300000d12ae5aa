package modeljson

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRecoverLastCompleteObject_ClosesOpenBrackets(t *testing.T) {
	raw, err := recoverLastCompleteObject(`{"items": [{"x":1},{"y":2}`)
	if err != nil {
		t.Fatalf("recoverLastCompleteObject() error = %v", err)
	}
	var got map[string][]map[string]int
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got["items"]) != 2 {
		t.Fatalf("items = %v, want both objects kept", got["items"])
	}
}

func TestRecoverLastCompleteObject_RequiresArray(t *testing.T) {
	if _, err := recoverLastCompleteObject(`{"x": 1`); err == nil {
		t.Fatal("should fail without an array opener")
	}
}

func TestRecoverLastCompleteObject_IgnoresBracketsInStrings(t *testing.T) {
	// The '[' inside the string must not be taken as the array opener.
	raw, err := recoverLastCompleteObject(`{"note":"a [ b","items":[{"x":1},{"y":`)
	if err != nil {
		t.Fatalf("recoverLastCompleteObject() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["note"] != "a [ b" {
		t.Fatalf("note = %q, string content mangled", got["note"])
	}
}

func TestRecoverLastCompleteObject_NestedArraysInElements(t *testing.T) {
	// The '[' of an element's own inner array must not be taken as the
	// truncation anchor, or the salvage comes from inside an element
	// instead of the enclosing array.
	raw, err := recoverLastCompleteObject(`[{"q":"x","o":["a","b"]},{"q":"y","o":["c`)
	if err != nil {
		t.Fatalf("recoverLastCompleteObject() error = %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v (got %s, want an array)", err, raw)
	}
	if len(got) != 1 || got[0]["q"] != "x" {
		t.Fatalf("got %#v, want just the first complete element", got)
	}
}

func TestRecoverKeyedArray_DropsBrokenObjects(t *testing.T) {
	raw, err := recoverKeyedArray(`{"questions": [{"q":"one"},{"q": broken},{"q":"three"}`)
	if err != nil {
		t.Fatalf("recoverKeyedArray() error = %v", err)
	}
	var got map[string][]map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string][]map[string]string{
		"questions": {{"q": "one"}, {"q": "three"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want broken element dropped", got)
	}
}

func TestRecoverKeyedArray_FailsWithNoCleanObjects(t *testing.T) {
	if _, err := recoverKeyedArray(`{"questions": [{"q": }`); err == nil {
		t.Fatal("should fail when every object is broken")
	}
}

func TestRecoverAnyCompleteObject_ReturnsLastParseable(t *testing.T) {
	raw, err := recoverAnyCompleteObject(`garbage {"a":1} more {"b": } text {"c":3} end`)
	if err != nil {
		t.Fatalf("recoverAnyCompleteObject() error = %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["c"] != 3 {
		t.Fatalf("got %v, want the last parseable object {\"c\":3}", got)
	}
}

func TestStripTrailingCommas(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a": [1,2,],}`, `{"a": [1,2]}`},
		{`{"a": 1, "b": 2}`, `{"a": 1, "b": 2}`},
		{`[1, 2, ]`, `[1, 2 ]`},
		{`{"a": ",}", "b": [1,],}`, `{"a": ",}", "b": [1]}`},
	}
	for _, tc := range cases {
		got := stripTrailingCommas(tc.in)
		if !json.Valid([]byte(got)) {
			t.Fatalf("stripTrailingCommas(%q) = %q, not valid JSON", tc.in, got)
		}
		var a, b any
		if err := json.Unmarshal([]byte(got), &a); err != nil {
			t.Fatalf("unmarshal got: %v", err)
		}
		if err := json.Unmarshal([]byte(tc.want), &b); err != nil {
			t.Fatalf("unmarshal want: %v", err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("stripTrailingCommas(%q) = %q, want equivalent of %q", tc.in, got, tc.want)
		}
	}
}

func TestClosersFor(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a": [1`, `]}`},
		{`{"a": {"b": [`, `]}}`},
		{`{"a": "has { and [ inside"`, `}`},
		{`{"done": true}`, ``},
	}
	for _, tc := range cases {
		if got := closersFor(tc.in); got != tc.want {
			t.Fatalf("closersFor(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
