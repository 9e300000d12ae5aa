package api

import (
	"strings"
	"testing"
)

func TestSetOutputFormat_FallsBackToText(t *testing.T) {
	defer SetOutputFormat("text")

	SetOutputFormat("json")
	if got := GetOutputFormat(); got != OutputFormatJSON {
		t.Fatalf("format = %q, want json", got)
	}
	SetOutputFormat("csv")
	if got := GetOutputFormat(); got != OutputFormatText {
		t.Fatalf("format = %q, want text fallback", got)
	}
}

func TestIsStructuredOutput(t *testing.T) {
	defer SetOutputFormat("text")

	cases := []struct {
		format string
		want   bool
	}{
		{"json", true},
		{"yaml", true},
		{"text", false},
	}
	for _, tc := range cases {
		SetOutputFormat(tc.format)
		if got := IsStructuredOutput(); got != tc.want {
			t.Fatalf("IsStructuredOutput() in %s mode = %v, want %v", tc.format, got, tc.want)
		}
	}
}

func TestNoticef_SuppressedInStructuredMode(t *testing.T) {
	defer SetOutputFormat("text")

	var buf strings.Builder
	SetOutputFormat("json")
	Noticef(&buf, "deleted %s\n", "doc-1")
	if buf.Len() != 0 {
		t.Fatalf("notice leaked into structured output: %q", buf.String())
	}

	SetOutputFormat("text")
	Noticef(&buf, "deleted %s\n", "doc-1")
	if got := buf.String(); got != "deleted doc-1\n" {
		t.Fatalf("notice = %q, want %q", got, "deleted doc-1\n")
	}
}

func TestOutputTo_Formats(t *testing.T) {
	data := map[string]string{"id": "abc"}

	var jsonBuf strings.Builder
	if err := OutputTo(&jsonBuf, OutputFormatJSON, data); err != nil {
		t.Fatalf("OutputTo(json) error = %v", err)
	}
	if !strings.Contains(jsonBuf.String(), `"id": "abc"`) {
		t.Fatalf("json output = %q", jsonBuf.String())
	}

	var yamlBuf strings.Builder
	if err := OutputTo(&yamlBuf, OutputFormatText, data); err != nil {
		t.Fatalf("OutputTo(text) error = %v", err)
	}
	if !strings.Contains(yamlBuf.String(), "id: abc") {
		t.Fatalf("text output = %q, want YAML rendering", yamlBuf.String())
	}

	if err := OutputTo(&yamlBuf, OutputFormat("csv"), data); err == nil {
		t.Fatal("OutputTo(csv) should fail")
	}
}
