package export

import (
	"bytes"
	"testing"
)

func TestSafeCell(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                         "",
		"Ada Lovelace":             "Ada Lovelace",
		"=HYPERLINK(\"http://x\")": "'=HYPERLINK(\"http://x\")",
		"+1 555 0100":              "'+1 555 0100",
		"-2+3":                     "'-2+3",
		"@SUM(A1:A2)":              "'@SUM(A1:A2)",
		"\t=1":                     "'\t=1",
		"a=b":                      "a=b",
	}

	for input, want := range tests {
		if got := SafeCell(input); got != want {
			t.Fatalf("SafeCell(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCSVWriterEscapesEveryCell(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	if err := w.Write([]string{"email", "name"}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := w.Write([]string{"ada@example.com", "=cmd|' /C calc'!A0"}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	want := "email,name\nada@example.com,'=cmd|' /C calc'!A0\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%q\nwant\n%q", buf.String(), want)
	}
}
