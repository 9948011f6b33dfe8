package strings

import "testing"

func TestNormalizeWhitespace(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: " \n\t ", want: ""},
		{name: "single token", input: "topic", want: "topic"},
		{name: "collapses spaces", input: "one   two    three", want: "one two three"},
		{name: "collapses newlines", input: "one\n\n two\tthree", want: "one two three"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeWhitespace(tc.input); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeNewlines(t *testing.T) {
	if got := NormalizeNewlines("a\r\nb\rc\n"); got != "a\nb\nc\n" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestTrimTrailingNewlines(t *testing.T) {
	if got := TrimTrailingNewlines("line\r\n\n"); got != "line" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestNormalizeServerURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:8765":      "http://localhost:8765",
		" http://localhost:8765/ ":   "http://localhost:8765",
		"https://todo.example.com//": "https://todo.example.com",
		"":                           "",
	}
	for input, want := range cases {
		if got := NormalizeServerURL(input); got != want {
			t.Errorf("NormalizeServerURL(%q) = %q, want %q", input, got, want)
		}
	}
}
