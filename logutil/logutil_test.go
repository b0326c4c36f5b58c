package logutil

import "testing"

func TestRedactKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "********"},
		{"short", "********"},
		{"12345678", "********"},
		{"sk-abcdefgh1234", "sk-a...1234"},
	}

	for _, tt := range tests {
		if got := RedactKey(tt.in); got != tt.want {
			t.Errorf("RedactKey(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"plain", "hello", 10, "hello"},
		{"truncated", "hello world", 5, "hello..."},
		{"newlines escaped", "a\nb\rc", 10, "a\\nb\\nc"},
		{"tab escaped", "a\tb", 10, "a\\tb"},
		{"control replaced", "a\x01b", 10, "a?b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("Snippet(%q, %d) = %q, expected %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}
