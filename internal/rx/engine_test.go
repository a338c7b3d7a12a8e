package rx

import "testing"

func TestEngineMatchString(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"^hello", "hello world", true},
		{"^hello", "say hello", false},
		{"world$", "hello world", true},
		{"\\d+", "abc123", true},
		{"\\d+", "abcdef", false},
		{"[a-z]+@[a-z]+\\.com", "user@example.com", true},
		{"a*b", "b", true},
		{"a+b", "b", false},
		{"colou?r", "color", true},
		{"colou?r", "colour", true},
		{"^$", "", true},
		{"(foo|bar)", "a bar b", true},
		{"(foo|bar)", "a baz b", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			e, err := Compile(tt.pattern)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.pattern, err)
			}
			got := e.MatchString(tt.input)
			if got != tt.want {
				t.Errorf("MatchString(%q) against /%s/ = %v, want %v", tt.input, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestEngineMatchBytesLatin1(t *testing.T) {
	e, err := Compile(`^\x01\x02`)
	if err != nil {
		t.Fatal(err)
	}
	if !e.MatchBytes([]byte{0x01, 0x02, 0x03}) {
		t.Error("expected prefix byte match")
	}
	if e.MatchBytes([]byte{0x02, 0x01}) {
		t.Error("unexpected match with bytes reordered")
	}
}

func TestEngineInvalidPattern(t *testing.T) {
	if _, err := Compile("(unclosed"); err == nil {
		t.Error("expected error for unclosed group")
	}
}
