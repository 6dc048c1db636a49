package security

import "testing"

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"plain", "  Alice  ", 40, "Alice"},
		{"strips tags", "<b>Bob</b><script>alert(1)</script>", 40, "Bob"},
		{"keeps ampersand", "Tom & Jerry", 40, "Tom & Jerry"},
		{"null bytes", "Ev\x00e", 40, "Eve"},
		{"truncates runes", "ÅÅÅÅÅ", 3, "ÅÅÅ"},
		{"no limit", "abc", 0, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input, tt.max); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanTextKeepsMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"angle brackets", " x<y ", 10, "x<y"},
		{"tag-like answer", "<html>", 10, "<html>"},
		{"null bytes", "a\x00<b>", 10, "a<b>"},
		{"truncates runes", "<<<<<", 3, "<<<"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input, tt.max); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
	if got := CleanList([]string{" ", "<i></i>"}, 10); len(got) != 1 || got[0] != "<i></i>" {
		t.Errorf("CleanList = %q, want [<i></i>]", got)
	}
}
