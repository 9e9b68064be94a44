package signal

import "testing"

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		pattern Pattern
		input   string
		want    bool
	}{
		{"mouse,clicked,1", "mouse,clicked,1", true},
		{"mouse,clicked,1", "mouse,clicked,2", false},
		{"mouse,clicked,*", "mouse,clicked,3", true},
		{"mouse,clicked,*", "mouse,clicked", false},
		{"mouse,**", "mouse", true},
		{"mouse,**", "mouse,down,1", true},
		{"**,1", "mouse,down,1", true},
		{"**,1", "mouse,down,2", false},
		{"*", "", true},
		{"*", "anything,at,all", true},
		{"**", "", true},
		{"", "", true},
		{"", "x", false},
		{"elm", "elm", true},
		{"elm", "edje", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.pattern)+"/"+tt.input, func(t *testing.T) {
			if got := tt.pattern.Match(tt.input); got != tt.want {
				t.Errorf("Pattern(%q).Match(%q) = %v, want %v", tt.pattern, tt.input, got, tt.want)
			}
		})
	}
}

func TestPattern_IsWildcard(t *testing.T) {
	if Pattern("a,b").IsWildcard() {
		t.Error("plain pattern reported as wildcard")
	}
	if !Pattern("a,*").IsWildcard() || !Pattern("**").IsWildcard() {
		t.Error("wildcard pattern not detected")
	}
}

func TestMatches(t *testing.T) {
	if !Matches("clicked", "*", "clicked", "elm") {
		t.Error("expected match on emission with wildcard source")
	}
	if Matches("clicked", "edje", "clicked", "elm") {
		t.Error("expected source mismatch")
	}
}
