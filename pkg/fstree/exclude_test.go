package fstree

import "testing"

func TestMatcher(t *testing.T) {
	m := NewMatcher([]string{"*.tmp", "node_modules/", "build/*.o", "  ", ".git/"})

	tests := []struct {
		rel   string
		isDir bool
		want  bool
	}{
		{"a.tmp", false, true},
		{"src/deep/b.tmp", false, true},
		{"node_modules", true, true},
		{"web/node_modules", true, true},
		{"node_modules", false, false},
		{"build/main.o", false, true},
		{"other/main.o", false, false},
		{".git", true, true},
		{"main.go", false, false},
		{"src", true, false},
	}

	for _, tt := range tests {
		if got := m.Match(tt.rel, tt.isDir); got != tt.want {
			t.Errorf("Match(%q, %v) = %v, want %v", tt.rel, tt.isDir, got, tt.want)
		}
	}
}

func TestMatcherEmpty(t *testing.T) {
	var nilMatcher *Matcher
	if !nilMatcher.Empty() || nilMatcher.Match("x", false) {
		t.Error("nil matcher should be empty and match nothing")
	}
	if !NewMatcher(nil).Empty() {
		t.Error("matcher without patterns should be empty")
	}
}
