package git

import (
	"testing"
)

func TestPatternMatcherGlobs(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		file     string
		want     bool
	}{
		{name: "doublestar match", patterns: []string{"**/*.rs"}, file: "src/deep/lib.rs", want: true},
		{name: "doublestar top level", patterns: []string{"**/*.rs"}, file: "main.rs", want: true},
		{name: "doublestar miss", patterns: []string{"**/*.rs"}, file: "README.md", want: false},
		{name: "bare filename match", patterns: []string{"Cargo.toml"}, file: "crates/core/Cargo.toml", want: true},
		{name: "extension match", patterns: []string{"*.go"}, file: "pkg/util/helper.go", want: true},
		{name: "multiple patterns", patterns: []string{"*.js", "*.ts"}, file: "app/index.ts", want: true},
		{name: "empty patterns match all", patterns: nil, file: "anything", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewPatternMatcher(tt.patterns)
			if err != nil {
				t.Fatalf("NewPatternMatcher: %v", err)
			}
			if got := m.Matches(tt.file); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

func TestPatternMatcherInvalidPattern(t *testing.T) {
	if _, err := NewPatternMatcher([]string{"[unclosed"}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestPatternMatcherFilter(t *testing.T) {
	m, err := NewPatternMatcher([]string{"**/*.rs"})
	if err != nil {
		t.Fatalf("NewPatternMatcher: %v", err)
	}

	got := m.Filter([]string{"src/a.rs", "README.md", "src/b.rs"})
	if len(got) != 2 || got[0] != "src/a.rs" || got[1] != "src/b.rs" {
		t.Errorf("Filter = %v, want the .rs files in order", got)
	}
}

func TestPatternMatcherMatchesAny(t *testing.T) {
	m, err := NewPatternMatcher([]string{"**/*.rs"})
	if err != nil {
		t.Fatalf("NewPatternMatcher: %v", err)
	}

	if !m.MatchesAny([]string{"README.md", "src/a.rs"}) {
		t.Error("MatchesAny should find src/a.rs")
	}
	if m.MatchesAny([]string{"README.md", "docs/guide.md"}) {
		t.Error("MatchesAny matched markdown against a rust pattern")
	}
}
