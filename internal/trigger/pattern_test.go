package trigger

import (
	"strings"
	"testing"

	"github.com/valter-silva-au/skill-brain/pkg/models"
)

func TestKeywordWordBoundary(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		prompt  string
		want    bool
	}{
		{"exact word", "test", "run the test suite", true},
		{"word at start", "test", "test this please", true},
		{"word at end", "test", "write a test", true},
		{"embedded in larger word", "test", "use the latest version", false},
		{"prefix of larger word", "test", "testing things", false},
		{"embedded then clean later", "test", "latest test run", true},
		{"bad prefix then clean later", "test", "pretest and test", true},
		{"case insensitive", "test", "run the TEST suite", true},
		{"punctuation boundary", "test", "test, then ship", true},
		{"underscore is a word char", "test", "run_test_now", false},
		{"multi-word substring", "unit test", "write a unit test now", true},
		{"multi-word embedded", "unit test", "reunit testing", true},
		{"absent", "deploy", "write a test", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kw, err := CompileKeyword(tt.keyword)
			if err != nil {
				t.Fatalf("CompileKeyword(%q): %v", tt.keyword, err)
			}
			if got := kw.Match(strings.ToLower(tt.prompt)); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.keyword, tt.prompt, got, tt.want)
			}
		})
	}
}

func TestCompileKeywordRejectsEmpty(t *testing.T) {
	for _, src := range []string{"", "   ", "\t"} {
		if _, err := CompileKeyword(src); err == nil {
			t.Errorf("CompileKeyword(%q) succeeded, want error", src)
		}
	}
}

func TestCompileRegex(t *testing.T) {
	re, err := CompileRegex(KindIntent, `deploy\s+to\s+prod`)
	if err != nil {
		t.Fatalf("CompileRegex: %v", err)
	}
	if !re.Match("please DEPLOY to prod") {
		t.Error("expected case-insensitive match")
	}
	if re.Match("deployment process") {
		t.Error("unexpected match")
	}

	if _, err := CompileRegex(KindIntent, `([unclosed`); err == nil {
		t.Error("expected error for invalid regex")
	}
	if _, err := CompileRegex(KindContent, ""); err == nil {
		t.Error("expected error for empty pattern")
	}
}

func TestPathPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"doublestar crosses dirs", "**/*.tf", "infra/prod/main.tf", true},
		{"doublestar no match", "**/*.tf", "main.go", false},
		{"bare glob matches basename at depth", "*.tf", "infra/prod/main.tf", true},
		{"bare glob at root", "*.tf", "main.tf", true},
		{"substring fragment", "migrations/", "db/migrations/001_init.sql", true},
		{"substring no match", "migrations/", "db/schema.sql", false},
		{"directory glob", "cmd/**", "cmd/skb/main.go", true},
		{"backslash path normalized", "**/*.go", `internal\cli\root.go`, true},
		{"brace alternation", "*.{yml,yaml}", "ci/build.yaml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp, err := CompilePathPattern(tt.pattern)
			if err != nil {
				t.Fatalf("CompilePathPattern(%q): %v", tt.pattern, err)
			}
			if got := pp.Match(tt.path); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestCompilePathPatternRejectsInvalid(t *testing.T) {
	if _, err := CompilePathPattern(""); err == nil {
		t.Error("expected error for empty pattern")
	}
	if _, err := CompilePathPattern("[unclosed"); err == nil {
		t.Error("expected error for invalid glob")
	}
}

func TestCompileRuleAggregatesAllTriggerKinds(t *testing.T) {
	rule := models.SkillRule{
		Description: "terraform workflows",
		PromptTriggers: models.PromptTriggers{
			Keywords:       []string{"terraform", "plan"},
			IntentPatterns: []string{`apply.*infra`},
		},
		FileTriggers: models.FileTriggers{
			PathPatterns:    []string{"**/*.tf"},
			ContentPatterns: []string{`resource\s+"aws_`},
		},
		ShadowTriggers: models.PromptTriggers{
			Keywords: []string{"infrastructure"},
		},
	}

	cr, err := Compile("terraform", rule)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(cr.PromptKeywords) != 2 || len(cr.IntentPatterns) != 1 ||
		len(cr.PathPatterns) != 1 || len(cr.ContentRegexes) != 1 ||
		len(cr.ShadowKeywords) != 1 {
		t.Errorf("unexpected compiled counts: %+v", cr)
	}
}

func TestCompileRuleFailsOnFirstInvalidPattern(t *testing.T) {
	rule := models.SkillRule{
		Description: "broken",
		PromptTriggers: models.PromptTriggers{
			IntentPatterns: []string{`([bad`},
		},
	}
	if _, err := Compile("broken", rule); err == nil {
		t.Fatal("expected error for invalid intent pattern")
	}

	rule = models.SkillRule{
		Description: "broken shadow",
		ShadowTriggers: models.PromptTriggers{
			IntentPatterns: []string{`([bad`},
		},
	}
	if _, err := Compile("broken-shadow", rule); err == nil {
		t.Fatal("expected error for invalid shadow pattern")
	}
}

func TestCompileSetPreservesDeclarationOrder(t *testing.T) {
	cfg := &models.RulesConfig{
		Skills: map[string]models.SkillRule{
			"zeta":  {Description: "z"},
			"alpha": {Description: "a"},
			"mid":   {Description: "m"},
		},
		SkillOrder: []string{"zeta", "alpha", "mid"},
	}

	set, err := CompileSet(cfg)
	if err != nil {
		t.Fatalf("CompileSet: %v", err)
	}
	got := make([]string, len(set.Rules))
	for i, cr := range set.Rules {
		got[i] = cr.Name
	}
	want := []string{"zeta", "alpha", "mid"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rule order = %v, want %v", got, want)
		}
	}
}
