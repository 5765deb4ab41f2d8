// Package trigger contains the compiled pattern primitives the matching
// engine evaluates. Patterns are validated and compiled once at config
// load time; the engine never sees a raw pattern string.
package trigger

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/valter-silva-au/skill-brain/pkg/models"
)

// Kind identifies the closed set of pattern kinds understood by the engine.
type Kind string

const (
	// KindKeyword matches case-insensitive words or substrings of the prompt.
	KindKeyword Kind = "keyword"
	// KindIntent matches a regular expression against the prompt.
	KindIntent Kind = "intent"
	// KindPath matches a doublestar glob against a modified file path.
	KindPath Kind = "path"
	// KindContent matches a regular expression against file content.
	KindContent Kind = "content"
)

// Keyword is a pre-lowered keyword pattern.
type Keyword struct {
	Source  string
	lowered string
}

// CompileKeyword normalizes a keyword for case-insensitive matching.
// Empty keywords are rejected so an accidental "" cannot match everything.
func CompileKeyword(source string) (Keyword, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return Keyword{}, fmt.Errorf("compiling keyword: empty keyword")
	}
	return Keyword{Source: source, lowered: strings.ToLower(trimmed)}, nil
}

// Match reports whether the keyword occurs in the prompt. Single-word
// keywords match on word boundaries; multi-word keywords fall back to a
// case-insensitive substring check.
func (k Keyword) Match(loweredPrompt string) bool {
	if strings.ContainsAny(k.lowered, " \t") {
		return strings.Contains(loweredPrompt, k.lowered)
	}
	// Word-boundary scan for single tokens: "test" must not fire on
	// "latest", but a clean occurrence later in the prompt still counts.
	search := loweredPrompt
	for {
		idx := strings.Index(search, k.lowered)
		if idx < 0 {
			return false
		}
		after := idx + len(k.lowered)
		beforeOK := idx == 0 || !isWordChar(rune(search[idx-1]))
		afterOK := after >= len(search) || !isWordChar(rune(search[after]))
		if beforeOK && afterOK {
			return true
		}
		search = search[idx+1:]
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Regex is a compiled intent or content pattern.
type Regex struct {
	Source string
	re     *regexp.Regexp
}

// CompileRegex compiles a case-insensitive regular expression pattern.
func CompileRegex(kind Kind, source string) (Regex, error) {
	if strings.TrimSpace(source) == "" {
		return Regex{}, fmt.Errorf("compiling %s pattern: empty pattern", kind)
	}
	re, err := regexp.Compile("(?i)" + source)
	if err != nil {
		return Regex{}, fmt.Errorf("compiling %s pattern %q: %w", kind, source, err)
	}
	return Regex{Source: source, re: re}, nil
}

// Match reports whether the pattern matches the given text.
func (r Regex) Match(text string) bool {
	return r.re.MatchString(text)
}

// PathPattern matches modified-file paths. Glob sources use doublestar
// semantics ("**/*.tf" crosses directories); sources without any glob
// metacharacter degrade to a substring match so plain fragments like
// "migrations/" keep working.
type PathPattern struct {
	Source string
	isGlob bool
}

// CompilePathPattern validates a path pattern at config load time.
func CompilePathPattern(source string) (PathPattern, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return PathPattern{}, fmt.Errorf("compiling path pattern: empty pattern")
	}
	isGlob := strings.ContainsAny(trimmed, "*?[{")
	if isGlob {
		if !doublestar.ValidatePattern(trimmed) {
			return PathPattern{}, fmt.Errorf("compiling path pattern %q: invalid glob", trimmed)
		}
	}
	return PathPattern{Source: trimmed, isGlob: isGlob}, nil
}

// Match reports whether the pattern matches the given path. Paths are
// normalized to forward slashes before matching.
func (p PathPattern) Match(path string) bool {
	normalized := filepath.ToSlash(path)
	if !p.isGlob {
		return strings.Contains(normalized, p.Source)
	}
	if ok, err := doublestar.Match(p.Source, normalized); err == nil && ok {
		return true
	}
	// A bare-name glob like "*.tf" should match at any depth.
	if !strings.Contains(p.Source, "/") {
		ok, err := doublestar.Match(p.Source, filepath.Base(normalized))
		return err == nil && ok
	}
	return false
}

// CompiledRule is a SkillRule with every trigger pattern pre-compiled.
type CompiledRule struct {
	Name string
	Rule models.SkillRule

	PromptKeywords []Keyword
	IntentPatterns []Regex
	PathPatterns   []PathPattern
	ContentRegexes []Regex
	ShadowKeywords []Keyword
	ShadowIntents  []Regex
}

// Compile validates and compiles all trigger patterns of a rule. The
// first invalid pattern fails the whole rule; invalid patterns are never
// silently dropped.
func Compile(name string, rule models.SkillRule) (*CompiledRule, error) {
	cr := &CompiledRule{Name: name, Rule: rule}

	for _, kw := range rule.PromptTriggers.Keywords {
		k, err := CompileKeyword(kw)
		if err != nil {
			return nil, fmt.Errorf("skill %q: %w", name, err)
		}
		cr.PromptKeywords = append(cr.PromptKeywords, k)
	}
	for _, src := range rule.PromptTriggers.IntentPatterns {
		re, err := CompileRegex(KindIntent, src)
		if err != nil {
			return nil, fmt.Errorf("skill %q: %w", name, err)
		}
		cr.IntentPatterns = append(cr.IntentPatterns, re)
	}
	for _, src := range rule.FileTriggers.PathPatterns {
		pp, err := CompilePathPattern(src)
		if err != nil {
			return nil, fmt.Errorf("skill %q: %w", name, err)
		}
		cr.PathPatterns = append(cr.PathPatterns, pp)
	}
	for _, src := range rule.FileTriggers.ContentPatterns {
		re, err := CompileRegex(KindContent, src)
		if err != nil {
			return nil, fmt.Errorf("skill %q: %w", name, err)
		}
		cr.ContentRegexes = append(cr.ContentRegexes, re)
	}
	for _, kw := range rule.ShadowTriggers.Keywords {
		k, err := CompileKeyword(kw)
		if err != nil {
			return nil, fmt.Errorf("skill %q shadow trigger: %w", name, err)
		}
		cr.ShadowKeywords = append(cr.ShadowKeywords, k)
	}
	for _, src := range rule.ShadowTriggers.IntentPatterns {
		re, err := CompileRegex(KindIntent, src)
		if err != nil {
			return nil, fmt.Errorf("skill %q shadow trigger: %w", name, err)
		}
		cr.ShadowIntents = append(cr.ShadowIntents, re)
	}

	return cr, nil
}

// RuleSet is an ordered list of compiled rules preserving rule-set
// declaration order, which the match sort uses as the final tie-break.
type RuleSet struct {
	Rules []*CompiledRule
}

// CompileSet compiles every rule in the config in declaration order.
func CompileSet(cfg *models.RulesConfig) (*RuleSet, error) {
	set := &RuleSet{}
	for _, name := range cfg.SkillOrder {
		rule, ok := cfg.Skills[name]
		if !ok {
			continue
		}
		cr, err := Compile(name, rule)
		if err != nil {
			return nil, err
		}
		set.Rules = append(set.Rules, cr)
	}
	return set, nil
}
