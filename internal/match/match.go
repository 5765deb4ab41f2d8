// Package match implements the skill matching engine: scoring skill
// rules against the current prompt and the session's modified files, and
// producing shadow suggestions for manual-only skills.
package match

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/valter-silva-au/skill-brain/internal/trigger"
	"github.com/valter-silva-au/skill-brain/pkg/models"
)

// Trigger hit weights. Intent patterns outweigh keywords and content
// patterns outweigh path patterns because they are more specific signals.
const (
	WeightKeyword = 1
	WeightPath    = 2
	WeightIntent  = 3
	WeightContent = 4
)

// maxContentFileBytes caps how much of a modified file is read when
// evaluating content patterns.
const maxContentFileBytes = 256 << 10

// Match is the result of evaluating one rule against one event.
// Score > 0 iff at least one trigger fired.
type Match struct {
	SkillName   string
	Rule        models.SkillRule
	Score       int
	PromptMatch bool
	FileMatch   bool
	Reason      string
}

// ShadowMatch is a non-binding suggestion produced from a rule's shadow
// triggers when its primary prompt triggers did not fire this turn.
type ShadowMatch struct {
	SkillName string
	Rule      models.SkillRule
	Score     int
	Reason    string
}

// Matcher evaluates a compiled rule set. The optional projectDir anchors
// relative modified-file paths when content patterns read from disk.
type Matcher struct {
	projectDir string
	readFile   func(path string) ([]byte, error)
}

// NewMatcher creates a Matcher rooted at projectDir.
func NewMatcher(projectDir string) *Matcher {
	return &Matcher{
		projectDir: projectDir,
		readFile:   readFileCapped,
	}
}

// MatchPrompt evaluates every rule against the prompt text and the
// session's modified files, returning only rules with a positive score,
// sorted by descending score, then priority rank, then rule-set order.
// The sort is stable so equal rules keep their declaration order.
func (m *Matcher) MatchPrompt(rules *trigger.RuleSet, prompt string, modifiedFiles []string) []Match {
	if rules == nil {
		return nil
	}
	lowered := strings.ToLower(prompt)

	var matches []Match
	for _, cr := range rules.Rules {
		match := m.evaluate(cr, lowered, modifiedFiles)
		if match.Score > 0 {
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Rule.Priority.Rank() < matches[j].Rule.Priority.Rank()
	})
	return matches
}

// MatchShadowTriggers evaluates shadow triggers for rules whose primary
// prompt triggers did not fire against this prompt. Shadow matching is a
// fallback channel: a rule that already matched on its prompt triggers
// contributes no shadow match.
func (m *Matcher) MatchShadowTriggers(rules *trigger.RuleSet, prompt string) []ShadowMatch {
	if rules == nil {
		return nil
	}
	lowered := strings.ToLower(prompt)

	var shadows []ShadowMatch
	for _, cr := range rules.Rules {
		if len(cr.ShadowKeywords) == 0 && len(cr.ShadowIntents) == 0 {
			continue
		}
		if promptTriggersFire(cr, lowered) {
			continue
		}

		score := 0
		var reasons []string
		for _, kw := range cr.ShadowKeywords {
			if kw.Match(lowered) {
				score += WeightKeyword
				reasons = append(reasons, fmt.Sprintf("keyword %q", kw.Source))
			}
		}
		for _, re := range cr.ShadowIntents {
			if re.Match(prompt) {
				score += WeightIntent
				reasons = append(reasons, fmt.Sprintf("pattern %q", re.Source))
			}
		}
		if score > 0 {
			shadows = append(shadows, ShadowMatch{
				SkillName: cr.Name,
				Rule:      cr.Rule,
				Score:     score,
				Reason:    "shadow trigger: " + strings.Join(reasons, ", "),
			})
		}
	}

	sort.SliceStable(shadows, func(i, j int) bool {
		if shadows[i].Score != shadows[j].Score {
			return shadows[i].Score > shadows[j].Score
		}
		return shadows[i].Rule.Priority.Rank() < shadows[j].Rule.Priority.Rank()
	})
	return shadows
}

// LimitMatches truncates a sorted match list to at most max entries
// without re-sorting. Callers apply it after cooldown and strategy
// filtering so dropped matches never consume a suggestion slot.
func LimitMatches(matches []Match, max int) []Match {
	if max < 0 {
		max = 0
	}
	if len(matches) <= max {
		return matches
	}
	return matches[:max]
}

// evaluate scores a single rule. Prompt and file channels accumulate
// independently; the booleans record which channels contributed.
func (m *Matcher) evaluate(cr *trigger.CompiledRule, loweredPrompt string, modifiedFiles []string) Match {
	match := Match{SkillName: cr.Name, Rule: cr.Rule}
	var reasons []string

	for _, kw := range cr.PromptKeywords {
		if kw.Match(loweredPrompt) {
			match.Score += WeightKeyword
			match.PromptMatch = true
			reasons = append(reasons, fmt.Sprintf("keyword %q", kw.Source))
		}
	}
	for _, re := range cr.IntentPatterns {
		if re.Match(loweredPrompt) {
			match.Score += WeightIntent
			match.PromptMatch = true
			reasons = append(reasons, fmt.Sprintf("intent %q", re.Source))
		}
	}

	for _, pp := range cr.PathPatterns {
		for _, file := range modifiedFiles {
			if pp.Match(file) {
				match.Score += WeightPath
				match.FileMatch = true
				reasons = append(reasons, fmt.Sprintf("path %q matched %s", pp.Source, file))
			}
		}
	}
	if len(cr.ContentRegexes) > 0 {
		for _, file := range modifiedFiles {
			content, ok := m.loadContent(file)
			if !ok {
				continue
			}
			for _, re := range cr.ContentRegexes {
				if re.Match(content) {
					match.Score += WeightContent
					match.FileMatch = true
					reasons = append(reasons, fmt.Sprintf("content %q matched %s", re.Source, file))
				}
			}
		}
	}

	match.Reason = strings.Join(reasons, ", ")
	return match
}

// promptTriggersFire reports whether any primary prompt trigger hits.
func promptTriggersFire(cr *trigger.CompiledRule, loweredPrompt string) bool {
	for _, kw := range cr.PromptKeywords {
		if kw.Match(loweredPrompt) {
			return true
		}
	}
	for _, re := range cr.IntentPatterns {
		if re.Match(loweredPrompt) {
			return true
		}
	}
	return false
}

// loadContent reads a modified file for content-pattern evaluation.
// Unreadable files contribute nothing; matching must never fail on a
// file that disappeared since it was tracked.
func (m *Matcher) loadContent(path string) (string, bool) {
	resolved := path
	if !filepath.IsAbs(resolved) && m.projectDir != "" {
		resolved = filepath.Join(m.projectDir, resolved)
	}
	data, err := m.readFile(resolved)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func readFileCapped(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) > maxContentFileBytes {
		data = data[:maxContentFileBytes]
	}
	return data, nil
}
