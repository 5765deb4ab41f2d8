package core

import (
	"fmt"

	"github.com/valter-silva-au/skill-brain/internal/match"
	"github.com/valter-silva-au/skill-brain/pkg/models"
)

// SessionState is the slice of the session store the activator mutates.
// Satisfied by storage.SessionStateManager.
type SessionState interface {
	ActivationHistory
	Init() error
	RecordSkillActivation(sessionID, skillName string) error
	AddModifiedFile(sessionID, path string) error
	GetModifiedFiles(sessionID string) ([]string, error)
	ClearCurrentPromptSkills(sessionID string) error
}

// ContentLoader resolves a skill name to its injectable content.
// Implemented by the skills package; nil content is not an error.
type ContentLoader interface {
	LoadContent(skillName string) (string, error)
}

// EventLogger records diagnostic events. May be nil (diagnostics off).
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// ActivatedSkill is a guaranteed activation carrying full content.
type ActivatedSkill struct {
	Name        string
	Description string
	Content     string
	Reason      string
	Enforcement models.Enforcement
}

// Suggestion is a non-binding skill hint (suggestive or shadow channel).
type Suggestion struct {
	Name        string
	Description string
	Reason      string
}

// Outcome is what one orchestrator run decided. The zero value is the
// documented "no activation" output used for every failure path.
type Outcome struct {
	Guaranteed  []ActivatedSkill
	Suggestions []Suggestion
	Shadow      []Suggestion
}

// Empty reports whether the outcome carries nothing to emit.
func (o Outcome) Empty() bool {
	return len(o.Guaranteed) == 0 && len(o.Suggestions) == 0 && len(o.Shadow) == 0
}

// Activator orchestrates one hook invocation: load rules, match, filter
// by cooldown and strategy, limit, record activations, build the
// outcome. Every run is a linear, non-retryable pass; any failure at any
// stage collapses to the empty outcome so the host is never blocked.
type Activator struct {
	rules   RulesManager
	state   SessionState
	matcher *match.Matcher
	content ContentLoader
	events  EventLogger
}

// NewActivator wires an orchestrator. content and events may be nil.
func NewActivator(rules RulesManager, state SessionState, matcher *match.Matcher, content ContentLoader, events EventLogger) *Activator {
	return &Activator{
		rules:   rules,
		state:   state,
		matcher: matcher,
		content: content,
		events:  events,
	}
}

// RunPromptSubmit handles a user-prompt-submit invocation. It never
// returns an error and never panics: silent failure is the contract.
func (a *Activator) RunPromptSubmit(sessionID, prompt string) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			a.logFailure("prompt_submit", fmt.Errorf("panic: %v", r))
			outcome = Outcome{}
		}
	}()

	out, err := a.runPromptSubmit(sessionID, prompt)
	if err != nil {
		a.logFailure("prompt_submit", err)
		return Outcome{}
	}
	return out
}

// RecordFileEdit handles a post-tool-use invocation: track the modified
// file so later prompt turns can evaluate file triggers against it.
// Silent failure, same contract as RunPromptSubmit.
func (a *Activator) RecordFileEdit(sessionID, filePath string) {
	defer func() {
		if r := recover(); r != nil {
			a.logFailure("post_tool_use", fmt.Errorf("panic: %v", r))
		}
	}()

	if sessionID == "" || filePath == "" {
		return
	}
	if err := a.state.Init(); err != nil {
		a.logFailure("post_tool_use", err)
		return
	}
	if err := a.state.AddModifiedFile(sessionID, filePath); err != nil {
		a.logFailure("post_tool_use", err)
	}
}

// RecordStop handles a stop invocation. The engine keeps no per-turn
// state beyond the prompt scratch set, so this only logs the event.
func (a *Activator) RecordStop(sessionID string) {
	a.logEvent("hook.stop", map[string]any{"session_id": sessionID})
}

// runPromptSubmit is the fallible pipeline behind RunPromptSubmit.
// Stage order is fixed: cooldown filtering precedes strategy filtering,
// which precedes limiting, so neither cooled-down nor native-only
// matches consume a suggestion slot.
func (a *Activator) runPromptSubmit(sessionID, prompt string) (Outcome, error) {
	if sessionID == "" {
		return Outcome{}, fmt.Errorf("prompt submit: empty session id")
	}
	if err := a.state.Init(); err != nil {
		return Outcome{}, err
	}
	// A new prompt turn begins: reset the per-turn scratch set before
	// any matching so this turn's callbacks count each skill once.
	if err := a.state.ClearCurrentPromptSkills(sessionID); err != nil {
		return Outcome{}, err
	}

	cfg, err := a.rules.Load()
	if err != nil {
		return Outcome{}, err
	}
	ruleSet, err := a.rules.Compile(cfg)
	if err != nil {
		return Outcome{}, err
	}

	modified, err := a.state.GetModifiedFiles(sessionID)
	if err != nil {
		return Outcome{}, err
	}

	matches := a.matcher.MatchPrompt(ruleSet, prompt, modified)
	shadows := a.matcher.MatchShadowTriggers(ruleSet, prompt)

	cooldown := NewCooldownController(a.state, cfg.Settings)
	matches = cooldown.FilterCooled(sessionID, matches)

	actionable := dropNativeOnly(matches)
	actionable = match.LimitMatches(actionable, cfg.Settings.MaxSuggestions)

	outcome := a.buildOutcome(actionable, shadows, cooldown, sessionID, cfg.Settings.MaxSuggestions)

	for _, m := range actionable {
		if err := a.state.RecordSkillActivation(sessionID, m.SkillName); err != nil {
			// Recording is best-effort: the suggestion already stands.
			a.logFailure("record_activation", err)
		}
	}
	// Emitted shadow suggestions enter cooldown too, or a manual-only
	// skill would re-nag on every turn. The per-turn scratch set keeps a
	// skill emitted on both channels from being counted twice.
	for _, sh := range outcome.Shadow {
		if err := a.state.RecordSkillActivation(sessionID, sh.Name); err != nil {
			a.logFailure("record_activation", err)
		}
	}

	a.logEvent("hook.prompt_submit", map[string]any{
		"session_id": sessionID,
		"guaranteed": len(outcome.Guaranteed),
		"suggested":  len(outcome.Suggestions),
		"shadow":     len(outcome.Shadow),
	})
	return outcome, nil
}

// buildOutcome groups limited matches by strategy and attaches content
// to guaranteed activations. A guaranteed skill whose content cannot be
// loaded degrades to a suggestion rather than failing the run.
func (a *Activator) buildOutcome(actionable []match.Match, shadows []match.ShadowMatch, cooldown *CooldownController, sessionID string, maxSuggestions int) Outcome {
	var outcome Outcome
	for _, m := range actionable {
		switch m.Rule.ActivationStrategy {
		case models.StrategyGuaranteed:
			content := a.loadContent(m.SkillName)
			if content == "" {
				outcome.Suggestions = append(outcome.Suggestions, Suggestion{
					Name:        m.SkillName,
					Description: m.Rule.Description,
					Reason:      m.Reason,
				})
				continue
			}
			outcome.Guaranteed = append(outcome.Guaranteed, ActivatedSkill{
				Name:        m.SkillName,
				Description: m.Rule.Description,
				Content:     content,
				Reason:      m.Reason,
				Enforcement: m.Rule.Enforcement,
			})
		case models.StrategySuggestive:
			outcome.Suggestions = append(outcome.Suggestions, Suggestion{
				Name:        m.SkillName,
				Description: m.Rule.Description,
				Reason:      m.Reason,
			})
		}
	}

	count := 0
	for _, sh := range shadows {
		if maxSuggestions >= 0 && count >= maxSuggestions {
			break
		}
		if cooldown.InCooldown(sessionID, match.Match{SkillName: sh.SkillName, Rule: sh.Rule}) {
			continue
		}
		outcome.Shadow = append(outcome.Shadow, Suggestion{
			Name:        sh.SkillName,
			Description: sh.Rule.Description,
			Reason:      sh.Reason,
		})
		count++
	}
	return outcome
}

func (a *Activator) loadContent(skillName string) string {
	if a.content == nil {
		return ""
	}
	content, err := a.content.LoadContent(skillName)
	if err != nil {
		a.logFailure("load_content", err)
		return ""
	}
	return content
}

// dropNativeOnly removes matches the orchestrator must treat as "do
// nothing" output. They are still present in the raw match list for
// introspection consumers.
func dropNativeOnly(matches []match.Match) []match.Match {
	var out []match.Match
	for _, m := range matches {
		if m.Rule.ActivationStrategy == models.StrategyNativeOnly {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (a *Activator) logFailure(stage string, err error) {
	a.logEvent("activator.silent_failure", map[string]any{
		"stage": stage,
		"error": err.Error(),
	})
}

func (a *Activator) logEvent(eventType string, data map[string]any) {
	if a.events == nil {
		return
	}
	_ = a.events.LogEvent(eventType, data)
}

// PreviewMatches runs the matching pipeline without mutating session
// state. Used by the rules command and the MCP preview tool.
func (a *Activator) PreviewMatches(sessionID, prompt string) ([]match.Match, []match.ShadowMatch, error) {
	cfg, err := a.rules.Load()
	if err != nil {
		return nil, nil, err
	}
	ruleSet, err := a.rules.Compile(cfg)
	if err != nil {
		return nil, nil, err
	}
	var modified []string
	if sessionID != "" {
		modified, _ = a.state.GetModifiedFiles(sessionID)
	}
	return a.matcher.MatchPrompt(ruleSet, prompt, modified),
		a.matcher.MatchShadowTriggers(ruleSet, prompt),
		nil
}
