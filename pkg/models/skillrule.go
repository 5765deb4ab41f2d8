package models

// ActivationStrategy controls how a matched skill is surfaced to the
// assistant: full content injection, a suggestion hint, or nothing.
type ActivationStrategy string

const (
	// StrategyGuaranteed injects the skill's full content into the turn.
	StrategyGuaranteed ActivationStrategy = "guaranteed"
	// StrategySuggestive surfaces the skill as a name+description hint.
	StrategySuggestive ActivationStrategy = "suggestive"
	// StrategyPromptEnhanced is a deprecated alias. Configurations may
	// still declare it; the loader normalizes it to StrategyNativeOnly.
	StrategyPromptEnhanced ActivationStrategy = "prompt_enhanced"
	// StrategyNativeOnly scores and records the skill but produces no output.
	StrategyNativeOnly ActivationStrategy = "native_only"
)

// Priority orders skills with equal match scores.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns the sort rank for a priority; lower sorts first.
// Unknown priorities rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Enforcement indicates how strongly an activated skill should be applied.
type Enforcement string

const (
	EnforcementBlock   Enforcement = "block"
	EnforcementWarn    Enforcement = "warn"
	EnforcementSuggest Enforcement = "suggest"
)

// PromptTriggers match against the user's prompt text.
type PromptTriggers struct {
	Keywords       []string `yaml:"keywords" mapstructure:"keywords"`
	IntentPatterns []string `yaml:"intent_patterns" mapstructure:"intent_patterns"`
}

// Empty reports whether no prompt triggers are declared.
func (t PromptTriggers) Empty() bool {
	return len(t.Keywords) == 0 && len(t.IntentPatterns) == 0
}

// FileTriggers match against files modified during the session.
type FileTriggers struct {
	PathPatterns    []string `yaml:"path_patterns" mapstructure:"path_patterns"`
	ContentPatterns []string `yaml:"content_patterns" mapstructure:"content_patterns"`
}

// Empty reports whether no file triggers are declared.
func (t FileTriggers) Empty() bool {
	return len(t.PathPatterns) == 0 && len(t.ContentPatterns) == 0
}

// SkillRule is one validated entry in the rule set, keyed by skill name
// in RulesConfig. A rule with no triggers of any kind is legal but inert.
type SkillRule struct {
	Description        string             `yaml:"description" mapstructure:"description"`
	ActivationStrategy ActivationStrategy `yaml:"activation_strategy" mapstructure:"activation_strategy"`
	Priority           Priority           `yaml:"priority" mapstructure:"priority"`
	Enforcement        Enforcement        `yaml:"enforcement" mapstructure:"enforcement"`
	// CooldownMinutes overrides the global recent-activation threshold
	// when greater than zero.
	CooldownMinutes int `yaml:"cooldown_minutes" mapstructure:"cooldown_minutes"`

	PromptTriggers PromptTriggers `yaml:"prompt_triggers" mapstructure:"prompt_triggers"`
	FileTriggers   FileTriggers   `yaml:"file_triggers" mapstructure:"file_triggers"`
	// ShadowTriggers fire only when the rule's primary prompt triggers
	// did not, producing non-binding suggestions for manual-only skills.
	ShadowTriggers PromptTriggers `yaml:"shadow_triggers" mapstructure:"shadow_triggers"`

	// PreToolTriggers and StopTriggers are parsed and carried so existing
	// configurations round-trip, but the activation engine ignores them.
	PreToolTriggers PromptTriggers `yaml:"pre_tool_triggers" mapstructure:"pre_tool_triggers"`
	StopTriggers    PromptTriggers `yaml:"stop_triggers" mapstructure:"stop_triggers"`
}

// HasTriggers reports whether the rule declares any trigger the engine
// evaluates (prompt, file, or shadow).
func (r SkillRule) HasTriggers() bool {
	return !r.PromptTriggers.Empty() || !r.FileTriggers.Empty() || !r.ShadowTriggers.Empty()
}

// Thresholds groups timing thresholds from the settings section.
type Thresholds struct {
	// RecentActivationMinutes is the default cooldown window applied to
	// skills without a per-rule override.
	RecentActivationMinutes int `yaml:"recent_activation_minutes" mapstructure:"recent_activation_minutes"`
}

// Settings holds global engine settings from .skillbrain.yaml.
type Settings struct {
	MaxSuggestions int        `yaml:"max_suggestions" mapstructure:"max_suggestions"`
	Thresholds     Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
}

// DefaultSettings returns the documented defaults: at most 3 suggestions
// per turn and a 5 minute activation cooldown.
func DefaultSettings() Settings {
	return Settings{
		MaxSuggestions: 3,
		Thresholds: Thresholds{
			RecentActivationMinutes: 5,
		},
	}
}

// RulesConfig is the validated in-memory rule set consumed by the
// matching engine and orchestrator.
type RulesConfig struct {
	Version  string               `yaml:"version" mapstructure:"version"`
	Settings Settings             `yaml:"settings" mapstructure:"settings"`
	Skills   map[string]SkillRule `yaml:"skills" mapstructure:"skills"`
	// SkillOrder preserves declaration order of the skills map so that
	// equal-score, equal-priority matches sort deterministically.
	SkillOrder []string `yaml:"-" mapstructure:"-"`
}
