package core

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/valter-silva-au/skill-brain/internal/match"
	"github.com/valter-silva-au/skill-brain/internal/storage"
)

type fakeContentLoader struct {
	content map[string]string
}

func (f *fakeContentLoader) LoadContent(skillName string) (string, error) {
	content, ok := f.content[skillName]
	if !ok {
		return "", fmt.Errorf("skill %q not found", skillName)
	}
	return content, nil
}

type capturingEventLogger struct {
	events []string
}

func (c *capturingEventLogger) LogEvent(eventType string, data map[string]any) error {
	c.events = append(c.events, eventType)
	return nil
}

func (c *capturingEventLogger) has(eventType string) bool {
	for _, e := range c.events {
		if e == eventType {
			return true
		}
	}
	return false
}

// newTestActivator builds an activator over a real rules file and a real
// session store, mirroring one hook process.
func newTestActivator(t *testing.T, config string, content map[string]string) (*Activator, storage.SessionStateManager, *capturingEventLogger) {
	t.Helper()
	projectDir := t.TempDir()
	if config != "" {
		if err := os.WriteFile(filepath.Join(projectDir, ConfigFileName), []byte(config), 0o644); err != nil {
			t.Fatalf("writing config: %v", err)
		}
	}

	state := storage.NewSessionStateManager(projectDir, t.TempDir())
	events := &capturingEventLogger{}
	activator := NewActivator(
		NewRulesManager(projectDir),
		state,
		match.NewMatcher(projectDir),
		&fakeContentLoader{content: content},
		events,
	)
	return activator, state, events
}

func TestRunPromptSubmitGuaranteedInjectsContent(t *testing.T) {
	activator, state, _ := newTestActivator(t, `skills:
  testing:
    description: Testing workflows
    activation_strategy: guaranteed
    prompt_triggers:
      keywords: [coverage]
`, map[string]string{"testing": "# Testing skill\nAlways run the suite."})

	outcome := activator.RunPromptSubmit("s1", "improve the coverage report")
	if len(outcome.Guaranteed) != 1 {
		t.Fatalf("guaranteed = %d, want 1", len(outcome.Guaranteed))
	}
	got := outcome.Guaranteed[0]
	if got.Name != "testing" || got.Content != "# Testing skill\nAlways run the suite." {
		t.Errorf("guaranteed = %+v", got)
	}
	if len(outcome.Suggestions) != 0 || len(outcome.Shadow) != 0 {
		t.Errorf("unexpected extra output: %+v", outcome)
	}

	// The activation was recorded for cooldown tracking.
	skills, err := state.GetActivatedSkills("s1")
	if err != nil || len(skills) != 1 || skills[0] != "testing" {
		t.Errorf("recorded skills = %v err = %v", skills, err)
	}
}

func TestRunPromptSubmitGuaranteedWithoutContentDegrades(t *testing.T) {
	activator, _, events := newTestActivator(t, `skills:
  testing:
    description: Testing workflows
    activation_strategy: guaranteed
    prompt_triggers:
      keywords: [coverage]
`, nil)

	outcome := activator.RunPromptSubmit("s1", "improve the coverage report")
	if len(outcome.Guaranteed) != 0 {
		t.Fatalf("guaranteed = %d, want 0 when content is missing", len(outcome.Guaranteed))
	}
	if len(outcome.Suggestions) != 1 || outcome.Suggestions[0].Name != "testing" {
		t.Fatalf("suggestions = %+v, want degraded testing suggestion", outcome.Suggestions)
	}
	if !events.has("load_content") && !events.has("activator.silent_failure") {
		t.Error("expected a diagnostic event for the failed content load")
	}
}

func TestRunPromptSubmitAppliesSuggestionLimit(t *testing.T) {
	activator, _, _ := newTestActivator(t, `settings:
  max_suggestions: 2
skills:
  one:
    description: One
    activation_strategy: suggestive
    priority: critical
    prompt_triggers: {keywords: [deploy]}
  two:
    description: Two
    activation_strategy: suggestive
    priority: high
    prompt_triggers: {keywords: [deploy]}
  three:
    description: Three
    activation_strategy: suggestive
    priority: low
    prompt_triggers: {keywords: [deploy]}
`, nil)

	outcome := activator.RunPromptSubmit("s1", "deploy the service")
	if len(outcome.Suggestions) != 2 {
		t.Fatalf("suggestions = %d, want 2", len(outcome.Suggestions))
	}
	if outcome.Suggestions[0].Name != "one" || outcome.Suggestions[1].Name != "two" {
		t.Errorf("suggestion order = %v", outcome.Suggestions)
	}
}

func TestRunPromptSubmitDropsNativeOnly(t *testing.T) {
	activator, state, _ := newTestActivator(t, `skills:
  tracked:
    description: Tracked silently
    activation_strategy: native_only
    prompt_triggers: {keywords: [deploy]}
`, nil)

	outcome := activator.RunPromptSubmit("s1", "deploy it")
	if !outcome.Empty() {
		t.Fatalf("outcome = %+v, want empty for native_only", outcome)
	}

	// native_only matches are dropped before recording: they produce no
	// output and no cooldown entry.
	skills, _ := state.GetActivatedSkills("s1")
	if len(skills) != 0 {
		t.Errorf("recorded skills = %v, want none", skills)
	}
}

func TestRunPromptSubmitCooldownSuppressesRepeat(t *testing.T) {
	activator, _, _ := newTestActivator(t, `skills:
  testing:
    description: Testing workflows
    activation_strategy: suggestive
    prompt_triggers: {keywords: [coverage]}
`, nil)

	first := activator.RunPromptSubmit("s1", "check coverage")
	if len(first.Suggestions) != 1 {
		t.Fatalf("first run suggestions = %d, want 1", len(first.Suggestions))
	}

	// Immediate repeat inside the default 5 minute window.
	second := activator.RunPromptSubmit("s1", "check coverage again")
	if len(second.Suggestions) != 0 {
		t.Fatalf("second run suggestions = %+v, want none during cooldown", second.Suggestions)
	}

	// A different session has its own cooldown state.
	other := activator.RunPromptSubmit("s2", "check coverage")
	if len(other.Suggestions) != 1 {
		t.Fatalf("other session suggestions = %d, want 1", len(other.Suggestions))
	}
}

func TestRunPromptSubmitShadowFallback(t *testing.T) {
	activator, _, _ := newTestActivator(t, `skills:
  release:
    description: Release process
    activation_strategy: suggestive
    prompt_triggers: {keywords: [release]}
    shadow_triggers: {keywords: [ship]}
`, nil)

	// Shadow keyword only: fallback suggestion channel.
	outcome := activator.RunPromptSubmit("s1", "ship the feature")
	if len(outcome.Suggestions) != 0 {
		t.Fatalf("suggestions = %+v, want none", outcome.Suggestions)
	}
	if len(outcome.Shadow) != 1 || outcome.Shadow[0].Name != "release" {
		t.Fatalf("shadow = %+v, want release", outcome.Shadow)
	}

	// Primary keyword: normal suggestion, no shadow duplicate.
	outcome = activator.RunPromptSubmit("s2", "start the release")
	if len(outcome.Suggestions) != 1 || len(outcome.Shadow) != 0 {
		t.Fatalf("outcome = %+v, want one suggestion and no shadow", outcome)
	}
}

func TestRunPromptSubmitShadowEntersCooldown(t *testing.T) {
	activator, state, _ := newTestActivator(t, `skills:
  refactoring:
    description: Refactoring guide
    activation_strategy: native_only
    shadow_triggers: {keywords: [refactor]}
`, nil)

	first := activator.RunPromptSubmit("s1", "refactor the parser")
	if len(first.Shadow) != 1 || first.Shadow[0].Name != "refactoring" {
		t.Fatalf("first shadow = %+v, want refactoring", first.Shadow)
	}

	// The emitted shadow suggestion was recorded, so an immediate repeat
	// inside the default window stays quiet.
	second := activator.RunPromptSubmit("s1", "refactor it some more")
	if len(second.Shadow) != 0 {
		t.Fatalf("second shadow = %+v, want none during cooldown", second.Shadow)
	}

	skills, err := state.GetActivatedSkills("s1")
	if err != nil || len(skills) != 1 || skills[0] != "refactoring" {
		t.Errorf("recorded skills = %v err = %v", skills, err)
	}

	// Other sessions are unaffected.
	other := activator.RunPromptSubmit("s2", "refactor everything")
	if len(other.Shadow) != 1 {
		t.Fatalf("other session shadow = %+v, want 1", other.Shadow)
	}
}

func TestRunPromptSubmitFileTriggersAfterEdit(t *testing.T) {
	activator, _, _ := newTestActivator(t, `skills:
  terraform:
    description: Terraform workflows
    activation_strategy: suggestive
    file_triggers: {path_patterns: ["**/*.tf"]}
`, nil)

	// No files tracked yet: nothing matches.
	outcome := activator.RunPromptSubmit("s1", "whats next")
	if !outcome.Empty() {
		t.Fatalf("outcome = %+v, want empty before any edit", outcome)
	}

	activator.RecordFileEdit("s1", "infra/main.tf")

	outcome = activator.RunPromptSubmit("s1", "whats next")
	if len(outcome.Suggestions) != 1 || outcome.Suggestions[0].Name != "terraform" {
		t.Fatalf("outcome = %+v, want terraform suggestion after edit", outcome)
	}
}

func TestRunPromptSubmitEmptySessionID(t *testing.T) {
	activator, _, events := newTestActivator(t, "", nil)

	outcome := activator.RunPromptSubmit("", "any prompt")
	if !outcome.Empty() {
		t.Fatalf("outcome = %+v, want empty", outcome)
	}
	if !events.has("activator.silent_failure") {
		t.Error("expected silent failure event")
	}
}

func TestRunPromptSubmitBrokenConfigIsSilent(t *testing.T) {
	activator, _, events := newTestActivator(t, `skills:
  broken:
    description: d
    prompt_triggers: {intent_patterns: ["([unclosed"]}
`, nil)

	outcome := activator.RunPromptSubmit("s1", "anything")
	if !outcome.Empty() {
		t.Fatalf("outcome = %+v, want empty on broken config", outcome)
	}
	if !events.has("activator.silent_failure") {
		t.Error("expected silent failure event")
	}
}

func TestRecordFileEditIgnoresEmptyInput(t *testing.T) {
	activator, state, _ := newTestActivator(t, "", nil)

	activator.RecordFileEdit("", "main.go")
	activator.RecordFileEdit("s1", "")

	doc, err := state.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(doc.Sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(doc.Sessions))
	}
}

func TestPreviewMatchesDoesNotMutateState(t *testing.T) {
	activator, state, _ := newTestActivator(t, `skills:
  testing:
    description: Testing workflows
    activation_strategy: suggestive
    prompt_triggers: {keywords: [coverage]}
`, nil)

	matches, _, err := activator.PreviewMatches("s1", "check coverage")
	if err != nil {
		t.Fatalf("PreviewMatches: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}

	skills, _ := state.GetActivatedSkills("s1")
	if len(skills) != 0 {
		t.Errorf("preview recorded skills %v", skills)
	}
}

func TestRunPromptSubmitRepeatAcrossStrategies(t *testing.T) {
	// A guaranteed and a suggestive rule both fire; the guaranteed one
	// sorts first via priority and both are emitted within the limit.
	activator, _, _ := newTestActivator(t, `skills:
  guard:
    description: Guard rails
    activation_strategy: guaranteed
    priority: critical
    prompt_triggers: {keywords: [deploy]}
  hint:
    description: Deployment hints
    activation_strategy: suggestive
    priority: low
    prompt_triggers: {keywords: [deploy]}
`, map[string]string{"guard": "Guard content."})

	outcome := activator.RunPromptSubmit("s1", "deploy the service")
	if len(outcome.Guaranteed) != 1 || outcome.Guaranteed[0].Name != "guard" {
		t.Fatalf("guaranteed = %+v", outcome.Guaranteed)
	}
	if len(outcome.Suggestions) != 1 || outcome.Suggestions[0].Name != "hint" {
		t.Fatalf("suggestions = %+v", outcome.Suggestions)
	}
}
