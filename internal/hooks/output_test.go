package hooks

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/valter-silva-au/skill-brain/internal/core"
)

func TestWritePromptSubmitOutputEmptyOutcomeWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePromptSubmitOutput(&buf, core.Outcome{}); err != nil {
		t.Fatalf("WritePromptSubmitOutput: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q for empty outcome, want nothing", buf.String())
	}
}

func TestWritePromptSubmitOutputShape(t *testing.T) {
	outcome := core.Outcome{
		Guaranteed: []core.ActivatedSkill{
			{Name: "testing", Content: "Run the suite."},
		},
		Suggestions: []core.Suggestion{
			{Name: "terraform", Description: "Terraform workflows", Reason: `keyword "plan"`},
		},
	}

	var buf bytes.Buffer
	if err := WritePromptSubmitOutput(&buf, outcome); err != nil {
		t.Fatalf("WritePromptSubmitOutput: %v", err)
	}

	var payload struct {
		HookSpecificOutput struct {
			HookEventName     string `json:"hookEventName"`
			AdditionalContext string `json:"additionalContext"`
		} `json:"hookSpecificOutput"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if payload.HookSpecificOutput.HookEventName != "UserPromptSubmit" {
		t.Errorf("hookEventName = %q", payload.HookSpecificOutput.HookEventName)
	}
	ctx := payload.HookSpecificOutput.AdditionalContext
	if !strings.Contains(ctx, `<skill name="testing">`) || !strings.Contains(ctx, "Run the suite.") {
		t.Errorf("context missing guaranteed content:\n%s", ctx)
	}
	if !strings.Contains(ctx, "terraform: Terraform workflows") {
		t.Errorf("context missing suggestion line:\n%s", ctx)
	}
}

func TestRenderAdditionalContext(t *testing.T) {
	outcome := core.Outcome{
		Suggestions: []core.Suggestion{
			{Name: "a", Description: "A", Reason: "r1"},
			{Name: "b", Description: "B", Reason: "r2"},
		},
		Shadow: []core.Suggestion{
			{Name: "c", Description: "C"},
		},
	}

	got := RenderAdditionalContext(outcome)
	if !strings.Contains(got, "Relevant skills for this request:") {
		t.Errorf("missing suggestions header:\n%s", got)
	}
	if !strings.Contains(got, "Possibly relevant skills:") {
		t.Errorf("missing shadow header:\n%s", got)
	}
	if !strings.Contains(got, "- a: A (r1)") || !strings.Contains(got, "- c: C") {
		t.Errorf("missing entries:\n%s", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Errorf("trailing newline not trimmed:\n%q", got)
	}

	if RenderAdditionalContext(core.Outcome{}) != "" {
		t.Error("empty outcome must render empty context")
	}
}
