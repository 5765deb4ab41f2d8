package hooks

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/valter-silva-au/skill-brain/internal/core"
)

// promptSubmitOutput is the stdout payload the host merges into the
// conversation after a user-prompt-submit hook.
type promptSubmitOutput struct {
	HookSpecificOutput hookSpecificOutput `json:"hookSpecificOutput"`
}

type hookSpecificOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext"`
}

// WritePromptSubmitOutput renders the outcome as additional context for
// the host. An empty outcome writes nothing at all: silence is the
// "no activation" signal.
func WritePromptSubmitOutput(w io.Writer, outcome core.Outcome) error {
	context := RenderAdditionalContext(outcome)
	if context == "" {
		return nil
	}
	payload := promptSubmitOutput{
		HookSpecificOutput: hookSpecificOutput{
			HookEventName:     "UserPromptSubmit",
			AdditionalContext: context,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding hook output: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing hook output: %w", err)
	}
	return nil
}

// RenderAdditionalContext formats the outcome as the markdown block
// injected into the conversation. Guaranteed skills carry their full
// content; suggestions and shadow hints are one line each.
func RenderAdditionalContext(outcome core.Outcome) string {
	if outcome.Empty() {
		return ""
	}
	var b strings.Builder

	for _, skill := range outcome.Guaranteed {
		fmt.Fprintf(&b, "<skill name=%q>\n%s\n</skill>\n\n", skill.Name, skill.Content)
	}

	if len(outcome.Suggestions) > 0 {
		b.WriteString("Relevant skills for this request:\n")
		for _, s := range outcome.Suggestions {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", s.Name, s.Description, s.Reason)
		}
		b.WriteString("\n")
	}

	if len(outcome.Shadow) > 0 {
		b.WriteString("Possibly relevant skills:\n")
		for _, s := range outcome.Shadow {
			fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Description)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
