// Package hooks owns the host-facing hook wire format: the JSON the
// assistant writes to stdin for each lifecycle event, and the JSON the
// engine writes back on stdout when it has context to inject.
package hooks

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
)

// UserPromptSubmitInput is the stdin payload of a user-prompt-submit
// hook invocation.
type UserPromptSubmitInput struct {
	SessionID string `json:"session_id"`
	CWD       string `json:"cwd"`
	Prompt    string `json:"prompt"`
}

// PostToolUseInput is the stdin payload of a post-tool-use hook
// invocation. ToolInput carries the tool's own parameters; only the
// file path is interesting here.
type PostToolUseInput struct {
	SessionID string         `json:"session_id"`
	CWD       string         `json:"cwd"`
	ToolName  string         `json:"tool_name"`
	ToolInput map[string]any `json:"tool_input"`
}

// StopInput is the stdin payload of a stop hook invocation.
type StopInput struct {
	SessionID string `json:"session_id"`
	CWD       string `json:"cwd"`
}

// FilePath extracts the edited file's path from the tool input. Write
// and Edit style tools use file_path; some hosts send path. Returns ""
// when no file is involved.
func (p *PostToolUseInput) FilePath() string {
	for _, key := range []string{"file_path", "path", "notebook_path"} {
		if raw, ok := p.ToolInput[key]; ok {
			if s, ok := raw.(string); ok && s != "" {
				return filepath.Clean(s)
			}
		}
	}
	return ""
}

// ParseStdin decodes a hook payload from r. Empty input is not an
// error: it yields the zero value, and the caller decides whether the
// zero value is actionable.
func ParseStdin[T any](r io.Reader) (*T, error) {
	var payload T
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading hook input: %w", err)
	}
	if len(data) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing hook input: %w", err)
	}
	return &payload, nil
}
