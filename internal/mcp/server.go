// Package mcp provides an MCP (Model Context Protocol) server that
// exposes skill-brain introspection as MCP tools for AI coding
// assistants: session state, rule previews, and activation history.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/skill-brain/internal/core"
	"github.com/valter-silva-au/skill-brain/internal/storage"
)

// Server wraps skill-brain services and exposes them as MCP tools.
type Server struct {
	server    *gomcp.Server
	state     storage.SessionStateManager
	activator *core.Activator
}

// NewServer creates a new MCP server with the given service
// dependencies.
func NewServer(state storage.SessionStateManager, activator *core.Activator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		state:     state,
		activator: activator,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "skb", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getSessionStateInput struct {
	SessionID string `json:"session_id" jsonschema:"required,the assistant session identifier"`
}

type getSessionStateOutput struct {
	SessionID       string   `json:"session_id"`
	ActivatedSkills []string `json:"activated_skills"`
	ModifiedFiles   []string `json:"modified_files"`
	ActiveDomains   []string `json:"active_domains"`
}

type listSessionsInput struct{}

type sessionSummary struct {
	SessionID      string `json:"session_id"`
	SkillCount     int    `json:"skill_count"`
	FileCount      int    `json:"file_count"`
	UpdatedAt      string `json:"updated_at,omitempty"`
	UpdatedAtEpoch int64  `json:"updated_at_ms"`
}

type listSessionsOutput struct {
	Sessions []sessionSummary `json:"sessions"`
	Count    int              `json:"count"`
}

type previewMatchesInput struct {
	Prompt    string `json:"prompt" jsonschema:"required,the hypothetical user prompt to evaluate against the rules"`
	SessionID string `json:"session_id,omitempty" jsonschema:"optional session whose modified files feed file triggers"`
}

type matchOutput struct {
	Skill    string `json:"skill"`
	Score    int    `json:"score"`
	Strategy string `json:"strategy"`
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

type previewMatchesOutput struct {
	Matches []matchOutput `json:"matches"`
	Shadow  []matchOutput `json:"shadow"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_session_state",
		Description: "Get the tracked state of one session: activated skills, modified files, and inferred work domains.",
	}, s.handleGetSessionState)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_sessions",
		Description: "List all sessions tracked for this project with per-session skill and file counts.",
	}, s.handleListSessions)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "preview_matches",
		Description: "Dry-run the matching engine against a prompt. Returns scored matches and shadow suggestions without recording activations.",
	}, s.handlePreviewMatches)
}

// --- Tool handlers ---

func (s *Server) handleGetSessionState(_ context.Context, _ *gomcp.CallToolRequest, input getSessionStateInput) (*gomcp.CallToolResult, getSessionStateOutput, error) {
	if input.SessionID == "" {
		return errorResult("session_id is required"), getSessionStateOutput{}, nil
	}

	skills, err := s.state.GetActivatedSkills(input.SessionID)
	if err != nil {
		return errorResult(fmt.Sprintf("reading session %s: %s", input.SessionID, err)), getSessionStateOutput{}, nil
	}
	files, err := s.state.GetModifiedFiles(input.SessionID)
	if err != nil {
		return errorResult(fmt.Sprintf("reading session %s: %s", input.SessionID, err)), getSessionStateOutput{}, nil
	}
	domains, err := s.state.GetActiveDomains(input.SessionID)
	if err != nil {
		return errorResult(fmt.Sprintf("reading session %s: %s", input.SessionID, err)), getSessionStateOutput{}, nil
	}

	out := getSessionStateOutput{
		SessionID:       input.SessionID,
		ActivatedSkills: skills,
		ModifiedFiles:   files,
		ActiveDomains:   domains,
	}
	return nil, out, nil
}

func (s *Server) handleListSessions(_ context.Context, _ *gomcp.CallToolRequest, _ listSessionsInput) (*gomcp.CallToolResult, listSessionsOutput, error) {
	doc, err := s.state.Snapshot()
	if err != nil {
		return errorResult(fmt.Sprintf("reading session store: %s", err)), listSessionsOutput{}, nil
	}

	out := listSessionsOutput{}
	for id, rec := range doc.Sessions {
		summary := sessionSummary{
			SessionID:      id,
			SkillCount:     len(rec.ActivatedSkills),
			FileCount:      len(rec.ModifiedFiles),
			UpdatedAtEpoch: rec.UpdatedAt,
		}
		if rec.UpdatedAt > 0 {
			summary.UpdatedAt = time.UnixMilli(rec.UpdatedAt).UTC().Format(time.RFC3339)
		}
		out.Sessions = append(out.Sessions, summary)
	}
	sort.Slice(out.Sessions, func(i, j int) bool {
		if out.Sessions[i].UpdatedAtEpoch != out.Sessions[j].UpdatedAtEpoch {
			return out.Sessions[i].UpdatedAtEpoch > out.Sessions[j].UpdatedAtEpoch
		}
		return out.Sessions[i].SessionID < out.Sessions[j].SessionID
	})
	out.Count = len(out.Sessions)

	return nil, out, nil
}

func (s *Server) handlePreviewMatches(_ context.Context, _ *gomcp.CallToolRequest, input previewMatchesInput) (*gomcp.CallToolResult, previewMatchesOutput, error) {
	if input.Prompt == "" {
		return errorResult("prompt is required"), previewMatchesOutput{}, nil
	}

	matches, shadows, err := s.activator.PreviewMatches(input.SessionID, input.Prompt)
	if err != nil {
		return errorResult(fmt.Sprintf("previewing matches: %s", err)), previewMatchesOutput{}, nil
	}

	out := previewMatchesOutput{}
	for _, m := range matches {
		out.Matches = append(out.Matches, matchOutput{
			Skill:    m.SkillName,
			Score:    m.Score,
			Strategy: string(m.Rule.ActivationStrategy),
			Priority: string(m.Rule.Priority),
			Reason:   m.Reason,
		})
	}
	for _, sh := range shadows {
		out.Shadow = append(out.Shadow, matchOutput{
			Skill:    sh.SkillName,
			Score:    sh.Score,
			Strategy: string(sh.Rule.ActivationStrategy),
			Priority: string(sh.Rule.Priority),
			Reason:   sh.Reason,
		})
	}

	return nil, out, nil
}

// --- Helpers ---

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
