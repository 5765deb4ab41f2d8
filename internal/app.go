// Package internal provides the App struct that wires all components of
// the Skill Brain system together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/skill-brain/internal/cli"
	"github.com/valter-silva-au/skill-brain/internal/core"
	"github.com/valter-silva-au/skill-brain/internal/match"
	"github.com/valter-silva-au/skill-brain/internal/observability"
	"github.com/valter-silva-au/skill-brain/internal/skills"
	"github.com/valter-silva-au/skill-brain/internal/storage"
)

// App holds all service dependencies for the Skill Brain system.
type App struct {
	ProjectDir string
	CacheDir   string

	// Configuration
	RulesMgr core.RulesManager

	// Storage layer
	StateMgr storage.SessionStateManager

	// Core services
	Matcher     *match.Matcher
	SkillLoader skills.Loader
	Activator   *core.Activator

	// Observability
	EventLog observability.EventLog
}

// NewApp creates and wires all components of the Skill Brain system.
// projectDir is the directory holding .skillbrain.yaml and .claude/;
// session state lives under the per-user cache directory.
func NewApp(projectDir string) (*App, error) {
	cacheDir := storage.DefaultCacheDir()
	app := &App{ProjectDir: projectDir, CacheDir: cacheDir}

	// --- Configuration ---
	app.RulesMgr = core.NewRulesManager(projectDir)

	// --- Storage layer ---
	app.StateMgr = storage.NewSessionStateManager(projectDir, cacheDir)

	// --- Observability ---
	if err := os.MkdirAll(cacheDir, 0o755); err == nil {
		eventLogPath := filepath.Join(cacheDir, "events.jsonl")
		app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
		if err != nil {
			// Non-fatal: disable diagnostics if log can't be created.
			app.EventLog = nil
		}
	}

	// --- Core services ---
	app.Matcher = match.NewMatcher(projectDir)
	app.SkillLoader = skills.NewLoader(projectDir)

	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog}
	}
	app.Activator = core.NewActivator(app.RulesMgr, app.StateMgr, app.Matcher, &contentLoaderAdapter{loader: app.SkillLoader}, evtAdapter)

	// --- Wire CLI package-level variables ---
	cli.ProjectDir = projectDir
	cli.Activator = app.Activator
	cli.RulesMgr = app.RulesMgr
	cli.StateMgr = app.StateMgr
	cli.SkillLoader = app.SkillLoader
	cli.EventLog = app.EventLog
	cli.ActivatorForDir = func(dir string) *core.Activator {
		return newActivatorForDir(dir, cacheDir, evtAdapter)
	}

	return app, nil
}

// newActivatorForDir builds a standalone activator rooted at another
// project directory. Hook payloads carry their own cwd, which can
// differ from the directory skb was started in.
func newActivatorForDir(projectDir, cacheDir string, events core.EventLogger) *core.Activator {
	rules := core.NewRulesManager(projectDir)
	state := storage.NewSessionStateManager(projectDir, cacheDir)
	matcher := match.NewMatcher(projectDir)
	loader := skills.NewLoader(projectDir)
	return core.NewActivator(rules, state, matcher, &contentLoaderAdapter{loader: loader}, events)
}

// Close releases resources held by the App, such as the event log file
// handle. It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveProjectDir determines the project directory. It checks the
// SKB_PROJECT_DIR env var, then walks up from the current directory
// looking for .skillbrain.yaml, falling back to cwd.
func ResolveProjectDir() string {
	if dir := os.Getenv("SKB_PROJECT_DIR"); dir != "" {
		return dir
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	cwd := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}

// contentLoaderAdapter adapts skills.Loader to core.ContentLoader.
type contentLoaderAdapter struct {
	loader skills.Loader
}

func (a *contentLoaderAdapter) LoadContent(skillName string) (string, error) {
	return a.loader.LoadContent(skillName)
}
