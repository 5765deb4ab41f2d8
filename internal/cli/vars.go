package cli

import (
	"github.com/valter-silva-au/skill-brain/internal/core"
	"github.com/valter-silva-au/skill-brain/internal/observability"
	"github.com/valter-silva-au/skill-brain/internal/skills"
	"github.com/valter-silva-au/skill-brain/internal/storage"
)

// Service instances, set during app initialization in app.go.
var (
	ProjectDir  string
	Activator   *core.Activator
	RulesMgr    core.RulesManager
	StateMgr    storage.SessionStateManager
	SkillLoader skills.Loader
	EventLog    observability.EventLog

	// ActivatorForDir builds an activator rooted at another project
	// directory. Hook payloads carry their own cwd, which can differ
	// from the directory skb was started in.
	ActivatorForDir func(dir string) *core.Activator
)

// activatorFor returns the activator for the hook payload's cwd,
// falling back to the process-wide one.
func activatorFor(cwd string) *core.Activator {
	if cwd != "" && cwd != ProjectDir && ActivatorForDir != nil {
		return ActivatorForDir(cwd)
	}
	return Activator
}
