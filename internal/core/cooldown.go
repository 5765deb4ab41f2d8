package core

import (
	"time"

	"github.com/valter-silva-au/skill-brain/internal/match"
	"github.com/valter-silva-au/skill-brain/pkg/models"
)

// ActivationHistory is the slice of the session store the cooldown
// controller needs. Satisfied by storage.SessionStateManager.
type ActivationHistory interface {
	WasRecentlyActivated(sessionID, skillName string, window time.Duration) (bool, error)
}

// CooldownController decides whether a matched skill is still cooling
// down from a recent activation in the same session.
type CooldownController struct {
	history       ActivationHistory
	defaultWindow time.Duration
}

// NewCooldownController creates a controller with the global default
// window taken from settings.thresholds.recent_activation_minutes.
func NewCooldownController(history ActivationHistory, settings models.Settings) *CooldownController {
	return &CooldownController{
		history:       history,
		defaultWindow: time.Duration(settings.Thresholds.RecentActivationMinutes) * time.Minute,
	}
}

// Window returns the effective cooldown for a rule: the per-rule
// override when set, otherwise the global default.
func (c *CooldownController) Window(rule models.SkillRule) time.Duration {
	if rule.CooldownMinutes > 0 {
		return time.Duration(rule.CooldownMinutes) * time.Minute
	}
	return c.defaultWindow
}

// InCooldown reports whether the match's skill activated within its
// effective window. History errors degrade to "not cooling down" so a
// state failure can only over-suggest, never block.
func (c *CooldownController) InCooldown(sessionID string, m match.Match) bool {
	window := c.Window(m.Rule)
	if window <= 0 {
		return false
	}
	recent, err := c.history.WasRecentlyActivated(sessionID, m.SkillName, window)
	if err != nil {
		return false
	}
	return recent
}

// FilterCooled removes matches that are cooling down. It runs before
// strategy filtering and before limiting, so cooled-down skills never
// occupy a suggestion slot.
func (c *CooldownController) FilterCooled(sessionID string, matches []match.Match) []match.Match {
	var out []match.Match
	for _, m := range matches {
		if c.InCooldown(sessionID, m) {
			continue
		}
		out = append(out, m)
	}
	return out
}
