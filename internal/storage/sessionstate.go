// Package storage owns the on-disk session state shared by every hook
// invocation. Each invocation is a fresh short-lived process, so all
// state a later callback needs must be durable before the earlier one
// exits. The store keeps one JSON document per project, keyed by session
// ID, and serializes cross-process access with a file lock plus an
// atomic temp-file-and-rename commit.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/skill-brain/pkg/models"
)

// SessionStateManager is the session store API. All other components go
// through it; nothing else touches the backing file.
type SessionStateManager interface {
	// Init prepares the store directory. A corrupt or unreadable store
	// file is reset to empty rather than reported: a state failure must
	// never block an activation decision.
	Init() error

	// RecordSkillActivation appends an activation timestamp for the
	// skill, unless the skill was already recorded during the current
	// prompt turn.
	RecordSkillActivation(sessionID, skillName string) error

	// GetActivatedSkills returns the names of all skills activated this
	// session, in first-activation order.
	GetActivatedSkills(sessionID string) ([]string, error)

	// WasRecentlyActivated reports whether the skill's most recent
	// activation is younger than window.
	WasRecentlyActivated(sessionID, skillName string, window time.Duration) (bool, error)

	// AddModifiedFile records a touched file (set semantics) and
	// refreshes the session's derived active domains.
	AddModifiedFile(sessionID, path string) error

	// GetModifiedFiles returns the session's touched files in
	// first-seen order.
	GetModifiedFiles(sessionID string) ([]string, error)

	// GetActiveDomains returns the domains inferred from the session's
	// modified files.
	GetActiveDomains(sessionID string) ([]string, error)

	// ClearCurrentPromptSkills resets the per-turn scratch set. It runs
	// at the start of each prompt-submit invocation, before matching.
	ClearCurrentPromptSkills(sessionID string) error

	// Snapshot returns a copy of the whole store document for
	// introspection consumers (status command, MCP tools, dashboard).
	Snapshot() (*models.SessionFile, error)

	// StorePath returns the path of the backing JSON document.
	StorePath() string
}

type fileSessionState struct {
	projectDir string
	cacheDir   string
	now        func() time.Time
}

// NewSessionStateManager creates a store for the given project whose
// backing file lives under cacheDir. The file name carries a digest of
// the project directory so different projects never share state.
func NewSessionStateManager(projectDir, cacheDir string) SessionStateManager {
	return &fileSessionState{
		projectDir: projectDir,
		cacheDir:   cacheDir,
		now:        time.Now,
	}
}

// newSessionStateWithClock creates a store with an injectable clock for
// cooldown expiry tests.
func newSessionStateWithClock(projectDir, cacheDir string, now func() time.Time) SessionStateManager {
	return &fileSessionState{
		projectDir: projectDir,
		cacheDir:   cacheDir,
		now:        now,
	}
}

// DefaultCacheDir returns the per-user cache directory for session state.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "skill-brain")
}

// StorePath returns the per-project store file path.
func (s *fileSessionState) StorePath() string {
	digest := sha256.Sum256([]byte(filepath.Clean(s.projectDir)))
	name := fmt.Sprintf("state-%s.json", hex.EncodeToString(digest[:])[:12])
	return filepath.Join(s.cacheDir, name)
}

func (s *fileSessionState) lockPath() string {
	return s.StorePath() + ".lock"
}

// Init creates the cache directory and resets a corrupt store file.
func (s *fileSessionState) Init() error {
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return fmt.Errorf("creating session cache directory: %w", err)
	}
	data, err := os.ReadFile(s.StorePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Created lazily on first write.
		}
		// Unreadable: recover by starting empty.
		return s.writeFile(models.NewSessionFile())
	}
	var doc models.SessionFile
	if err := json.Unmarshal(data, &doc); err != nil || doc.Sessions == nil {
		return s.writeFile(models.NewSessionFile())
	}
	return nil
}

func (s *fileSessionState) RecordSkillActivation(sessionID, skillName string) error {
	return s.mutate(sessionID, func(rec *models.SessionRecord) {
		for _, name := range rec.CurrentPromptSkills {
			if name == skillName {
				return // Already counted this turn.
			}
		}
		rec.ActivatedSkills[skillName] = append(rec.ActivatedSkills[skillName], s.nowMillis())
		rec.CurrentPromptSkills = append(rec.CurrentPromptSkills, skillName)
	})
}

func (s *fileSessionState) GetActivatedSkills(sessionID string) ([]string, error) {
	rec, err := s.read(sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	type firstSeen struct {
		name string
		at   int64
	}
	var skills []firstSeen
	for name, stamps := range rec.ActivatedSkills {
		if len(stamps) == 0 {
			continue
		}
		skills = append(skills, firstSeen{name: name, at: stamps[0]})
	}
	sort.Slice(skills, func(i, j int) bool {
		if skills[i].at != skills[j].at {
			return skills[i].at < skills[j].at
		}
		return skills[i].name < skills[j].name
	})
	names := make([]string, len(skills))
	for i, sk := range skills {
		names[i] = sk.name
	}
	return names, nil
}

func (s *fileSessionState) WasRecentlyActivated(sessionID, skillName string, window time.Duration) (bool, error) {
	rec, err := s.read(sessionID)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	stamps := rec.ActivatedSkills[skillName]
	if len(stamps) == 0 {
		return false, nil
	}
	last := stamps[len(stamps)-1]
	return s.nowMillis()-last < window.Milliseconds(), nil
}

func (s *fileSessionState) AddModifiedFile(sessionID, path string) error {
	rel := normalizePath(s.projectDir, path)
	if rel == "" {
		return nil
	}
	return s.mutate(sessionID, func(rec *models.SessionRecord) {
		for _, existing := range rec.ModifiedFiles {
			if existing == rel {
				return
			}
		}
		rec.ModifiedFiles = append(rec.ModifiedFiles, rel)
		rec.ActiveDomains = InferDomains(rec.ModifiedFiles)
	})
}

func (s *fileSessionState) GetModifiedFiles(sessionID string) ([]string, error) {
	rec, err := s.read(sessionID)
	if err != nil || rec == nil {
		return nil, err
	}
	return append([]string(nil), rec.ModifiedFiles...), nil
}

func (s *fileSessionState) GetActiveDomains(sessionID string) ([]string, error) {
	rec, err := s.read(sessionID)
	if err != nil || rec == nil {
		return nil, err
	}
	return append([]string(nil), rec.ActiveDomains...), nil
}

func (s *fileSessionState) ClearCurrentPromptSkills(sessionID string) error {
	return s.mutate(sessionID, func(rec *models.SessionRecord) {
		rec.CurrentPromptSkills = nil
	})
}

func (s *fileSessionState) Snapshot() (*models.SessionFile, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// --- Internals ---

func (s *fileSessionState) nowMillis() int64 {
	return s.now().UnixMilli()
}

// mutate performs a locked read-modify-write of one session record. The
// lock spans the whole cycle so concurrent invocations for different
// sessions never lose each other's updates. Overlapping writers to the
// same session are last-writer-wins, which is acceptable: the worst
// outcome is a missed cooldown record, not corruption.
func (s *fileSessionState) mutate(sessionID string, fn func(rec *models.SessionRecord)) error {
	if sessionID == "" {
		return fmt.Errorf("mutating session state: empty session id")
	}
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return fmt.Errorf("creating session cache directory: %w", err)
	}
	unlock, err := lockFile(s.lockPath())
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	doc, err := s.load()
	if err != nil {
		return err
	}
	rec, ok := doc.Sessions[sessionID]
	if !ok {
		rec = models.NewSessionRecord()
		doc.Sessions[sessionID] = rec
	}
	if rec.ActivatedSkills == nil {
		rec.ActivatedSkills = make(map[string][]int64)
	}
	fn(rec)
	rec.UpdatedAt = s.nowMillis()

	return s.writeFile(doc)
}

// read returns a session record without taking the lock. Readers observe
// either the previous or the new document thanks to the atomic rename.
func (s *fileSessionState) read(sessionID string) (*models.SessionRecord, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Sessions[sessionID], nil
}

// load parses the store document, treating a missing or corrupt file as
// empty. Decisions degrade to "no history" instead of failing.
func (s *fileSessionState) load() (*models.SessionFile, error) {
	data, err := os.ReadFile(s.StorePath())
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewSessionFile(), nil
		}
		return models.NewSessionFile(), nil
	}
	var doc models.SessionFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.NewSessionFile(), nil
	}
	if doc.Sessions == nil {
		doc.Sessions = make(map[string]*models.SessionRecord)
	}
	if doc.Version == 0 {
		doc.Version = models.SessionFileVersion
	}
	return &doc, nil
}

// writeFile commits the document atomically: write a temp file in the
// same directory, then rename it into place so a concurrently-starting
// reader never observes a torn file.
func (s *fileSessionState) writeFile(doc *models.SessionFile) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session state: %w", err)
	}
	target := s.StorePath()
	tmp, err := os.CreateTemp(filepath.Dir(target), ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("creating session state temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing session state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing session state temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("committing session state: %w", err)
	}
	return nil
}

// normalizePath converts an absolute path under projectDir to a
// project-relative slash path. Paths outside the project are kept as
// given (slash-normalized) so triggers can still see them.
func normalizePath(projectDir, path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	if projectDir != "" && filepath.IsAbs(cleaned) {
		if rel, err := filepath.Rel(filepath.Clean(projectDir), cleaned); err == nil && !isOutside(rel) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(cleaned)
}

func isOutside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
