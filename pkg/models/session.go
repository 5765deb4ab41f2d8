package models

// SessionRecord is the persisted per-session state, keyed by session ID
// inside SessionFile. Records are created lazily on first reference and
// never deleted by the engine; retention is an external concern.
type SessionRecord struct {
	// ActivatedSkills maps skill name to an ordered list of activation
	// timestamps in epoch milliseconds, oldest first. The cooldown
	// controller only inspects the last element.
	ActivatedSkills map[string][]int64 `json:"activated_skills"`

	// ModifiedFiles is the set of project-relative paths touched this
	// session, in first-seen order.
	ModifiedFiles []string `json:"modified_files"`

	// ActiveDomains is derived from ModifiedFiles (e.g. "go",
	// "terraform") and recomputed whenever a file is added.
	ActiveDomains []string `json:"active_domains"`

	// CurrentPromptSkills is scratch space listing skills already
	// recorded during the current prompt turn. It is cleared at the
	// start of each prompt-submit invocation so the multiple hook
	// callbacks of one turn cannot double-count a single activation.
	CurrentPromptSkills []string `json:"current_prompt_skills"`

	// UpdatedAt is the epoch-millisecond time of the last mutation.
	UpdatedAt int64 `json:"updated_at"`
}

// NewSessionRecord returns an empty record with initialized containers.
func NewSessionRecord() *SessionRecord {
	return &SessionRecord{
		ActivatedSkills: make(map[string][]int64),
	}
}

// SessionFileVersion is the current on-disk schema version.
const SessionFileVersion = 1

// SessionFile is the single JSON document persisted per project. All
// sessions for the project share the file; the store serializes access
// with a file lock and commits via atomic replace.
type SessionFile struct {
	Version  int                       `json:"version"`
	Sessions map[string]*SessionRecord `json:"sessions"`
}

// NewSessionFile returns an empty store document at the current version.
func NewSessionFile() *SessionFile {
	return &SessionFile{
		Version:  SessionFileVersion,
		Sessions: make(map[string]*SessionRecord),
	}
}
