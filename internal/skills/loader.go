// Package skills loads injectable skill content from the project's
// .claude/skills directory. Each skill lives in its own directory as a
// SKILL.md file with optional YAML frontmatter.
package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SkillsDir is the project-relative directory holding skill definitions.
const SkillsDir = ".claude/skills"

const skillFileName = "SKILL.md"

const frontmatterDelimiter = "---"

// Metadata is the parsed YAML frontmatter of a SKILL.md file.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

// Skill is one loaded skill definition: frontmatter plus body.
type Skill struct {
	Name     string
	Path     string
	Metadata Metadata
	Content  string
}

// Loader reads skill definitions from a project directory.
type Loader interface {
	// LoadContent returns the body of the named skill's SKILL.md, or an
	// error when the skill does not exist or cannot be read.
	LoadContent(skillName string) (string, error)

	// Load returns the full parsed skill definition.
	Load(skillName string) (*Skill, error)

	// List returns all skills found under the skills directory, sorted
	// by name. A missing directory yields an empty list.
	List() ([]Skill, error)
}

type dirLoader struct {
	projectDir string
}

// NewLoader creates a Loader rooted at projectDir.
func NewLoader(projectDir string) Loader {
	return &dirLoader{projectDir: projectDir}
}

func (l *dirLoader) skillPath(skillName string) string {
	return filepath.Join(l.projectDir, filepath.FromSlash(SkillsDir), skillName, skillFileName)
}

func (l *dirLoader) LoadContent(skillName string) (string, error) {
	skill, err := l.Load(skillName)
	if err != nil {
		return "", err
	}
	return skill.Content, nil
}

func (l *dirLoader) Load(skillName string) (*Skill, error) {
	if skillName == "" || strings.ContainsAny(skillName, "/\\") {
		return nil, fmt.Errorf("loading skill: invalid name %q", skillName)
	}
	path := l.skillPath(skillName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading skill %q: %w", skillName, err)
	}
	meta, body, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, fmt.Errorf("loading skill %q: %w", skillName, err)
	}
	return &Skill{
		Name:     skillName,
		Path:     path,
		Metadata: meta,
		Content:  body,
	}, nil
}

func (l *dirLoader) List() ([]Skill, error) {
	root := filepath.Join(l.projectDir, filepath.FromSlash(SkillsDir))
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing skills: %w", err)
	}

	var skills []Skill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skill, err := l.Load(entry.Name())
		if err != nil {
			// A broken skill directory does not hide the others.
			continue
		}
		skills = append(skills, *skill)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills, nil
}

// splitFrontmatter separates optional YAML frontmatter from the markdown
// body. A document without a leading delimiter is all body.
func splitFrontmatter(doc string) (Metadata, string, error) {
	var meta Metadata
	normalized := strings.ReplaceAll(doc, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontmatterDelimiter+"\n") {
		return meta, strings.TrimSpace(normalized), nil
	}
	rest := normalized[len(frontmatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end < 0 {
		return meta, "", fmt.Errorf("unterminated frontmatter")
	}
	header := rest[:end]
	body := rest[end+len(frontmatterDelimiter)+1:]
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	} else {
		body = ""
	}
	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return meta, "", fmt.Errorf("parsing frontmatter: %w", err)
	}
	return meta, strings.TrimSpace(body), nil
}
