package storage

import (
	"path/filepath"
	"strings"
)

// extensionDomains maps file extensions to inferred work domains.
var extensionDomains = map[string]string{
	".go":     "go",
	".mod":    "go",
	".sum":    "go",
	".js":     "javascript",
	".jsx":    "javascript",
	".ts":     "typescript",
	".tsx":    "typescript",
	".py":     "python",
	".rb":     "ruby",
	".rs":     "rust",
	".java":   "java",
	".tf":     "terraform",
	".tfvars": "terraform",
	".sql":    "database",
	".proto":  "protobuf",
	".sh":     "shell",
	".css":    "frontend",
	".scss":   "frontend",
	".html":   "frontend",
	".md":     "docs",
}

// baseDomains maps well-known file names to domains.
var baseDomains = map[string]string{
	"dockerfile":         "docker",
	"docker-compose.yml": "docker",
	"makefile":           "build",
	"taskfile.yml":       "build",
}

// InferDomains derives the set of active work domains from the modified
// file list. The result is deterministic: domains appear in the order of
// the file that first introduced them.
func InferDomains(modifiedFiles []string) []string {
	var domains []string
	seen := make(map[string]bool)
	add := func(domain string) {
		if domain != "" && !seen[domain] {
			seen[domain] = true
			domains = append(domains, domain)
		}
	}

	for _, file := range modifiedFiles {
		normalized := filepath.ToSlash(file)
		base := strings.ToLower(filepath.Base(normalized))

		if strings.Contains(normalized, ".github/workflows/") {
			add("ci")
			continue
		}
		if domain, ok := baseDomains[base]; ok {
			add(domain)
			continue
		}
		if domain, ok := extensionDomains[strings.ToLower(filepath.Ext(base))]; ok {
			add(domain)
		}
		if strings.HasSuffix(base, "_test.go") {
			add("testing")
		}
		if base == "go.mod" || base == "package.json" || base == "requirements.txt" {
			add("dependencies")
		}
	}
	return domains
}
