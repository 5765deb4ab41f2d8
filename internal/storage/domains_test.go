package storage

import (
	"reflect"
	"testing"
)

func TestInferDomains(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{
			name:  "empty",
			files: nil,
			want:  nil,
		},
		{
			name:  "go files",
			files: []string{"main.go", "internal/api/server.go"},
			want:  []string{"go"},
		},
		{
			name:  "first-seen order",
			files: []string{"schema.sql", "main.go", "query.sql"},
			want:  []string{"database", "go"},
		},
		{
			name:  "test files add testing",
			files: []string{"internal/api/server_test.go"},
			want:  []string{"go", "testing"},
		},
		{
			name:  "dependency manifests",
			files: []string{"go.mod", "package.json"},
			want:  []string{"go", "dependencies"},
		},
		{
			name:  "ci workflows",
			files: []string{".github/workflows/release.yml"},
			want:  []string{"ci"},
		},
		{
			name:  "well-known base names",
			files: []string{"Dockerfile", "Makefile"},
			want:  []string{"docker", "build"},
		},
		{
			name:  "unknown extensions ignored",
			files: []string{"data.bin", "notes.xyz"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferDomains(tt.files)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("InferDomains(%v) = %v, want %v", tt.files, got, tt.want)
			}
		})
	}
}
