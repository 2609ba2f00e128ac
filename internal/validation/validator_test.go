package validation

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestValidateArchiveName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"simple name", "base.wim", nil},
		{"name with spaces and dots", "windows 10 pro.v2.wim", nil},
		{"empty", "", ErrInvalidArchiveName},
		{"missing extension", "base", ErrInvalidCharacters},
		{"wrong extension", "base.iso", ErrInvalidCharacters},
		{"leading dot", ".hidden.wim", ErrInvalidCharacters},
		{"path separator", "images/base.wim", ErrPathTraversal},
		{"windows separator", `..\base.wim`, ErrPathTraversal},
		{"traversal", "..base.wim", ErrPathTraversal},
		{"shell metacharacters", "base;rm.wim", ErrInvalidCharacters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArchiveName(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateArchiveName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeArchivePath(t *testing.T) {
	base := t.TempDir()

	t.Run("joins under the base path", func(t *testing.T) {
		got, err := SanitizeArchivePath(base, "base.wim")
		if err != nil {
			t.Fatalf("SanitizeArchivePath() error: %v", err)
		}
		if got != filepath.Join(base, "base.wim") {
			t.Errorf("SanitizeArchivePath() = %q", got)
		}
	})

	t.Run("rejects escaping names", func(t *testing.T) {
		if _, err := SanitizeArchivePath(base, "../escape.wim"); err == nil {
			t.Fatal("SanitizeArchivePath() expected error for traversal")
		}
	})
}
