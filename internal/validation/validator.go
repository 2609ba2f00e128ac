package validation

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	ErrInvalidArchiveName = errors.New("invalid archive name")
	ErrPathTraversal      = errors.New("path traversal detected")
	ErrInvalidCharacters  = errors.New("invalid characters in input")
)

var validArchiveNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 ._-]*\.wim$`)

// ValidateArchiveName accepts simple file names ending in .wim. Separators
// and traversal sequences are rejected so names can be safely joined under
// the image location.
func ValidateArchiveName(name string) error {
	if name == "" {
		return ErrInvalidArchiveName
	}

	if len(name) > 255 {
		return ErrInvalidArchiveName
	}

	if strings.ContainsAny(name, "/\\") {
		return ErrPathTraversal
	}

	if strings.Contains(name, "..") {
		return ErrPathTraversal
	}

	if !validArchiveNameRegex.MatchString(name) {
		return ErrInvalidCharacters
	}

	return nil
}

// SanitizeArchivePath joins an archive name under the image location and
// verifies the result cannot escape it.
func SanitizeArchivePath(basePath, name string) (string, error) {
	if err := ValidateArchiveName(name); err != nil {
		return "", err
	}

	archivePath := filepath.Clean(filepath.Join(basePath, name))

	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return "", err
	}

	absArchivePath, err := filepath.Abs(archivePath)
	if err != nil {
		return "", err
	}

	relPath, err := filepath.Rel(absBasePath, absArchivePath)
	if err != nil {
		return "", ErrPathTraversal
	}

	if strings.HasPrefix(relPath, "..") {
		return "", ErrPathTraversal
	}

	return archivePath, nil
}
