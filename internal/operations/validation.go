package operations

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidCommand   = errors.New("invalid command")
	ErrInvalidOption    = errors.New("invalid option")
	ErrMissingSource    = errors.New("capture requires a source directory")
	ErrInvalidSource    = errors.New("invalid source directory")
	ErrInvalidTarget    = errors.New("invalid target path")
	ErrCommandInjection = errors.New("command injection detected")
)

var validCommands = map[string]bool{
	"capture": true,
	"extract": true,
	"verify":  true,
}

var validOptions = map[string]map[string]bool{
	"capture": {
		"--compress":    true,
		"--check":       true,
		"--no-acls":     true,
		"--unix-data":   true,
		"--source-list": true,
		"--rebuild":     true,
	},
	"extract": {
		"--no-acls":   true,
		"--unix-data": true,
		"--no-globs":  true,
		"--check":     true,
	},
	"verify": {},
}

var validCompressValues = map[string]bool{
	"none":     true,
	"fast":     true,
	"maximum":  true,
	"recovery": true,
	"xpress":   true,
	"lzx":      true,
	"lzms":     true,
}

func ValidateOperationRequest(req OperationRequest) error {
	if !validCommands[req.Command] {
		return ErrInvalidCommand
	}

	if req.Command == "capture" {
		if req.Source == "" {
			return ErrMissingSource
		}
		if err := validateSource(req.Source); err != nil {
			return err
		}
	}

	if req.Target != "" {
		if containsDangerousChars(req.Target) {
			return ErrCommandInjection
		}
	}

	return validateOptions(req.Options, validOptions[req.Command])
}

func validateSource(source string) error {
	if containsDangerousChars(source) {
		return ErrCommandInjection
	}
	if !filepath.IsAbs(source) {
		return ErrInvalidSource
	}
	if strings.Contains(source, "..") {
		return ErrInvalidSource
	}
	return nil
}

func validateOptions(options []string, validOpts map[string]bool) error {
	for _, option := range options {
		if containsDangerousChars(option) {
			return ErrCommandInjection
		}

		name := option
		value := ""
		if idx := strings.Index(option, "="); idx >= 0 {
			name = option[:idx]
			value = option[idx+1:]
		}

		if !validOpts[name] {
			return ErrInvalidOption
		}

		if name == "--compress" && !validCompressValues[strings.ToLower(value)] {
			return ErrInvalidOption
		}
	}
	return nil
}

func containsDangerousChars(input string) bool {
	dangerousPatterns := []string{
		";", "&", "|", "$", "`", "(", ")", "{", "}",
		"<", ">", "'", "\"", "\n", "\r", "\t",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(input, pattern) {
			return true
		}
	}
	return false
}
