package wimlib

import (
	"errors"
	"fmt"
	"strings"
)

type UpdateOp string

const (
	UpdateAdd    UpdateOp = "add"
	UpdateDelete UpdateOp = "delete"
	UpdateRename UpdateOp = "rename"
)

var (
	ErrMissingUpdateCommand     = errors.New("update requires a command")
	ErrUnsupportedUpdateCommand = errors.New("unsupported update command")
)

// UpdateCommand describes one modification applied to an image by
// `wimlib-imagex update`. The meaning of Input and Output depends on the
// operation: add takes a source path and a destination inside the archive,
// delete takes a path inside the archive (Output is unused), rename takes the
// old and new paths.
type UpdateCommand struct {
	Op     UpdateOp `json:"op"`
	Input  string   `json:"input"`
	Output string   `json:"output"`
}

// Render serializes the command into the single-line instruction the
// external tool accepts. Each verb has its own template and paths are quoted
// with embedded quotes and backslashes escaped, so path contents cannot break
// out of the instruction.
func (c UpdateCommand) Render() (string, error) {
	switch c.Op {
	case UpdateAdd:
		return fmt.Sprintf("add %s %s", quotePath(c.Input), quotePath(c.Output)), nil
	case UpdateDelete:
		return fmt.Sprintf("delete %s", quotePath(c.Input)), nil
	case UpdateRename:
		return fmt.Sprintf("rename %s %s", quotePath(c.Input), quotePath(c.Output)), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedUpdateCommand, string(c.Op))
	}
}

func quotePath(p string) string {
	p = strings.ReplaceAll(p, `\`, `\\`)
	p = strings.ReplaceAll(p, `"`, `\"`)
	return `"` + p + `"`
}
