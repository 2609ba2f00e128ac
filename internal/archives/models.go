package archives

import (
	"time"

	"github.com/Xcraft-Inc/wimlib-imagex/internal/wimlib"
)

// Archive is one WIM file under the agent's image location.
type Archive struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

type ListResponse struct {
	Archives []Archive `json:"archives"`
}

type UpdateRequest struct {
	Command *wimlib.UpdateCommand `json:"command"`
	Options wimlib.Options        `json:"options"`
}

type UpdateResponse struct {
	Archive string `json:"archive"`
	Output  string `json:"output,omitempty"`
}

type RenameRequest struct {
	NewName string `json:"new_name"`
}

type VerifyResponse struct {
	Archive string `json:"archive"`
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
}

type DirResponse struct {
	Archive string `json:"archive"`
	Listing string `json:"listing"`
}

type InfoResponse struct {
	Archive  string         `json:"archive"`
	Metadata map[string]any `json:"metadata"`
}
