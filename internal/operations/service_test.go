package operations

import (
	"reflect"
	"testing"
)

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name        string
		req         OperationRequest
		archivePath string
		want        []string
	}{
		{
			name: "capture places source before archive",
			req: OperationRequest{
				Command: "capture",
				Source:  "/srv/data",
				Options: []string{"--compress=lzx", "--check"},
			},
			archivePath: "/images/base.wim",
			want:        []string{"capture", "/srv/data", "/images/base.wim", "--compress=lzx", "--check"},
		},
		{
			name:        "extract defaults the image index",
			req:         OperationRequest{Command: "extract", Target: "/Windows"},
			archivePath: "/images/base.wim",
			want:        []string{"extract", "/images/base.wim", "1", "/Windows"},
		},
		{
			name:        "extract with explicit image index and no target",
			req:         OperationRequest{Command: "extract", ImageIndex: 3, Options: []string{"--unix-data"}},
			archivePath: "/images/base.wim",
			want:        []string{"extract", "/images/base.wim", "3", "--unix-data"},
		},
		{
			name:        "verify takes only the archive",
			req:         OperationRequest{Command: "verify"},
			archivePath: "/images/base.wim",
			want:        []string{"verify", "/images/base.wim"},
		},
		{
			name:        "unknown command yields nothing",
			req:         OperationRequest{Command: "mount"},
			archivePath: "/images/base.wim",
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := commandArgs(tt.req, tt.archivePath)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("commandArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}
