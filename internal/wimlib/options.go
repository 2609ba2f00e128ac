package wimlib

import "fmt"

// Options holds the optional switches shared by the wimlib-imagex
// subcommands. Zero values emit nothing. ImageIndex selects the target image
// inside a multi-image archive; it is passed positionally by the operations
// that take one, not as a flag, and defaults to 1 for extract and update.
type Options struct {
	DestDir    string `json:"destDir,omitempty"`
	ToStdout   bool   `json:"toStdout,omitempty"`
	SourceList bool   `json:"sourceList,omitempty"`
	Compress   string `json:"compress,omitempty"`
	NoAcls     bool   `json:"noAcls,omitempty"`
	UnixData   bool   `json:"unixData,omitempty"`
	Rebuild    bool   `json:"rebuild,omitempty"`
	Check      bool   `json:"check,omitempty"`
	NoGlobs    bool   `json:"noGlobs,omitempty"`
	ImageIndex int    `json:"imageIndex,omitempty"`
}

// Args renders the set switches as command-line flags in a fixed order so
// that generated invocations are reproducible and diffable. No validation of
// mutually-exclusive combinations happens here; bad combinations surface as
// external-binary failures.
func (o Options) Args() []string {
	args := make([]string, 0, 9)
	if o.DestDir != "" {
		args = append(args, fmt.Sprintf("--dest-dir=%s", o.DestDir))
	}
	if o.ToStdout {
		args = append(args, "--to-stdout")
	}
	if o.SourceList {
		args = append(args, "--source-list")
	}
	if o.Compress != "" {
		args = append(args, fmt.Sprintf("--compress=%s", o.Compress))
	}
	if o.NoAcls {
		args = append(args, "--no-acls")
	}
	if o.UnixData {
		args = append(args, "--unix-data")
	}
	if o.Rebuild {
		args = append(args, "--rebuild")
	}
	if o.Check {
		args = append(args, "--check")
	}
	if o.NoGlobs {
		args = append(args, "--no-globs")
	}
	return args
}

func (o Options) imageIndex() int {
	if o.ImageIndex <= 0 {
		return 1
	}
	return o.ImageIndex
}
