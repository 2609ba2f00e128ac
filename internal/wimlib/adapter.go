package wimlib

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	mxj "github.com/clbanning/mxj/v2"
)

// DefaultBinary is the canonical program name of the external archival tool.
const DefaultBinary = "wimlib-imagex"

// Adapter shells out to wimlib-imagex, translating structured options into
// argument vectors and normalizing the captured standard output. It holds no
// state beyond the binary path, so a single instance can serve concurrent
// callers; every operation is one blocking subprocess invocation with no
// retries.
type Adapter struct {
	binary      string
	runner      Runner
	windowsLike bool
}

// New returns an adapter bound to the given binary path, or to DefaultBinary
// when the path is empty.
func New(binary string) *Adapter {
	return NewWithRunner(binary, execRunner{})
}

// NewWithRunner allows callers to supply their own spawn mechanism. Used by
// tests to simulate subprocess output and exit codes.
func NewWithRunner(binary string, runner Runner) *Adapter {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Adapter{
		binary:      binary,
		runner:      runner,
		windowsLike: runtime.GOOS == "windows",
	}
}

// Binary returns the configured binary path.
func (a *Adapter) Binary() string {
	return a.binary
}

// invoke spawns the binary with [action, positional..., flags...] and blocks
// until it exits, buffering all standard output. xmlOut selects the encoding
// policy for the captured text.
func (a *Adapter) invoke(ctx context.Context, action string, positional []string, opts Options, xmlOut bool) (string, int, error) {
	args := make([]string, 0, 1+len(positional)+9)
	args = append(args, action)
	args = append(args, positional...)
	args = append(args, opts.Args()...)

	raw, code, err := a.runner.Run(ctx, a.binary, args)
	if err != nil {
		return "", 0, err
	}

	out, err := decodeOutput(raw, xmlOut, a.windowsLike)
	if err != nil {
		return "", code, err
	}
	return out, code, nil
}

// Capture archives sourceDir into a new image appended to outputPath.
// Compression level and image naming are the caller's responsibility.
func (a *Adapter) Capture(ctx context.Context, outputPath, sourceDir string, opts Options) (string, error) {
	out, code, err := a.invoke(ctx, "capture", []string{sourceDir, outputPath}, opts, false)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("wim capture failed for '%s' (exit status %d)", outputPath, code)
	}
	return out, nil
}

// Extract extracts pathInArchive from the selected image of inputPath. A
// non-empty outputDir is folded into the destination-directory option. The
// returned text is whatever the tool printed, which is the file content
// itself when the to-stdout option is set.
func (a *Adapter) Extract(ctx context.Context, inputPath, pathInArchive, outputDir string, opts Options) (string, error) {
	if outputDir != "" {
		opts.DestDir = outputDir
	}
	index := strconv.Itoa(opts.imageIndex())

	out, code, err := a.invoke(ctx, "extract", []string{inputPath, index, pathInArchive}, opts, false)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("wim extract failed for '%s' (exit status %d)", inputPath, code)
	}
	return out, nil
}

// Info returns the archive's XML metadata parsed into a nested map.
func (a *Adapter) Info(ctx context.Context, inputPath string) (map[string]any, error) {
	out, code, err := a.invoke(ctx, "info", []string{inputPath, "--xml"}, Options{}, true)
	if err != nil {
		return nil, err
	}
	if code != 0 || strings.TrimSpace(out) == "" {
		return nil, fmt.Errorf("cannot retrieve image information for '%s'", inputPath)
	}

	meta, err := mxj.NewMapXml([]byte(strings.TrimSpace(out)))
	if err != nil {
		return nil, fmt.Errorf("cannot parse image information for '%s': %w", inputPath, err)
	}
	return map[string]any(meta), nil
}

// Update applies a single command to the selected image of inputPath.
func (a *Adapter) Update(ctx context.Context, inputPath string, cmd *UpdateCommand, opts Options) (string, error) {
	if cmd == nil {
		return "", ErrMissingUpdateCommand
	}
	instruction, err := cmd.Render()
	if err != nil {
		return "", err
	}
	index := strconv.Itoa(opts.imageIndex())
	positional := []string{inputPath, index, fmt.Sprintf("--command=%s", instruction)}

	out, code, err := a.invoke(ctx, "update", positional, opts, false)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("wim update failed for '%s' (exit status %d)", inputPath, code)
	}
	return out, nil
}

// Verify runs the tool's integrity check over inputPath.
func (a *Adapter) Verify(ctx context.Context, inputPath string) error {
	_, code, err := a.invoke(ctx, "verify", []string{inputPath}, Options{}, false)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("integrity check failed for '%s' (exit status %d)", inputPath, code)
	}
	return nil
}

// Dir returns the raw directory listing of inputPath, unparsed.
func (a *Adapter) Dir(ctx context.Context, inputPath string) (string, error) {
	out, code, err := a.invoke(ctx, "dir", []string{inputPath}, Options{}, false)
	if err != nil {
		return "", err
	}
	if code != 0 || out == "" {
		return "", fmt.Errorf("cannot list contents of '%s'", inputPath)
	}
	return out, nil
}
