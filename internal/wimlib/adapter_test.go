package wimlib

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type fakeRunner struct {
	lastBinary string
	lastArgs   []string
	calls      int

	output []byte
	code   int
	err    error
}

func (r *fakeRunner) Run(_ context.Context, binary string, args []string) ([]byte, int, error) {
	r.calls++
	r.lastBinary = binary
	r.lastArgs = args
	if r.err != nil {
		return nil, 0, r.err
	}
	return r.output, r.code, nil
}

func newTestAdapter(runner *fakeRunner) *Adapter {
	a := NewWithRunner("wimlib-imagex", runner)
	a.windowsLike = false
	return a
}

func TestNewDefaultsBinary(t *testing.T) {
	if got := New("").Binary(); got != DefaultBinary {
		t.Errorf("Binary() = %q, want %q", got, DefaultBinary)
	}
	if got := New("/opt/wimlib/bin/wimlib-imagex").Binary(); got != "/opt/wimlib/bin/wimlib-imagex" {
		t.Errorf("Binary() = %q, want the configured path", got)
	}
}

func TestCaptureBuildsArgumentVector(t *testing.T) {
	runner := &fakeRunner{}
	a := newTestAdapter(runner)

	_, err := a.Capture(context.Background(), "/images/base.wim", "/src/root", Options{
		Compress: "maximum",
		NoAcls:   true,
		Check:    true,
	})
	if err != nil {
		t.Fatalf("Capture() error: %v", err)
	}

	want := []string{"capture", "/src/root", "/images/base.wim", "--compress=maximum", "--no-acls", "--check"}
	if !reflect.DeepEqual(runner.lastArgs, want) {
		t.Errorf("argv = %v, want %v", runner.lastArgs, want)
	}
	if runner.lastBinary != "wimlib-imagex" {
		t.Errorf("binary = %q, want wimlib-imagex", runner.lastBinary)
	}
}

func TestCaptureNonZeroExit(t *testing.T) {
	runner := &fakeRunner{code: 74}
	a := newTestAdapter(runner)

	_, err := a.Capture(context.Background(), "/images/base.wim", "/src/root", Options{})
	if err == nil {
		t.Fatal("Capture() expected error on non-zero exit")
	}
	if !strings.Contains(err.Error(), "/images/base.wim") {
		t.Errorf("error %q does not name the output path", err)
	}
}

func TestExtractDefaultsImageIndex(t *testing.T) {
	runner := &fakeRunner{}
	a := newTestAdapter(runner)

	if _, err := a.Extract(context.Background(), "/images/base.wim", "/Windows", "", Options{}); err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	want := []string{"extract", "/images/base.wim", "1", "/Windows"}
	if !reflect.DeepEqual(runner.lastArgs, want) {
		t.Errorf("argv = %v, want %v", runner.lastArgs, want)
	}
}

func TestExtractOutputDirMatchesDestDirOption(t *testing.T) {
	viaArg := &fakeRunner{}
	if _, err := newTestAdapter(viaArg).Extract(context.Background(), "in.wim", "/boot", "/mnt/out", Options{ImageIndex: 2}); err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	viaOption := &fakeRunner{}
	if _, err := newTestAdapter(viaOption).Extract(context.Background(), "in.wim", "/boot", "", Options{ImageIndex: 2, DestDir: "/mnt/out"}); err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if !reflect.DeepEqual(viaArg.lastArgs, viaOption.lastArgs) {
		t.Errorf("outputDir argv %v differs from destDir argv %v", viaArg.lastArgs, viaOption.lastArgs)
	}
}

func TestExtractToStdoutReturnsOutput(t *testing.T) {
	runner := &fakeRunner{output: []byte("file contents")}
	a := newTestAdapter(runner)

	out, err := a.Extract(context.Background(), "in.wim", "/etc/hosts", "", Options{ToStdout: true})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if out != "file contents" {
		t.Errorf("Extract() = %q, want the captured stdout", out)
	}
}

func TestInfo(t *testing.T) {
	t.Run("parses xml metadata into a nested map", func(t *testing.T) {
		xml := `<WIM><IMAGE INDEX="1"><NAME>base</NAME></IMAGE></WIM>`
		runner := &fakeRunner{output: utf16le(xml, true)}
		a := newTestAdapter(runner)

		meta, err := a.Info(context.Background(), "/images/base.wim")
		if err != nil {
			t.Fatalf("Info() error: %v", err)
		}

		want := []string{"info", "/images/base.wim", "--xml"}
		if !reflect.DeepEqual(runner.lastArgs, want) {
			t.Errorf("argv = %v, want %v", runner.lastArgs, want)
		}

		wim, ok := meta["WIM"].(map[string]any)
		if !ok {
			t.Fatalf("metadata missing WIM element: %v", meta)
		}
		image, ok := wim["IMAGE"].(map[string]any)
		if !ok {
			t.Fatalf("metadata missing IMAGE element: %v", wim)
		}
		if image["NAME"] != "base" {
			t.Errorf("IMAGE.NAME = %v, want base", image["NAME"])
		}
	})

	t.Run("empty output is a retrieval error naming the path", func(t *testing.T) {
		runner := &fakeRunner{}
		a := newTestAdapter(runner)

		_, err := a.Info(context.Background(), "/images/missing.wim")
		if err == nil {
			t.Fatal("Info() expected error for empty output")
		}
		if !strings.Contains(err.Error(), "/images/missing.wim") {
			t.Errorf("error %q does not name the path", err)
		}
	})

	t.Run("non-zero exit is a retrieval error", func(t *testing.T) {
		runner := &fakeRunner{output: utf16le("<WIM/>", true), code: 1}
		a := newTestAdapter(runner)

		if _, err := a.Info(context.Background(), "bad.wim"); err == nil {
			t.Fatal("Info() expected error on non-zero exit")
		}
	})
}

func TestUpdate(t *testing.T) {
	t.Run("renders the command instruction", func(t *testing.T) {
		runner := &fakeRunner{}
		a := newTestAdapter(runner)

		cmd := &UpdateCommand{Op: UpdateAdd, Input: "/src/file", Output: "/in/archive"}
		if _, err := a.Update(context.Background(), "in.wim", cmd, Options{Check: true}); err != nil {
			t.Fatalf("Update() error: %v", err)
		}

		want := []string{"update", "in.wim", "1", `--command=add "/src/file" "/in/archive"`, "--check"}
		if !reflect.DeepEqual(runner.lastArgs, want) {
			t.Errorf("argv = %v, want %v", runner.lastArgs, want)
		}
	})

	t.Run("missing command fails before spawning", func(t *testing.T) {
		runner := &fakeRunner{}
		a := newTestAdapter(runner)

		_, err := a.Update(context.Background(), "in.wim", nil, Options{})
		if !errors.Is(err, ErrMissingUpdateCommand) {
			t.Fatalf("Update() error = %v, want ErrMissingUpdateCommand", err)
		}
		if runner.calls != 0 {
			t.Error("runner was invoked for a missing command")
		}
	})

	t.Run("unsupported verb fails before spawning", func(t *testing.T) {
		runner := &fakeRunner{}
		a := newTestAdapter(runner)

		_, err := a.Update(context.Background(), "in.wim", &UpdateCommand{Op: "chmod"}, Options{})
		if !errors.Is(err, ErrUnsupportedUpdateCommand) {
			t.Fatalf("Update() error = %v, want ErrUnsupportedUpdateCommand", err)
		}
		if runner.calls != 0 {
			t.Error("runner was invoked for an unsupported command")
		}
	})
}

func TestVerify(t *testing.T) {
	t.Run("zero exit passes", func(t *testing.T) {
		a := newTestAdapter(&fakeRunner{})
		if err := a.Verify(context.Background(), "ok.wim"); err != nil {
			t.Fatalf("Verify() error: %v", err)
		}
	})

	t.Run("non-zero exit is an integrity error naming the path", func(t *testing.T) {
		a := newTestAdapter(&fakeRunner{code: 2})
		err := a.Verify(context.Background(), "/images/corrupt.wim")
		if err == nil {
			t.Fatal("Verify() expected error on non-zero exit")
		}
		if !strings.Contains(err.Error(), "/images/corrupt.wim") {
			t.Errorf("error %q does not name the path", err)
		}
	})
}

func TestDir(t *testing.T) {
	t.Run("returns the raw listing", func(t *testing.T) {
		listing := "/\n/Windows\n/Windows/System32\n"
		a := newTestAdapter(&fakeRunner{output: []byte(listing)})

		out, err := a.Dir(context.Background(), "in.wim")
		if err != nil {
			t.Fatalf("Dir() error: %v", err)
		}
		if out != listing {
			t.Errorf("Dir() = %q, want %q", out, listing)
		}
	})

	t.Run("empty output is a retrieval error", func(t *testing.T) {
		a := newTestAdapter(&fakeRunner{})
		_, err := a.Dir(context.Background(), "/images/empty.wim")
		if err == nil {
			t.Fatal("Dir() expected error for empty output")
		}
		if !strings.Contains(err.Error(), "/images/empty.wim") {
			t.Errorf("error %q does not name the path", err)
		}
	})
}

func TestSpawnFailurePropagatesUnwrapped(t *testing.T) {
	spawnErr := errors.New("exec: \"wimlib-imagex\": executable file not found in $PATH")
	a := newTestAdapter(&fakeRunner{err: spawnErr})

	_, err := a.Dir(context.Background(), "in.wim")
	if err != spawnErr {
		t.Errorf("Dir() error = %v, want the spawn error unmodified", err)
	}

	if verr := a.Verify(context.Background(), "in.wim"); verr != spawnErr {
		t.Errorf("Verify() error = %v, want the spawn error unmodified", verr)
	}
}
