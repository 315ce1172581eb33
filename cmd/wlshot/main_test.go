package main

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/wlshot/internal/capture"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(newRoot(&stdout, &stderr))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func stubCapture(t *testing.T, fn func(capture.Options) (*image.RGBA, capture.OutputInfo, error)) {
	t.Helper()
	original := captureScreenshotFn
	captureScreenshotFn = fn
	t.Cleanup(func() { captureScreenshotFn = original })
}

func TestSnapshotCaptureErrorWritesNothing(t *testing.T) {
	sentinel := errors.New("compositor gone")
	stubCapture(t, func(capture.Options) (*image.RGBA, capture.OutputInfo, error) {
		return nil, capture.OutputInfo{}, sentinel
	})

	stdout, _, err := execute(t)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if want := "failed to capture screen"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to contain %q, got %v", want, err)
	}
	if stdout != "" {
		t.Fatalf("expected empty stdout, got %d bytes", len(stdout))
	}
}

func TestSnapshotWritesJPEG(t *testing.T) {
	var got capture.Options
	stubCapture(t, func(opts capture.Options) (*image.RGBA, capture.OutputInfo, error) {
		got = opts
		return image.NewRGBA(image.Rect(0, 0, 32, 16)), capture.OutputInfo{Name: "DP-2"}, nil
	})

	stdout, _, err := execute(t, "--output", "DP-2", "--cursor", "-q", "250", "--display", "wayland-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(strings.NewReader(stdout))
	if err != nil {
		t.Fatalf("stdout is not a JPEG: %v", err)
	}
	if cfg.Width != 32 || cfg.Height != 16 {
		t.Fatalf("decoded %dx%d, want 32x16", cfg.Width, cfg.Height)
	}
	if got.Output != "DP-2" || !got.Cursor || !got.X11Fallback || got.Display != "wayland-1" {
		t.Fatalf("unexpected capture options %+v", got)
	}
}

func TestSnapshotRejectsArguments(t *testing.T) {
	stubCapture(t, func(capture.Options) (*image.RGBA, capture.OutputInfo, error) {
		t.Fatalf("capture should not run")
		return nil, capture.OutputInfo{}, nil
	})
	if _, _, err := execute(t, "shot.jpg"); err == nil {
		t.Fatalf("expected error for positional argument")
	}
}

func TestOutputsCommand(t *testing.T) {
	original := listOutputsFn
	listOutputsFn = func(capture.Options) ([]capture.OutputInfo, error) {
		return []capture.OutputInfo{
			{Index: 0, Name: "eDP-1", Rect: image.Rect(0, 0, 2880, 1800), Scale: 2, Refresh: 60001, Primary: true},
			{Index: 1, Name: "DP-1", Description: "Dell U2720Q", Rect: image.Rect(1440, 0, 5280, 2160)},
		}, nil
	}
	t.Cleanup(func() { listOutputsFn = original })

	stdout, _, err := execute(t, "outputs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"* 0: eDP-1  2880x1800+0+0  scale 2  60.00 Hz",
		"  1: DP-1  3840x2160+1440+0  Dell U2720Q",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, stdout)
		}
	}
}

func TestConfigPrintLayersEnvironment(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, "wlshot.rc")
	if err := os.WriteFile(rc, []byte("quality = 40\noutput = DP-1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WLSHOT_OUTPUT", "HDMI-A-1")

	stdout, _, err := execute(t, "--config", rc, "config", "print")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"quality = 40", "output = HDMI-A-1"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in:\n%s", want, stdout)
		}
	}
}

func TestConfigSave(t *testing.T) {
	rc := filepath.Join(t.TempDir(), "wlshot.rc")
	if err := os.WriteFile(rc, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := execute(t, "--config", rc, "--quality", "55", "config", "save")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr, rc) {
		t.Fatalf("expected save path in stderr, got %q", stderr)
	}
	data, err := os.ReadFile(rc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "quality = 55") {
		t.Fatalf("saved config missing quality:\n%s", data)
	}
}

func TestConfigSaveCreatesMissingFile(t *testing.T) {
	rc := filepath.Join(t.TempDir(), "new.rc")

	_, stderr, err := execute(t, "--config", rc, "--quality", "55", "config", "save")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr, "Configuration saved to "+rc) {
		t.Fatalf("expected save path %s in stderr, got %q", rc, stderr)
	}
	data, err := os.ReadFile(rc)
	if err != nil {
		t.Fatalf("expected %s to be created: %v", rc, err)
	}
	if !strings.Contains(string(data), "quality = 55") {
		t.Fatalf("saved config missing quality:\n%s", data)
	}
	home := os.Getenv("HOME")
	if _, err := os.Stat(filepath.Join(home, ".config", "wlshot", "config.rc")); err == nil {
		t.Fatalf("default rc file should not be written")
	}
}

func TestMissingConfigIsReported(t *testing.T) {
	rc := filepath.Join(t.TempDir(), "typo.rc")

	stdout, stderr, err := execute(t, "--config", rc, "config", "print")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr, rc) {
		t.Fatalf("expected warning naming %s, got %q", rc, stderr)
	}
	if !strings.Contains(stdout, "quality = 90") {
		t.Fatalf("expected defaults, got:\n%s", stdout)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(stdout, "wlshot version dev") {
		t.Fatalf("unexpected version output %q", stdout)
	}
}
