package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"go.uber.org/zap"
)

// --- helpers ---

// stubBinary writes an executable shell script so Invoke can run a real
// subprocess without the codex binary installed.
func stubBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs are not portable to windows")
	}
	path := filepath.Join(t.TempDir(), "codex")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("writing stub: %v", err)
	}
	return path
}

// --- subprocess invocation ---

func TestCLI_Invoke(t *testing.T) {
	path := stubBinary(t, `echo '{"id":"x","status":"thinking"}'
echo '{"completion":"def rev(s): return s[::-1]"}'`)
	cli := NewCLI(path, zap.NewNop())

	got, err := cli.Invoke(context.Background(), "reverse a string", "o4-mini", Options{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "def rev(s): return s[::-1]" {
		t.Fatalf("got %q", got)
	}
}

func TestCLI_NonZeroExitIsInvalidResponse(t *testing.T) {
	path := stubBinary(t, `echo "model not found" >&2
exit 2`)
	cli := NewCLI(path, zap.NewNop())

	_, err := cli.Invoke(context.Background(), "p", "m", Options{})
	var berr *Error
	if !errors.As(err, &berr) {
		t.Fatalf("want *Error, got %T: %v", err, err)
	}
	if berr.Kind != KindInvalidResponse {
		t.Fatalf("Kind = %s, want %s", berr.Kind, KindInvalidResponse)
	}
}

func TestCLI_MissingBinaryIsUnavailable(t *testing.T) {
	cli := NewCLI(filepath.Join(t.TempDir(), "no-such-binary"), zap.NewNop())

	_, err := cli.Invoke(context.Background(), "p", "m", Options{})
	var berr *Error
	if !errors.As(err, &berr) {
		t.Fatalf("want *Error, got %T: %v", err, err)
	}
	if berr.Kind != KindUnavailable {
		t.Fatalf("Kind = %s, want %s", berr.Kind, KindUnavailable)
	}
}

func TestCLI_DeadlineIsTimeout(t *testing.T) {
	path := stubBinary(t, `sleep 5`)
	cli := NewCLI(path, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := cli.Invoke(ctx, "p", "m", Options{})
	var berr *Error
	if !errors.As(err, &berr) {
		t.Fatalf("want *Error, got %T: %v", err, err)
	}
	if berr.Kind != KindTimeout {
		t.Fatalf("Kind = %s, want %s", berr.Kind, KindTimeout)
	}
}

// --- output parsing ---

func TestParseCompletion(t *testing.T) {
	cases := []struct {
		name   string
		stdout string
		want   string
	}{
		{"completion key", `{"completion":"hello"}`, "hello"},
		{"text key", `{"text":"hello"}`, "hello"},
		{"response key", `{"response":"hello"}`, "hello"},
		{"content string", `{"content":"hello"}`, "hello"},
		{"content blocks", `{"content":[{"type":"text","text":"hello"}]}`, "hello"},
		{"last line wins", "{\"status\":\"working\"}\n{\"completion\":\"done\"}", "done"},
		{"trailing blank lines", "{\"completion\":\"done\"}\n\n\n", "done"},
		{"leading newlines trimmed", `{"completion":"\n\nhello"}`, "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseCompletion(tc.stdout)
			if err != nil {
				t.Fatalf("parseCompletion: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseCompletion_Errors(t *testing.T) {
	cases := []struct {
		name   string
		stdout string
	}{
		{"empty output", ""},
		{"not json", "plain text"},
		{"no completion field", `{"id":"x","status":"done"}`},
		{"empty completion", `{"completion":""}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseCompletion(tc.stdout)
			var berr *Error
			if !errors.As(err, &berr) {
				t.Fatalf("want *Error, got %T: %v", err, err)
			}
			if berr.Kind != KindInvalidResponse {
				t.Fatalf("Kind = %s, want %s", berr.Kind, KindInvalidResponse)
			}
		})
	}
}
