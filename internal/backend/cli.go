package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ansiRE strips terminal escape sequences from the CLI's stderr before it
// reaches the log.
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*[mK]`)

// CLI invokes the external codex binary once per call. The binary emits a
// stream of JSON lines on stdout; the completion is in the last one.
type CLI struct {
	path string
	log  *zap.Logger
}

// NewCLI creates a CLI transport for the binary at path.
func NewCLI(path string, log *zap.Logger) *CLI {
	return &CLI{path: path, log: log}
}

func (c *CLI) Name() string { return "cli" }

// Invoke launches the CLI with the prompt and model, waits for it to
// exit, and extracts the completion from the final JSON line. Context
// cancellation kills the subprocess.
func (c *CLI) Invoke(ctx context.Context, prompt, model string, _ Options) (string, error) {
	args := []string{
		"--json",
		"--model", model,
		"-q", prompt,
		"--approval-mode=full-auto",
		"--disable-shell",
	}

	cmd := exec.CommandContext(ctx, c.path, args...)
	// CI=true suppresses the CLI's interactive UI.
	cmd.Env = append(os.Environ(), "CI=true")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	c.logStderr(stderr.String())

	if ctxErr := ctx.Err(); ctxErr != nil {
		if ctxErr == context.DeadlineExceeded {
			return "", Wrap(KindTimeout, ctxErr, "codex CLI timed out")
		}
		return "", ctxErr
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = "codex CLI exited with non-zero status"
			}
			return "", Errorf(KindInvalidResponse, "%s", msg)
		}
		// The binary vanished or could not be started.
		return "", Wrap(KindUnavailable, err, err.Error())
	}

	text, perr := parseCompletion(stdout.String())
	if perr != nil {
		return "", perr
	}
	return text, nil
}

func (c *CLI) logStderr(raw string) {
	for _, line := range strings.Split(raw, "\n") {
		line = ansiRE.ReplaceAllString(strings.TrimRight(line, "\r"), "")
		if line != "" {
			c.log.Debug("codex stderr", zap.String("line", line))
		}
	}
}

// parseCompletion extracts the completion text from the CLI's stdout.
// The last non-empty line is a JSON object; the text has been observed
// under several keys across CLI versions.
func parseCompletion(stdout string) (string, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	last := ""
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			last = strings.TrimSpace(lines[i])
			break
		}
	}
	if last == "" {
		return "", Errorf(KindInvalidResponse, "codex CLI produced no output")
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		return "", Wrap(KindInvalidResponse, err, "invalid JSON from codex CLI")
	}

	for _, key := range []string{"completion", "text", "response", "content"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		if text, ok := decodeValue(raw); ok {
			return strings.TrimLeft(text, "\n"), nil
		}
	}
	return "", Errorf(KindInvalidResponse, "codex CLI JSON did not contain a completion field")
}

// decodeValue handles the two shapes completion values arrive in: a plain
// string, or a list of {text: "..."} blocks.
func decodeValue(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}

	var blocks []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err == nil && len(blocks) > 0 {
		return blocks[0].Text, blocks[0].Text != ""
	}
	return "", false
}
