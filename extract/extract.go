package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Runner converts PDF bytes to layout-preserving plain text using pdftotext.
type Runner struct{}

// New creates a new extraction runner.
func New() *Runner {
	return &Runner{}
}

// Text converts PDF bytes to plain text using pdftotext with the -layout
// flag, which keeps the original physical layout of the table text. Page
// break markers are kept in the output so the result can be split back
// into pages.
func (r *Runner) Text(ctx context.Context, content []byte) ([]byte, error) {
	if len(content) == 0 {
		return content, nil
	}

	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not found in PATH: %w", err)
	}

	tmpFile, err := os.CreateTemp("", "ratreview-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := tmpFile.Write(content); err != nil {
		return nil, fmt.Errorf("failed to write PDF to temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", tmpFile.Name(), "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w (stderr: %s)", err, stderr.String())
	}

	return stdout.Bytes(), nil
}
