// Package shell provides the analyzer adapter that runs the configured
// analysis command.
package shell

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/zerr"
)

// Analyzer implements ports.Analyzer using os/exec. The command runs in
// the project root; its stdout is the operation result, its stderr is
// forwarded to the logger line by line.
type Analyzer struct {
	logger ports.Logger
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(logger ports.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// Analyze runs the operation's command and returns its stdout.
func (a *Analyzer) Analyze(ctx context.Context, root string, spec domain.OperationSpec) ([]byte, error) {
	if len(spec.Cmd) == 0 {
		return nil, zerr.With(zerr.New("operation has no command"), "operation", spec.Name)
	}

	var stdout bytes.Buffer

	cmd := exec.CommandContext(ctx, spec.Cmd[0], spec.Cmd[1:]...) //nolint:gosec // user provided command
	cmd.Dir = root
	cmd.Stdout = &stdout
	cmd.Stderr = &logWriter{logger: a.logger}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "analysis command failed"),
			"operation", spec.Name), "exit_code", exitCode)
	}

	return stdout.Bytes(), nil
}

// logWriter forwards command stderr to the logger. Write may receive
// partial lines; splitting on newlines is good enough for diagnostics.
type logWriter struct {
	logger ports.Logger
}

func (w *logWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimSuffix(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		w.logger.Warn(line, "analyzer")
	}
	return len(p), nil
}
