package server

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

type ScriptResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// ScriptRunner renders a script file. A returned error means the
// interpreter could not be started at all.
type ScriptRunner interface {
	RunScript(scriptPath string) (*ScriptResult, error)
}

// ExecRunner runs "<Command> <scriptPath>" and blocks until it exits.
// Command may carry leading arguments, e.g. "php -n". There is no
// timeout: a script that never exits stalls the caller.
type ExecRunner struct {
	Command string
}

func NewExecRunner(command string) *ExecRunner {
	return &ExecRunner{Command: command}
}

func (r *ExecRunner) RunScript(scriptPath string) (*ScriptResult, error) {
	args := strings.Fields(r.Command)
	if len(args) == 0 {
		return nil, errors.New("no interpreter configured")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(args[0], append(args[1:], scriptPath)...)
	cmd.Dir = filepath.Dir(scriptPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ScriptResult{
			ExitCode: exitErr.ExitCode(),
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", args[0], err)
	}
	return &ScriptResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}
