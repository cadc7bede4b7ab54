package executors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rocketship-ai/loadplan/internal/plugins/script/runtime"
)

// ShellExecutor executes raw shell scripts using bash/sh.
// Go-defined scripts cannot be bridged into a shell, so only literal text runs here.
type ShellExecutor struct{}

// NewShellExecutor creates a new shell executor
func NewShellExecutor() *ShellExecutor {
	return &ShellExecutor{}
}

// Language returns the language identifier
func (s *ShellExecutor) Language() string {
	return LanguageShell
}

// ValidateScript performs basic validation on the shell script
func (s *ShellExecutor) ValidateScript(script string) error {
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("shell script cannot be empty")
	}
	return nil
}

// Execute runs the script. ${name} references are replaced with variables from the
// virtual user's bag, and exit_code, stdout, stderr and duration are written back to it.
func (s *ShellExecutor) Execute(ctx context.Context, script string, rc *runtime.Context, bindings runtime.Bindings) error {
	vars := runtime.NewVarBag()
	if rc != nil && rc.Variables != nil {
		vars = rc.Variables
	}

	shell, err := s.findShell()
	if err != nil {
		return err
	}

	startTime := time.Now()
	cmd := exec.CommandContext(ctx, shell, "-c", vars.Expand(script))
	cmd.Env = s.buildEnvironment(vars, bindings)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	duration := time.Since(startTime)

	exitCode := 0
	if err != nil {
		var exitError *exec.ExitError
		if !errors.As(err, &exitError) {
			return fmt.Errorf("command execution failed: %w", err)
		}
		exitCode = exitError.ExitCode()
	}

	vars.Put("exit_code", strconv.Itoa(exitCode))
	vars.Put("stdout", stdout.String())
	vars.Put("stderr", stderr.String())
	vars.Put("duration", duration.String())

	if exitCode != 0 {
		return fmt.Errorf("shell command failed with exit code %d. stderr: %s", exitCode, stderr.String())
	}
	return nil
}

// buildEnvironment exports variables as LOADPLAN_VAR_<NAME> and the label as LOADPLAN_LABEL
func (s *ShellExecutor) buildEnvironment(vars *runtime.VarBag, bindings runtime.Bindings) []string {
	env := os.Environ()

	entries := vars.Entries()
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(k))
		env = append(env, fmt.Sprintf("LOADPLAN_VAR_%s=%s", name, vars.Get(k)))
	}

	if label, ok := bindings["Label"].(string); ok {
		env = append(env, "LOADPLAN_LABEL="+label)
	}
	return env
}

func (s *ShellExecutor) findShell() (string, error) {
	for _, candidate := range []string{"bash", "sh"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	for _, candidate := range []string{"/bin/bash", "/bin/sh"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("neither bash nor sh is available on this system")
}
