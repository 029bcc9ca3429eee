package pipcommands

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const DefaultPython = "python3"

type PipExecutor interface {
	InstallRequirements(ctx context.Context, requirementsFile string) error
	InstallPackage(ctx context.Context, name string, version string) error
	// InstalledVersion returns an empty string when the package is not installed.
	InstalledVersion(ctx context.Context, name string) (string, error)
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// PipCmdExecutor runs pip as a module of the configured interpreter so installs land
// in the same environment the interpreter uses.
type PipCmdExecutor struct {
	python string
	run    commandRunner
}

func NewPipExecutor(python string) *PipCmdExecutor {
	if python == "" {
		python = DefaultPython
	}

	return &PipCmdExecutor{
		python: python,
		run:    runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "PIP_DISABLE_PIP_VERSION_CHECK=1")

	return cmd.CombinedOutput()
}

func (p *PipCmdExecutor) pip(ctx context.Context, args ...string) ([]byte, error) {
	return p.run(ctx, p.python, append([]string{"-m", "pip"}, args...)...)
}

func (p *PipCmdExecutor) InstallRequirements(ctx context.Context, requirementsFile string) error {
	output, err := p.pip(ctx, "install", "-r", requirementsFile)
	if err != nil {
		return commandError(ctx, "pip install -r "+requirementsFile, output, err)
	}

	return nil
}

func (p *PipCmdExecutor) InstallPackage(ctx context.Context, name string, version string) error {
	target := name
	if version != "" {
		target = name + "==" + version
	}

	output, err := p.pip(ctx, "install", target)
	if err != nil {
		return commandError(ctx, "pip install "+target, output, err)
	}

	return nil
}

func (p *PipCmdExecutor) InstalledVersion(ctx context.Context, name string) (string, error) {
	output, err := p.pip(ctx, "show", name)
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) && ctx.Err() == nil {
			// pip show exits non-zero for packages that are not installed
			return "", nil
		}
		return "", commandError(ctx, "pip show "+name, output, err)
	}

	return parseShowVersion(output), nil
}

func parseShowVersion(output []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if version, ok := strings.CutPrefix(scanner.Text(), "Version:"); ok {
			return strings.TrimSpace(version)
		}
	}
	return ""
}

func commandError(ctx context.Context, command string, output []byte, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s cancelled: %w", command, ctx.Err())
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return fmt.Errorf("%s failed: %s", command, lastLine(output))
	}

	return fmt.Errorf("failed to run %s: %w", command, err)
}

// lastLine is where pip puts the actual error.
func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
