package update

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// errUnsupportedOS is returned when no shell is known for the platform.
var errUnsupportedOS = errors.New("os not supported")

// execScript runs an installed upgrade script with the platform shell and
// waits for it to finish. The working directory is the script's own
// directory, so relative paths inside the script resolve against the
// installation root.
func execScript(ctx context.Context, scriptPath string) error {
	osLC := strings.ToLower(runtime.GOOS)

	var command *exec.Cmd

	switch {
	case strings.Contains(osLC, "linux") || strings.Contains(osLC, "darwin"):
		command = exec.CommandContext(ctx, "/bin/sh", scriptPath)
	case strings.Contains(osLC, "windows"):
		command = exec.CommandContext(ctx, "cmd.exe", "/C", scriptPath)
	default:
		return fmt.Errorf("%w: %s", errUnsupportedOS, runtime.GOOS)
	}

	command.Dir = filepath.Dir(scriptPath)
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr

	if err := command.Run(); err != nil {
		return fmt.Errorf("run %s: %w", scriptPath, err)
	}

	return nil
}
