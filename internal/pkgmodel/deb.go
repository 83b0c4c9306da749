package pkgmodel

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// debExtractor drives `dpkg-deb -x` to unpack a .deb archive.
type debExtractor struct{}

func (debExtractor) extract(ctx context.Context, pkgPath, destDir string) error {
	cmd := exec.CommandContext(ctx, "dpkg-deb", "-x", pkgPath, destDir)
	if err := cmd.Run(); err != nil {
		return translateCommandError(ctx, err, "dpkg-deb", pkgPath)
	}
	return nil
}

// translateCommandError maps an *exec.Cmd.Run error into the package
// taxonomy: a missing binary, a context-deadline kill, or a non-zero exit.
func translateCommandError(ctx context.Context, err error, command, pkgPath string) error {
	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return fmt.Errorf("%s (package %s): %w: %s", command, pkgPath, ErrCommandNotFound, command)
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%s (package %s): %w", command, pkgPath, ErrExtractionTimeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%s: %w: exited with status %d", pkgPath, ErrExtractionFailed, exitErr.ExitCode())
	}
	return fmt.Errorf("running %s for %s: %w", command, pkgPath, err)
}
