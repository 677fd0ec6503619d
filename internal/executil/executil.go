package executil

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Runner executes external commands with inherited stdout/stderr.
type Runner struct {
	Log    *zap.Logger
	DryRun bool
	Dir    string
	Env    map[string]string

	// Redact rewrites args before they are logged; the command itself gets the originals.
	Redact func([]string) []string

	Stdout io.Writer
	Stderr io.Writer
}

// Run executes name with args. In dry-run mode the command is only logged.
func (r Runner) Run(ctx context.Context, name string, args ...string) error {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	shown := args
	if r.Redact != nil {
		shown = r.Redact(args)
	}
	fullCmd := name + " " + ShellQuoteArgs(shown)

	if r.DryRun {
		log.Info("Dry run", zap.String("cmd", fullCmd), zap.String("dir", r.Dir))
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = orDefault(r.Stdout, os.Stdout)
	cmd.Stderr = orDefault(r.Stderr, os.Stderr)
	cmd.Env = os.Environ()

	keys := make([]string, 0, len(r.Env))
	for k := range r.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Env = append(cmd.Env, k+"="+r.Env[k])
	}

	log.Info("Running", zap.String("cmd", fullCmd), zap.String("dir", r.Dir))
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return errors.Errorf("command canceled: %s", fullCmd)
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.Errorf("command timed out: %s", fullCmd)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
				return errors.Wrapf(err, "command failed (exit=%d): %s", status.ExitStatus(), fullCmd)
			}
		}
		return errors.Wrapf(err, "failed to run command: %s", fullCmd)
	}
	return nil
}

// ShellQuoteArgs returns a printable, shell-safe representation of args.
func ShellQuoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n\"'`$\\*?[]{}()<>|&;") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
