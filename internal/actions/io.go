// Package actions speaks the GitHub Actions runner protocol: inputs come from
// INPUT_* variables, outputs and exported variables go to the files named by
// GITHUB_OUTPUT and GITHUB_ENV.
package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Input returns the value of action input name, trimmed.
// The runner upper-cases names and replaces spaces with underscores;
// dashes are kept, so both INPUT_FORCE-PUSH and INPUT_FORCE_PUSH are tried.
func Input(name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(os.Getenv(strings.ReplaceAll(key, "-", "_")))
}

// InputOr returns Input(name), or def when the input is empty.
func InputOr(name, def string) string {
	if v := Input(name); v != "" {
		return v
	}
	return def
}

// InputBool reports whether the input is "true" (any case).
func InputBool(name string) bool {
	return strings.EqualFold(Input(name), "true")
}

// Writer publishes step outputs and environment variables.
type Writer struct {
	OutputPath string
	EnvPath    string
	Stdout     io.Writer

	log *zap.Logger
}

// NewWriter returns a Writer bound to the runner's GITHUB_OUTPUT and GITHUB_ENV files.
func NewWriter(log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		OutputPath: os.Getenv("GITHUB_OUTPUT"),
		EnvPath:    os.Getenv("GITHUB_ENV"),
		Stdout:     os.Stdout,
		log:        log,
	}
}

// SetOutput records a step output. Without GITHUB_OUTPUT it falls back to
// the legacy ::set-output workflow command.
func (w *Writer) SetOutput(name, value string) error {
	w.log.Debug("Setting output", zap.String("name", name), zap.String("value", value))
	if w.OutputPath == "" {
		_, err := fmt.Fprintf(w.Stdout, "::set-output name=%s::%s\n", name, escapeData(value))
		return errors.WithStack(err)
	}
	line, err := formatKV(name, value)
	if err != nil {
		return err
	}
	return appendFile(w.OutputPath, line)
}

// ExportVariable sets name for this process and for later steps of the job.
func (w *Writer) ExportVariable(name, value string) error {
	if err := os.Setenv(name, value); err != nil {
		return errors.Wrapf(err, "setting %s", name)
	}
	if w.EnvPath == "" {
		w.log.Debug("GITHUB_ENV not set, variable only exported to this process", zap.String("name", name))
		return nil
	}
	line, err := formatKV(name, value)
	if err != nil {
		return err
	}
	return appendFile(w.EnvPath, line)
}

// formatKV renders name=value, switching to a heredoc block for multi-line values.
func formatKV(name, value string) (string, error) {
	if !strings.ContainsAny(value, "\r\n") {
		return name + "=" + value + "\n", nil
	}
	delim := "ghadelimiter_" + uuid.NewString()
	if strings.Contains(name, delim) || strings.Contains(value, delim) {
		return "", errors.Errorf("unexpected input: value of %s contains the delimiter", name)
	}
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delim, value, delim), nil
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}
