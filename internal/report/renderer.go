package report

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/ranis-junior/psychology-reports/internal/config"
	"go.uber.org/zap"
)

// Renderer runs the report engine for a task. In PDF mode the engine writes
// <base dir>/pdf/<outputName>.pdf.
type Renderer interface {
	Render(ctx context.Context, task Task, outputName string) error
}

type CommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

type JarRenderer struct {
	java    string
	jar     string
	baseDir string
	timeout time.Duration
	dbHost  string
	dbName  string
	dbUser  string
	dbPass  string
	command CommandFunc
}

var _ Renderer = (*JarRenderer)(nil)

func NewJarRenderer(cfg *config.Config) *JarRenderer {
	return &JarRenderer{
		java:    "java",
		jar:     filepath.Join(cfg.Report.JarPath, cfg.Report.JarName),
		baseDir: cfg.Report.BasePath,
		timeout: cfg.Report.Timeout,
		dbHost:  cfg.Database.Hostname,
		dbName:  cfg.Database.Name,
		dbUser:  cfg.Database.User,
		dbPass:  cfg.Database.Password,
		command: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

// WithCommand replaces the process launcher.
func (r *JarRenderer) WithCommand(fn CommandFunc) *JarRenderer {
	r.command = fn
	return r
}

func (r *JarRenderer) Render(ctx context.Context, task Task, outputName string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.command(ctx, r.java, r.Args(task, outputName)...)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrapf(ErrRenderTimeout, "%s after %s", task.File, r.timeout)
	}
	if err != nil {
		return errors.Errorf("render %s failed: %v; out=%s", task.File, err, out)
	}
	zap.S().Named("renderer").Debugw("report rendered", "task_id", task.ID, "file", task.File, "output", string(out))
	return nil
}

// Args builds the engine command line. Parameters are sorted by key.
func (r *JarRenderer) Args(task Task, outputName string) []string {
	return []string{
		"-jar", r.jar,
		"--base-dir", r.baseDir,
		"--parameters", joinParameters(task.Parameters),
		"--mode", string(task.Mode),
		"--generate-from-file", task.File,
		"--db-username", r.dbUser,
		"--db-password", r.dbPass,
		"--db-host", r.dbHost,
		"--db-database", r.dbName,
		"--pdf-output-name", outputName,
	}
}

func joinParameters(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, params[k]))
	}
	return strings.Join(pairs, ":")
}
