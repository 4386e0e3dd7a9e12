package document

import (
	"context"
	"os/exec"

	"github.com/pkg/errors"
)

// Runner executes an external binary and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// run applies the normalizer timeout to a single invocation. A deadline hit is reported as
// ErrProcessTimeout whatever the process itself returned.
func (n *Normalizer) run(ctx context.Context, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	out, err := n.runner(ctx, name, args...)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrapf(ErrProcessTimeout, "%s after %s", name, n.timeout)
	}
	if err != nil {
		return errors.Errorf("%s failed: %v; out=%s", name, err, out)
	}
	return nil
}

// CheckBinaries reports the converter binaries missing from PATH.
func (n *Normalizer) CheckBinaries() error {
	for _, bin := range []string{n.soffice, n.pdftoppm} {
		if _, err := exec.LookPath(bin); err != nil {
			return errors.Wrapf(err, "missing required binary %q", bin)
		}
	}
	return nil
}
