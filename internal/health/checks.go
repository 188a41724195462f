package health

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// Counter is anything that can report how many records it holds, such as
// the opening classifier.
type Counter interface {
	Len() int
}

// OpeningsCheck fails when no opening records are loaded. Without them
// every game renders without an opening section, so the server is degraded
// rather than down.
func OpeningsCheck(c Counter) Check {
	return func(ctx context.Context) error {
		if c == nil || c.Len() == 0 {
			return Degraded(errors.New("no opening records loaded"))
		}
		return nil
	}
}

// WritableDirCheck verifies dir exists and accepts new files.
func WritableDirCheck(dir string) Check {
	return func(ctx context.Context) error {
		info, err := os.Stat(dir)
		if err != nil {
			return errors.Wrapf(err, "output directory %s", dir)
		}
		if !info.IsDir() {
			return errors.Errorf("output path %s is not a directory", dir)
		}
		f, err := os.CreateTemp(dir, ".health-*")
		if err != nil {
			return errors.Wrapf(err, "output directory %s is not writable", dir)
		}
		name := f.Name()
		f.Close()
		return os.Remove(name)
	}
}

// FontCheck reports a missing diagram font as degraded: PNG output falls
// back to a built-in face and text output is unaffected.
func FontCheck(path string) Check {
	return func(ctx context.Context) error {
		if path == "" {
			return Degraded(errors.New("no diagram font configured"))
		}
		if _, err := os.Stat(path); err != nil {
			return Degraded(errors.Wrapf(err, "diagram font %s", path))
		}
		return nil
	}
}
