package records

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
)

type staged struct {
	target string
	data   []byte
	// previous holds the target's contents before the write; existed is false
	// when there was no file to restore.
	previous []byte
	existed  bool
}

// writeAll writes every file to a sibling .tmp, then renames them into place.
// Unchanged files are skipped. If a rename fails, targets already renamed are
// rolled back to their previous contents so the set changes together or not at all.
func writeAll(files ...staged) error {
	var pending []staged
	for _, f := range files {
		existing, err := os.ReadFile(f.target)
		if err == nil && bytes.Equal(existing, f.data) {
			continue
		}
		if err == nil {
			f.previous, f.existed = existing, true
		}
		if err := os.MkdirAll(filepath.Dir(f.target), 0o755); err != nil {
			cleanup(pending)
			return err
		}
		if err := os.WriteFile(tmpPath(f.target), f.data, 0o644); err != nil {
			cleanup(pending)
			return err
		}
		pending = append(pending, f)
	}

	for i, f := range pending {
		if err := os.Rename(tmpPath(f.target), f.target); err != nil {
			cleanup(pending[i:])
			if rbErr := rollback(pending[:i]); rbErr != nil {
				return errors.Join(err, rbErr)
			}
			return err
		}
	}
	return nil
}

// rollback restores renamed targets, removing ones that did not exist before.
func rollback(done []staged) error {
	var errs []error
	for _, f := range done {
		if !f.existed {
			if err := os.Remove(f.target); err != nil && !os.IsNotExist(err) {
				errs = append(errs, err)
			}
			continue
		}
		if err := os.WriteFile(tmpPath(f.target), f.previous, 0o644); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Rename(tmpPath(f.target), f.target); err != nil {
			_ = os.Remove(tmpPath(f.target))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func cleanup(files []staged) {
	for _, f := range files {
		_ = os.Remove(tmpPath(f.target))
	}
}

func tmpPath(target string) string {
	return target + ".tmp"
}
