// Package inbox admits proposals dropped as JSON files into a watched
// directory. Files are validated, admitted to the engine, and moved to
// an ingested or failed subdirectory so the drop directory only ever
// holds unprocessed work.
package inbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// dirPerm is the permission for inbox-managed directories.
const dirPerm = 0750

// DirConfig holds the inbox directory layout.
type DirConfig struct {
	Drop  string // incoming proposal files
	State string // state/{ingested,failed}
}

// IngestedDir returns the path for successfully admitted files.
func (d DirConfig) IngestedDir() string {
	return filepath.Join(d.State, "ingested")
}

// FailedDir returns the path for rejected files.
func (d DirConfig) FailedDir() string {
	return filepath.Join(d.State, "failed")
}

// EnsureDirs creates all required directories. Idempotent.
func EnsureDirs(cfg DirConfig) error {
	dirs := []string{
		cfg.Drop,
		cfg.IngestedDir(),
		cfg.FailedDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// isProposalFile reports whether a path looks like a droppable proposal.
func isProposalFile(name string) bool {
	return strings.HasSuffix(name, ".json") && !strings.HasPrefix(filepath.Base(name), ".")
}

// ScanExisting invokes the handler for proposal files already present
// in the drop directory, oldest name first.
func ScanExisting(dir string, handler func(path string)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !isProposalFile(e.Name()) {
			continue
		}
		handler(filepath.Join(dir, e.Name()))
	}
	return nil
}
