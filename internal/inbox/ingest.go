package inbox

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mhalvorsen/vouchsafe/internal/model"
)

// Admitter is the engine surface the inbox needs. Satisfied by
// *engine.Engine.
type Admitter interface {
	Admit(p model.Proposal) (string, error)
}

// Ingestor validates dropped proposal files and admits them.
type Ingestor struct {
	dirs   DirConfig
	engine Admitter
	logger *zap.Logger
}

// NewIngestor creates an ingestor. A nil logger discards logs.
func NewIngestor(dirs DirConfig, eng Admitter, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{dirs: dirs, engine: eng, logger: logger}
}

// Ingest reads one dropped file, admits its proposal, and moves the
// file to ingested/ on success or failed/ on any error.
func (i *Ingestor) Ingest(path string) error {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	var p model.Proposal
	if err := json.Unmarshal(data, &p); err != nil {
		i.fail(path, name)
		return fmt.Errorf("parse %s: %w", name, err)
	}

	id, err := i.engine.Admit(p)
	if err != nil {
		i.fail(path, name)
		return fmt.Errorf("admit %s: %w", name, err)
	}

	dst := filepath.Join(i.dirs.IngestedDir(), name)
	if err := os.Rename(path, dst); err != nil {
		i.logger.Warn("move ingested file failed",
			zap.String("file", name),
			zap.Error(err))
	}

	i.logger.Info("proposal ingested",
		zap.String("file", name),
		zap.String("decision_id", id))
	return nil
}

func (i *Ingestor) fail(path, name string) {
	dst := filepath.Join(i.dirs.FailedDir(), name)
	if err := os.Rename(path, dst); err != nil {
		i.logger.Warn("move failed file failed",
			zap.String("file", name),
			zap.Error(err))
	}
}
