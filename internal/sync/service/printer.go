package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/magsync/internal/sync/domain"
	"github.com/aussiebroadwan/magsync/pkg/baselinker"
)

// Printer delivers a fetched label to an actual output device. The agent is
// ignorant of how: a spool directory watched by CUPS, a direct lp pipe, a
// test double.
type Printer interface {
	Print(ctx context.Context, job domain.PrintJob, label *baselinker.Label) error
}

// SpoolPrinter writes labels into a spool directory for an external print
// daemon to pick up. Files are named after the job id so a crashed pass
// overwrites its own partial output instead of duplicating it.
type SpoolPrinter struct {
	Dir string
}

func (p *SpoolPrinter) Print(_ context.Context, job domain.PrintJob, label *baselinker.Label) error {
	data, err := base64.StdEncoding.DecodeString(label.Data)
	if err != nil {
		return fmt.Errorf("decode label for job %s: %w", job.ID, err)
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("create spool dir: %w", err)
	}

	path := filepath.Join(p.Dir, job.ID+"."+label.Extension)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write label for job %s: %w", job.ID, err)
	}
	return nil
}
