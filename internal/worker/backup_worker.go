package worker

import (
	"context"
	"time"

	"github.com/rosterly/rosterly-backend/internal/repository"
	"github.com/rs/zerolog"
)

// BackupWorker periodically snapshots the data file into the backup
// directory. Rotation happens inside the repository.
type BackupWorker struct {
	repo     *repository.StudentRepository
	interval time.Duration
	log      zerolog.Logger
}

// NewBackupWorker creates a new BackupWorker.
func NewBackupWorker(repo *repository.StudentRepository, interval time.Duration, log zerolog.Logger) *BackupWorker {
	return &BackupWorker{
		repo:     repo,
		interval: interval,
		log:      log.With().Str("component", "backup_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine. A final snapshot is
// taken when the context is cancelled so a graceful shutdown always leaves
// a fresh copy behind.
func (w *BackupWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.snapshot()
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.snapshot()
		}
	}
}

func (w *BackupWorker) snapshot() {
	name, err := w.repo.Snapshot()
	if err != nil {
		w.log.Error().Err(err).Msg("Snapshot failed")
		return
	}
	w.log.Info().Str("backup", name).Msg("Snapshot written")
}
