package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const backupPrefix = "students-"

// BackupInfo describes one snapshot in the backup directory.
type BackupInfo struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot writes a timestamped copy of the current collection into the
// backup directory and rotates old snapshots down to the retention count.
// Returns the snapshot file name.
func (r *StudentRepository) Snapshot() (string, error) {
	r.mu.RLock()
	raw, err := json.MarshalIndent(r.students, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("marshal students: %w", err)
	}

	if err := os.MkdirAll(r.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	// Nanosecond precision keeps names unique and lexicographically ordered.
	name := backupPrefix + time.Now().UTC().Format("20060102T150405.000000000") + ".json"
	if err := os.WriteFile(filepath.Join(r.backupDir, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	r.rotate()
	return name, nil
}

// Backups lists the snapshots in the backup directory, newest first.
func (r *StudentRepository) Backups() ([]BackupInfo, error) {
	var infos []BackupInfo
	for _, name := range r.listBackups() {
		fi, err := os.Stat(filepath.Join(r.backupDir, name))
		if err != nil {
			continue
		}
		infos = append(infos, BackupInfo{
			Name:      name,
			SizeBytes: fi.Size(),
			CreatedAt: fi.ModTime().UTC(),
		})
	}
	return infos, nil
}

// listBackups returns snapshot file names, newest first. Timestamped names
// sort lexicographically, so no stat calls are needed.
func (r *StudentRepository) listBackups() []string {
	entries, err := os.ReadDir(r.backupDir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names
}

// rotate deletes snapshots beyond the retention count, oldest first.
func (r *StudentRepository) rotate() {
	names := r.listBackups()
	if r.keep <= 0 || len(names) <= r.keep {
		return
	}
	for _, name := range names[r.keep:] {
		if err := os.Remove(filepath.Join(r.backupDir, name)); err != nil {
			r.log.Warn().Err(err).Str("backup", name).Msg("Failed to remove old snapshot")
		}
	}
}
