package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rosterly/rosterly-backend/internal/model"
)

// load reads the collection from the data file. A missing file starts an
// empty collection; an unreadable or corrupt file falls through to backup
// recovery so a bad write never silently erases the dataset.
func (r *StudentRepository) load() error {
	raw, err := os.ReadFile(r.dataFile)
	if os.IsNotExist(err) {
		if mkErr := os.MkdirAll(filepath.Dir(r.dataFile), 0o755); mkErr != nil {
			return fmt.Errorf("create data dir: %w", mkErr)
		}
		r.students = nil
		r.reindex()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read data file: %w", err)
	}

	var students []model.Student
	if err := json.Unmarshal(raw, &students); err != nil {
		r.log.Error().Err(err).Str("file", r.dataFile).Msg("Data file corrupt, attempting backup recovery")
		return r.recoverFromBackup()
	}

	r.students = students
	r.reindex()
	return nil
}

// persist writes the collection to the data file atomically: marshal to a
// temp file in the same directory, then rename over the original. Caller
// holds mu.
func (r *StudentRepository) persist() error {
	raw, err := json.MarshalIndent(r.students, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal students: %w", err)
	}

	dir := filepath.Dir(r.dataFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".students-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, r.dataFile); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// recoverFromBackup restores the collection from the newest parseable
// snapshot. If no snapshot parses, the corrupt file is moved aside and the
// collection starts empty.
func (r *StudentRepository) recoverFromBackup() error {
	aside := fmt.Sprintf("%s.corrupt-%s", r.dataFile, time.Now().UTC().Format("20060102T150405"))
	if err := os.Rename(r.dataFile, aside); err != nil {
		return fmt.Errorf("move corrupt data file aside: %w", err)
	}
	r.log.Warn().Str("moved_to", aside).Msg("Corrupt data file moved aside")

	for _, name := range r.listBackups() {
		raw, err := os.ReadFile(filepath.Join(r.backupDir, name))
		if err != nil {
			continue
		}
		var students []model.Student
		if err := json.Unmarshal(raw, &students); err != nil {
			r.log.Warn().Str("backup", name).Msg("Backup snapshot also corrupt, trying older one")
			continue
		}

		r.students = students
		r.reindex()
		if err := r.persist(); err != nil {
			return fmt.Errorf("rewrite data file from backup: %w", err)
		}
		r.log.Info().Str("backup", name).Int("records", len(students)).Msg("Recovered collection from backup")
		return nil
	}

	r.log.Error().Msg("No usable backup found, starting with empty collection")
	r.students = nil
	r.reindex()
	return nil
}
