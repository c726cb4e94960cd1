package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rosterly/rosterly-backend/internal/model"
	"github.com/rs/zerolog"
)

var (
	ErrDuplicateID = errors.New("student with this ID already exists")
	ErrNotFound    = errors.New("student not found")
)

// StudentRepository is the record store: an in-memory collection backed by a
// JSON file on disk. Every mutation is persisted before it returns, so the
// file is always the durable copy of the collection. All access goes through
// the mutex; the repository is safe for concurrent use within one process.
type StudentRepository struct {
	mu        sync.RWMutex
	dataFile  string
	backupDir string
	keep      int
	log       zerolog.Logger

	students []model.Student // Insertion order preserved
	index    map[string]int  // student_id → position in students
}

// NewStudentRepository creates the repository and loads the collection from
// dataFile. A missing file yields an empty collection; a corrupt file
// triggers backup recovery (see datafile.go).
func NewStudentRepository(dataFile, backupDir string, keep int, log zerolog.Logger) (*StudentRepository, error) {
	r := &StudentRepository{
		dataFile:  dataFile,
		backupDir: backupDir,
		keep:      keep,
		log:       log.With().Str("component", "student_repository").Logger(),
		index:     make(map[string]int),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Get retrieves a student by ID.
func (r *StudentRepository) Get(id string) (model.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[id]
	if !ok {
		return model.Student{}, ErrNotFound
	}
	return r.students[pos], nil
}

// List returns the records matching the filter, in insertion order.
// Archived records are excluded unless the filter asks for them.
func (r *StudentRepository) List(f model.StudentFilter) []model.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]model.Student, 0, len(r.students))
	for i := range r.students {
		if r.matches(&r.students[i], &f) {
			matched = append(matched, r.students[i])
		}
	}
	return matched
}

// Create appends a new record and persists the collection.
// Fails with ErrDuplicateID without altering the collection.
func (r *StudentRepository) Create(s model.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[s.StudentID]; exists {
		return ErrDuplicateID
	}

	r.students = append(r.students, s)
	r.index[s.StudentID] = len(r.students) - 1

	if err := r.persist(); err != nil {
		// Roll back the in-memory append so memory and disk stay reconciled.
		r.students = r.students[:len(r.students)-1]
		delete(r.index, s.StudentID)
		return err
	}
	return nil
}

// Update replaces the mutable fields of an existing record and persists.
// Fails with ErrNotFound without altering the collection.
func (r *StudentRepository) Update(id string, s model.Student) (model.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[id]
	if !ok {
		return model.Student{}, ErrNotFound
	}

	prev := r.students[pos]
	s.StudentID = prev.StudentID
	s.Status = prev.Status
	s.CreatedAt = prev.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	r.students[pos] = s

	if err := r.persist(); err != nil {
		r.students[pos] = prev
		return model.Student{}, err
	}
	return s, nil
}

// SetStatus marks a record active or archived without removing it.
func (r *StudentRepository) SetStatus(id string, status model.Status) (model.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[id]
	if !ok {
		return model.Student{}, ErrNotFound
	}

	prev := r.students[pos]
	r.students[pos].Status = status
	r.students[pos].UpdatedAt = time.Now().UTC()

	if err := r.persist(); err != nil {
		r.students[pos] = prev
		return model.Student{}, err
	}
	return r.students[pos], nil
}

// Delete physically removes a record and persists.
func (r *StudentRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[id]
	if !ok {
		return ErrNotFound
	}

	prev := r.students
	r.students = append(append([]model.Student{}, r.students[:pos]...), r.students[pos+1:]...)
	r.reindex()

	if err := r.persist(); err != nil {
		r.students = prev
		r.reindex()
		return err
	}
	return nil
}

// DeleteMany removes every listed ID that exists and reports how many were
// removed. Unknown IDs are ignored, matching bulk-operation semantics.
func (r *StudentRepository) DeleteMany(ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	prev := r.students
	kept := make([]model.Student, 0, len(r.students))
	for _, s := range r.students {
		if _, gone := drop[s.StudentID]; !gone {
			kept = append(kept, s)
		}
	}
	removed := len(r.students) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	r.students = kept
	r.reindex()

	if err := r.persist(); err != nil {
		r.students = prev
		r.reindex()
		return 0, err
	}
	return removed, nil
}

// ImportBatch inserts every record whose ID is not already present, with a
// single persist at the end. Returns the inserted count and the IDs that
// were skipped as duplicates.
func (r *StudentRepository) ImportBatch(batch []model.Student) (int, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prevLen := len(r.students)
	var duplicates []string

	for _, s := range batch {
		if _, exists := r.index[s.StudentID]; exists {
			duplicates = append(duplicates, s.StudentID)
			continue
		}
		r.students = append(r.students, s)
		r.index[s.StudentID] = len(r.students) - 1
	}

	inserted := len(r.students) - prevLen
	if inserted == 0 {
		return 0, duplicates, nil
	}

	if err := r.persist(); err != nil {
		r.students = r.students[:prevLen]
		r.reindex()
		return 0, duplicates, err
	}
	return inserted, duplicates, nil
}

// NextID returns the next free STUnnn identifier, scanning existing IDs for
// the highest numeric suffix.
func (r *StudentRepository) NextID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, s := range r.students {
		if !strings.HasPrefix(s.StudentID, "STU") {
			continue
		}
		n, err := strconv.Atoi(s.StudentID[3:])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("STU%03d", max+1)
}

// Count returns the total and active record counts.
func (r *StudentRepository) Count() (total, active int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total = len(r.students)
	for i := range r.students {
		if r.students[i].Active() {
			active++
		}
	}
	return total, active
}

func (r *StudentRepository) matches(s *model.Student, f *model.StudentFilter) bool {
	if !f.IncludeArchived && !s.Active() {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(s.Name), q) &&
			!strings.Contains(strings.ToLower(s.Email), q) &&
			!strings.Contains(strings.ToLower(s.Course), q) &&
			!strings.Contains(strings.ToLower(s.Department), q) &&
			!strings.Contains(s.Phone, f.Query) {
			return false
		}
	}
	if f.Grade != "" && s.Grade != f.Grade {
		return false
	}
	if f.Band != "" && s.Band() != f.Band {
		return false
	}
	if f.Department != "" && !strings.Contains(strings.ToLower(s.Department), strings.ToLower(f.Department)) {
		return false
	}
	if f.Course != "" && !strings.Contains(strings.ToLower(s.Course), strings.ToLower(f.Course)) {
		return false
	}
	if f.MinAge != nil && s.Age < *f.MinAge {
		return false
	}
	if f.MaxAge != nil && s.Age > *f.MaxAge {
		return false
	}
	if f.MinPerformance != nil && s.Performance < *f.MinPerformance {
		return false
	}
	if f.MaxPerformance != nil && s.Performance > *f.MaxPerformance {
		return false
	}
	if f.AddedSince != nil && s.CreatedAt.Before(*f.AddedSince) {
		return false
	}
	return true
}

// reindex rebuilds the ID index after positional changes. Caller holds mu.
func (r *StudentRepository) reindex() {
	r.index = make(map[string]int, len(r.students))
	for i := range r.students {
		r.index[r.students[i].StudentID] = i
	}
}
