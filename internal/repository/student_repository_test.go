package repository

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rosterly/rosterly-backend/internal/model"
	"github.com/rs/zerolog"
)

func newTestRepo(t *testing.T) *StudentRepository {
	t.Helper()
	dir := t.TempDir()
	repo, err := NewStudentRepository(
		filepath.Join(dir, "students.json"),
		filepath.Join(dir, "backups"),
		3,
		zerolog.Nop(),
	)
	if err != nil {
		t.Fatalf("NewStudentRepository: %v", err)
	}
	return repo
}

func sampleStudent(id string) model.Student {
	now := time.Now().UTC()
	return model.Student{
		StudentID:      id,
		Name:           "Test Student",
		Age:            20,
		Grade:          model.GradeB,
		Email:          id + "@example.edu",
		Performance:    80,
		Course:         "Computer Science",
		Department:     "Engineering",
		EnrollmentDate: now.Format(time.DateOnly),
		Status:         model.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestCreateThenGet(t *testing.T) {
	repo := newTestRepo(t)

	want := sampleStudent("STU001")
	if err := repo.Create(want); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get("STU001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != want.Name || got.Email != want.Email || got.Performance != want.Performance {
		t.Errorf("Get returned %+v, want %+v", got, want)
	}
}

func TestCreateDuplicateLeavesCollectionUnchanged(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Create(sampleStudent("STU001")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := sampleStudent("STU001")
	dup.Name = "Someone Else"
	if err := repo.Create(dup); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Create duplicate: got %v, want ErrDuplicateID", err)
	}

	got, err := repo.Get("STU001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Test Student" {
		t.Errorf("original record was altered: %q", got.Name)
	}
	if total, _ := repo.Count(); total != 1 {
		t.Errorf("Count = %d, want 1", total)
	}
}

func TestUpdateAbsentIDFails(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.Update("STU999", sampleStudent("STU999")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update absent: got %v, want ErrNotFound", err)
	}
	if total, _ := repo.Count(); total != 0 {
		t.Errorf("Count = %d, want 0", total)
	}
}

func TestUpdatePreservesIdentityAndCreatedAt(t *testing.T) {
	repo := newTestRepo(t)

	orig := sampleStudent("STU001")
	if err := repo.Create(orig); err != nil {
		t.Fatalf("Create: %v", err)
	}

	changes := sampleStudent("IGNORED")
	changes.Name = "Renamed Student"
	updated, err := repo.Update("STU001", changes)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.StudentID != "STU001" {
		t.Errorf("StudentID = %q, want STU001", updated.StudentID)
	}
	if !updated.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("CreatedAt changed on update")
	}
	if updated.Name != "Renamed Student" {
		t.Errorf("Name = %q", updated.Name)
	}
}

func TestArchiveKeepsRecordInCollection(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Create(sampleStudent("STU001")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(sampleStudent("STU002")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.SetStatus("STU001", model.StatusArchived); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	total, active := repo.Count()
	if total != 2 {
		t.Errorf("total = %d, want 2 (archive must not remove)", total)
	}
	if active != 1 {
		t.Errorf("active = %d, want 1", active)
	}

	// Default listing hides archived records; include_archived shows them.
	if got := len(repo.List(model.StudentFilter{})); got != 1 {
		t.Errorf("List default = %d records, want 1", got)
	}
	if got := len(repo.List(model.StudentFilter{IncludeArchived: true})); got != 2 {
		t.Errorf("List include_archived = %d records, want 2", got)
	}
}

func TestDeleteRemovesAndReindexes(t *testing.T) {
	repo := newTestRepo(t)

	for _, id := range []string{"STU001", "STU002", "STU003"} {
		if err := repo.Create(sampleStudent(id)); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	if err := repo.Delete("STU002"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get("STU002"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get deleted: got %v, want ErrNotFound", err)
	}
	// Index must still resolve records that moved position.
	if _, err := repo.Get("STU003"); err != nil {
		t.Errorf("Get STU003 after delete: %v", err)
	}
	if err := repo.Delete("STU002"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}
}

func TestDeleteMany(t *testing.T) {
	repo := newTestRepo(t)

	for _, id := range []string{"STU001", "STU002", "STU003"} {
		if err := repo.Create(sampleStudent(id)); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	removed, err := repo.DeleteMany([]string{"STU001", "STU003", "STU999"})
	if err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if total, _ := repo.Count(); total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestImportBatchSkipsDuplicates(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Create(sampleStudent("STU001")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	inserted, duplicates, err := repo.ImportBatch([]model.Student{
		sampleStudent("STU001"), // Already present
		sampleStudent("STU002"),
		sampleStudent("STU002"), // Duplicate within the batch
		sampleStudent("STU003"),
	})
	if err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}
	if len(duplicates) != 2 {
		t.Errorf("duplicates = %v, want 2 entries", duplicates)
	}
}

func TestNextID(t *testing.T) {
	repo := newTestRepo(t)

	if got := repo.NextID(); got != "STU001" {
		t.Errorf("NextID on empty store = %q, want STU001", got)
	}

	if err := repo.Create(sampleStudent("STU007")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	other := sampleStudent("EXT-42") // Non-standard IDs are ignored
	if err := repo.Create(other); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got := repo.NextID(); got != "STU008" {
		t.Errorf("NextID = %q, want STU008", got)
	}
}

func TestPersistenceSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "students.json")
	backupDir := filepath.Join(dir, "backups")

	repo, err := NewStudentRepository(dataFile, backupDir, 3, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStudentRepository: %v", err)
	}
	if err := repo.Create(sampleStudent("STU001")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.SetStatus("STU001", model.StatusArchived); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	reloaded, err := NewStudentRepository(dataFile, backupDir, 3, zerolog.Nop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := reloaded.Get("STU001")
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if got.Status != model.StatusArchived {
		t.Errorf("Status after reload = %q, want archived", got.Status)
	}
}

func TestListFilters(t *testing.T) {
	repo := newTestRepo(t)

	a := sampleStudent("STU001")
	a.Name = "Ada Lovelace"
	a.Grade = model.GradeA
	a.Performance = 95
	a.Age = 19
	b := sampleStudent("STU002")
	b.Name = "Bob Martin"
	b.Grade = model.GradeC
	b.Performance = 55
	b.Age = 30
	b.Department = "Business"

	for _, s := range []model.Student{a, b} {
		if err := repo.Create(s); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if got := repo.List(model.StudentFilter{Query: "lovelace"}); len(got) != 1 || got[0].StudentID != "STU001" {
		t.Errorf("Query filter: %v", got)
	}
	if got := repo.List(model.StudentFilter{Grade: model.GradeC}); len(got) != 1 || got[0].StudentID != "STU002" {
		t.Errorf("Grade filter: %v", got)
	}
	if got := repo.List(model.StudentFilter{Band: model.BandExcellent}); len(got) != 1 || got[0].StudentID != "STU001" {
		t.Errorf("Band filter: %v", got)
	}

	minAge := 25
	if got := repo.List(model.StudentFilter{MinAge: &minAge}); len(got) != 1 || got[0].StudentID != "STU002" {
		t.Errorf("MinAge filter: %v", got)
	}

	maxPerf := 60.0
	if got := repo.List(model.StudentFilter{MaxPerformance: &maxPerf}); len(got) != 1 || got[0].StudentID != "STU002" {
		t.Errorf("MaxPerformance filter: %v", got)
	}

	if got := repo.List(model.StudentFilter{Department: "business"}); len(got) != 1 || got[0].StudentID != "STU002" {
		t.Errorf("Department filter: %v", got)
	}
}
