package service

import (
	"context"
	"time"

	"github.com/rosterly/rosterly-backend/internal/model"
	"github.com/rosterly/rosterly-backend/internal/repository"
	"github.com/rosterly/rosterly-backend/internal/response"
	"github.com/rosterly/rosterly-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// StudentService handles record business logic on top of the file-backed
// repository: ID assignment, pagination, bulk operations, and the
// post-mutation fan-out (cache invalidation, dashboard broadcast).
type StudentService struct {
	repo      *repository.StudentRepository
	analytics *AnalyticsService
	hub       *websocket.Hub
	log       zerolog.Logger
}

// NewStudentService creates a new StudentService. hub may be nil when no
// live dashboard is wired (seeder, tests).
func NewStudentService(repo *repository.StudentRepository, analytics *AnalyticsService, hub *websocket.Hub, log zerolog.Logger) *StudentService {
	return &StudentService{
		repo:      repo,
		analytics: analytics,
		hub:       hub,
		log:       log.With().Str("component", "student_service").Logger(),
	}
}

// Get retrieves a single record.
func (s *StudentService) Get(id string) (model.Student, error) {
	return s.repo.Get(id)
}

// List applies the filter and paginates the result in the usual way.
func (s *StudentService) List(f model.StudentFilter, page, perPage int) ([]model.Student, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	matched := s.repo.List(f)
	total := len(matched)

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	return matched[start:end], pagination, nil
}

// Create registers a new student. An empty student_id gets the next free
// one; an empty enrollment date defaults to today.
func (s *StudentService) Create(ctx context.Context, req model.CreateStudentRequest) (model.Student, error) {
	now := time.Now().UTC()

	student := model.Student{
		StudentID:      req.StudentID,
		Name:           req.Name,
		Age:            req.Age,
		Grade:          req.Grade,
		Email:          req.Email,
		Performance:    req.Performance,
		Phone:          req.Phone,
		Course:         req.Course,
		Department:     req.Department,
		EnrollmentDate: req.EnrollmentDate,
		Status:         model.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if student.StudentID == "" {
		student.StudentID = s.repo.NextID()
	}
	if student.EnrollmentDate == "" {
		student.EnrollmentDate = now.Format(time.DateOnly)
	}

	if err := s.repo.Create(student); err != nil {
		return model.Student{}, err
	}

	s.recordsChanged(ctx)
	return student, nil
}

// Update replaces the mutable fields of an existing record.
func (s *StudentService) Update(ctx context.Context, id string, req model.UpdateStudentRequest) (model.Student, error) {
	updated, err := s.repo.Update(id, model.Student{
		Name:           req.Name,
		Age:            req.Age,
		Grade:          req.Grade,
		Email:          req.Email,
		Performance:    req.Performance,
		Phone:          req.Phone,
		Course:         req.Course,
		Department:     req.Department,
		EnrollmentDate: req.EnrollmentDate,
	})
	if err != nil {
		return model.Student{}, err
	}

	s.recordsChanged(ctx)
	return updated, nil
}

// Archive marks a record inactive without removing it.
func (s *StudentService) Archive(ctx context.Context, id string) (model.Student, error) {
	student, err := s.repo.SetStatus(id, model.StatusArchived)
	if err != nil {
		return model.Student{}, err
	}
	s.recordsChanged(ctx)
	return student, nil
}

// Restore returns an archived record to active status.
func (s *StudentService) Restore(ctx context.Context, id string) (model.Student, error) {
	student, err := s.repo.SetStatus(id, model.StatusActive)
	if err != nil {
		return model.Student{}, err
	}
	s.recordsChanged(ctx)
	return student, nil
}

// Delete physically removes a record.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.recordsChanged(ctx)
	return nil
}

// BulkDelete removes several records at once. A backup snapshot is taken
// first so the operation can be undone from the backup directory.
func (s *StudentService) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if _, err := s.repo.Snapshot(); err != nil {
		s.log.Warn().Err(err).Msg("Pre-delete snapshot failed")
	}

	removed, err := s.repo.DeleteMany(ids)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.recordsChanged(ctx)
	}
	return removed, nil
}

// NextID returns the next free student identifier.
func (s *StudentService) NextID() string {
	return s.repo.NextID()
}

// recordsChanged runs the post-mutation fan-out: drop cached aggregates and
// push a fresh snapshot to connected dashboards.
func (s *StudentService) recordsChanged(ctx context.Context) {
	s.analytics.Invalidate(ctx)

	if s.hub == nil || !s.hub.HasClients() {
		return
	}
	stats, err := s.analytics.Dashboard(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Dashboard snapshot after mutation failed")
		return
	}
	s.hub.BroadcastSnapshot(stats)
}
