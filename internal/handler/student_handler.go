package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterly/rosterly-backend/internal/model"
	"github.com/rosterly/rosterly-backend/internal/repository"
	"github.com/rosterly/rosterly-backend/internal/response"
	"github.com/rosterly/rosterly-backend/internal/service"
	"github.com/rosterly/rosterly-backend/internal/validator"
)

// StudentHandler handles the record store endpoints: CRUD, archival, and
// bulk operations.
type StudentHandler struct {
	studentService *service.StudentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// ListStudents godoc
// GET /api/v1/admin/students
// Lists records with pagination and the multi-field search filters.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	students, pagination, err := h.studentService.List(filter, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"students": students}, pagination)
}

// GetStudent godoc
// GET /api/v1/admin/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.studentService.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// CreateStudent godoc
// POST /api/v1/admin/students
// Registers a new student. Omitting student_id auto-assigns the next one.
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			response.Fail(c, http.StatusConflict, response.ErrDuplicateID)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// UpdateStudent godoc
// PUT /api/v1/admin/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	var req model.UpdateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// ArchiveStudent godoc
// POST /api/v1/admin/students/:id/archive
// Marks the record inactive; it stays in the collection.
func (h *StudentHandler) ArchiveStudent(c *gin.Context) {
	student, err := h.studentService.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// RestoreStudent godoc
// POST /api/v1/admin/students/:id/restore
func (h *StudentHandler) RestoreStudent(c *gin.Context) {
	student, err := h.studentService.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// DeleteStudent godoc
// DELETE /api/v1/admin/students/:id
// Physically removes the record.
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	if err := h.studentService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "student deleted successfully"})
}

// BulkDeleteStudents godoc
// POST /api/v1/admin/students/bulk-delete
func (h *StudentHandler) BulkDeleteStudents(c *gin.Context) {
	var req model.BulkDeleteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	removed, err := h.studentService.BulkDelete(c.Request.Context(), req.StudentIDs)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": removed})
}

// GetNextStudentID godoc
// GET /api/v1/admin/students/next-id
func (h *StudentHandler) GetNextStudentID(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"student_id": h.studentService.NextID()})
}

// parseFilter reads the filter query params. On a malformed numeric value
// it writes the error response and returns ok=false.
func parseFilter(c *gin.Context) (model.StudentFilter, bool) {
	filter := model.StudentFilter{
		Query:           c.Query("q"),
		Grade:           model.Grade(c.Query("grade")),
		Band:            model.PerformanceBand(c.Query("band")),
		Department:      c.Query("department"),
		Course:          c.Query("course"),
		IncludeArchived: c.Query("include_archived") == "true",
	}

	for param, dst := range map[string]**int{"min_age": &filter.MinAge, "max_age": &filter.MaxAge} {
		if raw := c.Query(param); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
				return filter, false
			}
			*dst = &n
		}
	}
	for param, dst := range map[string]**float64{"min_performance": &filter.MinPerformance, "max_performance": &filter.MaxPerformance} {
		if raw := c.Query(param); raw != "" {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
				return filter, false
			}
			*dst = &f
		}
	}
	if raw := c.Query("added_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return filter, false
		}
		since := time.Now().AddDate(0, 0, -days)
		filter.AddedSince = &since
	}

	return filter, true
}
