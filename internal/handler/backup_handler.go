package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rosterly/rosterly-backend/internal/repository"
	"github.com/rosterly/rosterly-backend/internal/response"
)

// BackupHandler exposes the snapshot machinery: list existing snapshots and
// trigger one on demand (the periodic worker covers the rest).
type BackupHandler struct {
	repo *repository.StudentRepository
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(repo *repository.StudentRepository) *BackupHandler {
	return &BackupHandler{repo: repo}
}

// ListBackups godoc
// GET /api/v1/admin/backups
func (h *BackupHandler) ListBackups(c *gin.Context) {
	backups, err := h.repo.Backups()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if backups == nil {
		backups = []repository.BackupInfo{}
	}

	response.Success(c, http.StatusOK, gin.H{"backups": backups})
}

// CreateBackup godoc
// POST /api/v1/admin/backups
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	name, err := h.repo.Snapshot()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"backup": name})
}
