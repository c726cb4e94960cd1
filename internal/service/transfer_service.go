package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rosterly/rosterly-backend/internal/model"
	"github.com/rosterly/rosterly-backend/internal/repository"
	"github.com/rosterly/rosterly-backend/internal/validator"
	"github.com/rosterly/rosterly-backend/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// exportColumns is the tabular column order for CSV and XLSX transfers.
// created_at/updated_at travel along so an export/import round trip
// reproduces the collection exactly.
var exportColumns = []string{
	"student_id", "name", "age", "grade", "email", "performance",
	"phone", "course", "department", "enrollment_date", "status",
	"created_at", "updated_at",
}

const xlsxSheet = "Students"

// TransferService moves the record collection in and out of the system as
// CSV, JSON, or XLSX. Imports are best-effort: rows are validated
// independently, rejected rows are reported with their row number, and
// accepted rows are persisted in one write.
type TransferService struct {
	repo      *repository.StudentRepository
	analytics *AnalyticsService
	hub       *websocket.Hub
	log       zerolog.Logger
}

// NewTransferService creates a new TransferService.
func NewTransferService(repo *repository.StudentRepository, analytics *AnalyticsService, hub *websocket.Hub, log zerolog.Logger) *TransferService {
	return &TransferService{
		repo:      repo,
		analytics: analytics,
		hub:       hub,
		log:       log.With().Str("component", "transfer_service").Logger(),
	}
}

// ─── Export ─────────────────────────────────────────────────────────

// ExportCSV writes the whole collection (archived included) as CSV.
func (s *TransferService) ExportCSV(w io.Writer) error {
	students := s.repo.List(model.StudentFilter{IncludeArchived: true})

	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range students {
		if err := cw.Write(recordToRow(&students[i])); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportJSON writes the whole collection as an indented JSON array, the
// same shape as the data file.
func (s *TransferService) ExportJSON(w io.Writer) error {
	students := s.repo.List(model.StudentFilter{IncludeArchived: true})
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(students)
}

// ExportXLSX writes the whole collection as a single-sheet spreadsheet.
func (s *TransferService) ExportXLSX(w io.Writer) error {
	students := s.repo.List(model.StudentFilter{IncludeArchived: true})

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	header := make([]interface{}, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range students {
		row := recordToRow(&students[i])
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &vals); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ─── Import ─────────────────────────────────────────────────────────

// ImportCSV reads a CSV export (header row required) and bulk-imports it.
func (s *TransferService) ImportCSV(ctx context.Context, r io.Reader) (*model.ImportReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return s.importRows(ctx, rows)
}

// ImportXLSX reads the first sheet of a workbook and bulk-imports it.
func (s *TransferService) ImportXLSX(ctx context.Context, r io.Reader) (*model.ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return s.importRows(ctx, rows)
}

// ImportJSON reads a JSON array of records and bulk-imports it.
func (s *TransferService) ImportJSON(ctx context.Context, r io.Reader) (*model.ImportReport, error) {
	var incoming []model.Student
	if err := json.NewDecoder(r).Decode(&incoming); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	report := &model.ImportReport{TotalRows: len(incoming)}
	accepted := make([]model.Student, 0, len(incoming))

	for i := range incoming {
		st := normalizeImported(incoming[i])
		if reason, ok := validateImported(&st); !ok {
			report.Errors = append(report.Errors, model.ImportRowError{
				Row: i + 1, StudentID: st.StudentID, Reason: reason,
			})
			continue
		}
		accepted = append(accepted, st)
	}

	return s.apply(ctx, accepted, report)
}

// importRows handles header-addressed tabular input shared by CSV and XLSX.
// Row numbers in the report are 1-based and include the header row.
func (s *TransferService) importRows(ctx context.Context, rows [][]string) (*model.ImportReport, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file has no header row")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["student_id"]; !ok {
		return nil, fmt.Errorf("missing required column student_id")
	}

	report := &model.ImportReport{TotalRows: len(rows) - 1}
	accepted := make([]model.Student, 0, len(rows)-1)

	for i, rec := range rows[1:] {
		rowNum := i + 2
		st, reasons := rowToRecord(cols, rec)
		if len(reasons) > 0 {
			report.Errors = append(report.Errors, model.ImportRowError{
				Row: rowNum, StudentID: st.StudentID, Reason: strings.Join(reasons, "; "),
			})
			continue
		}
		if reason, ok := validateImported(&st); !ok {
			report.Errors = append(report.Errors, model.ImportRowError{
				Row: rowNum, StudentID: st.StudentID, Reason: reason,
			})
			continue
		}
		accepted = append(accepted, st)
	}

	return s.apply(ctx, accepted, report)
}

// apply snapshots the current state, inserts the accepted rows in one
// write, and folds duplicates back into the report.
func (s *TransferService) apply(ctx context.Context, accepted []model.Student, report *model.ImportReport) (*model.ImportReport, error) {
	if len(accepted) > 0 {
		if _, err := s.repo.Snapshot(); err != nil {
			s.log.Warn().Err(err).Msg("Pre-import snapshot failed")
		}
	}

	inserted, duplicates, err := s.repo.ImportBatch(accepted)
	if err != nil {
		return nil, err
	}

	for _, id := range duplicates {
		report.Errors = append(report.Errors, model.ImportRowError{
			StudentID: id, Reason: "duplicate student ID, skipped",
		})
	}

	report.Imported = inserted
	report.Rejected = len(report.Errors)

	if inserted > 0 {
		s.analytics.Invalidate(ctx)
		if s.hub != nil && s.hub.HasClients() {
			if stats, err := s.analytics.Dashboard(ctx); err == nil {
				s.hub.BroadcastSnapshot(stats)
			}
		}
	}

	s.log.Info().
		Int("imported", report.Imported).
		Int("rejected", report.Rejected).
		Msg("Bulk import finished")
	return report, nil
}

// ─── Row mapping ────────────────────────────────────────────────────

func recordToRow(s *model.Student) []string {
	return []string{
		s.StudentID,
		s.Name,
		strconv.Itoa(s.Age),
		string(s.Grade),
		s.Email,
		strconv.FormatFloat(s.Performance, 'f', -1, 64),
		s.Phone,
		s.Course,
		s.Department,
		s.EnrollmentDate,
		string(s.Status),
		s.CreatedAt.UTC().Format(time.RFC3339Nano),
		s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// rowToRecord assembles a Student from one tabular row. Parse failures are
// returned as reasons; field validation happens separately.
func rowToRecord(cols map[string]int, rec []string) (model.Student, []string) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var reasons []string

	age, err := strconv.Atoi(get("age"))
	if err != nil {
		reasons = append(reasons, "age must be a whole number")
	}
	performance, err := strconv.ParseFloat(get("performance"), 64)
	if err != nil {
		reasons = append(reasons, "performance must be a number")
	}

	st := model.Student{
		StudentID:      get("student_id"),
		Name:           get("name"),
		Age:            age,
		Grade:          model.Grade(get("grade")),
		Email:          get("email"),
		Performance:    performance,
		Phone:          get("phone"),
		Course:         get("course"),
		Department:     get("department"),
		EnrollmentDate: get("enrollment_date"),
		Status:         model.Status(get("status")),
	}
	if ts, err := time.Parse(time.RFC3339Nano, get("created_at")); err == nil {
		st.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, get("updated_at")); err == nil {
		st.UpdatedAt = ts
	}
	return normalizeImported(st), reasons
}

// normalizeImported fills the lifecycle defaults an external file may omit.
func normalizeImported(st model.Student) model.Student {
	now := time.Now().UTC()
	if st.Status != model.StatusArchived {
		st.Status = model.StatusActive
	}
	if st.EnrollmentDate == "" {
		st.EnrollmentDate = now.Format(time.DateOnly)
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = now
	}
	return st
}

// validateImported runs the registration rules against an imported record.
func validateImported(st *model.Student) (string, bool) {
	req := model.CreateStudentRequest{
		StudentID:      st.StudentID,
		Name:           st.Name,
		Age:            st.Age,
		Grade:          st.Grade,
		Email:          st.Email,
		Performance:    st.Performance,
		Phone:          st.Phone,
		Course:         st.Course,
		Department:     st.Department,
		EnrollmentDate: st.EnrollmentDate,
	}
	if st.StudentID == "" {
		return "student_id is required", false
	}

	fields := validator.Check(&req)
	if len(fields) == 0 {
		return "", true
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, fields[name]))
	}
	return strings.Join(parts, "; "), false
}
