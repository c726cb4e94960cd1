package model

import "time"

// Grade is the letter grade assigned to a student.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Grades lists every valid letter grade in display order.
var Grades = []Grade{GradeA, GradeB, GradeC, GradeD, GradeF}

// Status is the enrollment lifecycle state of a record.
// Archiving marks a record inactive without removing it.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// PerformanceBand classifies a performance score into a named band.
type PerformanceBand string

const (
	BandExcellent        PerformanceBand = "Excellent"
	BandGood             PerformanceBand = "Good"
	BandAverage          PerformanceBand = "Average"
	BandNeedsImprovement PerformanceBand = "Needs Improvement"
)

// PerformanceBands lists every band in descending order.
var PerformanceBands = []PerformanceBand{BandExcellent, BandGood, BandAverage, BandNeedsImprovement}

// BandFor returns the performance band for a 0-100 score.
func BandFor(performance float64) PerformanceBand {
	switch {
	case performance >= 90:
		return BandExcellent
	case performance >= 75:
		return BandGood
	case performance >= 60:
		return BandAverage
	default:
		return BandNeedsImprovement
	}
}

// Student represents a single student record.
type Student struct {
	StudentID      string    `json:"student_id"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Grade          Grade     `json:"grade"`
	Email          string    `json:"email"`
	Performance    float64   `json:"performance"`
	Phone          string    `json:"phone,omitempty"`
	Course         string    `json:"course"`
	Department     string    `json:"department,omitempty"`
	EnrollmentDate string    `json:"enrollment_date"` // YYYY-MM-DD
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Band returns the student's performance band.
func (s *Student) Band() PerformanceBand {
	return BandFor(s.Performance)
}

// Active reports whether the record has not been archived.
func (s *Student) Active() bool {
	return s.Status != StatusArchived
}

// StudentFilter holds the multi-field predicates for listing records.
// Zero-valued fields are ignored; pointer fields distinguish "unset" from zero.
type StudentFilter struct {
	// Query matches case-insensitively against name, email, course,
	// department and phone.
	Query           string
	Grade           Grade
	Band            PerformanceBand
	Department      string
	Course          string
	MinAge          *int
	MaxAge          *int
	MinPerformance  *float64
	MaxPerformance  *float64
	AddedSince      *time.Time
	IncludeArchived bool
}

// CreateStudentRequest is the payload for registering a new student.
// An empty student_id asks the server to assign the next free one.
type CreateStudentRequest struct {
	StudentID      string  `json:"student_id" binding:"omitempty,min=4,max=20"`
	Name           string  `json:"name" binding:"required,min=2,max=100,personname"`
	Age            int     `json:"age" binding:"required,min=15,max=70"`
	Grade          Grade   `json:"grade" binding:"required,oneof=A B C D F"`
	Email          string  `json:"email" binding:"required,email"`
	Performance    float64 `json:"performance" binding:"min=0,max=100"`
	Phone          string  `json:"phone" binding:"omitempty,phone"`
	Course         string  `json:"course" binding:"required,min=2,max=100"`
	Department     string  `json:"department" binding:"omitempty,max=100"`
	EnrollmentDate string  `json:"enrollment_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateStudentRequest is the payload for updating an existing student.
// The identifier itself is immutable; it comes from the URL.
type UpdateStudentRequest struct {
	Name           string  `json:"name" binding:"required,min=2,max=100,personname"`
	Age            int     `json:"age" binding:"required,min=15,max=70"`
	Grade          Grade   `json:"grade" binding:"required,oneof=A B C D F"`
	Email          string  `json:"email" binding:"required,email"`
	Performance    float64 `json:"performance" binding:"min=0,max=100"`
	Phone          string  `json:"phone" binding:"omitempty,phone"`
	Course         string  `json:"course" binding:"required,min=2,max=100"`
	Department     string  `json:"department" binding:"omitempty,max=100"`
	EnrollmentDate string  `json:"enrollment_date" binding:"omitempty,datetime=2006-01-02"`
}

// BulkDeleteRequest is the payload for deleting several students at once.
type BulkDeleteRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required,min=1"`
}
