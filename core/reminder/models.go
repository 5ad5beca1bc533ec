package reminder

import (
	"time"

	"github.com/ispeaktu/backend/core"
)

// Reminder is a teacher-issued nudge tied to one (student, lesson) pair.
// At most one active reminder exists per pairing; it is cleared when the
// student starts the corresponding quiz or the teacher cancels it.
type Reminder struct {
	ID         string    `json:"id" db:"id"`
	StudentID  string    `json:"student_id" db:"student_id"`
	LessonID   string    `json:"lesson_id" db:"lesson_id"`
	MaterialID string    `json:"material_id" db:"material_id"`
	SentBy     string    `json:"sent_by" db:"sent_by"`
	SentAt     time.Time `json:"sent_at" db:"sent_at"` // UTC
}

// ReminderID derives the deterministic reminder id. The format is a
// client-compatibility contract and must not change.
func ReminderID(studentID, lessonID string) string {
	return studentID + "_" + lessonID
}

func (r Reminder) Validate() error {
	var flds []core.FieldError
	if r.StudentID == "" {
		flds = append(flds, core.FieldError{Field: "student_id", Error: "this field is required"})
	}
	if r.LessonID == "" {
		flds = append(flds, core.FieldError{Field: "lesson_id", Error: "this field is required"})
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
