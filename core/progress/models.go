package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/ispeaktu/backend/core"
)

// PassThreshold is the mastery ratio gating verification and review passes.
const PassThreshold = 0.70

const masteryReviewPrefix = "mastery_review_"

// Response captures one answered question within an attempt, ordered by
// question sequence.
type Response struct {
	QuestionIndex  int    `json:"question_index"`
	SelectedOption string `json:"selected_option"`
	IsCorrect      bool   `json:"is_correct"`
}

// Record is a student's latest attempt outcome for one lesson. Its identity
// is deterministically derived from (student, material, lesson) so that
// re-submission overwrites rather than duplicates.
type Record struct {
	ID              string     `json:"id" db:"id"`
	StudentID       string     `json:"student_id" db:"student_id"`
	StudentName     string     `json:"student_name" db:"student_name"`
	MaterialID      string     `json:"material_id" db:"material_id"`
	LessonID        string     `json:"lesson_id" db:"lesson_id"`
	Score           int        `json:"score" db:"score"`
	Total           int        `json:"total" db:"total"`
	Verified        bool       `json:"verified" db:"verified"`
	IsMasteryReview bool       `json:"is_mastery_review" db:"is_mastery_review"`
	Responses       []Response `json:"responses" db:"-"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"` // UTC
}

// RecordID derives the deterministic progress record id. The format is a
// client-compatibility contract and must not change.
func RecordID(studentID, materialID, lessonID string) string {
	return studentID + "_" + materialID + "_" + lessonID
}

// MasteryReviewLessonID derives the synthetic lesson id of the review gating
// the block of lessons starting at blockStart.
func MasteryReviewLessonID(blockStart int) string {
	return fmt.Sprintf("%s%d", masteryReviewPrefix, blockStart)
}

func IsMasteryReviewLessonID(lessonID string) bool {
	return strings.HasPrefix(lessonID, masteryReviewPrefix)
}

// Ratio returns Score/Total, or 0 for malformed totals.
func (r Record) Ratio() float64 {
	if r.Total < 1 {
		return 0
	}
	return float64(r.Score) / float64(r.Total)
}

// Passed reports whether the attempt meets the mastery threshold.
func (r Record) Passed() bool { return r.Ratio() >= PassThreshold }

// Percent returns the attempt score as a rounded integer percentage.
func (r Record) Percent() int { return int(r.Ratio()*100 + 0.5) }

// Malformed reports whether the record violates the numeric invariants
// (Total >= 1, 0 <= Score <= Total). Malformed records are excluded from all
// aggregation and rejected on the save path.
func (r Record) Malformed() bool {
	return r.Total < 1 || r.Score < 0 || r.Score > r.Total
}

// Validate enforces the save-path invariants.
func (r Record) Validate() error {
	var flds []core.FieldError
	if r.StudentID == "" {
		flds = append(flds, core.FieldError{Field: "student_id", Error: "this field is required"})
	}
	if r.LessonID == "" {
		flds = append(flds, core.FieldError{Field: "lesson_id", Error: "this field is required"})
	}
	if r.Total < 1 {
		flds = append(flds, core.FieldError{Field: "total", Error: "an attempt needs at least one question"})
	}
	if r.Score < 0 || r.Score > r.Total {
		flds = append(flds, core.FieldError{Field: "score", Error: "score must be between 0 and total"})
	}
	if flds != nil {
		return core.NewValidationError(errMalformedRecord, flds...)
	}
	return nil
}
