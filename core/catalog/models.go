package catalog

import (
	"github.com/ispeaktu/backend/core"
)

// Material is the top-level curriculum unit. It is authored out-of-band and
// immutable from the student/teacher runtime's perspective within a session.
type Material struct {
	ID          string   `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Description string   `json:"description" db:"description"`
	OrderIndex  int      `json:"order_index" db:"order_index"`
	Lessons     []Lesson `json:"lessons" db:"-"`
}

// Lesson is an ordered quiz unit within a material. A lesson at zero-based
// sequence index i is a milestone iff (i+1) mod 10 == 0.
type Lesson struct {
	ID         string `json:"id" db:"id"`
	MaterialID string `json:"material_id" db:"material_id"`
	Title      string `json:"title" db:"title"`
	OrderIndex int    `json:"order_index" db:"order_index"`

	// IsMasteryReview marks synthesized review lessons; never persisted
	// as part of the curriculum.
	IsMasteryReview bool `json:"is_mastery_review,omitempty" db:"-"`

	Questions []Question `json:"questions" db:"-"`
}

type Question struct {
	ID            string   `json:"id" db:"id"`
	LessonID      string   `json:"lesson_id" db:"lesson_id"`
	Text          string   `json:"text" db:"text"`
	Options       []string `json:"options" db:"-"`
	CorrectOption string   `json:"correct_option" db:"correct_option"`
	Feedback      string   `json:"feedback" db:"feedback"`
	OrderIndex    int      `json:"order_index" db:"order_index"`
}

// Validate checks the structural invariants of a question: at least two
// options, and CorrectOption equal to exactly one of them.
func (q Question) Validate() error {
	if len(q.Options) < 2 {
		return core.NewValidationError(nil, core.FieldError{
			Field: "options", Error: "a question needs at least two options",
		})
	}
	var matches int
	for _, opt := range q.Options {
		if opt == q.CorrectOption {
			matches++
		}
	}
	if matches != 1 {
		return core.NewValidationError(nil, core.FieldError{
			Field: "correct_option", Error: "correct option must match exactly one option",
		})
	}
	return nil
}
