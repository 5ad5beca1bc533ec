package quiz

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ispeaktu/backend/core/catalog"
	"github.com/ispeaktu/backend/core/progress"
)

var (
	// ErrInvalidTransition is returned for any session operation invoked out
	// of order. Illegal transitions are rejected strictly: the session owns
	// scoring integrity and never silently double-counts.
	ErrInvalidTransition = errors.New("invalid quiz session transition")

	// ErrEmptyLesson is returned when a session is requested for a lesson
	// with no questions.
	ErrEmptyLesson = errors.New("lesson has no questions")

	// ErrNoSelection is returned by CheckAnswer when no option is selected.
	ErrNoSelection = errors.New("no option selected")
)

const noSelection = -1

type State string

const (
	StateAnswering State = "answering"
	StateFeedback  State = "feedback"
	StateCompleted State = "completed"
)

// Feedback is the outcome of checking one answer.
type Feedback struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation"`
}

// Session drives a single quiz attempt through
// answering -> feedback -> answering ... -> completed.
// It is not safe for concurrent use; callers serialize access per attempt.
type Session struct {
	ID          string
	StudentID   string
	StudentName string
	MaterialID  string
	Lesson      catalog.Lesson
	StartedAt   time.Time

	state     State
	index     int
	selected  int
	score     int
	responses []progress.Response
}

// NewSession starts an attempt at the first question. A lesson with zero
// questions never enters the answering state.
func NewSession(studentID, studentName, materialID string, lesson catalog.Lesson) (*Session, error) {
	if len(lesson.Questions) == 0 {
		return nil, ErrEmptyLesson
	}
	return &Session{
		ID:          uuid.New().String(),
		StudentID:   studentID,
		StudentName: studentName,
		MaterialID:  materialID,
		Lesson:      lesson,
		StartedAt:   time.Now().UTC(),
		state:       StateAnswering,
		selected:    noSelection,
	}, nil
}

func (s *Session) State() State { return s.state }

// Index returns the zero-based index of the current question.
func (s *Session) Index() int { return s.index }

func (s *Session) Score() int { return s.score }

// Question returns the current question, valid until the session completes.
func (s *Session) Question() catalog.Question {
	return s.Lesson.Questions[s.index]
}

// Selected returns the pending option index, or -1 when nothing is selected.
func (s *Session) Selected() int { return s.selected }

// Select records a pending option for the current question. Legal only while
// answering, before feedback is shown; re-selection is allowed. Selecting has
// no scoring side effect.
func (s *Session) Select(optionIndex int) error {
	if s.state != StateAnswering {
		return ErrInvalidTransition
	}
	if optionIndex < 0 || optionIndex >= len(s.Question().Options) {
		return ErrInvalidTransition
	}
	s.selected = optionIndex
	return nil
}

// CheckAnswer scores the pending selection against the current question,
// appends the response and shows feedback. A second call without an
// intervening Advance is rejected, so an answer can never be counted twice.
func (s *Session) CheckAnswer() (Feedback, error) {
	if s.state != StateAnswering {
		return Feedback{}, ErrInvalidTransition
	}
	if s.selected == noSelection {
		return Feedback{}, ErrNoSelection
	}

	q := s.Question()
	selectedOption := q.Options[s.selected]
	correct := selectedOption == q.CorrectOption
	if correct {
		s.score++
	}
	s.responses = append(s.responses, progress.Response{
		QuestionIndex:  s.index,
		SelectedOption: selectedOption,
		IsCorrect:      correct,
	})
	s.state = StateFeedback

	return Feedback{
		IsCorrect:     correct,
		CorrectOption: q.CorrectOption,
		Explanation:   q.Feedback,
	}, nil
}

// Advance moves past the feedback screen: on to the next question with the
// selection cleared, or to completion after the last one. Returns true when
// the session completed.
func (s *Session) Advance() (bool, error) {
	if s.state != StateFeedback {
		return false, ErrInvalidTransition
	}
	if s.index+1 < len(s.Lesson.Questions) {
		s.index++
		s.selected = noSelection
		s.state = StateAnswering
		return false, nil
	}
	s.state = StateCompleted
	return true, nil
}

// Result builds the progress record for a completed session. The record
// comes out unverified; persisting it is the caller's business.
func (s *Session) Result() (progress.Record, error) {
	if s.state != StateCompleted {
		return progress.Record{}, ErrInvalidTransition
	}
	responses := make([]progress.Response, len(s.responses))
	copy(responses, s.responses)
	return progress.Record{
		ID:              progress.RecordID(s.StudentID, s.MaterialID, s.Lesson.ID),
		StudentID:       s.StudentID,
		StudentName:     s.StudentName,
		MaterialID:      s.MaterialID,
		LessonID:        s.Lesson.ID,
		Score:           s.score,
		Total:           len(s.Lesson.Questions),
		IsMasteryReview: s.Lesson.IsMasteryReview,
		Responses:       responses,
	}, nil
}

// Percent returns the final score percentage of a completed session.
func (s *Session) Percent() (int, error) {
	if s.state != StateCompleted {
		return 0, ErrInvalidTransition
	}
	rec := progress.Record{Score: s.score, Total: len(s.Lesson.Questions)}
	return rec.Percent(), nil
}
