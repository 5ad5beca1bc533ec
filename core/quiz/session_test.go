package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ispeaktu/backend/core/catalog"
	"github.com/ispeaktu/backend/core/progress"
)

func testLesson() catalog.Lesson {
	return catalog.Lesson{
		ID:         "l1",
		MaterialID: "m1",
		Title:      "Greetings",
		Questions: []catalog.Question{
			{ID: "q1", Text: "hello?", Options: []string{"salut", "merci"}, CorrectOption: "salut", Feedback: "salut means hello"},
			{ID: "q2", Text: "thanks?", Options: []string{"salut", "merci"}, CorrectOption: "merci"},
		},
	}
}

func Test_NewSession_emptyLesson(t *testing.T) {
	_, err := NewSession("user_jane", "Jane", "m1", catalog.Lesson{ID: "l1"})
	assert.ErrorIs(t, err, ErrEmptyLesson)
}

func Test_Session_fullRun(t *testing.T) {
	sess, err := NewSession("user_jane", "Jane", "m1", testLesson())
	assert.NoError(t, err)
	assert.Equal(t, StateAnswering, sess.State())

	// q1: wrong answer, after changing the selection
	assert.NoError(t, sess.Select(0))
	assert.NoError(t, sess.Select(1)) // re-selection allowed
	fb, err := sess.CheckAnswer()
	assert.NoError(t, err)
	assert.False(t, fb.IsCorrect)
	assert.Equal(t, "salut", fb.CorrectOption)
	assert.Equal(t, "salut means hello", fb.Explanation)
	assert.Equal(t, StateFeedback, sess.State())

	done, err := sess.Advance()
	assert.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, sess.Index())
	assert.Equal(t, -1, sess.Selected()) // selection cleared

	// q2: correct answer
	assert.NoError(t, sess.Select(1))
	fb, err = sess.CheckAnswer()
	assert.NoError(t, err)
	assert.True(t, fb.IsCorrect)

	done, err = sess.Advance()
	assert.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, StateCompleted, sess.State())

	rec, err := sess.Result()
	assert.NoError(t, err)
	assert.Equal(t, progress.RecordID("user_jane", "m1", "l1"), rec.ID)
	assert.Equal(t, 1, rec.Score)
	assert.Equal(t, 2, rec.Total)
	assert.False(t, rec.Verified)
	assert.Len(t, rec.Responses, 2)
	assert.Equal(t, "merci", rec.Responses[0].SelectedOption)
	assert.False(t, rec.Responses[0].IsCorrect)
	assert.True(t, rec.Responses[1].IsCorrect)

	percent, err := sess.Percent()
	assert.NoError(t, err)
	assert.Equal(t, 50, percent)
}

func Test_Session_invalidTransitions(t *testing.T) {
	sess, err := NewSession("user_jane", "Jane", "m1", testLesson())
	assert.NoError(t, err)

	// no feedback to advance past
	_, err = sess.Advance()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// checking without a selection
	_, err = sess.CheckAnswer()
	assert.ErrorIs(t, err, ErrNoSelection)

	// out-of-range selection
	assert.ErrorIs(t, sess.Select(5), ErrInvalidTransition)
	assert.ErrorIs(t, sess.Select(-1), ErrInvalidTransition)

	assert.NoError(t, sess.Select(0))
	_, err = sess.CheckAnswer()
	assert.NoError(t, err)
	score := sess.Score()

	// double check never double-counts
	_, err = sess.CheckAnswer()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, score, sess.Score())

	// selecting during feedback
	assert.ErrorIs(t, sess.Select(1), ErrInvalidTransition)

	// result before completion
	_, err = sess.Result()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func Test_Session_completedIsTerminal(t *testing.T) {
	lesson := testLesson()
	lesson.Questions = lesson.Questions[:1]

	sess, err := NewSession("user_jane", "Jane", "m1", lesson)
	assert.NoError(t, err)

	assert.NoError(t, sess.Select(0))
	_, err = sess.CheckAnswer()
	assert.NoError(t, err)
	done, err := sess.Advance()
	assert.NoError(t, err)
	assert.True(t, done)

	assert.ErrorIs(t, sess.Select(0), ErrInvalidTransition)
	_, err = sess.CheckAnswer()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = sess.Advance()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
