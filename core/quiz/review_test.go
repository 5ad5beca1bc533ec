package quiz

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ispeaktu/backend/core/catalog"
)

func reviewLessons(n int, questionsPerLesson int) []catalog.Lesson {
	lessons := make([]catalog.Lesson, n)
	for i := range lessons {
		les := catalog.Lesson{ID: fmt.Sprintf("l%d", i+1)}
		for q := 0; q < questionsPerLesson; q++ {
			les.Questions = append(les.Questions, catalog.Question{
				ID:       fmt.Sprintf("l%d_q%d", i+1, q+1),
				LessonID: les.ID,
			})
		}
		lessons[i] = les
	}
	return lessons
}

func Test_GenerateReview(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	lessons := reviewLessons(20, 3)
	review, err := GenerateReview(lessons, 10, rng)
	assert.NoError(t, err)

	assert.Equal(t, "mastery_review_10", review.ID)
	assert.True(t, review.IsMasteryReview)
	assert.Equal(t, "Mastery Review: Lessons 1 to 10", review.Title)
	// two draws for each of the 10 block lessons, truncated to 20
	assert.Len(t, review.Questions, 20)

	// every drawn question comes from the sampled block [0, 10)
	blockIDs := make(map[string]bool)
	for _, les := range lessons[:10] {
		blockIDs[les.ID] = true
	}
	for _, q := range review.Questions {
		assert.True(t, blockIDs[q.LessonID], "question %s drawn outside the block", q.ID)
	}
}

func Test_GenerateReview_secondBlock(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	review, err := GenerateReview(reviewLessons(20, 3), 20, rng)
	assert.NoError(t, err)

	assert.Equal(t, "mastery_review_20", review.ID)
	assert.Equal(t, "Mastery Review: Lessons 11 to 20", review.Title)
	for _, q := range review.Questions {
		// block [10, 20) only
		assert.NotContains(t, []string{"l1", "l5", "l10"}, q.LessonID)
	}
}

func Test_GenerateReview_shortBlock(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	// milestone clamped to the lesson count; 2 draws per non-empty lesson
	review, err := GenerateReview(reviewLessons(4, 2), 10, rng)
	assert.NoError(t, err)
	assert.Equal(t, "mastery_review_4", review.ID)
	assert.Len(t, review.Questions, 8)
}

func Test_GenerateReview_emptyLessonsSkipped(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	lessons := reviewLessons(3, 2)
	lessons[1].Questions = nil

	review, err := GenerateReview(lessons, 3, rng)
	assert.NoError(t, err)
	assert.Len(t, review.Questions, 4)
	for _, q := range review.Questions {
		assert.NotEqual(t, "l2", q.LessonID)
	}
}

func Test_GenerateReview_noQuestions(t *testing.T) {
	_, err := GenerateReview(nil, 10, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrNoReviewQuestions)

	lessons := reviewLessons(3, 0)
	_, err = GenerateReview(lessons, 3, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrNoReviewQuestions)
}

func Test_GenerateReview_deterministicWithSeed(t *testing.T) {
	lessons := reviewLessons(10, 5)

	a, err := GenerateReview(lessons, 10, rand.New(rand.NewSource(99)))
	assert.NoError(t, err)
	b, err := GenerateReview(lessons, 10, rand.New(rand.NewSource(99)))
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}
