package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ispeaktu/backend/core/catalog"
	"github.com/ispeaktu/backend/core/progress"
)

// Review sizing.
const (
	MaxReviewQuestions = 20
	drawsPerLesson     = 2
)

var ErrNoReviewQuestions = errors.New("no questions available for review")

// GenerateReview synthesizes a mastery-review quiz for the block preceding
// the given milestone index: lessons in [max(0, m-10), m), up to two uniform
// draws with replacement per non-empty lesson (duplicates within a lesson are
// accepted), concatenated in lesson order and truncated to 20 questions.
//
// The sampling is intentionally non-deterministic so reviews stay
// unpredictable across attempts; pass a seeded *rand.Rand to make it
// reproducible in tests, or nil for an entropy-seeded source.
func GenerateReview(lessons []catalog.Lesson, milestone int, rng *rand.Rand) (catalog.Lesson, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if milestone > len(lessons) {
		milestone = len(lessons)
	}
	blockStart := milestone - progress.BlockSize
	if blockStart < 0 {
		blockStart = 0
	}
	if milestone <= blockStart {
		return catalog.Lesson{}, ErrNoReviewQuestions
	}

	var questions []catalog.Question
	for _, les := range lessons[blockStart:milestone] {
		if len(les.Questions) == 0 {
			continue
		}
		for d := 0; d < drawsPerLesson && len(questions) < MaxReviewQuestions; d++ {
			questions = append(questions, les.Questions[rng.Intn(len(les.Questions))])
		}
	}
	if len(questions) == 0 {
		return catalog.Lesson{}, ErrNoReviewQuestions
	}

	return catalog.Lesson{
		ID:              progress.MasteryReviewLessonID(milestone),
		Title:           fmt.Sprintf("Mastery Review: Lessons %d to %d", blockStart+1, milestone),
		IsMasteryReview: true,
		Questions:       questions,
	}, nil
}
