package progress_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ispeaktu/backend/core/progress"
	dummydb "github.com/ispeaktu/backend/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) *progress.Service {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}
	return progress.NewService(dummydb.NewProgressRepository(db), nil, nopLogger{})
}

func attempt(score, total int) progress.Record {
	return progress.Record{
		StudentID:   "user_jane_doe",
		StudentName: "Jane Doe",
		MaterialID:  "m1",
		LessonID:    "l1",
		Score:       score,
		Total:       total,
	}
}

func Test_Service_SaveAttempt(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	rec, err := svc.SaveAttempt(ctx, attempt(8, 10))
	assert.NoError(t, err)
	assert.Equal(t, "user_jane_doe_m1_l1", rec.ID)
	assert.False(t, rec.Verified)
	assert.False(t, rec.IsMasteryReview)
	assert.False(t, rec.UpdatedAt.IsZero())

	// re-submission overwrites, never duplicates
	rec, err = svc.SaveAttempt(ctx, attempt(5, 10))
	assert.NoError(t, err)
	assert.Equal(t, "user_jane_doe_m1_l1", rec.ID)

	all, err := svc.QueryAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 5, all[0].Score)
}

func Test_Service_SaveAttempt_rejectsMalformed(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rec  progress.Record
	}{
		{name: "zero total", rec: attempt(0, 0)},
		{name: "negative score", rec: attempt(-1, 10)},
		{name: "score over total", rec: attempt(11, 10)},
		{name: "missing student", rec: progress.Record{LessonID: "l1", Score: 1, Total: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveAttempt(ctx, tt.rec)
			assert.Error(t, err)
		})
	}

	all, err := svc.QueryAll(ctx)
	assert.NoError(t, err)
	assert.Empty(t, all)
}

func Test_Service_SaveAttempt_masteryReview(t *testing.T) {
	svc := setup(t)

	rec := attempt(9, 10)
	rec.LessonID = "mastery_review_10"
	saved, err := svc.SaveAttempt(context.Background(), rec)
	assert.NoError(t, err)
	assert.True(t, saved.IsMasteryReview)
}

func Test_Service_Verify(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	saved, err := svc.SaveAttempt(ctx, attempt(7, 10))
	assert.NoError(t, err)

	rec, err := svc.Verify(ctx, saved.ID)
	assert.NoError(t, err)
	assert.True(t, rec.Verified)

	// verifying twice is a no-op
	rec, err = svc.Verify(ctx, saved.ID)
	assert.NoError(t, err)
	assert.True(t, rec.Verified)

	_, err = svc.Verify(ctx, "user_ghost_m1_l1")
	assert.ErrorIs(t, err, progress.ErrNotFound)
}

func Test_Service_Verify_belowThreshold(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	saved, err := svc.SaveAttempt(ctx, attempt(6, 10))
	assert.NoError(t, err)

	_, err = svc.Verify(ctx, saved.ID)
	assert.ErrorIs(t, err, progress.ErrBelowThreshold)

	// record left unchanged
	rec, err := svc.Get(ctx, saved.ID)
	assert.NoError(t, err)
	assert.False(t, rec.Verified)
}

func Test_Service_verifiedSurvivesResubmission(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	saved, err := svc.SaveAttempt(ctx, attempt(8, 10))
	assert.NoError(t, err)
	_, err = svc.Verify(ctx, saved.ID)
	assert.NoError(t, err)

	// a later attempt overwrites the score but keeps the earned verification
	rec, err := svc.SaveAttempt(ctx, attempt(4, 10))
	assert.NoError(t, err)
	assert.True(t, rec.Verified)
	assert.Equal(t, 4, rec.Score)
}

func Test_Service_ForStudent(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.SaveAttempt(ctx, attempt(8, 10))
	assert.NoError(t, err)
	other := attempt(5, 10)
	other.StudentID = "user_john"
	_, err = svc.SaveAttempt(ctx, other)
	assert.NoError(t, err)

	recs, err := svc.ForStudent(ctx, "user_jane_doe")
	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, "user_jane_doe", recs[0].StudentID)
}
