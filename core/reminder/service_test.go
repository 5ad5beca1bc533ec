package reminder_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ispeaktu/backend/core"
	"github.com/ispeaktu/backend/core/reminder"
	emailsvc "github.com/ispeaktu/backend/services/email"
	dummydb "github.com/ispeaktu/backend/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) *reminder.Service {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}
	emailsvc.ClearSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(core.NewConfig())
	return reminder.NewService(dummydb.NewReminderRepository(db), mailSvc, nil, nopLogger{})
}

func testReminder() reminder.Reminder {
	return reminder.Reminder{
		StudentID:  "user_jane_doe",
		LessonID:   "l1",
		MaterialID: "m1",
		SentBy:     "user_mr_smith",
	}
}

func Test_Service_Send(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	rem, err := svc.Send(ctx, testReminder(), "Greetings", "jane@example.test")
	assert.NoError(t, err)
	assert.Equal(t, "user_jane_doe_l1", rem.ID)
	assert.False(t, rem.SentAt.IsZero())

	// one active reminder per (student, lesson): re-sending overwrites
	rem2, err := svc.Send(ctx, testReminder(), "Greetings", "")
	assert.NoError(t, err)
	assert.Equal(t, rem.ID, rem2.ID)

	rems, err := svc.ForStudent(ctx, "user_jane_doe")
	assert.NoError(t, err)
	assert.Len(t, rems, 1)

	// one notification, for the send that had an address
	assert.Len(t, emailsvc.SentMessages, 1)
	assert.Contains(t, emailsvc.SentMessages[0].Body, "Greetings")
}

func Test_Service_Send_invalid(t *testing.T) {
	svc := setup(t)

	rem := testReminder()
	rem.LessonID = ""
	_, err := svc.Send(context.Background(), rem, "", "")
	assert.Error(t, err)
}

func Test_Service_Cancel(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, testReminder(), "", "")
	assert.NoError(t, err)

	assert.NoError(t, svc.Cancel(ctx, "user_jane_doe", "l1"))
	assert.ErrorIs(t, svc.Cancel(ctx, "user_jane_doe", "l1"), reminder.ErrNotFound)
}

func Test_Service_ClearForLesson(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, testReminder(), "", "")
	assert.NoError(t, err)

	assert.NoError(t, svc.ClearForLesson(ctx, "user_jane_doe", "l1"))
	// clearing an absent reminder is not an error
	assert.NoError(t, svc.ClearForLesson(ctx, "user_jane_doe", "l1"))

	rems, err := svc.ForStudent(ctx, "user_jane_doe")
	assert.NoError(t, err)
	assert.Empty(t, rems)
}

func Test_Service_PendingOlderThan(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, testReminder(), "", "")
	assert.NoError(t, err)

	pending, err := svc.PendingOlderThan(ctx, time.Hour)
	assert.NoError(t, err)
	assert.Empty(t, pending)

	pending, err = svc.PendingOlderThan(ctx, -time.Minute)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
}
