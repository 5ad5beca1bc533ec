package reminder

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/ispeaktu/backend/core"
)

var ErrNotFound = errors.New("reminder not found")

type (
	// Filter applies AND semantics on its non-zero fields.
	Filter struct {
		StudentID  string
		LessonID   string
		SentBefore time.Time
	}

	Repository interface {
		QueryAllReminders(ctx context.Context) ([]Reminder, error)
		FilterReminders(ctx context.Context, filter Filter) ([]Reminder, error)
		// UpsertReminder overwrites any reminder for the same (student, lesson).
		UpsertReminder(ctx context.Context, rem Reminder) error
		DeleteReminder(ctx context.Context, studentID, lessonID string) error
	}

	Service struct {
		repo  Repository
		mail  core.EmailService // optional
		cache core.CacheStore   // optional
		log   core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, cache core.CacheStore, log core.Logger) *Service {
	return &Service{repo: repo, mail: mailSvc, cache: cache, log: log}
}

// Send upserts a reminder for the (student, lesson) pair and, when the
// student has an email address, sends a notification.
func (svc *Service) Send(ctx context.Context, rem Reminder, lessonTitle, studentEmail string) (Reminder, error) {
	if err := rem.Validate(); err != nil {
		return Reminder{}, err
	}
	rem.ID = ReminderID(rem.StudentID, rem.LessonID)
	rem.SentAt = time.Now().UTC()

	if err := svc.repo.UpsertReminder(ctx, rem); err != nil {
		return Reminder{}, err
	}
	svc.refreshCache(ctx)

	if svc.mail != nil && studentEmail != "" {
		svc.mail.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Address: studentEmail}},
			Subject: "A lesson is waiting for you",
			Body:    fmt.Sprintf("Your teacher asked you to complete the lesson %q. Log in and take the quiz when you are ready.", lessonTitle),
		})
	}
	return rem, nil
}

// Cancel removes a reminder explicitly, on the teacher's request.
func (svc *Service) Cancel(ctx context.Context, studentID, lessonID string) error {
	if err := svc.repo.DeleteReminder(ctx, studentID, lessonID); err != nil {
		return err
	}
	svc.refreshCache(ctx)
	return nil
}

// ClearForLesson removes the reminder when the student starts the
// corresponding quiz. A missing reminder is not an error.
func (svc *Service) ClearForLesson(ctx context.Context, studentID, lessonID string) error {
	err := svc.repo.DeleteReminder(ctx, studentID, lessonID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	svc.refreshCache(ctx)
	return nil
}

// ForStudent returns the student's pending reminders, degrading to the
// cached snapshot (or none) when the store is unreachable.
func (svc *Service) ForStudent(ctx context.Context, studentID string) ([]Reminder, error) {
	rems, err := svc.repo.FilterReminders(ctx, Filter{StudentID: studentID})
	if err != nil {
		if core.IsDataUnavailable(err) {
			svc.log.Warn("reminders fetch failed, falling back to cache", err)
			if svc.cache != nil {
				var cached []Reminder
				if cErr := svc.cache.Get(core.CacheKeyReminders, &cached); cErr == nil {
					return filterStudent(cached, studentID), nil
				}
			}
			return []Reminder{}, nil
		}
		return nil, err
	}
	return rems, nil
}

// PendingOlderThan lists reminders that have been pending for at least the
// given age; the digest job uses it to re-nudge students.
func (svc *Service) PendingOlderThan(ctx context.Context, age time.Duration) ([]Reminder, error) {
	return svc.repo.FilterReminders(ctx, Filter{SentBefore: time.Now().UTC().Add(-age)})
}

func (svc *Service) refreshCache(ctx context.Context) {
	if svc.cache == nil {
		return
	}
	rems, err := svc.repo.QueryAllReminders(ctx)
	if err != nil {
		return
	}
	if err := svc.cache.Put(core.CacheKeyReminders, rems); err != nil {
		svc.log.Warn("reminders cache refresh failed", err)
	}
}

func filterStudent(rems []Reminder, studentID string) []Reminder {
	out := make([]Reminder, 0, len(rems))
	for _, r := range rems {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out
}
