// Package schedulersvc runs the periodic jobs: the reminder digest that
// re-nudges students whose reminders have been pending for too long.
package schedulersvc

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/ispeaktu/backend/core"
	"github.com/ispeaktu/backend/core/reminder"
	"github.com/ispeaktu/backend/core/user"
)

type Scheduler struct {
	scheduler   *gocron.Scheduler
	conf        *core.Config
	reminderSvc *reminder.Service
	userSvc     *user.Service
	mail        core.EmailService
	log         core.Logger
}

func New(
	conf *core.Config,
	reminderSvc *reminder.Service,
	userSvc *user.Service,
	mailSvc core.EmailService,
	log core.Logger,
) *Scheduler {
	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		conf:        conf,
		reminderSvc: reminderSvc,
		userSvc:     userSvc,
		mail:        mailSvc,
		log:         log,
	}
}

// Start registers the jobs and runs them in the background.
func (s *Scheduler) Start() {
	_, _ = s.scheduler.Every(1).Hour().Do(s.sendReminderDigests)
	s.scheduler.StartAsync()
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sendReminderDigests emails each student with reminders pending longer than
// the configured minimum age. Runs only within the configured daytime window
// so students are not nudged at night.
func (s *Scheduler) sendReminderDigests() {
	hour := time.Now().Hour()
	if hour < s.conf.Reminders.DigestStartHour || hour >= s.conf.Reminders.DigestEndHour {
		return
	}

	ctx := context.Background()
	pending, err := s.reminderSvc.PendingOlderThan(ctx, s.conf.Reminders.DigestMinAge)
	if err != nil {
		s.log.Warn("reminder digest: listing pending reminders failed", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	byStudent := make(map[string][]reminder.Reminder)
	for _, rem := range pending {
		byStudent[rem.StudentID] = append(byStudent[rem.StudentID], rem)
	}

	for studentID, rems := range byStudent {
		usr, err := s.userSvc.GetByID(ctx, studentID)
		if err != nil || usr.Email == "" {
			continue
		}
		s.mail.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject: "You have lessons waiting",
			Body: fmt.Sprintf(
				"Hi %s,\n\nYour teacher is waiting for you to complete %d lesson(s). Log in and take the quizzes when you are ready.\n",
				usr.Name, len(rems)),
		})
	}
}
