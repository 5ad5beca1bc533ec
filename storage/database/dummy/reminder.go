package dummydb

import (
	"context"

	"github.com/ispeaktu/backend/core/reminder"
)

type reminderRepository struct {
	db *reminderTable
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *DB) reminder.Repository {
	return &reminderRepository{db: db.reminder}
}

func (repo *reminderRepository) query() []reminder.Reminder {
	rems := make([]reminder.Reminder, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		rems = append(rems, *repo.db.table[id])
	}
	return rems
}

func (repo *reminderRepository) QueryAllReminders(_ context.Context) ([]reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *reminderRepository) FilterReminders(_ context.Context, filter reminder.Filter) ([]reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var rems []reminder.Reminder
	for _, rem := range repo.query() {
		if filter.StudentID != "" && rem.StudentID != filter.StudentID {
			continue
		}
		if filter.LessonID != "" && rem.LessonID != filter.LessonID {
			continue
		}
		if !filter.SentBefore.IsZero() && !rem.SentAt.Before(filter.SentBefore) {
			continue
		}
		rems = append(rems, rem)
	}
	return rems, nil
}

func (repo *reminderRepository) UpsertReminder(_ context.Context, rem reminder.Reminder) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[rem.ID]; !ok {
		repo.db.order = append(repo.db.order, rem.ID)
	}
	repo.db.table[rem.ID] = &rem
	return nil
}

func (repo *reminderRepository) DeleteReminder(_ context.Context, studentID, lessonID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	id := reminder.ReminderID(studentID, lessonID)
	if _, ok := repo.db.table[id]; !ok {
		return reminder.ErrNotFound
	}
	delete(repo.db.table, id)
	for i, oid := range repo.db.order {
		if oid == id {
			repo.db.order = append(repo.db.order[:i], repo.db.order[i+1:]...)
			break
		}
	}
	return nil
}
