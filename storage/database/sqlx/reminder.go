package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ispeaktu/backend/core/reminder"
)

type reminderRepository struct {
	db *sqlx.DB
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *sqlx.DB) reminder.Repository {
	return &reminderRepository{db: db}
}

const reminderColumns = "id, student_id, lesson_id, material_id, sent_by, sent_at"

func (repo *reminderRepository) QueryAllReminders(ctx context.Context) ([]reminder.Reminder, error) {
	var rems []reminder.Reminder
	err := repo.db.SelectContext(ctx, &rems,
		fmt.Sprintf("SELECT %s FROM reminders ORDER BY sent_at", reminderColumns))
	if err != nil {
		return nil, unavailable(err, "querying reminders")
	}
	return rems, nil
}

func (repo *reminderRepository) FilterReminders(ctx context.Context, filter reminder.Filter) ([]reminder.Reminder, error) {
	query := fmt.Sprintf("SELECT %s FROM reminders WHERE 1=1", reminderColumns)
	var args []interface{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		query += fmt.Sprintf(" AND student_id = $%d", len(args))
	}
	if filter.LessonID != "" {
		args = append(args, filter.LessonID)
		query += fmt.Sprintf(" AND lesson_id = $%d", len(args))
	}
	if !filter.SentBefore.IsZero() {
		args = append(args, filter.SentBefore)
		query += fmt.Sprintf(" AND sent_at < $%d", len(args))
	}
	query += " ORDER BY sent_at"

	var rems []reminder.Reminder
	if err := repo.db.SelectContext(ctx, &rems, query, args...); err != nil {
		return nil, unavailable(err, "filtering reminders")
	}
	return rems, nil
}

func (repo *reminderRepository) UpsertReminder(ctx context.Context, rem reminder.Reminder) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO reminders (id, student_id, lesson_id, material_id, sent_by, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET material_id = EXCLUDED.material_id, sent_by = EXCLUDED.sent_by, sent_at = EXCLUDED.sent_at`,
		rem.ID, rem.StudentID, rem.LessonID, rem.MaterialID, rem.SentBy, rem.SentAt)
	if err != nil {
		return unavailable(err, "upserting reminder")
	}
	return nil
}

func (repo *reminderRepository) DeleteReminder(ctx context.Context, studentID, lessonID string) error {
	res, err := repo.db.ExecContext(ctx,
		"DELETE FROM reminders WHERE id = $1", reminder.ReminderID(studentID, lessonID))
	if err != nil {
		return unavailable(err, "deleting reminder")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return reminder.ErrNotFound
	}
	return nil
}
