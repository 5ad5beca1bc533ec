package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ispeaktu/backend/core/progress"
)

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) progress.Repository {
	return &progressRepository{db: db}
}

type progressRow struct {
	ID              string    `db:"id"`
	StudentID       string    `db:"student_id"`
	StudentName     string    `db:"student_name"`
	MaterialID      string    `db:"material_id"`
	LessonID        string    `db:"lesson_id"`
	Score           int       `db:"score"`
	Total           int       `db:"total"`
	Verified        bool      `db:"verified"`
	IsMasteryReview bool      `db:"is_mastery_review"`
	Responses       []byte    `db:"responses"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (row progressRow) toRecord() (progress.Record, error) {
	rec := progress.Record{
		ID:              row.ID,
		StudentID:       row.StudentID,
		StudentName:     row.StudentName,
		MaterialID:      row.MaterialID,
		LessonID:        row.LessonID,
		Score:           row.Score,
		Total:           row.Total,
		Verified:        row.Verified,
		IsMasteryReview: row.IsMasteryReview,
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal(row.Responses, &rec.Responses); err != nil {
		return progress.Record{}, errors.Wrapf(err, "decoding responses of record %s", row.ID)
	}
	return rec, nil
}

const progressColumns = "id, student_id, student_name, material_id, lesson_id, score, total, verified, is_mastery_review, responses, updated_at"

func (repo *progressRepository) selectRecords(ctx context.Context, query string, args ...interface{}) ([]progress.Record, error) {
	var rows []progressRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, unavailable(err, "querying progress")
	}
	recs := make([]progress.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (repo *progressRepository) QueryAllProgress(ctx context.Context) ([]progress.Record, error) {
	return repo.selectRecords(ctx,
		fmt.Sprintf("SELECT %s FROM progress ORDER BY updated_at", progressColumns))
}

func (repo *progressRepository) FilterProgress(ctx context.Context, filter progress.Filter) ([]progress.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM progress WHERE 1=1", progressColumns)
	var args []interface{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		query += fmt.Sprintf(" AND student_id = $%d", len(args))
	}
	if filter.MaterialID != "" {
		args = append(args, filter.MaterialID)
		query += fmt.Sprintf(" AND material_id = $%d", len(args))
	}
	if filter.LessonID != "" {
		args = append(args, filter.LessonID)
		query += fmt.Sprintf(" AND lesson_id = $%d", len(args))
	}
	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		query += fmt.Sprintf(" AND verified = $%d", len(args))
	}
	query += " ORDER BY updated_at"

	return repo.selectRecords(ctx, query, args...)
}

func (repo *progressRepository) GetProgress(ctx context.Context, id string) (progress.Record, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row,
		fmt.Sprintf("SELECT %s FROM progress WHERE id = $1", progressColumns), id)
	if err == sql.ErrNoRows {
		return progress.Record{}, progress.ErrNotFound
	}
	if err != nil {
		return progress.Record{}, unavailable(err, "getting progress")
	}
	return row.toRecord()
}

func (repo *progressRepository) UpsertProgress(ctx context.Context, rec progress.Record) error {
	responses, err := json.Marshal(rec.Responses)
	if err != nil {
		return errors.Wrap(err, "encoding responses")
	}
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO progress (id, student_id, student_name, material_id, lesson_id, score, total, verified, is_mastery_review, responses, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE
		 SET student_name = EXCLUDED.student_name, score = EXCLUDED.score, total = EXCLUDED.total,
		     verified = EXCLUDED.verified, is_mastery_review = EXCLUDED.is_mastery_review,
		     responses = EXCLUDED.responses, updated_at = EXCLUDED.updated_at`,
		rec.ID, rec.StudentID, rec.StudentName, rec.MaterialID, rec.LessonID,
		rec.Score, rec.Total, rec.Verified, rec.IsMasteryReview, responses, rec.UpdatedAt)
	if err != nil {
		return unavailable(err, "upserting progress")
	}
	return nil
}

func (repo *progressRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	res, err := repo.db.ExecContext(ctx,
		"UPDATE progress SET verified = $1, updated_at = $2 WHERE id = $3",
		verified, time.Now().UTC(), id)
	if err != nil {
		return unavailable(err, "setting verified")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return progress.ErrNotFound
	}
	return nil
}
