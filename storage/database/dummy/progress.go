package dummydb

import (
	"context"

	"github.com/ispeaktu/backend/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) query() []progress.Record {
	recs := make([]progress.Record, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		recs = append(recs, *repo.db.table[id])
	}
	return recs
}

func (repo *progressRepository) QueryAllProgress(_ context.Context) ([]progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *progressRepository) FilterProgress(_ context.Context, filter progress.Filter) ([]progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var recs []progress.Record
	for _, rec := range repo.query() {
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if filter.MaterialID != "" && rec.MaterialID != filter.MaterialID {
			continue
		}
		if filter.LessonID != "" && rec.LessonID != filter.LessonID {
			continue
		}
		if filter.Verified != nil && rec.Verified != *filter.Verified {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (repo *progressRepository) GetProgress(_ context.Context, id string) (progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		return *rec, nil
	}
	return progress.Record{}, progress.ErrNotFound
}

func (repo *progressRepository) UpsertProgress(_ context.Context, rec progress.Record) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[rec.ID]; !ok {
		repo.db.order = append(repo.db.order, rec.ID)
	}
	repo.db.table[rec.ID] = &rec
	return nil
}

func (repo *progressRepository) SetVerified(_ context.Context, id string, verified bool) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec, ok := repo.db.table[id]
	if !ok {
		return progress.ErrNotFound
	}
	rec.Verified = verified
	return nil
}
