package dummydb

import (
	"context"

	"github.com/ispeaktu/backend/core/catalog"
)

type catalogRepository struct {
	db *catalogTable
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db.catalog}
}

func (repo *catalogRepository) QueryCurriculum(_ context.Context) ([]catalog.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mats := make([]catalog.Material, len(repo.db.materials))
	copy(mats, repo.db.materials)
	return mats, nil
}

func (repo *catalogRepository) GetMaterial(_ context.Context, id string) (catalog.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, mat := range repo.db.materials {
		if mat.ID == id {
			return mat, nil
		}
	}
	return catalog.Material{}, catalog.ErrNotFound
}

func (repo *catalogRepository) UpsertMaterial(_ context.Context, mat catalog.Material) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, m := range repo.db.materials {
		if m.ID == mat.ID {
			mat.Lessons = m.Lessons // nested rows are managed separately
			repo.db.materials[i] = mat
			return nil
		}
	}
	mat.Lessons = nil
	repo.db.materials = append(repo.db.materials, mat)
	return nil
}

func (repo *catalogRepository) UpsertLesson(_ context.Context, les catalog.Lesson) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for mi := range repo.db.materials {
		if repo.db.materials[mi].ID != les.MaterialID {
			continue
		}
		for li, l := range repo.db.materials[mi].Lessons {
			if l.ID == les.ID {
				les.Questions = l.Questions
				repo.db.materials[mi].Lessons[li] = les
				return nil
			}
		}
		les.Questions = nil
		repo.db.materials[mi].Lessons = append(repo.db.materials[mi].Lessons, les)
		return nil
	}
	return catalog.ErrNotFound
}

func (repo *catalogRepository) UpsertQuestion(_ context.Context, q catalog.Question) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for mi := range repo.db.materials {
		for li := range repo.db.materials[mi].Lessons {
			les := &repo.db.materials[mi].Lessons[li]
			if les.ID != q.LessonID {
				continue
			}
			for qi, existing := range les.Questions {
				if existing.ID == q.ID {
					les.Questions[qi] = q
					return nil
				}
			}
			les.Questions = append(les.Questions, q)
			return nil
		}
	}
	return catalog.ErrNotFound
}
