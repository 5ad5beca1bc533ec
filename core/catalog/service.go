package catalog

import (
	"context"
	"errors"

	"github.com/ispeaktu/backend/core"
)

var ErrNotFound = errors.New("material not found")

type (
	Repository interface {
		// QueryCurriculum returns all materials with their nested lessons
		// and questions, in fetch order.
		QueryCurriculum(ctx context.Context) ([]Material, error)
		GetMaterial(ctx context.Context, id string) (Material, error)
		UpsertMaterial(ctx context.Context, mat Material) error
		UpsertLesson(ctx context.Context, les Lesson) error
		UpsertQuestion(ctx context.Context, q Question) error
	}

	Service struct {
		repo  Repository
		cache core.CacheStore // optional
		log   core.Logger
	}
)

func NewService(repo Repository, cache core.CacheStore, log core.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// Query returns the normalized curriculum. When the remote store is
// unreachable it falls back to the last cached snapshot, or to an empty
// curriculum; it never hard-fails on unavailability.
func (svc *Service) Query(ctx context.Context) ([]Material, error) {
	mats, err := svc.repo.QueryCurriculum(ctx)
	if err != nil {
		if core.IsDataUnavailable(err) {
			svc.log.Warn("curriculum fetch failed, falling back to cache", err)
			if svc.cache != nil {
				var cached []Material
				if cErr := svc.cache.Get(core.CacheKeyCurriculum, &cached); cErr == nil {
					return Normalize(cached), nil
				}
			}
			return []Material{}, nil
		}
		return nil, err
	}

	mats = Normalize(mats)
	AssignOrder(mats)

	if svc.cache != nil {
		if cErr := svc.cache.Put(core.CacheKeyCurriculum, mats); cErr != nil {
			svc.log.Warn("curriculum cache refresh failed", cErr)
		}
	}
	return mats, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Material, error) {
	mat, err := svc.repo.GetMaterial(ctx, id)
	if err != nil {
		return Material{}, err
	}
	normalized := Normalize([]Material{mat})
	AssignOrder(normalized)
	return normalized[0], nil
}

// Import upserts an authored material with its nested lessons and questions,
// validating every question first.
func (svc *Service) Import(ctx context.Context, mat Material) error {
	for _, les := range mat.Lessons {
		for _, q := range les.Questions {
			if err := q.Validate(); err != nil {
				return err
			}
		}
	}
	if err := svc.repo.UpsertMaterial(ctx, mat); err != nil {
		return err
	}
	for _, les := range mat.Lessons {
		les.MaterialID = mat.ID
		if err := svc.repo.UpsertLesson(ctx, les); err != nil {
			return err
		}
		for _, q := range les.Questions {
			q.LessonID = les.ID
			if err := svc.repo.UpsertQuestion(ctx, q); err != nil {
				return err
			}
		}
	}
	return nil
}
