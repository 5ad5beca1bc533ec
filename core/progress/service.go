package progress

import (
	"context"
	"errors"
	"time"

	"github.com/ispeaktu/backend/core"
)

var (
	ErrNotFound       = errors.New("progress record not found")
	ErrBelowThreshold = errors.New("cannot verify: score is below the 70% mastery threshold")

	errMalformedRecord = errors.New("malformed progress record")
)

type (
	// Filter applies AND semantics on its non-zero fields.
	Filter struct {
		StudentID  string
		MaterialID string
		LessonID   string
		Verified   *bool
	}

	Repository interface {
		QueryAllProgress(ctx context.Context) ([]Record, error)
		FilterProgress(ctx context.Context, filter Filter) ([]Record, error)
		GetProgress(ctx context.Context, id string) (Record, error)
		// UpsertProgress overwrites any record sharing the deterministic id.
		UpsertProgress(ctx context.Context, rec Record) error
		SetVerified(ctx context.Context, id string, verified bool) error
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

// SaveAttempt persists a completed quiz attempt, overwriting any prior record
// for the same (student, material, lesson) triple. New attempts come in
// unverified, but a previously earned verification is preserved: Verified is
// monotonic and nothing in the save path flips it back.
func (svc *Service) SaveAttempt(ctx context.Context, rec Record) (Record, error) {
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}

	rec.ID = RecordID(rec.StudentID, rec.MaterialID, rec.LessonID)
	rec.IsMasteryReview = IsMasteryReviewLessonID(rec.LessonID)
	rec.Verified = false
	rec.UpdatedAt = time.Now().UTC()

	if prev, err := svc.repo.GetProgress(ctx, rec.ID); err == nil && prev.Verified {
		rec.Verified = true
	}

	if err := svc.repo.UpsertProgress(ctx, rec); err != nil {
		return Record{}, err
	}
	svc.refreshCache(ctx)
	return rec, nil
}

// Verify marks a record as teacher-confirmed. Records scoring under the
// mastery threshold are rejected and left unchanged. Verifying an already
// verified record is a no-op.
func (svc *Service) Verify(ctx context.Context, id string) (Record, error) {
	rec, err := svc.repo.GetProgress(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if rec.Verified {
		return rec, nil
	}
	if rec.Malformed() || !rec.Passed() {
		return Record{}, ErrBelowThreshold
	}
	if err := svc.repo.SetVerified(ctx, id, true); err != nil {
		return Record{}, err
	}
	rec.Verified = true
	svc.refreshCache(ctx)
	return rec, nil
}

// QueryAll returns every progress record, degrading to the cached snapshot
// (or none) when the store is unreachable.
func (svc *Service) QueryAll(ctx context.Context) ([]Record, error) {
	recs, err := svc.repo.QueryAllProgress(ctx)
	if err != nil {
		if core.IsDataUnavailable(err) {
			svc.log.Warn("progress fetch failed, falling back to cache", err)
			if svc.cache != nil {
				var cached []Record
				if cErr := svc.cache.Get(core.CacheKeyProgress, &cached); cErr == nil {
					return cached, nil
				}
			}
			return []Record{}, nil
		}
		return nil, err
	}
	return recs, nil
}

func (svc *Service) ForStudent(ctx context.Context, studentID string) ([]Record, error) {
	return svc.repo.FilterProgress(ctx, Filter{StudentID: studentID})
}

func (svc *Service) Get(ctx context.Context, id string) (Record, error) {
	return svc.repo.GetProgress(ctx, id)
}

func (svc *Service) refreshCache(ctx context.Context) {
	if svc.cache == nil {
		return
	}
	recs, err := svc.repo.QueryAllProgress(ctx)
	if err != nil {
		return
	}
	if err := svc.cache.Put(core.CacheKeyProgress, recs); err != nil {
		svc.log.Warn("progress cache refresh failed", err)
	}
}
