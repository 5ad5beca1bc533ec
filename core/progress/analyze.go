package progress

import (
	"sort"

	"github.com/ispeaktu/backend/core/catalog"
)

// LessonFailure is one row of the teacher-facing failure report.
type LessonFailure struct {
	LessonID       string  `json:"lesson_id"`
	Name           string  `json:"name"`
	MaterialName   string  `json:"material_name"`
	FailureRate    float64 `json:"failure_rate"`
	TotalAttempts  int     `json:"total_attempts"`
	FailedAttempts int     `json:"failed_attempts"`
}

// FailureRates computes per-lesson historical failure rates across all
// students, excluding mastery-review and malformed records. An attempt fails
// when it scores under the mastery threshold. Lessons with zero attempts are
// omitted. The report is sorted by failure rate descending, lesson id
// ascending on ties. Read-only: progress data is never mutated.
func FailureRates(records []Record, materials []catalog.Material) []LessonFailure {
	titles := make(map[string]LessonFailure)
	for _, mat := range materials {
		for _, les := range mat.Lessons {
			titles[les.ID] = LessonFailure{
				LessonID:     les.ID,
				Name:         les.Title,
				MaterialName: mat.Name,
			}
		}
	}

	counts := make(map[string]*LessonFailure)
	for _, r := range records {
		if r.Malformed() || r.IsMasteryReview || IsMasteryReviewLessonID(r.LessonID) {
			continue
		}
		row, ok := counts[r.LessonID]
		if !ok {
			base := titles[r.LessonID]
			base.LessonID = r.LessonID
			row = &base
			counts[r.LessonID] = row
		}
		row.TotalAttempts++
		if !r.Passed() {
			row.FailedAttempts++
		}
	}

	report := make([]LessonFailure, 0, len(counts))
	for _, row := range counts {
		row.FailureRate = float64(row.FailedAttempts) / float64(row.TotalAttempts)
		report = append(report, *row)
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].FailureRate != report[j].FailureRate {
			return report[i].FailureRate > report[j].FailureRate
		}
		return report[i].LessonID < report[j].LessonID
	})
	return report
}
