package progress

import (
	"math"
	"sort"

	"github.com/ispeaktu/backend/core/catalog"
)

// MaterialCompletion computes the student's completion percentage for a
// material: verified distinct lessons over the material's lesson count,
// rounded. Completion is defined by teacher verification, not raw score.
// A material with no lessons is 0% complete.
func MaterialCompletion(mat catalog.Material, records []Record, studentID string) int {
	if len(mat.Lessons) == 0 {
		return 0
	}

	lessonIDs := make(map[string]struct{}, len(mat.Lessons))
	for _, les := range mat.Lessons {
		lessonIDs[les.ID] = struct{}{}
	}

	done := make(map[string]struct{})
	for _, r := range records {
		if r.Malformed() || r.IsMasteryReview {
			continue
		}
		if r.StudentID != studentID || r.MaterialID != mat.ID || !r.Verified {
			continue
		}
		if _, ok := lessonIDs[r.LessonID]; ok {
			done[r.LessonID] = struct{}{}
		}
	}
	return int(math.Round(100 * float64(len(done)) / float64(len(mat.Lessons))))
}

// AverageScore is the mean of score/total over all of the student's records,
// as a rounded percentage. 0 if the student has no records.
func AverageScore(records []Record, studentID string) int {
	var sum float64
	var n int
	for _, r := range records {
		if r.Malformed() || r.StudentID != studentID {
			continue
		}
		sum += r.Ratio()
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(100 * sum / float64(n)))
}

// TotalQuizzesTaken counts the student's verified records. Ids are
// deterministic per lesson, so this is the count of distinct verified
// lessons, not of historical attempts.
func TotalQuizzesTaken(records []Record, studentID string) int {
	var n int
	for _, r := range records {
		if r.Malformed() || r.StudentID != studentID || !r.Verified {
			continue
		}
		n++
	}
	return n
}

// LeaderboardRank ranks students by count of distinct verified lessons,
// descending, using competition ranking (ties share a rank, the next
// distinct count skips past them). Ties are deterministic: stable order by
// student id. A student absent from the verified set ranks last at
// totalStudents+1.
func LeaderboardRank(records []Record, studentID string) (rank, totalStudents int) {
	verified := make(map[string]map[string]struct{})
	for _, r := range records {
		if r.Malformed() || r.IsMasteryReview || !r.Verified {
			continue
		}
		lessons, ok := verified[r.StudentID]
		if !ok {
			lessons = make(map[string]struct{})
			verified[r.StudentID] = lessons
		}
		lessons[r.LessonID] = struct{}{}
	}

	type entry struct {
		studentID string
		lessons   int
	}
	entries := make([]entry, 0, len(verified))
	for sid, lessons := range verified {
		entries = append(entries, entry{studentID: sid, lessons: len(lessons)})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].lessons != entries[j].lessons {
			return entries[i].lessons > entries[j].lessons
		}
		return entries[i].studentID < entries[j].studentID
	})

	totalStudents = len(entries)
	for i, e := range entries {
		if e.studentID != studentID {
			continue
		}
		rank = 1
		for j := 0; j < i; j++ {
			if entries[j].lessons > e.lessons {
				rank++
			}
		}
		return rank, totalStudents
	}
	return totalStudents + 1, totalStudents
}
