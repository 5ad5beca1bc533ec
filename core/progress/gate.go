package progress

// BlockSize is the number of lessons gated behind each mastery review.
const BlockSize = 10

// Lock reasons surfaced to the student.
const (
	LockReasonReviewRequired  = "Mastery Review Required"
	LockReasonReviewNotPassed = "Mastery Review Not Passed"
)

// LockStatus is the derived gate state for one lesson position. It is never
// persisted; it is recomputed from progress data on every evaluation.
type LockStatus struct {
	Locked bool   `json:"locked"`
	Reason string `json:"reason,omitempty"`
}

// BlockStart returns the start index of the 10-lesson block containing the
// given zero-based lesson index.
func BlockStart(lessonIndex int) int {
	return (lessonIndex / BlockSize) * BlockSize
}

// IsMilestone reports whether the lesson at zero-based index i closes a
// block, making the next block's mastery review available.
func IsMilestone(i int) bool {
	return (i+1)%BlockSize == 0
}

// LessonLock derives the gate state for the lesson at the given sequence
// index. The first block is never gated; later blocks require a passed
// mastery review for their own block boundary. Only the previous block's
// review record is consulted, never records beyond it.
func LessonLock(lessonIndex int, studentID string, records []Record) LockStatus {
	block := BlockStart(lessonIndex)
	if block == 0 {
		return LockStatus{}
	}

	reviewID := MasteryReviewLessonID(block)
	for _, r := range records {
		if r.StudentID != studentID || r.LessonID != reviewID || r.Malformed() {
			continue
		}
		if r.Passed() {
			return LockStatus{}
		}
		return LockStatus{Locked: true, Reason: LockReasonReviewNotPassed}
	}
	return LockStatus{Locked: true, Reason: LockReasonReviewRequired}
}
