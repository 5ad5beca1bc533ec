package quiz

import "errors"

var ErrPercentOutOfRange = errors.New("percent out of range")

// Tier is one band of the final-score feedback partition. Ranges are
// inclusive, contiguous and non-overlapping over [0,100], so exactly one
// tier matches any integer percentage.
type Tier struct {
	Name    string `json:"name"`
	Lo      int    `json:"lo"`
	Hi      int    `json:"hi"`
	Message string `json:"message"`
}

var tiers = []Tier{
	{Name: "Beginner", Lo: 0, Hi: 39, Message: "Keep going! Review the lesson and try again."},
	{Name: "Elementary", Lo: 40, Hi: 54, Message: "You are making progress. A retake will lock it in."},
	{Name: "Intermediate", Lo: 55, Hi: 69, Message: "Almost there. One more push to reach mastery."},
	{Name: "Advanced", Lo: 70, Hi: 84, Message: "Great work! This lesson is ready for verification."},
	{Name: "Proficient", Lo: 85, Hi: 100, Message: "Outstanding! You have mastered this lesson."},
}

// Tiers returns the full partition in ascending order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// TierFor selects the tier containing the given integer percentage.
func TierFor(percent int) (Tier, error) {
	for _, t := range tiers {
		if percent >= t.Lo && percent <= t.Hi {
			return t, nil
		}
	}
	return Tier{}, ErrPercentOutOfRange
}
