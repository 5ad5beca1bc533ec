package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_TierFor(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{0, "Beginner"},
		{39, "Beginner"},
		{40, "Elementary"},
		{54, "Elementary"},
		{55, "Intermediate"},
		{69, "Intermediate"},
		{70, "Advanced"},
		{84, "Advanced"},
		{85, "Proficient"},
		{100, "Proficient"},
	}
	for _, tt := range tests {
		tier, err := TierFor(tt.percent)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, tier.Name, "percent %d", tt.percent)
	}

	_, err := TierFor(-1)
	assert.ErrorIs(t, err, ErrPercentOutOfRange)
	_, err = TierFor(101)
	assert.ErrorIs(t, err, ErrPercentOutOfRange)
}

func Test_Tiers_partition(t *testing.T) {
	// contiguous and non-overlapping over [0,100]
	all := Tiers()
	assert.Equal(t, 0, all[0].Lo)
	assert.Equal(t, 100, all[len(all)-1].Hi)
	for i := 1; i < len(all); i++ {
		assert.Equal(t, all[i-1].Hi+1, all[i].Lo)
	}
}
