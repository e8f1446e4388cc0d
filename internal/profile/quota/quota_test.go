package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxSecondary(t *testing.T) {
	cases := []struct {
		tier string
		want int
	}{
		{"basic", 5},
		{"premium", 10},
		{"enterprise", 20},
		{"PREMIUM", 10},
		{" Enterprise ", 20},
		{"", 5},
		{"platinum", 5},
	}
	for _, tc := range cases {
		t.Run(tc.tier, func(t *testing.T) {
			assert.Equal(t, tc.want, MaxSecondary(tc.tier))
		})
	}
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, 5, Remaining("basic", 0))
	assert.Equal(t, 1, Remaining("premium", 9))
	assert.Equal(t, 0, Remaining("basic", 7))
	assert.True(t, Exhausted("basic", 5))
	assert.False(t, Exhausted("enterprise", 19))
}
