package risk

import (
	"testing"

	"storefront/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestScorer_Score(t *testing.T) {
	scorer := NewScorer(DefaultThresholds())

	tests := []struct {
		name   string
		input  Input
		score  int
		level  string
		review string
		flags  []string
	}{
		{
			name:   "Signed-in customer with full contact details",
			input:  Input{Email: "ada@example.com", Phone: "0803", Amount: 50000},
			score:  0,
			level:  LevelLow,
			review: model.ReviewClear,
			flags:  []string{},
		},
		{
			name:   "Guest with high amount and no phone",
			input:  Input{Email: "ada@example.com", Phone: " ", Amount: 2000000, IsGuest: true},
			score:  70,
			level:  LevelHigh,
			review: model.ReviewQueued,
			flags:  []string{FlagGuestCheckout, FlagMissingPhone, FlagHighAmount},
		},
		{
			name:   "Guest with suspicious email reaches review threshold",
			input:  Input{Email: "ada.example.com", Phone: "0803", Amount: 1000, IsGuest: true},
			score:  40,
			level:  LevelLow,
			review: model.ReviewClear,
			flags:  []string{FlagGuestCheckout, FlagSuspiciousEmail},
		},
		{
			name:   "Amount at threshold is not high",
			input:  Input{Email: "a@b", Phone: "1", Amount: 1500000},
			score:  0,
			level:  LevelLow,
			review: model.ReviewClear,
			flags:  []string{},
		},
		{
			name:   "High amount with missing phone is medium",
			input:  Input{Email: "a@b", Amount: 1500001},
			score:  50,
			level:  LevelMedium,
			review: model.ReviewQueued,
			flags:  []string{FlagMissingPhone, FlagHighAmount},
		},
		{
			name:   "Everything fires",
			input:  Input{Email: "", Amount: 9000000, IsGuest: true},
			score:  90,
			level:  LevelHigh,
			review: model.ReviewQueued,
			flags:  []string{FlagGuestCheckout, FlagMissingPhone, FlagHighAmount, FlagSuspiciousEmail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := scorer.Score(tt.input)

			assert.Equal(t, tt.score, a.Score)
			assert.Equal(t, tt.level, a.Level)
			assert.Equal(t, tt.review, a.ManualReviewStatus)
			assert.Equal(t, tt.flags, a.Flags)
		})
	}
}

func TestScorer_ConfigurableThresholds(t *testing.T) {
	scorer := NewScorer(Thresholds{HighAmount: 100000, Review: 35})

	a := scorer.Score(Input{Email: "a@b", Amount: 100001})
	assert.Equal(t, 50, a.Score)
	assert.Equal(t, LevelMedium, a.Level)

	a = scorer.Score(Input{Email: "a@b", Phone: "1", Amount: 1, IsGuest: true})
	assert.Equal(t, LevelLow, a.Level)

	a = scorer.Score(Input{Email: "a@b", Phone: "", Amount: 1, IsGuest: true})
	assert.Equal(t, 35, a.Score)
	assert.Equal(t, LevelMedium, a.Level)
}

func TestNewScorer_Defaults(t *testing.T) {
	scorer := NewScorer(Thresholds{})

	assert.Equal(t, DefaultThresholds(), scorer.thresholds)
}
