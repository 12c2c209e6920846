// Package risk scores checkouts for manual review.
package risk

import (
	"strings"

	"storefront/internal/model"
)

// Risk levels.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Flags raised by the heuristics.
const (
	FlagGuestCheckout   = "guest_checkout"
	FlagMissingPhone    = "missing_phone"
	FlagHighAmount      = "high_amount"
	FlagSuspiciousEmail = "suspicious_email"
)

const (
	pointsGuest           = 20
	pointsMissingPhone    = 15
	pointsHighAmount      = 35
	pointsSuspiciousEmail = 20

	highLevelScore = 70
)

// Input is the order metadata scored at checkout.
type Input struct {
	Email   string
	Phone   string
	Amount  int64
	IsGuest bool
}

// Assessment is the scorer's verdict.
type Assessment struct {
	Score              int      `json:"score"`
	Level              string   `json:"level"`
	Flags              []string `json:"flags"`
	ManualReviewStatus string   `json:"manualReviewStatus"`
}

// Thresholds configure the scorer.
type Thresholds struct {
	HighAmount int64
	Review     int
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{HighAmount: 1500000, Review: 45}
}

// Scorer applies additive heuristics. It is safe for concurrent use.
type Scorer struct {
	thresholds Thresholds
}

// NewScorer creates a scorer. Non-positive thresholds fall back to the defaults.
func NewScorer(t Thresholds) *Scorer {
	def := DefaultThresholds()
	if t.HighAmount <= 0 {
		t.HighAmount = def.HighAmount
	}
	if t.Review <= 0 {
		t.Review = def.Review
	}
	return &Scorer{thresholds: t}
}

// Score evaluates in.
func (s *Scorer) Score(in Input) Assessment {
	a := Assessment{Flags: []string{}}

	if in.IsGuest {
		a.Score += pointsGuest
		a.Flags = append(a.Flags, FlagGuestCheckout)
	}
	if strings.TrimSpace(in.Phone) == "" {
		a.Score += pointsMissingPhone
		a.Flags = append(a.Flags, FlagMissingPhone)
	}
	if in.Amount > s.thresholds.HighAmount {
		a.Score += pointsHighAmount
		a.Flags = append(a.Flags, FlagHighAmount)
	}
	if !strings.Contains(in.Email, "@") {
		a.Score += pointsSuspiciousEmail
		a.Flags = append(a.Flags, FlagSuspiciousEmail)
	}

	switch {
	case a.Score >= highLevelScore:
		a.Level = LevelHigh
	case a.Score >= s.thresholds.Review:
		a.Level = LevelMedium
	default:
		a.Level = LevelLow
	}

	if a.Level == LevelLow {
		a.ManualReviewStatus = model.ReviewClear
	} else {
		a.ManualReviewStatus = model.ReviewQueued
	}
	return a
}
