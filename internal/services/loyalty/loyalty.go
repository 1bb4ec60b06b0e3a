// Package loyalty derives a user's reward tier from their completed bookings.
//
// Tiers are ordered by MinBookings; a user sits in the highest tier whose
// threshold their completed booking count reaches.
package loyalty

import (
	"fmt"
	"math"

	"sharedspace/internal/models"
)

var tiers = []models.LoyaltyTier{
	{ID: "bronze", Name: "Bronze", MinBookings: 0, RewardTokens: 0, DiscountPercentage: 0, Color: "bg-amber-500", Icon: "🥉"},
	{ID: "silver", Name: "Silver", MinBookings: 3, RewardTokens: 5, DiscountPercentage: 5, Color: "bg-gray-400", Icon: "🥈"},
	{ID: "gold", Name: "Gold", MinBookings: 7, RewardTokens: 15, DiscountPercentage: 10, Color: "bg-yellow-500", Icon: "🥇"},
	{ID: "platinum", Name: "Platinum", MinBookings: 15, RewardTokens: 30, DiscountPercentage: 15, Color: "bg-purple-500", Icon: "💎"},
	{ID: "diamond", Name: "Diamond", MinBookings: 30, RewardTokens: 50, DiscountPercentage: 20, Color: "bg-blue-500", Icon: "💎"},
}

// Tiers returns a copy of the tier table.
func Tiers() []models.LoyaltyTier {
	out := make([]models.LoyaltyTier, len(tiers))
	copy(out, tiers)
	return out
}

// TierFor returns the tier reached with the given number of completed bookings.
func TierFor(completed int) models.LoyaltyTier {
	current := tiers[0]
	for _, t := range tiers {
		if completed >= t.MinBookings {
			current = t
		}
	}
	return current
}

// NextTier returns the first tier not reached yet, or nil at the top.
func NextTier(completed int) *models.LoyaltyTier {
	for _, t := range tiers {
		if t.MinBookings > completed {
			next := t
			return &next
		}
	}
	return nil
}

func completedOnly(history []models.BookingHistory) []models.BookingHistory {
	out := make([]models.BookingHistory, 0, len(history))
	for _, b := range history {
		if b.Status == models.PaymentCompleted {
			out = append(out, b)
		}
	}
	return out
}

func CalculateProgress(history []models.BookingHistory) models.LoyaltyProgress {
	completed := completedOnly(history)
	count := len(completed)

	var earned, used int
	for _, b := range completed {
		earned += b.LoyaltyTokensEarned
		used += b.LoyaltyTokensUsed
	}

	current := TierFor(count)
	next := NextTier(count)

	return models.LoyaltyProgress{
		CurrentBookings:       count,
		CurrentTier:           current,
		NextTier:              next,
		ProgressToNextTier:    progress(count, current, next),
		TotalRewardTokens:     earned,
		AvailableRewardTokens: earned - used,
		UsedRewardTokens:      used,
	}
}

func progress(count int, current models.LoyaltyTier, next *models.LoyaltyTier) float64 {
	if next == nil {
		return 0
	}
	done := float64(count - current.MinBookings)
	needed := float64(next.MinBookings - current.MinBookings)
	return math.Min(done/needed*100, 100)
}

// NextTierProgress reports how far the user is from the next tier, nil at the top tier.
func NextTierProgress(p models.LoyaltyProgress) *models.TierProgress {
	if p.NextTier == nil {
		return nil
	}
	return &models.TierProgress{
		Current:    p.CurrentBookings,
		Required:   p.NextTier.MinBookings,
		Remaining:  p.NextTier.MinBookings - p.CurrentBookings,
		Percentage: progress(p.CurrentBookings, p.CurrentTier, p.NextTier),
	}
}

func CanRedeemTokens(p models.LoyaltyProgress) bool {
	return p.AvailableRewardTokens >= p.CurrentTier.RewardTokens
}

// TokensForHistory is the reward a new booking earns given the user's history so far.
func TokensForHistory(history []models.BookingHistory) int {
	return TierFor(len(completedOnly(history))).RewardTokens
}

func RewardDescription(t models.LoyaltyTier) string {
	return describe(t, "IOTA")
}

// describe words a tier's perks in the given token unit.
func describe(t models.LoyaltyTier, unit string) string {
	if t.ID == "bronze" {
		return "Start booking to earn rewards!"
	}
	return fmt.Sprintf("Earn %d %s tokens per booking and get %d%% discount on future bookings.", t.RewardTokens, unit, t.DiscountPercentage)
}

// TierBenefits describes the perks of a tier in SHRD, the platform reward token.
func TierBenefits(tierID string) models.TierBenefits {
	for _, t := range tiers {
		if t.ID == tierID {
			return models.TierBenefits{
				TokensPerBooking:   t.RewardTokens,
				DiscountPercentage: t.DiscountPercentage,
				Description:        describe(t, "SHRD"),
			}
		}
	}
	return models.TierBenefits{Description: "No benefits available."}
}

func FormatTokens(tokens int) string {
	return fmt.Sprintf("%d IOTA", tokens)
}
