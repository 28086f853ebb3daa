package service

import (
	"context"
	"time"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RevenueComparison is the two-window revenue picture for one variant.
// HasSufficientData is false when either window summed to zero — that means
// "no comparable history yet", not a 100% drop, and the decision function
// treats it as the one-time bootstrap case.
type RevenueComparison struct {
	CurrentRevenue    decimal.Decimal
	PreviousRevenue   decimal.Decimal
	ChangePercent     decimal.Decimal
	HasSufficientData bool
}

// RevenueService computes the trailing two-window revenue comparison.
type RevenueService interface {
	Compare(ctx context.Context, variantID uuid.UUID, periodHours int, now time.Time) (*RevenueComparison, error)
}

type revenueService struct {
	repo repository.RevenueRepository
}

func NewRevenueService(repo repository.RevenueRepository) RevenueService {
	return &revenueService{repo: repo}
}

var hundred = decimal.NewFromInt(100)

func (s *revenueService) Compare(ctx context.Context, variantID uuid.UUID, periodHours int, now time.Time) (*RevenueComparison, error) {
	period := time.Duration(periodHours) * time.Hour
	windowStart := now.Add(-period)
	prevStart := now.Add(-2 * period)

	current, err := s.repo.SumRange(ctx, variantID, windowStart, now)
	if err != nil {
		return nil, err
	}
	previous, err := s.repo.SumRange(ctx, variantID, prevStart, windowStart)
	if err != nil {
		return nil, err
	}

	cmp := &RevenueComparison{
		CurrentRevenue:  current,
		PreviousRevenue: previous,
	}
	if current.IsZero() || previous.IsZero() {
		return cmp, nil
	}

	cmp.HasSufficientData = true
	cmp.ChangePercent = current.Sub(previous).Div(previous).Mul(hundred).Round(2)
	return cmp, nil
}
