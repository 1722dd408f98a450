package usecase

import (
	"context"
	"fmt"

	"github.com/oneeighty-app/oneeighty/internal/domain/dart"
)

// CheckoutSuggestion is one recommended finishing route.
type CheckoutSuggestion struct {
	Target   int
	Darts    []string
	Possible bool
}

// CheckoutService answers "how do I finish from here" queries.
type CheckoutService struct{}

func NewCheckoutService() *CheckoutService {
	return &CheckoutService{}
}

// Suggest returns the recommended combo for target. Targets outside the
// finishable window and bogey numbers come back with Possible false rather
// than an error; only nonsensical targets are rejected.
func (s *CheckoutService) Suggest(ctx context.Context, target int) (CheckoutSuggestion, error) {
	_, span := startUsecaseSpan(ctx, "CheckoutService.Suggest")
	defer span.End()

	if target < 0 {
		return CheckoutSuggestion{}, fmt.Errorf("%w: target=%d", ErrInvalidInput, target)
	}

	darts, ok := dart.Suggest(target)
	return CheckoutSuggestion{Target: target, Darts: darts, Possible: ok}, nil
}
