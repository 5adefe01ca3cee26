package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/duesledger/internal/domain"
)

// parseAmount parses a decimal string and validates it as a posting
// amount.
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrNonPositiveAmount, s)
	}

	if err := domain.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

// minorToDecimal converts gateway minor currency units to major decimal
// units (divide by 100).
func minorToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
