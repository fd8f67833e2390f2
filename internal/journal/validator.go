package journal

import (
	"fmt"
)

// DefaultMaxSanePrice is the threshold above which a price draws a
// warning. Prices this high are usually a mis-parsed column, but they
// are not impossible, so the trade stays valid.
const DefaultMaxSanePrice = 10_000

// Invalid pairs a rejected trade with the reasons it was rejected.
type Invalid struct {
	Trade  Trade
	Errors []string
}

// Validator checks matched trades for field presence and sane ranges.
// Validation never fails hard: the caller receives the problem lists
// and decides what to do with them.
type Validator struct {
	MaxSanePrice float64
}

func NewValidator() *Validator {
	return &Validator{MaxSanePrice: DefaultMaxSanePrice}
}

// Validate reports whether the trade is usable, along with the field
// errors that make it unusable and any non-fatal warnings.
func (v *Validator) Validate(t Trade) (ok bool, errs, warns []string) {
	if t.Symbol == "" {
		errs = append(errs, "missing instrument symbol")
	}
	if t.EntryDate == "" {
		errs = append(errs, "missing entry date")
	}
	if t.ExitDate == "" {
		errs = append(errs, "missing exit date")
	}
	if t.Direction == "" {
		errs = append(errs, "missing direction")
	}

	if t.EntryPrice <= 0 {
		errs = append(errs, fmt.Sprintf("entry price must be positive, got %v", t.EntryPrice))
	}
	if t.ExitPrice <= 0 {
		errs = append(errs, fmt.Sprintf("exit price must be positive, got %v", t.ExitPrice))
	}
	if t.Size <= 0 {
		errs = append(errs, fmt.Sprintf("position size must be positive, got %v", t.Size))
	}

	maxPrice := v.MaxSanePrice
	if maxPrice <= 0 {
		maxPrice = DefaultMaxSanePrice
	}
	if t.EntryPrice > maxPrice {
		warns = append(warns, fmt.Sprintf("entry price %v above sanity threshold %v", t.EntryPrice, maxPrice))
	}
	if t.ExitPrice > maxPrice {
		warns = append(warns, fmt.Sprintf("exit price %v above sanity threshold %v", t.ExitPrice, maxPrice))
	}

	return len(errs) == 0, errs, warns
}

// Partition splits trades into the valid list and the invalid list with
// their reasons, collecting warnings across the whole set.
func (v *Validator) Partition(trades []Trade) (valid []Trade, invalid []Invalid, warns []string) {
	for _, t := range trades {
		ok, errs, w := v.Validate(t)
		warns = append(warns, w...)
		if ok {
			valid = append(valid, t)
			continue
		}
		invalid = append(invalid, Invalid{Trade: t, Errors: errs})
	}

	return valid, invalid, warns
}
