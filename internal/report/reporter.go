package report

import (
	"context"

	"github.com/statikfintechllc/personal-pennies/internal/analytics"
	"github.com/statikfintechllc/personal-pennies/internal/journal"
)

// Reporter is one downstream artifact generator. Reporters write
// disjoint outputs, so the pipeline runs them concurrently.
type Reporter interface {
	Name() string
	Generate(ctx context.Context, res *analytics.Result, trades []journal.Trade) error
}
