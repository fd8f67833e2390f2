package alpaca

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/statikfintechllc/personal-pennies/internal/config"
	"github.com/statikfintechllc/personal-pennies/internal/journal"
)

const sourceName = "alpaca"

// Client pulls executed fills straight from an Alpaca account so a
// journal can stay in sync without manual export downloads.
type Client struct {
	cfg    config.Alpaca
	client *alpaca.Client
}

func NewClient(cfg config.Alpaca) *Client {
	c := alpaca.NewClient(alpaca.ClientOpts{
		BaseURL:   cfg.BaseUrl,
		APIKey:    cfg.ApiKey,
		APISecret: cfg.Secret,
	})

	return &Client{cfg: cfg, client: c}
}

func (c *Client) Name() string {
	return sourceName
}

// Transactions fetches fill activities after the given time and maps
// them onto normalized journal transactions. Partially filled orders
// appear as separate fill activities and are passed through as-is.
func (c *Client) Transactions(ctx context.Context, after time.Time) ([]journal.Transaction, error) {
	req := alpaca.GetAccountActivitiesRequest{
		ActivityTypes: []string{"FILL"},
	}
	if !after.IsZero() {
		req.After = after
	}

	activities, err := c.client.GetAccountActivities(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alpaca fills: %w", err)
	}

	txs := make([]journal.Transaction, 0, len(activities))
	for _, a := range activities {
		if a.Symbol == "" {
			continue
		}

		side := journal.SideBuy
		if a.Side == "sell" || a.Side == "sell_short" {
			side = journal.SideSell
		}

		qty, _ := a.Qty.Float64()
		price, _ := a.Price.Float64()
		txs = append(txs, journal.Transaction{
			Symbol: a.Symbol,
			Time:   a.TransactionTime,
			Side:   side,
			Qty:    qty,
			Price:  price,
			Source: sourceName,
		})
	}

	return txs, nil
}
