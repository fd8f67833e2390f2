package analytics

import (
	"github.com/statikfintechllc/personal-pennies/internal/journal"
)

// Unclassified is the bucket for trades without a value in the grouped
// classification field.
const Unclassified = "Unclassified"

// tagStats groups trades by a classification field and computes the
// per-group aggregate. When the field holds several tags only the
// first one decides the group; every trade lands in exactly one group.
func tagStats(trades []journal.Trade, field func(*journal.Trade) []string) map[string]TagStats {
	groups := make(map[string][]journal.Trade)
	for i := range trades {
		key := Unclassified
		if tags := field(&trades[i]); len(tags) > 0 && tags[0] != "" {
			key = tags[0]
		}
		groups[key] = append(groups[key], trades[i])
	}

	stats := make(map[string]TagStats, len(groups))
	for key, group := range groups {
		b := bucketize(group)

		s := TagStats{
			TotalTrades: b.total,
			Wins:        b.wins,
			Losses:      b.losses,
			TotalProfit: round2(b.grossWin - b.grossLoss),
			Expectancy:  expectancy(group),
		}
		if b.total > 0 {
			s.WinRate = round1(b.winRate() * 100)
			s.AvgProfit = round2((b.grossWin - b.grossLoss) / float64(b.total))
		}

		stats[key] = s
	}

	return stats
}
