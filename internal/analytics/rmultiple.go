package analytics

import (
	"sort"

	"github.com/statikfintechllc/personal-pennies/internal/journal"
)

// rMultiple computes a single trade's realized R: reward over risk,
// both signed by direction. The second return is false when the trade
// has no stop or its risk is not positive, in which case the trade is
// excluded from the distribution entirely.
func rMultiple(t *journal.Trade) (float64, bool) {
	if t.StopPrice == nil {
		return 0, false
	}

	var risk, reward float64
	if t.Direction == journal.DirectionShort {
		risk = *t.StopPrice - t.EntryPrice
		reward = t.EntryPrice - t.ExitPrice
	} else {
		risk = t.EntryPrice - *t.StopPrice
		reward = t.ExitPrice - t.EntryPrice
	}

	if risk <= 0 {
		return 0, false
	}

	return reward / risk, true
}

func rBucket(r float64) int {
	switch {
	case r < -2:
		return 0
	case r < -1:
		return 1
	case r < 0:
		return 2
	case r < 1:
		return 3
	case r < 2:
		return 4
	case r < 3:
		return 5
	default:
		return 6
	}
}

func rMultiples(trades []journal.Trade) RMultipleDistribution {
	dist := RMultipleDistribution{
		Labels: rBucketLabels,
		Data:   make([]int, len(rBucketLabels)),
	}

	var rs []float64
	for i := range trades {
		r, ok := rMultiple(&trades[i])
		if !ok {
			continue
		}
		dist.Data[rBucket(r)]++
		rs = append(rs, r)
	}

	if len(rs) == 0 {
		return dist
	}

	var sum float64
	for _, r := range rs {
		sum += r
	}
	dist.AvgRMultiple = round2(sum / float64(len(rs)))

	sort.Float64s(rs)
	mid := len(rs) / 2
	if len(rs)%2 == 0 {
		dist.MedianRMultiple = round2((rs[mid-1] + rs[mid]) / 2)
	} else {
		dist.MedianRMultiple = round2(rs[mid])
	}

	return dist
}
