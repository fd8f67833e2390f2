package broker

import (
	"errors"
	"strings"
)

// ErrUnknownSource is returned when an export matches none of the
// supported broker formats. No partial result accompanies it.
var ErrUnknownSource = errors.New("unrecognized broker export format")

// Format identifies one supported broker export layout. The set is
// closed on purpose: adding a broker means adding a constant and its
// spec here, and the compiler finds every switch that needs updating.
type Format int

const (
	FormatUnknown Format = iota
	FormatRobinhood
	FormatWebull
	FormatSchwab
	FormatIBKR
)

func (f Format) String() string {
	switch f {
	case FormatRobinhood:
		return "robinhood"
	case FormatWebull:
		return "webull"
	case FormatSchwab:
		return "schwab"
	case FormatIBKR:
		return "ibkr"
	default:
		return "unknown"
	}
}

// ParseFormat maps a user-supplied hint to a Format.
func ParseFormat(name string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "robinhood":
		return FormatRobinhood, true
	case "webull":
		return FormatWebull, true
	case "schwab":
		return FormatSchwab, true
	case "ibkr":
		return FormatIBKR, true
	default:
		return FormatUnknown, false
	}
}

// columns names the header fragments used to locate each field of a
// row. An empty fragment means the format does not carry that field.
type columns struct {
	symbol     string
	time       string
	side       string
	qty        string
	price      string
	status     string
	commission string
}

type formatSpec struct {
	// indicators are lower-case fragments scored against the header
	// row during detection.
	indicators []string
	// minMatches is how many indicators must hit before the format is
	// accepted.
	minMatches int
	cols       columns
	// timeLayouts are tried in order when parsing the row timestamp.
	timeLayouts []string
}

var specs = map[Format]formatSpec{
	FormatRobinhood: {
		indicators: []string{"activity date", "process date", "settle date", "instrument", "trans code", "quantity", "price"},
		minMatches: 4,
		cols: columns{
			symbol: "instrument",
			time:   "activity date",
			side:   "trans code",
			qty:    "quantity",
			price:  "price",
		},
		timeLayouts: []string{"1/2/2006", "2006-01-02"},
	},
	FormatWebull: {
		indicators: []string{"symbol", "side", "status", "filled", "total qty", "avg price", "placed time", "filled time"},
		minMatches: 5,
		cols: columns{
			symbol: "symbol",
			time:   "filled time",
			side:   "side",
			qty:    "filled",
			price:  "avg price",
			status: "status",
		},
		timeLayouts: []string{"01/02/2006 15:04:05 MST", "01/02/2006 15:04:05", "2006-01-02 15:04:05 MST", "2006-01-02 15:04:05"},
	},
	FormatSchwab: {
		indicators: []string{"date", "action", "symbol", "description", "quantity", "price", "fees & comm", "amount"},
		minMatches: 5,
		cols: columns{
			symbol:     "symbol",
			time:       "date",
			side:       "action",
			qty:        "quantity",
			price:      "price",
			commission: "fees & comm",
		},
		timeLayouts: []string{"01/02/2006", "2006-01-02"},
	},
	FormatIBKR: {
		indicators: []string{"symbol", "date/time", "quantity", "t. price", "proceeds", "comm/fee", "buy/sell"},
		minMatches: 4,
		cols: columns{
			symbol:     "symbol",
			time:       "date/time",
			side:       "buy/sell",
			qty:        "quantity",
			price:      "t. price",
			commission: "comm/fee",
		},
		timeLayouts: []string{"2006-01-02, 15:04:05", "2006-01-02 15:04:05", "2006-01-02"},
	},
}

// detection order is fixed so that equal scores resolve the same way
// on every run.
var detectOrder = []Format{FormatWebull, FormatRobinhood, FormatSchwab, FormatIBKR}

// Detect scores the header row against every supported format and
// returns the best one, provided it clears that format's minimum
// indicator count.
func Detect(header []string) (Format, bool) {
	joined := strings.ToLower(strings.Join(header, " "))

	best := FormatUnknown
	bestScore := 0
	for _, f := range detectOrder {
		spec := specs[f]
		score := 0
		for _, ind := range spec.indicators {
			if strings.Contains(joined, ind) {
				score++
			}
		}
		if score >= spec.minMatches && score > bestScore {
			best = f
			bestScore = score
		}
	}

	return best, best != FormatUnknown
}
