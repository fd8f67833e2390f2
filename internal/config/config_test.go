package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	yml := `
data_dir: journal-data
account:
  starting_balance: 10000
  deposits:
    - amount: 2000
      date: 2024-01-05
      note: savings
  withdrawals:
    - amount: 500
      date: 2024-03-01
sources:
  - file:
      path: exports/robinhood.csv
      format: robinhood
  - alpaca:
      base_url: https://paper-api.alpaca.markets
      api_key: key
      secret: secret
matching:
  mode: fifo
validation:
  max_sane_price: 25000
analytics:
  risk_free_rate: 0.5
reports:
  dir: out
  chart_width: 1200
`

	cfg, err := Read(strings.NewReader(yml))
	require.NoError(t, err)

	assert.Equal(t, "journal-data", cfg.DataDir)
	assert.Equal(t, 10_000.0, cfg.Account.StartingBalance)
	assert.Equal(t, 11_500.0, cfg.Account.InitialCapital())

	require.Len(t, cfg.Sources, 2)
	file, ok := cfg.Sources[0].Source.(FileExport)
	require.True(t, ok)
	assert.Equal(t, "exports/robinhood.csv", file.Path)
	assert.Equal(t, "robinhood", file.Format)

	alp, ok := cfg.Sources[1].Source.(Alpaca)
	require.True(t, ok)
	assert.Equal(t, "https://paper-api.alpaca.markets", alp.BaseUrl)
	assert.Equal(t, "key", alp.ApiKey)

	assert.Equal(t, "fifo", cfg.Matching.Mode)
	assert.Equal(t, 25_000.0, cfg.Validation.MaxSanePrice)
	assert.Equal(t, 0.5, cfg.Analytics.RiskFreeRate)
	assert.Equal(t, "out", cfg.Reports.Dir)
	assert.Equal(t, 1200, cfg.Reports.ChartWidth)
	// unset dimensions pick up defaults
	assert.Equal(t, 300, cfg.Reports.ChartHeight)
}

func TestRead_Defaults(t *testing.T) {
	cfg, err := Read(strings.NewReader("account:\n  starting_balance: 100\n"))
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "sequential", cfg.Matching.Mode)
	assert.Equal(t, "reports", cfg.Reports.Dir)
	assert.Equal(t, 900, cfg.Reports.ChartWidth)
	assert.Equal(t, 300, cfg.Reports.ChartHeight)
	assert.Empty(t, cfg.Sources)
}

func TestRead_Invalid(t *testing.T) {
	tbl := []struct {
		name string
		yml  string
	}{
		{
			name: "bad matching mode",
			yml:  "matching:\n  mode: lifo\n",
		},
		{
			name: "negative sanity threshold",
			yml:  "validation:\n  max_sane_price: -1\n",
		},
		{
			name: "negative starting balance",
			yml:  "account:\n  starting_balance: -100\n",
		},
		{
			name: "unknown source type",
			yml:  "sources:\n  - ibkr:\n      path: x.csv\n",
		},
		{
			name: "not yaml",
			yml:  "{{{",
		},
	}

	for _, c := range tbl {
		t.Run(c.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(c.yml))
			assert.Error(t, err)
		})
	}
}

func TestReadFromFile_Missing(t *testing.T) {
	_, err := ReadFromFile("does/not/exist.yaml")
	assert.Error(t, err)
}
