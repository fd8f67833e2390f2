package broker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource_Transactions(t *testing.T) {
	export := "Activity Date,Process Date,Settle Date,Instrument,Trans Code,Quantity,Price\n" +
		"3/15/2024,,,AAPL,Buy,10,100\n" +
		"3/18/2024,,,AAPL,Sell,10,110\n" +
		"3/20/2024,,,AAPL,Buy,5,105\n"

	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o644))

	src := NewFileSource(discardLogger(), path, FormatUnknown)
	assert.Equal(t, "file:export.csv", src.Name())

	all, err := src.Transactions(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// rows at or before the watermark are filtered out
	after := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	fresh, err := src.Transactions(context.Background(), after)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), fresh[0].Time)
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource(discardLogger(), filepath.Join(t.TempDir(), "nope.csv"), FormatUnknown)

	_, err := src.Transactions(context.Background(), time.Time{})
	assert.Error(t, err)
}
