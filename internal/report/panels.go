package report

import (
	"errors"
	"fmt"
	"os"

	"github.com/pplcc/plotext"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// writeEquityPanels renders the equity curve above the drawdown panel
// as one PNG. The X axes are united so both panels share the same time
// scale, and the equity panel gets twice the drawdown panel's height.
func writeEquityPanels(path string, equity, drawdown *plot.Plot, width, height int) (err error) {
	plotext.UniteAxisRanges([]*plot.Axis{&equity.X, &drawdown.X})

	layout := plotext.Table{
		RowHeights: []float64{2, 1},
		ColWidths:  []float64{1},
	}

	img := vgimg.New(vg.Points(float64(width)), vg.Points(3*float64(height)))
	canvases := layout.Align([][]*plot.Plot{{equity}, {drawdown}}, draw.New(img))
	equity.Draw(canvases[0][0])
	drawdown.Draw(canvases[1][0])

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close chart file: %w", cerr))
		}
	}()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}

	return nil
}
