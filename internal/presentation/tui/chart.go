package tui

import (
	"fmt"
	"math"
	"strings"

	"ScalpSignal/internal/domain/models"
)

const yAxisWidth = 11 // "  12345.67 │"

// renderChart draws the frame into a grid of height rows. Candles take two
// columns each, line points one; the forecast and signal marker follow the
// last candle.
func renderChart(f *models.Frame, width, height int) string {
	if f == nil || len(f.Series) == 0 {
		return axisStyle.Render("waiting for data…")
	}
	if height < 3 {
		height = 3
	}
	colW := 2
	if f.ChartType == models.ChartLine {
		colW = 1
	}

	var future []float64
	if f.ShowPredictions {
		future = f.FuturePrices
	}
	// Reserve room for the forecast and one marker column.
	maxCols := (width-yAxisWidth)/colW - len(future) - 1
	if maxCols < 1 {
		maxCols = 1
	}
	series := f.Series
	if len(series) > maxCols {
		series = series[len(series)-maxCols:]
	}

	hi, lo := priceRange(series, future)
	if hi == lo {
		hi = lo + 1
	}

	cols := (len(series)+len(future))*colW + 1
	grid := make([][]string, height)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}

	for i, c := range series {
		if colW == 2 {
			renderCandle(grid, c, i*2, height, hi, lo)
		} else {
			grid[priceToRow(c.Close, float64(height), hi, lo)][i] = lineStyle.Render("•")
		}
	}
	for i, p := range future {
		x := (len(series) + i) * colW
		grid[priceToRow(p, float64(height), hi, lo)][x] = predictionStyle.Render("◆")
	}
	if f.Signal != nil && f.ReferencePrice != nil {
		if m := signalMarker(*f.Signal); m != "" {
			grid[priceToRow(*f.ReferencePrice, float64(height), hi, lo)][cols-1] = m
		}
	}

	var b strings.Builder
	for row := 0; row < height; row++ {
		b.WriteString(axisStyle.Render(fmt.Sprintf("%9.2f │", rowToPrice(row, height, hi, lo))))
		b.WriteString(strings.Join(grid[row], ""))
		b.WriteByte('\n')
	}
	b.WriteString(axisStyle.Render(strings.Repeat("─", yAxisWidth+cols)))
	return b.String()
}

func signalMarker(s models.SignalType) string {
	switch s {
	case models.SignalBuy:
		return buyStyle.Render("▲")
	case models.SignalSell:
		return sellStyle.Render("▼")
	}
	return ""
}

// renderCandle paints one candle into the grid at column x (2 wide).
func renderCandle(grid [][]string, c models.Candle, x, height int, hi, lo float64) {
	style := bullStyle
	if c.Close < c.Open {
		style = bearStyle
	}

	fH := float64(height)
	bodyTop := priceToRow(math.Max(c.Open, c.Close), fH, hi, lo)
	bodyBot := priceToRow(math.Min(c.Open, c.Close), fH, hi, lo)
	wickTop := priceToRow(c.High, fH, hi, lo)
	wickBot := priceToRow(c.Low, fH, hi, lo)

	for row := 0; row < height; row++ {
		switch {
		case row >= bodyTop && row <= bodyBot:
			grid[row][x] = style.Render("█")
			grid[row][x+1] = style.Render("█")
		case row >= wickTop && row <= wickBot:
			grid[row][x] = wickStyle.Render("│")
		}
	}
}

// priceToRow converts a price to a grid row (0 = top = high).
func priceToRow(price, height float64, hi, lo float64) int {
	if hi == lo {
		return int(height) / 2
	}
	r := int(math.Round((hi - price) / (hi - lo) * (height - 1)))
	if r < 0 {
		r = 0
	}
	if r >= int(height) {
		r = int(height) - 1
	}
	return r
}

// rowToPrice is the inverse of priceToRow.
func rowToPrice(row, height int, hi, lo float64) float64 {
	if height <= 1 {
		return hi
	}
	return hi - float64(row)/float64(height-1)*(hi-lo)
}

// priceRange spans the candle highs and lows plus any forecast prices.
func priceRange(series models.CandleSeries, future []float64) (hi, lo float64) {
	if len(series) == 0 && len(future) == 0 {
		return 0, 0
	}
	hi, lo = -math.MaxFloat64, math.MaxFloat64
	for _, c := range series {
		hi = math.Max(hi, c.High)
		lo = math.Min(lo, c.Low)
	}
	for _, p := range future {
		hi = math.Max(hi, p)
		lo = math.Min(lo, p)
	}
	return hi, lo
}
