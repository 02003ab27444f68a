package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DataSeries represents a single line in a chart
type DataSeries struct {
	Name   string
	Points []float64
	Color  lipgloss.Color
}

// ASCIIChart displays a simple line chart
type ASCIIChart struct {
	Title      string
	Series     []*DataSeries
	Width      int
	Height     int
	ShowLegend bool
	YAxisLabel string
	XAxisLabel string
}

// NewASCIIChart creates a new ASCII chart
func NewASCIIChart(title string) *ASCIIChart {
	return &ASCIIChart{
		Title:      title,
		Series:     []*DataSeries{},
		Width:      60,
		Height:     12,
		ShowLegend: true,
	}
}

// AddSeries adds a data series to the chart
func (c *ASCIIChart) AddSeries(name string, points []float64, color lipgloss.Color) *ASCIIChart {
	c.Series = append(c.Series, &DataSeries{
		Name:   name,
		Points: points,
		Color:  color,
	})
	return c
}

// WithSize sets the chart dimensions
func (c *ASCIIChart) WithSize(width, height int) *ASCIIChart {
	c.Width = width
	c.Height = height
	return c
}

// WithAxisLabels sets axis labels
func (c *ASCIIChart) WithAxisLabels(xLabel, yLabel string) *ASCIIChart {
	c.XAxisLabel = xLabel
	c.YAxisLabel = yLabel
	return c
}

// Render draws the chart
func (c *ASCIIChart) Render() string {
	if len(c.Series) == 0 {
		return "No data"
	}

	minVal, maxVal := c.bounds()
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	grid := make([][]rune, c.Height)
	colors := make([][]lipgloss.Color, c.Height)
	for y := range grid {
		grid[y] = make([]rune, c.Width)
		colors[y] = make([]lipgloss.Color, c.Width)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	for _, s := range c.Series {
		c.plotSeries(grid, colors, s, minVal, maxVal)
	}

	var sb strings.Builder
	if c.Title != "" {
		sb.WriteString(c.Title + "\n")
	}
	if c.YAxisLabel != "" {
		sb.WriteString(c.YAxisLabel + "\n")
	}

	labelWidth := 10
	for y := 0; y < c.Height; y++ {
		// Y axis labels at top, middle, bottom rows.
		var label string
		switch y {
		case 0:
			label = formatAxisValue(maxVal)
		case c.Height / 2:
			label = formatAxisValue((maxVal + minVal) / 2)
		case c.Height - 1:
			label = formatAxisValue(minVal)
		}
		sb.WriteString(fmt.Sprintf("%*s |", labelWidth, label))
		for x := 0; x < c.Width; x++ {
			ch := string(grid[y][x])
			if grid[y][x] != ' ' && colors[y][x] != "" {
				ch = lipgloss.NewStyle().Foreground(colors[y][x]).Render(ch)
			}
			sb.WriteString(ch)
		}
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Repeat(" ", labelWidth) + " +" + strings.Repeat("-", c.Width) + "\n")
	if c.XAxisLabel != "" {
		sb.WriteString(strings.Repeat(" ", labelWidth+2) + c.XAxisLabel + "\n")
	}

	if c.ShowLegend && len(c.Series) > 1 {
		var parts []string
		for _, s := range c.Series {
			parts = append(parts, lipgloss.NewStyle().Foreground(s.Color).Render("*")+" "+s.Name)
		}
		sb.WriteString(strings.Join(parts, "   ") + "\n")
	}

	return sb.String()
}

func (c *ASCIIChart) bounds() (minVal, maxVal float64) {
	minVal, maxVal = math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		for _, p := range s.Points {
			if p < minVal {
				minVal = p
			}
			if p > maxVal {
				maxVal = p
			}
		}
	}
	return minVal, maxVal
}

func (c *ASCIIChart) plotSeries(grid [][]rune, colors [][]lipgloss.Color, s *DataSeries, minVal, maxVal float64) {
	n := len(s.Points)
	if n == 0 {
		return
	}
	for x := 0; x < c.Width; x++ {
		// Map the column back onto the point index.
		idx := 0
		if c.Width > 1 {
			idx = x * (n - 1) / (c.Width - 1)
		}
		v := s.Points[idx]
		y := int(math.Round((maxVal - v) / (maxVal - minVal) * float64(c.Height-1)))
		if y < 0 {
			y = 0
		}
		if y >= c.Height {
			y = c.Height - 1
		}
		grid[y][x] = '*'
		colors[y][x] = s.Color
	}
}

func formatAxisValue(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
