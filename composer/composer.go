// Package composer turns the raw calendar data into the publishable weekly
// board: a fixed-size PNG with one column per weekday.
package composer

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	boardWidth   = 1800
	boardHeight  = 1100
	boardMargin  = 40
	headerHeight = 90

	maxMacroLines    = 5
	maxEarningsLines = 18
	macroLabelLimit  = 28
)

// Composer renders the weekly board. Fonts are embedded so the renderer has
// no filesystem dependency.
type Composer struct {
	titleFace font.Face
	dayFace   font.Face
	lineFace  font.Face // monospaced, keeps the symbol/time/cap columns aligned
	smallFace font.Face
}

func NewComposer() (*Composer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("error parsing regular font: %w", err)
	}
	mono, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("error parsing mono font: %w", err)
	}

	c := &Composer{}
	for _, f := range []struct {
		target *font.Face
		source *opentype.Font
		size   float64
	}{
		{&c.titleFace, regular, 42},
		{&c.dayFace, regular, 24},
		{&c.lineFace, mono, 20},
		{&c.smallFace, regular, 18},
	} {
		*f.target, err = opentype.NewFace(f.source, &opentype.FaceOptions{
			Size:    f.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("error building %gpt face: %w", f.size, err)
		}
	}
	return c, nil
}

// RenderBoard draws the weekly board and returns it as PNG bytes.
// The layout is fully deterministic: fixed canvas, fixed line budgets,
// overflow collapses into a "+N more" counter.
func (c *Composer) RenderBoard(week *Week) ([]byte, error) {
	dc := gg.NewContext(boardWidth, boardHeight)
	dc.SetRGB255(18, 18, 18)
	dc.Clear()

	title := fmt.Sprintf(
		"Weekly Earnings + Macro | %s → %s | mcap ≥ $100M",
		week.Monday.Format(time.DateOnly), week.Friday.Format(time.DateOnly),
	)
	dc.SetFontFace(c.titleFace)
	dc.SetRGB255(235, 235, 235)
	dc.DrawString(title, boardMargin, 62)

	colWidth := float64(boardWidth-2*boardMargin) / 5

	for i, d := range week.Dates() {
		x0 := boardMargin + float64(i)*colWidth
		y0 := float64(headerHeight)
		w := colWidth - 10
		h := float64(boardHeight-boardMargin) - y0

		dc.SetRGB255(70, 70, 70)
		dc.SetLineWidth(2)
		dc.DrawRectangle(x0, y0, w, h)
		dc.Stroke()

		dc.SetFontFace(c.dayFace)
		dc.SetRGB255(220, 220, 220)
		dc.DrawString(d.Format("Mon Jan 02"), x0+12, y0+34)

		plan := week.Days[d.Format(time.DateOnly)]
		y := y0 + 46

		y = c.drawMacro(dc, plan, x0, y)
		c.drawEarnings(dc, plan, x0, y)
	}

	if len(week.MissingSources) > 0 {
		dc.SetFontFace(c.smallFace)
		dc.SetRGB255(160, 120, 60)
		notice := "partial data, sources unavailable: " + strings.Join(week.MissingSources, ", ")
		dc.DrawString(notice, boardMargin, boardHeight-12)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("error encoding board png: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Composer) drawMacro(dc *gg.Context, plan *DayPlan, x0, y float64) float64 {
	macros := plan.Macro
	if len(macros) == 0 {
		return y
	}
	if len(macros) > maxMacroLines {
		macros = macros[:maxMacroLines]
	}

	dc.SetFontFace(c.smallFace)
	dc.SetRGB255(180, 180, 180)
	dc.DrawString("MACRO", x0+12, y+14)
	y += 24

	dc.SetRGB255(200, 200, 200)
	for _, ev := range macros {
		label := truncate(ev.Label, macroLabelLimit)
		dc.DrawString("• "+label, x0+18, y+14)
		y += 22
	}
	return y + 8
}

func (c *Composer) drawEarnings(dc *gg.Context, plan *DayPlan, x0, y float64) {
	earns := plan.Earnings

	dc.SetFontFace(c.smallFace)
	dc.SetRGB255(180, 180, 180)
	dc.DrawString(fmt.Sprintf("EARNINGS (%d)", len(earns)), x0+12, y+14)
	y += 24

	shown := earns
	if len(shown) > maxEarningsLines {
		shown = shown[:maxEarningsLines]
	}

	dc.SetFontFace(c.lineFace)
	dc.SetRGB255(235, 235, 235)
	for _, e := range shown {
		tm := strings.ToUpper(e.Time)
		if tm == "" {
			tm = "—"
		}
		line := fmt.Sprintf("%-6s %-4s %5s", e.Symbol, tm, FormatMarketCap(e.MarketCap))
		dc.DrawString(line, x0+18, y+16)
		y += 24
	}

	if extra := len(earns) - len(shown); extra > 0 {
		dc.SetRGB255(160, 160, 160)
		dc.DrawString(fmt.Sprintf("+%d more", extra), x0+18, y+16)
	}
}
