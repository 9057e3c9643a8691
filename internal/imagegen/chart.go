// Package imagegen renders the pack's charts as WebP images.
package imagegen

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
)

// Kind selects how a series is drawn.
type Kind int

const (
	Bars Kind = iota
	HorizontalBars
	Area
)

// Palette used by the pack charts.
var (
	SteelBlue = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	Coral     = color.RGBA{R: 255, G: 127, B: 80, A: 255}
	SeaGreen  = color.RGBA{R: 46, G: 139, B: 87, A: 255}
	DarkGreen = color.RGBA{R: 0, G: 100, B: 0, A: 255}

	background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	axis       = color.RGBA{R: 90, G: 90, B: 90, A: 255}
)

const (
	defaultWidth   = 1200
	defaultHeight  = 500
	margin         = 40
	defaultQuality = 90
)

// Chart is a single unlabeled series.
type Chart struct {
	Values []float64
	Kind   Kind
	Color  color.RGBA
	Width  int
	Height int
}

// Render draws the chart. Values are scaled to the largest one; an empty or
// all-zero series yields axes only.
func (c Chart) Render() *image.RGBA {
	w, h := c.Width, c.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	plot := image.Rect(margin, margin/2, w-margin/2, h-margin)
	fill(img, image.Rect(plot.Min.X-2, plot.Min.Y, plot.Min.X, plot.Max.Y), axis)
	fill(img, image.Rect(plot.Min.X-2, plot.Max.Y, plot.Max.X, plot.Max.Y+2), axis)

	peak := 0.0
	for _, v := range c.Values {
		if v > peak {
			peak = v
		}
	}
	if len(c.Values) == 0 || peak <= 0 {
		return img
	}

	switch c.Kind {
	case HorizontalBars:
		slot := float64(plot.Dy()) / float64(len(c.Values))
		for i, v := range c.Values {
			y0 := plot.Min.Y + int(float64(i)*slot+slot*0.1)
			y1 := plot.Min.Y + int(float64(i+1)*slot-slot*0.1)
			x1 := plot.Min.X + int(v/peak*float64(plot.Dx()))
			fill(img, image.Rect(plot.Min.X, y0, x1, max(y1, y0+1)), c.Color)
		}
	case Area:
		light := faded(c.Color, 80)
		prevX, prevY := -1, -1
		for i, v := range c.Values {
			x := plot.Min.X + xAt(i, len(c.Values), plot.Dx())
			y := plot.Max.Y - int(v/peak*float64(plot.Dy()))
			if prevX >= 0 {
				for xx := prevX; xx <= x; xx++ {
					yy := prevY
					if x != prevX {
						yy = prevY + (y-prevY)*(xx-prevX)/(x-prevX)
					}
					blend(img, image.Rect(xx, yy, xx+1, plot.Max.Y), light)
					fill(img, image.Rect(xx, yy-1, xx+1, yy+2), c.Color)
				}
			}
			fill(img, image.Rect(x-3, y-3, x+4, y+4), c.Color)
			prevX, prevY = x, y
		}
	default:
		slot := float64(plot.Dx()) / float64(len(c.Values))
		for i, v := range c.Values {
			x0 := plot.Min.X + int(float64(i)*slot+slot*0.1)
			x1 := plot.Min.X + int(float64(i+1)*slot-slot*0.1)
			y0 := plot.Max.Y - int(v/peak*float64(plot.Dy()))
			fill(img, image.Rect(x0, y0, max(x1, x0+1), plot.Max.Y), c.Color)
		}
	}
	return img
}

func xAt(i, n, width int) int {
	if n <= 1 {
		return width / 2
	}
	return i * width / (n - 1)
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// faded returns c at alpha a, premultiplied.
func faded(c color.RGBA, a uint8) color.RGBA {
	scale := func(v uint8) uint8 { return uint8(uint16(v) * uint16(a) / 255) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: a}
}

func blend(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Over)
}

// Histogram buckets values in [0, limit] into bins equal-width bins. Values
// above limit land in the last bin.
func Histogram(values []int, bins, limit int) []float64 {
	if bins <= 0 {
		return nil
	}
	out := make([]float64, bins)
	if limit <= 0 {
		limit = 1
	}
	for _, v := range values {
		if v < 0 {
			continue
		}
		i := v * bins / (limit + 1)
		if i >= bins {
			i = bins - 1
		}
		out[i]++
	}
	return out
}

// WriteWebP encodes img to path. Quality <= 0 uses the default.
func WriteWebP(path string, img image.Image, quality int) error {
	if quality <= 0 {
		quality = defaultQuality
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	slog.Debug("imagegen: writing webp", "path", path, "quality", quality)
	if err := webp.Encode(f, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return fmt.Errorf("encode webp: %w", err)
	}
	return nil
}
