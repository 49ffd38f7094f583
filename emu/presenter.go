package emu

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"nescore/hw"
	"nescore/hw/snapshot"
)

// PNGPresenter writes the last presented frame as a PNG image when closed.
// If PatternsPath is set, the pattern tables are written too.
type PNGPresenter struct {
	Path         string
	PatternsPath string

	last *snapshot.NES
}

func (p *PNGPresenter) Present(s *snapshot.NES) error {
	p.last = s
	return nil
}

func (p *PNGPresenter) Close() error {
	if p.last == nil {
		return nil
	}
	if err := writePNG(p.Path, FrameImage(p.last)); err != nil {
		return err
	}
	if p.PatternsPath != "" {
		return writePNG(p.PatternsPath, PatternTablesImage(p.last))
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("screenshot: %w", err)
	}
	return f.Close()
}

// FrameImage returns the frame of a snapshot as an image.
func FrameImage(s *snapshot.NES) *image.RGBA {
	return toImage(s.PPU.Frame, hw.ScreenWidth, hw.ScreenHeight)
}

// PatternTablesImage returns both pattern tables, side by side.
func PatternTablesImage(s *snapshot.NES) *image.RGBA {
	const size = hw.PatternTableSize

	img := image.NewRGBA(image.Rect(0, 0, 2*size, size))
	for i, pt := range s.PPU.PatternTables {
		for y := range size {
			for x := range size {
				if idx := y*size + x; idx < len(pt) {
					img.SetRGBA(i*size+x, y, rgba(pt[idx]))
				}
			}
		}
	}
	return img
}

func toImage(pixels []uint32, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, px := range pixels {
		if i >= w*h {
			break
		}
		img.SetRGBA(i%w, i/w, rgba(px))
	}
	return img
}

func rgba(px uint32) color.RGBA {
	return color.RGBA{R: uint8(px >> 16), G: uint8(px >> 8), B: uint8(px), A: 0xFF}
}

// JSONPresenter writes the last presented snapshot as JSON when closed.
type JSONPresenter struct {
	W io.Writer

	last *snapshot.NES
}

func (p *JSONPresenter) Present(s *snapshot.NES) error {
	p.last = s
	return nil
}

func (p *JSONPresenter) Close() error {
	if p.last == nil {
		return nil
	}
	return p.last.WriteJSON(p.W)
}

// Presenters forwards snapshots to multiple presenters.
type Presenters []Presenter

func (ps Presenters) Present(s *snapshot.NES) error {
	for _, p := range ps {
		if err := p.Present(s); err != nil {
			return err
		}
	}
	return nil
}

func (ps Presenters) Close() error {
	var errs []error
	for _, p := range ps {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
