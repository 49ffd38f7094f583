package emu

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"nescore/hw"
	"nescore/hw/snapshot"
	"nescore/tests"
)

type recorder struct {
	frames []uint64
	closed bool
	onSnap func()
	err    error
}

func (r *recorder) Present(s *snapshot.NES) error {
	r.frames = append(r.frames, s.PPU.FrameCount)
	if r.onSnap != nil {
		r.onSnap()
	}
	return r.err
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestEmulatorRunFrames(t *testing.T) {
	nes := newNES(t, Config{}, tests.NROM(1, 1))
	e := NewEmulator(nes, 3)

	var rec recorder
	if err := e.Run(context.Background(), &rec); err != nil {
		t.Fatal(err)
	}

	if !rec.closed {
		t.Error("presenter not closed")
	}
	if len(rec.frames) == 0 {
		t.Fatal("no snapshot presented")
	}
	if last := rec.frames[len(rec.frames)-1]; last != 3 {
		t.Errorf("last snapshot frame = %d, want 3", last)
	}
	if nes.PPU.FrameCount() != 3 {
		t.Errorf("FrameCount = %d, want 3", nes.PPU.FrameCount())
	}
}

func TestEmulatorStop(t *testing.T) {
	nes := newNES(t, Config{}, tests.NROM(1, 1))
	e := NewEmulator(nes, 0)

	rec := recorder{onSnap: e.Stop}
	if err := e.Run(context.Background(), &rec); err != nil {
		t.Fatal(err)
	}
	if len(rec.frames) == 0 || !rec.closed {
		t.Errorf("frames=%v closed=%t", rec.frames, rec.closed)
	}
}

func TestEmulatorContextCancel(t *testing.T) {
	nes := newNES(t, Config{}, tests.NROM(1, 1))
	e := NewEmulator(nes, 0)

	ctx, cancel := context.WithCancel(context.Background())
	rec := recorder{onSnap: cancel}
	if err := e.Run(ctx, &rec); err != nil {
		t.Fatalf("Run() = %v, want nil on cancellation", err)
	}
}

func TestEmulatorPresenterError(t *testing.T) {
	nes := newNES(t, Config{}, tests.NROM(1, 1))
	e := NewEmulator(nes, 0)

	errPresent := errors.New("present failed")
	rec := recorder{err: errPresent}
	if err := e.Run(context.Background(), &rec); !errors.Is(err, errPresent) {
		t.Fatalf("Run() = %v, want %v", err, errPresent)
	}
	if !rec.closed {
		t.Error("presenter not closed")
	}
}

func TestEmulatorNoCartridge(t *testing.T) {
	nes := newNES(t, Config{}, nil)
	e := NewEmulator(nes, 1)

	var rec recorder
	if err := e.Run(context.Background(), &rec); !errors.Is(err, ErrNoCartridge) {
		t.Fatalf("Run() = %v, want %v", err, ErrNoCartridge)
	}
}

func TestEmulatorReset(t *testing.T) {
	nes := newNES(t, Config{}, tests.NROM(1, 1))
	e := NewEmulator(nes, 1)

	if err := e.Run(context.Background(), &recorder{}); err != nil {
		t.Fatal(err)
	}

	e.Reset()
	e.handleReset()
	if nes.CPU.PC != 0x8000 || nes.PPU.FrameCount() != 0 {
		t.Errorf("after reset: PC=$%04X frames=%d", nes.CPU.PC, nes.PPU.FrameCount())
	}
}

func TestSendLatest(t *testing.T) {
	ch := make(chan *snapshot.NES, 1)
	s1 := &snapshot.NES{Version: 1}
	s2 := &snapshot.NES{Version: 2}

	sendLatest(ch, s1)
	sendLatest(ch, s2)

	if got := <-ch; got != s2 {
		t.Errorf("got snapshot %d, want the latest", got.Version)
	}
	select {
	case <-ch:
		t.Error("channel should be empty")
	default:
	}
}

func TestPNGPresenter(t *testing.T) {
	nes := newNES(t, Config{}, tests.NROM(1, 1))
	dir := t.TempDir()
	p := &PNGPresenter{
		Path:         filepath.Join(dir, "frame.png"),
		PatternsPath: filepath.Join(dir, "patterns.png"),
	}

	if err := NewEmulator(nes, 1).Run(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	checkPNG := func(path string, w, h int) {
		t.Helper()

		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		img, err := png.Decode(f)
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
			t.Errorf("%s: got %dx%d, want %dx%d", path, b.Dx(), b.Dy(), w, h)
		}
	}
	checkPNG(p.Path, hw.ScreenWidth, hw.ScreenHeight)
	checkPNG(p.PatternsPath, 2*hw.PatternTableSize, hw.PatternTableSize)
}

func TestJSONPresenter(t *testing.T) {
	nes := newNES(t, Config{}, tests.NROM(1, 1))

	var buf bytes.Buffer
	ps := Presenters{&JSONPresenter{W: &buf}, &recorder{}}
	if err := NewEmulator(nes, 2).Run(context.Background(), ps); err != nil {
		t.Fatal(err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte(`{"version":1,`)) {
		t.Errorf("unexpected json: %.40s", buf.String())
	}
}

func TestPresenterWithoutSnapshot(t *testing.T) {
	var buf bytes.Buffer
	ps := Presenters{&JSONPresenter{W: &buf}, &PNGPresenter{Path: filepath.Join(t.TempDir(), "x.png")}}
	if err := ps.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes without snapshot", buf.Len())
	}
}
