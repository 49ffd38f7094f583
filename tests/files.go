package tests

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

func decompress(zipFile, dest string) error {
	r, err := zip.OpenReader(zipFile)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		fname := strings.Replace(f.Name, "nes-test-roms-master", "nes-test-roms", 1)
		fpath := filepath.Join(dest, fname)
		if !strings.HasPrefix(fpath, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("%s: illegal file path", fpath)
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(fpath, os.ModePerm)
			continue
		}

		if err = os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
			return err
		}

		if err := extract(f, fpath); err != nil {
			return err
		}
	}
	return nil
}

func extract(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func download(url string, w io.Writer) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func downloadTestRoms(dest string) error {
	const url = `https://github.com/christopherpow/nes-test-roms/archive/refs/heads/master.zip`

	tmpf, err := os.CreateTemp("", "nes-test-roms-*-.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmpf.Name())
	defer tmpf.Close()

	if err := download(url, tmpf); err != nil {
		return err
	}
	if err := decompress(tmpf.Name(), dest); err != nil {
		return fmt.Errorf("failed to decompress test roms: %s", err)
	}
	return nil
}

var romsPath = sync.OnceValues(func() (string, error) {
	_, b, _, _ := runtime.Caller(0)
	testsDir := filepath.Dir(b)
	romsDir := filepath.Join(testsDir, "nes-test-roms")

	if _, err := os.Stat(romsDir); errors.Is(err, fs.ErrNotExist) {
		if err := downloadTestRoms(testsDir); err != nil {
			return "", err
		}
	}
	return romsDir, nil
})

// RomsPath returns the directory containing the nes-test-roms collection,
// downloading it on first use. The test is skipped if it can't be fetched.
func RomsPath(tb testing.TB) string {
	tb.Helper()

	dir, err := romsPath()
	if err != nil {
		tb.Skipf("nes-test-roms not available: %s", err)
	}
	return dir
}

// download the Tom Harte 6502 test files of the given opcodes into dest dir.
func downloadTomHarteProcTests(dest string, opcodes []uint8) error {
	const urlfmt = `https://raw.githubusercontent.com/SingleStepTests/65x02/main/nes6502/v1/%02x.json`

	tempdir, err := os.MkdirTemp("", "tom.harte.processor.tests.*")
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, opcode := range opcodes {
		g.Go(func() error {
			f, err := os.Create(filepath.Join(tempdir, fmt.Sprintf("%02x.json", opcode)))
			if err != nil {
				return err
			}
			defer f.Close()

			return download(fmt.Sprintf(urlfmt, opcode), f)
		})
	}

	if err := g.Wait(); err != nil {
		os.RemoveAll(tempdir)
		return fmt.Errorf("failed to download all files: %s", err)
	}
	return os.Rename(tempdir, dest)
}

var tomHarteMu sync.Mutex

// TomHarteProcTestsPath returns the directory containing the per-opcode
// processor tests, downloading the missing ones. The test is skipped if they
// can't be fetched.
func TomHarteProcTestsPath(tb testing.TB, opcodes []uint8) string {
	tb.Helper()

	tomHarteMu.Lock()
	defer tomHarteMu.Unlock()

	_, b, _, _ := runtime.Caller(0)
	testsDir := filepath.Join(filepath.Dir(b), "tomharte.processor.tests")

	if _, err := os.Stat(testsDir); errors.Is(err, fs.ErrNotExist) {
		tb.Log("tomharte.processor.tests directory not found, downloading it...")
		if err := downloadTomHarteProcTests(testsDir, opcodes); err != nil {
			tb.Skipf("processor tests not available: %s", err)
		}
		tb.Log("Tom Harte Processor Tests downloaded in", testsDir)
	}
	return testsDir
}
