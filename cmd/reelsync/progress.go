package main

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"reelsync/internal/library"
)

// runProgress renders per-stage progress while a run is underway, but only
// when stderr is an interactive terminal. Scanning shows a spinner (the
// walk discovers its own total), fingerprinting shows a counted bar, and
// duplicate proposal is too quick to draw.
func runProgress() library.ProgressFunc {
	if !stderrIsTerminal() {
		return nil
	}

	var mu sync.Mutex
	var stage library.Stage
	var bar *progressbar.ProgressBar
	return func(s library.Stage, done, total int, path string) {
		mu.Lock()
		defer mu.Unlock()
		if s != stage {
			if bar != nil {
				_ = bar.Clear()
				bar = nil
			}
			stage = s
			switch s {
			case library.StageScan:
				bar = progressbar.NewOptions(-1,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription("scanning"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			case library.StageFingerprint:
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription("fingerprinting"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
		}
		if bar == nil {
			return
		}
		switch s {
		case library.StageScan:
			_ = bar.Add(1)
			bar.Describe("scanning " + filepath.Base(path))
		case library.StageFingerprint:
			_ = bar.Set(done)
			bar.Describe("fingerprinting " + filepath.Base(path))
		}
	}
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
