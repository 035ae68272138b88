package main

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"
)

// progressUI draws live progress bars when out is a terminal and does
// nothing otherwise; the component loggers already record progress.
type progressUI struct {
	pw       progress.Writer
	mu       sync.Mutex
	trackers map[string]*progress.Tracker
}

func newProgressUI(out io.Writer) *progressUI {
	if !isTerminal(out) {
		return &progressUI{}
	}
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetStyle(progress.StyleDefault)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Speed = true
	go pw.Render()
	return &progressUI{pw: pw, trackers: make(map[string]*progress.Tracker)}
}

func (p *progressUI) tracker(key, message string, total int64, units progress.Units) *progress.Tracker {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.trackers[key]
	if !ok {
		t = &progress.Tracker{Message: message, Total: total, Units: units}
		p.trackers[key] = t
		p.pw.AppendTracker(t)
	}
	return t
}

func (p *progressUI) update(key, message string, done, total int64, units progress.Units) {
	if p == nil || p.pw == nil {
		return
	}
	t := p.tracker(key, message, total, units)
	if total > 0 && t.Total != total {
		t.UpdateTotal(total)
	}
	t.SetValue(done)
	if total > 0 && done >= total {
		t.MarkAsDone()
	}
}

// bytes tracks a transfer.
func (p *progressUI) bytes(key, message string, done, total int64) {
	p.update(key, message, done, total, progress.UnitsBytes)
}

// count tracks a batch of files.
func (p *progressUI) count(key, message string, done, total int) {
	p.update(key, message, int64(done), int64(total), progress.UnitsDefault)
}

func (p *progressUI) stop() {
	if p == nil || p.pw == nil {
		return
	}
	p.pw.Stop()
	for p.pw.IsRenderInProgress() {
		time.Sleep(20 * time.Millisecond)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
