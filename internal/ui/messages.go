package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/LungScan/internal/controller"
	"github.com/yildizm/LungScan/internal/input"
	"github.com/yildizm/LungScan/internal/predict"
	"github.com/yildizm/LungScan/internal/report"
)

type tickMsg time.Time

// analysisDoneMsg carries the outcome of one prediction request
type analysisDoneMsg struct {
	req    *controller.Request
	result *predict.Result
	err    error
}

type probeDoneMsg struct {
	err error
}

// imageLoadedMsg is a file read from disk, typed or dropped
type imageLoadedMsg struct {
	path  string
	image *input.Selected
	err   error
}

type dropMsg struct {
	path string
}

type dropClosedMsg struct{}

type exportDoneMsg struct {
	path string
	err  error
}

// Prober checks that the prediction service is reachable
type Prober interface {
	Probe(ctx context.Context) error
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// analyzeCommand runs a prediction request off the update loop
func analyzeCommand(req *controller.Request) tea.Cmd {
	return func() tea.Msg {
		res, err := req.Run()
		return analysisDoneMsg{req: req, result: res, err: err}
	}
}

func probeCommand(p Prober, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return probeDoneMsg{err: p.Probe(ctx)}
	}
}

func loadImageCommand(path string, maxBytes int64) tea.Cmd {
	return func() tea.Msg {
		img, err := input.Load(path, maxBytes)
		return imageLoadedMsg{path: path, image: img, err: err}
	}
}

// waitForDrop blocks until the watcher delivers a file
func waitForDrop(w *input.Watcher) tea.Cmd {
	return func() tea.Msg {
		path, ok := <-w.Paths()
		if !ok {
			return dropClosedMsg{}
		}
		return dropMsg{path: path}
	}
}

func exportCommand(c *controller.Controller, saver report.Saver) tea.Cmd {
	return func() tea.Msg {
		path, err := c.ExportReport(saver)
		return exportDoneMsg{path: path, err: err}
	}
}
