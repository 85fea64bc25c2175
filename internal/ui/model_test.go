package ui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/LungScan/internal/controller"
	"github.com/yildizm/LungScan/internal/emoji"
	"github.com/yildizm/LungScan/internal/input"
	"github.com/yildizm/LungScan/internal/monitor"
	"github.com/yildizm/LungScan/internal/predict"
	"github.com/yildizm/LungScan/internal/report"
)

type fakePredictor struct {
	result *predict.Result
	err    error
	calls  int
}

func (f *fakePredictor) Predict(ctx context.Context, name, mimeType string, data []byte) (*predict.Result, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.result, f.err
}

type fakeProber struct {
	err error
}

func (f fakeProber) Probe(ctx context.Context) error {
	return f.err
}

func TestMain(m *testing.M) {
	SetColorDisabled(true)
	emoji.SetEmojiDisabled(true)
	os.Exit(m.Run())
}

// xrayPNG encodes a small gradient image
func xrayPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 8)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func writeImage(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func pneumonia() *predict.Result {
	return &predict.Result{Label: predict.LabelPositive, Prediction: predict.PositivePrediction, Confidence: 0.87}
}

func newTestModel(p controller.Predictor, saver report.Saver) *Model {
	m := NewModel(Options{
		Controller: controller.New(p),
		Saver:      saver,
		Endpoint:   "http://localhost:8000/predict/",
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	return m
}

func keyPress(m *Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		msg = tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

// openImage types a path into the prompt and applies the load result
func openImage(t *testing.T, m *Model, path string) {
	t.Helper()
	keyPress(m, "o")
	if !m.editing {
		t.Fatal("Expected path prompt to open")
	}
	keyPress(m, path)
	cmd := keyPress(m, "enter")
	if cmd == nil {
		t.Fatal("Expected a load command")
	}
	m.Update(cmd())
}

func TestScanFlow(t *testing.T) {
	p := &fakePredictor{result: pneumonia()}
	saver := &report.MemorySaver{}
	m := newTestModel(p, saver)

	openImage(t, m, writeImage(t, "chest.png", xrayPNG(t)))

	if m.ctrl.Phase() != controller.PhasePreviewing {
		t.Fatalf("Expected previewing, got %s", m.ctrl.Phase())
	}
	if m.preview == nil || len(m.preview.Lines) == 0 {
		t.Fatal("Expected an image preview")
	}
	view := m.View()
	if !strings.Contains(view, "chest.png") || !strings.Contains(view, "32x32 png") {
		t.Errorf("Expected preview details in view:\n%s", view)
	}

	cmd := keyPress(m, "a")
	if m.ctrl.Phase() != controller.PhaseLoading {
		t.Fatalf("Expected loading, got %s", m.ctrl.Phase())
	}
	if !strings.Contains(m.View(), "Analyzing image") {
		t.Error("Expected spinner while loading")
	}
	if extra := keyPress(m, "a"); extra != nil {
		t.Error("Expected analyze to be ignored while loading")
	}

	m.Update(cmd())
	if m.ctrl.Phase() != controller.PhaseResultShown {
		t.Fatalf("Expected result, got %s", m.ctrl.Phase())
	}
	view = m.View()
	for _, want := range []string{"Pneumonia Detected", "87%", "[POS]"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected %q in result view:\n%s", want, view)
		}
	}
	if p.calls != 1 {
		t.Errorf("Expected one request, got %d", p.calls)
	}

	exportCmd := keyPress(m, "e")
	if exportCmd == nil {
		t.Fatal("Expected export command")
	}
	m.Update(exportCmd())
	if len(saver.Files) != 1 {
		t.Fatalf("Expected one saved report, got %d", len(saver.Files))
	}
	if !strings.Contains(m.status, "Report saved to pneumonia-report-") {
		t.Errorf("Unexpected status %q", m.status)
	}

	keyPress(m, "r")
	s := m.ctrl.Snapshot()
	if s.Phase != controller.PhaseIdle || s.Input != nil || s.Result != nil {
		t.Errorf("Expected clean idle state after reset, got %+v", s)
	}
	if m.preview != nil || m.status != "" {
		t.Error("Expected preview and status cleared after reset")
	}
}

func TestRejectsNonImage(t *testing.T) {
	m := newTestModel(&fakePredictor{}, nil)

	openImage(t, m, writeImage(t, "notes.png", []byte("plain text pretending to be a png")))

	if m.ctrl.Phase() != controller.PhaseIdle {
		t.Errorf("Expected idle, got %s", m.ctrl.Phase())
	}
	notice := m.ctrl.Notice()
	if notice == nil || notice.Kind != controller.KindInvalidInputType {
		t.Fatalf("Expected invalid type notice, got %v", notice)
	}
	if !strings.Contains(m.View(), "Please select a valid image file") {
		t.Error("Expected validation message in view")
	}

	keyPress(m, "x")
	if m.ctrl.Notice() != nil {
		t.Error("Expected notice dismissed")
	}
}

func TestMissingFileReportsError(t *testing.T) {
	m := newTestModel(&fakePredictor{}, nil)

	openImage(t, m, filepath.Join(t.TempDir(), "missing.png"))

	notice := m.ctrl.Notice()
	if notice == nil || notice.UserMessage() != "Could not open missing.png" {
		t.Errorf("Unexpected notice %v", notice)
	}
}

func TestAnalyzeWithoutImage(t *testing.T) {
	p := &fakePredictor{result: pneumonia()}
	m := newTestModel(p, nil)

	if cmd := keyPress(m, "a"); cmd != nil {
		t.Error("Expected no request without an image")
	}
	if !strings.Contains(m.View(), "Please select an image first") {
		t.Error("Expected no-input message")
	}
	if p.calls != 0 {
		t.Errorf("Expected no request, got %d", p.calls)
	}
}

func TestServiceErrorReturnsToPreview(t *testing.T) {
	p := &fakePredictor{err: predict.NewError(predict.ErrTypeService, "Invalid image format")}
	m := newTestModel(p, nil)
	openImage(t, m, writeImage(t, "chest.png", xrayPNG(t)))

	cmd := keyPress(m, "a")
	m.Update(cmd())

	if m.ctrl.Phase() != controller.PhasePreviewing {
		t.Errorf("Expected previewing, got %s", m.ctrl.Phase())
	}
	if m.ctrl.Input() == nil {
		t.Error("Expected image retained")
	}
	if !strings.Contains(m.View(), "Analysis failed: Invalid image format") {
		t.Error("Expected service error in view")
	}
}

func TestResetWhileLoadingDiscardsResult(t *testing.T) {
	m := newTestModel(&fakePredictor{result: pneumonia()}, nil)
	openImage(t, m, writeImage(t, "chest.png", xrayPNG(t)))

	cmd := keyPress(m, "a")
	keyPress(m, "r")
	m.Update(cmd())

	if m.ctrl.Phase() != controller.PhaseIdle || m.ctrl.Result() != nil {
		t.Error("Expected late result to be dropped after reset")
	}
}

func TestPathPromptEditing(t *testing.T) {
	m := newTestModel(&fakePredictor{}, nil)

	keyPress(m, "o")
	keyPress(m, "abc")
	keyPress(m, "backspace")
	if string(m.pathInput) != "ab" {
		t.Errorf("Expected ab, got %q", string(m.pathInput))
	}
	if !strings.Contains(m.View(), "Image path:") {
		t.Error("Expected path prompt in view")
	}

	// q is text while editing
	if cmd := keyPress(m, "q"); cmd != nil {
		t.Error("Expected q to be typed, not quit")
	}
	keyPress(m, "esc")
	if m.editing {
		t.Error("Expected prompt closed")
	}
	if cmd := keyPress(m, "enter"); cmd != nil {
		t.Error("Expected enter in idle to do nothing but notify")
	}
}

func TestProbeWarningBanner(t *testing.T) {
	m := newTestModel(&fakePredictor{}, nil)
	m.Update(probeDoneMsg{err: errors.New("connection refused")})

	if !strings.Contains(m.View(), "Cannot reach") {
		t.Error("Expected probe warning")
	}
	if m.ctrl.Phase() != controller.PhaseIdle {
		t.Error("Probe failure must not change phase")
	}

	m.Update(probeDoneMsg{})
	if strings.Contains(m.View(), "Cannot reach") {
		t.Error("Expected warning cleared by a successful probe")
	}
}

func TestInitCommands(t *testing.T) {
	m := NewModel(Options{
		Controller: controller.New(&fakePredictor{}),
		Prober:     fakeProber{},
	})
	if m.Init() == nil {
		t.Error("Expected init commands")
	}
	if m.View() != "Initializing..." {
		t.Error("Expected initializing view before the first resize")
	}
}

func TestDroppedImageIsSelected(t *testing.T) {
	dir := t.TempDir()
	w, err := input.NewWatcher(dir, 0, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	m := NewModel(Options{Controller: controller.New(&fakePredictor{}), Watcher: w})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	if !strings.Contains(m.View(), "Drop images into") {
		t.Error("Expected drop folder hint")
	}

	path := filepath.Join(dir, "drop.png")
	if err := os.WriteFile(path, xrayPNG(t), 0o600); err != nil {
		t.Fatal(err)
	}

	msg := waitForDrop(w)()
	drop, ok := msg.(dropMsg)
	if !ok {
		t.Fatalf("Expected dropMsg, got %T", msg)
	}
	m.Update(loadImageCommand(drop.path, 0)())

	if in := m.ctrl.Input(); in == nil || in.Name != "drop.png" {
		t.Errorf("Expected drop.png selected, got %+v", in)
	}
}

func TestDroppedUnsupportedFileShowsNotice(t *testing.T) {
	dir := t.TempDir()
	w, err := input.NewWatcher(dir, 0, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	m := NewModel(Options{Controller: controller.New(&fakePredictor{}), Watcher: w})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("shopping list"), 0o600); err != nil {
		t.Fatal(err)
	}

	msg := waitForDrop(w)()
	drop, ok := msg.(dropMsg)
	if !ok {
		t.Fatalf("Expected dropMsg, got %T", msg)
	}
	m.Update(loadImageCommand(drop.path, 0)())

	if m.ctrl.Phase() != controller.PhaseIdle {
		t.Errorf("Expected idle, got %s", m.ctrl.Phase())
	}
	if !strings.Contains(m.View(), "Please select a valid image file") {
		t.Errorf("Expected validation message in view:\n%s", m.View())
	}
}

func TestSessionLine(t *testing.T) {
	session := monitor.NewSession()
	m := NewModel(Options{
		Controller: controller.New(&fakePredictor{result: pneumonia()}, controller.WithSession(session)),
		Session:    session,
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})

	if strings.Contains(m.View(), "Session:") {
		t.Error("Expected no session line before the first scan")
	}

	openImage(t, m, writeImage(t, "chest.png", xrayPNG(t)))
	cmd := keyPress(m, "a")
	m.Update(cmd())

	if !strings.Contains(m.View(), "Session: 1 scan: 1 pneumonia, 0 normal, 0 failed") {
		t.Errorf("Expected session summary in view:\n%s", m.View())
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(&fakePredictor{}, nil)
	if cmd := keyPress(m, "q"); cmd == nil {
		t.Error("Expected quit command")
	}
	if !m.quitting || m.ctx.Err() == nil {
		t.Error("Expected quitting state and cancelled context")
	}
}
