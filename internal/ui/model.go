package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yildizm/LungScan/internal/config"
	"github.com/yildizm/LungScan/internal/controller"
	"github.com/yildizm/LungScan/internal/emoji"
	"github.com/yildizm/LungScan/internal/input"
	"github.com/yildizm/LungScan/internal/logger"
	"github.com/yildizm/LungScan/internal/monitor"
	"github.com/yildizm/LungScan/internal/report"
	"github.com/yildizm/LungScan/internal/ui/components"
)

// Options wires the scan screen to its collaborators
type Options struct {
	Controller     *controller.Controller
	Prober         Prober
	Saver          report.Saver
	Watcher        *input.Watcher
	Endpoint       string
	InitialPath    string
	MaxUploadBytes int64
	ProbeTimeout   time.Duration
	Session        *monitor.Session
	Log            *logger.Logger
}

// Model is the interactive scan screen
type Model struct {
	opts   Options
	ctrl   *controller.Controller
	log    *logger.Logger
	styles *Styles

	ctx    context.Context
	cancel context.CancelFunc

	width    int
	height   int
	ready    bool
	quitting bool

	editing   bool
	pathInput []rune

	preview      *components.ImagePreview
	previewFor   *input.Selected
	probeErr     error
	status       string
	statusError  bool
	showHelp     bool
	spinnerFrame int
}

// NewModel creates the scan screen
func NewModel(opts Options) *Model {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Model{
		opts:   opts,
		ctrl:   opts.Controller,
		log:    log.WithComponent("ui"),
		styles: GetStyles(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Init starts the probe, the drop folder and any image given on the command line
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.opts.Prober != nil {
		cmds = append(cmds, probeCommand(m.opts.Prober, m.opts.ProbeTimeout))
	}
	if m.opts.Watcher != nil {
		cmds = append(cmds, waitForDrop(m.opts.Watcher))
	}
	if m.opts.InitialPath != "" {
		cmds = append(cmds, loadImageCommand(m.opts.InitialPath, m.opts.MaxUploadBytes))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.previewFor = nil
		m.refreshPreview()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.ctrl.Phase() == controller.PhaseLoading {
			m.spinnerFrame++
		}
		if m.quitting {
			return m, nil
		}
		return m, tick()

	case probeDoneMsg:
		m.probeErr = msg.err
		if msg.err != nil {
			m.log.Warn("prediction service unreachable: %v", msg.err)
		}
		return m, nil

	case imageLoadedMsg:
		m.handleImageLoaded(msg)
		return m, nil

	case dropMsg:
		m.log.Debug("image dropped: %s", msg.path)
		return m, tea.Batch(
			loadImageCommand(msg.path, m.opts.MaxUploadBytes),
			waitForDrop(m.opts.Watcher),
		)

	case dropClosedMsg:
		return m, nil

	case analysisDoneMsg:
		if err := m.ctrl.CompleteAnalysis(msg.req, msg.result, msg.err); errors.Is(err, controller.ErrStaleCompletion) {
			m.log.Debug("discarded result of a cancelled analysis")
		}
		return m, nil

	case exportDoneMsg:
		switch {
		case msg.err != nil:
			m.setStatus(fmt.Sprintf("%s %v", emoji.GetEmoji("error"), msg.err), true)
		case msg.path != "":
			m.setStatus(fmt.Sprintf("%s Report saved to %s", emoji.GetEmoji("report"), msg.path), false)
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "q":
		return m.quit()

	case "o", "/":
		phase := m.ctrl.Phase()
		if phase == controller.PhaseIdle || phase == controller.PhasePreviewing {
			m.editing = true
			m.pathInput = m.pathInput[:0]
		}

	case "a", "enter":
		req, err := m.ctrl.BeginAnalysis(m.ctx)
		if err != nil {
			return m, nil
		}
		m.spinnerFrame = 0
		m.clearStatus()
		return m, analyzeCommand(req)

	case "r":
		m.ctrl.Reset()
		m.preview = nil
		m.previewFor = nil
		m.clearStatus()

	case "e", "s":
		if m.ctrl.Phase() == controller.PhaseResultShown && m.opts.Saver != nil {
			return m, exportCommand(m.ctrl, m.opts.Saver)
		}

	case "x", "esc":
		m.ctrl.DismissNotice()
		m.clearStatus()

	case "?":
		m.showHelp = !m.showHelp
	}

	return m, nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		path := strings.TrimSpace(string(m.pathInput))
		if path == "" {
			return m, nil
		}
		return m, loadImageCommand(config.ExpandPath(path), m.opts.MaxUploadBytes)
	case tea.KeyEsc:
		m.editing = false
	case tea.KeyBackspace:
		if len(m.pathInput) > 0 {
			m.pathInput = m.pathInput[:len(m.pathInput)-1]
		}
	case tea.KeySpace:
		m.pathInput = append(m.pathInput, ' ')
	case tea.KeyRunes:
		m.pathInput = append(m.pathInput, msg.Runes...)
	}
	return m, nil
}

func (m *Model) handleImageLoaded(msg imageLoadedMsg) {
	if msg.err != nil {
		message := "Could not open " + filepath.Base(msg.path)
		if errors.Is(msg.err, input.ErrTooLarge) {
			message = filepath.Base(msg.path) + " exceeds the upload limit"
		}
		m.ctrl.ReportError(controller.KindInvalidInputType, message, msg.err)
		return
	}

	err := m.ctrl.SelectInput(msg.image)
	if errors.Is(err, controller.ErrPhaseLocked) {
		m.setStatus("Finish or reset the current scan before choosing another image", true)
		return
	}
	if err == nil {
		m.clearStatus()
	}
	m.refreshPreview()
}

// refreshPreview rebuilds the thumbnail when the selection or window changed
func (m *Model) refreshPreview() {
	in := m.ctrl.Input()
	if in == nil {
		m.preview = nil
		m.previewFor = nil
		return
	}
	if in == m.previewFor {
		return
	}

	cols, rows := 40, 12
	if m.width > 0 {
		cols = max(8, min(m.width-16, 60))
	}
	if m.height > 0 {
		rows = max(4, min(m.height-22, 16))
	}

	p, err := components.NewImagePreview(in.Data, cols, rows)
	if err != nil {
		m.log.Debug("no preview for %s: %v", in.Name, err)
	}
	m.preview = p
	m.previewFor = in
}

func (m *Model) setStatus(status string, isError bool) {
	m.status = status
	m.statusError = isError
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusError = false
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	return m, tea.Quit
}

// Screen returns the current render input
func (m *Model) Screen() Screen {
	watchDir := ""
	if m.opts.Watcher != nil {
		watchDir = m.opts.Watcher.Dir()
	}
	session := ""
	if m.opts.Session != nil {
		if sum := m.opts.Session.Summary(); sum.Analyses > 0 {
			session = sum.String()
		}
	}
	return Screen{
		State:        m.ctrl.Snapshot(),
		Preview:      m.preview,
		Endpoint:     m.opts.Endpoint,
		WatchDir:     watchDir,
		ProbeErr:     m.probeErr,
		Editing:      m.editing,
		PathInput:    string(m.pathInput),
		Status:       m.status,
		StatusError:  m.statusError,
		ShowHelp:     m.showHelp,
		Session:      session,
		SpinnerFrame: m.spinnerFrame,
		Width:        m.width,
		Height:       m.height,
	}
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return "Goodbye! " + emoji.GetEmoji("door") + "\n"
	}
	if !m.ready {
		return "Initializing..."
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, Render(m.Screen(), m.styles))
}

// Run runs the interactive scan screen until the user quits
func Run(opts Options) error {
	model := NewModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	model.cancel()
	return err
}
