// Package vkbd runs the virtual keyboard in a terminal. Physical keys and
// mouse clicks on the drawn keys both drive the same keyboard state, and the
// suggestion chips are filled from a Predictor.
package vkbd

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robottwo/typeahead/pkg/keyboard"
	"go.uber.org/zap"
)

// ErrInterrupted is returned when the user presses Ctrl+C.
var ErrInterrupted = errors.New("interrupted by user")

// Clipboard access, replaced in tests.
var (
	writeClipboard = clipboard.WriteAll
	readClipboard  = clipboard.ReadAll
)

type appState int

const (
	Active appState = iota
	Terminated
)

type appModel struct {
	kb        *keyboard.Keyboard
	predictor Predictor
	analytics SuggestionAnalytics
	logger    *zap.Logger
	options   Options

	// pendingUps are the key releases of the last press, applied when
	// keyUpMsg for keyUpId arrives or when the next press flushes them.
	pendingUps []keyboard.Event
	keyUpId    int

	status      string
	interrupted bool
	appState    appState

	keys   keyMap
	help   help.Model
	styles styles
}

type keyUpMsg struct {
	id int
}

type predictionMsg struct {
	seq   uint64
	words []string
	err   error
}

type statusMsg string

type pasteMsg struct {
	text string
}

func initialModel(predictor Predictor, analytics SuggestionAnalytics, logger *zap.Logger, options Options) appModel {
	defaults := NewOptions()
	if options.PredictionTimeout <= 0 {
		options.PredictionTimeout = defaults.PredictionTimeout
	}
	if options.KeyUpDelay <= 0 {
		options.KeyUpDelay = defaults.KeyUpDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return appModel{
		kb: keyboard.New(keyboard.Options{
			Placeholder: options.Placeholder,
			Apology:     options.Apology,
		}),
		predictor: predictor,
		analytics: analytics,
		logger:    logger,
		options:   options,
		appState:  Active,
		keys:      defaultKeyMap,
		help:      help.New(),
		styles:    defaultStyles(),
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.SetWindowTitle("typeahead")
}

// predict runs req against the predictor under the prediction timeout.
func (m appModel) predict(req keyboard.Request) tea.Cmd {
	if m.predictor == nil {
		return func() tea.Msg {
			return predictionMsg{seq: req.Seq}
		}
	}

	predictor := m.predictor
	logger := m.logger
	timeout := m.options.PredictionTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		words, err := predictor.Predict(ctx, req.Text)
		if err != nil {
			logger.Warn("vkbd prediction failed", zap.Uint64("seq", req.Seq), zap.Error(err))
			return predictionMsg{seq: req.Seq, err: err}
		}

		logger.Debug("vkbd predicted words",
			zap.Uint64("seq", req.Seq),
			zap.Strings("words", words),
			zap.Duration("elapsed", time.Since(start)),
		)
		return predictionMsg{seq: req.Seq, words: words}
	}
}

// Run shows the keyboard until the user is done and returns the typed text.
func Run(predictor Predictor, analytics SuggestionAnalytics, logger *zap.Logger, options Options) (string, error) {
	programOptions := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if options.AltScreen {
		programOptions = append(programOptions, tea.WithAltScreen())
	}

	p := tea.NewProgram(initialModel(predictor, analytics, logger, options), programOptions...)

	m, err := p.Run()
	if err != nil {
		return "", err
	}

	appModel, ok := m.(appModel)
	if !ok {
		return "", errors.New("vkbd resulted in an unexpected app model")
	}
	if appModel.interrupted {
		return appModel.kb.Text(), ErrInterrupted
	}
	return appModel.kb.Text(), nil
}
