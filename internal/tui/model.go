package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/compare"
	"github.com/rgehrsitz/taxsim/internal/config"
	"github.com/rgehrsitz/taxsim/internal/domain"
)

// Scene identifies the active view
type Scene int

const (
	ScenePolicies Scene = iota
	SceneDetail
	SceneLorenz
	SceneRanking
	SceneSweep
)

// Messages
type (
	// AnalysisReadyMsg carries the finished analysis into the model
	AnalysisReadyMsg struct {
		Config  *domain.Configuration
		Run     *calculation.AnalysisRun
		CompSet *compare.ComparisonSet
	}

	// ErrorMsg carries a load or analysis failure
	ErrorMsg struct {
		Err error
	}
)

// Model represents the entire application state
type Model struct {
	// Navigation
	currentScene Scene

	// Terminal dimensions
	width  int
	height int

	// Configuration and data
	configPath string
	config     *domain.Configuration

	// Analysis results
	run     *calculation.AnalysisRun
	compSet *compare.ComparisonSet

	// Current selection in the policy list
	selected int

	// Detail view shows deciles instead of the configured quantiles
	deciles bool

	// Loading state
	loading bool
	spinner spinner.Model

	// Error state
	err error
}

// NewModel creates a new application model
func NewModel(configPath string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SelectedItemStyle
	return Model{
		currentScene: ScenePolicies,
		configPath:   configPath,
		loading:      true,
		spinner:      sp,
		width:        80,
		height:       24,
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, analyzeCmd(m.configPath))
}

// analyzeCmd returns a command that loads the configuration and runs the
// full analysis off the UI loop
func analyzeCmd(path string) tea.Cmd {
	return func() tea.Msg {
		parser := config.NewInputParser()
		cfg, err := parser.LoadFromFile(path)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		engine := calculation.NewAnalysisEngine()
		run, err := engine.RunAll(cfg)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		compEngine := compare.NewCompareEngine(engine)
		compSet, err := compEngine.Compare(context.Background(), cfg)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		return AnalysisReadyMsg{Config: cfg, Run: run, CompSet: compSet}
	}
}
