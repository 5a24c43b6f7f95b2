package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// Dashboard panel indices.
const (
	panelPhases = iota
	panelSummary
	panelArtifacts
	panelCount
)

type dashboardKeyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultDashboardKeys() dashboardKeyMap {
	return dashboardKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch panel"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous panel"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous phase"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next phase"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k dashboardKeyMap) help() string {
	parts := make([]string, 0, 5)
	for _, b := range []key.Binding{k.Next, k.Up, k.Down, k.Refresh, k.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, " | ")
}

type dashboardModel struct {
	root        string
	keys        dashboardKeyMap
	refresh     time.Duration
	activePanel int
	cursor      int
	width       int
	height      int

	// Data.
	result      *scanResult
	fingerprint string
	loadedAt    time.Time

	// State.
	loading bool
	err     error
}

// dataLoadedMsg carries a finished scan back to the model.
type dataLoadedMsg struct {
	result      scanResult
	fingerprint string
	err         error
}

// refreshTickMsg triggers a periodic rescan.
type refreshTickMsg time.Time

// Panel styles.
var (
	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	cursorStyle = lipgloss.NewStyle().Reverse(true)
)

func newDashboardModel(root string, refresh time.Duration) dashboardModel {
	return dashboardModel{
		root:        root,
		keys:        defaultDashboardKeys(),
		refresh:     refresh,
		activePanel: panelPhases,
		cursor:      -1,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

// load scans the project in the background.
func (m dashboardModel) load() tea.Cmd {
	root := m.root
	return func() tea.Msg {
		res := scanProject(root)
		fp, err := fingerprint(res.Snapshot)
		return dataLoadedMsg{result: res, fingerprint: fp, err: err}
	}
}

func (m dashboardModel) tick() tea.Cmd {
	if m.refresh <= 0 {
		return nil
	}
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(models.AllPhases())-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.load()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(m.load(), m.tick())

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		res := msg.result
		m.result = &res
		m.fingerprint = msg.fingerprint
		m.loadedAt = time.Now()
		m.err = nil
		if m.cursor < 0 {
			m.cursor = max(res.Phases.CurrentPhase.Index(), 0)
		}
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" phasescope: " + m.root + " ")
	help := helpStyle.Render(m.keys.help())

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	if m.result == nil {
		return fmt.Sprintf("%s\n\n  Scanning project...\n\n%s", title, help)
	}

	phasesPanel := m.renderPhasesPanel()
	summaryPanel := m.renderSummaryPanel()
	artifactsPanel := m.renderArtifactsPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / 3
		phasesPanel = m.applyPanelStyle(panelPhases, phasesPanel, colWidth-4)
		summaryPanel = m.applyPanelStyle(panelSummary, summaryPanel, colWidth-4)
		artifactsPanel = m.applyPanelStyle(panelArtifacts, artifactsPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, phasesPanel, summaryPanel, artifactsPanel)
	} else {
		panelWidth := max(availableWidth-4, 20)
		phasesPanel = m.applyPanelStyle(panelPhases, phasesPanel, panelWidth)
		summaryPanel = m.applyPanelStyle(panelSummary, summaryPanel, panelWidth)
		artifactsPanel = m.applyPanelStyle(panelArtifacts, artifactsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, phasesPanel, summaryPanel, artifactsPanel)
	}

	status := fmt.Sprintf("fingerprint %s, scanned %s", shortFingerprint(m.fingerprint), m.loadedAt.Format("15:04:05"))
	if m.loading {
		status = "rescanning..."
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s", title, body, helpStyle.Render(status), help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderPhasesPanel() string {
	var b strings.Builder
	state := m.result.Phases
	b.WriteString(headerStyle.Render(fmt.Sprintf("Phases (%d/9)", state.CompletedCount())))
	b.WriteString("\n\n")

	for i, ps := range state.Phases {
		glyph, style := phaseMarker(ps)
		name := fmt.Sprintf("%-15s", ps.Phase)
		if ps.Phase == state.CurrentPhase {
			name = phaseCurrent.Render(name)
		}
		line := fmt.Sprintf(" %s %s", style.Render(glyph), name)
		if i == m.cursor && m.activePanel == panelPhases {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m dashboardModel) renderSummaryPanel() string {
	var b strings.Builder
	s := m.result.Summary
	b.WriteString(headerStyle.Render("Summary"))
	b.WriteString("\n\n")

	lines := []struct {
		label string
		value int
	}{
		{"Features", s.TotalFeatures},
		{"With design", s.FeaturesWithDesignSpec},
		{"Verified", s.VerifiedFeatures},
		{"Tasks", s.TotalTasks},
		{"Completed", s.CompletedTasks},
		{"Active", s.ActiveTasks},
		{"Blocked", s.BlockedTasks},
		{"Arch docs", s.ArchitectureDocs},
		{"Epics", s.Epics},
		{"E2E files", s.E2ETestFiles},
	}
	for _, l := range lines {
		fmt.Fprintf(&b, "  %-14s %d\n", l.label, l.value)
	}
	if s.TokenUsage.Records > 0 {
		fmt.Fprintf(&b, "  %-14s %d\n", "Tokens", s.TokenUsage.TotalTokens)
	}
	if s.VerificationOverride {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("  all features verified"))
	}
	return b.String()
}

// renderArtifactsPanel shows the evidence for the phase under the cursor.
func (m dashboardModel) renderArtifactsPanel() string {
	var b strings.Builder
	phases := m.result.Phases.Phases
	if m.cursor < 0 || m.cursor >= len(phases) {
		b.WriteString(headerStyle.Render("Artifacts"))
		b.WriteString("\n\n  No phase selected.")
		return b.String()
	}

	ps := phases[m.cursor]
	b.WriteString(headerStyle.Render("Artifacts: " + string(ps.Phase)))
	b.WriteString("\n\n")

	if len(ps.Artifacts) == 0 {
		b.WriteString("  No evidence found.")
		return b.String()
	}
	for _, a := range ps.Artifacts {
		fmt.Fprintf(&b, "  • %s\n", a)
	}
	return b.String()
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [root]",
	Short: "Interactive TUI dashboard for a project's pipeline",
	Long: `Launch an interactive terminal dashboard showing the nine phases, the
reconciled summary and the evidence for the selected phase, rescanning the
project every dashboard.refresh.

Navigate between panels with Tab, move through phases with the arrow keys,
refresh with r, quit with q.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := absRoot(rootArg(args))
		if err != nil {
			return err
		}
		refresh := 5 * time.Second
		if Config != nil {
			refresh = Config.Dashboard.Refresh
		}
		p := tea.NewProgram(newDashboardModel(root, refresh), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
