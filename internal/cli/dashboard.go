package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/skill-brain/pkg/models"
)

// Dashboard panel indices.
const (
	panelSessions = iota
	panelRules
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	sessions []sessionRow
	rules    []ruleRow

	// State.
	loading bool
	err     error
	watcher *fsnotify.Watcher
}

type sessionRow struct {
	id      string
	skills  int
	files   int
	domains []string
	updated time.Time
}

type ruleRow struct {
	name     string
	strategy string
	priority string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	sessions []sessionRow
	rules    []ruleRow
	err      error
}

// storeChangedMsg signals that the session store file changed on disk.
type storeChangedMsg struct{}

// Style definitions.
var (
	dashTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	dashPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	dashActivePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	dashHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	strategyGuaranteed = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	strategySuggestive = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	strategyNative     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	dashHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(watcher *fsnotify.Watcher) dashboardModel {
	return dashboardModel{
		activePanel: panelSessions,
		loading:     true,
		watcher:     watcher,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(loadDashboardData, m.waitForStoreChange())
}

// waitForStoreChange blocks on the fsnotify channel so the dashboard
// refreshes the moment a hook invocation commits new state.
func (m dashboardModel) waitForStoreChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-m.watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					return storeChangedMsg{}
				}
			case _, ok := <-m.watcher.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadDashboardData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case storeChangedMsg:
		return m, tea.Batch(loadDashboardData, m.waitForStoreChange())

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.sessions = msg.sessions
		m.rules = msg.rules
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := dashTitleStyle.Render(" Skill Brain Dashboard ")
	help := dashHelpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	sessionsPanel := m.renderSessionsPanel()
	rulesPanel := m.renderRulesPanel()

	availableWidth := m.width - 2

	var body string
	if availableWidth > 100 {
		colWidth := availableWidth / 2
		sessionsPanel = m.applyPanelStyle(panelSessions, sessionsPanel, colWidth-4)
		rulesPanel = m.applyPanelStyle(panelRules, rulesPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, sessionsPanel, rulesPanel)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		sessionsPanel = m.applyPanelStyle(panelSessions, sessionsPanel, panelWidth)
		rulesPanel = m.applyPanelStyle(panelRules, rulesPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, sessionsPanel, rulesPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := dashPanelStyle
	if m.activePanel == panel {
		style = dashActivePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderSessionsPanel() string {
	var b strings.Builder
	b.WriteString(dashHeaderStyle.Render("Sessions"))
	b.WriteString("\n")

	if len(m.sessions) == 0 {
		b.WriteString("  No sessions tracked.")
		return b.String()
	}

	for _, s := range m.sessions {
		b.WriteString(fmt.Sprintf("  %-20s %d skills, %d files\n", truncateID(s.id), s.skills, s.files))
		if len(s.domains) > 0 {
			b.WriteString(dashHelpStyle.Render(fmt.Sprintf("    %s", strings.Join(s.domains, ", "))))
			b.WriteString("\n")
		}
	}
	b.WriteString(fmt.Sprintf("\n  Total: %d session(s)", len(m.sessions)))

	return b.String()
}

func (m dashboardModel) renderRulesPanel() string {
	var b strings.Builder
	b.WriteString(dashHeaderStyle.Render("Rules"))
	b.WriteString("\n")

	if len(m.rules) == 0 {
		b.WriteString("  No rules configured.")
		return b.String()
	}

	for _, r := range m.rules {
		label := fmt.Sprintf("  %-24s %s/%s", r.name, r.strategy, r.priority)
		b.WriteString(styleForStrategy(r.strategy).Render(label))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n  Total: %d rule(s)", len(m.rules)))

	return b.String()
}

func styleForStrategy(strategy string) lipgloss.Style {
	switch strategy {
	case string(models.StrategyGuaranteed):
		return strategyGuaranteed
	case string(models.StrategySuggestive):
		return strategySuggestive
	case string(models.StrategyNativeOnly):
		return strategyNative
	default:
		return lipgloss.NewStyle()
	}
}

func truncateID(id string) string {
	if len(id) > 20 {
		return id[:17] + "..."
	}
	return id
}

func loadDashboardData() tea.Msg {
	result := dataLoadedMsg{}

	if StateMgr != nil {
		doc, err := StateMgr.Snapshot()
		if err != nil {
			result.err = fmt.Errorf("loading session store: %w", err)
			return result
		}
		for id, rec := range doc.Sessions {
			result.sessions = append(result.sessions, sessionRow{
				id:      id,
				skills:  len(rec.ActivatedSkills),
				files:   len(rec.ModifiedFiles),
				domains: rec.ActiveDomains,
				updated: time.UnixMilli(rec.UpdatedAt),
			})
		}
		sort.Slice(result.sessions, func(i, j int) bool {
			return result.sessions[i].updated.After(result.sessions[j].updated)
		})
	}

	if RulesMgr != nil {
		cfg, err := RulesMgr.Load()
		if err != nil {
			result.err = fmt.Errorf("loading rules: %w", err)
			return result
		}
		for _, name := range cfg.SkillOrder {
			rule, ok := cfg.Skills[name]
			if !ok {
				continue
			}
			result.rules = append(result.rules, ruleRow{
				name:     name,
				strategy: string(rule.ActivationStrategy),
				priority: string(rule.Priority),
			})
		}
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for sessions and rules",
	Long: `Launch an interactive terminal dashboard showing tracked sessions and
configured rules in a live-updating view. The view refreshes whenever a
hook invocation commits new session state.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if StateMgr == nil {
			return fmt.Errorf("session state not initialized")
		}

		// Watch the store's directory: the atomic rename that commits
		// state replaces the file, so watching the file itself would
		// lose the watch after the first write.
		watcher, err := fsnotify.NewWatcher()
		if err == nil {
			if addErr := watcher.Add(storeDir()); addErr != nil {
				_ = watcher.Close()
				watcher = nil
			}
			if watcher != nil {
				defer func() { _ = watcher.Close() }()
			}
		} else {
			watcher = nil
		}

		p := tea.NewProgram(newDashboardModel(watcher), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func storeDir() string {
	return filepath.Dir(StateMgr.StorePath())
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
