// Package tui provides the interactive Bubble Tea dashboard for finsight.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/finsight/internal/cli"
	"github.com/theirongolddev/finsight/internal/config"
	"github.com/theirongolddev/finsight/internal/model"
	"github.com/theirongolddev/finsight/internal/tui/components"
	"github.com/theirongolddev/finsight/internal/tui/theme"
	"github.com/theirongolddev/finsight/internal/txcache"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// dashboardMsg carries the result of a Dashboard call. The snapshot is
// whatever the cache holds afterwards, fetched or not.
type dashboardMsg struct {
	snap   model.DashboardSnapshot
	forced bool
}

type analyticsMsg struct {
	period  model.AnalyticsPeriod
	payload model.AnalyticsPayload
	err     error
}

type deleteMsg struct {
	id    string
	label string
	err   error
}

// changeMsg relays a cache notification, typically a background reconcile
// landing after a delete.
type changeMsg txcache.Change

type tickMsg time.Time

const (
	tabOverview = iota
	tabTransactions
	tabAnalytics
)

// App is the root Bubble Tea model.
type App struct {
	ctx         context.Context
	cache       *txcache.Cache
	changes     <-chan txcache.Change
	unsubscribe func()
	now         func() time.Time

	// Dashboard
	snap    model.DashboardSnapshot
	status  txcache.Status
	loaded  bool
	cursor  int
	flash   string
	pending *model.Transaction

	// Analytics
	period           model.AnalyticsPeriod
	analytics        model.AnalyticsPayload
	hasAnalytics     bool
	analyticsLoading bool
	analyticsErr     string
	showIncome       bool

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	currency  string
	spinner   spinner.Model

	// Modal forms
	confirmForm  *huh.Form
	confirmYes   *bool
	settingsForm *huh.Form
	settings     *settingsValues
	needSetup    bool
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 160

	chromeHeight     = 4 // header, blank line, blank line, status bar
	minContentHeight = 5
	minRefresh       = 10 * time.Second
)

// Options configures NewApp.
type Options struct {
	Cache  *txcache.Cache
	Config config.Config
	// NeedSetup opens the settings form before the dashboard.
	NeedSetup bool
	Now       func() time.Time
}

// loadConfigOrDefault loads config, returning defaults on error so the TUI
// can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

func refreshIntervalOf(secs int) time.Duration {
	d := time.Duration(secs) * time.Second
	if d < minRefresh {
		return 30 * time.Second
	}
	return d
}

// NewApp creates the TUI model. Call Close once the program exits.
func NewApp(opts Options) App {
	cfg := opts.Config
	theme.SetActive(cfg.Appearance.Theme)

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	changes, unsubscribe := opts.Cache.Subscribe()

	today := now()
	a := App{
		ctx:             context.Background(),
		cache:           opts.Cache,
		changes:         changes,
		unsubscribe:     unsubscribe,
		now:             now,
		period:          model.AnalyticsPeriod{Kind: model.Monthly, Year: today.Year(), Month: int(today.Month())},
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: refreshIntervalOf(cfg.TUI.RefreshIntervalSec),
		currency:        cfg.Appearance.Currency,
		spinner:         sp,
		settings:        settingsFromConfig(cfg),
		needSetup:       opts.NeedSetup,
	}
	if a.currency == "" {
		a.currency = config.DefaultConfig().Appearance.Currency
	}
	if a.needSetup {
		a.settingsForm = newSettingsForm(a.settings, true)
	}
	return a
}

// Close detaches the app from the cache.
func (a App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		loadDashboardCmd(a.ctx, a.cache, false),
		waitForChange(a.changes),
		a.spinner.Tick,
		tickCmd(),
	}
	if a.settingsForm != nil {
		cmds = append(cmds, a.settingsForm.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.settingsForm != nil {
			a.settingsForm = a.settingsForm.WithWidth(msg.Width)
		}
		return a, nil

	case tea.MouseMsg:
		if a.modalOpen() || a.showHelp {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabTransactions {
				a.moveCursor(-1)
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabTransactions {
				a.moveCursor(1)
			}
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X - headerWidth()); tab >= 0 {
					return a.switchTab(tab)
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.confirmForm != nil {
			return a.updateConfirmForm(msg)
		}
		if a.settingsForm != nil {
			return a.updateSettingsForm(msg)
		}
		return a.handleKey(msg)

	case dashboardMsg:
		a.refreshing = false
		a.loaded = true
		a.lastRefresh = a.now()
		a.snap = msg.snap
		a.status = a.cache.Status()
		if msg.forced && a.status.State != txcache.StateError {
			a.flash = "Refreshed " + cli.FormatNumber(int64(len(a.snap.Transactions))) + " transactions"
		}
		a.clampCursor()
		return a, nil

	case analyticsMsg:
		if msg.period != a.period {
			// The user moved on; the payload is still cached for later.
			return a, nil
		}
		a.analyticsLoading = false
		if msg.err != nil {
			a.analyticsErr = txcache.MsgAnalyticsFailed
			return a, nil
		}
		a.analyticsErr = ""
		a.analytics = msg.payload
		a.hasAnalytics = true
		return a, nil

	case deleteMsg:
		a.status = a.cache.Status()
		if msg.err != nil {
			a.flash = ""
			return a, nil
		}
		a.snap = a.cache.Snapshot()
		a.flash = "Deleted " + msg.label
		a.clampCursor()
		return a, a.spinner.Tick

	case changeMsg:
		a.status = msg.Status
		if msg.Kind == txcache.ChangeDashboard {
			a.snap = a.cache.Snapshot()
			a.clampCursor()
		}
		if a.status.Loading {
			return a, tea.Batch(waitForChange(a.changes), a.spinner.Tick)
		}
		return a, waitForChange(a.changes)

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && a.now().Sub(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, loadDashboardCmd(a.ctx, a.cache, false), a.spinner.Tick)
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to an open form (cursor blinks, etc.)
	if a.confirmForm != nil {
		return a.updateConfirmForm(msg)
	}
	if a.settingsForm != nil {
		return a.updateSettingsForm(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabTransactions:
		if next, cmd, ok := a.handleTransactionsKey(key); ok {
			return next, cmd
		}
	case tabAnalytics:
		if next, cmd, ok := a.handleAnalyticsKey(key); ok {
			return next, cmd
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		return a.refresh(false)
	case "f":
		return a.refresh(true)
	case "R":
		a.autoRefresh = !a.autoRefresh
		cfg := loadConfigOrDefault()
		cfg.TUI.AutoRefresh = a.autoRefresh
		_ = config.Save(cfg)
		return a, nil
	case "s":
		a.settings = settingsFromConfig(loadConfigOrDefault())
		a.settings.currency = a.currency
		a.settingsForm = newSettingsForm(a.settings, false)
		if a.width > 0 {
			a.settingsForm = a.settingsForm.WithWidth(a.width)
		}
		return a, a.settingsForm.Init()
	case "left", "shift+tab":
		return a.switchTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
	case "right", "tab":
		return a.switchTab((a.activeTab + 1) % len(components.Tabs))
	}

	if len(msg.Runes) == 1 {
		if tab := components.TabIdxByKey(msg.Runes[0]); tab >= 0 {
			return a.switchTab(tab)
		}
	}
	return a, nil
}

func (a App) handleTransactionsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g", "home":
		a.cursor = 0
	case "G", "end":
		a.cursor = max(len(a.snap.Transactions)-1, 0)
	case "d", "x", "delete":
		if len(a.snap.Transactions) == 0 {
			return a, nil, true
		}
		txn := a.snap.Transactions[a.cursor]
		a.pending = &txn
		a.confirmYes = new(bool)
		a.confirmForm = newConfirmForm(txn, a.currency, a.confirmYes)
		if a.width > 0 {
			a.confirmForm = a.confirmForm.WithWidth(a.width)
		}
		return a, a.confirmForm.Init(), true
	default:
		return a, nil, false
	}
	a.clampCursor()
	return a, nil, true
}

func (a App) handleAnalyticsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "1", "2", "3", "4":
		kind := model.PeriodKinds[key[0]-'1']
		a.period = periodOf(kind, a.now())
	case "[":
		a.period = shiftPeriod(a.period, -1)
	case "]":
		a.period = shiftPeriod(a.period, 1)
	case "i":
		a.showIncome = !a.showIncome
		return a, nil, true
	case "r":
	default:
		return a, nil, false
	}
	next, cmd := a.loadAnalytics()
	return next, cmd, true
}

func (a App) switchTab(tab int) (tea.Model, tea.Cmd) {
	a.activeTab = tab
	if tab == tabAnalytics && !a.hasAnalytics && !a.analyticsLoading {
		return a.loadAnalytics()
	}
	return a, nil
}

func (a App) refresh(force bool) (tea.Model, tea.Cmd) {
	if a.refreshing {
		return a, nil
	}
	a.refreshing = true
	a.flash = ""
	return a, tea.Batch(loadDashboardCmd(a.ctx, a.cache, force), a.spinner.Tick)
}

// loadAnalytics shows any cached payload for the selected period at once and
// always asks the server for a fresh one.
func (a App) loadAnalytics() (App, tea.Cmd) {
	if cached, ok := a.cache.AnalyticsEntry(a.period); ok {
		a.analytics = cached
		a.hasAnalytics = true
	} else {
		a.hasAnalytics = false
	}
	a.analyticsLoading = true
	a.analyticsErr = ""
	return a, tea.Batch(loadAnalyticsCmd(a.ctx, a.cache, a.period), a.spinner.Tick)
}

func (a App) updateConfirmForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.confirmForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.confirmForm = f
	}

	switch a.confirmForm.State {
	case huh.StateCompleted:
		a.confirmForm = nil
		if a.pending == nil || a.confirmYes == nil || !*a.confirmYes {
			a.pending = nil
			return a, nil
		}
		return a.startDelete()
	case huh.StateAborted:
		a.confirmForm = nil
		a.pending = nil
		return a, nil
	}
	return a, cmd
}

// startDelete issues the delete for the pending record.
func (a App) startDelete() (App, tea.Cmd) {
	txn := *a.pending
	a.pending = nil
	a.flash = "Deleting " + txn.Label() + "…"
	return a, tea.Batch(deleteCmd(a.ctx, a.cache, txn), a.spinner.Tick)
}

func (a App) updateSettingsForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.settingsForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.settingsForm = f
	}

	switch a.settingsForm.State {
	case huh.StateCompleted:
		a.settingsForm = nil
		a.needSetup = false
		if err := a.applySettings(); err != nil {
			a.flash = "Settings apply to this session only: " + err.Error()
		} else {
			a.flash = "Settings saved"
		}
		return a, nil
	case huh.StateAborted:
		a.settingsForm = nil
		a.needSetup = false
		return a, nil
	}
	return a, cmd
}

func (a App) modalOpen() bool {
	return a.confirmForm != nil || a.settingsForm != nil
}

func (a App) busy() bool {
	return !a.loaded || a.refreshing || a.analyticsLoading || a.status.Loading
}

func (a *App) moveCursor(delta int) {
	a.cursor += delta
	a.clampCursor()
}

func (a *App) clampCursor() {
	n := len(a.snap.Transactions)
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loadDashboardCmd(ctx context.Context, c *txcache.Cache, force bool) tea.Cmd {
	return func() tea.Msg {
		return dashboardMsg{snap: c.Dashboard(ctx, force), forced: force}
	}
}

func loadAnalyticsCmd(ctx context.Context, c *txcache.Cache, p model.AnalyticsPeriod) tea.Cmd {
	return func() tea.Msg {
		payload, err := c.Analytics(ctx, p)
		return analyticsMsg{period: p, payload: payload, err: err}
	}
}

func deleteCmd(ctx context.Context, c *txcache.Cache, txn model.Transaction) tea.Cmd {
	return func() tea.Msg {
		return deleteMsg{id: txn.ID, label: txn.Label(), err: c.DeleteTransaction(ctx, txn.ID)}
	}
}

// waitForChange blocks on the subscription. A closed channel ends the loop.
func waitForChange(ch <-chan txcache.Change) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return changeMsg(change)
	}
}

func newConfirmForm(txn model.Transaction, currency string, yes *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s (%s)?", txn.Label(), cli.FormatMoney(txn.Amount, currency))).
				Description(cli.FormatDate(txn.Date) + " · " + txn.Category()).
				Affirmative("Delete").
				Negative("Keep").
				Value(yes),
		),
	).WithShowHelp(false)
}

// ─── Periods ────────────────────────────────────────────────────

// periodOf returns the period of the given kind that contains now.
func periodOf(kind model.PeriodKind, now time.Time) model.AnalyticsPeriod {
	switch kind {
	case model.Monthly:
		return model.AnalyticsPeriod{Kind: kind, Year: now.Year(), Month: int(now.Month())}
	case model.Yearly:
		return model.AnalyticsPeriod{Kind: kind, Year: now.Year()}
	default:
		return model.AnalyticsPeriod{Kind: kind}
	}
}

// shiftPeriod steps a monthly or yearly period by delta units. Daily and
// all-time periods have no position to move.
func shiftPeriod(p model.AnalyticsPeriod, delta int) model.AnalyticsPeriod {
	switch p.Kind {
	case model.Monthly:
		t := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
		p.Year, p.Month = t.Year(), int(t.Month())
	case model.Yearly:
		p.Year += delta
	}
	return p
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > limit {
		lines = lines[:limit]
	}
	return strings.Join(lines, "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Count(s, "\n") + 1
	if lines >= h {
		return s
	}
	return s + strings.Repeat("\n", h-lines)
}

// tabAtX returns the tab index at the given X offset within the tab bar,
// or -1 if none. Hitboxes follow RenderTabBar's widths.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
