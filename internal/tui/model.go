package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/flytta/internal/domain"
	"github.com/hylla/flytta/internal/drag"
)

// Service represents the application surface the board model needs. It is
// satisfied by *app.Service.
type Service interface {
	ListBoards(context.Context, bool) ([]domain.Board, error)
	LoadBoard(context.Context, string) (domain.Board, []domain.Column, []domain.Task, error)
	drag.Store
}

// loadedMsg carries a full board reload result.
type loadedMsg struct {
	boards  []domain.Board
	board   domain.Board
	columns []domain.Column
	tasks   []domain.Task
	err     error
}

// actionMsg carries the outcome of a one-shot side effect.
type actionMsg struct {
	status string
	err    error
}

// refreshTickMsg drives the periodic board reload.
type refreshTickMsg struct{}

// refreshInterval is how often the board is reloaded from storage when no
// drag is active and no cooldown is pending.
const refreshInterval = 5 * time.Second

// dragFeedback receives engine notifications. It lives behind a pointer so
// the engine keeps writing into the same instance while bubbletea copies the
// model value around.
type dragFeedback struct {
	dragging bool
	entity   drag.Dragged
	tabHover bool
	saving   bool
	preview  *drag.InsertPreview
}

func (f *dragFeedback) DragStarted(d drag.Dragged) {
	f.dragging = true
	f.entity = d
}

func (f *dragFeedback) DragEnded() {
	f.dragging = false
	f.entity = drag.Dragged{}
	f.tabHover = false
	f.saving = false
	f.preview = nil
}

func (f *dragFeedback) TabHoverChanged(hovering bool) {
	f.tabHover = hovering
}

func (f *dragFeedback) PreviewChanged(preview *drag.InsertPreview) {
	f.preview = preview
}

func (f *dragFeedback) SavingChanged(saving bool) {
	f.saving = saving
}

// Model represents the mouse-driven board UI.
type Model struct {
	svc  Service
	keys keyMap
	help help.Model
	md   *markdownRenderer

	state    *drag.BoardState
	regions  *drag.Regions
	exec     *drag.Executor
	ctrl     *drag.Controller
	feedback *dragFeedback
	layout   *boardLayout

	boards        []domain.Board
	activeBoardID string

	width  int
	height int
	ready  bool
	err    error
	status string

	selectedTaskID string
	pressed        drag.Point
	dragMoved      bool
	showPeek       bool

	taskFields   TaskFieldConfig
	tuning       DragTuning
	refreshEvery time.Duration
	logger       drag.Logger
}

// NewModel constructs the board model and wires the drag engine around the
// given service.
func NewModel(svc Service, opts ...Option) Model {
	m := Model{
		svc:          svc,
		keys:         newKeyMap(),
		help:         help.New(),
		md:           &markdownRenderer{},
		state:        drag.NewBoardState(domain.Board{}, nil, nil),
		regions:      drag.NewRegions(),
		feedback:     &dragFeedback{},
		layout:       &boardLayout{},
		status:       "loading...",
		taskFields:   DefaultTaskFieldConfig(),
		tuning:       DefaultDragTuning(),
		refreshEvery: refreshInterval,
		logger:       drag.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}

	m.exec = drag.NewExecutor(svc, m.state,
		drag.WithCooldown(m.tuning.Cooldown),
		drag.WithExecutorLogger(m.logger),
	)
	m.ctrl = drag.NewController(m.exec, m.state, m.regions, m.layout,
		drag.WithSink(m.feedback),
		drag.WithLogger(m.logger),
		drag.WithAllocator(drag.Allocator{Gap: m.tuning.GapUnit, TieBreak: m.tuning.TieBreak}),
		drag.WithEpsilon(m.tuning.Epsilon),
		drag.WithTabMargin(m.tuning.TabMargin),
		drag.WithHoverDebounce(m.tuning.HoverDebounce),
	)
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	if m.refreshEvery <= 0 {
		return m.loadData
	}
	return tea.Batch(m.loadData, m.scheduleRefresh())
}

// scheduleRefresh schedules the next periodic board reload.
func (m Model) scheduleRefresh() tea.Cmd {
	if m.refreshEvery <= 0 {
		return nil
	}
	return tea.Tick(m.refreshEvery, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// loadData reloads the board list and the active board's columns and tasks.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	boards, err := m.svc.ListBoards(ctx, false)
	if err != nil {
		return loadedMsg{err: err}
	}
	if len(boards) == 0 {
		return loadedMsg{err: fmt.Errorf("no boards available")}
	}
	boardID := m.activeBoardID
	found := false
	for _, board := range boards {
		if board.ID == boardID {
			found = true
			break
		}
	}
	if !found {
		boardID = boards[0].ID
	}
	board, columns, tasks, err := m.svc.LoadBoard(ctx, boardID)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{boards: boards, board: board, columns: columns, tasks: tasks}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildLayout()
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.boards = msg.boards
		m.activeBoardID = msg.board.ID
		m.state.Replace(msg.board, msg.columns, msg.tasks)
		m.rebuildLayout()
		if _, ok := m.state.Task(m.selectedTaskID); !ok {
			m.selectedTaskID = ""
			m.showPeek = false
		}
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		return m, nil

	case refreshTickMsg:
		// A reload during a drag or inside the post-commit cooldown would
		// snap the optimistic state back before the write settles.
		if m.ctrl.Dragging() || !m.refreshAllowed() {
			return m, m.scheduleRefresh()
		}
		return m, tea.Batch(m.loadData, m.scheduleRefresh())

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMousePress(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// handleKey handles handle key.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.closePeek):
		if m.showPeek {
			m.showPeek = false
			m.status = "ready"
		} else if m.help.ShowAll {
			m.help.ShowAll = false
		}
		return m, nil

	case key.Matches(msg, m.keys.reload):
		if !m.refreshAllowed() {
			m.status = "recent move still settling, refresh skipped"
			return m, nil
		}
		m.status = "loading..."
		return m, m.loadData

	case key.Matches(msg, m.keys.nextBoard):
		return m.switchBoard(1)

	case key.Matches(msg, m.keys.prevBoard):
		return m.switchBoard(-1)

	case key.Matches(msg, m.keys.peek):
		if task, ok := m.state.Task(m.selectedTaskID); ok {
			m.showPeek = true
			m.status = "peek: " + task.Title
		}
		return m, nil

	case key.Matches(msg, m.keys.yank):
		if task, ok := m.state.Task(m.selectedTaskID); ok {
			return m, yankTaskCmd(task)
		}
		return m, nil
	}
	return m, nil
}

// switchBoard activates the board offset tabs away from the current one.
func (m Model) switchBoard(offset int) (tea.Model, tea.Cmd) {
	if len(m.boards) < 2 {
		return m, nil
	}
	idx := 0
	for i, board := range m.boards {
		if board.ID == m.activeBoardID {
			idx = i
			break
		}
	}
	idx = (idx + offset + len(m.boards)) % len(m.boards)
	m.activeBoardID = m.boards[idx].ID
	m.status = "loading..."
	return m, m.loadData
}

// handleMousePress routes a left press: board tabs switch boards, task cards
// and column headers open a drag session.
func (m Model) handleMousePress(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft {
		return m, nil
	}
	if m.showPeek {
		m.showPeek = false
		return m, nil
	}
	p := drag.Point{X: float64(msg.X), Y: float64(msg.Y)}

	if boardID, ok := m.layout.tabAt(p); ok {
		if boardID != m.activeBoardID {
			m.activeBoardID = boardID
			m.status = "loading..."
			return m, m.loadData
		}
		return m, nil
	}

	if taskID, ok := m.layout.taskAt(p); ok {
		m.selectedTaskID = taskID
		m.pressed = p
		m.dragMoved = false
		if err := m.ctrl.Start(drag.Dragged{Kind: drag.EntityTask, ID: taskID}); err != nil {
			m.status = err.Error()
		}
		return m, nil
	}

	if columnID, ok := m.layout.columnHeaderAt(p); ok {
		m.pressed = p
		m.dragMoved = false
		if err := m.ctrl.Start(drag.Dragged{Kind: drag.EntityColumn, ID: columnID}); err != nil {
			m.status = err.Error()
		}
		return m, nil
	}
	return m, nil
}

// handleMouseMotion feeds pointer moves into the active drag session.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.ctrl.Dragging() {
		return m, nil
	}
	p := drag.Point{X: float64(msg.X), Y: float64(msg.Y)}
	if p != m.pressed {
		m.dragMoved = true
	}
	m.ctrl.Over(p)
	return m, nil
}

// handleMouseRelease commits or cancels the active drag session. A release
// without any pointer travel is a plain click, not a move.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft || !m.ctrl.Dragging() {
		return m, nil
	}
	ctx := context.Background()
	if !m.dragMoved {
		// Dropping far outside every region resolves to nothing and only
		// runs session cleanup.
		_ = m.ctrl.Drop(ctx, drag.Point{X: -1, Y: -1e6})
		return m, nil
	}

	p := drag.Point{X: float64(msg.X), Y: float64(msg.Y)}
	if err := m.ctrl.Drop(ctx, p); err != nil {
		m.status = "move failed: " + err.Error()
	} else {
		m.status = "saved"
	}
	m.rebuildLayout()
	return m, nil
}

// refreshAllowed reports whether no recently moved region is still inside
// its refresh cooldown window.
func (m Model) refreshAllowed() bool {
	if !m.exec.RefreshAllowed(m.activeBoardID) {
		return false
	}
	for _, column := range m.state.Columns() {
		if !m.exec.RefreshAllowed(column.ID) {
			return false
		}
	}
	return true
}

// rebuildLayout recomputes frame geometry and re-registers all drop regions.
func (m *Model) rebuildLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.layout.rebuild(m.boards, m.state, m.width, m.height)
	m.layout.register(m.regions, m.activeBoardID)
}

// yankTaskCmd copies the task ID to the system clipboard.
func yankTaskCmd(task domain.Task) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(task.ID); err != nil {
			return actionMsg{err: fmt.Errorf("yank: %w", err)}
		}
		return actionMsg{status: "yanked " + task.ID}
	}
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.viewContent())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// viewContent renders the full frame as plain text.
func (m Model) viewContent() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	}
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	sections := []string{
		m.renderTabs(accent, muted),
		"",
	}

	areaHeight := int(m.layout.boardArea.Height()) + 1
	if m.showPeek {
		sections = append(sections, fitLines(m.renderPeek(accent, muted), areaHeight))
	} else {
		sections = append(sections, fitLines(m.renderColumns(accent, muted, dim), areaHeight))
	}

	sections = append(sections, m.renderStatus(muted))

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	sections = append(sections, lipgloss.NewStyle().Foreground(muted).Render(helpBubble.View(m.keys)))

	return strings.Join(sections, "\n")
}

// renderTabs renders the board tab bar.
func (m Model) renderTabs(accent, muted color.Color) string {
	active := lipgloss.NewStyle().Bold(true).Background(accent).Foreground(lipgloss.Color("255"))
	inactive := lipgloss.NewStyle().Foreground(muted)
	hover := lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true)

	parts := make([]string, 0, len(m.layout.tabs))
	for _, tab := range m.layout.tabs {
		style := inactive
		switch {
		case tab.boardID == m.activeBoardID:
			style = active
		case m.feedback.tabHover:
			style = hover
		}
		parts = append(parts, style.Render(tab.label))
	}
	return strings.Join(parts, " ")
}

// renderColumns renders every column side by side.
func (m Model) renderColumns(accent, muted, dim color.Color) string {
	if len(m.layout.columns) == 0 {
		return "no columns on this board"
	}
	rendered := make([]string, 0, len(m.layout.columns)*2)
	for idx, cl := range m.layout.columns {
		if idx > 0 {
			rendered = append(rendered, " ")
		}
		rendered = append(rendered, m.renderColumn(cl, accent, muted, dim))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderColumn renders one column box matching its layout rectangle.
func (m Model) renderColumn(cl columnLayout, accent, muted, dim color.Color) string {
	width := m.layout.columnWidth
	height := int(cl.bounds.Height()) + 1
	inner := max(1, width-2)

	column, _ := m.state.Column(cl.columnID)
	tasks := m.state.ColumnTasks(cl.columnID)

	borderStyle := lipgloss.NewStyle().Foreground(dim)
	headerStyle := lipgloss.NewStyle().Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(muted)
	markerStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	markerTaskID, markerBottom := m.previewMarker(cl.columnID, tasks)

	lines := make([]string, 0, height)
	lines = append(lines, borderStyle.Render("╭"+strings.Repeat("─", inner)+"╮"))
	header := truncate(fmt.Sprintf("%s (%d)", column.Name, len(tasks)), inner-2)
	lines = append(lines, boxRow(headerStyle.Render(padRight(" "+header+" ", inner)), borderStyle))

	for _, task := range tasks {
		if len(lines)+taskCardRows >= height {
			break
		}
		titlePrefix := "  "
		titleStyle := lipgloss.NewStyle()
		if task.ID == m.selectedTaskID {
			titleStyle = titleStyle.Bold(true)
		}
		if m.feedback.dragging && m.feedback.entity.Kind == drag.EntityTask && m.feedback.entity.ID == task.ID {
			titleStyle = titleStyle.Foreground(dim)
		}
		if task.ID == markerTaskID {
			titlePrefix = markerStyle.Render("▸ ")
		}
		title := truncate(task.Title, inner-2)
		lines = append(lines, boxRow(titlePrefix+titleStyle.Render(padRight(title, inner-2)), borderStyle))
		lines = append(lines, boxRow("  "+metaStyle.Render(padRight(truncate(m.taskMeta(task), inner-2), inner-2)), borderStyle))
	}

	for len(lines) < height-1 {
		lines = append(lines, boxRow(strings.Repeat(" ", inner), borderStyle))
	}
	bottom := "╰" + strings.Repeat("─", inner) + "╯"
	if markerBottom {
		lines = append(lines, markerStyle.Render(bottom))
	} else {
		lines = append(lines, borderStyle.Render(bottom))
	}
	return strings.Join(lines[:min(len(lines), height)], "\n")
}

// previewMarker maps the active insertion preview onto the task card (or
// column bottom) that should carry the insertion indicator.
func (m Model) previewMarker(columnID string, tasks []domain.Task) (string, bool) {
	preview := m.feedback.preview
	if preview == nil || preview.ColumnID != columnID {
		return "", false
	}
	others := tasks
	if m.feedback.entity.Kind == drag.EntityTask {
		others = excludeTaskList(tasks, m.feedback.entity.ID)
	}
	if preview.Index >= len(others) {
		return "", true
	}
	return others[preview.Index].ID, false
}

// taskMeta renders the card meta row for the enabled fields.
func (m Model) taskMeta(task domain.Task) string {
	parts := []string{}
	if m.taskFields.ShowPriority {
		parts = append(parts, string(task.Priority))
	}
	if m.taskFields.ShowDueDate && task.DueAt != nil {
		parts = append(parts, task.DueAt.Format("Jan 2"))
	}
	if m.taskFields.ShowLabels {
		if labels := summarizeLabels(task.Labels, 2); labels != "" {
			parts = append(parts, labels)
		}
	}
	return strings.Join(parts, " · ")
}

// renderPeek renders the task detail panel for the selected task.
func (m Model) renderPeek(accent, muted color.Color) string {
	task, ok := m.state.Task(m.selectedTaskID)
	if !ok {
		return "task not found"
	}
	width := max(24, m.width-4)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	metaStyle := lipgloss.NewStyle().Foreground(muted)

	sections := []string{
		titleStyle.Render(task.Title),
		metaStyle.Render(m.taskMeta(task)),
		"",
	}
	if body := m.md.render(task.Description, width); body != "" {
		sections = append(sections, body)
	} else {
		sections = append(sections, metaStyle.Render("no description"))
	}
	sections = append(sections, "", metaStyle.Render("esc to close • y to yank id"))
	return strings.Join(sections, "\n")
}

// renderStatus renders the one-line status footer.
func (m Model) renderStatus(muted color.Color) string {
	status := m.status
	switch {
	case m.feedback.saving:
		status = "saving..."
	case m.feedback.tabHover:
		status = "release to move task to the hovered board"
	case m.feedback.dragging && m.feedback.entity.Kind == drag.EntityColumn:
		status = "dragging column"
	case m.feedback.dragging:
		if task, ok := m.state.Task(m.feedback.entity.ID); ok {
			status = "dragging: " + task.Title
		} else {
			status = "dragging"
		}
	}
	return lipgloss.NewStyle().Foreground(muted).Render(truncate(status, max(0, m.width)))
}

// boxRow wraps one content row in column side borders.
func boxRow(content string, border lipgloss.Style) string {
	edge := border.Render("│")
	return edge + content + edge
}

// padRight pads the string with spaces up to width display cells.
func padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) >= width {
		return string(rs[:width])
	}
	return s + strings.Repeat(" ", width-len(rs))
}

// excludeTaskList filters the task with the given ID out of the list.
func excludeTaskList(tasks []domain.Task, taskID string) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != taskID {
			out = append(out, t)
		}
	}
	return out
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// max returns the larger of the provided values.
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// min returns the smaller of the provided values.
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}

// summarizeLabels summarizes labels.
func summarizeLabels(labels []string, maxLabels int) string {
	if len(labels) == 0 {
		return ""
	}
	if maxLabels <= 0 {
		maxLabels = 1
	}
	visible := labels
	extra := 0
	if len(labels) > maxLabels {
		visible = labels[:maxLabels]
		extra = len(labels) - maxLabels
	}
	joined := "#" + strings.Join(visible, ",#")
	if extra > 0 {
		joined += fmt.Sprintf("+%d", extra)
	}
	return joined
}
