package drag

import (
	"context"
	"fmt"
	"math"

	"github.com/hylla/flytta/internal/domain"
)

// Controller drives a drag operation from start through hover tracking to
// drop. It owns the session state for exactly one drag at a time: Idle
// until Start, Dragging until Drop, and back to Idle on every exit path
// regardless of outcome. Callbacks run synchronously in arrival order; the
// only suspension point is the durable write inside the executor.
type Controller struct {
	exec    *Executor
	state   *BoardState
	regions *Regions
	measure TabBarMeasurer

	precise HitTester
	coarse  HitTester

	alloc         Allocator
	epsilon       float64
	tabMargin     float64
	hoverDebounce int

	sink StateSink
	log  Logger

	session *session
}

// session is the ephemeral per-drag state. It is created on Start and
// destroyed unconditionally on every drop path so nothing leaks into the
// next drag.
type session struct {
	dragged        Dragged
	sourceColumnID string
	hover          *TabHoverDetector
	preview        *InsertPreview
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithSink sets the UI notification sink.
func WithSink(sink StateSink) ControllerOption {
	return func(c *Controller) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(log Logger) ControllerOption {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithAllocator overrides position allocation parameters.
func WithAllocator(alloc Allocator) ControllerOption {
	return func(c *Controller) {
		c.alloc = alloc
	}
}

// WithEpsilon overrides the minimal position delta treated as a real move.
func WithEpsilon(epsilon float64) ControllerOption {
	return func(c *Controller) {
		if epsilon > 0 {
			c.epsilon = epsilon
		}
	}
}

// WithTabMargin overrides how far above the measured tab bar the hover
// region extends.
func WithTabMargin(margin float64) ControllerOption {
	return func(c *Controller) {
		if margin >= 0 {
			c.tabMargin = margin
		}
	}
}

// WithHoverDebounce overrides the tab-hover debounce sample count.
func WithHoverDebounce(samples int) ControllerOption {
	return func(c *Controller) {
		if samples > 0 {
			c.hoverDebounce = samples
		}
	}
}

// WithHitTesters overrides the precise and coarse hit-test primitives.
func WithHitTesters(precise, coarse HitTester) ControllerOption {
	return func(c *Controller) {
		if precise != nil {
			c.precise = precise
		}
		if coarse != nil {
			c.coarse = coarse
		}
	}
}

// NewController constructs a controller over the executor, board state and
// region registry. measure may be nil when the host has no tab bar.
func NewController(exec *Executor, state *BoardState, regions *Regions, measure TabBarMeasurer, opts ...ControllerOption) *Controller {
	c := &Controller{
		exec:          exec,
		state:         state,
		regions:       regions,
		measure:       measure,
		precise:       PointerWithin{},
		coarse:        NearestCorners{MaxDistance: DefaultCoarseRadius},
		alloc:         NewAllocator(),
		epsilon:       DefaultEpsilon,
		tabMargin:     DefaultTabMargin,
		hoverDebounce: DefaultHoverDebounce,
		sink:          NopSink{},
		log:           NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Dragging reports whether a drag session is active.
func (c *Controller) Dragging() bool {
	return c.session != nil
}

// Current returns the dragged entity of the active session, if any.
func (c *Controller) Current() (Dragged, bool) {
	if c.session == nil {
		return Dragged{}, false
	}
	return c.session.dragged, true
}

// Preview returns the active insertion preview, if any.
func (c *Controller) Preview() *InsertPreview {
	if c.session == nil {
		return nil
	}
	return c.session.preview
}

// TabHovering reports whether the session is hovering the board tab bar.
func (c *Controller) TabHovering() bool {
	return c.session != nil && c.session.hover != nil && c.session.hover.Hovering()
}

// Start opens a drag session for the given entity. Any stale session is
// torn down first, so rapid repeated start events cannot leak prior state.
func (c *Controller) Start(d Dragged) error {
	c.reset()

	s := &session{dragged: d}
	switch d.Kind {
	case EntityTask:
		task, ok := c.state.Task(d.ID)
		if !ok {
			return fmt.Errorf("start drag: %w", ErrTaskNotFound)
		}
		s.sourceColumnID = task.ColumnID
		if c.measure != nil {
			s.hover = NewTabHoverDetector(c.measure.TabBarBounds(), c.tabMargin, c.hoverDebounce)
		}
	case EntityColumn:
		if _, ok := c.state.Column(d.ID); !ok {
			return fmt.Errorf("start drag: %w", ErrColumnNotFound)
		}
	default:
		return fmt.Errorf("start drag: unknown entity kind %q", d.Kind)
	}

	c.session = s
	c.sink.DragStarted(d)
	c.log.Debug("drag started", "kind", d.Kind, "id", d.ID)
	return nil
}

// Over processes one pointer move: collision resolution, tab-hover
// tracking, and preview recomputation. Hovering the tab bar suppresses the
// in-board preview entirely; the two affordances are mutually exclusive.
func (c *Controller) Over(p Point) {
	s := c.session
	if s == nil {
		return
	}

	if s.dragged.Kind == EntityTask && s.hover != nil {
		was := s.hover.Hovering()
		now := s.hover.Track(p.Y)
		if was != now {
			c.sink.TabHoverChanged(now)
		}
		if now {
			c.setPreview(nil)
			return
		}
	}

	resolved, ok := c.resolve(s.dragged, p)
	if !ok {
		c.setPreview(nil)
		return
	}
	c.setPreview(c.previewFor(s, resolved))
}

// Drop terminates the session: it re-resolves the target at the drop
// point, commits through the executor when the move is real, and always
// runs full cleanup, including after a commit panic.
func (c *Controller) Drop(ctx context.Context, p Point) (err error) {
	s := c.session
	if s == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("drop handler panicked", "panic", r)
		}
		c.reset()
	}()

	resolved, ok := c.resolve(s.dragged, p)
	if !ok {
		c.log.Debug("drop over nothing actionable", "id", s.dragged.ID)
		return nil
	}

	switch s.dragged.Kind {
	case EntityTask:
		return c.dropTask(ctx, s, p, resolved)
	case EntityColumn:
		return c.dropColumn(ctx, s, resolved)
	}
	return nil
}

// dropTask commits a task drop: cross-board when the guarded tab hover
// re-validates, otherwise an in-board move through the position allocator
// with no-op filtering.
func (c *Controller) dropTask(ctx context.Context, s *session, p Point, resolved Candidate) error {
	if resolved.Kind == CandidateBoardTab {
		if s.hover == nil || !s.hover.Within(p.Y) {
			// Resolution and drop are not atomic; the pointer left the
			// tab bounds between the last hover update and release.
			c.log.Debug("board-tab drop failed re-validation", "task", s.dragged.ID)
			return nil
		}
		if err := c.commit(func() error {
			return c.exec.MoveTaskToBoard(ctx, s.dragged.ID, resolved.BoardID)
		}); err != nil {
			c.log.Error("cross-board move failed", "task", s.dragged.ID, "board", resolved.BoardID, "err", err)
			return err
		}
		return nil
	}

	task, ok := c.state.Task(s.dragged.ID)
	if !ok {
		return fmt.Errorf("drop: %w", ErrTaskNotFound)
	}
	target := taskDropTarget(resolved)
	columnID, position, ok := c.taskTargetPosition(task, target)
	if !ok {
		return nil
	}

	if columnID == task.ColumnID && target.Kind != DropBeforeTask {
		if math.Abs(position-task.Position) < c.epsilon {
			// Coarse hit-testing reports a "move" on mere pointer
			// jitter; a sub-epsilon same-column delta is a no-op.
			c.log.Debug("same-position drop skipped", "task", task.ID)
			return nil
		}
	}

	if err := c.commit(func() error {
		return c.exec.MoveTask(ctx, task.ID, columnID, position)
	}); err != nil {
		c.log.Error("task move failed", "task", task.ID, "column", columnID, "err", err)
		return err
	}
	return nil
}

// dropColumn commits a column drop at integer position granularity.
func (c *Controller) dropColumn(ctx context.Context, s *session, resolved Candidate) error {
	if resolved.Kind == CandidateTask {
		// Resolver gap: recover by walking up to the task's owning column
		// instead of failing the operation.
		c.log.Warn("column drag resolved to a task candidate", "task", resolved.TaskID)
	}
	target, ok := columnDropTarget(resolved)
	if !ok {
		return nil
	}
	if target.ColumnID == "" {
		return c.dropColumnAtEnd(ctx, s)
	}
	if target.ColumnID == s.dragged.ID {
		return nil
	}
	sibling, ok := c.state.Column(target.ColumnID)
	if !ok {
		return fmt.Errorf("drop: target column %s: %w", target.ColumnID, ErrColumnNotFound)
	}

	position := math.Floor(sibling.Position)
	if err := c.commit(func() error {
		return c.exec.MoveColumn(ctx, s.dragged.ID, position)
	}); err != nil {
		c.log.Error("column move failed", "column", s.dragged.ID, "err", err)
		return err
	}
	return nil
}

// dropColumnAtEnd moves the dragged column past the board's last column.
func (c *Controller) dropColumnAtEnd(ctx context.Context, s *session) error {
	last := ""
	position := c.alloc.gap()
	for _, col := range c.state.Columns() {
		if col.ID == s.dragged.ID {
			continue
		}
		last = col.ID
		position = math.Floor(col.Position) + 1
	}
	if last == "" {
		return nil
	}
	dragged, ok := c.state.Column(s.dragged.ID)
	if !ok {
		return fmt.Errorf("drop: %w", ErrColumnNotFound)
	}
	if math.Abs(dragged.Position-position) < c.epsilon {
		return nil
	}
	if err := c.commit(func() error {
		return c.exec.MoveColumn(ctx, s.dragged.ID, position)
	}); err != nil {
		c.log.Error("column move failed", "column", s.dragged.ID, "err", err)
		return err
	}
	return nil
}

// taskTargetPosition translates a drop target into (columnID, position)
// through the allocator, mirroring the preview's index rules.
func (c *Controller) taskTargetPosition(task domain.Task, target DropTarget) (string, float64, bool) {
	columnID := target.ColumnID
	if columnID == "" {
		return "", 0, false
	}
	others := excludeTask(c.state.ColumnTasks(columnID), task.ID)
	positions := taskPositions(others)

	switch target.Kind {
	case DropBeforeTask:
		idx := indexOfTask(others, target.TaskID)
		if idx < 0 {
			// Target task vanished between resolution and drop.
			return columnID, c.alloc.InsertionPosition(positions, len(positions)), true
		}
		if columnID == task.ColumnID {
			return columnID, c.alloc.BeforeTask(positions, idx, task.Position), true
		}
		return columnID, c.alloc.InsertionPosition(positions, idx), true
	case DropColumnTop:
		return columnID, c.alloc.InsertionPosition(positions, 0), true
	case DropColumnBottom, DropInColumn:
		return columnID, c.alloc.InsertionPosition(positions, len(positions)), true
	default:
		return "", 0, false
	}
}

// previewFor computes the insertion preview for a resolved candidate. The
// dragged task is excluded from every comparison set so it is never
// double-counted when dragging within its own column.
func (c *Controller) previewFor(s *session, resolved Candidate) *InsertPreview {
	if s.dragged.Kind != EntityTask {
		return nil
	}
	target := taskDropTarget(resolved)
	columnID := target.ColumnID
	if columnID == "" {
		return nil
	}
	others := excludeTask(c.state.ColumnTasks(columnID), s.dragged.ID)

	switch target.Kind {
	case DropBeforeTask:
		idx := indexOfTask(others, target.TaskID)
		if idx < 0 {
			idx = len(others)
		}
		return &InsertPreview{ColumnID: columnID, Index: idx, CrossColumn: columnID != s.sourceColumnID}
	case DropColumnTop:
		return &InsertPreview{ColumnID: columnID, Index: 0, CrossColumn: columnID != s.sourceColumnID}
	case DropColumnBottom, DropInColumn:
		return &InsertPreview{ColumnID: columnID, Index: len(others), CrossColumn: columnID != s.sourceColumnID}
	default:
		return nil
	}
}

// resolve runs both hit-test primitives over the registered regions and
// narrows them through the collision resolver.
func (c *Controller) resolve(d Dragged, p Point) (Candidate, bool) {
	candidates := c.regions.Candidates()
	precise := c.precise.HitTest(p, candidates)
	coarse := c.coarse.HitTest(p, candidates)
	return Resolve(d, precise, coarse)
}

// commit runs a durable write with the saving indicator raised for its
// duration. The optimistic in-memory mutation is already visible by the
// time the indicator clears.
func (c *Controller) commit(fn func() error) error {
	c.sink.SavingChanged(true)
	defer c.sink.SavingChanged(false)
	return fn()
}

// setPreview records and publishes the preview when it changed.
func (c *Controller) setPreview(preview *InsertPreview) {
	s := c.session
	if s == nil {
		return
	}
	if previewEqual(s.preview, preview) {
		return
	}
	s.preview = preview
	c.sink.PreviewChanged(preview)
}

// reset tears the session down unconditionally: dragged reference, preview
// and hover state are all cleared on every exit path.
func (c *Controller) reset() {
	s := c.session
	if s == nil {
		return
	}
	c.session = nil
	if s.hover != nil {
		s.hover.Reset()
	}
	if s.preview != nil {
		c.sink.PreviewChanged(nil)
	}
	c.sink.TabHoverChanged(false)
	c.sink.DragEnded()
}

// taskDropTarget maps a resolved candidate onto the logical drop location
// for a task drag.
func taskDropTarget(resolved Candidate) DropTarget {
	switch resolved.Kind {
	case CandidateTask:
		return DropTarget{Kind: DropBeforeTask, TaskID: resolved.TaskID, ColumnID: resolved.ColumnID}
	case CandidateColumnTop:
		return DropTarget{Kind: DropColumnTop, ColumnID: resolved.ColumnID}
	case CandidateColumnBottom:
		return DropTarget{Kind: DropColumnBottom, ColumnID: resolved.ColumnID}
	case CandidateColumnMiddle, CandidateColumn:
		return DropTarget{Kind: DropInColumn, ColumnID: resolved.ColumnID}
	case CandidateBoardTab:
		return DropTarget{Kind: DropBoardTab, BoardID: resolved.BoardID}
	default:
		return DropTarget{}
	}
}

// columnDropTarget maps a resolved candidate onto the logical drop location
// for a column drag. A task candidate degrades to its owning column; the
// open board area maps to an empty ColumnID, the end of the board.
func columnDropTarget(resolved Candidate) (DropTarget, bool) {
	switch resolved.Kind {
	case CandidateTask, CandidateColumn, CandidateColumnTop:
		if resolved.ColumnID == "" {
			return DropTarget{}, false
		}
		return DropTarget{Kind: DropBeforeColumn, ColumnID: resolved.ColumnID}, true
	case CandidateBoardArea:
		return DropTarget{Kind: DropBeforeColumn}, true
	default:
		return DropTarget{}, false
	}
}

func previewEqual(a, b *InsertPreview) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func excludeTask(tasks []domain.Task, taskID string) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != taskID {
			out = append(out, t)
		}
	}
	return out
}

func indexOfTask(tasks []domain.Task, taskID string) int {
	for i, t := range tasks {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

func taskPositions(tasks []domain.Task) []float64 {
	positions := make([]float64, len(tasks))
	for i, t := range tasks {
		positions[i] = t.Position
	}
	return positions
}
