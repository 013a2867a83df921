package tui

import (
	"github.com/hylla/flytta/internal/domain"
	"github.com/hylla/flytta/internal/drag"
)

// Board geometry constants in terminal cells. The tab bar and the board area
// are separated by a blank row so coarse hit-testing near the tabs cannot
// bleed into column regions.
const (
	tabBarRow        = 0
	boardTopRow      = 2
	columnHeaderRows = 2
	taskCardRows     = 2
	columnGap        = 1
	minColumnWidth   = 18
	maxColumnWidth   = 32
	footerRows       = 2
)

// tabLayout is one rendered board tab and its clickable bounds.
type tabLayout struct {
	boardID string
	label   string
	bounds  drag.Rect
}

// taskLayout is one rendered task card and its bounds.
type taskLayout struct {
	taskID string
	bounds drag.Rect
}

// columnLayout is one rendered column with its drop strips. The top strip
// covers the column header, the bottom strip the lower border row, and the
// middle the card area between them.
type columnLayout struct {
	columnID string
	bounds   drag.Rect
	top      drag.Rect
	bottom   drag.Rect
	middle   drag.Rect
	tasks    []taskLayout
}

// boardLayout is the geometry of the current frame. It is rebuilt whenever
// the window resizes or board data changes, and its rectangles are the only
// source for both region registration and click routing, so hit-testing can
// never disagree with what was rendered.
type boardLayout struct {
	width  int
	height int

	tabBar    drag.Rect
	tabs      []tabLayout
	boardArea drag.Rect
	columns   []columnLayout

	columnWidth int
}

// TabBarBounds implements drag.TabBarMeasurer.
func (l *boardLayout) TabBarBounds() drag.Rect {
	return l.tabBar
}

// rebuild recomputes all rectangles for the given boards and board state.
func (l *boardLayout) rebuild(boards []domain.Board, state *drag.BoardState, width, height int) {
	l.width = width
	l.height = height
	l.tabs = l.tabs[:0]
	l.columns = l.columns[:0]

	l.tabBar = drag.Rect{MinX: 0, MinY: tabBarRow, MaxX: float64(max(0, width-1)), MaxY: tabBarRow}
	x := 0
	for _, board := range boards {
		label := " " + board.Name + " "
		w := len([]rune(label))
		l.tabs = append(l.tabs, tabLayout{
			boardID: board.ID,
			label:   label,
			bounds:  drag.Rect{MinX: float64(x), MinY: tabBarRow, MaxX: float64(x + w - 1), MaxY: tabBarRow},
		})
		x += w + 1
	}

	bottom := height - footerRows - 1
	if bottom < boardTopRow {
		bottom = boardTopRow
	}
	l.boardArea = drag.Rect{MinX: 0, MinY: boardTopRow, MaxX: float64(max(0, width-1)), MaxY: float64(bottom)}

	columns := state.Columns()
	if len(columns) == 0 {
		l.columnWidth = 0
		return
	}
	colWidth := (width - columnGap*(len(columns)-1)) / len(columns)
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}
	if colWidth > maxColumnWidth {
		colWidth = maxColumnWidth
	}
	l.columnWidth = colWidth

	for idx, column := range columns {
		minX := idx * (colWidth + columnGap)
		maxX := minX + colWidth - 1
		bounds := drag.Rect{MinX: float64(minX), MinY: boardTopRow, MaxX: float64(maxX), MaxY: float64(bottom)}
		cl := columnLayout{
			columnID: column.ID,
			bounds:   bounds,
			top:      drag.Rect{MinX: bounds.MinX, MinY: bounds.MinY, MaxX: bounds.MaxX, MaxY: bounds.MinY + columnHeaderRows - 1},
			bottom:   drag.Rect{MinX: bounds.MinX, MinY: bounds.MaxY, MaxX: bounds.MaxX, MaxY: bounds.MaxY},
			middle:   drag.Rect{MinX: bounds.MinX, MinY: bounds.MinY + columnHeaderRows, MaxX: bounds.MaxX, MaxY: bounds.MaxY - 1},
		}
		row := int(bounds.MinY) + columnHeaderRows
		for _, task := range state.ColumnTasks(column.ID) {
			cardBottom := row + taskCardRows - 1
			if float64(cardBottom) >= bounds.MaxY {
				break
			}
			cl.tasks = append(cl.tasks, taskLayout{
				taskID: task.ID,
				bounds: drag.Rect{MinX: bounds.MinX + 1, MinY: float64(row), MaxX: bounds.MaxX - 1, MaxY: float64(cardBottom)},
			})
			row = cardBottom + 1
		}
		l.columns = append(l.columns, cl)
	}
}

// register rebuilds the drop-region registry from the current geometry.
// The active board's own tab is not a drop target.
func (l *boardLayout) register(regions *drag.Regions, activeBoardID string) {
	regions.Reset()
	for _, tab := range l.tabs {
		if tab.boardID == activeBoardID {
			continue
		}
		regions.Add(drag.Candidate{Kind: drag.CandidateBoardTab, BoardID: tab.boardID, Bounds: tab.bounds})
	}
	regions.Add(drag.Candidate{Kind: drag.CandidateBoardArea, BoardID: activeBoardID, Bounds: l.boardArea})
	for _, column := range l.columns {
		regions.Add(drag.Candidate{Kind: drag.CandidateColumn, ColumnID: column.columnID, Bounds: column.bounds})
		regions.Add(drag.Candidate{Kind: drag.CandidateColumnTop, ColumnID: column.columnID, Bounds: column.top})
		regions.Add(drag.Candidate{Kind: drag.CandidateColumnBottom, ColumnID: column.columnID, Bounds: column.bottom})
		regions.Add(drag.Candidate{Kind: drag.CandidateColumnMiddle, ColumnID: column.columnID, Bounds: column.middle})
		for _, task := range column.tasks {
			regions.Add(drag.Candidate{Kind: drag.CandidateTask, TaskID: task.taskID, ColumnID: column.columnID, Bounds: task.bounds})
		}
	}
}

// tabAt returns the board tab under the pointer.
func (l *boardLayout) tabAt(p drag.Point) (string, bool) {
	for _, tab := range l.tabs {
		if tab.bounds.Contains(p) {
			return tab.boardID, true
		}
	}
	return "", false
}

// taskAt returns the task card under the pointer.
func (l *boardLayout) taskAt(p drag.Point) (string, bool) {
	for _, column := range l.columns {
		for _, task := range column.tasks {
			if task.bounds.Contains(p) {
				return task.taskID, true
			}
		}
	}
	return "", false
}

// columnHeaderAt returns the column whose header strip is under the pointer.
// The header doubles as the column drag handle.
func (l *boardLayout) columnHeaderAt(p drag.Point) (string, bool) {
	for _, column := range l.columns {
		if column.top.Contains(p) {
			return column.columnID, true
		}
	}
	return "", false
}
