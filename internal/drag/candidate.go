package drag

// EntityKind distinguishes what a drag session is carrying. A session drags
// either one task or one column, never both.
type EntityKind string

const (
	EntityTask   EntityKind = "task"
	EntityColumn EntityKind = "column"
)

// Dragged describes the entity a drag session is carrying.
type Dragged struct {
	Kind EntityKind
	ID   string
}

// CandidateKind tags a drop-target region with its semantic role, so
// resolver branching is exhaustive instead of duck-typed.
type CandidateKind string

const (
	CandidateTask         CandidateKind = "task"
	CandidateColumn       CandidateKind = "column"
	CandidateColumnTop    CandidateKind = "column-top"
	CandidateColumnBottom CandidateKind = "column-bottom"
	CandidateColumnMiddle CandidateKind = "column-middle"
	CandidateBoardTab     CandidateKind = "board-tab"
	CandidateBoardArea    CandidateKind = "board-area"
)

// Candidate is one registered drop-target region. Which ID fields are set
// depends on Kind: task candidates carry both the task and its owning
// column, column-region candidates carry the column, board candidates carry
// the board. Distance is filled in by coarse hit-testing only.
type Candidate struct {
	Kind     CandidateKind
	TaskID   string
	ColumnID string
	BoardID  string
	Bounds   Rect
	Distance float64
}

// refersTo reports whether the candidate is a region of the dragged entity
// itself. A drag must never resolve onto its own footprint.
func (c Candidate) refersTo(d Dragged) bool {
	switch d.Kind {
	case EntityTask:
		return c.Kind == CandidateTask && c.TaskID == d.ID
	case EntityColumn:
		switch c.Kind {
		case CandidateColumn, CandidateColumnTop, CandidateColumnBottom, CandidateColumnMiddle:
			return c.ColumnID == d.ID
		}
	}
	return false
}

// DropKind is the resolved logical drop location kind.
type DropKind string

const (
	DropBeforeTask   DropKind = "before-task"
	DropColumnTop    DropKind = "column-top"
	DropColumnBottom DropKind = "column-bottom"
	DropInColumn     DropKind = "in-column"
	DropBeforeColumn DropKind = "before-column"
	DropBoardTab     DropKind = "board-tab"
)

// DropTarget is the resolved result of collision detection, translated to
// the logical location a drop would commit to. For DropBeforeColumn an
// empty ColumnID means the end of the board.
type DropTarget struct {
	Kind     DropKind
	TaskID   string
	ColumnID string
	BoardID  string
}
