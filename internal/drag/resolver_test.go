package drag

import "testing"

func TestResolveColumnDragDiscardsTasks(t *testing.T) {
	dragged := Dragged{Kind: EntityColumn, ID: "c1"}
	precise := []Candidate{
		{Kind: CandidateTask, TaskID: "t9", ColumnID: "c2"},
	}
	coarse := []Candidate{
		{Kind: CandidateTask, TaskID: "t9", ColumnID: "c2", Distance: 0.5},
	}

	if _, ok := Resolve(dragged, precise, coarse); ok {
		t.Fatal("column drag resolved onto a task candidate")
	}
}

func TestResolveColumnDragPrefersColumn(t *testing.T) {
	dragged := Dragged{Kind: EntityColumn, ID: "c1"}
	precise := []Candidate{
		{Kind: CandidateTask, TaskID: "t9", ColumnID: "c2"},
		{Kind: CandidateColumn, ColumnID: "c2"},
		{Kind: CandidateBoardArea, BoardID: "b1"},
	}

	got, ok := Resolve(dragged, precise, nil)
	if !ok {
		t.Fatal("expected a resolution")
	}
	if got.Kind != CandidateColumn || got.ColumnID != "c2" {
		t.Fatalf("unexpected resolution %+v", got)
	}
}

func TestResolveColumnDragNeverBoardTab(t *testing.T) {
	dragged := Dragged{Kind: EntityColumn, ID: "c1"}
	precise := []Candidate{{Kind: CandidateBoardTab, BoardID: "b2"}}

	if _, ok := Resolve(dragged, precise, nil); ok {
		t.Fatal("column drag resolved onto a board tab")
	}
}

func TestResolveTaskDragMostSpecificWins(t *testing.T) {
	dragged := Dragged{Kind: EntityTask, ID: "t1"}
	precise := []Candidate{
		{Kind: CandidateColumnMiddle, ColumnID: "c2", Bounds: Rect{0, 0, 10, 20}},
		{Kind: CandidateTask, TaskID: "t5", ColumnID: "c2", Bounds: Rect{0, 4, 10, 6}},
		{Kind: CandidateColumn, ColumnID: "c2", Bounds: Rect{0, 0, 10, 22}},
	}

	got, ok := Resolve(dragged, precise, nil)
	if !ok {
		t.Fatal("expected a resolution")
	}
	if got.Kind != CandidateTask || got.TaskID != "t5" {
		t.Fatalf("unexpected resolution %+v", got)
	}
}

func TestResolveTaskDragIgnoresSelf(t *testing.T) {
	dragged := Dragged{Kind: EntityTask, ID: "t1"}
	precise := []Candidate{
		{Kind: CandidateTask, TaskID: "t1", ColumnID: "c1"},
		{Kind: CandidateColumnMiddle, ColumnID: "c1"},
	}

	got, ok := Resolve(dragged, precise, nil)
	if !ok {
		t.Fatal("expected a resolution")
	}
	if got.Kind != CandidateColumnMiddle {
		t.Fatalf("expected the column region, got %+v", got)
	}
}

func TestResolveBoardTabGuard(t *testing.T) {
	dragged := Dragged{Kind: EntityTask, ID: "t1"}
	tab := Candidate{Kind: CandidateBoardTab, BoardID: "b2"}

	got, ok := Resolve(dragged, []Candidate{tab}, nil)
	if !ok || got.Kind != CandidateBoardTab {
		t.Fatalf("expected board-tab resolution, got %+v ok=%v", got, ok)
	}

	// A second precise candidate breaks the guard.
	if _, ok := Resolve(dragged, []Candidate{tab, {Kind: CandidateColumnTop, ColumnID: "c1"}}, nil); ok {
		t.Fatal("guard accepted the tab beside another precise candidate")
	}

	// Any non-board coarse candidate breaks the guard too; the tab falls
	// through to ordinary resolution, which has nothing eligible precise
	// but picks the nearest coarse region.
	got, ok = Resolve(dragged, []Candidate{tab}, []Candidate{{Kind: CandidateColumnTop, ColumnID: "c1", Distance: 1}})
	if !ok {
		t.Fatal("expected fallback resolution")
	}
	if got.Kind != CandidateColumnTop {
		t.Fatalf("expected column-top fallback, got %+v", got)
	}

	// Board-area coarse neighbors do not break the guard.
	got, ok = Resolve(dragged, []Candidate{tab}, []Candidate{{Kind: CandidateBoardArea, BoardID: "b1", Distance: 1}})
	if !ok || got.Kind != CandidateBoardTab {
		t.Fatalf("expected board-tab resolution, got %+v ok=%v", got, ok)
	}
}

func TestResolveTaskDragCoarseFallback(t *testing.T) {
	dragged := Dragged{Kind: EntityTask, ID: "t1"}
	coarse := []Candidate{
		{Kind: CandidateBoardTab, BoardID: "b2", Distance: 0.25},
		{Kind: CandidateColumnBottom, ColumnID: "c3", Distance: 0.5},
		{Kind: CandidateColumn, ColumnID: "c2", Distance: 1.5},
	}

	got, ok := Resolve(dragged, nil, coarse)
	if !ok {
		t.Fatal("expected a resolution")
	}
	// The board tab is never reachable through the coarse path.
	if got.Kind != CandidateColumnBottom || got.ColumnID != "c3" {
		t.Fatalf("unexpected resolution %+v", got)
	}
}

func TestResolveEmpty(t *testing.T) {
	dragged := Dragged{Kind: EntityTask, ID: "t1"}
	if _, ok := Resolve(dragged, nil, nil); ok {
		t.Fatal("expected empty resolution")
	}
}

func TestNearestCornersRanking(t *testing.T) {
	regions := []Candidate{
		{Kind: CandidateColumn, ColumnID: "far", Bounds: Rect{MinX: 30, MinY: 0, MaxX: 40, MaxY: 10}},
		{Kind: CandidateColumn, ColumnID: "near", Bounds: Rect{MinX: 11, MinY: 0, MaxX: 20, MaxY: 10}},
	}
	hits := NearestCorners{MaxDistance: 5}.HitTest(Point{X: 10, Y: 0}, regions)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit within radius, got %d", len(hits))
	}
	if hits[0].ColumnID != "near" || hits[0].Distance != 1 {
		t.Fatalf("unexpected hit %+v", hits[0])
	}
}

func TestPointerWithinHitTest(t *testing.T) {
	regions := []Candidate{
		{Kind: CandidateColumn, ColumnID: "c1", Bounds: Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}},
		{Kind: CandidateColumn, ColumnID: "c2", Bounds: Rect{MinX: 12, MinY: 0, MaxX: 20, MaxY: 10}},
	}
	hits := PointerWithin{}.HitTest(Point{X: 5, Y: 5}, regions)
	if len(hits) != 1 || hits[0].ColumnID != "c1" {
		t.Fatalf("unexpected hits %+v", hits)
	}
}
