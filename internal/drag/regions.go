package drag

import (
	"sort"
	"strings"
)

// Regions is the registry of drop-target regions the host rebuilds whenever
// its layout changes. Hit-testing runs against the registered set; the
// registry itself carries no resolution logic.
type Regions struct {
	list []Candidate
}

// NewRegions constructs an empty registry.
func NewRegions() *Regions {
	return &Regions{}
}

// Reset drops all registered regions.
func (r *Regions) Reset() {
	r.list = r.list[:0]
}

// Add registers one drop-target region.
func (r *Regions) Add(c Candidate) {
	r.list = append(r.list, c)
}

// Candidates returns the registered regions. The returned slice is shared;
// callers must not mutate it.
func (r *Regions) Candidates() []Candidate {
	return r.list
}

// HitTester answers a spatial query for the current pointer position over a
// set of registered regions, returning every matching region unordered
// except for the tester's own ranking guarantees.
type HitTester interface {
	HitTest(p Point, regions []Candidate) []Candidate
}

// PointerWithin is the precise hit-test: it returns every region whose
// bounds contain the pointer.
type PointerWithin struct{}

// HitTest implements HitTester.
func (PointerWithin) HitTest(p Point, regions []Candidate) []Candidate {
	var hits []Candidate
	for _, c := range regions {
		if c.Bounds.Contains(p) {
			hits = append(hits, c)
		}
	}
	return hits
}

// DefaultCoarseRadius bounds the fallback nearest-corner search. Regions
// farther than this from the pointer are not drop candidates at all, which
// is what lets the board-tab guard demand an otherwise-empty neighborhood.
const DefaultCoarseRadius = 2.0

// NearestCorners is the coarse hit-test: it ranks regions by the distance
// from the pointer to their nearest corner and returns those within
// MaxDistance, nearest first. A MaxDistance of zero means unlimited.
type NearestCorners struct {
	MaxDistance float64
}

// HitTest implements HitTester. Results are ordered by distance with a
// stable kind/ID tiebreak so resolution is deterministic for equal ranks.
func (n NearestCorners) HitTest(p Point, regions []Candidate) []Candidate {
	var hits []Candidate
	for _, c := range regions {
		c.Distance = c.Bounds.CornerDistance(p)
		if n.MaxDistance > 0 && c.Distance > n.MaxDistance {
			continue
		}
		hits = append(hits, c)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		if hits[i].Kind != hits[j].Kind {
			return kindRank(hits[i].Kind) < kindRank(hits[j].Kind)
		}
		return strings.Compare(candidateID(hits[i]), candidateID(hits[j])) < 0
	})
	return hits
}

// kindRank orders candidate kinds most-specific first for tiebreaks.
func kindRank(k CandidateKind) int {
	switch k {
	case CandidateTask:
		return 0
	case CandidateColumnTop:
		return 1
	case CandidateColumnBottom:
		return 2
	case CandidateColumnMiddle:
		return 3
	case CandidateColumn:
		return 4
	case CandidateBoardTab:
		return 5
	default:
		return 6
	}
}

// candidateID returns the identifying field for the candidate's kind.
func candidateID(c Candidate) string {
	switch c.Kind {
	case CandidateTask:
		return c.TaskID
	case CandidateBoardTab, CandidateBoardArea:
		return c.BoardID
	default:
		return c.ColumnID
	}
}
