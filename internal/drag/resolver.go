package drag

import (
	"sort"
	"strings"
)

// Resolve narrows the set of spatially-overlapping drop candidates to the
// single target that best matches user intent, or reports none. It is pure
// and deterministic for a given candidate set, and is re-invoked on every
// pointer move of a drag.
//
// Policy, highest priority first:
//
//  1. A column drag only ever resolves onto column, column-top, or
//     board-area candidates. Task candidates are discarded outright, and
//     there is no fallback to "nearest anything".
//  2. A task drag prefers precise pointer-containment candidates over
//     coarse ones, and task-typed candidates over column regions.
//  3. A board-tab target is accepted only for task drags and only when the
//     board tab is the sole precise candidate and coarse testing reports no
//     non-board region. Tab drop zones sit close to column headers, so an
//     unguarded match would turn top-of-column reorders into accidental
//     cross-board moves.
//  4. With no qualifying precise candidate, coarse candidates are
//     considered under the same eligibility filter, nearest first.
//  5. Otherwise the resolution is empty and the caller clears its preview.
func Resolve(dragged Dragged, precise, coarse []Candidate) (Candidate, bool) {
	precise = withoutSelf(dragged, precise)
	coarse = withoutSelf(dragged, coarse)

	switch dragged.Kind {
	case EntityColumn:
		if c, ok := pickPrecise(precise, columnDragEligible); ok {
			return c, true
		}
		return pickCoarse(coarse, columnDragEligible)
	case EntityTask:
		if c, ok := boardTabTarget(precise, coarse); ok {
			return c, true
		}
		if c, ok := pickPrecise(precise, taskDragEligible); ok {
			return c, true
		}
		return pickCoarse(coarse, taskDragEligible)
	}
	return Candidate{}, false
}

// columnDragEligible reports candidate kinds a column drag may target.
func columnDragEligible(k CandidateKind) bool {
	switch k {
	case CandidateColumn, CandidateColumnTop, CandidateBoardArea:
		return true
	}
	return false
}

// taskDragEligible reports candidate kinds a task drag may target outside
// the guarded board-tab path.
func taskDragEligible(k CandidateKind) bool {
	switch k {
	case CandidateTask, CandidateColumn, CandidateColumnTop, CandidateColumnBottom, CandidateColumnMiddle:
		return true
	}
	return false
}

// boardTabTarget applies the strict cross-board guard: the board tab must
// be the only precise candidate and the coarse set must contain nothing but
// board regions.
func boardTabTarget(precise, coarse []Candidate) (Candidate, bool) {
	if len(precise) != 1 || precise[0].Kind != CandidateBoardTab {
		return Candidate{}, false
	}
	for _, c := range coarse {
		switch c.Kind {
		case CandidateBoardTab, CandidateBoardArea:
		default:
			return Candidate{}, false
		}
	}
	return precise[0], true
}

// pickPrecise selects the most specific eligible containment candidate:
// kind rank first, then smaller area, then ID.
func pickPrecise(precise []Candidate, eligible func(CandidateKind) bool) (Candidate, bool) {
	var hits []Candidate
	for _, c := range precise {
		if eligible(c.Kind) {
			hits = append(hits, c)
		}
	}
	if len(hits) == 0 {
		return Candidate{}, false
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if ri, rj := kindRank(hits[i].Kind), kindRank(hits[j].Kind); ri != rj {
			return ri < rj
		}
		if ai, aj := hits[i].Bounds.Area(), hits[j].Bounds.Area(); ai != aj {
			return ai < aj
		}
		return strings.Compare(candidateID(hits[i]), candidateID(hits[j])) < 0
	})
	return hits[0], true
}

// pickCoarse selects the nearest eligible candidate. Coarse input arrives
// distance-ranked from the hit-tester, so the first eligible entry wins.
func pickCoarse(coarse []Candidate, eligible func(CandidateKind) bool) (Candidate, bool) {
	for _, c := range coarse {
		if eligible(c.Kind) {
			return c, true
		}
	}
	return Candidate{}, false
}

// withoutSelf strips regions belonging to the dragged entity itself.
func withoutSelf(dragged Dragged, candidates []Candidate) []Candidate {
	out := candidates[:0:0]
	for _, c := range candidates {
		if c.refersTo(dragged) {
			continue
		}
		out = append(out, c)
	}
	return out
}
