package drag

// TabBarMeasurer is supplied by the host UI and reports the live bounding
// rectangle of the board tab bar. The detector measures it once per drag
// session instead of querying the rendered layout on every move.
type TabBarMeasurer interface {
	TabBarBounds() Rect
}

// DefaultTabMargin and DefaultHoverDebounce tune cross-board hover
// detection: the margin extends the measured tab bounds upward to make the
// hit region forgiving, and the debounce is the number of consecutive
// pointer samples required before the hover flag flips.
const (
	DefaultTabMargin     = 1.0
	DefaultHoverDebounce = 2
)

// TabHoverDetector decides whether a task drag is requesting a cross-board
// drop. It deliberately tracks only the pointer's vertical coordinate
// against the cached tab-bar bounds: individual tabs are narrow and
// adjacent, so per-tab collision is unreliable while the same gesture is
// also tracking column collisions.
type TabHoverDetector struct {
	bounds   Rect
	debounce int
	hovering bool
	streak   int
}

// NewTabHoverDetector caches the tab-bar bounds for one drag session,
// extended upward by margin.
func NewTabHoverDetector(bounds Rect, margin float64, debounce int) *TabHoverDetector {
	if margin > 0 {
		bounds.MinY -= margin
	}
	if debounce < 1 {
		debounce = 1
	}
	return &TabHoverDetector{bounds: bounds, debounce: debounce}
}

// Track feeds one pointer sample and returns the debounced hover flag. The
// flag only flips after the raw measurement disagrees with it for the
// configured number of consecutive samples, so a single frame of ambiguity
// does not flicker the preview.
func (d *TabHoverDetector) Track(y float64) bool {
	raw := d.bounds.ContainsY(y)
	if raw == d.hovering {
		d.streak = 0
		return d.hovering
	}
	d.streak++
	if d.streak >= d.debounce {
		d.hovering = raw
		d.streak = 0
	}
	return d.hovering
}

// Hovering returns the current debounced flag.
func (d *TabHoverDetector) Hovering() bool {
	return d.hovering
}

// Within re-validates the live pointer coordinate against the cached
// bounds, bypassing the debounced flag. Drop handling uses this to close
// the race between the last hover update and the drop event.
func (d *TabHoverDetector) Within(y float64) bool {
	return d.bounds.ContainsY(y)
}

// Reset clears hover state for session teardown.
func (d *TabHoverDetector) Reset() {
	d.hovering = false
	d.streak = 0
}
