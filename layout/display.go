package layout

import "time"

// Mode is the filter-bar display mode.
type Mode string

const (
	Expanded  Mode = "expanded"
	Collapsed Mode = "collapsed"
)

// Thresholds configure the display-mode machine.
type Thresholds struct {
	// Scroll offsets below Expand mean "at the top of the page".
	Expand int
	// Scroll offsets above Collapse mean "scrolled into the results".
	Collapse int
	// Lock is how long scroll input is ignored after any mode change, to absorb the scroll jump
	// the change itself causes.
	Lock time.Duration
	// Widths below MobileWidth are driven by explicit toggles only.
	MobileWidth int
}

// DefaultThresholds are the values the catalog UI ships with.
var DefaultThresholds = Thresholds{Expand: 50, Collapse: 250, Lock: 300 * time.Millisecond, MobileWidth: 768}

// DisplayState is the full state of the machine. The zero value is not meaningful; use
// InitialState.
type DisplayState struct {
	Mode Mode `json:"mode"`
	// Override is the mode the user explicitly asked for, or "" when none is active.
	Override    Mode      `json:"override,omitempty"`
	Mobile      bool      `json:"mobile"`
	LockedUntil time.Time `json:"locked_until"`
}

// Locked reports whether scroll-driven transitions are suppressed at now.
func (s DisplayState) Locked(now time.Time) bool {
	return now.Before(s.LockedUntil)
}

// EventKind tags a DisplayEvent.
type EventKind int

const (
	EventScroll EventKind = iota
	EventToggle
	EventResize
)

// DisplayEvent is one input to the machine.
type DisplayEvent struct {
	Kind EventKind
	// Offset is the vertical scroll offset for EventScroll.
	Offset int
	// Want is the requested mode for EventToggle.
	Want Mode
	// Width is the viewport width for EventResize.
	Width int
}

func Scroll(offset int) DisplayEvent { return DisplayEvent{Kind: EventScroll, Offset: offset} }
func Toggle(want Mode) DisplayEvent  { return DisplayEvent{Kind: EventToggle, Want: want} }
func Resize(width int) DisplayEvent  { return DisplayEvent{Kind: EventResize, Width: width} }

// DisplayMachine is the filter-bar display-mode policy. It holds configuration only; state is
// passed in and returned so transitions can be tested without scroll events.
type DisplayMachine struct {
	T Thresholds
}

func NewDisplayMachine(t Thresholds) DisplayMachine {
	return DisplayMachine{T: t}
}

// InitialState is the state for a freshly opened page at the given width: expanded on desktop,
// collapsed on mobile, no override, unlocked.
func (m DisplayMachine) InitialState(width int) DisplayState {
	mobile := m.isMobile(width)
	mode := Expanded
	if mobile {
		mode = Collapsed
	}
	return DisplayState{Mode: mode, Mobile: mobile}
}

func (m DisplayMachine) isMobile(width int) bool {
	return width > 0 && width < m.T.MobileWidth
}

// Transition applies ev at time now. It reports whether the mode changed.
//
// Desktop scroll rules: below Expand the bar is forced expanded and any override is cleared;
// above Collapse it collapses unless the user pinned it expanded; in between nothing changes.
// While locked, scroll events are dropped entirely. Toggles always apply and pin an override.
// Crossing the mobile breakpoint resets to that tier's initial state.
func (m DisplayMachine) Transition(s DisplayState, ev DisplayEvent, now time.Time) (DisplayState, bool) {
	switch ev.Kind {
	case EventToggle:
		if ev.Want != Expanded && ev.Want != Collapsed {
			return s, false
		}
		s.Override = ev.Want
		return m.set(s, ev.Want, now)

	case EventResize:
		if m.isMobile(ev.Width) == s.Mobile {
			return s, false
		}
		next := m.InitialState(ev.Width)
		if next.Mode == s.Mode {
			return next, false
		}
		next.LockedUntil = now.Add(m.T.Lock)
		return next, true

	case EventScroll:
		if s.Mobile || s.Locked(now) {
			return s, false
		}
		switch {
		case ev.Offset < m.T.Expand:
			s.Override = ""
			return m.set(s, Expanded, now)
		case ev.Offset > m.T.Collapse:
			if s.Override == Expanded {
				return s, false
			}
			return m.set(s, Collapsed, now)
		default:
			return s, false
		}
	}
	return s, false
}

func (m DisplayMachine) set(s DisplayState, mode Mode, now time.Time) (DisplayState, bool) {
	if s.Mode == mode {
		return s, false
	}
	s.Mode = mode
	s.LockedUntil = now.Add(m.T.Lock)
	return s, true
}
