// Package session keeps per-client browsing state: the active criteria, the current page, the
// viewport-derived page size, the filter bar display mode and the open detail panel.
//
// All dependent-state rules live here rather than in the pure catalog and layout packages:
// criteria and page-size changes send the client back to page 1, a page past the end is clamped
// to 1, and an open detail panel holds the session's scroll lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/camden-git/castingvitrine/catalog"
	"github.com/camden-git/castingvitrine/detail"
	"github.com/camden-git/castingvitrine/layout"
	"github.com/camden-git/castingvitrine/models"
	"github.com/camden-git/castingvitrine/store"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSort     = errors.New("invalid sort order")
	ErrInvalidMode     = errors.New("invalid display mode")
)

// Observer receives session events. metrics.Manager implements it.
type Observer interface {
	SetSessionsActive(n int)
	DisplayModeChanged(mode string)
}

const defaultPageSize = 12

type Options struct {
	Sizer       layout.PageSizer
	Machine     layout.DisplayMachine
	Placeholder detail.PlaceholderFunc
	// DefaultPageSize applies while the viewport width is unknown (zero).
	DefaultPageSize int
	// TTL is how long an untouched session survives. Zero keeps sessions forever.
	TTL      time.Duration
	Now      func() time.Time
	Observer Observer
}

type state struct {
	id       string
	criteria catalog.Criteria
	sort     string
	width    int
	pageSize int
	page     int
	display  layout.DisplayState
	selected string

	lock    layout.ScrollLock
	release func()

	lastSeen time.Time
}

func (s *state) closeDetail() {
	if s.release != nil {
		s.release()
		s.release = nil
	}
	s.selected = ""
}

// Snapshot is what a client renders after any operation.
type Snapshot struct {
	ID           string                      `json:"id"`
	Criteria     catalog.Criteria            `json:"criteria"`
	Sort         string                      `json:"sort"`
	Width        int                         `json:"width"`
	Results      catalog.Page[models.Talent] `json:"results"`
	VisiblePages []int                       `json:"visible_pages"`
	Display      layout.DisplayState         `json:"display"`
	ScrollLocked bool                        `json:"scroll_locked"`
	Selected     *detail.View                `json:"selected"`
	ExpiresAt    *time.Time                  `json:"expires_at,omitempty"`
}

// Manager holds every live session. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*state

	catalog *store.Catalog
	opts    Options
}

func NewManager(cat *store.Catalog, opts Options) *Manager {
	if opts.Sizer == nil {
		opts.Sizer = layout.NewTierPageSizer()
	}
	if opts.Machine == (layout.DisplayMachine{}) {
		opts.Machine = layout.NewDisplayMachine(layout.DefaultThresholds)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = defaultPageSize
	}
	return &Manager{
		sessions: make(map[string]*state),
		catalog:  cat,
		opts:     opts,
	}
}

func (m *Manager) pageSizeFor(width int) int {
	if width <= 0 {
		return m.opts.DefaultPageSize
	}
	return m.opts.Sizer.PageSize(width)
}

// Len is the number of live sessions, expired ones included until the next sweep.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Create opens a session for a viewport of the given width.
func (m *Manager) Create(width int) Snapshot {
	now := m.opts.Now()
	s := &state{
		id:       uuid.NewString(),
		criteria: catalog.DefaultCriteria(),
		sort:     catalog.SortDefault,
		width:    width,
		pageSize: m.pageSizeFor(width),
		page:     1,
		display:  m.opts.Machine.InitialState(width),
		lastSeen: now,
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	n := len(m.sessions)
	snap := m.snapshot(s)
	m.mu.Unlock()

	m.activeChanged(n)
	log.Printf("session: created %s (width %d, page size %d)", s.id, width, s.pageSize)
	return snap
}

func (m *Manager) Get(id string) (Snapshot, error) {
	return m.update(id, func(*state) error { return nil })
}

// SetCriteria replaces the active criteria and returns to page 1.
func (m *Manager) SetCriteria(id string, c catalog.Criteria) (Snapshot, error) {
	return m.SetQuery(id, c, nil)
}

// ClearCriteria restores the default criteria and returns to page 1.
func (m *Manager) ClearCriteria(id string) (Snapshot, error) {
	return m.SetCriteria(id, catalog.DefaultCriteria())
}

// SetSort changes the result order and returns to page 1.
func (m *Manager) SetSort(id, order string) (Snapshot, error) {
	order, err := sortOrder(order)
	if err != nil {
		return Snapshot{}, err
	}
	return m.update(id, func(s *state) error {
		if s.sort != order {
			s.sort = order
			s.page = 1
		}
		return nil
	})
}

// SetQuery replaces the criteria and, when order is non-nil, the sort order in one step, then
// returns to page 1.
func (m *Manager) SetQuery(id string, c catalog.Criteria, order *string) (Snapshot, error) {
	var sort string
	if order != nil {
		var err error
		if sort, err = sortOrder(*order); err != nil {
			return Snapshot{}, err
		}
	}
	return m.update(id, func(s *state) error {
		s.criteria = c
		if order != nil {
			s.sort = sort
		}
		s.page = 1
		return nil
	})
}

func sortOrder(order string) (string, error) {
	if !catalog.IsValidSortOrder(order) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, order)
	}
	if order == "" {
		return catalog.SortDefault, nil
	}
	return order, nil
}

// Resize records a new viewport width. A different page size sends the session back to page 1;
// crossing the mobile breakpoint resets the filter bar.
func (m *Manager) Resize(id string, width int) (Snapshot, error) {
	return m.update(id, func(s *state) error {
		s.width = width
		if size := m.pageSizeFor(width); size != s.pageSize {
			s.pageSize = size
			s.page = 1
		}
		m.transition(s, layout.Resize(width))
		return nil
	})
}

// Scroll feeds a scroll offset to the filter bar state machine. Scrolls are ignored while the
// detail panel holds the scroll lock.
func (m *Manager) Scroll(id string, offset int) (Snapshot, error) {
	return m.update(id, func(s *state) error {
		if s.lock.Locked() {
			return nil
		}
		m.transition(s, layout.Scroll(offset))
		return nil
	})
}

// ToggleFilterBar pins the filter bar to want. An empty want flips the current mode.
func (m *Manager) ToggleFilterBar(id string, want layout.Mode) (Snapshot, error) {
	if want != "" && want != layout.Expanded && want != layout.Collapsed {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidMode, want)
	}
	return m.update(id, func(s *state) error {
		target := want
		if target == "" {
			target = layout.Collapsed
			if s.display.Mode == layout.Collapsed {
				target = layout.Expanded
			}
		}
		m.transition(s, layout.Toggle(target))
		return nil
	})
}

// SetPage moves to page. A page outside the current result set lands on page 1.
func (m *Manager) SetPage(id string, page int) (Snapshot, error) {
	return m.update(id, func(s *state) error {
		s.page = page
		return nil
	})
}

// Select opens the detail panel for a talent and takes the scroll lock. Switching from one talent
// to another keeps a single hold.
func (m *Manager) Select(id, talentID string) (Snapshot, error) {
	if _, err := m.catalog.Get(talentID); err != nil {
		return Snapshot{}, err
	}
	return m.update(id, func(s *state) error {
		s.selected = talentID
		if s.release == nil {
			s.release = s.lock.Acquire()
		}
		return nil
	})
}

// CloseDetail closes the detail panel and releases the scroll lock.
func (m *Manager) CloseDetail(id string) (Snapshot, error) {
	return m.update(id, func(s *state) error {
		s.closeDetail()
		return nil
	})
}

// Delete ends a session, releasing anything it holds.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		s.closeDetail()
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.activeChanged(n)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	if m.opts.TTL <= 0 {
		return 0
	}
	now := m.opts.Now()

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			s.closeDetail()
			delete(m.sessions, id)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if removed > 0 {
		log.Printf("session: swept %d expired session(s)", removed)
		m.activeChanged(n)
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.opts.TTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) expired(s *state, now time.Time) bool {
	return m.opts.TTL > 0 && now.Sub(s.lastSeen) > m.opts.TTL
}

// update runs fn on a live session under the manager lock and returns the resulting snapshot.
func (m *Manager) update(id string, fn func(*state) error) (Snapshot, error) {
	now := m.opts.Now()

	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok && m.expired(s, now) {
		s.closeDetail()
		delete(m.sessions, id)
		ok = false
		defer m.activeChanged(len(m.sessions))
	}
	if !ok {
		m.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	defer m.mu.Unlock()

	if err := fn(s); err != nil {
		return Snapshot{}, err
	}
	s.lastSeen = now
	return m.snapshot(s), nil
}

func (m *Manager) transition(s *state, ev layout.DisplayEvent) {
	next, changed := m.opts.Machine.Transition(s.display, ev, m.opts.Now())
	s.display = next
	if changed && m.opts.Observer != nil {
		m.opts.Observer.DisplayModeChanged(string(next.Mode))
	}
}

// snapshot filters, sorts and pages the catalog for s. A stored page that is out of range for
// the current result set is clamped to 1 and written back.
func (m *Manager) snapshot(s *state) Snapshot {
	matches := catalog.Sort(catalog.Filter(m.catalog.All(), s.criteria), s.sort)
	s.page = catalog.ClampPage(s.page, catalog.PageCount(len(matches), s.pageSize))
	page := catalog.Paginate(matches, s.pageSize, s.page)

	snap := Snapshot{
		ID:           s.id,
		Criteria:     s.criteria,
		Sort:         s.sort,
		Width:        s.width,
		Results:      page,
		VisiblePages: catalog.VisiblePages(page.Page, page.PageCount),
		Display:      s.display,
		ScrollLocked: s.lock.Locked(),
	}
	if s.selected != "" {
		if t, err := m.catalog.Get(s.selected); err == nil {
			snap.Selected = detail.Project(t, m.opts.Placeholder)
		}
	}
	if m.opts.TTL > 0 {
		exp := s.lastSeen.Add(m.opts.TTL)
		snap.ExpiresAt = &exp
	}
	return snap
}

func (m *Manager) activeChanged(n int) {
	if m.opts.Observer != nil {
		m.opts.Observer.SetSessionsActive(n)
	}
}
