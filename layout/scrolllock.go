package layout

import "sync"

// ScrollLock tracks whether page scrolling must be frozen because an overlay (the detail panel)
// is open. Every Acquire returns a release func; the page is locked while any holder remains.
type ScrollLock struct {
	mu      sync.Mutex
	holders int
}

// Acquire takes a hold on the lock. The returned func is safe to call more than once.
func (l *ScrollLock) Acquire() (release func()) {
	l.mu.Lock()
	l.holders++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.holders--
			l.mu.Unlock()
		})
	}
}

// Locked reports whether any holder remains.
func (l *ScrollLock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holders > 0
}
