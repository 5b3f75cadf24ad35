package adminclient

import "sync"

// ScrollLock freezes the page behind open modals. It stays held while any
// modal is open; each Acquire returns a release func that is safe to call
// more than once.
type ScrollLock struct {
	mu    sync.Mutex
	held  int
	onSet func(locked bool)
}

// NewScrollLock calls onSet when the lock flips between held and free.
func NewScrollLock(onSet func(locked bool)) *ScrollLock {
	return &ScrollLock{onSet: onSet}
}

func (l *ScrollLock) Acquire() (release func()) {
	l.mu.Lock()
	l.held++
	if l.held == 1 && l.onSet != nil {
		l.onSet(true)
	}
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.held--
			if l.held == 0 && l.onSet != nil {
				l.onSet(false)
			}
		})
	}
}

func (l *ScrollLock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held > 0
}
