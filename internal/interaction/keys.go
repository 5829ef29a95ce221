package interaction

import (
	"sync"

	"fyne.io/fyne/v2"
)

// KeySource is the part of fyne.Canvas used for key delivery.
type KeySource interface {
	OnTypedKey() func(*fyne.KeyEvent)
	SetOnTypedKey(func(*fyne.KeyEvent))
}

// KeySubscription routes Delete and Backspace from a canvas to the
// controller while the editing screen is mounted. Other keys fall through
// to whatever handler was installed before.
type KeySubscription struct {
	mu      sync.Mutex
	src     KeySource
	prev    func(*fyne.KeyEvent)
	handler func(*fyne.KeyEvent)
	active  bool
}

// Subscribe installs the delete handler on src.
func (c *Controller) Subscribe(src KeySource) *KeySubscription {
	sub := &KeySubscription{src: src, prev: src.OnTypedKey(), active: true}
	sub.handler = func(ev *fyne.KeyEvent) {
		if ev == nil {
			return
		}
		if c.KeyDown(ev.Name) {
			return
		}
		if sub.prev != nil {
			sub.prev(ev)
		}
	}
	src.SetOnTypedKey(sub.handler)
	return sub
}

// Rearm re-installs the handler. It is a no-op after Release.
func (s *KeySubscription) Rearm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		s.src.SetOnTypedKey(s.handler)
	}
}

// Release restores the handler that was active before Subscribe.
func (s *KeySubscription) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	s.src.SetOnTypedKey(s.prev)
}

// Active reports whether the subscription is still installed.
func (s *KeySubscription) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
