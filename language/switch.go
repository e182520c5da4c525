package language

import (
	"context"
	"sync"

	"github.com/pitabwire/util"
)

const switchBuffer = 8

// Switch is an in-process Source whose active locale is changed with Set.
// Every Set is delivered to all watchers, including sets to the same locale.
type Switch struct {
	mu       sync.Mutex
	current  string
	watchers map[int]chan string
	nextID   int
}

// NewSwitch creates a Switch starting at the given locale.
func NewSwitch(initial string) *Switch {
	return &Switch{
		current:  initial,
		watchers: make(map[int]chan string),
	}
}

func (s *Switch) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set changes the active locale and notifies all watchers. A watcher whose
// buffer is full is skipped with a warning instead of blocking the switch.
func (s *Switch) Set(locale string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = locale
	for id, ch := range s.watchers {
		select {
		case ch <- locale:
		default:
			util.Log(context.Background()).
				WithField("watcher", id).WithField("locale", locale).
				Warn("dropping locale change for slow watcher")
		}
	}
}

func (s *Switch) Watch(ctx context.Context) <-chan string {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan string, switchBuffer)
	s.watchers[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}
