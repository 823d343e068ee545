package web

import (
	"sync"

	"github.com/guslan/tchip8"
)

// socketDisplay publishes every rendered screen to the connected clients
type socketDisplay struct {
	mu      sync.RWMutex
	last    tchip8.Screen
	screens *broadcaster[tchip8.Screen]
}

func newSocketDisplay() *socketDisplay {
	return &socketDisplay{
		screens: newBroadcaster[tchip8.Screen](),
	}
}

// Boot implements tchip8.Display.
func (d *socketDisplay) Boot() error {
	return nil
}

// Render implements tchip8.Display.
func (d *socketDisplay) Render(screen tchip8.Screen) error {
	d.mu.Lock()
	d.last = screen
	d.mu.Unlock()

	d.screens.publish(screen)

	return nil
}

// subscribe returns a channel primed with the last rendered screen
func (d *socketDisplay) subscribe() chan tchip8.Screen {
	ch := d.screens.subscribe()

	d.mu.RLock()
	last := d.last
	d.mu.RUnlock()

	select {
	case ch <- last:
	default:
	}

	return ch
}
