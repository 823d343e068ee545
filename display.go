package tchip8

// Display abstraction for a display
type Display interface {
	// Boot initializes the component
	Boot() error
	// Render draws a snapshot of the screen
	Render(Screen) error
}

// DummyDisplay is a display that does nothing
type DummyDisplay struct {
}

func NewDummyDisplay() *DummyDisplay {
	return &DummyDisplay{}
}

func (d DummyDisplay) Boot() error {
	return nil
}

func (d DummyDisplay) Render(screen Screen) error {
	return nil
}

// InMemoryDisplay keeps the last rendered screen
type InMemoryDisplay struct {
	Last    Screen
	Renders int
}

func NewInMemoryDisplay() *InMemoryDisplay {
	return &InMemoryDisplay{}
}

// Boot implements Display.
func (d *InMemoryDisplay) Boot() error {
	return nil
}

// Render implements Display.
func (d *InMemoryDisplay) Render(screen Screen) error {
	d.Last = screen
	d.Renders++

	return nil
}
