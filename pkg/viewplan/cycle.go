package viewplan

// Cycle steps through views, showing each for a fixed number of frames and
// wrapping around after the last one.
type Cycle struct {
	views         []ViewDescriptor
	framesPerView int
	frame         int
}

// NewCycle starts at the first view. framesPerView below 1 is treated as 1.
func NewCycle(views []ViewDescriptor, framesPerView int) *Cycle {
	return &Cycle{views: views, framesPerView: max(framesPerView, 1)}
}

// Current returns the view for the current frame.
func (c *Cycle) Current() ViewDescriptor {
	if len(c.views) == 0 {
		return ViewDescriptor{}
	}
	return c.views[c.index()]
}

// Tick advances one frame.
func (c *Cycle) Tick() {
	c.frame = (c.frame + 1) % c.period()
}

// Next jumps to the start of the following view.
func (c *Cycle) Next() {
	c.frame = ((c.index() + 1) * c.framesPerView) % c.period()
}

// Prev jumps to the start of the preceding view.
func (c *Cycle) Prev() {
	n := max(len(c.views), 1)
	c.frame = ((c.index() + n - 1) % n) * c.framesPerView
}

func (c *Cycle) index() int {
	return c.frame / c.framesPerView
}

func (c *Cycle) period() int {
	return max(len(c.views), 1) * c.framesPerView
}
