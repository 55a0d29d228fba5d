package booking

// Carousel is the testimonial carousel position. Next and Prev wrap around.
type Carousel struct {
	Index int
	Len   int
}

// Next advances one entry, wrapping from the last back to the first.
func (c Carousel) Next() Carousel {
	if c.Len <= 0 {
		return c
	}
	c.Index = (c.Index + 1) % c.Len
	return c
}

// Prev steps back one entry, wrapping from the first to the last.
func (c Carousel) Prev() Carousel {
	if c.Len <= 0 {
		return c
	}
	c.Index = (c.Index - 1 + c.Len) % c.Len
	return c
}

// Goto jumps to index i. Out of range indexes are ignored.
func (c Carousel) Goto(i int) (Carousel, bool) {
	if i < 0 || i >= c.Len {
		return c, false
	}
	c.Index = i
	return c, true
}
