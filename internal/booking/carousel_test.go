package booking

import "testing"

func TestCarousel_Wraps(t *testing.T) {
	c := Carousel{Index: 5, Len: 6}
	if got := c.Next().Index; got != 0 {
		t.Fatalf("next from last = %d, want 0", got)
	}
	c = Carousel{Index: 0, Len: 6}
	if got := c.Prev().Index; got != 5 {
		t.Fatalf("prev from first = %d, want 5", got)
	}
	if got := c.Next().Next().Index; got != 2 {
		t.Fatalf("two steps = %d, want 2", got)
	}
}

func TestCarousel_Goto(t *testing.T) {
	c := Carousel{Index: 1, Len: 6}
	moved, ok := c.Goto(4)
	if !ok || moved.Index != 4 {
		t.Fatalf("Goto(4) = %+v, %v", moved, ok)
	}
	for _, i := range []int{-1, 6, 42} {
		same, ok := c.Goto(i)
		if ok || same.Index != 1 {
			t.Fatalf("Goto(%d) must be ignored, got %+v, %v", i, same, ok)
		}
	}
}

func TestCarousel_Empty(t *testing.T) {
	c := Carousel{}
	if c.Next().Index != 0 || c.Prev().Index != 0 {
		t.Fatal("empty carousel must not move")
	}
}
