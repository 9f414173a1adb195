package line

// plotFunc receives each pixel on a line, in order from start to end
type plotFunc func(x, y int)

// bresenham walks the integer line x1,y1 -> x2,y2 inclusive of both ends.
// Handles all octants by stepping along whichever axis is longer and
// accumulating error on the other.
func bresenham(plot plotFunc, x1, y1, x2, y2 int) {
	dx := absint(x2 - x1)
	dy := -absint(y2 - y1)

	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	e := dx + dy
	for {
		plot(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x1 += sx
		}
		if e2 <= dx {
			e += dx
			y1 += sy
		}
	}
}

func absint(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
