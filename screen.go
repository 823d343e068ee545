package tchip8

const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// Screen is the monochrome display, row-major.
// It is a value type: assigning or returning it copies every pixel.
type Screen [ScreenHeight][ScreenWidth]bool

func (s *Screen) clear() {
	*s = Screen{}
}

// drawSprite XORs the sprite rows onto the screen starting at (x, y).
// The start position wraps, anything past the right or bottom border is clipped.
// Returns whether any set pixel was hit by a set bit.
func (s *Screen) drawSprite(x, y byte, sprite []byte) bool {
	cx := int(x) % ScreenWidth
	cy := int(y) % ScreenHeight

	collision := false
	for i, row := range sprite {
		py := cy + i
		if py >= ScreenHeight {
			break
		}

		for j := 0; j < 8; j++ {
			px := cx + j
			if px >= ScreenWidth {
				break
			}

			if row&(0x80>>j) == 0 {
				continue
			}

			if s[py][px] {
				collision = true
			}
			s[py][px] = !s[py][px]
		}
	}

	return collision
}

// Lit counts the pixels that are on
func (s Screen) Lit() int {
	n := 0
	for _, row := range s {
		for _, p := range row {
			if p {
				n++
			}
		}
	}

	return n
}

// Pack packs the screen into bytes, 8 pixels per byte, MSB first
func (s Screen) Pack() []byte {
	buf := make([]byte, ScreenWidth*ScreenHeight/8)
	for y, row := range s {
		for x, p := range row {
			if p {
				t := y*ScreenWidth + x
				buf[t/8] |= 0x80 >> (t % 8)
			}
		}
	}

	return buf
}
