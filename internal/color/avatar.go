// Package color derives stable avatar colours for users.
package color

import (
	"fmt"
	"hash/fnv"
	"math"
)

// Avatar returns a hex colour for username. The same name always gets the
// same colour; hue varies, saturation and lightness stay fixed so initials
// drawn on top remain readable.
func Avatar(username string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	hue := float64(h.Sum32() % 360)

	r, g, b := hsl(hue, 0.45, 0.6)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hsl converts hue (degrees), saturation and lightness (0..1) to RGB bytes
// using the chroma formulation.
func hsl(hue, sat, light float64) (r, g, b uint8) {
	c := (1 - math.Abs(2*light-1)) * sat
	x := c * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := light - c/2

	var r1, g1, b1 float64
	switch {
	case hue < 60:
		r1, g1, b1 = c, x, 0
	case hue < 120:
		r1, g1, b1 = x, c, 0
	case hue < 180:
		r1, g1, b1 = 0, c, x
	case hue < 240:
		r1, g1, b1 = 0, x, c
	case hue < 300:
		r1, g1, b1 = x, 0, c
	default:
		r1, g1, b1 = c, 0, x
	}

	return toByte(r1 + m), toByte(g1 + m), toByte(b1 + m)
}

func toByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
