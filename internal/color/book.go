// Package color derives cover and accent colors for books that do not author them.
package color

import (
	"fmt"
	"hash/fnv"
)

// ForBook returns a deterministic cover color and a lighter accent for bookID.
// Covers are dark and muted so light text stays readable on them.
func ForBook(bookID string) (cover, accent string) {
	h := fnv.New32a()
	h.Write([]byte(bookID))
	hue := float64(h.Sum32() % 360)

	return hex(hslToRGB(hue, 0.35, 0.28)), hex(hslToRGB(hue, 0.55, 0.62))
}

// Valid reports whether s is a #RRGGBB color.
func Valid(s string) bool {
	var r, g, b uint8
	n, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	return err == nil && n == 3 && len(s) == 7
}

func hex(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts h (0-360), s and l (0-1) to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	var r1, g1, b1 float64
	if s == 0 {
		r1, g1, b1 = l, l, l
	} else {
		q := l + s - l*s
		if l < 0.5 {
			q = l * (1 + s)
		}
		p := 2*l - q

		r1 = hueToRGB(p, q, h+1.0/3.0)
		g1 = hueToRGB(p, q, h)
		b1 = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(r1*255 + 0.5), uint8(g1*255 + 0.5), uint8(b1*255 + 0.5)
}

func hueToRGB(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
