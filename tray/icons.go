//go:build darwin

package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

var (
	iconIdle    []byte
	iconIdleHi  []byte
	iconBlockHi []byte
)

func init() {
	red := color.RGBA{R: 255, G: 59, B: 48, A: 255}
	iconIdle = renderKeycap(22, nil)
	iconIdleHi = renderKeycap(44, nil)
	iconBlockHi = renderKeycap(44, &red)
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("encodePNG: " + err.Error())
	}
	return buf.Bytes()
}

// renderKeycap draws a rounded key outline. With bar set, a diagonal bar is
// drawn across it to show shortcuts are blocked.
func renderKeycap(size int, bar *color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	stroke := max(size/11, 1)
	inset := size / 8
	lo, hi := inset, size-inset-1
	corner := size / 6

	for y := lo; y <= hi; y++ {
		for x := lo; x <= hi; x++ {
			if inCorner(x, y, lo, hi, corner) {
				continue
			}
			edge := x-lo < stroke || hi-x < stroke || y-lo < stroke || hi-y < stroke
			if edge {
				img.Set(x, y, color.Black)
			}
		}
	}
	if bar != nil {
		for i := 0; i < size; i++ {
			for w := -stroke; w <= stroke; w++ {
				x, y := i+w, size-1-i
				if x >= 0 && x < size {
					img.Set(x, y, bar)
				}
			}
		}
	}
	return encodePNG(img)
}

func inCorner(x, y, lo, hi, r int) bool {
	dx := max(lo+r-x, x-(hi-r), 0)
	dy := max(lo+r-y, y-(hi-r), 0)
	return dx*dx+dy*dy > r*r
}
