package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

var (
	iconIdle []byte
	iconRec  []byte
	iconErr  []byte
)

func init() {
	red := color.RGBA{R: 255, G: 59, B: 48, A: 255}
	amber := color.RGBA{R: 255, G: 159, B: 10, A: 255}
	iconIdle = renderIcon(22, nil)
	iconRec = renderIcon(22, &red)
	iconErr = renderIcon(22, &amber)
}

// renderIcon draws a ring with an optional filled dot in the middle.
func renderIcon(size int, dot *color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cx, cy := float64(size)/2, float64(size)/2
	outer := float64(size)/2 - 1
	ring := outer - float64(size)/8
	dotR := float64(size) / 5
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			switch {
			case dot != nil && d <= dotR:
				img.Set(x, y, dot)
			case d <= outer && d >= ring:
				img.Set(x, y, color.Black)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("renderIcon: " + err.Error())
	}
	return buf.Bytes()
}
