package host

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/nf/nip/chip8"
)

// Palette holds the colours of unlit and lit pixels.
var Palette = [2]color.RGBA{
	{0x10, 0x10, 0x10, 0xff},
	{0xe0, 0xe0, 0xe0, 0xff},
}

// DrawFrame paints f into the top left chip8.Width by chip8.Height
// pixels of dst.
func DrawFrame(dst *image.RGBA, f *chip8.Frame) {
	for y := 0; y < chip8.Height; y++ {
		for x := 0; x < chip8.Width; x++ {
			c := Palette[0]
			if f.At(x, y) {
				c = Palette[1]
			}
			dst.SetRGBA(x, y, c)
		}
	}
}

// Image returns f as an image scaled by an integer factor.
func Image(f *chip8.Frame, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	src := image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))
	DrawFrame(src, f)
	if scale == 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, chip8.Width*scale, chip8.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// WritePNG writes f to w as a PNG image scaled by an integer factor.
func WritePNG(w io.Writer, f *chip8.Frame, scale int) error {
	if err := png.Encode(w, Image(f, scale)); err != nil {
		return fmt.Errorf("encoding screenshot: %v", err)
	}
	return nil
}
