package loader

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

var (
	placeholderDark  = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
	placeholderLight = color.RGBA{R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF}
)

// fitLayer scales img to size x size with nearest-neighbour sampling, keeping texel edges sharp.
// Images already at the layer size are copied without resampling.
func fitLayer(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// placeholderLayer is an 8x8 checkerboard used for textures that are missing on disk.
func placeholderLayer(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(size/8, 1)
	for y := range size {
		for x := range size {
			c := placeholderDark
			if (x/cell+y/cell)%2 == 0 {
				c = placeholderLight
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// rgbBytes packs img into tightly packed 8-bit RGB rows, top row first.
func rgbBytes(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := range b.Dx() {
			out = append(out, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return out
}
