package loader

import (
	"image"
	"image/png"
	"io"
)

// loaderBackend decodes one image file format.
type loaderBackend interface {
	// Decode reads a full image from r.
	//
	// Parameters:
	//   - r: the encoded image
	//
	// Returns:
	//   - image.Image: the decoded image
	//   - error: error if the data is not a valid image of this format
	Decode(r io.Reader) (image.Image, error)
}

// pngLoaderBackend decodes PNG files.
type pngLoaderBackend struct{}

var _ loaderBackend = pngLoaderBackend{}

func newPNGLoaderBackend() loaderBackend {
	return pngLoaderBackend{}
}

func (pngLoaderBackend) Decode(r io.Reader) (image.Image, error) {
	return png.Decode(r)
}
