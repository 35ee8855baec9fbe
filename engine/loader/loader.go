package loader

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxy-raycaster/common"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
)

// DefaultLayerSize is the edge length in texels of every texture array layer.
const DefaultLayerSize = 64

// DefaultTextures is the texture array layer order scenes index into.
var DefaultTextures = []string{
	"eagle.png",
	"redbrick.png",
	"purplestone.png",
	"greystone.png",
	"bluestone.png",
	"mossy.png",
	"wood.png",
	"colorstone.png",
	"barrel.png",
	"pillar.png",
	"greenlight.png",
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	ctx       *gpu.Context
	fsys      fs.FS
	dir       string
	layerSize int
	workers   int
	logger    *slog.Logger

	layerCache map[string][]byte
	backends   map[string]loaderBackend
}

// Loader reads images from the resource root and turns them into device textures.
// Decoded layers are cached by file name.
type Loader interface {
	// LoadTextureArray decodes files concurrently and uploads them as the layers of one
	// RGBA32F 2D array texture, in order. Every image is scaled to the layer size.
	// Files that do not exist are replaced with a checkerboard placeholder.
	//
	// Parameters:
	//   - files: file names relative to the texture directory
	//
	// Returns:
	//   - *gpu.Texture: the texture array, bound to its target
	//   - error: ErrNoTextures, a decode error, or a device error
	LoadTextureArray(files []string) (*gpu.Texture, error)

	// LoadImage decodes a single image without scaling it.
	//
	// Parameters:
	//   - file: file name relative to the texture directory
	//
	// Returns:
	//   - image.Image: the decoded image
	//   - error: error if the file is missing or cannot be decoded
	LoadImage(file string) (image.Image, error)

	// LayerSize returns the edge length of every texture array layer.
	//
	// Returns:
	//   - int: texels per side
	LayerSize() int
}

var _ Loader = &loader{}

// NewLoader creates a Loader reading from the pics directory of the resource root.
// By default images are read from res/pics on disk with one decode worker per CPU.
//
// Parameters:
//   - ctx: the device context textures are created on
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the loader
func NewLoader(ctx *gpu.Context, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		ctx:        ctx,
		fsys:       os.DirFS("res"),
		dir:        "pics",
		layerSize:  DefaultLayerSize,
		workers:    runtime.NumCPU(),
		layerCache: make(map[string][]byte),
		backends: map[string]loaderBackend{
			".png": newPNGLoaderBackend(),
		},
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) log() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return common.Logger()
}

func (l *loader) LayerSize() int {
	return l.layerSize
}

func (l *loader) LoadImage(file string) (image.Image, error) {
	img, err := l.decode(file)
	if err != nil {
		return nil, fmt.Errorf("loading image %q: %w", file, err)
	}
	return img, nil
}

func (l *loader) LoadTextureArray(files []string) (*gpu.Texture, error) {
	if len(files) == 0 {
		return nil, ErrNoTextures
	}
	l.log().Info("Loading textures", "count", len(files), "dir", l.dir)

	layers, err := l.decodeLayers(files)
	if err != nil {
		return nil, err
	}

	tex := gpu.NewTexture(l.ctx, gpu.Texture2DArray)
	if err := l.upload(tex, layers); err != nil {
		tex.Release()
		return nil, fmt.Errorf("uploading textures: %w", err)
	}
	return tex, nil
}

// decodeLayers fills one layer per file on the worker pool.
func (l *loader) decodeLayers(files []string) ([][]byte, error) {
	layers := make([][]byte, len(files))
	errs := make([]error, len(files))

	pool := worker.NewDynamicWorkerPool(min(l.workers, len(files)), len(files), time.Second)
	defer pool.Stop()

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: file,
			Do: func() (any, error) {
				defer wg.Done()
				layers[i], errs[i] = l.layer(file)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return layers, nil
}

// layer returns the RGB bytes of file at the layer size, from cache when possible.
func (l *loader) layer(file string) ([]byte, error) {
	l.mu.RLock()
	if cached, ok := l.layerCache[file]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	var data []byte
	img, err := l.decode(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		l.log().Warn("Texture missing, using placeholder", "file", file)
		data = rgbBytes(placeholderLayer(l.layerSize))
	case err != nil:
		return nil, fmt.Errorf("loading texture %q: %w", file, err)
	default:
		l.log().Debug("Decoded texture", "file", file, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
		data = rgbBytes(fitLayer(img, l.layerSize))
	}

	l.mu.Lock()
	l.layerCache[file] = data
	l.mu.Unlock()
	return data, nil
}

func (l *loader) decode(file string) (image.Image, error) {
	backend, ok := l.backends[strings.ToLower(path.Ext(file))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path.Ext(file))
	}

	p := path.Join(l.dir, file)
	if !fs.ValidPath(p) {
		return nil, fs.ErrNotExist
	}
	f, err := l.fsys.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return backend.Decode(f)
}

func (l *loader) upload(tex *gpu.Texture, layers [][]byte) error {
	size := int32(l.layerSize)
	if err := tex.Bind(); err != nil {
		return err
	}
	if err := tex.SetWrap(gpu.WrapRepeat, gpu.WrapRepeat); err != nil {
		return err
	}
	if err := tex.SetMinFilter(gpu.FilterNearest); err != nil {
		return err
	}
	if err := tex.SetMagFilter(gpu.FilterNearest); err != nil {
		return err
	}
	if err := tex.ReserveStorage3D(gpu.FormatRGBA32F, [3]int32{size, size, int32(len(layers))}, 1); err != nil {
		return err
	}
	for i, data := range layers {
		err := tex.FillSubImage3D(0, [3]int32{0, 0, int32(i)}, [3]int32{size, size, 1}, gpu.ExternalRGB, gpu.PixelUnsignedByte, data)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}
