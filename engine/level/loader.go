package level

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-raycaster/common"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
)

// document mirrors the scene file.
type document struct {
	Map      mapSection     `yaml:"map"`
	Initial  initialSection `yaml:"initial"`
	Sprites  []spriteEntry  `yaml:"sprites"`
	Textures []string       `yaml:"textures"`
}

type mapSection struct {
	Width   int       `yaml:"width"`
	Height  int       `yaml:"height"`
	Content [][]int64 `yaml:"content"`
	Floor   yaml.Node `yaml:"floor"`
	Ceil    yaml.Node `yaml:"ceil"`
}

type initialSection struct {
	Pos   []float32 `yaml:"pos"`
	Dir   []float32 `yaml:"dir"`
	Plane []float32 `yaml:"plane"`
}

type spriteEntry struct {
	X       *float32 `yaml:"x"`
	Y       *float32 `yaml:"y"`
	Texture *uint32  `yaml:"texture"`
	UDiv    *int32   `yaml:"uDiv"`
	VDiv    *int32   `yaml:"vDiv"`
	VMove   *float32 `yaml:"vMove"`
}

type loaderImpl struct {
	ctx    *gpu.Context
	fsys   fs.FS
	dir    string
	logger *slog.Logger
}

// Loader reads scene resources and turns them into Maps.
type Loader interface {
	// Load reads the named scene, validating in order that it exists, is a regular file,
	// parses as YAML and has a top-level map section, then uploads the grid texture.
	// On any failure nothing is retained and no device resource is left allocated.
	//
	// Parameters:
	//   - name: the scene file name, relative to the maps directory
	//
	// Returns:
	//   - Map: the loaded map
	//   - error: ErrNotFound, ErrNotRegularFile, ErrInvalidFormat, ErrMissingMapSection or a device error
	Load(name string) (Map, error)
}

var _ Loader = &loaderImpl{}

// NewLoader creates a Loader reading from the maps directory of the resource root.
// By default scenes are read from res/maps on disk.
//
// Parameters:
//   - ctx: the device context the grid texture is created on
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the loader
func NewLoader(ctx *gpu.Context, options ...LoaderBuilderOption) Loader {
	l := &loaderImpl{
		ctx:  ctx,
		fsys: os.DirFS("res"),
		dir:  "maps",
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *loaderImpl) log() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return common.Logger()
}

func (l *loaderImpl) Load(name string) (Map, error) {
	p := path.Join(l.dir, name)
	l.log().Info("Loading map", "map", name)

	data, err := l.read(p)
	if err != nil {
		return nil, fmt.Errorf("loading map %q: %w", name, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("loading map %q: %w: %v", name, ErrInvalidFormat, err)
	}
	if mappingValue(&root, "map") == nil {
		return nil, fmt.Errorf("loading map %q: %w", name, ErrMissingMapSection)
	}

	var doc document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("loading map %q: %w: %v", name, ErrInvalidFormat, err)
	}

	m, err := l.build(name, &doc)
	if err != nil {
		return nil, fmt.Errorf("loading map %q: %w", name, err)
	}

	l.log().Debug("Loading map texture", "map", name, "width", m.width, "height", m.height)
	if err := m.upload(l.ctx); err != nil {
		return nil, fmt.Errorf("loading map %q: uploading grid: %w", name, err)
	}
	return m, nil
}

func (l *loaderImpl) read(p string) ([]byte, error) {
	if !fs.ValidPath(p) {
		return nil, ErrNotFound
	}
	info, err := fs.Stat(l.fsys, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotRegularFile
	}
	return fs.ReadFile(l.fsys, p)
}

func (l *loaderImpl) build(name string, doc *document) (*mapImpl, error) {
	l.log().Debug("Loading map data", "map", name)
	w, h := doc.Map.Width, doc.Map.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: map size %dx%d", ErrInvalidFormat, w, h)
	}
	if len(doc.Map.Content) < w {
		return nil, fmt.Errorf("%w: content has %d rows, want %d", ErrInvalidFormat, len(doc.Map.Content), w)
	}

	grid := make([]byte, w*h)
	for x := range w {
		row := doc.Map.Content[x]
		if len(row) < h {
			return nil, fmt.Errorf("%w: content row %d has %d cells, want %d", ErrInvalidFormat, x, len(row), h)
		}
		for y := range h {
			grid[x*h+y] = byte(row[y] & 0xFF)
		}
	}

	floor, err := parseSurface(&doc.Map.Floor, "floor")
	if err != nil {
		return nil, err
	}
	ceil, err := parseSurface(&doc.Map.Ceil, "ceil")
	if err != nil {
		return nil, err
	}

	pos, err := vec2(doc.Initial.Pos, "initial.pos")
	if err != nil {
		return nil, err
	}
	dir, err := vec2(doc.Initial.Dir, "initial.dir")
	if err != nil {
		return nil, err
	}
	plane, err := vec2(doc.Initial.Plane, "initial.plane")
	if err != nil {
		return nil, err
	}

	l.log().Debug("Loading sprites data", "map", name, "count", len(doc.Sprites))
	sprites := make([]Sprite, 0, len(doc.Sprites))
	for i, e := range doc.Sprites {
		if e.X == nil || e.Y == nil || e.Texture == nil {
			return nil, fmt.Errorf("%w: sprite %d needs x, y and texture", ErrInvalidFormat, i)
		}
		sprites = append(sprites, Sprite{
			Position: mgl32.Vec2{*e.X, *e.Y},
			Texture:  *e.Texture,
			UDiv:     common.ValueOr(e.UDiv, 1),
			VDiv:     common.ValueOr(e.VDiv, 1),
			VMove:    common.ValueOr(e.VMove, 0),
		})
	}

	return &mapImpl{
		name:             name,
		width:            w,
		height:           h,
		grid:             grid,
		floor:            floor,
		ceil:             ceil,
		initialPosition:  pos,
		initialDirection: dir,
		initialPlane:     plane,
		sprites:          sprites,
		textures:         doc.Textures,
	}, nil
}

// parseSurface reads a floor or ceiling: a sequence selects a color, a scalar a texture layer.
func parseSurface(n *yaml.Node, field string) (Surface, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch n.Kind {
	case 0:
		return DefaultSurfaceLayer, nil
	case yaml.SequenceNode:
		var rgb []float32
		if err := n.Decode(&rgb); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, field, err)
		}
		if len(rgb) != 3 {
			return nil, fmt.Errorf("%w: %s color has %d components, want 3", ErrInvalidFormat, field, len(rgb))
		}
		return FlatColor{rgb[0], rgb[1], rgb[2]}, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return DefaultSurfaceLayer, nil
		}
		var layer uint32
		if err := n.Decode(&layer); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, field, err)
		}
		return TextureLayer(layer), nil
	default:
		return nil, fmt.Errorf("%w: %s must be a color or a texture layer", ErrInvalidFormat, field)
	}
}

func vec2(v []float32, field string) (mgl32.Vec2, error) {
	if len(v) != 2 {
		return mgl32.Vec2{}, fmt.Errorf("%w: %s has %d components, want 2", ErrInvalidFormat, field, len(v))
	}
	return mgl32.Vec2{v[0], v[1]}, nil
}

// mappingValue returns the value of key in the top-level mapping of a document node, or nil.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
