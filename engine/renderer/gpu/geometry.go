package gpu

// Geometry composes attribute streams and an optional index stream into a drawable triangle list.
// The vertex-layout object is built exactly once, on the first Draw, binding each attribute at a
// slot equal to its insertion order. The geometry takes ownership of every attribute added to it.
type Geometry struct {
	ctx *Context

	attributes []*Attribute
	indices    *Attribute

	vertexArray uint32
}

// NewGeometry creates an empty geometry.
//
// Parameters:
//   - ctx: the device context
//
// Returns:
//   - *Geometry: the empty, unbuilt geometry
func NewGeometry(ctx *Context) *Geometry {
	return &Geometry{ctx: ctx}
}

// AddAttribute appends an attribute stream at the next slot.
//
// Parameters:
//   - attr: the attribute; ownership moves to the geometry
//
// Returns:
//   - error: ErrGeometryBuilt after the first Draw, or ErrInvalidComponents when the attribute
//     does not have 1 to 4 components per vertex
func (g *Geometry) AddAttribute(attr *Attribute) error {
	if g.vertexArray != 0 {
		return ErrGeometryBuilt
	}
	if attr.components < 1 || attr.components > 4 {
		return ErrInvalidComponents
	}
	g.attributes = append(g.attributes, attr)
	return nil
}

// SetIndices sets the index stream, turning Draw into an indexed draw.
//
// Parameters:
//   - attr: the index attribute; ownership moves to the geometry
//
// Returns:
//   - error: ErrGeometryBuilt after the first Draw
func (g *Geometry) SetIndices(attr *Attribute) error {
	if g.vertexArray != 0 {
		return ErrGeometryBuilt
	}
	if g.indices != nil && g.indices != attr {
		g.indices.buffer.Release()
	}
	attr.buffer.kind = ElementArrayBuffer
	g.indices = attr
	return nil
}

// Attributes returns the attribute streams in slot order.
func (g *Geometry) Attributes() []*Attribute {
	return g.attributes
}

// Indices returns the index stream, or nil.
func (g *Geometry) Indices() *Attribute {
	return g.indices
}

// Built reports whether the vertex-layout object exists.
func (g *Geometry) Built() bool {
	return g.vertexArray != 0
}

// Draw builds the vertex layout on first use, binds it and issues a triangle draw: indexed over
// the index count when indices are present, otherwise over the vertex count of the first attribute.
//
// Returns:
//   - error: ErrEmptyGeometry, or a device error
func (g *Geometry) Draw() error {
	if g.vertexArray == 0 {
		if err := g.build(); err != nil {
			return err
		}
	} else {
		g.ctx.device.BindVertexArray(g.vertexArray)
		if err := g.ctx.check("BindVertexArray"); err != nil {
			return err
		}
	}

	if g.indices != nil {
		g.ctx.device.DrawElements(int32(g.indices.count), g.indices.dataType)
		return g.ctx.check("DrawElements")
	}

	first := g.attributes[0]
	g.ctx.device.DrawArrays(0, int32(first.count)/first.components)
	return g.ctx.check("DrawArrays")
}

// Release deletes the vertex-layout object and every owned attribute buffer.
func (g *Geometry) Release() {
	if g.vertexArray != 0 {
		g.ctx.device.DeleteVertexArray(g.vertexArray)
		g.vertexArray = 0
	}
	if g.indices != nil {
		g.indices.buffer.Release()
	}
	for _, a := range g.attributes {
		a.buffer.Release()
	}
}

// build creates and fills the vertex-layout object. It is stored only when every step succeeds;
// on failure it is deleted so the next Draw starts over.
func (g *Geometry) build() (err error) {
	if len(g.attributes) == 0 {
		return ErrEmptyGeometry
	}

	vertexArray := g.ctx.device.GenVertexArray()
	defer func() {
		if err != nil && vertexArray != 0 {
			g.ctx.device.DeleteVertexArray(vertexArray)
		}
	}()
	if err := g.ctx.check("GenVertexArrays"); err != nil {
		return err
	}
	g.ctx.device.BindVertexArray(vertexArray)
	if err := g.ctx.check("BindVertexArray"); err != nil {
		return err
	}

	if g.indices != nil {
		if err := g.indices.buffer.Bind(); err != nil {
			return err
		}
	}

	for i, a := range g.attributes {
		slot := uint32(i)
		if err := a.buffer.Bind(); err != nil {
			return err
		}
		g.ctx.device.VertexAttribPointer(slot, a.components, a.dataType, a.normalized)
		if err := g.ctx.check("VertexAttribPointer"); err != nil {
			return err
		}
		g.ctx.device.EnableVertexAttribArray(slot)
		if err := g.ctx.check("EnableVertexAttribArray"); err != nil {
			return err
		}
	}
	g.vertexArray = vertexArray
	return nil
}
