package gpu

import (
	"github.com/Carmen-Shannon/oxy-raycaster/common"
)

// Attribute is a typed vertex attribute (or index) stream backed by its own Buffer.
type Attribute struct {
	buffer     *Buffer
	dataType   AttributeType
	count      int
	components int32
	normalized bool
}

// NewFloatAttribute creates a float attribute with components values per vertex.
//
// Parameters:
//   - ctx: the device context
//   - data: the attribute values, copied
//   - components: values per vertex (1-4)
//   - normalized: whether fixed-point values are normalized when read
//
// Returns:
//   - *Attribute: the attribute, unbuilt
func NewFloatAttribute(ctx *Context, data []float32, components int32, normalized bool) *Attribute {
	return newAttribute(ctx, common.SliceToBytes(data), len(data), AttributeFloat, components, normalized)
}

// NewUintAttribute creates an unsigned integer attribute. Used for index streams.
//
// Parameters:
//   - ctx: the device context
//   - data: the attribute values, copied
//   - components: values per vertex (or per primitive for indices)
//   - normalized: whether values are normalized when read
//
// Returns:
//   - *Attribute: the attribute, unbuilt
func NewUintAttribute(ctx *Context, data []uint32, components int32, normalized bool) *Attribute {
	return newAttribute(ctx, common.SliceToBytes(data), len(data), AttributeUnsignedInt, components, normalized)
}

// NewIntAttribute creates a signed integer attribute.
//
// Parameters:
//   - ctx: the device context
//   - data: the attribute values, copied
//   - components: values per vertex
//   - normalized: whether values are normalized when read
//
// Returns:
//   - *Attribute: the attribute, unbuilt
func NewIntAttribute(ctx *Context, data []int32, components int32, normalized bool) *Attribute {
	return newAttribute(ctx, common.SliceToBytes(data), len(data), AttributeInt, components, normalized)
}

func newAttribute(ctx *Context, payload []byte, count int, dataType AttributeType, components int32, normalized bool) *Attribute {
	return &Attribute{
		buffer:     NewBufferWithData(ctx, ArrayBuffer, payload),
		dataType:   dataType,
		count:      count,
		components: components,
		normalized: normalized,
	}
}

// Buffer returns the backing buffer.
func (a *Attribute) Buffer() *Buffer {
	return a.buffer
}

// DataType returns the element type.
func (a *Attribute) DataType() AttributeType {
	return a.dataType
}

// Count returns the number of scalar elements (not vertices).
func (a *Attribute) Count() int {
	return a.count
}

// Components returns the number of values per vertex.
func (a *Attribute) Components() int32 {
	return a.components
}

// Normalized reports whether values are normalized when read.
func (a *Attribute) Normalized() bool {
	return a.normalized
}

// Clone returns an attribute with the same layout and an unbuilt copy of the buffer.
func (a *Attribute) Clone() *Attribute {
	c := *a
	c.buffer = a.buffer.Clone()
	return &c
}
