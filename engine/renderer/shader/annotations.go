package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// annotationPrefix marks a pre-processor directive. Directives live in line comments so an
// unprocessed source is still valid GLSL.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of directive.
type AnnotationType string

const (
	// annotationTypeInclude injects a registered struct declaration.
	//   // @oxy:include <struct>
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBuffer declares a std430 storage buffer holding an array of a registered struct.
	//   // @oxy:buffer <read|write|read_write> <slot> <struct> <name>
	AnnotationTypeBuffer AnnotationType = "buffer"
)

// AnnotationArg is a single directive argument.
type AnnotationArg string

// Buffer access qualifiers.
const (
	AnnotationArgRead      AnnotationArg = "read"
	AnnotationArgWrite     AnnotationArg = "write"
	AnnotationArgReadWrite AnnotationArg = "read_write"
)

var accessQualifiers = map[AnnotationArg]string{
	AnnotationArgRead:      "readonly ",
	AnnotationArgWrite:     "writeonly ",
	AnnotationArgReadWrite: "",
}

// Annotation is one parsed directive.
type Annotation struct {
	Type AnnotationType

	// Args holds the arguments after the type: the struct key for include; access, struct key
	// and variable name for buffer.
	Args []AnnotationArg

	// Line is the 1-based source line.
	Line int

	// Slot is the storage binding point of a buffer directive, nil otherwise.
	Slot *int
}

// Struct returns the registered struct key the directive refers to.
func (a Annotation) Struct() AnnotationArg {
	if a.Type == AnnotationTypeBuffer {
		return a.Args[1]
	}
	return a.Args[0]
}

// parseAnnotation parses line. It returns nil, nil for lines without a directive.
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy:include requires exactly one argument", lineNum)
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case AnnotationTypeBuffer:
		if len(args) != 5 {
			return nil, fmt.Errorf("line %d: @oxy:buffer requires access, slot, struct and name", lineNum)
		}
		access := AnnotationArg(args[1])
		if _, ok := accessQualifiers[access]; !ok {
			valid := []string{string(AnnotationArgRead), string(AnnotationArgWrite), string(AnnotationArgReadWrite)}
			return nil, fmt.Errorf("line %d: unknown access %q, want one of %v", lineNum, access, valid)
		}
		slot, err := strconv.Atoi(args[2])
		if err != nil || slot < 0 {
			return nil, fmt.Errorf("line %d: invalid buffer slot %q", lineNum, args[2])
		}
		return &Annotation{
			Type: AnnotationTypeBuffer,
			Args: []AnnotationArg{access, AnnotationArg(args[3]), AnnotationArg(args[4])},
			Line: lineNum,
			Slot: &slot,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, args[0])
	}
}

// isIdentifier reports whether name is a valid GLSL identifier.
func isIdentifier(name string) bool {
	if name == "" || strings.HasPrefix(name, "gl_") || name[0] >= '0' && name[0] <= '9' {
		return false
	}
	for _, r := range name {
		if r != '_' && !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
