// Package shader implements the GLSL pre-processor shared by the raycaster programs. It scans
// shader source for @oxy: directives in line comments and replaces them with struct
// declarations registered from the Go side of each buffer layout, or with generated std430
// storage buffer blocks. The buffer declarations are collected so callers can check them
// against their binding layout.
package shader

import (
	"fmt"
	"strings"
)

// registryEntry pairs a GLSL struct declaration with its type name.
type registryEntry struct {
	// Source is the declaration injected by @oxy:include.
	Source string

	// Type is the GLSL type name used in generated buffer blocks.
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry map[AnnotationArg]registryEntry

	// declarations accumulates buffer directives during a Process call.
	declarations []Annotation
}

// PreProcessor rewrites GLSL source containing @oxy: directives.
type PreProcessor interface {
	// Process replaces every @oxy:include with the registered struct declaration and every
	// @oxy:buffer with a std430 storage block. A struct is declared at most once per source;
	// a buffer directive does not declare its struct.
	//
	// The declarations list is reset at the start of each call and can be retrieved
	// via Declarations() after Process returns.
	//
	// Parameters:
	//   - source: the GLSL source
	//
	// Returns:
	//   - string: the processed source
	//   - error: an error if a directive is malformed or references an unknown struct
	Process(source string) (string, error)

	// Declarations returns the buffer directives found by the most recent Process call, in
	// source order.
	//
	// Returns:
	//   - []Annotation: the buffer declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// PreProcessorOption is a functional option for configuring a PreProcessor.
type PreProcessorOption func(*preProcessor)

// WithStruct registers a struct declaration.
//
// Parameters:
//   - key: the name used in directives
//   - typeName: the GLSL type name declared by source
//   - source: the GLSL struct declaration
//
// Returns:
//   - PreProcessorOption: functional option to register the struct
func WithStruct(key AnnotationArg, typeName, source string) PreProcessorOption {
	return func(p *preProcessor) {
		p.structRegistry[key] = registryEntry{Source: source, Type: typeName}
	}
}

// NewPreProcessor creates a PreProcessor knowing the registered structs.
//
// Parameters:
//   - options: functional options registering structs
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{
		structRegistry: make(map[AnnotationArg]registryEntry),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[AnnotationArg]bool)
	slots := make(map[int]int)

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		entry, ok := p.structRegistry[a.Struct()]
		if !ok {
			return "", fmt.Errorf("line %d: unknown struct %q", a.Line, a.Struct())
		}

		switch a.Type {
		case annotationTypeInclude:
			if included[a.Struct()] {
				continue
			}
			included[a.Struct()] = true
			out = append(out, entry.Source)
		case AnnotationTypeBuffer:
			name := string(a.Args[2])
			if !isIdentifier(name) {
				return "", fmt.Errorf("line %d: invalid buffer name %q", a.Line, name)
			}
			if prev, ok := slots[*a.Slot]; ok {
				return "", fmt.Errorf("line %d: slot %d already declared on line %d", a.Line, *a.Slot, prev)
			}
			slots[*a.Slot] = a.Line

			out = append(out, fmt.Sprintf("layout(std430, binding = %d) %sbuffer %sBuffer%d {\n    %s %s[];\n};",
				*a.Slot, accessQualifiers[a.Args[0]], entry.Type, *a.Slot, entry.Type, name))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
