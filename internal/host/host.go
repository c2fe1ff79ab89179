// Package host declares the surface of the build-orchestration engine that
// the bridge drives: the task registry, the property store, the type table,
// and the runtime element tree a task is assembled into before it runs.
//
// The bridge only ever talks to these interfaces. internal/project provides
// an in-process implementation; tests use the recording fake in
// internal/testutil.
package host

import (
	"context"
	"reflect"
)

// Names under which every host registers its structured value types.
const (
	FileType = "file"
	URLType  = "url"
)

// Element is the host's runtime representation of one task or nested
// element. Until the host resolves it, an element may be a placeholder that
// only knows its name; Proxy is nil in that state.
type Element interface {
	Name() string
	Proxy() any
	SetProxy(obj any)
	AddChild(child Element)
	Children() []Element
	Wrapper() Wrapper
	// Perform configures the element from its wrapper and executes it.
	Perform(ctx context.Context) error
}

// Wrapper is the runtime configuration of an element: string-valued
// attributes and child wrappers, resolved into the proxy by the host when
// the element is configured.
type Wrapper interface {
	ElementName() string
	SetAttribute(name, value string)
	Attribute(name string) (string, bool)
	// AttributeNames lists attributes in the order they were first set.
	AttributeNames() []string
	AddChild(child Wrapper)
	Children() []Wrapper
	Proxy() any
	SetProxy(obj any)
}

// TaskRegistry creates tasks and data types by name.
type TaskRegistry interface {
	IsTaskRegistered(name string) bool
	CreateTask(ctx context.Context, name string) (Element, error)
	NewUnknownElement(name string) Element
	RegisterTaskType(name string, impl reflect.Type) error
	CreateDataType(ctx context.Context, name string) (any, error)
	TaskNames() []string
}

// PropertyStore is the host's build-property store.
type PropertyStore interface {
	Property(name string) (string, bool)
	SetProperty(name, value string)
}

// Constructor builds a new instance of a registered type from one input value.
type Constructor func(v any) (any, error)

// TypeTable is the host's registry of named types. Go cannot look a type up
// by name at runtime, so every type a script may reference is listed here.
type TypeTable interface {
	Lookup(name string) (reflect.Type, bool)
	NameOf(t reflect.Type) (string, bool)
	Constructor(t reflect.Type) (Constructor, bool)
}

// Engine aggregates the host collaborators.
type Engine interface {
	Tasks() TaskRegistry
	Properties() PropertyStore
	Types() TypeTable
	// Strict reports whether unknown attributes are errors rather than no-ops.
	Strict() bool
}
