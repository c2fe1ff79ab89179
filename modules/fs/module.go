// Package fs provides the file system tasks and the fileset data type. All
// file access goes through the project's afero filesystem.
package fs

import "github.com/vk/taskbridge/internal/registry"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the tasks and data types with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask("mkdir", (*Mkdir)(nil))
	r.RegisterTask("delete", (*Delete)(nil))
	r.RegisterTask("touch", (*Touch)(nil))
	r.RegisterTask("copy", (*Copy)(nil))
	r.RegisterDataType("fileset", (*FileSet)(nil))
}
