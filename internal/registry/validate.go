package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/taskbridge/internal/ctxlog"
)

// ValidateRegistry checks that every task type executes and that every
// registered type is a struct.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range sortedNames(r.tasks) {
		typ := r.tasks[name]
		if typ.Kind() != reflect.Struct {
			errs = append(errs, fmt.Sprintf("task '%s': type %s is not a struct", name, typ))
			continue
		}
		if !reflect.PointerTo(typ).Implements(taskType) {
			errs = append(errs, fmt.Sprintf("task '%s': *%s does not implement Execute(context.Context) error", name, typ))
		}
	}

	for _, name := range sortedNames(r.dataTypes) {
		typ := r.dataTypes[name]
		if typ.Kind() != reflect.Struct {
			errs = append(errs, fmt.Sprintf("data type '%s': type %s is not a struct", name, typ))
			continue
		}
		if _, clash := r.tasks[name]; clash {
			logger.Warn("Data type shares its name with a task; the task wins for top-level elements.", "name", name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
