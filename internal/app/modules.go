package app

import (
	"github.com/vk/taskbridge/internal/registry"
	"github.com/vk/taskbridge/modules/echo"
	"github.com/vk/taskbridge/modules/flow"
	"github.com/vk/taskbridge/modules/fs"
	"github.com/vk/taskbridge/modules/property"
	"github.com/vk/taskbridge/modules/taskdef"
)

// coreModules is the definitive list of all modules that are compiled into
// the taskbridge binary.
var coreModules = []registry.Module{
	&echo.Module{},
	&property.Module{},
	&fs.Module{},
	&flow.Module{},
	&taskdef.Module{},
}
