package taskdef

import (
	"context"
	"reflect"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskbridge/internal/bridge"
	"github.com/vk/taskbridge/internal/project"
	"github.com/vk/taskbridge/internal/registry"
	"github.com/vk/taskbridge/internal/tasktree"
)

type stamp struct {
	project.Component
	label string
}

func (s *stamp) SetLabel(label string) { s.label = label }

func (s *stamp) Execute(ctx context.Context) error {
	s.Project().SetProperty("stamped", s.label)
	return nil
}

func setup(t *testing.T) (*project.Project, *bridge.Bridge) {
	t.Helper()
	reg := registry.New()
	(&Module{}).Register(reg)
	reg.RegisterDataType("stamp-impl", (*stamp)(nil))
	p, err := project.New(reg, project.Options{BaseDir: "/work", Fs: afero.NewMemMapFs()})
	require.NoError(t, err)
	return p, bridge.New(p)
}

func TestTaskdef_ByClassname(t *testing.T) {
	p, b := setup(t)
	ctx := context.Background()

	var spec tasktree.Spec
	spec.Set("name", "stamp").Set("classname", "taskdef.stamp")
	require.NoError(t, b.Perform(ctx, "taskdef", spec))

	spec = tasktree.Spec{}
	spec.Set("label", "v1")
	require.NoError(t, b.Perform(ctx, "stamp", spec))
	v, _ := p.Property("stamped")
	assert.Equal(t, "v1", v)
}

func TestTaskdef_ThroughBridge(t *testing.T) {
	p, b := setup(t)
	ctx := context.Background()

	require.NoError(t, b.RegisterTaskType(ctx, "stamp2", reflect.TypeOf(&stamp{}), tasktree.Spec{}))
	assert.True(t, p.Tasks().IsTaskRegistered("stamp2"))

	require.NoError(t, b.RegisterTaskType(ctx, "stamp3", "taskdef.stamp", tasktree.Spec{}))
	assert.True(t, p.Tasks().IsTaskRegistered("stamp3"))
}

func TestTaskdef_Errors(t *testing.T) {
	_, b := setup(t)
	ctx := context.Background()

	var spec tasktree.Spec
	spec.Set("name", "x").Set("classname", "no.such.Type")
	require.Error(t, b.Perform(ctx, "taskdef", spec))

	require.Error(t, b.Perform(ctx, "taskdef", tasktree.Spec{}))
}
