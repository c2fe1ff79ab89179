package flow

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskbridge/internal/bridge"
	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/project"
	"github.com/vk/taskbridge/internal/registry"
	"github.com/vk/taskbridge/internal/tasktree"
	"github.com/vk/taskbridge/modules/property"
)

func setup(t *testing.T) (*project.Project, *bridge.Bridge) {
	t.Helper()
	reg := registry.New()
	(&Module{}).Register(reg)
	(&property.Module{}).Register(reg)
	p, err := project.New(reg, project.Options{BaseDir: "/work", Fs: afero.NewMemMapFs()})
	require.NoError(t, err)
	return p, bridge.New(p)
}

func attrs(kv ...any) tasktree.Spec {
	var s tasktree.Spec
	for i := 0; i+1 < len(kv); i += 2 {
		s.Set(kv[i].(string), kv[i+1])
	}
	return s
}

func TestFail(t *testing.T) {
	p, b := setup(t)
	ctx := context.Background()

	err := b.Perform(ctx, "fail", attrs("message", "tests failed"))
	var failure *host.TaskExecutionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "tests failed", failure.Error())

	err = b.Perform(ctx, "fail", tasktree.Spec{})
	require.EqualError(t, err, "No message")

	require.NoError(t, b.Perform(ctx, "fail", attrs("if", "broken")))
	p.SetProperty("broken", "yes")
	require.Error(t, b.Perform(ctx, "fail", attrs("if", "broken")))

	require.NoError(t, b.Perform(ctx, "fail", attrs("unless", "broken")))
}

func TestSequential(t *testing.T) {
	p, b := setup(t)
	ctx := context.Background()

	var spec tasktree.Spec
	spec.Add("property", attrs("name", "stage", "value", "one")).
		Add("fail", attrs("message", "stage ${stage} failed", "unless", "stage")).
		Add("property", attrs("name", "after", "value", "${stage}"))

	require.NoError(t, b.Perform(ctx, "sequential", spec))
	v, _ := p.Property("after")
	assert.Equal(t, "one", v, "nested tasks see properties set by earlier siblings")

	spec = tasktree.Spec{}
	spec.Add("fail", attrs("message", "stage ${stage} failed")).
		Add("property", attrs("name", "never", "value", "x"))

	err := b.Perform(ctx, "sequential", spec)
	require.EqualError(t, err, "stage one failed")
	var failure *host.TaskExecutionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "fail", failure.Task)
	_, ok := p.Property("never")
	assert.False(t, ok)
}
