package property

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskbridge/internal/bridge"
	"github.com/vk/taskbridge/internal/project"
	"github.com/vk/taskbridge/internal/registry"
	"github.com/vk/taskbridge/internal/tasktree"
)

func setup(t *testing.T) (*project.Project, *bridge.Bridge, afero.Fs) {
	t.Helper()
	reg := registry.New()
	(&Module{}).Register(reg)
	memfs := afero.NewMemMapFs()
	p, err := project.New(reg, project.Options{BaseDir: "/work", Fs: memfs})
	require.NoError(t, err)
	return p, bridge.New(p), memfs
}

func attrs(kv ...any) tasktree.Spec {
	var s tasktree.Spec
	for i := 0; i+1 < len(kv); i += 2 {
		s.Set(kv[i].(string), kv[i+1])
	}
	return s
}

func TestProperty(t *testing.T) {
	p, b, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, b.Perform(ctx, "property", attrs("name", "src.dir", "value", "src")))
	require.NoError(t, b.Perform(ctx, "property", attrs("name", "src.dir", "value", "other")))
	v, _ := p.Property("src.dir")
	assert.Equal(t, "src", v, "properties are immutable")

	require.NoError(t, b.Perform(ctx, "property", attrs("name", "empty", "value", "")))
	v, ok := p.Property("empty")
	require.True(t, ok)
	assert.Equal(t, "", v)

	require.NoError(t, b.Perform(ctx, "property", attrs("name", "lib", "location", "target/lib")))
	v, _ = p.Property("lib")
	assert.Equal(t, "/work/target/lib", v)

	require.NoError(t, b.Perform(ctx, "property", attrs("name", "ref", "value", "${src.dir}/main")))
	v, _ = p.Property("ref")
	assert.Equal(t, "src/main", v)

	require.Error(t, b.Perform(ctx, "property", attrs("value", "x")))
	require.Error(t, b.Perform(ctx, "property", attrs("name", "x")))
}

func TestProperty_Environment(t *testing.T) {
	t.Setenv("TASKBRIDGE_TEST_HOME", "/opt/tb")
	p, b, _ := setup(t)

	require.NoError(t, b.Perform(context.Background(), "property", attrs("environment", "env")))
	v, ok := p.Property("env.TASKBRIDGE_TEST_HOME")
	require.True(t, ok)
	assert.Equal(t, "/opt/tb", v)
}

func TestAvailable(t *testing.T) {
	p, b, fsys := setup(t)
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fsys, "/work/lib/ivy.jar", []byte("jar"), 0o644))

	testCases := []struct {
		name  string
		spec  tasktree.Spec
		prop  string
		want  string
		isSet bool
	}{
		{name: "file exists", spec: attrs("property", "ivy.present", "file", "lib/ivy.jar"), prop: "ivy.present", want: "true", isSet: true},
		{name: "custom value", spec: attrs("property", "ivy.v", "file", "lib/ivy.jar", "value", "yes"), prop: "ivy.v", want: "yes", isSet: true},
		{name: "missing file", spec: attrs("property", "missing", "file", "lib/none.jar"), prop: "missing"},
		{name: "type mismatch", spec: attrs("property", "as.dir", "file", "lib/ivy.jar", "type", "dir"), prop: "as.dir"},
		{name: "directory", spec: attrs("property", "lib.dir", "file", "lib", "type", "dir"), prop: "lib.dir", want: "true", isSet: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, b.Perform(ctx, "available", tc.spec))
			v, ok := p.Property(tc.prop)
			assert.Equal(t, tc.isSet, ok)
			assert.Equal(t, tc.want, v)
		})
	}

	require.Error(t, b.Perform(ctx, "available", attrs("file", "lib")))
}
