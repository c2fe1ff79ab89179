package fs

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
)

func setup(t *testing.T) (*bridge.Bridge, afero.Fs) {
	t.Helper()
	reg := registry.New()
	(&Module{}).Register(reg)
	require.NoError(t, reg.ValidateRegistry(context.Background()))

	memfs := afero.NewMemMapFs()
	p, err := project.New(reg, project.Options{BaseDir: "/work", Fs: memfs})
	require.NoError(t, err)
	return bridge.New(p), memfs
}

func attrs(kv ...any) tasktree.Spec {
	var s tasktree.Spec
	for i := 0; i+1 < len(kv); i += 2 {
		s.Set(kv[i].(string), kv[i+1])
	}
	return s
}

func seed(t *testing.T, fsys afero.Fs, files ...string) {
	t.Helper()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fsys, f, []byte(f), 0o644))
	}
}

func TestMkdir(t *testing.T) {
	b, fsys := setup(t)
	ctx := context.Background()

	require.NoError(t, b.Perform(ctx, "mkdir", attrs("dir", "target/classes")))
	ok, err := afero.DirExists(fsys, "/work/target/classes")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Perform(ctx, "mkdir", attrs("dir", "target/classes")), "existing directory is fine")

	seed(t, fsys, "/work/plain")
	err = b.Perform(ctx, "mkdir", attrs("dir", "plain"))
	var failure *host.TaskExecutionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "mkdir", failure.Task)

	require.Error(t, b.Perform(ctx, "mkdir", tasktree.Spec{}))
}

func TestTouch(t *testing.T) {
	b, fsys := setup(t)
	ctx := context.Background()

	require.NoError(t, b.Perform(ctx, "touch", attrs("file", "a/b/stamp", "mkdirs", true)))
	ok, err := afero.Exists(fsys, "/work/a/b/stamp")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Perform(ctx, "touch", attrs("file", "a/b/stamp", "millis", int64(1_000_000))))
	fi, err := fsys.Stat("/work/a/b/stamp")
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), fi.ModTime().UnixMilli())
}

func TestCopy_File(t *testing.T) {
	b, fsys := setup(t)
	ctx := context.Background()
	seed(t, fsys, "/work/lib/ivy.jar")

	require.NoError(t, b.Perform(ctx, "copy", attrs("file", "lib/ivy.jar", "todir", "dist")))
	data, err := afero.ReadFile(fsys, "/work/dist/ivy.jar")
	require.NoError(t, err)
	assert.Equal(t, "/work/lib/ivy.jar", string(data))

	require.NoError(t, b.Perform(ctx, "copy", attrs("file", "lib/ivy.jar", "tofile", "dist/renamed.jar")))
	ok, _ := afero.Exists(fsys, "/work/dist/renamed.jar")
	assert.True(t, ok)

	testCases := []struct {
		name string
		spec tasktree.Spec
	}{
		{name: "no source", spec: attrs("todir", "dist")},
		{name: "no destination", spec: attrs("file", "lib/ivy.jar")},
		{name: "both destinations", spec: attrs("file", "lib/ivy.jar", "todir", "d", "tofile", "f")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, b.Perform(ctx, "copy", tc.spec))
		})
	}
}

func TestCopy_FileSet(t *testing.T) {
	b, fsys := setup(t)
	ctx := context.Background()
	seed(t, fsys,
		"/work/src/main.go",
		"/work/src/main_test.go",
		"/work/src/pkg/util.go",
		"/work/src/README.md",
	)

	set := attrs("dir", "src", "includes", "**/*.go", "excludes", "**/*_test.go")
	var spec tasktree.Spec
	spec.Set("todir", "build").Add("fileset", set)

	require.NoError(t, b.Perform(ctx, "copy", spec))

	for _, f := range []string{"/work/build/main.go", "/work/build/pkg/util.go"} {
		ok, err := afero.Exists(fsys, f)
		require.NoError(t, err)
		assert.True(t, ok, f)
	}
	for _, f := range []string{"/work/build/main_test.go", "/work/build/README.md"} {
		ok, err := afero.Exists(fsys, f)
		require.NoError(t, err)
		assert.False(t, ok, f)
	}
}

func TestDelete(t *testing.T) {
	b, fsys := setup(t)
	ctx := context.Background()

	t.Run("directory tree", func(t *testing.T) {
		seed(t, fsys, "/work/out/a/b.txt", "/work/out/c.txt")
		require.NoError(t, b.Perform(ctx, "delete", attrs("dir", "out")))
		ok, _ := afero.Exists(fsys, "/work/out")
		assert.False(t, ok)
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		require.NoError(t, b.Perform(ctx, "delete", attrs("file", "nothing-here", "quiet", true)))
	})

	t.Run("fileset with nested include", func(t *testing.T) {
		seed(t, fsys, "/work/logs/a.log", "/work/logs/b.log", "/work/logs/keep.txt")

		var include tasktree.Spec
		include.Set("name", "*.log")
		set := attrs("dir", "logs")
		set.Add("include", include)
		var spec tasktree.Spec
		spec.Add("fileset", set)

		require.NoError(t, b.Perform(ctx, "delete", spec))
		files, err := afero.ReadDir(fsys, "/work/logs")
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "keep.txt", files[0].Name())
	})

	t.Run("nothing to delete", func(t *testing.T) {
		require.Error(t, b.Perform(ctx, "delete", tasktree.Spec{}))
	})
}

func TestFileSet_Files(t *testing.T) {
	b, fsys := setup(t)
	ctx := context.Background()
	seed(t, fsys, "/work/res/a.txt", "/work/res/sub/b.txt", "/work/res/sub/c.bin", "/work/res/gen/d.txt")

	testCases := []struct {
		name  string
		attrs map[string]any
		want  []string
	}{
		{name: "everything", attrs: map[string]any{"dir": "res"}, want: []string{"a.txt", "gen/d.txt", "sub/b.txt", "sub/c.bin"}},
		{name: "top level only", attrs: map[string]any{"dir": "res", "includes": "*.txt"}, want: []string{"a.txt"}},
		{name: "recursive with exclude dir", attrs: map[string]any{"dir": "res", "includes": "**/*.txt", "excludes": "gen/"}, want: []string{"a.txt", "sub/b.txt"}},
		{name: "comma separated", attrs: map[string]any{"dir": "res", "includes": "a.txt, sub/*.bin"}, want: []string{"a.txt", "sub/c.bin"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := b.GetStructuredValue(ctx, "fileset", tc.attrs)
			require.NoError(t, err)
			set := v.(*FileSet)
			files, err := set.Files()
			require.NoError(t, err)
			assert.Equal(t, tc.want, files)
		})
	}

	t.Run("dir is required", func(t *testing.T) {
		v, err := b.GetStructuredValue(ctx, "fileset", map[string]any{"includes": "*"})
		require.NoError(t, err)
		_, err = v.(*FileSet).Files()
		require.Error(t, err)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		v, err := b.GetStructuredValue(ctx, "fileset", map[string]any{"dir": "res", "includes": "[a-"})
		require.NoError(t, err)
		_, err = v.(*FileSet).Files()
		require.Error(t, err)
	})
}
