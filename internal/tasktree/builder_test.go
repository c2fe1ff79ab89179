package tasktree

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskbridge/internal/testutil"
)

func mustFromMap(t *testing.T, m map[string]any) Spec {
	t.Helper()
	spec, err := FromMap(m)
	require.NoError(t, err)
	return spec
}

func TestBuild_NestedSequenceKeepsOrder(t *testing.T) {
	engine := testutil.NewFakeEngine()
	b := NewBuilder(engine.Tasks())

	spec := mustFromMap(t, map[string]any{
		"": map[string]any{
			"inner": []any{map[string]any{"a": 1}, map[string]any{"a": 2}},
		},
	})
	root, err := b.Build(context.Background(), "outer", spec, nil)
	require.NoError(t, err)

	assert.Equal(t, "outer", root.Name)
	require.Len(t, root.Children, 2)
	for i, want := range []string{"1", "2"} {
		child := root.Children[i]
		assert.Equal(t, "inner", child.Name)
		got, ok := child.Attr("a")
		require.True(t, ok)
		assert.Equal(t, want, got)
		assert.Same(t, root, child.Parent())
	}
}

func TestBuild_SiblingOrderForSequenceLengths(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5} {
		t.Run(fmt.Sprintf("length %d", n), func(t *testing.T) {
			engine := testutil.NewFakeEngine()
			b := NewBuilder(engine.Tasks())

			var spec Spec
			specs := make([]Spec, 0, n)
			for i := 0; i < n; i++ {
				var s Spec
				s.Set("index", i)
				specs = append(specs, s)
			}
			spec.Add("item", specs...)

			root, err := b.Build(context.Background(), "list", spec, nil)
			require.NoError(t, err)
			require.Len(t, root.Children, n)

			hostChildren := root.Element.Children()
			wrapperChildren := root.Element.Wrapper().Children()
			require.Len(t, hostChildren, n)
			require.Len(t, wrapperChildren, n)
			for i, child := range root.Children {
				got, _ := child.Attr("index")
				assert.Equal(t, fmt.Sprint(i), got)
				assert.Same(t, child.Element, hostChildren[i])
				assert.Same(t, child.Element.Wrapper(), wrapperChildren[i])
			}
		})
	}
}

func TestBuild_GroupsKeepDeclarationOrder(t *testing.T) {
	engine := testutil.NewFakeEngine()
	b := NewBuilder(engine.Tasks())

	var spec Spec
	var ref, path, arg Spec
	ref.Set("refid", "lib")
	path.Set("path", "target/classes")
	arg.Set("value", "-Xlint:all")
	spec.Add("compilerarg", arg).Add("classpath", ref).Add("classpath", path)

	root, err := b.Build(context.Background(), "javac", spec, nil)
	require.NoError(t, err)

	var names []string
	for _, c := range root.Children {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"compilerarg", "classpath", "classpath"}, names)
}

func TestBuild_NullAttributesAreNeverSet(t *testing.T) {
	engine := testutil.NewFakeEngine()
	b := NewBuilder(engine.Tasks())

	var typedNil *string
	spec := mustFromMap(t, map[string]any{"x": nil})
	spec.Set("y", typedNil)

	node, err := b.Build(context.Background(), "t", spec, nil)
	require.NoError(t, err)

	_, ok := node.Attr("x")
	assert.False(t, ok)
	_, ok = node.Element.Wrapper().Attribute("x")
	assert.False(t, ok)
	_, ok = node.Element.Wrapper().Attribute("y")
	assert.False(t, ok)
	assert.Empty(t, engine.CallsOf("attr"))
}

func TestBuild_FalsyValuesAreSet(t *testing.T) {
	engine := testutil.NewFakeEngine()
	b := NewBuilder(engine.Tasks())

	var spec Spec
	spec.Set("fork", false).Set("retries", 0).Set("suffix", "")

	node, err := b.Build(context.Background(), "t", spec, nil)
	require.NoError(t, err)

	assert.Equal(t, []Literal{
		{Name: "fork", Value: "false"},
		{Name: "retries", Value: "0"},
		{Name: "suffix", Value: ""},
	}, node.Attrs)
}

func TestBuild_RegisteredTasksAreCreatedConcretely(t *testing.T) {
	engine := testutil.NewFakeEngine("mkdir")
	b := NewBuilder(engine.Tasks())

	var spec, child Spec
	child.Set("dir", "x")
	spec.Add("fileset", child)

	_, err := b.Build(context.Background(), "mkdir", spec, nil)
	require.NoError(t, err)

	assert.Equal(t, []testutil.Call{
		{Op: "create", Name: "mkdir"},
		{Op: "unknown", Name: "fileset"},
		{Op: "attr", Name: "dir", Arg: "x"},
	}, engine.Calls)
}

func TestBuild_InvalidSpecs(t *testing.T) {
	engine := testutil.NewFakeEngine()
	b := NewBuilder(engine.Tasks())

	t.Run("empty element name", func(t *testing.T) {
		_, err := b.Build(context.Background(), " ", Spec{}, nil)
		require.ErrorIs(t, err, ErrInvalidSpec)
	})

	t.Run("reserved attribute name", func(t *testing.T) {
		var spec Spec
		spec.Set("@children", "x")
		_, err := b.Build(context.Background(), "t", spec, nil)
		require.ErrorIs(t, err, ErrInvalidSpec)
	})

	t.Run("nested child failure names the path", func(t *testing.T) {
		var spec, bad Spec
		bad.Set("list", []string{"a"})
		spec.Add("inner", Spec{}, bad)
		_, err := b.Build(context.Background(), "outer", spec, nil)
		require.ErrorIs(t, err, ErrInvalidSpec)
		assert.Contains(t, err.Error(), `"inner"[1]`)
	})
}

func TestFromMap(t *testing.T) {
	t.Run("whitespace and marker keys hold children", func(t *testing.T) {
		spec := mustFromMap(t, map[string]any{
			"   ":    map[string]any{"a": map[string]any{"k": "v"}},
			"@extra": map[string]any{"b": []map[string]any{{"k": 1}, {"k": 2}}},
			"srcdir": "src",
		})
		require.Len(t, spec.Children, 2)
		assert.Equal(t, "a", spec.Children[0].Name)
		assert.Equal(t, "b", spec.Children[1].Name)
		assert.Len(t, spec.Children[1].Specs, 2)
		assert.Equal(t, []Attr{{Name: "srcdir", Value: "src"}}, spec.Attrs)
	})

	t.Run("spec values are accepted", func(t *testing.T) {
		var inner Spec
		inner.Set("k", "v")
		spec := mustFromMap(t, map[string]any{"": map[string]any{"a": inner, "b": []Spec{inner, inner}}})
		assert.Len(t, spec.Children[0].Specs, 1)
		assert.Len(t, spec.Children[1].Specs, 2)
	})

	testCases := []struct {
		name  string
		input map[string]any
	}{
		{name: "children not a map", input: map[string]any{"": "oops"}},
		{name: "nested map under attribute key", input: map[string]any{"classpath": map[string]any{"refid": "lib"}}},
		{name: "list attribute", input: map[string]any{"args": []string{"a", "b"}}},
		{name: "child of wrong shape", input: map[string]any{"": map[string]any{"a": 1}}},
		{name: "list entry of wrong shape", input: map[string]any{"": map[string]any{"a": []any{"x"}}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromMap(tc.input)
			require.ErrorIs(t, err, ErrInvalidSpec)
		})
	}
}

func TestRender(t *testing.T) {
	u, err := url.Parse("https://example.com/a")
	require.NoError(t, err)
	n := 42

	testCases := []struct {
		input    any
		expected string
	}{
		{input: "plain", expected: "plain"},
		{input: 1, expected: "1"},
		{input: 1.8, expected: "1.8"},
		{input: 1e21, expected: "1000000000000000000000"},
		{input: float32(0.5), expected: "0.5"},
		{input: true, expected: "true"},
		{input: u, expected: "https://example.com/a"},
		{input: &n, expected: "42"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			got, err := Render(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err = Render(map[string]any{})
	require.ErrorIs(t, err, ErrInvalidSpec)

	for _, unset := range []any{nil, (*int)(nil), (*url.URL)(nil)} {
		_, err = Render(unset)
		require.ErrorIs(t, err, ErrInvalidSpec, "%T", unset)
	}
}

func TestSpecAdd_InterleavedGroups(t *testing.T) {
	var spec Spec
	spec.Add("echo", Spec{}).Add("mkdir", Spec{}).Add("echo", Spec{}, Spec{})

	require.Len(t, spec.Children, 3)
	assert.Equal(t, "echo", spec.Children[0].Name)
	assert.Equal(t, "mkdir", spec.Children[1].Name)
	assert.Equal(t, "echo", spec.Children[2].Name)
	assert.Len(t, spec.Children[2].Specs, 2)
}
