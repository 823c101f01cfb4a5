package element

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-ui/halcyon/native"
)

func newTestTree(t *testing.T) (*native.Headless, *Registry) {
	t.Helper()
	backend := native.NewHeadless()
	return backend, NewRegistry(backend)
}

func mustNew(t *testing.T, reg *Registry, kind native.Kind) *Element {
	t.Helper()
	e, err := New(reg, kind)
	require.NoError(t, err)
	return e
}

// shadowMatchesNative asserts the script-side sequence and the native child
// list are identical.
func shadowMatchesNative(t *testing.T, backend *native.Headless, c *Element) {
	t.Helper()
	nativeOrder := backend.Children(c.NativeHandle())
	shadow := c.Children()
	require.Equal(t, len(nativeOrder), len(shadow), "shadow length diverged from native")
	for i, child := range shadow {
		assert.Equal(t, nativeOrder[i], child.NativeHandle(), "order diverged at index %d", i)
	}
}

func TestCreateElement(t *testing.T) {
	_, reg := newTestTree(t)

	e := mustNew(t, reg, native.KindContainer)
	assert.NotEqual(t, native.NilHandle, e.NativeHandle())
	assert.Equal(t, native.KindContainer, e.Kind())
	assert.True(t, e.ContainerCapable())

	leaf := mustNew(t, reg, native.KindLabel)
	assert.False(t, leaf.ContainerCapable())
}

func TestCreateElementFailure(t *testing.T) {
	backend := native.NewHeadless()
	backend.FailCreation = true
	reg := NewRegistry(backend)

	_, err := New(reg, native.KindButton)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrElementCreation))
}

func TestAddChildAppends(t *testing.T) {
	backend, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)
	e := mustNew(t, reg, native.KindLabel)

	require.NoError(t, c.AppendChild(e))

	assert.Same(t, c, e.Parent())
	children := c.Children()
	require.Len(t, children, 1)
	assert.Same(t, e, children[0])
	shadowMatchesNative(t, backend, c)
}

func TestAddChildAtIndex(t *testing.T) {
	backend, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)
	l1 := mustNew(t, reg, native.KindLabel)
	l2 := mustNew(t, reg, native.KindLabel)
	l3 := mustNew(t, reg, native.KindLabel)

	require.NoError(t, c.AppendChild(l1))
	require.NoError(t, c.AppendChild(l3))
	require.NoError(t, c.AddChild(l2, 1))

	children := c.Children()
	require.Len(t, children, 3)
	assert.Same(t, l1, children[0])
	assert.Same(t, l2, children[1])
	assert.Same(t, l3, children[2])
	shadowMatchesNative(t, backend, c)
}

func TestAddChildOutOfRangeAppends(t *testing.T) {
	backend, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)
	l1 := mustNew(t, reg, native.KindLabel)
	l2 := mustNew(t, reg, native.KindLabel)

	require.NoError(t, c.AddChild(l1, 99))
	require.NoError(t, c.AddChild(l2, -1))

	children := c.Children()
	require.Len(t, children, 2)
	assert.Same(t, l1, children[0])
	assert.Same(t, l2, children[1])
	shadowMatchesNative(t, backend, c)
}

func TestRemoveChild(t *testing.T) {
	backend, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)
	e := mustNew(t, reg, native.KindLabel)

	require.NoError(t, c.AppendChild(e))
	c.RemoveChild(e)

	assert.Nil(t, e.Parent())
	assert.Empty(t, c.Children())
	shadowMatchesNative(t, backend, c)
}

func TestRemoveChildNilIsNoop(t *testing.T) {
	_, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)
	e := mustNew(t, reg, native.KindLabel)
	require.NoError(t, c.AppendChild(e))

	c.RemoveChild(nil)
	require.Len(t, c.Children(), 1)
	assert.Same(t, c, e.Parent())
}

func TestRemoveChildIdempotent(t *testing.T) {
	_, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)
	other := mustNew(t, reg, native.KindContainer)
	e := mustNew(t, reg, native.KindLabel)

	require.NoError(t, other.AppendChild(e))

	// Removing a non-child must not throw and must not alter children.
	c.RemoveChild(e)
	assert.Empty(t, c.Children())
	assert.Same(t, other, e.Parent())

	// Double removal is equally benign.
	other.RemoveChild(e)
	other.RemoveChild(e)
	assert.Empty(t, other.Children())
}

func TestReparent(t *testing.T) {
	backend, reg := newTestTree(t)
	c1 := mustNew(t, reg, native.KindContainer)
	c2 := mustNew(t, reg, native.KindContainer)
	e := mustNew(t, reg, native.KindLabel)

	require.NoError(t, c1.AppendChild(e))
	require.NoError(t, c2.AppendChild(e))

	assert.Same(t, c2, e.Parent())
	assert.Empty(t, c1.Children())
	children := c2.Children()
	require.Len(t, children, 1)
	assert.Same(t, e, children[0])
	shadowMatchesNative(t, backend, c1)
	shadowMatchesNative(t, backend, c2)
}

func TestReorderForward(t *testing.T) {
	backend, reg := newTestTree(t)
	a := mustNew(t, reg, native.KindContainer)
	l1 := mustNew(t, reg, native.KindLabel)
	l2 := mustNew(t, reg, native.KindLabel)
	l3 := mustNew(t, reg, native.KindLabel)

	require.NoError(t, a.AppendChild(l1))
	require.NoError(t, a.AppendChild(l2))
	require.NoError(t, a.AppendChild(l3))

	// Move the first label to index 2: expect [L2, L3, L1].
	require.NoError(t, a.AddChild(l1, 2))

	children := a.Children()
	require.Len(t, children, 3)
	assert.Same(t, l2, children[0])
	assert.Same(t, l3, children[1])
	assert.Same(t, l1, children[2])
	assert.Same(t, a, l1.Parent())
	shadowMatchesNative(t, backend, a)
}

func TestReorderBackward(t *testing.T) {
	backend, reg := newTestTree(t)
	a := mustNew(t, reg, native.KindContainer)
	l1 := mustNew(t, reg, native.KindLabel)
	l2 := mustNew(t, reg, native.KindLabel)
	l3 := mustNew(t, reg, native.KindLabel)

	require.NoError(t, a.AppendChild(l1))
	require.NoError(t, a.AppendChild(l2))
	require.NoError(t, a.AppendChild(l3))

	require.NoError(t, a.AddChild(l3, 0))

	children := a.Children()
	require.Len(t, children, 3)
	assert.Same(t, l3, children[0])
	assert.Same(t, l1, children[1])
	assert.Same(t, l2, children[2])
	shadowMatchesNative(t, backend, a)
}

func TestReorderSameIndexIsNoop(t *testing.T) {
	backend, reg := newTestTree(t)
	a := mustNew(t, reg, native.KindContainer)
	l1 := mustNew(t, reg, native.KindLabel)
	l2 := mustNew(t, reg, native.KindLabel)

	require.NoError(t, a.AppendChild(l1))
	require.NoError(t, a.AppendChild(l2))
	require.NoError(t, a.AddChild(l2, 1))

	children := a.Children()
	require.Len(t, children, 2)
	assert.Same(t, l1, children[0])
	assert.Same(t, l2, children[1])
	shadowMatchesNative(t, backend, a)
}

func TestAddChildBefore(t *testing.T) {
	_, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)
	l1 := mustNew(t, reg, native.KindLabel)
	l2 := mustNew(t, reg, native.KindLabel)

	require.NoError(t, c.AppendChild(l1))
	require.NoError(t, c.AddChildBefore(l2, l1))

	children := c.Children()
	require.Len(t, children, 2)
	assert.Same(t, l2, children[0])
	assert.Same(t, l1, children[1])
}

func TestAddChildAfter(t *testing.T) {
	_, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)
	l1 := mustNew(t, reg, native.KindLabel)
	l2 := mustNew(t, reg, native.KindLabel)
	l3 := mustNew(t, reg, native.KindLabel)

	require.NoError(t, c.AppendChild(l1))
	require.NoError(t, c.AppendChild(l3))
	require.NoError(t, c.AddChildAfter(l2, l1))

	children := c.Children()
	require.Len(t, children, 3)
	assert.Same(t, l2, children[1])
}

func TestAddChildBeforeAfterMissingReferenceAppends(t *testing.T) {
	_, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)
	l1 := mustNew(t, reg, native.KindLabel)
	stranger := mustNew(t, reg, native.KindLabel)
	n1 := mustNew(t, reg, native.KindLabel)
	n2 := mustNew(t, reg, native.KindLabel)

	require.NoError(t, c.AppendChild(l1))

	// Both variants fall back to appending when the reference node is not
	// a current child.
	require.NoError(t, c.AddChildAfter(n1, stranger))
	require.NoError(t, c.AddChildBefore(n2, stranger))

	children := c.Children()
	require.Len(t, children, 3)
	assert.Same(t, l1, children[0])
	assert.Same(t, n1, children[1])
	assert.Same(t, n2, children[2])
}

func TestChildrenSnapshot(t *testing.T) {
	_, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)
	l1 := mustNew(t, reg, native.KindLabel)
	require.NoError(t, c.AppendChild(l1))

	snapshot := c.Children()
	snapshot[0] = nil
	snapshot = snapshot[:0]

	children := c.Children()
	require.Len(t, children, 1)
	assert.Same(t, l1, children[0])
}

func TestLeafRejectsChildren(t *testing.T) {
	_, reg := newTestTree(t)
	label := mustNew(t, reg, native.KindLabel)
	e := mustNew(t, reg, native.KindLabel)

	err := label.AppendChild(e)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotContainer))
	assert.Nil(t, e.Parent())
}

func TestCycleRejected(t *testing.T) {
	backend, reg := newTestTree(t)
	outer := mustNew(t, reg, native.KindContainer)
	inner := mustNew(t, reg, native.KindContainer)

	require.NoError(t, outer.AppendChild(inner))

	err := inner.AppendChild(outer)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTreeCycle))

	err = outer.AppendChild(outer)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTreeCycle))

	// The tree is untouched after the rejected mutations.
	assert.Same(t, outer, inner.Parent())
	assert.Empty(t, inner.Children())
	shadowMatchesNative(t, backend, outer)
}

// flakyBackend forces mutation failures to exercise the error branches of
// the mutation protocol.
type flakyBackend struct {
	*native.Headless
	failAdds    bool
	failRemoves bool
}

func (b *flakyBackend) AddChild(parent, child native.Handle, index int) error {
	if b.failAdds {
		return errors.New("native layer rejected insert")
	}
	return b.Headless.AddChild(parent, child, index)
}

func (b *flakyBackend) RemoveChild(parent native.Handle, index int) error {
	if b.failRemoves {
		return errors.New("native layer rejected remove")
	}
	return b.Headless.RemoveChild(parent, index)
}

func TestReorderInsertFailureDetaches(t *testing.T) {
	backend := &flakyBackend{Headless: native.NewHeadless()}
	reg := NewRegistry(backend)
	a := mustNew(t, reg, native.KindContainer)
	l1 := mustNew(t, reg, native.KindLabel)
	l2 := mustNew(t, reg, native.KindLabel)
	l3 := mustNew(t, reg, native.KindLabel)

	require.NoError(t, a.AppendChild(l1))
	require.NoError(t, a.AppendChild(l2))
	require.NoError(t, a.AppendChild(l3))

	// The remove half of the reorder lands, the re-insert is refused.
	backend.failAdds = true
	require.Error(t, a.AddChild(l1, 2))

	// The child is in neither child list and knows it.
	assert.Nil(t, l1.Parent())
	children := a.Children()
	require.Len(t, children, 2)
	assert.Same(t, l2, children[0])
	assert.Same(t, l3, children[1])
	shadowMatchesNative(t, backend.Headless, a)

	// Once the backend recovers the child can be attached again.
	backend.failAdds = false
	require.NoError(t, a.AppendChild(l1))
	assert.Same(t, a, l1.Parent())
}

func TestRemoveAllChildrenStopsOnBackendFailure(t *testing.T) {
	backend := &flakyBackend{Headless: native.NewHeadless()}
	reg := NewRegistry(backend)
	c := mustNew(t, reg, native.KindContainer)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.AppendChild(mustNew(t, reg, native.KindLabel)))
	}

	backend.failRemoves = true
	c.RemoveAllChildren()

	// No removal succeeded; the call must still return.
	assert.Len(t, c.Children(), 3)
}

func TestRemoveAllChildren(t *testing.T) {
	backend, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)
	for i := 0; i < 4; i++ {
		require.NoError(t, c.AppendChild(mustNew(t, reg, native.KindLabel)))
	}

	c.RemoveAllChildren()
	assert.Empty(t, c.Children())
	assert.Empty(t, backend.Children(c.NativeHandle()))
}

func TestStyleReplaceNotMerge(t *testing.T) {
	backend, reg := newTestTree(t)
	e := mustNew(t, reg, native.KindButton)

	e.SetStyle(native.Style{"background": "#fff", "padding": "4"})
	e.SetStyle(native.Style{"color": "#000"})

	// Assigning replaced the whole style state.
	assert.Equal(t, native.Style{"color": "#000"}, e.Style())
	assert.Equal(t, native.Style{"color": "#000"}, backend.EffectiveStyle(e.NativeHandle()))
}

func TestStyleCacheIsDefensive(t *testing.T) {
	_, reg := newTestTree(t)
	e := mustNew(t, reg, native.KindButton)

	style := native.Style{"color": "#000"}
	e.SetStyle(style)
	style["color"] = "#f00"

	assert.Equal(t, native.Style{"color": "#000"}, e.Style())
}

func TestHoverStyleAppliesWhileHovered(t *testing.T) {
	backend, reg := newTestTree(t)
	e := mustNew(t, reg, native.KindButton)

	e.SetStyle(native.Style{"background": "#fff", "color": "#000"})
	e.SetHoverStyle(native.Style{"background": "#eee"})

	backend.FireEvent(e.NativeHandle(), native.EventMouseEnter, nil)
	hovered := backend.EffectiveStyle(e.NativeHandle())
	assert.Equal(t, "#eee", hovered["background"])
	assert.Equal(t, "#000", hovered["color"])

	backend.FireEvent(e.NativeHandle(), native.EventMouseLeave, nil)
	idle := backend.EffectiveStyle(e.NativeHandle())
	assert.Equal(t, "#fff", idle["background"])
}

func TestParentResolvesThroughNativeQuery(t *testing.T) {
	backend, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)

	// A child attached natively, outside this framework's bookkeeping.
	raw := backend.CreateElement(native.KindLabel)
	require.NoError(t, backend.AddChild(c.NativeHandle(), raw, 0))

	adopted, err := Adopt(reg, raw)
	require.NoError(t, err)
	assert.Same(t, c, adopted.Parent())
}

func TestAdoptReturnsExistingWrapper(t *testing.T) {
	_, reg := newTestTree(t)
	e := mustNew(t, reg, native.KindLabel)

	again, err := Adopt(reg, e.NativeHandle())
	require.NoError(t, err)
	assert.Same(t, e, again)
}

func TestCloseReleasesHandle(t *testing.T) {
	backend, reg := newTestTree(t)
	c := mustNew(t, reg, native.KindContainer)
	e := mustNew(t, reg, native.KindLabel)
	require.NoError(t, c.AppendChild(e))

	h := e.NativeHandle()
	e.Close()

	assert.False(t, e.Alive())
	assert.Nil(t, reg.Resolve(h))
	assert.Empty(t, c.Children())
	_, ok := backend.ElementKind(h)
	assert.False(t, ok)
}

func TestFocus(t *testing.T) {
	backend, reg := newTestTree(t)
	e := mustNew(t, reg, native.KindEntry)

	e.Focus()
	assert.Equal(t, e.NativeHandle(), backend.Focused())
}
