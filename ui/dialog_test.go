package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-ui/halcyon/element"
	"github.com/halcyon-ui/halcyon/native"
)

// clickButton fires a click on the first button found under root.
func clickButton(t *testing.T, backend *native.Headless, root *element.Element, label string) {
	t.Helper()
	var walk func(e *element.Element) bool
	walk = func(e *element.Element) bool {
		if e.Kind() == native.KindButton && e.Style()["text"] == label {
			backend.FireEvent(e.NativeHandle(), native.EventClick, native.MouseDetail{})
			return true
		}
		for _, c := range e.Children() {
			if walk(c) {
				return true
			}
		}
		return false
	}
	require.True(t, walk(root), "no %q button under element %d", label, root.NativeHandle())
}

func TestConfirmOpensModalWindow(t *testing.T) {
	backend, app := newTestApp(t)
	owner, err := app.NewWindow(Options{Title: "main"})
	require.NoError(t, err)

	var result *bool
	d, err := app.Confirm(owner, "Quit", "Really quit?", func(ok bool) { result = &ok })
	require.NoError(t, err)

	// Multi-window platforms put the dialog into its own window.
	require.Len(t, app.Windows(), 2)
	assert.NotSame(t, owner.Body(), d.Content())

	clickButton(t, backend, d.Content(), "OK")
	require.NotNil(t, result)
	assert.True(t, *result)
	assert.False(t, d.Alive())
	assert.Len(t, app.Windows(), 1)
}

func TestConfirmCancel(t *testing.T) {
	backend, app := newTestApp(t)
	owner, err := app.NewWindow(Options{Title: "main"})
	require.NoError(t, err)

	var result *bool
	d, err := app.Confirm(owner, "Quit", "Really quit?", func(ok bool) { result = &ok })
	require.NoError(t, err)

	clickButton(t, backend, d.Content(), "Cancel")
	require.NotNil(t, result)
	assert.False(t, *result)
}

func TestConfirmOverlayOnSingleWindowPlatform(t *testing.T) {
	backend := native.NewHeadlessSingleWindow()
	app := NewApp(element.NewRegistry(backend))
	owner, err := app.NewWindow(Options{Title: "main"})
	require.NoError(t, err)

	var result *bool
	d, err := app.Confirm(owner, "Quit", "Really quit?", func(ok bool) { result = &ok })
	require.NoError(t, err)

	// No second window; the dialog mounts inside the owner's body.
	assert.Len(t, app.Windows(), 1)
	assert.Contains(t, backend.Children(owner.Body().NativeHandle()), d.Content().NativeHandle())

	clickButton(t, backend, d.Content(), "OK")
	require.NotNil(t, result)
	assert.True(t, *result)
	assert.NotContains(t, backend.Children(owner.Body().NativeHandle()), d.Content().NativeHandle())
}

func TestAlert(t *testing.T) {
	backend, app := newTestApp(t)
	owner, err := app.NewWindow(Options{Title: "main"})
	require.NoError(t, err)

	closed := 0
	d, err := app.Alert(owner, "Notice", "Saved.", func() { closed++ })
	require.NoError(t, err)

	clickButton(t, backend, d.Content(), "OK")
	assert.Equal(t, 1, closed)
	assert.False(t, d.Alive())
}

func TestDialogOverlayNeedsOwner(t *testing.T) {
	backend := native.NewHeadlessSingleWindow()
	app := NewApp(element.NewRegistry(backend))

	_, err := app.Alert(nil, "Notice", "orphan", nil)
	assert.Error(t, err)
}
