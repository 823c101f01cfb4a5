package ui

import (
	"fmt"

	"github.com/halcyon-ui/halcyon/native"
)

func errUnknownHandle(op string, h native.Handle) error {
	return fmt.Errorf("fyne backend: %s: unknown handle %d", op, h)
}

func errNotAContainer(kind native.Kind) error {
	return fmt.Errorf("fyne backend: %s element cannot hold children", kind)
}

func errWouldCycle(child, parent native.Handle) error {
	return fmt.Errorf("fyne backend: handle %d is an ancestor of %d", child, parent)
}

func errIndexOutOfRange(index, length int) error {
	return fmt.Errorf("fyne backend: child index %d out of range (%d children)", index, length)
}
