package spinview

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// InputBinding translates glfw window callbacks into viewer signals:
// mouse press/release become interaction start/end, a cursor leaving the
// window mid-press releases the interaction, window iconify drives the
// visibility gate, and framebuffer resizes reach the render surface.
//
// Touch input has no glfw source; embedders with one feed Interact
// directly with SourceTouch signals.
type InputBinding struct {
	viewer  *Viewer
	window  *glfw.Window
	pressed bool
}

func BindWindowInput(v *Viewer, win *glfw.Window) *InputBinding {
	b := &InputBinding{viewer: v, window: win}

	win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			b.pressed = true
			v.Interact(InteractionSignal{Kind: SignalStart, Source: SourcePointer, Pressed: true})
		case glfw.Release:
			if !b.pressed {
				return
			}
			b.pressed = false
			v.Interact(InteractionSignal{Kind: SignalEnd, Source: SourcePointer})
		}
	})

	win.SetCursorEnterCallback(func(w *glfw.Window, entered bool) {
		// Leaving the window with the button down ends the interaction;
		// the matching release will never arrive.
		if !entered && b.pressed {
			b.pressed = false
			v.Interact(InteractionSignal{Kind: SignalEnd, Source: SourcePointer})
		}
	})

	win.SetIconifyCallback(func(w *glfw.Window, iconified bool) {
		v.SetVisible(!iconified)
	})

	win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		v.Resize(width, height)
	})

	return b
}
