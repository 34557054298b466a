// Package debugui renders Dear ImGui diagnostics for a tick.Scheduler.
// Items are plain render functions drawn once per frame between the backend's
// BeginFrame and EndFrame.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
)

// ImguiItem holds a Dear ImGui render function.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks whether Dear ImGui is consuming mouse or keyboard input.
// Game input handling should check it before reacting.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Layer is an ordered set of items plus the input state of the last rendered frame.
type Layer struct {
	items      []ImguiItem
	InputState ImguiInputState
}

// Add appends a render function to the layer.
func (l *Layer) Add(render func()) {
	if render == nil {
		return
	}
	l.items = append(l.items, ImguiItem{Render: render})
}

// Len returns the number of items in the layer.
func (l *Layer) Len() int {
	return len(l.items)
}

// Render updates the input state and draws every item in insertion order.
// It must be called inside an ImGui frame.
func (l *Layer) Render() {
	io := imgui.CurrentIO()
	l.InputState.WantCaptureMouse = io.WantCaptureMouse()
	l.InputState.WantCaptureKeyboard = io.WantCaptureKeyboard()

	for _, item := range l.items {
		item.Render()
	}
}
