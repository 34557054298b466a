// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine and a
// game wrapper that drives a tick.Scheduler once per Ebiten update.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tiered/tick"
	"github.com/plus3/tiered/tick/debugui"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Scene is the simulation content drawn under the debug overlay.
type Scene interface {
	// Update runs after the scheduler frame with that frame's events.
	Update(events []tick.Event) error
	Draw(screen *ebiten.Image)
}

// Game implements ebiten.Game. Each Update runs one scheduler frame, updates the scene
// and renders the debug layer inside an ImGui frame.
type Game struct {
	backend   ImguiBackend
	scheduler *tick.Scheduler
	layer     *debugui.Layer
	scene     Scene
}

// NewGame wires a scheduler, a scene and a debug layer to an ImGui backend.
func NewGame(backend *ebitenbackend.EbitenBackend, s *tick.Scheduler, scene Scene, layer *debugui.Layer) *Game {
	if layer == nil {
		layer = &debugui.Layer{}
	}
	return &Game{
		backend:   ImguiBackend{EbitenBackend: backend},
		scheduler: s,
		layer:     layer,
		scene:     scene,
	}
}

// Layer returns the debug layer rendered each frame.
func (g *Game) Layer() *debugui.Layer {
	return g.layer
}

// Update runs one scheduler frame and the scene update between ImGui frame boundaries.
func (g *Game) Update() error {
	g.backend.BeginFrame()
	defer g.backend.EndFrame()

	events := g.scheduler.Update()
	if err := g.scene.Update(events); err != nil {
		return err
	}

	g.layer.Render()
	return nil
}

// Draw draws the scene and then the ImGui overlay on top.
func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	g.backend.Draw(screen)
}

// Layout forwards the outside size to the ImGui backend and uses it unchanged.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.backend.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
