package systems

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/game"
	"github.com/decker502/laserroom/pkg/utils"
)

var (
	colliderColor = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	mirrorColor   = color.RGBA{R: 120, G: 200, B: 255, A: 255}
	triggerColor  = color.RGBA{R: 90, G: 90, B: 100, A: 255}
	outlineColor  = color.RGBA{R: 255, G: 220, B: 60, A: 255}
	beamColor     = color.RGBA{R: 255, G: 40, B: 40, A: 255}
	playerColor   = color.RGBA{R: 80, G: 220, B: 120, A: 255}
	standInColor  = color.RGBA{R: 200, G: 200, B: 200, A: 160}
	flashColor    = color.RGBA{R: 255, G: 60, B: 60, A: 160}
)

// Projection 俯视投影：世界 X 向右，世界 Z 向上
type Projection struct {
	OriginX       float64
	OriginY       float64
	PixelsPerUnit float64
}

// ToScreen 世界坐标转屏幕坐标
func (p Projection) ToScreen(v utils.Vec3) (float32, float32) {
	return float32(p.OriginX + v.X*p.PixelsPerUnit), float32(p.OriginY - v.Z*p.PixelsPerUnit)
}

// BoxCorners 有向盒子在 XZ 平面上的四个角（世界坐标）
func BoxCorners(tr *components.TransformComponent, col *components.ColliderComponent) [4]utils.Vec3 {
	half := col.HalfExtents.MultiplyVec(tr.Scale)
	local := [4]utils.Vec3{
		utils.NewVec3(-half.X, 0, -half.Z),
		utils.NewVec3(half.X, 0, -half.Z),
		utils.NewVec3(half.X, 0, half.Z),
		utils.NewVec3(-half.X, 0, half.Z),
	}
	var corners [4]utils.Vec3
	for i, c := range local {
		corners[i] = tr.Position.Add(c.RotateY(tr.Yaw))
	}
	return corners
}

// RenderSystem 俯视调试渲染：碰撞体、光束、玩家和 HUD
type RenderSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	inventory     *InventorySystem
	player        ecs.EntityID
	hud           ecs.EntityID
	projection    Projection
}

// NewRenderSystem 创建渲染系统
func NewRenderSystem(em *ecs.EntityManager, gs *game.GameState, inv *InventorySystem, player, hud ecs.EntityID, projection Projection) *RenderSystem {
	return &RenderSystem{
		entityManager: em,
		gameState:     gs,
		inventory:     inv,
		player:        player,
		hud:           hud,
		projection:    projection,
	}
}

// Draw 渲染一帧
func (s *RenderSystem) Draw(screen *ebiten.Image) {
	s.drawColliders(screen)
	s.drawStandIns(screen)
	s.drawPlayer(screen)
	s.drawBeams(screen)
	s.drawHUD(screen)
}

func (s *RenderSystem) drawColliders(screen *ebiten.Image) {
	entities := ecs.GetEntitiesWith2[*components.TransformComponent, *components.ColliderComponent](s.entityManager)
	for _, id := range entities {
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		col, _ := ecs.GetComponent[*components.ColliderComponent](s.entityManager, id)
		if col.Disabled {
			continue
		}

		clr := color.Color(colliderColor)
		width := float32(1)
		switch {
		case ecs.HasComponent[*components.OutlineComponent](s.entityManager, id):
			clr, width = outlineColor, 3
		case ecs.HasComponent[*components.ReflectiveComponent](s.entityManager, id):
			clr, width = mirrorColor, 2
		case col.IsTrigger:
			clr = triggerColor
		}

		switch col.Shape {
		case components.ShapeSphere:
			x, y := s.projection.ToScreen(tr.Position)
			r := col.Radius * tr.Scale.X * s.projection.PixelsPerUnit
			vector.StrokeCircle(screen, x, y, float32(r), width, clr, true)
		default:
			corners := BoxCorners(tr, col)
			for i := range corners {
				x0, y0 := s.projection.ToScreen(corners[i])
				x1, y1 := s.projection.ToScreen(corners[(i+1)%4])
				vector.StrokeLine(screen, x0, y0, x1, y1, width, clr, true)
			}
		}
	}
}

func (s *RenderSystem) drawStandIns(screen *ebiten.Image) {
	entities := ecs.GetEntitiesWith2[*components.TransformComponent, *components.StabilityWatchComponent](s.entityManager)
	for _, id := range entities {
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		x, y := s.projection.ToScreen(tr.Position)
		vector.DrawFilledRect(screen, x-3, y-3, 6, 6, standInColor, true)
	}
}

func (s *RenderSystem) drawPlayer(screen *ebiten.Image) {
	tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, s.player)
	if !ok {
		return
	}
	x, y := s.projection.ToScreen(tr.Position)
	vector.StrokeCircle(screen, x, y, 6, 2, playerColor, true)
	fx, fy := s.projection.ToScreen(tr.Position.Add(forward(tr.Yaw)))
	vector.StrokeLine(screen, x, y, fx, fy, 2, playerColor, true)
}

func (s *RenderSystem) drawBeams(screen *ebiten.Image) {
	for _, id := range ecs.GetEntitiesWith1[*components.BeamComponent](s.entityManager) {
		beam, _ := ecs.GetComponent[*components.BeamComponent](s.entityManager, id)
		for i := 1; i < len(beam.Points); i++ {
			x0, y0 := s.projection.ToScreen(beam.Points[i-1])
			x1, y1 := s.projection.ToScreen(beam.Points[i])
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, beamColor, true)
		}
	}
}

func (s *RenderSystem) drawHUD(screen *ebiten.Image) {
	lines := s.HUDLines()

	if flash, ok := ecs.GetComponent[*components.FlashEffectComponent](s.entityManager, s.hud); ok && flash.IsActive && flash.Lit {
		vector.DrawFilledRect(screen, 4, 4, 220, float32(16*len(lines)+8), flashColor, false)
	}
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 10, 8+16*i)
	}
}

// HUDLines HUD 文本：背包、附近门的提示、暂停状态
func (s *RenderSystem) HUDLines() []string {
	var lines []string

	if s.inventory != nil {
		inv := s.inventory.Inventory()
		lines = append(lines, fmt.Sprintf("Inventory %d/%d", inv.Len(), inv.Size()))
		for i, item := range inv.Items() {
			name := fmt.Sprintf("#%d", item)
			if pickup, ok := ecs.GetComponent[*components.PickupComponent](s.entityManager, item); ok && pickup.Name != "" {
				name = pickup.Name
			}
			marker := " "
			if i == s.inventory.ActiveIndex() {
				marker = ">"
			}
			lines = append(lines, fmt.Sprintf("%s %s", marker, name))
		}
	}

	lines = append(lines, s.hoverText()...)

	if s.gameState != nil && s.gameState.IsPaused() {
		lines = append(lines, "PAUSED")
	}
	return lines
}

// hoverText 交互范围内最近的门的提示文本
func (s *RenderSystem) hoverText() []string {
	playerTr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, s.player)
	if !ok {
		return nil
	}
	interactRange := DefaultInteractRange
	if player, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, s.player); ok && player.InteractRange > 0 {
		interactRange = player.InteractRange
	}

	var text []string
	best := interactRange
	for _, id := range ecs.GetEntitiesWith2[*components.TransformComponent, *components.DoorComponent](s.entityManager) {
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		door, _ := ecs.GetComponent[*components.DoorComponent](s.entityManager, id)
		if d := tr.Position.Distance(playerTr.Position); d <= best {
			best = d
			text = door.HoverText
		}
	}
	return text
}
