package systems

import (
	"errors"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/game"
	"github.com/decker502/laserroom/pkg/utils"
)

const (
	// DefaultMoveSpeed 玩家移动速度（单位/秒）
	DefaultMoveSpeed = 4.0
	// DefaultTurnSpeed 玩家转向速度（弧度/秒）
	DefaultTurnSpeed = 1.5
)

// PlayerActions 一帧内的玩家输入
type PlayerActions struct {
	// Move 局部移动方向：X 横移，Z 前进
	Move utils.Vec3
	// Turn 转向方向，正值向右
	Turn float64

	Pickup      bool
	DropPressed bool
	DropHeld    bool
	CycleNext   bool
	CyclePrev   bool
	UseKey      bool
	TogglePause bool
}

// ReadKeyboardActions 从键盘读取输入
//
// WASD 移动，Q/E 转向，F 拾取，G 放下（按住旋转镜子），Tab 切换物品，U 用钥匙，P 暂停。
func ReadKeyboardActions() PlayerActions {
	var a PlayerActions
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		a.Move.Z++
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		a.Move.Z--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		a.Move.X++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		a.Move.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyE) {
		a.Turn++
	}
	if ebiten.IsKeyPressed(ebiten.KeyQ) {
		a.Turn--
	}

	a.Pickup = inpututil.IsKeyJustPressed(ebiten.KeyF)
	a.DropPressed = inpututil.IsKeyJustPressed(ebiten.KeyG)
	a.DropHeld = ebiten.IsKeyPressed(ebiten.KeyG)
	a.UseKey = inpututil.IsKeyJustPressed(ebiten.KeyU)
	a.TogglePause = inpututil.IsKeyJustPressed(ebiten.KeyP)

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			a.CyclePrev = true
		} else {
			a.CycleNext = true
		}
	}
	return a
}

// InputSystem 把玩家输入转成移动、拾取、放下和开门
type InputSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	inventory     *InventorySystem
	doors         *DoorSystem
	player        ecs.EntityID

	moveSpeed float64
	turnSpeed float64
	read      func() PlayerActions
}

// NewInputSystem 创建输入系统
func NewInputSystem(em *ecs.EntityManager, gs *game.GameState, inv *InventorySystem, doors *DoorSystem, player ecs.EntityID) *InputSystem {
	return &InputSystem{
		entityManager: em,
		gameState:     gs,
		inventory:     inv,
		doors:         doors,
		player:        player,
		moveSpeed:     DefaultMoveSpeed,
		turnSpeed:     DefaultTurnSpeed,
		read:          ReadKeyboardActions,
	}
}

// SetActionSource 替换输入来源（测试中使用脚本化输入）
func (s *InputSystem) SetActionSource(read func() PlayerActions) {
	s.read = read
}

// Update 处理一帧输入
func (s *InputSystem) Update(deltaTime float64) {
	s.Apply(s.read(), deltaTime)
}

// Apply 应用一帧输入
func (s *InputSystem) Apply(a PlayerActions, deltaTime float64) {
	if a.TogglePause && s.gameState != nil {
		s.gameState.TogglePause()
	}
	if s.gameState != nil && s.gameState.IsPaused() {
		return
	}

	player, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, s.player)
	if !ok {
		return
	}
	tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, s.player)
	if !ok {
		return
	}

	player.DropKeyHeld = a.DropHeld
	tr.Yaw += a.Turn * s.turnSpeed * deltaTime
	player.Yaw = tr.Yaw
	if a.Move.LengthSquared() > 0 {
		step := a.Move.Normalize().RotateY(tr.Yaw).Multiply(s.moveSpeed * deltaTime)
		tr.Position = tr.Position.Add(step)
	}

	if a.Pickup {
		if item, ok := s.inventory.NearestPickup(); ok {
			if err := s.inventory.Pickup(item); err != nil {
				log.Printf("[InputSystem] pickup failed: %v", err)
			}
		}
	}
	if a.DropPressed {
		if _, err := s.inventory.Drop(); err != nil && !errors.Is(err, ErrNothingHeld) {
			log.Printf("[InputSystem] drop failed: %v", err)
		}
	}
	if a.CycleNext {
		s.inventory.Cycle(1)
	}
	if a.CyclePrev {
		s.inventory.Cycle(-1)
	}
	if a.UseKey {
		s.useKey()
	}
}

// useKey 用手中的钥匙开交互范围内最近的门
func (s *InputSystem) useKey() {
	key := s.inventory.Active()
	if !ecs.HasComponent[*components.KeyComponent](s.entityManager, key) {
		return
	}
	playerTr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, s.player)

	nearest := ecs.InvalidEntity
	best := DefaultInteractRange
	if player, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, s.player); ok && player.InteractRange > 0 {
		best = player.InteractRange
	}
	for _, id := range ecs.GetEntitiesWith2[*components.TransformComponent, *components.DoorComponent](s.entityManager) {
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		if d := tr.Position.Distance(playerTr.Position); d <= best {
			best, nearest = d, id
		}
	}
	if nearest == ecs.InvalidEntity {
		return
	}
	if err := s.doors.UseKey(nearest, key); err != nil {
		log.Printf("[InputSystem] %v", err)
	}
}
