package scenes

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/laserroom/pkg/config"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/entities"
	"github.com/decker502/laserroom/pkg/game"
	"github.com/decker502/laserroom/pkg/systems"
)

var backgroundColor = color.RGBA{R: 24, G: 24, B: 32, A: 255}

// LaserRoomScene 激光房间
//
// 每帧系统执行顺序：
// 输入 → 镜子控制 → 背包 → 运动 → 稳定检测 → 激光 → 事件投递 → 闪烁 → 清理实体
type LaserRoomScene struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	bus           *game.EventBus
	inventory     *game.Inventory
	room          *entities.Room

	inputSystem     *systems.InputSystem
	mirrorSystem    *systems.MirrorControlSystem
	inventorySystem *systems.InventorySystem
	motionSystem    *systems.MotionSystem
	stabilitySystem *systems.StabilitySystem
	laserSystem     *systems.LaserSystem
	doorSystem      *systems.DoorSystem
	flashSystem     *systems.FlashEffectSystem
	renderSystem    *systems.RenderSystem

	// hitCues 已发出的激光命中提示次数
	hitCues int
}

// NewLaserRoomScene 按房间配置创建场景
func NewLaserRoomScene(gs *game.GameState, cfg *config.LevelConfig) (*LaserRoomScene, error) {
	em := ecs.NewEntityManager()
	room, err := entities.SpawnRoom(em, cfg)
	if err != nil {
		return nil, fmt.Errorf("create laser room scene: %w", err)
	}

	bus := game.NewEventBus()
	inv := game.NewInventory(cfg.InventorySize, bus)

	s := &LaserRoomScene{
		entityManager: em,
		gameState:     gs,
		bus:           bus,
		inventory:     inv,
		room:          room,
	}

	s.inventorySystem = systems.NewInventorySystem(em, gs, bus, inv, room.Player, room.HUD)
	s.doorSystem = systems.NewDoorSystem(em, gs, bus, inv, room.ID)
	s.mirrorSystem = systems.NewMirrorControlSystem(em, gs, room.Player)
	s.inputSystem = systems.NewInputSystem(em, gs, s.inventorySystem, s.doorSystem, room.Player)
	s.motionSystem = systems.NewMotionSystem(em)
	s.stabilitySystem = systems.NewStabilitySystem(em)
	s.laserSystem = systems.NewLaserSystem(em, gs, bus)
	s.laserSystem.SetInteractionTargetSource(s.mirrorSystem.Controlled)
	s.flashSystem = systems.NewFlashEffectSystem(em)
	s.renderSystem = systems.NewRenderSystem(em, gs, s.inventorySystem, room.Player, room.HUD, systems.Projection{
		OriginX:       WindowWidth / 2,
		OriginY:       WindowHeight / 2,
		PixelsPerUnit: PixelsPerUnit,
	})

	// 已打开的门不再触发打开信号
	for _, door := range s.doorSystem.RestoreProgress() {
		s.laserSystem.MarkOpened(door)
	}

	bus.Subscribe(game.EventLaserHit, "laser-room-scene", s.onLaserHit)
	bus.Subscribe(game.EventDoorOpened, "laser-room-scene", s.onDoorOpened)
	bus.Subscribe(game.EventInventoryFull, "laser-room-scene", s.onInventoryFull)

	log.Printf("[LaserRoomScene] room %q ready", room.ID)
	return s, nil
}

// Update 推进一帧
func (s *LaserRoomScene) Update(deltaTime float64) {
	s.inputSystem.Update(deltaTime)
	s.mirrorSystem.Update(deltaTime)
	s.inventorySystem.Update(deltaTime)
	s.motionSystem.Update(deltaTime)
	s.stabilitySystem.Update(deltaTime)
	s.laserSystem.Update(deltaTime)
	s.bus.Dispatch()
	s.flashSystem.Update(deltaTime)
	s.entityManager.RemoveMarkedEntities()
}

// Draw 渲染
func (s *LaserRoomScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	s.renderSystem.Draw(screen)
}

// SaveOnExit 离开房间时保存进度
func (s *LaserRoomScene) SaveOnExit() bool {
	if s.gameState == nil {
		return true
	}
	if err := s.gameState.GetProgressManager().Save(); err != nil {
		log.Printf("[LaserRoomScene] Warning: failed to save progress: %v", err)
		return false
	}
	return true
}

// EntityManager 场景的实体管理器
func (s *LaserRoomScene) EntityManager() *ecs.EntityManager {
	return s.entityManager
}

// Room 场景中的实体索引
func (s *LaserRoomScene) Room() *entities.Room {
	return s.room
}

// InputSystem 输入系统（测试中替换输入来源）
func (s *LaserRoomScene) InputSystem() *systems.InputSystem {
	return s.inputSystem
}

// HitCues 已发出的激光命中提示次数
func (s *LaserRoomScene) HitCues() int {
	return s.hitCues
}

func (s *LaserRoomScene) onLaserHit(ev game.Event) {
	s.hitCues++
	log.Printf("[LaserRoomScene] laser hit cue on %d", ev.Entity)
	s.playSound(game.SoundLaserHit)
}

func (s *LaserRoomScene) onDoorOpened(ev game.Event) {
	log.Printf("[LaserRoomScene] door %d opened", ev.Entity)
	s.playSound(game.SoundDoorOpen)
}

func (s *LaserRoomScene) onInventoryFull(game.Event) {
	s.playSound(game.SoundInventoryFull)
}

func (s *LaserRoomScene) playSound(id string) {
	if s.gameState == nil || s.gameState.GetAudioManager() == nil {
		return
	}
	s.gameState.GetAudioManager().PlaySound(id)
}
