package systems

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/game"
	"github.com/decker502/laserroom/pkg/laser"
	"github.com/decker502/laserroom/pkg/physics"
	"github.com/decker502/laserroom/pkg/utils"
)

const (
	// DefaultHoldDistance 手持物品距离玩家的距离
	DefaultHoldDistance = 1.5
	// DefaultDropSpeed 非刚体物品放下时替身的初速度
	DefaultDropSpeed = 2.0
	// dropDamping 替身每秒保留的速度比例
	dropDamping = 0.02
)

var (
	// ErrNotPickup 实体不可拾取
	ErrNotPickup = errors.New("entity cannot be picked up")
	// ErrOutOfRange 超出交互距离
	ErrOutOfRange = errors.New("entity is out of reach")
	// ErrNothingHeld 手中没有物品
	ErrNothingHeld = errors.New("nothing is held")
)

// InventorySystem 背包与手持物品
//
// 背包中只有激活的物品在玩家手中（碰撞体启用并作为触发体），其余物品碰撞体禁用。
// 通过 EventBus 的 EventItemAdded / EventItemRemoved 维护持有关系，
// 移除物品后自动激活最近的物品。
type InventorySystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	bus           *game.EventBus
	inventory     *game.Inventory
	player        ecs.EntityID
	hud           ecs.EntityID
	// sight 拾取视线检查用的射线查询
	sight *physics.SceneCaster

	active       int
	holdDistance float64
	// triggers 物品进入背包前碰撞体的触发体状态，放下时恢复
	triggers map[ecs.EntityID]bool
}

// NewInventorySystem 创建背包系统，hud 是背包已满时闪烁的实体
func NewInventorySystem(em *ecs.EntityManager, gs *game.GameState, bus *game.EventBus, inv *game.Inventory, player, hud ecs.EntityID) *InventorySystem {
	s := &InventorySystem{
		entityManager: em,
		gameState:     gs,
		bus:           bus,
		inventory:     inv,
		player:        player,
		hud:           hud,
		sight:         physics.NewSceneCaster(em),
		active:        -1,
		holdDistance:  DefaultHoldDistance,
		triggers:      make(map[ecs.EntityID]bool),
	}
	bus.Subscribe(game.EventItemAdded, "inventory-system", s.onItemAdded)
	bus.Subscribe(game.EventItemRemoved, "inventory-system", s.onItemRemoved)
	return s
}

// Inventory 背包
func (s *InventorySystem) Inventory() *game.Inventory {
	return s.inventory
}

// ActiveIndex 激活物品的位置，-1 表示没有
func (s *InventorySystem) ActiveIndex() int {
	return s.active
}

// Active 激活的物品
func (s *InventorySystem) Active() ecs.EntityID {
	return s.inventory.At(s.active)
}

// Pickup 拾取物品，背包已满时闪烁提示并返回 game.ErrInventoryFull
func (s *InventorySystem) Pickup(item ecs.EntityID) error {
	if !ecs.HasComponent[*components.PickupComponent](s.entityManager, item) {
		return fmt.Errorf("pickup %d: %w", item, ErrNotPickup)
	}
	if !s.inReach(item) {
		return fmt.Errorf("pickup %d: %w", item, ErrOutOfRange)
	}

	if _, err := s.inventory.Add(item); err != nil {
		if errors.Is(err, game.ErrInventoryFull) {
			TriggerFlash(s.entityManager, s.hud, DefaultFlashTimes, DefaultFlashInterval)
			s.bus.Publish(game.Event{Type: game.EventInventoryFull, Entity: item})
		}
		return fmt.Errorf("pickup %d: %w", item, err)
	}
	return nil
}

// NearestPickup 交互范围内、没有被墙挡住的最近可拾取物品
func (s *InventorySystem) NearestPickup() (ecs.EntityID, bool) {
	playerTr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, s.player)
	if !ok {
		return ecs.InvalidEntity, false
	}
	s.sight.Refresh()

	best := ecs.InvalidEntity
	bestDist := 0.0
	for _, id := range ecs.GetEntitiesWith2[*components.TransformComponent, *components.PickupComponent](s.entityManager) {
		if s.inventory.Contains(id) || !s.inReach(id) {
			continue
		}
		if col, ok := ecs.GetComponent[*components.ColliderComponent](s.entityManager, id); ok && col.Disabled {
			continue
		}
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		d := tr.Position.Distance(playerTr.Position)
		if !s.inSight(playerTr.Position, id, tr.Position) {
			continue
		}
		if best == ecs.InvalidEntity || d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, best != ecs.InvalidEntity
}

// inSight 从 from 到物品中心之间没有遮挡
//
// 触发体、被持有的物品和其他可拾取物品不算遮挡。
func (s *InventorySystem) inSight(from utils.Vec3, item ecs.EntityID, to utils.Vec3) bool {
	offset := to.Subtract(from)
	dist := offset.Length()
	if dist < physics.DefaultEpsilon {
		return true
	}

	ray := laser.Ray{Origin: from, Direction: offset.Multiply(1 / dist)}
	for _, hit := range s.sight.CastAll(ray, dist) {
		if hit.Owner == item {
			return true
		}
		if hit.IsTrigger || hit.Holder != ecs.InvalidEntity ||
			ecs.HasComponent[*components.PickupComponent](s.entityManager, hit.Owner) {
			continue
		}
		return false
	}
	return true
}

// Drop 放下手中物品
//
// 刚体物品直接放到玩家面前；其他物品先生成替身，替身静止后由 StabilitySystem 放回。
// 放下的镜子在放下键保持按住期间可被旋转。
func (s *InventorySystem) Drop() (ecs.EntityID, error) {
	item := s.Active()
	if item == ecs.InvalidEntity {
		return ecs.InvalidEntity, ErrNothingHeld
	}

	position, yaw := s.holdPose()
	s.inventory.Remove(item)

	pickup, _ := ecs.GetComponent[*components.PickupComponent](s.entityManager, item)
	if pickup != nil && pickup.Rigid {
		s.place(item, position, yaw)
	} else {
		s.spawnStandIn(item, position, yaw)
	}

	if mc, ok := ecs.GetComponent[*components.MirrorControlComponent](s.entityManager, item); ok {
		mc.Controllable = true
		mc.Controlling = false
	}

	log.Printf("[InventorySystem] dropped %d at (%.2f, %.2f)", item, position.X, position.Z)
	return item, nil
}

// Cycle 切换激活物品，step 可为负
func (s *InventorySystem) Cycle(step int) {
	n := s.inventory.Len()
	if n == 0 {
		return
	}
	s.active = ((s.active+step)%n + n) % n
	s.refresh()
}

// Update 让手中物品跟随玩家
func (s *InventorySystem) Update(deltaTime float64) {
	if s.gameState != nil && s.gameState.IsPaused() {
		return
	}

	item := s.Active()
	if item == ecs.InvalidEntity {
		return
	}
	if tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, item); ok {
		tr.Position, tr.Yaw = s.holdPose()
	}
}

func (s *InventorySystem) onItemAdded(ev game.Event) {
	if col, ok := ecs.GetComponent[*components.ColliderComponent](s.entityManager, ev.Entity); ok {
		s.triggers[ev.Entity] = col.IsTrigger
	}
	ecs.AddComponent(s.entityManager, ev.Entity, &components.HeldByComponent{Holder: s.player})
	ecs.RemoveComponent[*components.VelocityComponent](s.entityManager, ev.Entity)

	s.active = ev.Index
	s.refresh()
}

func (s *InventorySystem) onItemRemoved(ev game.Event) {
	ecs.RemoveComponent[*components.HeldByComponent](s.entityManager, ev.Entity)
	if col, ok := ecs.GetComponent[*components.ColliderComponent](s.entityManager, ev.Entity); ok {
		col.IsTrigger = s.triggers[ev.Entity]
		col.Disabled = true
	}
	delete(s.triggers, ev.Entity)

	switch {
	case s.inventory.IsEmpty():
		s.active = -1
	case ev.Index < s.active:
		s.active--
	case ev.Index == s.active && s.active >= s.inventory.Len():
		s.active = s.inventory.Len() - 1
	}
	s.refresh()
}

// refresh 只有激活物品的碰撞体启用
func (s *InventorySystem) refresh() {
	for i, item := range s.inventory.Items() {
		col, ok := ecs.GetComponent[*components.ColliderComponent](s.entityManager, item)
		if !ok {
			continue
		}
		col.Disabled = i != s.active
		col.IsTrigger = true
	}
}

func (s *InventorySystem) place(item ecs.EntityID, position utils.Vec3, yaw float64) {
	if tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, item); ok {
		tr.Position = position
		tr.Yaw = yaw
	}
	if col, ok := ecs.GetComponent[*components.ColliderComponent](s.entityManager, item); ok {
		col.Disabled = false
	}
}

func (s *InventorySystem) spawnStandIn(item ecs.EntityID, position utils.Vec3, yaw float64) ecs.EntityID {
	standIn := s.entityManager.CreateEntity()

	tr := components.NewTransform(position, yaw)
	if itemTr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, item); ok {
		tr.Scale = itemTr.Scale
	}
	ecs.AddComponent(s.entityManager, standIn, tr)
	ecs.AddComponent(s.entityManager, standIn, &components.VelocityComponent{
		Linear:  forward(yaw).Multiply(DefaultDropSpeed),
		Damping: dropDamping,
	})
	ecs.AddComponent(s.entityManager, standIn, &components.StabilityWatchComponent{
		Item:         item,
		State:        components.StabilityWaiting,
		SampleEvery:  DefaultSampleEvery,
		Tolerance:    DefaultStableTolerance,
		LastPosition: position,
		LastYaw:      yaw,
	})
	return standIn
}

func (s *InventorySystem) holdPose() (utils.Vec3, float64) {
	playerTr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, s.player)
	if !ok {
		return utils.Vec3{}, 0
	}
	return playerTr.Position.Add(forward(playerTr.Yaw).Multiply(s.holdDistance)), playerTr.Yaw
}

func (s *InventorySystem) inReach(item ecs.EntityID) bool {
	playerTr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, s.player)
	if !ok {
		return false
	}
	tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, item)
	if !ok {
		return false
	}
	interactRange := DefaultInteractRange
	if player, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, s.player); ok && player.InteractRange > 0 {
		interactRange = player.InteractRange
	}
	return tr.Position.Distance(playerTr.Position) <= interactRange
}

// forward 偏航角对应的前方向（+Z 为 0）
func forward(yaw float64) utils.Vec3 {
	return utils.NewVec3(0, 0, 1).RotateY(yaw)
}
