package systems

import (
	"errors"
	"fmt"
	"log"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/game"
)

var (
	// ErrNotADoor 实体没有 DoorComponent
	ErrNotADoor = errors.New("entity is not a door")
	// ErrWrongKey 钥匙与门不匹配
	ErrWrongKey = errors.New("key does not fit this door")
)

// DoorSystem 门系统
//
// 监听 EventTargetOpened：被激光"打开"的门切换悬停文本，
// 吸收光束的碰撞体变为触发体。也处理钥匙开门和关门。
type DoorSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	bus           *game.EventBus
	inventory     *game.Inventory
	roomID        string
}

// NewDoorSystem 创建门系统并订阅 EventTargetOpened
func NewDoorSystem(em *ecs.EntityManager, gs *game.GameState, bus *game.EventBus, inv *game.Inventory, roomID string) *DoorSystem {
	s := &DoorSystem{
		entityManager: em,
		gameState:     gs,
		bus:           bus,
		inventory:     inv,
		roomID:        roomID,
	}
	if bus != nil {
		bus.Subscribe(game.EventTargetOpened, "door-system", s.onTargetOpened)
	}
	return s
}

func (s *DoorSystem) onTargetOpened(ev game.Event) {
	door, ok := ecs.GetComponent[*components.DoorComponent](s.entityManager, ev.Entity)
	if !ok {
		return
	}

	collider := ev.Collider
	if collider == ecs.InvalidEntity {
		collider = ev.Entity
	}
	s.setTrigger(collider, true)
	s.markOpen(ev.Entity, door)
}

// OpenDoor 直接打开门，门的所有碰撞体都变为触发体
func (s *DoorSystem) OpenDoor(id ecs.EntityID) error {
	door, ok := ecs.GetComponent[*components.DoorComponent](s.entityManager, id)
	if !ok {
		return fmt.Errorf("open door %d: %w", id, ErrNotADoor)
	}
	for _, collider := range s.doorColliders(id) {
		s.setTrigger(collider, true)
	}
	s.markOpen(id, door)
	return nil
}

// CloseDoor 关门，碰撞体恢复阻挡
//
// 存档里的记录保留，关门只影响当前房间状态。
func (s *DoorSystem) CloseDoor(id ecs.EntityID) error {
	door, ok := ecs.GetComponent[*components.DoorComponent](s.entityManager, id)
	if !ok {
		return fmt.Errorf("close door %d: %w", id, ErrNotADoor)
	}
	for _, collider := range s.doorColliders(id) {
		s.setTrigger(collider, false)
	}
	door.Open = false
	door.HoverText = door.ClosedText
	log.Printf("[DoorSystem] door %q closed", door.ID)
	return nil
}

// UseKey 用钥匙开门，一次性钥匙用完后移出背包并销毁
func (s *DoorSystem) UseKey(doorID, keyID ecs.EntityID) error {
	door, ok := ecs.GetComponent[*components.DoorComponent](s.entityManager, doorID)
	if !ok {
		return fmt.Errorf("use key on %d: %w", doorID, ErrNotADoor)
	}
	key, ok := ecs.GetComponent[*components.KeyComponent](s.entityManager, keyID)
	if !ok || key.DoorID != door.ID {
		return fmt.Errorf("use key %d on door %q: %w", keyID, door.ID, ErrWrongKey)
	}

	if err := s.OpenDoor(doorID); err != nil {
		return err
	}

	if key.SingleUse {
		if s.inventory != nil {
			s.inventory.Remove(keyID)
		}
		s.entityManager.DestroyEntity(keyID)
	}
	return nil
}

// RestoreProgress 按存档打开房间中已打开过的门，返回被恢复的门实体
func (s *DoorSystem) RestoreProgress() []ecs.EntityID {
	if s.gameState == nil {
		return nil
	}
	pm := s.gameState.GetProgressManager()

	var restored []ecs.EntityID
	for _, id := range ecs.GetEntitiesWith1[*components.DoorComponent](s.entityManager) {
		door, _ := ecs.GetComponent[*components.DoorComponent](s.entityManager, id)
		if !pm.IsDoorOpened(s.roomID, door.ID) {
			continue
		}
		for _, collider := range s.doorColliders(id) {
			s.setTrigger(collider, true)
		}
		door.Open = true
		door.HoverText = door.OpenText
		restored = append(restored, id)
	}
	return restored
}

// DoorAt 查找与 ID 对应的门实体
func (s *DoorSystem) DoorAt(doorID string) (ecs.EntityID, bool) {
	for _, id := range ecs.GetEntitiesWith1[*components.DoorComponent](s.entityManager) {
		door, _ := ecs.GetComponent[*components.DoorComponent](s.entityManager, id)
		if door.ID == doorID {
			return id, true
		}
	}
	return ecs.InvalidEntity, false
}

func (s *DoorSystem) markOpen(id ecs.EntityID, door *components.DoorComponent) {
	if door.Open {
		return
	}
	door.Open = true
	door.HoverText = door.OpenText
	log.Printf("[DoorSystem] door %q opened", door.ID)

	if s.gameState != nil {
		pm := s.gameState.GetProgressManager()
		pm.MarkDoorOpened(s.roomID, door.ID)
		if err := pm.Save(); err != nil {
			log.Printf("[DoorSystem] Warning: failed to save progress: %v", err)
		}
	}

	if s.bus != nil {
		s.bus.Emit(game.Event{Type: game.EventDoorOpened, Entity: id})
	}
}

// doorColliders 门自身以及所有指向它的可缩小碰撞体
func (s *DoorSystem) doorColliders(door ecs.EntityID) []ecs.EntityID {
	var result []ecs.EntityID
	if ecs.HasComponent[*components.ColliderComponent](s.entityManager, door) {
		result = append(result, door)
	}
	for _, id := range ecs.GetEntitiesWith2[*components.ColliderComponent, *components.ShrinkableColliderComponent](s.entityManager) {
		link, _ := ecs.GetComponent[*components.ShrinkableColliderComponent](s.entityManager, id)
		if link.ColliderFor == door && id != door {
			result = append(result, id)
		}
	}
	return result
}

func (s *DoorSystem) setTrigger(id ecs.EntityID, trigger bool) {
	if col, ok := ecs.GetComponent[*components.ColliderComponent](s.entityManager, id); ok {
		col.IsTrigger = trigger
	}
}
