package game

import (
	"errors"

	"github.com/decker502/laserroom/pkg/ecs"
)

// ErrInventoryFull 背包已满
var ErrInventoryFull = errors.New("inventory is full")

// Inventory 固定容量的背包
//
// 增删时通过 EventBus 立即发出 EventItemAdded / EventItemRemoved，
// 订阅方按 Subscribe 的 key 去重。
type Inventory struct {
	size  int
	items []ecs.EntityID
	bus   *EventBus
}

// NewInventory 创建背包，bus 可为 nil
func NewInventory(size int, bus *EventBus) *Inventory {
	return &Inventory{
		size:  size,
		items: make([]ecs.EntityID, 0, size),
		bus:   bus,
	}
}

// Size 容量
func (inv *Inventory) Size() int { return inv.size }

// Len 当前物品数
func (inv *Inventory) Len() int { return len(inv.items) }

// IsFull 是否已满
func (inv *Inventory) IsFull() bool { return len(inv.items) >= inv.size }

// IsEmpty 是否为空
func (inv *Inventory) IsEmpty() bool { return len(inv.items) == 0 }

// At 返回指定位置的物品，越界返回 InvalidEntity
func (inv *Inventory) At(i int) ecs.EntityID {
	if i < 0 || i >= len(inv.items) {
		return ecs.InvalidEntity
	}
	return inv.items[i]
}

// IndexOf 物品位置，不存在返回 -1
func (inv *Inventory) IndexOf(item ecs.EntityID) int {
	for i, id := range inv.items {
		if id == item {
			return i
		}
	}
	return -1
}

// Contains 是否包含物品
func (inv *Inventory) Contains(item ecs.EntityID) bool {
	return inv.IndexOf(item) >= 0
}

// Items 物品列表副本
func (inv *Inventory) Items() []ecs.EntityID {
	return append([]ecs.EntityID(nil), inv.items...)
}

// Add 加入物品，返回位置
//
// 已在背包中的物品直接返回原位置；背包已满时返回 ErrInventoryFull。
func (inv *Inventory) Add(item ecs.EntityID) (int, error) {
	if i := inv.IndexOf(item); i >= 0 {
		return i, nil
	}
	if inv.IsFull() {
		return -1, ErrInventoryFull
	}

	inv.items = append(inv.items, item)
	index := len(inv.items) - 1
	inv.emit(Event{Type: EventItemAdded, Entity: item, Index: index})
	return index, nil
}

// Remove 移除物品，返回是否移除成功
func (inv *Inventory) Remove(item ecs.EntityID) bool {
	i := inv.IndexOf(item)
	if i < 0 {
		return false
	}

	inv.items = append(inv.items[:i], inv.items[i+1:]...)
	inv.emit(Event{Type: EventItemRemoved, Entity: item, Index: i})
	return true
}

// Clear 清空背包，对每个物品按原位置发出移除事件
func (inv *Inventory) Clear() {
	removed := inv.items
	inv.items = make([]ecs.EntityID, 0, inv.size)
	for i, item := range removed {
		inv.emit(Event{Type: EventItemRemoved, Entity: item, Index: i})
	}
}

func (inv *Inventory) emit(ev Event) {
	if inv.bus != nil {
		inv.bus.Emit(ev)
	}
}
