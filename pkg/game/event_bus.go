package game

import "github.com/decker502/laserroom/pkg/ecs"

// EventType 事件类型
type EventType int

const (
	// EventTargetOpened 可缩小目标首次越过打开阈值
	EventTargetOpened EventType = iota
	// EventLaserHit 光束正在缩小目标（按间隔节流，用于播放命中音效）
	EventLaserHit
	// EventItemAdded 物品加入背包
	EventItemAdded
	// EventItemRemoved 物品离开背包
	EventItemRemoved
	// EventInventoryFull 背包已满，拾取失败
	EventInventoryFull
	// EventDoorOpened 门被打开（钥匙或激光）
	EventDoorOpened
)

// Event 游戏事件
type Event struct {
	Type EventType
	// Entity 事件主体（目标、物品、门）
	Entity ecs.EntityID
	// Collider 相关碰撞体（EventTargetOpened 时为吸收光束的碰撞体）
	Collider ecs.EntityID
	// Index 背包位置（EventItemAdded / EventItemRemoved）
	Index int
}

// Handler 事件处理函数
type Handler func(Event)

type subscription struct {
	key     string
	handler Handler
}

// EventBus 单线程事件总线
//
// 订阅以 key 区分：同一个 key 重复订阅会先移除旧的处理函数再注册，
// 所以反复刷新订阅不会导致重复投递。
// Publish 入队，Dispatch 在帧内固定时机按 FIFO 投递；Emit 立即投递。
type EventBus struct {
	handlers map[EventType][]subscription
	queue    []Event
}

// NewEventBus 创建事件总线
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]subscription),
	}
}

// Subscribe 注册处理函数（先注销同 key 的旧处理函数）
func (b *EventBus) Subscribe(t EventType, key string, h Handler) {
	b.Unsubscribe(t, key)
	b.handlers[t] = append(b.handlers[t], subscription{key: key, handler: h})
}

// Unsubscribe 注销处理函数，key 不存在时什么也不做
func (b *EventBus) Unsubscribe(t EventType, key string) {
	subs := b.handlers[t]
	for i, s := range subs {
		if s.key == key {
			b.handlers[t] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// HandlerCount 已注册的处理函数数量
func (b *EventBus) HandlerCount(t EventType) int {
	return len(b.handlers[t])
}

// Publish 事件入队
func (b *EventBus) Publish(ev Event) {
	b.queue = append(b.queue, ev)
}

// Emit 立即投递
func (b *EventBus) Emit(ev Event) {
	// 复制一份，处理函数内部可以安全地订阅/注销
	subs := append([]subscription(nil), b.handlers[ev.Type]...)
	for _, s := range subs {
		s.handler(ev)
	}
}

// Dispatch 投递所有排队事件，处理过程中新发布的事件在同一次调用中继续投递
func (b *EventBus) Dispatch() {
	for len(b.queue) > 0 {
		pending := b.queue
		b.queue = nil
		for _, ev := range pending {
			b.Emit(ev)
		}
	}
}

// Pending 排队中的事件数量
func (b *EventBus) Pending() int {
	return len(b.queue)
}
