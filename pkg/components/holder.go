package components

import "github.com/decker502/laserroom/pkg/ecs"

// PlayerComponent 玩家
type PlayerComponent struct {
	// Yaw 视角偏航（弧度）
	Yaw float64

	// InteractRange 交互距离
	InteractRange float64

	// DropKeyHeld 放下键当前是否按住
	DropKeyHeld bool
}

// HeldByComponent 实体处于某个持有者层级中（例如玩家手里）
//
// 持有关系在拾取/放下时显式设置，查询时不再遍历场景树。
type HeldByComponent struct {
	Holder ecs.EntityID
}

// PickupComponent 可拾取物品
type PickupComponent struct {
	// Name 物品名
	Name string

	// Rigid 生成时带刚体；不带刚体的物品放下时用替身等待稳定
	Rigid bool
}
