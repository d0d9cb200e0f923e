package components

import (
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/utils"
)

// ShrinkableComponent 可被激光缩小的对象
type ShrinkableComponent struct {
	// OriginalScale 生成时捕获的原始缩放，之后不再修改
	OriginalScale utils.Vec3

	// MinimumScale 缩放下限
	MinimumScale utils.Vec3

	// OutlineTarget 显示描边的实体，为 0 时使用自身
	OutlineTarget ecs.EntityID
}

// ShrinkableColliderComponent 挂在碰撞体上，指向它所属的可缩小对象
//
// 一个可缩小对象可以有多个碰撞体（例如门框和门板）。
type ShrinkableColliderComponent struct {
	ColliderFor ecs.EntityID
}
