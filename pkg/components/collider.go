package components

import "github.com/decker502/laserroom/pkg/utils"

// ColliderShape 碰撞体形状
type ColliderShape int

const (
	// ShapeBox 有向盒子（随 Transform.Yaw 旋转）
	ShapeBox ColliderShape = iota
	// ShapeSphere 球体
	ShapeSphere
)

// ColliderComponent 射线查询使用的碰撞体
//
// 尺寸是局部尺寸，查询时乘以 TransformComponent.Scale，
// 所以缩小目标时碰撞体会一起变小。
type ColliderComponent struct {
	Shape ColliderShape

	// HalfExtents 盒子半尺寸（ShapeBox）
	HalfExtents utils.Vec3

	// Radius 球体半径（ShapeSphere）
	Radius float64

	// IsTrigger 触发体：不阻挡玩家，光束是否穿过由传播规则决定
	IsTrigger bool

	// Disabled 禁用时不参与射线查询（如物品被收进背包）
	Disabled bool
}
