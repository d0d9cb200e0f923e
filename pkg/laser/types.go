// Package laser 激光传播与谜题状态核心
//
// 本包不依赖渲染与物理实现，只通过两个边界与外部交互：
//   - RayCaster：射线查询（由物理/碰撞子系统提供）
//   - OutlineSink：描边材质开关（由渲染子系统提供）
//
// 所有逻辑在单个 tick 内同步完成，不需要加锁。
package laser

import (
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/utils"
)

// Handle 世界对象的稳定句柄，0 表示"无"
type Handle = ecs.EntityID

// None 空句柄
const None Handle = ecs.InvalidEntity

// Ray 射线：起点 + 单位方向
type Ray struct {
	Origin    utils.Vec3
	Direction utils.Vec3
}

// At 返回射线上距离起点 t 的点
func (r Ray) At(t float64) utils.Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// TargetKind 命中对象的激光语义
type TargetKind int

const (
	// KindNone 无激光语义（视同不透明）
	KindNone TargetKind = iota
	// KindReflective 镜面，反射光束
	KindReflective
	// KindShrinkable 可缩小对象，吸收光束
	KindShrinkable
	// KindOpaque 不透明障碍
	KindOpaque
)

func (k TargetKind) String() string {
	switch k {
	case KindReflective:
		return "reflective"
	case KindShrinkable:
		return "shrinkable"
	case KindOpaque:
		return "opaque"
	default:
		return "none"
	}
}

// HitRecord 单次射线查询的命中记录
type HitRecord struct {
	Point    utils.Vec3
	Normal   utils.Vec3
	Distance float64

	IsTrigger bool
	Kind      TargetKind

	// Owner 被命中的碰撞体所属对象
	Owner Handle
	// Target 逻辑缩小目标；多个碰撞体可以映射到同一个目标，
	// 未设置时等于 Owner
	Target Handle
	// Holder 碰撞体所在持有者层级（如玩家手中物品），0 表示不在任何持有者下
	Holder Handle
}

// LogicalTarget 返回碰撞体对应的逻辑目标
func (h HitRecord) LogicalTarget() Handle {
	if h.Target != None {
		return h.Target
	}
	return h.Owner
}

// RayCaster 射线查询接口
//
// Cast 返回 maxDistance 以内最近的命中；没有命中时返回 false。
// 实现需要忽略距离起点极近的命中，避免从表面出发时命中自身。
type RayCaster interface {
	Cast(ray Ray, maxDistance float64) (HitRecord, bool)
}

// RayCasterFunc 函数适配器
type RayCasterFunc func(ray Ray, maxDistance float64) (HitRecord, bool)

// Cast 实现 RayCaster
func (f RayCasterFunc) Cast(ray Ray, maxDistance float64) (HitRecord, bool) {
	return f(ray, maxDistance)
}

// OutlineSink 描边材质开关（渲染侧实现）
type OutlineSink interface {
	SetOutlineMaterial(h Handle, enabled bool)
}

// OutlineSinkFunc 函数适配器
type OutlineSinkFunc func(h Handle, enabled bool)

// SetOutlineMaterial 实现 OutlineSink
func (f OutlineSinkFunc) SetOutlineMaterial(h Handle, enabled bool) {
	f(h, enabled)
}
