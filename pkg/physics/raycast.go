// Package physics 基于 ECS 的射线查询
//
// 只实现激光与交互需要的部分：有向盒子与球体的射线求交。
// 不做碰撞响应。
package physics

import (
	"math"
	"sort"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/laser"
	"github.com/decker502/laserroom/pkg/utils"
)

// DefaultEpsilon 忽略距离起点小于该值的命中，避免从表面出发时命中自身
const DefaultEpsilon = 1e-4

// colliderEntry 一帧内解析好的碰撞体快照
type colliderEntry struct {
	owner     ecs.EntityID
	shape     components.ColliderShape
	center    utils.Vec3
	yaw       float64
	half      utils.Vec3
	radius    float64
	isTrigger bool
	kind      laser.TargetKind
	target    ecs.EntityID
	holder    ecs.EntityID
}

// SceneCaster 实现 laser.RayCaster
//
// 每帧调用一次 Refresh 解析碰撞体、激光语义和持有者关系，
// 之后该帧内的所有查询只读快照，不再查询组件。
type SceneCaster struct {
	em        *ecs.EntityManager
	epsilon   float64
	colliders []colliderEntry
}

// NewSceneCaster 创建射线查询器
func NewSceneCaster(em *ecs.EntityManager) *SceneCaster {
	return &SceneCaster{
		em:      em,
		epsilon: DefaultEpsilon,
	}
}

// Refresh 重新解析场景中的碰撞体
func (c *SceneCaster) Refresh() {
	c.colliders = c.colliders[:0]

	entities := ecs.GetEntitiesWith2[*components.TransformComponent, *components.ColliderComponent](c.em)
	for _, id := range entities {
		tr, _ := ecs.GetComponent[*components.TransformComponent](c.em, id)
		col, _ := ecs.GetComponent[*components.ColliderComponent](c.em, id)
		if col.Disabled {
			continue
		}

		entry := colliderEntry{
			owner:     id,
			shape:     col.Shape,
			center:    tr.Position,
			yaw:       tr.Yaw,
			half:      col.HalfExtents.MultiplyVec(tr.Scale),
			radius:    col.Radius * math.Max(tr.Scale.X, math.Max(tr.Scale.Y, tr.Scale.Z)),
			isTrigger: col.IsTrigger,
			kind:      laser.KindOpaque,
		}

		switch {
		case ecs.HasComponent[*components.ReflectiveComponent](c.em, id):
			entry.kind = laser.KindReflective
		case ecs.HasComponent[*components.ShrinkableComponent](c.em, id):
			entry.kind = laser.KindShrinkable
			entry.target = id
		default:
			if sc, ok := ecs.GetComponent[*components.ShrinkableColliderComponent](c.em, id); ok {
				entry.kind = laser.KindShrinkable
				entry.target = sc.ColliderFor
			}
		}

		if held, ok := ecs.GetComponent[*components.HeldByComponent](c.em, id); ok {
			entry.holder = held.Holder
		}

		c.colliders = append(c.colliders, entry)
	}
}

// Cast 返回 maxDistance 内最近的命中
func (c *SceneCaster) Cast(ray laser.Ray, maxDistance float64) (laser.HitRecord, bool) {
	var best laser.HitRecord
	bestT := maxDistance
	found := false

	for i := range c.colliders {
		t, normal, ok := c.colliders[i].intersect(ray, c.epsilon, bestT)
		if !ok {
			continue
		}
		bestT = t
		best = c.colliders[i].record(ray, t, normal)
		found = true
	}

	return best, found
}

// CastAll 返回 maxDistance 内的所有命中，按距离升序
func (c *SceneCaster) CastAll(ray laser.Ray, maxDistance float64) []laser.HitRecord {
	hits := make([]laser.HitRecord, 0)
	for i := range c.colliders {
		t, normal, ok := c.colliders[i].intersect(ray, c.epsilon, maxDistance)
		if ok {
			hits = append(hits, c.colliders[i].record(ray, t, normal))
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

func (e *colliderEntry) record(ray laser.Ray, t float64, normal utils.Vec3) laser.HitRecord {
	return laser.HitRecord{
		Point:     ray.At(t),
		Normal:    normal,
		Distance:  t,
		IsTrigger: e.isTrigger,
		Kind:      e.kind,
		Owner:     e.owner,
		Target:    e.target,
		Holder:    e.holder,
	}
}

func (e *colliderEntry) intersect(ray laser.Ray, tMin, tMax float64) (float64, utils.Vec3, bool) {
	switch e.shape {
	case components.ShapeSphere:
		return intersectSphere(ray, e.center, e.radius, tMin, tMax)
	default:
		return intersectBox(ray, e.center, e.yaw, e.half, tMin, tMax)
	}
}

// intersectSphere 射线与球求交，返回距离和外法线
func intersectSphere(ray laser.Ray, center utils.Vec3, radius, tMin, tMax float64) (float64, utils.Vec3, bool) {
	if radius <= 0 {
		return 0, utils.Vec3{}, false
	}

	oc := ray.Origin.Subtract(center)
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	cc := oc.Dot(oc) - radius*radius

	discriminant := halfB*halfB - a*cc
	if discriminant < 0 {
		return 0, utils.Vec3{}, false
	}

	sqrtD := math.Sqrt(discriminant)
	root := (-halfB - sqrtD) / a
	if root <= tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root <= tMin || root > tMax {
			return 0, utils.Vec3{}, false
		}
	}

	normal := ray.At(root).Subtract(center).Multiply(1.0 / radius)
	return root, normal, true
}

// intersectBox 射线与绕 Y 轴旋转的盒子求交（slab 算法）
//
// 射线先变换到盒子局部空间求交，法线再旋转回世界空间。
// 起点在盒子内部时返回出射面。
func intersectBox(ray laser.Ray, center utils.Vec3, yaw float64, half utils.Vec3, tMin, tMax float64) (float64, utils.Vec3, bool) {
	origin := ray.Origin.Subtract(center).RotateY(-yaw)
	dir := ray.Direction.RotateY(-yaw)

	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	h := [3]float64{half.X, half.Y, half.Z}

	tNear, tFar := math.Inf(-1), math.Inf(1)
	nearAxis, farAxis := -1, -1

	for axis := 0; axis < 3; axis++ {
		if h[axis] <= 0 {
			return 0, utils.Vec3{}, false
		}
		if math.Abs(d[axis]) < 1e-12 {
			// 平行于该 slab
			if o[axis] < -h[axis] || o[axis] > h[axis] {
				return 0, utils.Vec3{}, false
			}
			continue
		}

		t1 := (-h[axis] - o[axis]) / d[axis]
		t2 := (h[axis] - o[axis]) / d[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tNear {
			tNear, nearAxis = t1, axis
		}
		if t2 < tFar {
			tFar, farAxis = t2, axis
		}
		if tNear > tFar {
			return 0, utils.Vec3{}, false
		}
	}

	t, axis, sign := tNear, nearAxis, -1.0
	if t <= tMin {
		// 起点在盒内（或刚好在表面），取出射面
		t, axis, sign = tFar, farAxis, 1.0
	}
	if t <= tMin || t > tMax || axis < 0 {
		return 0, utils.Vec3{}, false
	}

	// 入射面外法线与方向相反，出射面外法线与方向相同
	var n [3]float64
	if d[axis] > 0 {
		n[axis] = sign
	} else {
		n[axis] = -sign
	}

	normal := utils.NewVec3(n[0], n[1], n[2]).RotateY(yaw)
	return t, normal, true
}
