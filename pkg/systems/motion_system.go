package systems

import (
	"math"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/utils"
)

// restSpeed 低于该速度视为静止
const restSpeed = 1e-3

// MotionSystem 简单运动积分（放下物品的替身减速滑行）
type MotionSystem struct {
	entityManager *ecs.EntityManager
}

// NewMotionSystem 创建运动系统
func NewMotionSystem(em *ecs.EntityManager) *MotionSystem {
	return &MotionSystem{entityManager: em}
}

// Update 按速度移动实体并施加阻尼
func (s *MotionSystem) Update(deltaTime float64) {
	if deltaTime <= 0 {
		return
	}

	entities := ecs.GetEntitiesWith2[*components.TransformComponent, *components.VelocityComponent](s.entityManager)
	for _, id := range entities {
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		vel, _ := ecs.GetComponent[*components.VelocityComponent](s.entityManager, id)

		tr.Position = tr.Position.Add(vel.Linear.Multiply(deltaTime))
		tr.Yaw += vel.Angular * deltaTime

		keep := math.Pow(clamp01(vel.Damping), deltaTime)
		vel.Linear = vel.Linear.Multiply(keep)
		vel.Angular *= keep

		if vel.Linear.Length() < restSpeed {
			vel.Linear = utils.Vec3{}
		}
		if math.Abs(vel.Angular) < restSpeed {
			vel.Angular = 0
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
