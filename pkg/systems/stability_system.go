package systems

import (
	"log"
	"math"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
)

const (
	// DefaultSampleEvery 采样间隔（帧），对应两次固定更新
	DefaultSampleEvery = 2
	// DefaultStableTolerance 两次采样之间的位姿变化阈值
	DefaultStableTolerance = 0.01
)

// StabilitySystem 等待放下物品的替身静止
//
// 替身每隔 SampleEvery 帧采样一次位姿，位置和旋转变化都小于 Tolerance 时视为稳定：
// 真实物品移动到替身的位姿并重新启用，替身被销毁。
// 真实物品在等待期间被拾起或销毁时状态机取消，替身同样被销毁。
type StabilitySystem struct {
	entityManager *ecs.EntityManager
}

// NewStabilitySystem 创建稳定检测系统
func NewStabilitySystem(em *ecs.EntityManager) *StabilitySystem {
	return &StabilitySystem{entityManager: em}
}

// Update 推进一帧
func (s *StabilitySystem) Update(deltaTime float64) {
	watchers := ecs.GetEntitiesWith2[*components.TransformComponent, *components.StabilityWatchComponent](s.entityManager)
	for _, id := range watchers {
		watch, _ := ecs.GetComponent[*components.StabilityWatchComponent](s.entityManager, id)
		if watch.State != components.StabilityWaiting {
			continue
		}
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)

		if !s.entityManager.Exists(watch.Item) ||
			ecs.HasComponent[*components.HeldByComponent](s.entityManager, watch.Item) {
			watch.State = components.StabilityCancelled
			s.entityManager.DestroyEntity(id)
			continue
		}

		watch.Ticks++
		every := watch.SampleEvery
		if every <= 0 {
			every = DefaultSampleEvery
		}
		if watch.Ticks < every {
			continue
		}
		watch.Ticks = 0

		tolerance := watch.Tolerance
		if tolerance <= 0 {
			tolerance = DefaultStableTolerance
		}

		moved := tr.Position.Distance(watch.LastPosition)
		turned := math.Abs(tr.Yaw - watch.LastYaw)
		watch.LastPosition = tr.Position
		watch.LastYaw = tr.Yaw
		if moved >= tolerance || turned >= tolerance {
			continue
		}

		s.settle(id, watch, tr)
	}
}

func (s *StabilitySystem) settle(standIn ecs.EntityID, watch *components.StabilityWatchComponent, tr *components.TransformComponent) {
	if itemTr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, watch.Item); ok {
		itemTr.Position = tr.Position
		itemTr.Yaw = tr.Yaw
	}
	if col, ok := ecs.GetComponent[*components.ColliderComponent](s.entityManager, watch.Item); ok {
		col.Disabled = false
	}

	watch.State = components.StabilityStable
	s.entityManager.DestroyEntity(standIn)
	log.Printf("[StabilitySystem] item %d settled at (%.2f, %.2f)", watch.Item, tr.Position.X, tr.Position.Z)
}
