package components

import (
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/utils"
)

// StabilityState 等待稳定状态机的状态
type StabilityState int

const (
	// StabilityWaiting 仍在移动，继续观察
	StabilityWaiting StabilityState = iota
	// StabilityStable 已稳定，真实物品已放到替身位置
	StabilityStable
	// StabilityCancelled 被外部重置（替身被销毁或物品被重新拾取）
	StabilityCancelled
)

func (s StabilityState) String() string {
	switch s {
	case StabilityWaiting:
		return "Waiting"
	case StabilityStable:
		return "Stable"
	case StabilityCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// StabilityWatchComponent 挂在放下物品的替身上，每隔若干帧比较一次位姿
type StabilityWatchComponent struct {
	// Item 替身稳定后要放回的真实物品
	Item ecs.EntityID

	State StabilityState

	// SampleEvery 采样间隔（帧）
	SampleEvery int

	// Tolerance 位置/旋转变化小于此值视为稳定
	Tolerance float64

	// Ticks 距离上一次采样经过的帧数
	Ticks int

	LastPosition utils.Vec3
	LastYaw      float64
}

// VelocityComponent 替身的简单运动（放下/抛出后减速直到静止）
type VelocityComponent struct {
	Linear  utils.Vec3
	Angular float64
	// Damping 每秒速度保留比例
	Damping float64
}
