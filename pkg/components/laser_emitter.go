package components

import (
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/laser"
	"github.com/decker502/laserroom/pkg/utils"
)

// LaserEmitterComponent 激光发射器
type LaserEmitterComponent struct {
	// Direction 发射方向（局部，随 Transform.Yaw 旋转）
	Direction utils.Vec3

	// MaxDistance 单次射线最大距离
	MaxDistance float64

	// MaxSteps 每帧射线查询次数上限
	MaxSteps int

	// DecayRatePerSecond 每秒缩放保留比例（0.9 = 每秒缩小到 90%）
	DecayRatePerSecond utils.Vec3

	// OpenThreshold 缩放比例低于此值时目标被"打开"
	OpenThreshold float64

	// SoundInterval 命中音效的最小间隔（秒）
	SoundInterval float64

	// SoundCooldown 距离下一次可播放命中音效的剩余时间（秒）
	SoundCooldown float64
}

// BeamComponent 本帧光束的传播结果，供渲染使用
type BeamComponent struct {
	Points      []utils.Vec3
	Termination laser.Termination
	Target      ecs.EntityID
}

// OutlineComponent 描边材质标记（由 MaterialTracker 添加/移除）
type OutlineComponent struct{}
