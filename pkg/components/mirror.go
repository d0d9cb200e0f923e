package components

import "github.com/decker502/laserroom/pkg/utils"

// ReflectiveComponent 镜面标记：命中该实体碰撞体的光束会被反射
type ReflectiveComponent struct{}

// MirrorControlComponent 可被玩家旋转的镜子
//
// 镜子被放下后，按住放下键并转动视角即可绕支点旋转镜子；
// 松开放下键后不再可控，需要重新拿起。
type MirrorControlComponent struct {
	// Sensitivity 视角偏航变化到镜子旋转的倍率
	Sensitivity float64

	// Pivot 旋转支点（相对镜子位置的偏移）
	Pivot utils.Vec3

	// Controllable 镜子曾在手中且已被放下，当前可以被控制
	Controllable bool

	// Controlling 本帧正在被旋转
	Controlling bool

	// LastYaw 上一帧玩家视角偏航
	LastYaw float64
}
