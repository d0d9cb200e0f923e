package components

import "github.com/decker502/laserroom/pkg/utils"

// TransformComponent 实体的世界变换
//
// 只支持绕 Y 轴的旋转（俯视角下的朝向），这足以描述房间里的镜子和门。
type TransformComponent struct {
	// Position 世界坐标
	Position utils.Vec3

	// Yaw 绕 Y 轴的旋转（弧度）
	Yaw float64

	// Scale 缩放（1,1,1 = 原始大小）
	Scale utils.Vec3
}

// NewTransform 创建单位缩放的变换
func NewTransform(position utils.Vec3, yaw float64) *TransformComponent {
	return &TransformComponent{
		Position: position,
		Yaw:      yaw,
		Scale:    utils.NewVec3(1, 1, 1),
	}
}
