package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene 游戏场景（房间）
// 每个场景有自己的更新和渲染逻辑
type Scene interface {
	// Update 按经过的时间（秒）推进场景
	Update(deltaTime float64)

	// Draw 渲染场景
	Draw(screen *ebiten.Image)
}

// Saveable 可选接口：场景退出时保存状态
type Saveable interface {
	// SaveOnExit 返回 true 表示保存成功或无需保存
	SaveOnExit() bool
}
