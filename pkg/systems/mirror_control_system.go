package systems

import (
	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/game"
)

// DefaultInteractRange 玩家可以操作物体的最大距离
const DefaultInteractRange = 20.0

// MirrorControlSystem 镜子旋转
//
// 放下的镜子在放下键保持按住期间可控：玩家视角的偏航变化乘以灵敏度，
// 让镜子绕支点旋转。松开放下键或离开交互范围后停止。
type MirrorControlSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	player        ecs.EntityID
	controlled    ecs.EntityID
}

// NewMirrorControlSystem 创建镜子控制系统
func NewMirrorControlSystem(em *ecs.EntityManager, gs *game.GameState, player ecs.EntityID) *MirrorControlSystem {
	return &MirrorControlSystem{
		entityManager: em,
		gameState:     gs,
		player:        player,
	}
}

// Controlled 本帧正在被旋转的镜子
func (s *MirrorControlSystem) Controlled() ecs.EntityID {
	return s.controlled
}

// Update 推进一帧
func (s *MirrorControlSystem) Update(deltaTime float64) {
	if s.gameState != nil && s.gameState.IsPaused() {
		return
	}

	s.controlled = ecs.InvalidEntity
	player, ok := ecs.GetComponent[*components.PlayerComponent](s.entityManager, s.player)
	if !ok {
		return
	}
	playerTr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, s.player)
	if !ok {
		return
	}

	interactRange := player.InteractRange
	if interactRange <= 0 {
		interactRange = DefaultInteractRange
	}

	mirrors := ecs.GetEntitiesWith2[*components.TransformComponent, *components.MirrorControlComponent](s.entityManager)
	for _, id := range mirrors {
		mc, _ := ecs.GetComponent[*components.MirrorControlComponent](s.entityManager, id)
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)

		if !player.DropKeyHeld {
			mc.Controllable = false
		}
		if !mc.Controllable || ecs.HasComponent[*components.HeldByComponent](s.entityManager, id) ||
			tr.Position.Distance(playerTr.Position) > interactRange {
			mc.Controlling = false
			continue
		}

		if mc.Controlling {
			angle := (player.Yaw - mc.LastYaw) * mc.Sensitivity
			rotateAroundPivot(tr, mc, angle)
		}
		mc.Controlling = true
		mc.LastYaw = player.Yaw

		if s.controlled == ecs.InvalidEntity {
			s.controlled = id
		}
	}
}

// rotateAroundPivot 绕支点旋转镜子，支点偏移随镜子一起转动
func rotateAroundPivot(tr *components.TransformComponent, mc *components.MirrorControlComponent, angle float64) {
	if angle == 0 {
		return
	}
	offset := mc.Pivot.RotateY(tr.Yaw)
	pivot := tr.Position.Add(offset)
	tr.Position = pivot.Add(offset.Negate().RotateY(angle))
	tr.Yaw += angle
}
