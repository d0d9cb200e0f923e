package systems

import (
	"math"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
)

const (
	// DefaultFlashTimes 背包已满提示的闪烁次数
	DefaultFlashTimes = 2
	// DefaultFlashInterval 每次闪烁的时长（秒）
	DefaultFlashInterval = 0.4
)

// FlashEffectSystem 闪烁效果系统
// 每次闪烁前半程高亮、后半程恢复，闪烁 Times 次后结束
type FlashEffectSystem struct {
	entityManager *ecs.EntityManager
}

// NewFlashEffectSystem 创建闪烁效果系统
func NewFlashEffectSystem(em *ecs.EntityManager) *FlashEffectSystem {
	return &FlashEffectSystem{
		entityManager: em,
	}
}

// TriggerFlash 开始闪烁
//
// 正在闪烁时忽略请求并返回 false。
func TriggerFlash(em *ecs.EntityManager, id ecs.EntityID, times int, interval float64) bool {
	flash, ok := ecs.GetComponent[*components.FlashEffectComponent](em, id)
	if ok && flash.IsActive {
		return false
	}
	if times <= 0 {
		times = DefaultFlashTimes
	}
	if interval <= 0 {
		interval = DefaultFlashInterval
	}

	ecs.AddComponent(em, id, &components.FlashEffectComponent{
		Times:    times,
		Interval: interval,
		Lit:      true,
		IsActive: true,
	})
	return true
}

// Update 更新所有闪烁效果
func (s *FlashEffectSystem) Update(dt float64) {
	entities := ecs.GetEntitiesWith1[*components.FlashEffectComponent](s.entityManager)

	for _, entity := range entities {
		flash, _ := ecs.GetComponent[*components.FlashEffectComponent](s.entityManager, entity)
		if !flash.IsActive {
			continue
		}

		flash.Elapsed += dt
		cycles := flash.Elapsed / flash.Interval
		if cycles >= float64(flash.Times) {
			flash.IsActive = false
			flash.Lit = false
			continue
		}

		_, frac := math.Modf(cycles)
		flash.Lit = frac < 0.5
	}
}
