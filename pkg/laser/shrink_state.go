package laser

import (
	"math"

	"github.com/decker502/laserroom/pkg/utils"
)

// DefaultOpenThreshold 缩放比例低于该值时触发"已打开"信号
const DefaultOpenThreshold = 0.3

// ShrinkTarget 可缩小目标的缩放状态
//
// 不变式：Scale 的每个分量都不小于 MinimumScale。
// OriginalScale 在目标可被缩小时捕获一次，之后不再修改。
type ShrinkTarget struct {
	Handle        Handle
	Scale         utils.Vec3
	MinimumScale  utils.Vec3
	OriginalScale utils.Vec3
}

// NewShrinkTarget 在生成时捕获原始缩放
func NewShrinkTarget(h Handle, scale, minimum utils.Vec3) ShrinkTarget {
	return ShrinkTarget{
		Handle:        h,
		Scale:         scale.Max(minimum),
		MinimumScale:  minimum,
		OriginalScale: scale,
	}
}

// Progress 当前 X 轴缩放与原始缩放的比值
func (t ShrinkTarget) Progress() float64 {
	if t.OriginalScale.X <= 0 {
		return 1
	}
	return t.Scale.X / t.OriginalScale.X
}

// ShrinkResult 一次 Tick 的结果
type ShrinkResult struct {
	// Target 本 tick 正在缩小的目标，None 表示没有
	Target Handle
	// Switched 目标与上一 tick 不同
	Switched bool
	Scale    utils.Vec3
	Progress float64
	// Opened 本 tick 首次越过阈值（每个目标只会为 true 一次）
	Opened bool
}

// ShrinkState 跨帧跟踪"当前正在缩小"的目标
type ShrinkState struct {
	threshold float64
	current   Handle
	opened    map[Handle]bool
}

// NewShrinkState 创建缩小状态，threshold<=0 时使用 DefaultOpenThreshold
func NewShrinkState(threshold float64) *ShrinkState {
	if threshold <= 0 {
		threshold = DefaultOpenThreshold
	}
	return &ShrinkState{
		threshold: threshold,
		opened:    make(map[Handle]bool),
	}
}

// Threshold 打开阈值
func (s *ShrinkState) Threshold() float64 {
	return s.threshold
}

// Current 当前正在缩小的目标
func (s *ShrinkState) Current() Handle {
	return s.current
}

// HasOpened 目标是否已触发过打开信号
func (s *ShrinkState) HasOpened(h Handle) bool {
	return s.opened[h]
}

// MarkOpened 预先标记目标已打开（例如从存档恢复），之后不会再触发信号
func (s *ShrinkState) MarkOpened(h Handle) {
	if h != None {
		s.opened[h] = true
	}
}

// Tick 推进一个 tick
//
// target 为 nil 表示本 tick 光束没有照到可缩小目标。
// scaler = 1 - (1 - decay) * dt，newScale = max(scale * scaler, minimum)，
// 结果直接写回 target.Scale。dt < 0 按 0 处理。
func (s *ShrinkState) Tick(target *ShrinkTarget, dt float64, decayRatePerSecond utils.Vec3) ShrinkResult {
	next := None
	if target != nil {
		next = target.Handle
	}

	result := ShrinkResult{Target: next, Switched: next != s.current}
	s.current = next

	if target == nil {
		return result
	}

	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}

	scaler := utils.NewVec3(
		axisScaler(decayRatePerSecond.X, dt),
		axisScaler(decayRatePerSecond.Y, dt),
		axisScaler(decayRatePerSecond.Z, dt),
	)
	target.Scale = target.Scale.MultiplyVec(scaler).Max(target.MinimumScale)

	result.Scale = target.Scale
	result.Progress = target.Progress()

	if result.Progress < s.threshold && !s.opened[target.Handle] {
		s.opened[target.Handle] = true
		result.Opened = true
	}

	return result
}

// axisScaler 单个轴的 1 - (1 - decay) * dt
//
// 单步 dt 很大时结果会变成负数，截断到 0 后再由下限兜底；
// decay 为 1 的轴不缩小，dt 为 +Inf 时也保持 1。
func axisScaler(decay, dt float64) float64 {
	rate := 1 - decay
	if rate == 0 || math.IsNaN(rate) {
		return 1
	}
	return math.Max(1-rate*dt, 0)
}
