package laser

import (
	"fmt"
	"math"

	"github.com/decker502/laserroom/pkg/utils"
)

// DefaultMaxDistance 单次射线查询的默认最大距离
const DefaultMaxDistance = 100.0

// DefaultMaxSteps 每个 tick 射线查询次数上限（含穿过触发体的重发）
//
// 访问集合只能阻止同一面镜子被再次命中；该上限兜底处理
// 退化几何（例如大量镜子或大量重叠触发体）。
const DefaultMaxSteps = 64

// Termination 光束路径的结束原因
type Termination int

const (
	// TerminationOpen 最后一段射线没有命中任何东西
	TerminationOpen Termination = iota
	// TerminationOpaque 命中不透明物体
	TerminationOpaque
	// TerminationAbsorbed 被可缩小对象吸收
	TerminationAbsorbed
	// TerminationCycle 再次命中已经反射过的镜子
	TerminationCycle
	// TerminationStepLimit 达到查询次数上限
	TerminationStepLimit
)

func (t Termination) String() string {
	switch t {
	case TerminationOpen:
		return "open"
	case TerminationOpaque:
		return "opaque"
	case TerminationAbsorbed:
		return "absorbed"
	case TerminationCycle:
		return "cycle"
	case TerminationStepLimit:
		return "step-limit"
	default:
		return fmt.Sprintf("termination(%d)", int(t))
	}
}

// Options 单次传播的参数
type Options struct {
	// MaxDistance 每次射线查询的最大距离，<=0 时使用 DefaultMaxDistance
	MaxDistance float64
	// MaxSteps 查询次数上限，<=0 时使用 DefaultMaxSteps
	MaxSteps int
	// OriginHolder 光束起点所在的持有者层级；该层级内的触发体不被穿透
	OriginHolder Handle
	// InteractionTarget 当前交互目标（如玩家正在操作的镜子），即使是触发体也不被穿透
	InteractionTarget Handle
}

// Result 单个 tick 的传播结果
type Result struct {
	// Points 折线顶点，至少包含起点
	Points []utils.Vec3
	// Target 吸收光束的缩小目标，None 表示没有
	Target Handle
	// Collider 吸收光束的碰撞体（可能与 Target 不同）
	Collider Handle
	// Termination 结束原因
	Termination Termination
	// Reflections 本次传播访问过的不同镜子数量
	Reflections int
}

// Last 折线最后一个点
func (r Result) Last() utils.Vec3 {
	return r.Points[len(r.Points)-1]
}

// Length 折线总长度
func (r Result) Length() float64 {
	total := 0.0
	for i := 1; i < len(r.Points); i++ {
		total += r.Points[i].Distance(r.Points[i-1])
	}
	return total
}

// Propagator 激光传播器
//
// 零值不可用，通过 NewPropagator 创建。访问集合在每次 Propagate 开始时清空，
// 复用同一个 Propagator 只是为了复用内存。
type Propagator struct {
	caster  RayCaster
	visited map[Handle]struct{}
}

// NewPropagator 创建传播器
func NewPropagator(caster RayCaster) *Propagator {
	return &Propagator{
		caster:  caster,
		visited: make(map[Handle]struct{}),
	}
}

// Propagate 从 ray 出发模拟一个 tick 的光束传播
//
// 规则：
//   - 无命中：追加 origin + dir*maxDistance 的虚拟终点，路径为 Open
//   - 可穿透的触发体：从命中点沿原方向重新发射，不追加顶点，不记入访问集合
//   - 可缩小对象：吸收光束，记录为终止目标
//   - 镜子：已访问则结束（Cycle），否则反射继续
//   - 其他：结束
//   - 查询次数用尽（StepLimit）：同样追加沿当前方向的虚拟终点
func (p *Propagator) Propagate(ray Ray, opts Options) (Result, error) {
	if !ray.Origin.IsFinite() || !ray.Direction.IsFinite() {
		return Result{}, fmt.Errorf("%w: non-finite ray %v -> %v", ErrInvalidInput, ray.Origin, ray.Direction)
	}
	if ray.Direction.LengthSquared() == 0 {
		return Result{}, fmt.Errorf("%w: zero-length ray direction", ErrInvalidInput)
	}

	maxDistance := opts.MaxDistance
	if maxDistance == 0 {
		maxDistance = DefaultMaxDistance
	}
	if maxDistance < 0 || math.IsNaN(maxDistance) || math.IsInf(maxDistance, 0) {
		return Result{}, fmt.Errorf("%w: max distance %v", ErrInvalidInput, opts.MaxDistance)
	}
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	clear(p.visited)

	current := Ray{Origin: ray.Origin, Direction: ray.Direction.Normalize()}
	result := Result{
		Points:      []utils.Vec3{current.Origin},
		Termination: TerminationStepLimit,
	}

	for step := 0; step < maxSteps; step++ {
		hit, ok := p.caster.Cast(current, maxDistance)
		if !ok {
			result.Points = append(result.Points, current.At(maxDistance))
			result.Termination = TerminationOpen
			break
		}

		if isTransparent(hit, opts) {
			current = Ray{Origin: hit.Point, Direction: current.Direction}
			continue
		}

		result.Points = append(result.Points, hit.Point)

		if hit.Kind == KindShrinkable {
			result.Target = hit.LogicalTarget()
			result.Collider = hit.Owner
			result.Termination = TerminationAbsorbed
			break
		}

		if hit.Kind != KindReflective {
			result.Termination = TerminationOpaque
			break
		}

		if _, seen := p.visited[hit.Owner]; seen {
			result.Termination = TerminationCycle
			break
		}
		p.visited[hit.Owner] = struct{}{}

		current = Ray{
			Origin:    hit.Point,
			Direction: current.Direction.Reflect(hit.Normal.Normalize()).Normalize(),
		}
	}

	// 步数用尽时光束停在最后一面镜子（或触发体）后面，补一个远点让它可见
	if result.Termination == TerminationStepLimit {
		result.Points = append(result.Points, current.At(maxDistance))
	}

	result.Reflections = len(p.visited)
	return result, nil
}

// isTransparent 触发体是否应被光束直接穿过
func isTransparent(hit HitRecord, opts Options) bool {
	if !hit.IsTrigger {
		return false
	}
	if opts.OriginHolder != None && hit.Holder == opts.OriginHolder {
		return false
	}
	if opts.InteractionTarget != None &&
		(hit.Owner == opts.InteractionTarget || hit.LogicalTarget() == opts.InteractionTarget) {
		return false
	}
	return true
}
