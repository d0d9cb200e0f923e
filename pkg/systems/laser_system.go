package systems

import (
	"log"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/game"
	"github.com/decker502/laserroom/pkg/laser"
	"github.com/decker502/laserroom/pkg/physics"
	"github.com/decker502/laserroom/pkg/utils"
)

// emitterRuntime 每个发射器独立的跨帧状态
type emitterRuntime struct {
	shrink *laser.ShrinkState
}

// LaserSystem 激光系统
//
// 每帧：刷新射线查询快照，对每个发射器传播光束，缩小被照射的目标，
// 维护描边标记，并在目标首次越过阈值时发布 EventTargetOpened。
//
// 缩小进度按发射器分别计算；描边和"已打开"锁存属于整个系统：
// 同一时刻只有一个对象带描边（ID 最小的、正在缩小目标的发射器的目标），
// 每个目标的 EventTargetOpened 只发布一次，不论有几个发射器照着它。
type LaserSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	bus           *game.EventBus
	caster        *physics.SceneCaster
	propagator    *laser.Propagator

	runtimes map[ecs.EntityID]*emitterRuntime
	tracker  *laser.MaterialTracker
	// opened 已打开的目标（本次运行打开的和从存档恢复的），新建的发射器状态也会继承
	opened map[ecs.EntityID]struct{}

	// interactionTarget 返回当前交互目标（正在旋转的镜子），可为 nil
	interactionTarget func() ecs.EntityID
}

// NewLaserSystem 创建激光系统
func NewLaserSystem(em *ecs.EntityManager, gs *game.GameState, bus *game.EventBus) *LaserSystem {
	caster := physics.NewSceneCaster(em)
	s := &LaserSystem{
		entityManager: em,
		gameState:     gs,
		bus:           bus,
		caster:        caster,
		propagator:    laser.NewPropagator(caster),
		runtimes:      make(map[ecs.EntityID]*emitterRuntime),
		opened:        make(map[ecs.EntityID]struct{}),
	}
	s.tracker = laser.NewMaterialTracker(laser.OutlineSinkFunc(s.setOutline))
	return s
}

// SetInteractionTargetSource 设置交互目标来源（通常是 MirrorControlSystem.Controlled）
func (s *LaserSystem) SetInteractionTargetSource(source func() ecs.EntityID) {
	s.interactionTarget = source
}

// MarkOpened 标记目标已打开，之后不会再发布 EventTargetOpened
func (s *LaserSystem) MarkOpened(target ecs.EntityID) {
	s.opened[target] = struct{}{}
	for _, rt := range s.runtimes {
		rt.shrink.MarkOpened(target)
	}
}

// CurrentTarget 发射器当前正在缩小的目标
func (s *LaserSystem) CurrentTarget(emitter ecs.EntityID) ecs.EntityID {
	if rt, ok := s.runtimes[emitter]; ok {
		return rt.shrink.Current()
	}
	return ecs.InvalidEntity
}

// Update 推进一帧
func (s *LaserSystem) Update(deltaTime float64) {
	if s.gameState != nil && s.gameState.IsPaused() {
		return
	}

	s.caster.Refresh()

	interaction := ecs.InvalidEntity
	if s.interactionTarget != nil {
		interaction = s.interactionTarget()
	}

	outline := laser.None
	emitters := ecs.GetEntitiesWith2[*components.TransformComponent, *components.LaserEmitterComponent](s.entityManager)
	for _, id := range emitters {
		if marked := s.updateEmitter(id, deltaTime, interaction); outline == laser.None {
			outline = marked
		}
	}
	s.tracker.Update(outline)

	s.pruneRuntimes()
}

// updateEmitter 推进一个发射器，返回应带描边的实体（没有缩小目标时为 None）
func (s *LaserSystem) updateEmitter(id ecs.EntityID, dt float64, interaction ecs.EntityID) ecs.EntityID {
	tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
	emitter, _ := ecs.GetComponent[*components.LaserEmitterComponent](s.entityManager, id)
	rt := s.runtimeFor(id, emitter)

	opts := laser.Options{
		MaxDistance:       emitter.MaxDistance,
		MaxSteps:          emitter.MaxSteps,
		InteractionTarget: interaction,
	}
	if held, ok := ecs.GetComponent[*components.HeldByComponent](s.entityManager, id); ok {
		opts.OriginHolder = held.Holder
	}

	ray := laser.Ray{Origin: tr.Position, Direction: EmitterDirection(tr, emitter)}
	result, err := s.propagator.Propagate(ray, opts)
	if err != nil {
		log.Printf("[LaserSystem] emitter %d: %v", id, err)
		ecs.RemoveComponent[*components.BeamComponent](s.entityManager, id)
		rt.shrink.Tick(nil, dt, emitter.DecayRatePerSecond)
		return laser.None
	}

	ecs.AddComponent(s.entityManager, id, &components.BeamComponent{
		Points:      result.Points,
		Termination: result.Termination,
		Target:      result.Target,
	})

	if emitter.SoundCooldown > 0 {
		emitter.SoundCooldown -= dt
	}

	target := s.shrinkTargetFor(result.Target)
	if target == nil {
		rt.shrink.Tick(nil, dt, emitter.DecayRatePerSecond)
		return laser.None
	}

	tick := rt.shrink.Tick(target, dt, emitter.DecayRatePerSecond)
	if targetTr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, target.Handle); ok {
		targetTr.Scale = tick.Scale
	}
	s.syncLinkedColliders(target.Handle, tick.Scale)

	if emitter.SoundCooldown <= 0 {
		emitter.SoundCooldown = emitter.SoundInterval
		s.publish(game.Event{Type: game.EventLaserHit, Entity: target.Handle, Collider: result.Collider})
	}

	if _, done := s.opened[target.Handle]; tick.Opened && !done {
		s.MarkOpened(target.Handle)
		log.Printf("[LaserSystem] target %d opened (progress %.3f)", target.Handle, tick.Progress)
		s.publish(game.Event{Type: game.EventTargetOpened, Entity: target.Handle, Collider: result.Collider})
	}

	return s.outlineEntity(target.Handle)
}

// shrinkTargetFor 读取可缩小目标当前的缩放状态，不可缩小时返回 nil
func (s *LaserSystem) shrinkTargetFor(h ecs.EntityID) *laser.ShrinkTarget {
	if h == ecs.InvalidEntity {
		return nil
	}
	shrinkable, ok := ecs.GetComponent[*components.ShrinkableComponent](s.entityManager, h)
	if !ok {
		return nil
	}
	scale := shrinkable.OriginalScale
	if tr, ok := ecs.GetComponent[*components.TransformComponent](s.entityManager, h); ok {
		scale = tr.Scale
	}
	return &laser.ShrinkTarget{
		Handle:        h,
		Scale:         scale.Max(shrinkable.MinimumScale),
		MinimumScale:  shrinkable.MinimumScale,
		OriginalScale: shrinkable.OriginalScale,
	}
}

// syncLinkedColliders 指向目标的附加碰撞体与目标一起缩小
func (s *LaserSystem) syncLinkedColliders(target ecs.EntityID, scale utils.Vec3) {
	linked := ecs.GetEntitiesWith2[*components.TransformComponent, *components.ShrinkableColliderComponent](s.entityManager)
	for _, id := range linked {
		link, _ := ecs.GetComponent[*components.ShrinkableColliderComponent](s.entityManager, id)
		if link.ColliderFor != target || id == target {
			continue
		}
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		tr.Scale = scale
	}
}

// outlineEntity 描边显示在 OutlineTarget 上，未设置时显示在目标自身
func (s *LaserSystem) outlineEntity(target ecs.EntityID) ecs.EntityID {
	if shrinkable, ok := ecs.GetComponent[*components.ShrinkableComponent](s.entityManager, target); ok &&
		shrinkable.OutlineTarget != ecs.InvalidEntity {
		return shrinkable.OutlineTarget
	}
	return target
}

func (s *LaserSystem) runtimeFor(id ecs.EntityID, emitter *components.LaserEmitterComponent) *emitterRuntime {
	if rt, ok := s.runtimes[id]; ok {
		return rt
	}

	rt := &emitterRuntime{
		shrink: laser.NewShrinkState(emitter.OpenThreshold),
	}
	for h := range s.opened {
		rt.shrink.MarkOpened(h)
	}
	s.runtimes[id] = rt
	return rt
}

// pruneRuntimes 丢弃已销毁发射器的状态
func (s *LaserSystem) pruneRuntimes() {
	for id := range s.runtimes {
		if s.entityManager.Exists(id) && ecs.HasComponent[*components.LaserEmitterComponent](s.entityManager, id) {
			continue
		}
		delete(s.runtimes, id)
	}
}

// setOutline 实现 laser.OutlineSink
func (s *LaserSystem) setOutline(h laser.Handle, enabled bool) {
	if !s.entityManager.Exists(h) {
		return
	}
	if enabled {
		ecs.AddComponent(s.entityManager, h, &components.OutlineComponent{})
	} else {
		ecs.RemoveComponent[*components.OutlineComponent](s.entityManager, h)
	}
}

func (s *LaserSystem) publish(ev game.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

// EmitterDirection 发射器在世界空间中的方向
func EmitterDirection(tr *components.TransformComponent, emitter *components.LaserEmitterComponent) utils.Vec3 {
	return emitter.Direction.RotateY(tr.Yaw).Normalize()
}
