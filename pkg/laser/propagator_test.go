package laser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/laserroom/pkg/utils"
)

// testPlane 无限大平面，用于构造简单场景
type testPlane struct {
	point  utils.Vec3
	normal utils.Vec3
	hit    HitRecord
}

// testScene 按最近距离返回平面命中，并记录查询次数
type testScene struct {
	planes []testPlane
	casts  int
}

func (s *testScene) add(point, normal utils.Vec3, hit HitRecord) {
	s.planes = append(s.planes, testPlane{point: point, normal: normal.Normalize(), hit: hit})
}

func (s *testScene) Cast(ray Ray, maxDistance float64) (HitRecord, bool) {
	s.casts++
	const eps = 1e-6

	best := HitRecord{}
	bestT := math.Inf(1)
	for _, p := range s.planes {
		denom := ray.Direction.Dot(p.normal)
		if math.Abs(denom) < 1e-12 {
			continue
		}
		tt := p.point.Subtract(ray.Origin).Dot(p.normal) / denom
		if tt <= eps || tt > maxDistance || tt >= bestT {
			continue
		}
		bestT = tt
		best = p.hit
		best.Point = ray.At(tt)
		best.Normal = p.normal
		best.Distance = tt
	}
	return best, !math.IsInf(bestT, 1)
}

func TestPropagateEmptyScene(t *testing.T) {
	directions := []utils.Vec3{
		utils.NewVec3(1, 0, 0),
		utils.NewVec3(0, 0, -1),
		utils.NewVec3(1, 1, 1),
		utils.NewVec3(-0.3, 0.2, 5),
	}

	for _, dir := range directions {
		scene := &testScene{}
		p := NewPropagator(scene)
		origin := utils.NewVec3(2, 1, -3)

		res, err := p.Propagate(Ray{Origin: origin, Direction: dir}, Options{MaxDistance: 25})
		require.NoError(t, err)

		require.Len(t, res.Points, 2, "dir=%v", dir)
		assert.Equal(t, origin, res.Points[0])
		assert.InDelta(t, 25.0, res.Length(), 1e-9, "dir=%v", dir)
		assert.True(t, res.Last().ApproxEqual(origin.Add(dir.Normalize().Multiply(25)), 1e-9))
		assert.Equal(t, None, res.Target)
		assert.Equal(t, TerminationOpen, res.Termination)
		assert.Equal(t, 0, res.Reflections)
	}
}

func TestPropagateMirrorsFacingEachOther(t *testing.T) {
	scene := &testScene{}
	scene.add(utils.NewVec3(0, 0, 0), utils.NewVec3(1, 0, 0), HitRecord{Kind: KindReflective, Owner: 1})
	scene.add(utils.NewVec3(10, 0, 0), utils.NewVec3(-1, 0, 0), HitRecord{Kind: KindReflective, Owner: 2})

	p := NewPropagator(scene)
	res, err := p.Propagate(Ray{Origin: utils.NewVec3(5, 0, 0), Direction: utils.NewVec3(1, 0, 0)}, Options{})
	require.NoError(t, err)

	assert.Equal(t, TerminationCycle, res.Termination)
	assert.Equal(t, 2, res.Reflections, "visited set counts distinct reflectors")
	// 起点 -> B -> A -> B(再次命中，结束)
	require.Len(t, res.Points, 4)
	assert.InDelta(t, 10.0, res.Points[1].X, 1e-9)
	assert.InDelta(t, 0.0, res.Points[2].X, 1e-9)
	assert.InDelta(t, 10.0, res.Points[3].X, 1e-9)
	assert.Equal(t, 3, scene.casts)
}

func TestPropagateReflectionThenOpen(t *testing.T) {
	scene := &testScene{}
	// 45° 镜子把 +X 方向的光束转向 +Z
	scene.add(utils.NewVec3(5, 0, 0), utils.NewVec3(-1, 0, 1), HitRecord{Kind: KindReflective, Owner: 7})

	p := NewPropagator(scene)
	res, err := p.Propagate(Ray{Origin: utils.Vec3{}, Direction: utils.NewVec3(1, 0, 0)}, Options{MaxDistance: 50})
	require.NoError(t, err)

	assert.Equal(t, TerminationOpen, res.Termination)
	require.Len(t, res.Points, 3)
	assert.True(t, res.Points[1].ApproxEqual(utils.NewVec3(5, 0, 0), 1e-9))
	// 最后一段从镜面延伸 maxDistance，保证光束可见
	assert.True(t, res.Points[2].ApproxEqual(utils.NewVec3(5, 0, 50), 1e-9), "got %v", res.Points[2])
	assert.Equal(t, 1, res.Reflections)
}

func TestPropagateShrinkableAbsorbs(t *testing.T) {
	scene := &testScene{}
	// 碰撞体 30 映射到逻辑目标 31
	scene.add(utils.NewVec3(8, 0, 0), utils.NewVec3(-1, 0, 0), HitRecord{Kind: KindShrinkable, Owner: 30, Target: 31})
	scene.add(utils.NewVec3(12, 0, 0), utils.NewVec3(-1, 0, 0), HitRecord{Kind: KindOpaque, Owner: 40})

	p := NewPropagator(scene)
	res, err := p.Propagate(Ray{Origin: utils.Vec3{}, Direction: utils.NewVec3(1, 0, 0)}, Options{})
	require.NoError(t, err)

	assert.Equal(t, TerminationAbsorbed, res.Termination)
	assert.Equal(t, Handle(31), res.Target)
	assert.Equal(t, Handle(30), res.Collider)
	require.Len(t, res.Points, 2)
	assert.InDelta(t, 8.0, res.Last().X, 1e-9)
}

func TestPropagateOpaqueStops(t *testing.T) {
	for _, kind := range []TargetKind{KindOpaque, KindNone} {
		scene := &testScene{}
		scene.add(utils.NewVec3(3, 0, 0), utils.NewVec3(-1, 0, 0), HitRecord{Kind: kind, Owner: 9})

		res, err := NewPropagator(scene).Propagate(Ray{Direction: utils.NewVec3(1, 0, 0)}, Options{})
		require.NoError(t, err)

		assert.Equal(t, TerminationOpaque, res.Termination, kind.String())
		assert.Equal(t, None, res.Target)
		assert.Len(t, res.Points, 2)
	}
}

func TestPropagateHeldItemTriggerIsTransparent(t *testing.T) {
	const player Handle = 100
	scene := &testScene{}
	// 玩家手中物品的触发体，不是交互目标
	scene.add(utils.NewVec3(2, 0, 0), utils.NewVec3(-1, 0, 0), HitRecord{IsTrigger: true, Owner: 50, Holder: player})
	scene.add(utils.NewVec3(4, 0, 0), utils.NewVec3(-1, 0, 1), HitRecord{Kind: KindReflective, Owner: 51})

	res, err := NewPropagator(scene).Propagate(Ray{Direction: utils.NewVec3(1, 0, 0)}, Options{MaxDistance: 10})
	require.NoError(t, err)

	// 触发体既不产生顶点，也不计入访问集合
	require.Len(t, res.Points, 3)
	assert.InDelta(t, 4.0, res.Points[1].X, 1e-9)
	assert.Equal(t, 1, res.Reflections)
	assert.Equal(t, TerminationOpen, res.Termination)
}

func TestPropagateTriggerRules(t *testing.T) {
	const holder Handle = 100

	tests := []struct {
		name        string
		hit         HitRecord
		opts        Options
		transparent bool
	}{
		{"普通触发体", HitRecord{IsTrigger: true, Owner: 5}, Options{}, true},
		{"非触发体", HitRecord{Owner: 5}, Options{}, false},
		{"光束起点所在持有者的触发体", HitRecord{IsTrigger: true, Owner: 5, Holder: holder}, Options{OriginHolder: holder}, false},
		{"其他持有者的触发体", HitRecord{IsTrigger: true, Owner: 5, Holder: holder}, Options{OriginHolder: 101}, true},
		{"交互目标本身", HitRecord{IsTrigger: true, Owner: 5}, Options{InteractionTarget: 5}, false},
		{"交互目标的碰撞体", HitRecord{IsTrigger: true, Owner: 6, Target: 5}, Options{InteractionTarget: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transparent, isTransparent(tt.hit, tt.opts))
		})
	}
}

func TestPropagateOpenedDoorTriggerPassesBeam(t *testing.T) {
	scene := &testScene{}
	// 已打开的门：碰撞体变为触发体
	scene.add(utils.NewVec3(3, 0, 0), utils.NewVec3(-1, 0, 0), HitRecord{IsTrigger: true, Kind: KindShrinkable, Owner: 20, Target: 21})
	scene.add(utils.NewVec3(9, 0, 0), utils.NewVec3(-1, 0, 0), HitRecord{Kind: KindOpaque, Owner: 22})

	res, err := NewPropagator(scene).Propagate(Ray{Direction: utils.NewVec3(1, 0, 0)}, Options{})
	require.NoError(t, err)

	assert.Equal(t, TerminationOpaque, res.Termination)
	assert.Equal(t, None, res.Target)
	assert.InDelta(t, 9.0, res.Last().X, 1e-9)
}

func TestPropagateStepLimit(t *testing.T) {
	// 每次查询都命中一面新镜子，访问集合无法阻止
	next := Handle(0)
	caster := RayCasterFunc(func(ray Ray, maxDistance float64) (HitRecord, bool) {
		next++
		return HitRecord{
			Point:  ray.At(1),
			Normal: ray.Direction.Negate(),
			Kind:   KindReflective,
			Owner:  next,
		}, true
	})

	res, err := NewPropagator(caster).Propagate(Ray{Direction: utils.NewVec3(0, 0, 1)}, Options{MaxSteps: 5})
	require.NoError(t, err)

	assert.Equal(t, TerminationStepLimit, res.Termination)
	assert.Equal(t, 5, res.Reflections)
	// 起点 + 5 个反射点 + 沿最后方向的远点
	require.Len(t, res.Points, 7)
	assert.True(t, res.Last().ApproxEqual(utils.NewVec3(0, 0, 1-DefaultMaxDistance), 1e-9), "last=%v", res.Last())
}

func TestPropagateInvalidInput(t *testing.T) {
	p := NewPropagator(&testScene{})

	tests := []struct {
		name string
		ray  Ray
		opts Options
	}{
		{"零长度方向", Ray{Direction: utils.Vec3{}}, Options{}},
		{"NaN 方向", Ray{Direction: utils.NewVec3(math.NaN(), 0, 0)}, Options{}},
		{"Inf 起点", Ray{Origin: utils.NewVec3(math.Inf(1), 0, 0), Direction: utils.NewVec3(1, 0, 0)}, Options{}},
		{"负的最大距离", Ray{Direction: utils.NewVec3(1, 0, 0)}, Options{MaxDistance: -1}},
		{"NaN 最大距离", Ray{Direction: utils.NewVec3(1, 0, 0)}, Options{MaxDistance: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Propagate(tt.ray, tt.opts)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestPropagateVisitedSetResetsEachPass(t *testing.T) {
	scene := &testScene{}
	scene.add(utils.NewVec3(5, 0, 0), utils.NewVec3(-1, 0, 1), HitRecord{Kind: KindReflective, Owner: 7})
	p := NewPropagator(scene)

	for i := 0; i < 3; i++ {
		res, err := p.Propagate(Ray{Direction: utils.NewVec3(1, 0, 0)}, Options{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Reflections)
		assert.Equal(t, TerminationOpen, res.Termination, "pass %d", i)
	}
}
