package systems

import (
	"math"
	"testing"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/utils"
)

const testEpsilon = 1e-6

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < testEpsilon
}

func addBox(em *ecs.EntityManager, pos utils.Vec3, yaw float64, half utils.Vec3) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewTransform(pos, yaw))
	em.AddComponent(id, &components.ColliderComponent{Shape: components.ShapeBox, HalfExtents: half})
	return id
}

func addShrinkable(em *ecs.EntityManager, pos utils.Vec3, half utils.Vec3, minimum utils.Vec3) ecs.EntityID {
	id := addBox(em, pos, 0, half)
	em.AddComponent(id, &components.ShrinkableComponent{
		OriginalScale: utils.NewVec3(1, 1, 1),
		MinimumScale:  minimum,
	})
	return id
}

func addEmitter(em *ecs.EntityManager, pos, dir utils.Vec3, decay utils.Vec3) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewTransform(pos, 0))
	em.AddComponent(id, &components.LaserEmitterComponent{
		Direction:          dir,
		MaxDistance:        50,
		DecayRatePerSecond: decay,
		SoundInterval:      0.5,
	})
	return id
}

func addPlayer(em *ecs.EntityManager, pos utils.Vec3) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewTransform(pos, 0))
	em.AddComponent(id, &components.PlayerComponent{InteractRange: DefaultInteractRange})
	return id
}

func mustTransform(t *testing.T, em *ecs.EntityManager, id ecs.EntityID) *components.TransformComponent {
	t.Helper()
	tr, ok := ecs.GetComponent[*components.TransformComponent](em, id)
	if !ok {
		t.Fatalf("entity %d has no TransformComponent", id)
	}
	return tr
}

func mustCollider(t *testing.T, em *ecs.EntityManager, id ecs.EntityID) *components.ColliderComponent {
	t.Helper()
	col, ok := ecs.GetComponent[*components.ColliderComponent](em, id)
	if !ok {
		t.Fatalf("entity %d has no ColliderComponent", id)
	}
	return col
}
