package systems

import (
	"errors"
	"testing"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/game"
	"github.com/decker502/laserroom/pkg/utils"
)

type inventoryFixture struct {
	em     *ecs.EntityManager
	bus    *game.EventBus
	system *InventorySystem
	player ecs.EntityID
	hud    ecs.EntityID
}

func newInventoryFixture(t *testing.T, size int) *inventoryFixture {
	t.Helper()
	f := &inventoryFixture{
		em:  ecs.NewEntityManager(),
		bus: game.NewEventBus(),
	}
	f.player = addPlayer(f.em, utils.Vec3{})
	f.hud = f.em.CreateEntity()
	f.system = NewInventorySystem(f.em, game.NewGameState(nil), f.bus, game.NewInventory(size, f.bus), f.player, f.hud)
	return f
}

func (f *inventoryFixture) addItem(pos utils.Vec3, name string, rigid bool) ecs.EntityID {
	id := addBox(f.em, pos, 0, utils.NewVec3(0.3, 0.3, 0.3))
	f.em.AddComponent(id, &components.PickupComponent{Name: name, Rigid: rigid})
	return id
}

func TestInventorySystemPickupActivatesItem(t *testing.T) {
	f := newInventoryFixture(t, 3)
	a := f.addItem(utils.NewVec3(1, 0, 0), "a", true)
	b := f.addItem(utils.NewVec3(2, 0, 0), "b", true)

	for _, id := range []ecs.EntityID{a, b} {
		if err := f.system.Pickup(id); err != nil {
			t.Fatalf("Pickup(%d): %v", id, err)
		}
	}

	if f.system.Active() != b {
		t.Errorf("last picked item should be active, got %d", f.system.Active())
	}
	if held, ok := ecs.GetComponent[*components.HeldByComponent](f.em, a); !ok || held.Holder != f.player {
		t.Error("picked items should be held by the player")
	}

	colA, colB := mustCollider(t, f.em, a), mustCollider(t, f.em, b)
	if !colA.Disabled {
		t.Error("inactive item collider should be disabled")
	}
	if colB.Disabled || !colB.IsTrigger {
		t.Errorf("active item collider should be an enabled trigger: %+v", colB)
	}

	f.system.Update(0.016)
	want := utils.NewVec3(0, 0, DefaultHoldDistance)
	if pos := mustTransform(t, f.em, b).Position; !pos.ApproxEqual(want, 1e-9) {
		t.Errorf("held item at %v, want %v", pos, want)
	}

	f.system.Cycle(1)
	if f.system.Active() != a {
		t.Errorf("Cycle(1) should wrap to the first item, got %d", f.system.Active())
	}
	f.system.Cycle(-1)
	if f.system.Active() != b {
		t.Errorf("Cycle(-1) should go back, got %d", f.system.Active())
	}
}

func TestInventorySystemPickupErrors(t *testing.T) {
	f := newInventoryFixture(t, 1)
	far := f.addItem(utils.NewVec3(DefaultInteractRange+5, 0, 0), "far", true)
	wall := addBox(f.em, utils.NewVec3(1, 0, 0), 0, utils.NewVec3(1, 1, 1))
	first := f.addItem(utils.NewVec3(1, 0, 0), "first", true)
	second := f.addItem(utils.NewVec3(1, 0, 1), "second", true)

	if err := f.system.Pickup(wall); !errors.Is(err, ErrNotPickup) {
		t.Errorf("expected ErrNotPickup, got %v", err)
	}
	if err := f.system.Pickup(far); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}

	full := 0
	f.bus.Subscribe(game.EventInventoryFull, "test", func(game.Event) { full++ })

	if err := f.system.Pickup(first); err != nil {
		t.Fatalf("Pickup(first): %v", err)
	}
	if err := f.system.Pickup(second); !errors.Is(err, game.ErrInventoryFull) {
		t.Fatalf("expected ErrInventoryFull, got %v", err)
	}
	f.bus.Dispatch()

	if full != 1 {
		t.Errorf("EventInventoryFull fired %d times, want 1", full)
	}
	flash, ok := ecs.GetComponent[*components.FlashEffectComponent](f.em, f.hud)
	if !ok || !flash.IsActive {
		t.Error("full inventory should flash the HUD")
	}
	if ecs.HasComponent[*components.HeldByComponent](f.em, second) {
		t.Error("rejected item must not be held")
	}
}

func TestInventorySystemDropRigidMirror(t *testing.T) {
	f := newInventoryFixture(t, 2)
	mirror := f.addItem(utils.NewVec3(1, 0, 0), "mirror", true)
	mustCollider(t, f.em, mirror).IsTrigger = false
	f.em.AddComponent(mirror, &components.MirrorControlComponent{Sensitivity: 1})

	if err := f.system.Pickup(mirror); err != nil {
		t.Fatalf("Pickup: %v", err)
	}
	dropped, err := f.system.Drop()
	if err != nil || dropped != mirror {
		t.Fatalf("Drop = %d, %v", dropped, err)
	}

	if ecs.HasComponent[*components.HeldByComponent](f.em, mirror) {
		t.Error("dropped mirror should not be held")
	}
	col := mustCollider(t, f.em, mirror)
	if col.Disabled || col.IsTrigger {
		t.Errorf("rigid item should be placed solid: %+v", col)
	}
	if pos := mustTransform(t, f.em, mirror).Position; !pos.ApproxEqual(utils.NewVec3(0, 0, DefaultHoldDistance), 1e-9) {
		t.Errorf("mirror placed at %v", pos)
	}
	mc, _ := ecs.GetComponent[*components.MirrorControlComponent](f.em, mirror)
	if !mc.Controllable {
		t.Error("dropped mirror should be controllable")
	}
	if f.system.Active() != ecs.InvalidEntity || f.system.ActiveIndex() != -1 {
		t.Error("empty inventory has no active item")
	}

	if _, err := f.system.Drop(); !errors.Is(err, ErrNothingHeld) {
		t.Errorf("expected ErrNothingHeld, got %v", err)
	}
}

func TestInventorySystemDropSpawnsStandIn(t *testing.T) {
	f := newInventoryFixture(t, 2)
	crate := f.addItem(utils.NewVec3(1, 0, 0), "crate", false)

	if err := f.system.Pickup(crate); err != nil {
		t.Fatalf("Pickup: %v", err)
	}
	if _, err := f.system.Drop(); err != nil {
		t.Fatalf("Drop: %v", err)
	}

	if !mustCollider(t, f.em, crate).Disabled {
		t.Error("item stays disabled until its stand-in settles")
	}
	watchers := ecs.GetEntitiesWith1[*components.StabilityWatchComponent](f.em)
	if len(watchers) != 1 {
		t.Fatalf("expected one stand-in, got %d", len(watchers))
	}
	watch, _ := ecs.GetComponent[*components.StabilityWatchComponent](f.em, watchers[0])
	if watch.Item != crate || watch.State != components.StabilityWaiting {
		t.Errorf("unexpected watch %+v", watch)
	}
	if !ecs.HasComponent[*components.VelocityComponent](f.em, watchers[0]) {
		t.Error("stand-in should be moving")
	}
}

func TestInventorySystemRemovalActivatesNearest(t *testing.T) {
	tests := []struct {
		name       string
		active     int
		remove     int
		wantActive int
	}{
		{"移除激活物品，后面的补上", 1, 1, 1},
		{"移除最后一个激活物品", 2, 2, 1},
		{"移除前面的物品", 2, 0, 1},
		{"移除后面的物品", 0, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInventoryFixture(t, 3)
			items := []ecs.EntityID{
				f.addItem(utils.NewVec3(1, 0, 0), "a", true),
				f.addItem(utils.NewVec3(1, 0, 0), "b", true),
				f.addItem(utils.NewVec3(1, 0, 0), "c", true),
			}
			for _, id := range items {
				if err := f.system.Pickup(id); err != nil {
					t.Fatalf("Pickup: %v", err)
				}
			}
			f.system.Cycle(tt.active - f.system.ActiveIndex())

			f.system.Inventory().Remove(items[tt.remove])

			if got := f.system.ActiveIndex(); got != tt.wantActive {
				t.Fatalf("ActiveIndex = %d, want %d", got, tt.wantActive)
			}
			if col := mustCollider(t, f.em, f.system.Active()); col.Disabled {
				t.Error("new active item should have its collider enabled")
			}
		})
	}
}

func TestInventorySystemNearestPickup(t *testing.T) {
	f := newInventoryFixture(t, 2)
	f.addItem(utils.NewVec3(5, 0, 0), "far", true)
	near := f.addItem(utils.NewVec3(0, 0, 2), "near", true)
	hidden := f.addItem(utils.NewVec3(0, 0, 1), "hidden", true)
	mustCollider(t, f.em, hidden).Disabled = true

	got, ok := f.system.NearestPickup()
	if !ok || got != near {
		t.Fatalf("NearestPickup = %d, %v; want %d", got, ok, near)
	}

	if err := f.system.Pickup(near); err != nil {
		t.Fatalf("Pickup: %v", err)
	}
	if got, _ := f.system.NearestPickup(); got == near {
		t.Error("items in the inventory are not candidates")
	}
}

func TestInventorySystemNearestPickupNeedsLineOfSight(t *testing.T) {
	f := newInventoryFixture(t, 2)
	behindWall := f.addItem(utils.NewVec3(0, 0, 3), "behind", true)
	wall := addBox(f.em, utils.NewVec3(0, 0, 1.5), 0, utils.NewVec3(2, 2, 0.2))
	visible := f.addItem(utils.NewVec3(4, 0, 0), "visible", true)

	got, ok := f.system.NearestPickup()
	if !ok || got != visible {
		t.Fatalf("NearestPickup = %d, %v; want %d (item %d is behind a wall)", got, ok, visible, behindWall)
	}

	// 触发体不遮挡
	mustCollider(t, f.em, wall).IsTrigger = true
	if got, _ := f.system.NearestPickup(); got != behindWall {
		t.Errorf("NearestPickup = %d, want %d once the wall is a trigger", got, behindWall)
	}
}
