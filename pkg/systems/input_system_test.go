package systems

import (
	"math"
	"testing"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/game"
	"github.com/decker502/laserroom/pkg/utils"
)

type inputFixture struct {
	em        *ecs.EntityManager
	gs        *game.GameState
	player    ecs.EntityID
	inventory *InventorySystem
	doors     *DoorSystem
	system    *InputSystem
}

func newInputFixture(t *testing.T) *inputFixture {
	t.Helper()
	f := &inputFixture{em: ecs.NewEntityManager(), gs: game.NewGameState(nil)}
	bus := game.NewEventBus()
	inv := game.NewInventory(3, bus)
	f.player = addPlayer(f.em, utils.Vec3{})
	f.inventory = NewInventorySystem(f.em, f.gs, bus, inv, f.player, f.em.CreateEntity())
	f.doors = NewDoorSystem(f.em, f.gs, bus, inv, "room")
	f.system = NewInputSystem(f.em, f.gs, f.inventory, f.doors, f.player)
	f.system.SetActionSource(func() PlayerActions { return PlayerActions{} })
	return f
}

func TestInputSystemMoveAndTurn(t *testing.T) {
	f := newInputFixture(t)

	f.system.Apply(PlayerActions{Move: utils.NewVec3(0, 0, 1)}, 1)
	tr := mustTransform(t, f.em, f.player)
	if !tr.Position.ApproxEqual(utils.NewVec3(0, 0, DefaultMoveSpeed), 1e-9) {
		t.Errorf("forward move: position = %v", tr.Position)
	}

	turn := (math.Pi / 2) / DefaultTurnSpeed
	f.system.Apply(PlayerActions{Turn: 1}, turn)
	player, _ := ecs.GetComponent[*components.PlayerComponent](f.em, f.player)
	if !approxEqual(tr.Yaw, math.Pi/2) || player.Yaw != tr.Yaw {
		t.Errorf("turn: transform yaw=%v player yaw=%v", tr.Yaw, player.Yaw)
	}

	// 面向 +X 时前进沿 +X
	f.system.Apply(PlayerActions{Move: utils.NewVec3(0, 0, 1)}, 1)
	if !tr.Position.ApproxEqual(utils.NewVec3(DefaultMoveSpeed, 0, DefaultMoveSpeed), 1e-9) {
		t.Errorf("move after turn: position = %v", tr.Position)
	}
}

func TestInputSystemPauseBlocksActions(t *testing.T) {
	f := newInputFixture(t)

	f.system.Apply(PlayerActions{TogglePause: true, Move: utils.NewVec3(0, 0, 1)}, 1)
	if !f.gs.IsPaused() {
		t.Fatal("TogglePause should pause")
	}
	if pos := mustTransform(t, f.em, f.player).Position; pos != (utils.Vec3{}) {
		t.Errorf("paused player moved to %v", pos)
	}

	f.system.Apply(PlayerActions{TogglePause: true}, 1)
	if f.gs.IsPaused() {
		t.Error("second TogglePause should resume")
	}
}

func TestInputSystemPickupDropAndDropKeyHeld(t *testing.T) {
	f := newInputFixture(t)
	item := addBox(f.em, utils.NewVec3(0, 0, 2), 0, utils.NewVec3(0.3, 0.3, 0.3))
	f.em.AddComponent(item, &components.PickupComponent{Name: "mirror", Rigid: true})

	f.system.Update(0.016)
	f.system.Apply(PlayerActions{Pickup: true}, 0.016)
	if f.inventory.Active() != item {
		t.Fatalf("pickup action should pick the nearest item")
	}

	f.system.Apply(PlayerActions{DropPressed: true, DropHeld: true}, 0.016)
	if f.inventory.Inventory().Contains(item) {
		t.Error("drop action should drop the active item")
	}
	player, _ := ecs.GetComponent[*components.PlayerComponent](f.em, f.player)
	if !player.DropKeyHeld {
		t.Error("DropKeyHeld should follow the drop key")
	}

	// 手中无物品时放下不报错
	f.system.Apply(PlayerActions{DropPressed: true}, 0.016)
	if player.DropKeyHeld {
		t.Error("DropKeyHeld should clear when released")
	}
}

func TestInputSystemUseKeyOnNearestDoor(t *testing.T) {
	f := newInputFixture(t)
	door := addBox(f.em, utils.NewVec3(0, 0, 3), 0, utils.NewVec3(2, 2, 0.3))
	f.em.AddComponent(door, &components.DoorComponent{ID: "storage", OpenText: []string{"open"}})
	key := addBox(f.em, utils.NewVec3(0, 0, 1), 0, utils.NewVec3(0.3, 0.3, 0.3))
	f.em.AddComponent(key, &components.PickupComponent{Name: "key", Rigid: true})
	f.em.AddComponent(key, &components.KeyComponent{DoorID: "storage", SingleUse: true})

	if err := f.inventory.Pickup(key); err != nil {
		t.Fatalf("Pickup: %v", err)
	}
	f.system.Apply(PlayerActions{UseKey: true}, 0.016)

	doorComp, _ := ecs.GetComponent[*components.DoorComponent](f.em, door)
	if !doorComp.Open {
		t.Error("door should be opened by the held key")
	}
	if f.inventory.Inventory().Contains(key) {
		t.Error("single-use key should be consumed")
	}
}
