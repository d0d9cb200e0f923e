package entities

import (
	"fmt"
	"log"

	"github.com/decker502/laserroom/pkg/components"
	"github.com/decker502/laserroom/pkg/config"
	"github.com/decker502/laserroom/pkg/ecs"
	"github.com/decker502/laserroom/pkg/utils"
)

// keyHalfExtent 钥匙碰撞体半尺寸
const keyHalfExtent = 0.3

// Room 生成后的房间实体索引
type Room struct {
	ID          string
	Player      ecs.EntityID
	HUD         ecs.EntityID
	Emitters    map[string]ecs.EntityID
	Mirrors     map[string]ecs.EntityID
	Shrinkables map[string]ecs.EntityID
	Doors       map[string]ecs.EntityID
	Keys        map[string]ecs.EntityID
	Walls       []ecs.EntityID
}

// SpawnRoom 按配置生成整个房间
func SpawnRoom(em *ecs.EntityManager, cfg *config.LevelConfig) (*Room, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("spawn room %q: %w", cfg.ID, err)
	}

	room := &Room{
		ID:          cfg.ID,
		Emitters:    make(map[string]ecs.EntityID),
		Mirrors:     make(map[string]ecs.EntityID),
		Shrinkables: make(map[string]ecs.EntityID),
		Doors:       make(map[string]ecs.EntityID),
		Keys:        make(map[string]ecs.EntityID),
	}

	room.Player = NewPlayerEntity(em, cfg.Player)
	room.HUD = NewHUDEntity(em)

	for _, w := range cfg.Walls {
		room.Walls = append(room.Walls, NewWallEntity(em, w))
	}
	for _, e := range cfg.Emitters {
		room.Emitters[e.ID] = NewEmitterEntity(em, e)
	}
	for _, m := range cfg.Mirrors {
		room.Mirrors[m.ID] = NewMirrorEntity(em, m)
	}
	for _, s := range cfg.Shrinkables {
		room.Shrinkables[s.ID] = NewShrinkableEntity(em, s)
	}
	for _, d := range cfg.Doors {
		room.Doors[d.ID] = NewDoorEntity(em, d)
	}
	for _, k := range cfg.Keys {
		room.Keys[k.ID] = NewKeyEntity(em, k)
	}

	log.Printf("[RoomFactory] spawned room %q: %d emitters, %d mirrors, %d shrinkables, %d doors",
		cfg.ID, len(room.Emitters), len(room.Mirrors), len(room.Shrinkables), len(room.Doors))
	return room, nil
}

// NewPlayerEntity 创建玩家
func NewPlayerEntity(em *ecs.EntityManager, cfg config.PlayerConfig) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewTransform(cfg.Position.ToVec3(), cfg.Yaw))
	em.AddComponent(id, &components.PlayerComponent{
		Yaw:           cfg.Yaw,
		InteractRange: cfg.InteractRange,
	})
	return id
}

// NewHUDEntity 创建 HUD 实体（承载背包已满的闪烁效果）
func NewHUDEntity(em *ecs.EntityManager) ecs.EntityID {
	return em.CreateEntity()
}

// NewWallEntity 创建不透明的墙
func NewWallEntity(em *ecs.EntityManager, cfg config.WallConfig) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewTransform(cfg.Position.ToVec3(), cfg.Yaw))
	em.AddComponent(id, &components.ColliderComponent{
		Shape:       components.ShapeBox,
		HalfExtents: cfg.HalfExtents.ToVec3(),
	})
	return id
}

// NewEmitterEntity 创建激光发射器
//
// 发射器自身没有碰撞体，光束从它的位置出发不会命中自己。
func NewEmitterEntity(em *ecs.EntityManager, cfg config.EmitterConfig) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewTransform(cfg.Position.ToVec3(), cfg.Yaw))
	em.AddComponent(id, &components.LaserEmitterComponent{
		Direction:          cfg.Direction.ToVec3(),
		MaxDistance:        cfg.MaxDistance,
		MaxSteps:           cfg.MaxSteps,
		DecayRatePerSecond: cfg.DecayRatePerSecond.ToVec3(),
		OpenThreshold:      cfg.OpenThreshold,
		SoundInterval:      cfg.SoundInterval,
	})
	addPickup(em, id, cfg.Pickup)
	return id
}

// NewMirrorEntity 创建镜子，镜面是盒子的局部 ±Z 面
func NewMirrorEntity(em *ecs.EntityManager, cfg config.MirrorConfig) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewTransform(cfg.Position.ToVec3(), cfg.Yaw))
	em.AddComponent(id, &components.ColliderComponent{
		Shape:       components.ShapeBox,
		HalfExtents: cfg.HalfExtents.ToVec3(),
	})
	em.AddComponent(id, &components.ReflectiveComponent{})
	em.AddComponent(id, &components.MirrorControlComponent{
		Sensitivity: cfg.Sensitivity,
		Pivot:       cfg.Pivot.ToVec3(),
	})
	addPickup(em, id, cfg.Pickup)
	return id
}

// NewShrinkableEntity 创建可缩小物体，生成时捕获原始缩放
func NewShrinkableEntity(em *ecs.EntityManager, cfg config.ShrinkableConfig) ecs.EntityID {
	id := em.CreateEntity()

	scale := cfg.Scale.ToVec3()
	minimum := cfg.MinimumScale.ToVec3()
	tr := components.NewTransform(cfg.Position.ToVec3(), cfg.Yaw)
	tr.Scale = scale.Max(minimum)
	em.AddComponent(id, tr)

	collider := &components.ColliderComponent{
		Shape:       components.ShapeBox,
		HalfExtents: cfg.HalfExtents.ToVec3(),
	}
	if cfg.Shape == "sphere" {
		collider.Shape = components.ShapeSphere
		collider.Radius = cfg.Radius
	}
	em.AddComponent(id, collider)
	em.AddComponent(id, &components.ShrinkableComponent{
		OriginalScale: scale,
		MinimumScale:  minimum,
	})
	addPickup(em, id, cfg.Pickup)
	return id
}

// NewDoorEntity 创建门以及它的附加碰撞体
func NewDoorEntity(em *ecs.EntityManager, cfg config.DoorConfig) ecs.EntityID {
	id := em.CreateEntity()
	position := cfg.Position.ToVec3()
	em.AddComponent(id, components.NewTransform(position, cfg.Yaw))
	em.AddComponent(id, &components.ColliderComponent{
		Shape:       components.ShapeBox,
		HalfExtents: cfg.HalfExtents.ToVec3(),
	})
	em.AddComponent(id, &components.ShrinkableComponent{
		OriginalScale: utils.NewVec3(1, 1, 1),
		MinimumScale:  cfg.MinimumScale.ToVec3(),
	})
	em.AddComponent(id, &components.DoorComponent{
		ID:         cfg.ID,
		ClosedText: cfg.ClosedText,
		OpenText:   cfg.OpenText,
		HoverText:  cfg.ClosedText,
	})

	for _, c := range cfg.Colliders {
		colliderID := em.CreateEntity()
		offset := c.Position.ToVec3().RotateY(cfg.Yaw)
		em.AddComponent(colliderID, components.NewTransform(position.Add(offset), cfg.Yaw+c.Yaw))
		em.AddComponent(colliderID, &components.ColliderComponent{
			Shape:       components.ShapeBox,
			HalfExtents: c.HalfExtents.ToVec3(),
		})
		em.AddComponent(colliderID, &components.ShrinkableColliderComponent{ColliderFor: id})
	}
	return id
}

// NewKeyEntity 创建钥匙，碰撞体是触发体所以不会挡住光束
func NewKeyEntity(em *ecs.EntityManager, cfg config.KeyConfig) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, components.NewTransform(cfg.Position.ToVec3(), 0))
	em.AddComponent(id, &components.ColliderComponent{
		Shape:       components.ShapeBox,
		HalfExtents: utils.NewVec3(keyHalfExtent, keyHalfExtent, keyHalfExtent),
		IsTrigger:   true,
	})
	em.AddComponent(id, &components.KeyComponent{
		DoorID:    cfg.DoorID,
		SingleUse: cfg.SingleUse,
	})
	em.AddComponent(id, &components.PickupComponent{Name: "Key (" + cfg.DoorID + ")", Rigid: true})
	return id
}

func addPickup(em *ecs.EntityManager, id ecs.EntityID, cfg *config.PickupConfig) {
	if cfg == nil {
		return
	}
	em.AddComponent(id, &components.PickupComponent{
		Name:  cfg.Name,
		Rigid: cfg.Rigid,
	})
}
