package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/decker502/laserroom/pkg/utils"
)

// Vec3 YAML 中的三维向量，写作 [x, y, z]
type Vec3 [3]float64

// ToVec3 转换为运行时向量
func (v Vec3) ToVec3() utils.Vec3 {
	return utils.NewVec3(v[0], v[1], v[2])
}

func (v Vec3) isFinite() bool {
	return v.ToVec3().IsFinite()
}

// LevelConfig 房间布局配置
//
// 配置文件位置: data/levels/<id>.yaml
type LevelConfig struct {
	// ID 房间标识，进度按它保存
	ID string `yaml:"id"`

	// Name 显示名称
	Name string `yaml:"name"`

	// InventorySize 背包容量
	InventorySize int `yaml:"inventorySize"`

	Player      PlayerConfig       `yaml:"player"`
	Emitters    []EmitterConfig    `yaml:"emitters"`
	Mirrors     []MirrorConfig     `yaml:"mirrors"`
	Walls       []WallConfig       `yaml:"walls"`
	Shrinkables []ShrinkableConfig `yaml:"shrinkables"`
	Doors       []DoorConfig       `yaml:"doors"`
	Keys        []KeyConfig        `yaml:"keys"`
}

// PlayerConfig 玩家初始状态
type PlayerConfig struct {
	Position      Vec3    `yaml:"position"`
	Yaw           float64 `yaml:"yaw"`
	InteractRange float64 `yaml:"interactRange"`
}

// PickupConfig 可拾取设置，为空表示不可拾取
type PickupConfig struct {
	Name  string `yaml:"name"`
	Rigid bool   `yaml:"rigid"`
}

// EmitterConfig 激光发射器
type EmitterConfig struct {
	ID                 string        `yaml:"id"`
	Position           Vec3          `yaml:"position"`
	Yaw                float64       `yaml:"yaw"`
	Direction          Vec3          `yaml:"direction"`
	MaxDistance        float64       `yaml:"maxDistance"`
	MaxSteps           int           `yaml:"maxSteps"`
	DecayRatePerSecond Vec3          `yaml:"decayRatePerSecond"`
	OpenThreshold      float64       `yaml:"openThreshold"`
	SoundInterval      float64       `yaml:"soundInterval"`
	Pickup             *PickupConfig `yaml:"pickup"`
}

// MirrorConfig 镜子
type MirrorConfig struct {
	ID          string        `yaml:"id"`
	Position    Vec3          `yaml:"position"`
	Yaw         float64       `yaml:"yaw"`
	HalfExtents Vec3          `yaml:"halfExtents"`
	Sensitivity float64       `yaml:"sensitivity"`
	Pivot       Vec3          `yaml:"pivot"`
	Pickup      *PickupConfig `yaml:"pickup"`
}

// WallConfig 不透明的墙
type WallConfig struct {
	Position    Vec3    `yaml:"position"`
	Yaw         float64 `yaml:"yaw"`
	HalfExtents Vec3    `yaml:"halfExtents"`
}

// ShrinkableConfig 可被激光缩小的物体
type ShrinkableConfig struct {
	ID           string        `yaml:"id"`
	Shape        string        `yaml:"shape"` // "box"（默认）或 "sphere"
	Position     Vec3          `yaml:"position"`
	Yaw          float64       `yaml:"yaw"`
	HalfExtents  Vec3          `yaml:"halfExtents"`
	Radius       float64       `yaml:"radius"`
	Scale        Vec3          `yaml:"scale"`
	MinimumScale Vec3          `yaml:"minimumScale"`
	Pickup       *PickupConfig `yaml:"pickup"`
}

// DoorConfig 门（也是可缩小目标）
type DoorConfig struct {
	ID           string   `yaml:"id"`
	Position     Vec3     `yaml:"position"`
	Yaw          float64  `yaml:"yaw"`
	HalfExtents  Vec3     `yaml:"halfExtents"`
	MinimumScale Vec3     `yaml:"minimumScale"`
	ClosedText   []string `yaml:"closedText"`
	OpenText     []string `yaml:"openText"`
	// Colliders 额外的碰撞体（位置相对门），光束命中它们等同命中门
	Colliders []WallConfig `yaml:"colliders"`
}

// KeyConfig 钥匙
type KeyConfig struct {
	ID        string `yaml:"id"`
	DoorID    string `yaml:"doorId"`
	Position  Vec3   `yaml:"position"`
	SingleUse bool   `yaml:"singleUse"`
}

// LoadLevelConfig 从文件加载房间配置
func LoadLevelConfig(path string) (*LevelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level config: %w", err)
	}
	return ParseLevelConfig(data)
}

// LoadLevelConfigFS 从文件系统（通常是嵌入的 data 目录）加载房间配置
func LoadLevelConfigFS(fsys fs.FS, path string) (*LevelConfig, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level config: %w", err)
	}
	return ParseLevelConfig(data)
}

// ParseLevelConfig 解析并验证房间配置，缺省字段填入默认值
func ParseLevelConfig(data []byte) (*LevelConfig, error) {
	var cfg LevelConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse level config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid level config: %w", err)
	}
	return &cfg, nil
}

func (c *LevelConfig) applyDefaults() {
	if c.InventorySize == 0 {
		c.InventorySize = 3
	}
	if c.Player.InteractRange == 0 {
		c.Player.InteractRange = 20
	}
	for i := range c.Emitters {
		e := &c.Emitters[i]
		if e.Direction == (Vec3{}) {
			e.Direction = Vec3{0, 0, 1}
		}
		if e.DecayRatePerSecond == (Vec3{}) {
			e.DecayRatePerSecond = Vec3{0.9, 0.9, 0.9}
		}
		if e.SoundInterval == 0 {
			e.SoundInterval = 0.5
		}
	}
	for i := range c.Mirrors {
		if c.Mirrors[i].Sensitivity == 0 {
			c.Mirrors[i].Sensitivity = 1
		}
	}
	for i := range c.Shrinkables {
		if c.Shrinkables[i].Scale == (Vec3{}) {
			c.Shrinkables[i].Scale = Vec3{1, 1, 1}
		}
		if c.Shrinkables[i].Shape == "" {
			c.Shrinkables[i].Shape = "box"
		}
	}
}

// Validate 验证配置
func (c *LevelConfig) Validate() error {
	if c.ID == "" {
		return errors.New("level id is required")
	}
	if c.InventorySize < 1 {
		return fmt.Errorf("inventorySize must be positive, got %d", c.InventorySize)
	}
	if c.Player.InteractRange < 0 || !c.Player.Position.isFinite() {
		return errors.New("player: invalid position or interactRange")
	}

	for i, e := range c.Emitters {
		if !e.Position.isFinite() || !e.Direction.isFinite() || e.Direction.ToVec3().LengthSquared() == 0 {
			return fmt.Errorf("emitter[%d] %q: invalid position or direction", i, e.ID)
		}
		if e.MaxDistance < 0 || math.IsNaN(e.MaxDistance) || math.IsInf(e.MaxDistance, 0) {
			return fmt.Errorf("emitter[%d] %q: invalid maxDistance %v", i, e.ID, e.MaxDistance)
		}
		for axis, rate := range e.DecayRatePerSecond {
			if rate < 0 || rate > 1 || math.IsNaN(rate) {
				return fmt.Errorf("emitter[%d] %q: decayRatePerSecond[%d]=%v out of [0,1]", i, e.ID, axis, rate)
			}
		}
		if e.OpenThreshold < 0 || e.OpenThreshold >= 1 {
			return fmt.Errorf("emitter[%d] %q: openThreshold %v out of [0,1)", i, e.ID, e.OpenThreshold)
		}
	}

	for i, m := range c.Mirrors {
		if err := validateBox(m.Position, m.HalfExtents); err != nil {
			return fmt.Errorf("mirror[%d] %q: %w", i, m.ID, err)
		}
	}
	for i, w := range c.Walls {
		if err := validateBox(w.Position, w.HalfExtents); err != nil {
			return fmt.Errorf("wall[%d]: %w", i, err)
		}
	}

	for i, s := range c.Shrinkables {
		switch s.Shape {
		case "box":
			if err := validateBox(s.Position, s.HalfExtents); err != nil {
				return fmt.Errorf("shrinkable[%d] %q: %w", i, s.ID, err)
			}
		case "sphere":
			if s.Radius <= 0 {
				return fmt.Errorf("shrinkable[%d] %q: radius must be positive", i, s.ID)
			}
		default:
			return fmt.Errorf("shrinkable[%d] %q: unknown shape %q", i, s.ID, s.Shape)
		}
		if err := validateFloor(s.Scale, s.MinimumScale); err != nil {
			return fmt.Errorf("shrinkable[%d] %q: %w", i, s.ID, err)
		}
	}

	doorIDs := make(map[string]bool, len(c.Doors))
	for i, d := range c.Doors {
		if d.ID == "" {
			return fmt.Errorf("door[%d]: id is required", i)
		}
		if doorIDs[d.ID] {
			return fmt.Errorf("door[%d]: duplicate id %q", i, d.ID)
		}
		doorIDs[d.ID] = true
		if err := validateBox(d.Position, d.HalfExtents); err != nil {
			return fmt.Errorf("door %q: %w", d.ID, err)
		}
		if err := validateFloor(Vec3{1, 1, 1}, d.MinimumScale); err != nil {
			return fmt.Errorf("door %q: %w", d.ID, err)
		}
		for j, col := range d.Colliders {
			if err := validateBox(col.Position, col.HalfExtents); err != nil {
				return fmt.Errorf("door %q collider[%d]: %w", d.ID, j, err)
			}
		}
	}

	for i, k := range c.Keys {
		if !doorIDs[k.DoorID] {
			return fmt.Errorf("key[%d] %q: unknown door %q", i, k.ID, k.DoorID)
		}
	}
	return nil
}

func validateBox(position, halfExtents Vec3) error {
	if !position.isFinite() {
		return errors.New("position must be finite")
	}
	for axis, h := range halfExtents {
		if h <= 0 || math.IsInf(h, 0) || math.IsNaN(h) {
			return fmt.Errorf("halfExtents[%d] must be positive, got %v", axis, h)
		}
	}
	return nil
}

// validateFloor 缩放下限必须非负且不大于初始缩放
func validateFloor(scale, minimum Vec3) error {
	for axis := range minimum {
		if minimum[axis] < 0 || math.IsNaN(minimum[axis]) {
			return fmt.Errorf("minimumScale[%d] must be non-negative", axis)
		}
		if minimum[axis] > scale[axis] {
			return fmt.Errorf("minimumScale[%d]=%v exceeds scale %v", axis, minimum[axis], scale[axis])
		}
	}
	return nil
}
