package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

const minimalLevel = `
id: test_room
emitters:
  - id: e
    position: [0, 0, 0]
shrinkables:
  - id: crate
    position: [5, 0, 0]
    halfExtents: [1, 1, 1]
`

func TestLoadShippedLevel(t *testing.T) {
	cfg, err := LoadLevelConfig(filepath.Join("..", "..", "data", "levels", "laser_room.yaml"))
	if err != nil {
		t.Fatalf("LoadLevelConfig: %v", err)
	}

	if cfg.ID != "laser_room" {
		t.Errorf("ID = %q", cfg.ID)
	}
	if len(cfg.Emitters) == 0 || len(cfg.Mirrors) == 0 || len(cfg.Doors) == 0 {
		t.Errorf("shipped room should have emitters, mirrors and doors: %+v", cfg)
	}
	for _, k := range cfg.Keys {
		found := false
		for _, d := range cfg.Doors {
			found = found || d.ID == k.DoorID
		}
		if !found {
			t.Errorf("key %q refers to missing door %q", k.ID, k.DoorID)
		}
	}
}

func TestParseLevelConfigDefaults(t *testing.T) {
	cfg, err := ParseLevelConfig([]byte(minimalLevel))
	if err != nil {
		t.Fatalf("ParseLevelConfig: %v", err)
	}

	if cfg.InventorySize != 3 {
		t.Errorf("InventorySize = %d, want 3", cfg.InventorySize)
	}
	if cfg.Player.InteractRange != 20 {
		t.Errorf("InteractRange = %v, want 20", cfg.Player.InteractRange)
	}

	e := cfg.Emitters[0]
	if e.Direction != (Vec3{0, 0, 1}) {
		t.Errorf("Direction = %v, want [0 0 1]", e.Direction)
	}
	if e.DecayRatePerSecond != (Vec3{0.9, 0.9, 0.9}) {
		t.Errorf("DecayRatePerSecond = %v", e.DecayRatePerSecond)
	}
	if e.SoundInterval != 0.5 {
		t.Errorf("SoundInterval = %v, want 0.5", e.SoundInterval)
	}

	s := cfg.Shrinkables[0]
	if s.Shape != "box" || s.Scale != (Vec3{1, 1, 1}) {
		t.Errorf("shrinkable defaults: shape=%q scale=%v", s.Shape, s.Scale)
	}
	if v := s.Position.ToVec3(); v.X != 5 {
		t.Errorf("Position.ToVec3 = %v", v)
	}
}

func TestParseLevelConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"缺少 ID", "inventorySize: 2\n", "level id is required"},
		{"YAML 语法错误", "id: [\n", "failed to parse"},
		{"负的背包容量", "id: r\ninventorySize: -1\n", "inventorySize"},
		{"非有限坐标", "id: r\nemitters:\n  - id: e\n    position: [.inf, 0, 0]\n", "invalid position"},
		{"负的最大距离", "id: r\nemitters:\n  - id: e\n    maxDistance: -1\n", "maxDistance"},
		{"衰减超出范围", "id: r\nemitters:\n  - id: e\n    decayRatePerSecond: [1.5, 1, 1]\n", "decayRatePerSecond"},
		{"阈值超出范围", "id: r\nemitters:\n  - id: e\n    openThreshold: 1\n", "openThreshold"},
		{"盒子尺寸为零", "id: r\nwalls:\n  - position: [0, 0, 0]\n    halfExtents: [0, 1, 1]\n", "halfExtents"},
		{"未知形状", "id: r\nshrinkables:\n  - id: s\n    shape: cone\n", "unknown shape"},
		{"球体半径为零", "id: r\nshrinkables:\n  - id: s\n    shape: sphere\n", "radius"},
		{"下限大于缩放", "id: r\nshrinkables:\n  - id: s\n    shape: sphere\n    radius: 1\n    minimumScale: [2, 0, 0]\n", "minimumScale"},
		{"重复的门", "id: r\ndoors:\n  - id: d\n    halfExtents: [1, 1, 1]\n  - id: d\n    halfExtents: [1, 1, 1]\n", "duplicate"},
		{"钥匙指向不存在的门", "id: r\nkeys:\n  - id: k\n    doorId: nowhere\n", "unknown door"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLevelConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadLevelConfigMissingFile(t *testing.T) {
	_, err := LoadLevelConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoadLevelConfigFS(t *testing.T) {
	fsys := fstest.MapFS{"data/levels/test_room.yaml": {Data: []byte(minimalLevel)}}

	cfg, err := LoadLevelConfigFS(fsys, "data/levels/test_room.yaml")
	if err != nil {
		t.Fatalf("LoadLevelConfigFS: %v", err)
	}
	if cfg.ID != "test_room" {
		t.Errorf("ID = %q", cfg.ID)
	}

	if _, err := LoadLevelConfigFS(fsys, "data/levels/other.yaml"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
