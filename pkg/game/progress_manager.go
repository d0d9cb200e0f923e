package game

import (
	"fmt"
	"log"
	"sort"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// ProgressData 谜题进度
type ProgressData struct {
	// OpenedDoors 已被打开的门（按房间分组）
	OpenedDoors map[string][]string `yaml:"openedDoors"`
}

// ProgressManager 谜题进度管理器
//
// 记录每个房间中已经打开的门，重新进入房间时门保持打开，
// 激光也不会再次触发打开信号。
type ProgressManager struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式）
	data         *ProgressData
}

const (
	progressObject   = "progress"
	progressProperty = "rooms"
)

// NewProgressManager 创建进度管理器并尝试加载存档
func NewProgressManager(gdataManager *gdata.Manager) *ProgressManager {
	pm := &ProgressManager{
		gdataManager: gdataManager,
		data:         newProgressData(),
	}
	if err := pm.Load(); err != nil {
		log.Printf("[ProgressManager] Warning: Failed to load progress: %v (starting fresh)", err)
	}
	return pm
}

func newProgressData() *ProgressData {
	return &ProgressData{OpenedDoors: make(map[string][]string)}
}

// Load 从 gdata 加载进度
func (pm *ProgressManager) Load() error {
	pm.data = newProgressData()
	if pm.gdataManager == nil || !pm.gdataManager.ObjectPropExists(progressObject, progressProperty) {
		return nil
	}

	raw, err := pm.gdataManager.LoadObjectProp(progressObject, progressProperty)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	var loaded ProgressData
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	if loaded.OpenedDoors != nil {
		pm.data.OpenedDoors = loaded.OpenedDoors
	}
	return nil
}

// Save 保存进度
func (pm *ProgressManager) Save() error {
	if pm.gdataManager == nil {
		return nil
	}

	raw, err := yaml.Marshal(pm.data)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := pm.gdataManager.SaveObjectProp(progressObject, progressProperty, raw); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// MarkDoorOpened 记录门已打开，重复记录无效
func (pm *ProgressManager) MarkDoorOpened(roomID, doorID string) {
	if pm.IsDoorOpened(roomID, doorID) {
		return
	}
	doors := append(pm.data.OpenedDoors[roomID], doorID)
	sort.Strings(doors)
	pm.data.OpenedDoors[roomID] = doors
}

// IsDoorOpened 门是否已打开过
func (pm *ProgressManager) IsDoorOpened(roomID, doorID string) bool {
	for _, id := range pm.data.OpenedDoors[roomID] {
		if id == doorID {
			return true
		}
	}
	return false
}

// OpenedDoors 返回房间中已打开的门
func (pm *ProgressManager) OpenedDoors(roomID string) []string {
	return append([]string(nil), pm.data.OpenedDoors[roomID]...)
}

// ResetRoom 清除房间进度
func (pm *ProgressManager) ResetRoom(roomID string) {
	delete(pm.data.OpenedDoors, roomID)
}
