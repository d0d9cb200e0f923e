package game

import (
	"fmt"
	"log"
	"math"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// GameSettings 全局选项
// 音量以倍率形式保存，由播放方乘到各自的基础音量上
type GameSettings struct {
	MusicMultiplier float64 `yaml:"musicMultiplier"` // 音乐倍率 0.0 ~ 1.0
	SFXMultiplier   float64 `yaml:"sfxMultiplier"`   // 音效倍率 0.0 ~ 1.0
}

// DefaultSettings 返回默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		MusicMultiplier: 1.0,
		SFXMultiplier:   1.0,
	}
}

// SettingsManager 设置管理器
// 负责选项的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，仅内存设置）
	settings     *GameSettings
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "options"
)

// NewSettingsManager 创建设置管理器并尝试加载已保存的设置
//
// 加载失败不是致命错误：记录日志并使用默认设置。
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm
}

// Load 从 gdata 加载设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.MusicMultiplier = clampMultiplier(loaded.MusicMultiplier)
	loaded.SFXMultiplier = clampMultiplier(loaded.SFXMultiplier)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata，降级模式下直接返回 nil
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *GameSettings {
	return sm.settings
}

// SetMusicMultiplier 设置音乐倍率（仅修改内存，需调用 Save 持久化）
func (sm *SettingsManager) SetMusicMultiplier(value float64) {
	sm.settings.MusicMultiplier = clampMultiplier(value)
}

// SetSFXMultiplier 设置音效倍率（仅修改内存，需调用 Save 持久化）
func (sm *SettingsManager) SetSFXMultiplier(value float64) {
	sm.settings.SFXMultiplier = clampMultiplier(value)
}

// clampMultiplier 将倍率限制在 0.0 ~ 1.0 范围内
func clampMultiplier(value float64) float64 {
	if value < 0.0 || math.IsNaN(value) {
		return 0.0
	}
	if value > 1.0 {
		return 1.0
	}
	return value
}
