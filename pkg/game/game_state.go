package game

import (
	"log"
	"sync"

	"github.com/quasilyte/gdata/v2"
)

// AppName gdata 存储使用的应用名
const AppName = "laserroom"

// GameState 跨场景共享的全局状态
//
// 暂停标志不持久化（与选项不同），每次启动都从未暂停开始。
type GameState struct {
	gdataManager    *gdata.Manager
	settingsManager *SettingsManager
	progressManager *ProgressManager
	audioManager    *AudioManager
	paused          bool
}

var (
	globalGameState *GameState
	globalOnce      sync.Once
)

// GetGameState 返回全局状态，首次调用时打开 gdata 存储
//
// gdata 打开失败时进入降级模式：设置和进度只保存在内存中。
func GetGameState() *GameState {
	globalOnce.Do(func() {
		manager, err := gdata.Open(gdata.Config{AppName: AppName})
		if err != nil {
			log.Printf("[GameState] Warning: gdata unavailable: %v (settings will not persist)", err)
			manager = nil
		}
		globalGameState = NewGameState(manager)
	})
	return globalGameState
}

// NewGameState 使用指定的 gdata 管理器创建状态，manager 可为 nil
func NewGameState(manager *gdata.Manager) *GameState {
	settings := NewSettingsManager(manager)
	return &GameState{
		gdataManager:    manager,
		settingsManager: settings,
		progressManager: NewProgressManager(manager),
		audioManager:    NewAudioManager(nil, settings),
	}
}

// GetGdataManager 返回 gdata 管理器（可能为 nil）
func (gs *GameState) GetGdataManager() *gdata.Manager {
	return gs.gdataManager
}

// GetSettingsManager 返回设置管理器
func (gs *GameState) GetSettingsManager() *SettingsManager {
	return gs.settingsManager
}

// GetProgressManager 返回进度管理器
func (gs *GameState) GetProgressManager() *ProgressManager {
	return gs.progressManager
}

// GetAudioManager 返回音频管理器，未设置音频上下文时播放调用无效果
func (gs *GameState) GetAudioManager() *AudioManager {
	return gs.audioManager
}

// SetAudioManager 替换音频管理器
func (gs *GameState) SetAudioManager(am *AudioManager) {
	gs.audioManager = am
}

// IsPaused 是否暂停
func (gs *GameState) IsPaused() bool {
	return gs.paused
}

// SetPaused 设置暂停
func (gs *GameState) SetPaused(paused bool) {
	if gs.paused != paused {
		log.Printf("[GameState] Paused: %v", paused)
	}
	gs.paused = paused
}

// TogglePause 切换暂停
func (gs *GameState) TogglePause() {
	gs.SetPaused(!gs.paused)
}
