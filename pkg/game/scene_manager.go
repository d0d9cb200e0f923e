package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory 按房间 ID 创建场景，避免 game 包依赖 scenes 包
type SceneFactory func(roomID string) (Scene, error)

// SceneManager 控制当前活动场景
// 任意时刻只有一个场景的 Update 和 Draw 会被调用
type SceneManager struct {
	currentScene Scene
	sceneFactory SceneFactory
}

// NewSceneManager 创建场景管理器，初始没有活动场景
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SwitchTo 切换活动场景，旧场景如果实现了 Saveable 会先保存
func (sm *SceneManager) SwitchTo(scene Scene) {
	if saveable, ok := sm.currentScene.(Saveable); ok && sm.currentScene != scene {
		if !saveable.SaveOnExit() {
			log.Printf("[SceneManager] Warning: previous scene failed to save")
		}
	}
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动场景
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// LoadRoom 加载指定房间
func (sm *SceneManager) LoadRoom(roomID string) error {
	log.Printf("[SceneManager] 加载房间: %s", roomID)

	if sm.sceneFactory == nil {
		log.Printf("[SceneManager] 错误: SceneFactory 未设置")
		return errNoSceneFactory
	}

	newScene, err := sm.sceneFactory(roomID)
	if err != nil {
		log.Printf("[SceneManager] 错误: 无法创建房间场景 %s: %v", roomID, err)
		return err
	}

	sm.SwitchTo(newScene)
	log.Printf("[SceneManager] 成功切换到房间: %s", roomID)
	return nil
}

// Update 更新当前场景
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw 渲染当前场景
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
