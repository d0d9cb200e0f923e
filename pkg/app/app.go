// Package app 提供游戏应用的核心包装器
//
// 该包将游戏初始化逻辑从 main 包提取出来，main.go 只负责解析参数和嵌入数据。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/laserroom/pkg/embedded"
	"github.com/decker502/laserroom/pkg/game"
	"github.com/decker502/laserroom/pkg/scenes"
)

// DefaultRoom 未指定房间时加载的房间
const DefaultRoom = "laser_room"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Room 指定要加载的房间 ID，为空则加载 DefaultRoom
	Room string
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	gameState    *game.GameState
	verbose      bool
}

// NewApp 创建并初始化游戏应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入数据。
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	data, err := embedded.FS()
	if err != nil {
		return nil, err
	}

	gameState := game.GetGameState()
	gameState.SetAudioManager(game.NewAudioManager(audio.NewContext(game.SampleRate), gameState.GetSettingsManager()))
	sceneManager := game.NewSceneManager()
	sceneManager.SetSceneFactory(scenes.NewRoomFactory(gameState, data))

	room := cfg.Room
	if room == "" {
		room = DefaultRoom
	}
	log.Printf("[App] Starting room: %s", room)

	if err := sceneManager.LoadRoom(room); err != nil {
		return nil, fmt.Errorf("加载房间 %s 失败: %w", room, err)
	}

	return &App{
		sceneManager: sceneManager,
		gameState:    gameState,
		verbose:      cfg.Verbose,
	}, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制游戏画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 全屏时左右两边填充黑色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return scenes.WindowWidth, scenes.WindowHeight
}

// GetSceneManager 返回场景管理器
// 用于在游戏关闭时保存进度
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// Shutdown 退出前保存设置和当前房间进度
func (a *App) Shutdown() {
	if saveable, ok := a.sceneManager.GetCurrentScene().(game.Saveable); ok {
		saveable.SaveOnExit()
	}
	if err := a.gameState.GetSettingsManager().Save(); err != nil {
		log.Printf("[App] Warning: failed to save settings: %v", err)
	}
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
