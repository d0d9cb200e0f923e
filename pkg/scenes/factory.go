package scenes

import (
	"io/fs"

	"github.com/decker502/laserroom/pkg/config"
	"github.com/decker502/laserroom/pkg/embedded"
	"github.com/decker502/laserroom/pkg/game"
)

// NewRoomFactory 返回从 fsys 加载房间配置的场景工厂
func NewRoomFactory(gs *game.GameState, fsys fs.FS) game.SceneFactory {
	return func(roomID string) (game.Scene, error) {
		cfg, err := config.LoadLevelConfigFS(fsys, embedded.LevelPath(roomID))
		if err != nil {
			return nil, err
		}
		return NewLaserRoomScene(gs, cfg)
	}
}
