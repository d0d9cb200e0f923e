package scenes

import (
	"github.com/decker502/laserroom/pkg/game"
)

const (
	// WindowWidth is the logical width of the game window in pixels.
	WindowWidth = 800
	// WindowHeight is the logical height of the game window in pixels.
	WindowHeight = 600
	// PixelsPerUnit 俯视视图中一个世界单位对应的像素
	PixelsPerUnit = 22.0
)

// Scene is a type alias for game.Scene so callers only import this package.
type Scene = game.Scene
