package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/laserroom/pkg/app"
	"github.com/decker502/laserroom/pkg/embedded"
	"github.com/decker502/laserroom/pkg/scenes"
)

func main() {
	verbose := flag.Bool("verbose", false, "启用详细日志输出")
	room := flag.String("level", "", "要加载的房间 ID（默认 "+app.DefaultRoom+"）")
	listLevels := flag.Bool("list-levels", false, "列出内置房间后退出")
	flag.Parse()

	embedded.Init(dataFS)

	if *listLevels {
		ids, err := embedded.ListLevels()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return
	}

	game, err := app.NewApp(app.Config{
		Verbose: *verbose,
		Room:    *room,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(scenes.WindowWidth, scenes.WindowHeight)
	ebiten.SetWindowTitle("Laser Room")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
	game.Shutdown()
}
