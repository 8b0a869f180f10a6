package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/df07/go-lensing-renderer/pkg/config"
	"github.com/df07/go-lensing-renderer/pkg/core"
	"github.com/df07/go-lensing-renderer/viewer/app"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg, err := config.Load("lensing-viewer", os.Args[1:], ".env")
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Printf("Error: %v", err)
		os.Exit(1)
	}

	game := app.NewGame(cfg, core.NewDefaultLogger())

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("Black Hole Lensing")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err = ebiten.RunGame(game)
	game.Close()
	if err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
