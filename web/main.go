package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/df07/go-lensing-renderer/pkg/config"
	"github.com/df07/go-lensing-renderer/web/server"
)

func main() {
	// Defaults for every request come from the same sources as the CLI
	cfg, err := config.Load("lensing-web", os.Args[1:], ".env")
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Printf("Error: %v", err)
		os.Exit(1)
	}

	webServer := server.NewServer(cfg)

	log.Printf("Lensing Renderer Web Server")
	log.Printf("Visit http://localhost:%d/api/render to start rendering", cfg.Port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
