package main

import (
	"log"

	"github.com/akosarev/metaserve/internal/app"
	"github.com/akosarev/metaserve/pkg/config"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalln("failed to load config: ", err)
	}

	app.Run(cfg)
}
