package main

import (
	"context"
	"flag"
	"log"

	approuters "github.com/berlincodez/Campus-Skill-link/internal/app_routers"
	"github.com/berlincodez/Campus-Skill-link/internal/configuration"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON configuration file")
	flag.Parse()

	container, err := configuration.BuildContainer(context.Background(), *configPath)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	// Ensure cleanup on shutdown
	defer func() {
		if err := container.Close(); err != nil {
			log.Printf("cleanup failed: %v", err)
		}
	}()

	approuters.StartServer(container)
}
