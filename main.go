// main.go

package main

import (
	"log"

	"storefront-backend/internal/app"
	"storefront-backend/internal/config"
)

func main() {
	cfg := config.MustLoad()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	application.Run()
}
