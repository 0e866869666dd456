package main

import (
	"flag"
	"fmt"
	"log"

	"club-loyalty/internal/config"
	"club-loyalty/internal/infra/db/migrate"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := migrate.Run(cfg.Database.URL, *direction); err != nil {
		log.Fatalf("migrate %s: %v", *direction, err)
	}
	fmt.Printf("migrations %s: done\n", *direction)
}
