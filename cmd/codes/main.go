package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"club-loyalty/internal/config"
	pg "club-loyalty/internal/infra/db/postgres"
	"club-loyalty/internal/infra/logging"
	"club-loyalty/internal/infra/worker"
	"club-loyalty/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	count := flag.Int("n", 10, "number of codes to generate")
	bonus := flag.Int("bonus", 0, "bonus points per code (0 uses the promotion's bonus, or the default)")
	promotionID := flag.String("promotion", "", "promotion id to link codes to")
	expiresIn := flag.Duration("expires-in", 0, "code lifetime from now (0 means no expiry)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	codeRepo := pg.NewPromoCodeRepo(pool)
	auditRepo := pg.NewAuditLogRepo(pool)

	auditPool := worker.NewPool(1, logger)
	auditPool.Start(ctx)
	defer auditPool.Stop()
	audit := usecase.NewAuditRecorder(auditRepo, auditPool, logger)

	codeUC := usecase.NewPromoCodeUseCase(codeRepo, audit, logger)

	var promoID *string
	if *promotionID != "" {
		promoID = promotionID
	}
	var expiresAt *time.Time
	if *expiresIn > 0 {
		t := time.Now().Add(*expiresIn)
		expiresAt = &t
	}
	operator := "cli"

	codes, err := codeUC.CreateBatch(ctx, *count, promoID, *bonus, expiresAt, &operator)
	if err != nil {
		log.Fatalf("create batch: %v", err)
	}

	for _, c := range codes {
		fmt.Println(c.Code)
	}
	fmt.Printf("generated %d codes\n", len(codes))
}
