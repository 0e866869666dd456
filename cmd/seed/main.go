package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"club-loyalty/internal/config"
	"club-loyalty/internal/domain/model"
	pg "club-loyalty/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	withDemo := flag.Bool("demo", false, "also create a couple of demo cards")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	tierRepo := pg.NewTierRepo(pool)
	promoRepo := pg.NewPromotionRepo(pool)
	cardRepo := pg.NewCardRepo(pool)

	// If tiers already exist, do nothing. Reseeding over live data would
	// shuffle thresholds under active cards.
	existing, err := tierRepo.ListAll(ctx, nil)
	if err != nil {
		log.Fatalf("list tiers: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d tiers already present. No changes.\n", len(existing))
		for _, t := range existing {
			fmt.Printf("  - %s (min=%d, discount=%.2f)\n", t.Name, t.MinPoints, t.DiscountFactor)
		}
		return
	}

	tiers := []model.Tier{
		{ID: "bronze", Name: "Bronze", MinPoints: 0, DiscountFactor: 0},
		{ID: "silver", Name: "Silver", MinPoints: 100, DiscountFactor: 0.05},
		{ID: "gold", Name: "Gold", MinPoints: 500, DiscountFactor: 0.10},
		{ID: "platinum", Name: "Platinum", MinPoints: 2000, DiscountFactor: 0.15},
	}
	for i := range tiers {
		if err := tierRepo.Save(ctx, nil, &tiers[i]); err != nil {
			log.Fatalf("save tier %q: %v", tiers[i].ID, err)
		}
		fmt.Printf("seeded tier: %s (min=%d, discount=%.2f)\n", tiers[i].Name, tiers[i].MinPoints, tiers[i].DiscountFactor)
	}

	// A sample weekend promotion for the first month.
	start := time.Now()
	end := start.AddDate(0, 1, 0)
	promo, err := model.NewPromotion("", "Launch month +10%", 10, 0, &start, &end)
	if err != nil {
		log.Fatalf("promotion: %v", err)
	}
	if err := promoRepo.Save(ctx, nil, promo); err != nil {
		log.Fatalf("save promotion: %v", err)
	}
	fmt.Printf("seeded promotion: %s (id=%s)\n", promo.Name, promo.ID)

	if *withDemo {
		for i, number := range []string{"DEMO-0001", "DEMO-0002"} {
			card, err := model.NewCard("", number, fmt.Sprintf("demo-user-%d", i+1), "bronze")
			if err != nil {
				log.Fatalf("card %q: %v", number, err)
			}
			if err := cardRepo.Save(ctx, nil, card); err != nil {
				log.Fatalf("save card %q: %v", number, err)
			}
			fmt.Printf("seeded card: %s (id=%s)\n", card.Number, card.ID)
		}
	}

	fmt.Println("Seeding complete.")
}
