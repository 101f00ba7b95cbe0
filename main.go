package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"churnboard-backend/billing"
	"churnboard-backend/conn"
	"churnboard-backend/insights"
	"churnboard-backend/migrations"
	"churnboard-backend/retention"
)

func main() {
	_ = godotenv.Load()

	db, err := conn.NewMySQL()
	if err != nil {
		log.Fatalf("[BOOT] mysql: %v", err)
	}
	migrations.Init(db)
	if err := migrations.Migrate(); err != nil {
		log.Fatalf("[BOOT] migrate: %v", err)
	}

	store := billing.NewStore()
	repo := billing.NewRepository(db)

	// Warm the in-memory snapshot from the last persisted sync so the
	// dashboard has data before the first refresh.
	subs, payments, cancellations, syncedAt, err := repo.LoadSnapshot()
	if err != nil {
		log.Printf("[BOOT] snapshot load failed: %v", err)
	} else if len(subs) > 0 {
		store.Set(subs, payments, cancellations, syncedAt)
		log.Printf("[BOOT] snapshot loaded: subs=%d payments=%d cancellations=%d synced_at=%s",
			len(subs), len(payments), len(cancellations), syncedAt)
	}

	policy := retention.DefaultSegmentPolicy()
	analyzer := retention.NewAnalyzer(policy)

	sync := billing.NewSyncFromEnv(store, repo, policy)
	if sync == nil {
		log.Printf("[BOOT] STRIPE_SECRET_KEY not set, billing sync disabled")
	} else if _, err := sync.Sync(context.Background()); err != nil {
		log.Printf("[BOOT] initial sync failed: %v", err)
	}

	r := gin.Default()

	billing.NewHandler(sync, store).RegisterRoutes(r)
	retention.NewHandler(store, analyzer).RegisterRoutes(r)
	insights.NewHandler(insights.NewFromEnv(), store, analyzer).RegisterRoutes(r)

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	r.Run(addr)
}
