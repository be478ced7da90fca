package main

import (
	"context"
	"flag"
	"os"

	"github.com/MarcusAlienx/casanala/internal/config"
	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/docstore"
	"github.com/MarcusAlienx/casanala/internal/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	// CLI flags
	file := flag.String("file", "seed.yaml", "YAML seed file with staff, menu and inventory")
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	name := flag.String("name", "", "Admin full name")
	flag.Parse()

	_ = logger.Init(true)
	log := logger.L()
	defer logger.Sync()

	// Fall back to environment variables
	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *name == "" {
		*name = os.Getenv("SEED_NAME")
	}

	data, err := loadSeedFile(*file)
	if err != nil {
		log.Fatal("read seed file", zap.String("file", *file), zap.Error(err))
	}
	if *email != "" {
		if *password == "" {
			*password = "password123"
			log.Warn("using default admin password, change it immediately in production")
		}
		if *name == "" {
			*name = "Admin Casa Nala"
		}
		data.Staff = append(data.Staff, staffSeed{Email: *email, Password: *password, FullName: *name, Role: "admin"})
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	var store SeedStore
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		ds, err := docstore.Open(ctx, cfg.FirestoreProjectID, log)
		if err != nil {
			log.Fatal("open firestore", zap.Error(err))
		}
		defer ds.Close()
		store = ds
	default:
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("unable to connect to database", zap.Error(err))
		}
		defer pool.Close()
		store = database.New(pool)
	}

	res, err := Seed(ctx, store, data, log)
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seed completed successfully",
		zap.Int("staff_created", res.Staff),
		zap.Int("menu_items_created", res.MenuItems),
		zap.Int("inventory_items_created", res.InventoryItems))
}
