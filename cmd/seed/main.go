// Command seed provisions the first manager account and the default
// menu so a fresh deployment is immediately usable.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/canteen-pay/api/internal/config"
	"github.com/canteen-pay/api/internal/database"
	"github.com/canteen-pay/api/internal/enum"
	"golang.org/x/crypto/bcrypt"
)

type seedItem struct {
	name  string
	price string
}

var defaultMenu = []seedItem{
	{"Masala Dosa", "50.00"},
	{"Idli Sambar", "35.00"},
	{"Veg Sandwich", "45.00"},
	{"Pav Bhaji", "70.00"},
	{"Chole Bhature", "80.00"},
	{"Tea", "10.00"},
	{"Coffee", "15.00"},
}

func main() {
	managerID := flag.String("manager-id", "manager", "user id for the manager account")
	managerName := flag.String("manager-name", "Canteen Manager", "display name for the manager account")
	flag.Parse()

	password := os.Getenv("SEED_MANAGER_PASSWORD")
	if password == "" {
		password = "changeme"
		log.Println("WARNING: SEED_MANAGER_PASSWORD not set, using default password; change it immediately")
	}

	cfg := config.Load()
	ctx := context.Background()

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("FATAL: running migrations: %v", err)
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: connecting to database: %v", err)
	}
	defer pool.Close()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("FATAL: hashing password: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("FATAL: beginning transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	const upsertManager = `
		INSERT INTO users (user_id, name, role, hashed_password)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := tx.Exec(ctx, upsertManager, *managerID, *managerName, enum.RoleManager, string(hashed)); err != nil {
		log.Fatalf("FATAL: seeding manager: %v", err)
	}

	const upsertItem = `
		INSERT INTO menu (item_name, price, available)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (item_name) DO NOTHING`
	for _, item := range defaultMenu {
		if _, err := tx.Exec(ctx, upsertItem, item.name, item.price); err != nil {
			log.Fatalf("FATAL: seeding menu item %s: %v", item.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("FATAL: committing seed: %v", err)
	}

	log.Printf("seeded manager %q and %d menu items", *managerID, len(defaultMenu))
}
