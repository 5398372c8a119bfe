package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"rentals", "equipment_backups", "equipment", "sites", "locations", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		users := []struct {
			Email      string
			Permission string
		}{
			{"admin@example.com", "admin"},
			{"operator@example.com", "user"},
			{"viewer@example.com", "viewer"},
		}
		for _, u := range users {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Println("user already exists:", u.Email)
				continue
			}
			if err := db.Exec("INSERT INTO users (email, permission, created_at, updated_at) VALUES (?, ?, now(), now())", u.Email, u.Permission).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		}

		equipment := []struct {
			ID       int64
			Name     string
			Model    string
			Maker    string
			Total    int
			Location string
		}{
			{1, "Tower Light", "LT-400", "Denyo", 6, "North Yard"},
			{2, "Generator 25kVA", "DCA-25", "Denyo", 4, "North Yard"},
			{3, "Plate Compactor", "MVC-88", "Mikasa", 10, "South Yard"},
			{4, "Welder 185A", "TLW-300", "Shindaiwa", 3, "South Yard"},
		}
		for _, e := range equipment {
			var exists int
			row := db.Raw("SELECT 1 FROM equipment WHERE id = ?", e.ID).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Println("equipment already exists:", e.Name)
				continue
			}
			if err := db.Exec(
				"INSERT INTO equipment (id, name, model, manufacturer, total_quantity, home_location, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, now(), now())",
				e.ID, e.Name, e.Model, e.Maker, e.Total, e.Location,
			).Error; err != nil {
				log.Fatalf("failed to insert equipment %s: %v", e.Name, err)
			}
			fmt.Println("Seeded equipment:", e.Name)
		}

		for _, loc := range []string{"North Yard", "South Yard"} {
			var exists int
			row := db.Raw("SELECT 1 FROM locations WHERE name = ?", loc).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO locations (name, created_at) VALUES (?, now())", loc).Error; err != nil {
				log.Fatalf("failed to insert location %s: %v", loc, err)
			}
			fmt.Println("Seeded location:", loc)
		}

		for _, s := range []string{"Riverside Bridge", "Harbor Expansion"} {
			var exists int
			row := db.Raw("SELECT 1 FROM sites WHERE name = ?", s).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO sites (name, created_at) VALUES (?, now())", s).Error; err != nil {
				log.Fatalf("failed to insert site %s: %v", s, err)
			}
			fmt.Println("Seeded site:", s)
		}

		fmt.Println("Seeding complete")
	},
}
