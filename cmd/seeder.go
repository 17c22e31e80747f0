package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
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

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"payment_evidence", "invoices", "tasks", "work_schedules", "weeks", "users"} {
				if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)

		seedUser(gdb, "admin@mail.com", "Admin", "admin", 0, string(hash))
		seedUser(gdb, "hr@mail.com", "HR", "hr", 0, string(hash))
		devID := seedUser(gdb, "dev@mail.com", "Developer", "developer", 45, string(hash))

		if devID != 0 {
			err := gdb.Exec(`
				INSERT INTO work_schedules (user_id, days_per_week, hours_per_day, updated_by, created_at, updated_at)
				VALUES (?, 5, 8, ?, now(), now())
				ON CONFLICT (user_id) DO NOTHING`, devID, devID).Error
			if err != nil {
				log.Fatalf("failed to seed schedule: %v", err)
			}
			fmt.Println("Seeded developer schedule")
		}
	},
}

func seedUser(db *gorm.DB, email, name, role string, rate float64, hash string) int64 {
	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Printf("user %s already exists\n", email)
		var id int64
		db.Raw("SELECT id FROM users WHERE email = ?", email).Scan(&id)
		return id
	}

	err := db.Exec(`
		INSERT INTO users (email, name, password_hash, role, hourly_rate, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, true, now(), now())`,
		email, name, hash, role, rate).Error
	if err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)

	var id int64
	db.Raw("SELECT id FROM users WHERE email = ?", email).Scan(&id)
	return id
}
