package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	seedSuperAdminEmail string
	seedSuperAdminName  string
)

// seedCmd bootstraps the first super_admin: without one nobody can manage the
// whitelist, and without a whitelist entry nobody can log in.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the initial super admin and whitelist entry",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		if seedSuperAdminEmail == "" {
			log.Fatal("--email is required")
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE email = ?", seedSuperAdminEmail).Row()
		if err := row.Scan(&exists); err == nil {
			if err := db.Exec("UPDATE users SET role = 'super_admin' WHERE email = ?", seedSuperAdminEmail).Error; err != nil {
				log.Fatalf("failed to promote super admin: %v", err)
			}
			fmt.Println("existing user promoted to super_admin:", seedSuperAdminEmail)
		} else {
			if err := db.Exec(
				"INSERT INTO users (email, full_name, role, created_at, updated_at) VALUES (?, ?, 'super_admin', now(), now())",
				seedSuperAdminEmail, seedSuperAdminName,
			).Error; err != nil {
				log.Fatalf("failed to insert super admin: %v", err)
			}
			fmt.Println("seeded super_admin user:", seedSuperAdminEmail)
		}

		row = db.Raw("SELECT 1 FROM email_whitelist WHERE email = ?", seedSuperAdminEmail).Row()
		if err := row.Scan(&exists); err == nil {
			if err := db.Exec("UPDATE email_whitelist SET is_active = true WHERE email = ?", seedSuperAdminEmail).Error; err != nil {
				log.Fatalf("failed to reactivate whitelist entry: %v", err)
			}
		} else {
			if err := db.Exec(
				"INSERT INTO email_whitelist (email, added_by, notes, is_active, created_at, updated_at) SELECT ?, id, 'seeded super admin', true, now(), now() FROM users WHERE email = ?",
				seedSuperAdminEmail, seedSuperAdminEmail,
			).Error; err != nil {
				log.Fatalf("failed to insert whitelist entry: %v", err)
			}
		}
		fmt.Println("whitelisted:", seedSuperAdminEmail)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedSuperAdminEmail, "email", "", "super admin email to seed")
	seedCmd.Flags().StringVar(&seedSuperAdminName, "name", "Super Admin", "super admin display name")
}
