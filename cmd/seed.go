package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/serfi-platform/user-management/internal/user"
)

var adminPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with roles, permissions and the bootstrap admin",
	Long:  `Seed fixed roles, permissions, role grants and the bootstrap admin account. Safe to run repeatedly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		roles := []string{"Admin", "Operator", "Client"}
		for _, name := range roles {
			var exists int
			if err := db.Raw("SELECT 1 FROM roles WHERE name = ?", name).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO roles (name, created_at, updated_at) VALUES (?, now(), now())", name).Error; err != nil {
				log.Fatalf("failed to insert role %s: %v", name, err)
			}
			fmt.Println("Seeded role:", name)
		}

		permissions := []string{
			user.PermCreateUser,
			user.PermEditUser,
			user.PermDeleteUser,
			user.PermReadUsers,
			user.PermReadOwnData,
		}
		for _, name := range permissions {
			var exists int
			if err := db.Raw("SELECT 1 FROM permissions WHERE name = ?", name).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO permissions (name, created_at, updated_at) VALUES (?, now(), now())", name).Error; err != nil {
				log.Fatalf("failed to insert permission %s: %v", name, err)
			}
			fmt.Println("Seeded permission:", name)
		}

		grants := map[string][]string{
			"Admin":    {user.PermCreateUser, user.PermEditUser, user.PermDeleteUser, user.PermReadUsers, user.PermReadOwnData},
			"Operator": {user.PermEditUser, user.PermReadUsers},
			"Client":   {user.PermReadOwnData},
		}

		for roleName, permNames := range grants {
			var roleID int64
			if err := db.Raw("SELECT id FROM roles WHERE name = ?", roleName).Row().Scan(&roleID); err != nil {
				log.Fatalf("role not found after insert %s: %v", roleName, err)
			}

			for _, permName := range permNames {
				var permID int64
				if err := db.Raw("SELECT id FROM permissions WHERE name = ?", permName).Row().Scan(&permID); err != nil {
					log.Fatalf("permission not found after insert %s: %v", permName, err)
				}

				var exists int
				if err := db.Raw("SELECT 1 FROM role_permissions WHERE role_id = ? AND permission_id = ?", roleID, permID).Row().Scan(&exists); err == nil {
					continue
				}

				if err := db.Exec("INSERT INTO role_permissions (role_id, permission_id, created_at) VALUES (?, ?, now())", roleID, permID).Error; err != nil {
					log.Fatalf("failed to grant %s to %s: %v", permName, roleName, err)
				}
			}
			fmt.Printf("Granted permissions to role %s: %v\n", roleName, permNames)
		}

		adminEmail := "admin@admin.com"
		var exists int
		if err := db.Raw("SELECT 1 FROM users WHERE email = ?", adminEmail).Row().Scan(&exists); err == nil {
			fmt.Println("bootstrap admin already exists:", adminEmail)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}

		var adminRoleID int64
		if err := db.Raw("SELECT id FROM roles WHERE name = ?", "Admin").Row().Scan(&adminRoleID); err != nil {
			log.Fatalf("failed to lookup Admin role id: %v", err)
		}

		if err := db.Exec(
			"INSERT INTO users (name, email, password_hash, country, role_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, now(), now())",
			"Renzo Admin", adminEmail, string(hash), "Colombia", adminRoleID,
		).Error; err != nil {
			log.Fatalf("failed to insert bootstrap admin: %v", err)
		}

		fmt.Println("Seeded bootstrap admin:", adminEmail)
	},
}

func init() {
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "admin", "Password for the bootstrap admin account")
}
