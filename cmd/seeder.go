package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/crm-management/internal/authz"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with the demo roles, permissions, staff, customers, contracts and events.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		_, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			clearAll(db)
		}

		seedRolesAndPermissions(db)
		seedUsers(db)
		seedCustomers(db)
		seedContracts(db)
		seedEvents(db)

		fmt.Println("seeding complete")
	},
}

func clearAll(db *gorm.DB) {
	// children first
	for _, table := range []string{"events", "contracts", "customers", "users", "role_permission", "permissions", "roles"} {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			log.Fatalf("failed to clear %s: %v", table, err)
		}
	}
	fmt.Println("cleared existing data")
}

func seedRolesAndPermissions(db *gorm.DB) {
	for _, role := range []string{authz.RoleManagement, authz.RoleSales, authz.RoleSupport} {
		var id int64
		if err := db.Raw("SELECT id FROM roles WHERE name = ?", role).Row().Scan(&id); err != nil {
			if err := db.Exec("INSERT INTO roles (name, created_at) VALUES (?, now())", role).Error; err != nil {
				log.Fatalf("failed to insert role %s: %v", role, err)
			}
		}
	}

	for _, perm := range authz.AllPermissions {
		var id int64
		if err := db.Raw("SELECT id FROM permissions WHERE name = ?", perm).Row().Scan(&id); err != nil {
			if err := db.Exec("INSERT INTO permissions (name, created_at) VALUES (?, now())", perm).Error; err != nil {
				log.Fatalf("failed to insert permission %s: %v", perm, err)
			}
		}
	}

	for role, perms := range authz.DefaultRolePermissions {
		var roleID int64
		if err := db.Raw("SELECT id FROM roles WHERE name = ?", role).Row().Scan(&roleID); err != nil {
			log.Fatalf("role not found after insert %s: %v", role, err)
		}

		for _, perm := range perms {
			var permID int64
			if err := db.Raw("SELECT id FROM permissions WHERE name = ?", perm).Row().Scan(&permID); err != nil {
				log.Fatalf("permission not found after insert %s: %v", perm, err)
			}

			var exists int
			if err := db.Raw("SELECT 1 FROM role_permission WHERE role_id = ? AND permission_id = ?", roleID, permID).Row().Scan(&exists); err == nil {
				continue
			}

			if err := db.Exec("INSERT INTO role_permission (role_id, permission_id) VALUES (?, ?)", roleID, permID).Error; err != nil {
				log.Fatalf("failed to grant %s to %s: %v", perm, role, err)
			}
		}
	}

	fmt.Println("seeded roles and permissions")
}

func seedUsers(db *gorm.DB) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	users := []struct {
		Username string
		Role     string
	}{
		{"manager1", authz.RoleManagement},
		{"manager2", authz.RoleManagement},
		{"sales1", authz.RoleSales},
		{"sales2", authz.RoleSales},
		{"sales3", authz.RoleSales},
		{"support1", authz.RoleSupport},
		{"support2", authz.RoleSupport},
	}

	for _, u := range users {
		var exists int
		if err := db.Raw("SELECT 1 FROM users WHERE username = ?", u.Username).Row().Scan(&exists); err == nil {
			continue
		}

		var roleID int64
		if err := db.Raw("SELECT id FROM roles WHERE name = ?", u.Role).Row().Scan(&roleID); err != nil {
			log.Fatalf("role %s not found: %v", u.Role, err)
		}

		email := fmt.Sprintf("%s@crm.example.com", u.Username)
		if err := db.Exec(
			"INSERT INTO users (username, email, full_name, password_hash, role_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, now(), now())",
			u.Username, email, u.Username, string(hash), roleID).Error; err != nil {
			log.Fatalf("failed to insert user %s: %v", u.Username, err)
		}
	}

	fmt.Println("seeded users")
}

func userID(db *gorm.DB, username string) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM users WHERE username = ?", username).Row().Scan(&id); err != nil {
		log.Fatalf("seed user %s not found: %v", username, err)
	}
	return id
}

func seedCustomers(db *gorm.DB) {
	customers := []struct {
		FullName string
		Email    string
		Company  string
		Owner    string
	}{
		{"Customer A", "customer.a@example.com", "Alpha Corp", "sales2"},
		{"Customer B", "customer.b@example.com", "Beta GmbH", "sales2"},
		{"Customer C", "customer.c@example.com", "Gamma SAS", "sales3"},
	}

	for _, c := range customers {
		var exists int
		if err := db.Raw("SELECT 1 FROM customers WHERE email = ?", c.Email).Row().Scan(&exists); err == nil {
			continue
		}

		if err := db.Exec(
			"INSERT INTO customers (full_name, email, phone, company_name, sales_user_id, created_at, updated_at) VALUES (?, ?, '', ?, ?, now(), now())",
			c.FullName, c.Email, c.Company, userID(db, c.Owner)).Error; err != nil {
			log.Fatalf("failed to insert customer %s: %v", c.FullName, err)
		}
	}

	fmt.Println("seeded customers")
}

func customerID(db *gorm.DB, email string) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM customers WHERE email = ?", email).Row().Scan(&id); err != nil {
		log.Fatalf("seed customer %s not found: %v", email, err)
	}
	return id
}

func seedContracts(db *gorm.DB) {
	contracts := []struct {
		Customer string
		Author   string
		Total    int64
		Due      int64
		Signed   bool
	}{
		{"customer.b@example.com", "manager1", 100000, 100000, false},
		{"customer.b@example.com", "manager1", 100000, 100000, true},
		{"customer.b@example.com", "manager1", 100000, 0, true},
		{"customer.b@example.com", "manager1", 100000, 0, true},
		{"customer.c@example.com", "manager2", 150000, 150000, true},
		{"customer.c@example.com", "manager2", 150000, 0, true},
	}

	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM contracts").Row().Scan(&count); err == nil && count > 0 {
		return
	}

	for _, c := range contracts {
		if err := db.Exec(
			"INSERT INTO contracts (customer_id, management_user_id, total_amount, balance_due, signed, created_at, updated_at) VALUES (?, ?, ?, ?, ?, now(), now())",
			customerID(db, c.Customer), userID(db, c.Author), c.Total, c.Due, c.Signed).Error; err != nil {
			log.Fatalf("failed to insert contract for %s: %v", c.Customer, err)
		}
	}

	fmt.Println("seeded contracts")
}

func seedEvents(db *gorm.DB) {
	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM events").Row().Scan(&count); err == nil && count > 0 {
		return
	}

	// contract ids are sequential after a fresh seed; events hang off the
	// fully paid signed contracts (4th and 6th)
	var contractIDs []int64
	rows, err := db.Raw("SELECT id FROM contracts ORDER BY id ASC").Rows()
	if err != nil {
		log.Fatalf("failed to list contracts: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			log.Fatalf("failed to scan contract id: %v", err)
		}
		contractIDs = append(contractIDs, id)
	}
	if len(contractIDs) < 6 {
		log.Fatalf("expected 6 seeded contracts, found %d", len(contractIDs))
	}

	events := []struct {
		Contract int64
		Name     string
		Support  string
	}{
		{contractIDs[3], "Kickoff Gala", ""},
		{contractIDs[3], "Product Demo Day", "support1"},
		{contractIDs[5], "Annual Conference", "support2"},
		{contractIDs[5], "Closing Ceremony", ""},
	}

	for _, e := range events {
		var custID int64
		if err := db.Raw("SELECT customer_id FROM contracts WHERE id = ?", e.Contract).Row().Scan(&custID); err != nil {
			log.Fatalf("failed to resolve contract %d: %v", e.Contract, err)
		}

		var supportID interface{}
		if e.Support != "" {
			supportID = userID(db, e.Support)
		}

		eventNumber := fmt.Sprintf("EV-seed-%d-%s", e.Contract, e.Name)
		if err := db.Exec(
			`INSERT INTO events (event_number, contract_id, customer_id, support_user_id, event_name,
			                     start_datetime, end_datetime, location, attendees, note, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, now(), now(), '', 0, '', now(), now())`,
			eventNumber, e.Contract, custID, supportID, e.Name).Error; err != nil {
			log.Fatalf("failed to insert event %s: %v", e.Name, err)
		}
	}

	fmt.Println("seeded events")
}
