package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/category"
	categorypg "github.com/frahmantamala/crm-assistant/internal/category/postgres"
	contactDatamodel "github.com/frahmantamala/crm-assistant/internal/core/datamodel/contact"
	userDatamodel "github.com/frahmantamala/crm-assistant/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with one user per role, the default contact categories and a handful of contacts.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"contacts", "categories", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		cost := cfg.Security.BCryptCost
		if cost == 0 {
			cost = 12
		}
		if err := seedUsers(db, cost); err != nil {
			log.Fatal(err)
		}
		ctx := context.Background()
		categories := category.NewService(categorypg.NewCategoryRepository(db), slog.Default())
		if err := seedCategories(ctx, categories); err != nil {
			log.Fatal(err)
		}
		vocabulary, err := categories.Vocabulary(ctx)
		if err != nil {
			log.Fatalf("failed to load categories: %v", err)
		}
		if err := seedContacts(db, vocabulary); err != nil {
			log.Fatal(err)
		}
	},
}

type seedUser struct {
	Username          string
	Email             string
	Role              auth.Role
	AllowedCategories []string
	Permissions       *auth.Permissions
}

func seedUsers(db *gorm.DB, cost int) error {
	hash, err := auth.HashPassword("password", cost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := []seedUser{
		{Username: "admin", Email: "admin@mail.com", Role: auth.RoleAdmin},
		{
			Username:          "hr",
			Email:             "hr@mail.com",
			Role:              auth.RoleHR,
			AllowedCategories: []string{"Personal", "Vendor", "Supplier"},
			Permissions: &auth.Permissions{
				Contact:     &auth.CRUDPermissions{Create: auth.Bool(true), Read: auth.Bool(true), Update: auth.Bool(true), Delete: auth.Bool(false)},
				CRMFeatures: &auth.FeaturePermissions{ViewBirthdays: auth.Bool(true), ExportContacts: auth.Bool(false)},
			},
		},
		{
			Username:          "sales",
			Email:             "sales@mail.com",
			Role:              auth.RoleUser,
			AllowedCategories: []string{"Client", "Prospect", "Lead", "Sales"},
			Permissions: &auth.Permissions{
				Contact:     &auth.CRUDPermissions{Read: auth.Bool(true), Create: auth.Bool(true), Delete: auth.Bool(false)},
				CRMFeatures: &auth.FeaturePermissions{ViewStatistics: auth.Bool(false), ImportContacts: auth.Bool(false)},
			},
		},
	}

	for _, u := range users {
		var perms string
		if u.Permissions != nil {
			raw, err := json.Marshal(u.Permissions)
			if err != nil {
				return fmt.Errorf("failed to encode permissions for %s: %w", u.Email, err)
			}
			perms = string(raw)
		}

		row := userDatamodel.User{
			Username:          u.Username,
			Email:             u.Email,
			PasswordHash:      hash,
			Role:              string(u.Role),
			AllowedCategories: u.AllowedCategories,
			Permissions:       perms,
			IsActive:          true,
		}
		res := db.Where(userDatamodel.User{Email: u.Email}).FirstOrCreate(&row)
		if res.Error != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Email, res.Error)
		}
		if res.RowsAffected > 0 {
			fmt.Printf("Seeded %s user: %s\n", u.Role, u.Email)
		} else {
			fmt.Printf("%s user already exists: %s\n", u.Role, u.Email)
		}
	}
	return nil
}

func seedCategories(ctx context.Context, categories *category.Service) error {
	created, err := categories.EnsureDefaults(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	fmt.Printf("Contact categories seeded successfully (%d new)\n", created)
	return nil
}

func seedContacts(db *gorm.DB, vocabulary *category.Vocabulary) error {
	var n int64
	if err := db.Model(&contactDatamodel.Contact{}).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to count contacts: %w", err)
	}
	if n > 0 {
		fmt.Println("contacts already present; skipping")
		return nil
	}

	now := time.Now()
	daysAgo := func(d int) *time.Time {
		t := now.AddDate(0, 0, -d)
		return &t
	}
	birthdayIn := func(d int) *time.Time {
		t := time.Date(1990, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
		return &t
	}
	score := func(v float64) *float64 { return &v }

	contacts := []contactDatamodel.Contact{
		{
			FirstName: "Alice", LastName: "Tan", Company: "Acme Corp",
			Emails:     []contactDatamodel.Point{{Value: "alice@acme.test", IsPrimary: true}},
			Phones:     []contactDatamodel.Point{{Value: "+62 811 1000 001", IsPrimary: true}},
			Categories: []string{"Client"}, Tags: []string{"vip"}, Status: "active",
			LeadScore: score(85), LastInteraction: daysAgo(2), Birthday: birthdayIn(3),
		},
		{
			FirstName: "Budi", LastName: "Santoso", Company: "Acme Corp",
			Emails:     []contactDatamodel.Point{{Value: "budi@acme.test", IsPrimary: true}},
			Categories: []string{"Prospect", "Sales"}, Status: "lead",
			LeadScore: score(55), LastInteraction: daysAgo(20),
		},
		{
			FirstName: "Citra", LastName: "Lestari", Company: "Globex",
			Emails:     []contactDatamodel.Point{{Value: "citra@globex.test", IsPrimary: true}},
			Categories: []string{"Partner"}, Tags: []string{"reseller"}, Status: "active",
			LeadScore: score(70), LastInteraction: daysAgo(45), Birthday: birthdayIn(10),
		},
		{
			FirstName: "Dewi", LastName: "Putri", Company: "Initech",
			Emails:     []contactDatamodel.Point{{Value: "dewi@initech.test", IsPrimary: true}},
			Categories: []string{"Personal"}, Status: "active",
			LastInteraction: daysAgo(1), Birthday: birthdayIn(0),
		},
		{
			FirstName: "Eko", LastName: "Prasetyo",
			Emails:     []contactDatamodel.Point{{Value: "eko@mail.test", IsPrimary: true}},
			Categories: []string{"Lead"}, Status: "interview",
			LeadScore: score(40),
		},
		{
			FirstName: "Fajar", LastName: "Nugroho", Company: "Umbrella",
			Phones:     []contactDatamodel.Point{{Value: "+62 811 1000 006", IsPrimary: true}},
			Categories: []string{"Vendor", "Supplier"}, Status: "inactive",
			LastInteraction: daysAgo(120),
		},
	}

	for _, c := range contacts {
		for _, name := range c.Categories {
			if !vocabulary.Contains(name) {
				return fmt.Errorf("contact %s %s uses unknown category %q", c.FirstName, c.LastName, name)
			}
		}
	}

	if err := db.Create(&contacts).Error; err != nil {
		return fmt.Errorf("failed to seed contacts: %w", err)
	}
	fmt.Printf("Seeded %d contacts\n", len(contacts))
	return nil
}
