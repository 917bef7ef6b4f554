package database

import (
	"fmt"
	"log"
	"os"

	"github.com/derstakip/api/model"
	"github.com/derstakip/api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	if err := s.SeedDemoUser(); err != nil {
		return fmt.Errorf("failed to seed demo user: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedDemoUser creates a demo account with the basic course catalog.
// Credentials come from DEMO_EMAIL / DEMO_PASSWORD; skipped when unset.
func (s *Seeder) SeedDemoUser() error {
	demoEmail := os.Getenv("DEMO_EMAIL")
	demoPassword := os.Getenv("DEMO_PASSWORD")

	if demoEmail == "" || demoPassword == "" {
		log.Println("⚠️  DEMO_EMAIL and DEMO_PASSWORD environment variables not set, skipping demo user creation")
		return nil
	}

	var count int64
	if err := s.db.Model(&model.User{}).Where("email = ?", demoEmail).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Demo user already exists, skipping...")
		return nil
	}

	passwordHash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	user := model.User{
		Email:        demoEmail,
		PasswordHash: passwordHash,
		Name:         "Demo",
	}
	if err := s.db.Create(&user).Error; err != nil {
		return err
	}

	courses := make([]model.Course, 0, len(model.BasicCourses))
	for _, basic := range model.BasicCourses {
		courses = append(courses, model.Course{
			UserID: user.ID,
			Title:  basic.Title,
			Color:  basic.Color,
		})
	}
	if err := s.db.Create(&courses).Error; err != nil {
		return err
	}

	log.Printf("✅ Created demo user %s with %d courses", demoEmail, len(courses))
	return nil
}
