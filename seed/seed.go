// Package seed fills the database with development data.
package seed

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"food-delivery-backend/models"
)

// Run inserts roles, demo users, categories, restaurants and menu items.
// Every step is idempotent so the seed can run on each boot.
func Run(db *gorm.DB, log *zap.Logger) error {
	if err := seedRoles(db); err != nil {
		return err
	}
	if err := seedUsers(db); err != nil {
		return err
	}
	if err := seedCatalog(db); err != nil {
		return err
	}
	log.Info("database seeded")
	return nil
}

func seedRoles(db *gorm.DB) error {
	for _, name := range []string{models.RoleAdmin, models.RoleUser, models.RoleRestaurant} {
		var role models.Role
		if err := db.Where("name = ?", name).FirstOrCreate(&role, models.Role{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedUsers(db *gorm.DB) error {
	users := []struct {
		email, password, first, last, role string
	}{
		{"admin@fooddelivery.com", "Admin123!", "Admin", "User", models.RoleAdmin},
		{"user@fooddelivery.com", "User123!", "Regular", "User", models.RoleUser},
	}

	for _, u := range users {
		var existing models.User
		err := db.Where("email = ?", u.email).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		var role models.Role
		if err := db.Where("name = ?", u.role).First(&role).Error; err != nil {
			return err
		}
		user := models.User{
			Email:        u.email,
			PasswordHash: string(hash),
			FirstName:    u.first,
			LastName:     u.last,
			Address:      "Main Street 1",
			Phone:        "+380501234567",
			DateOfBirth:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			Roles:        []models.Role{role},
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Restaurant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	pizza := models.Category{Name: "Pizza", Description: "Italian pizza"}
	sushi := models.Category{Name: "Sushi", Description: "Japanese rolls and nigiri"}
	burgers := models.Category{Name: "Burgers", Description: "Burgers and sides"}
	if err := db.Create(&[]*models.Category{&pizza, &sushi, &burgers}).Error; err != nil {
		return err
	}

	napoli := models.Restaurant{
		Name:        "Napoli House",
		Description: "Wood-fired pizza",
		Address:     "Khreshchatyk 12, Kyiv",
		Phone:       "+380441112233",
		Email:       "hello@napoli.example",
		Rating:      4.6,
		IsActive:    true,
	}
	tokyo := models.Restaurant{
		Name:        "Tokyo Garden",
		Description: "Sushi and ramen",
		Address:     "Soborna 3, Lviv",
		Phone:       "+380322223344",
		Email:       "info@tokyogarden.example",
		Rating:      4.8,
		IsActive:    true,
	}
	if err := db.Create(&[]*models.Restaurant{&napoli, &tokyo}).Error; err != nil {
		return err
	}

	items := []models.MenuItem{
		{Name: "Margherita", Description: "Tomato, mozzarella, basil", Price: 9.50, IsAvailable: true, CategoryID: pizza.ID, RestaurantID: napoli.ID},
		{Name: "Diavola", Description: "Spicy salami", Price: 11.00, IsAvailable: true, CategoryID: pizza.ID, RestaurantID: napoli.ID},
		{Name: "Philadelphia Roll", Description: "Salmon, cream cheese", Price: 12.00, IsAvailable: true, CategoryID: sushi.ID, RestaurantID: tokyo.ID},
		{Name: "Classic Burger", Description: "Beef, cheddar, pickles", Price: 8.00, IsAvailable: true, CategoryID: burgers.ID, RestaurantID: napoli.ID},
	}
	return db.Create(&items).Error
}
