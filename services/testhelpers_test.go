package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"food-delivery-backend/config"
	"food-delivery-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:        "test-secret",
		Issuer:        "food-delivery-backend",
		Audience:      "food-delivery-clients",
		AccessMinutes: 15,
		RefreshDays:   7,
		RetentionDays: 7,
	}
}

func newTestAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	cfg := testJWTConfig()
	return NewAuthService(db, NewTokenIssuer(cfg), cfg, zap.NewNop()), db
}

func validRegisterInput(email string) RegisterInput {
	return RegisterInput{
		Email:           email,
		Password:        "Password1!",
		ConfirmPassword: "Password1!",
		FirstName:       "Olena",
		LastName:        "Shevchenko",
		Address:         "Main Street 1",
		Phone:           "+380501234567",
		DateOfBirth:     time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func activeTokens(t *testing.T, db *gorm.DB, userID uint) []models.RefreshToken {
	t.Helper()
	var tokens []models.RefreshToken
	require.NoError(t, db.Where("user_id = ?", userID).Find(&tokens).Error)
	now := time.Now().UTC()
	var active []models.RefreshToken
	for _, tok := range tokens {
		if tok.Active(now) {
			active = append(active, tok)
		}
	}
	return active
}
