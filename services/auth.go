package services

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"food-delivery-backend/apperr"
	"food-delivery-backend/config"
	"food-delivery-backend/models"
	"food-delivery-backend/validation"
)

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Email           string    `json:"email" validate:"required,email"`
	Password        string    `json:"password" validate:"required,min=6,password"`
	ConfirmPassword string    `json:"confirm_password" validate:"required,eqfield=Password"`
	FirstName       string    `json:"first_name" validate:"required,max=50"`
	LastName        string    `json:"last_name" validate:"required,max=50"`
	Address         string    `json:"address" validate:"required,max=200"`
	Phone           string    `json:"phone" validate:"required,phone"`
	DateOfBirth     time.Time `json:"date_of_birth" validate:"required,adult"`
}

// LoginInput is the payload for authenticating.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput is the payload for editing the caller's profile.
type UpdateProfileInput struct {
	FirstName   string    `json:"first_name" validate:"required,max=50"`
	LastName    string    `json:"last_name" validate:"required,max=50"`
	Address     string    `json:"address" validate:"required,max=200"`
	Phone       string    `json:"phone" validate:"required,phone"`
	DateOfBirth time.Time `json:"date_of_birth" validate:"required,adult"`
}

// AuthResult is returned by every successful auth operation.
type AuthResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// AuthService owns the session lifecycle: registration, login, refresh
// token rotation, revocation and pruning.
type AuthService struct {
	db     *gorm.DB
	tokens *TokenIssuer
	cfg    *config.JWTConfig
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, tokens *TokenIssuer, cfg *config.JWTConfig, log *zap.Logger) *AuthService {
	return &AuthService{
		db:     db,
		tokens: tokens,
		cfg:    cfg,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user with the default role, issues both tokens and
// persists the refresh token. A taken email is a validation error and
// leaves nothing behind.
func (s *AuthService) Register(in RegisterInput, ip string) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var existing models.User
	if err := s.db.Where("email = ?", in.Email).First(&existing).Error; err == nil {
		return nil, apperr.ValidationField("Email", "email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	refresh, err := s.tokens.RefreshToken(ip)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := models.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Address:      in.Address,
		Phone:        in.Phone,
		DateOfBirth:  in.DateOfBirth.UTC(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		role, err := findOrCreateRole(tx, models.RoleUser)
		if err != nil {
			return err
		}
		user.Roles = []models.Role{role}
		user.RefreshTokens = []models.RefreshToken{refresh}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	access, err := s.tokens.AccessToken(&user)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return &AuthResult{AccessToken: access, RefreshToken: refresh.Token, User: &user}, nil
}

// Login verifies credentials, prunes stale tokens and appends a fresh
// refresh token. Unknown email and bad password are logged distinctly
// but surface as the same auth error.
func (s *AuthService) Login(in LoginInput, ip string) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.Preload("Roles").Where("email = ?", in.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("login failed: unknown email", zap.String("email", in.Email))
			return nil, apperr.Auth("invalid credentials")
		}
		return nil, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		s.log.Warn("login failed: bad password", zap.Uint("user_id", user.ID))
		return nil, apperr.Auth("invalid credentials")
	}

	refresh, err := s.tokens.RefreshToken(ip)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refresh.UserID = user.ID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.pruneTokens(tx, user.ID); err != nil {
			return err
		}
		return tx.Create(&refresh).Error
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	access, err := s.tokens.AccessToken(&user)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info("user logged in", zap.Uint("user_id", user.ID))
	return &AuthResult{AccessToken: access, RefreshToken: refresh.Token, User: &user}, nil
}

// Refresh rotates a refresh token: the presented token is revoked with a
// forward pointer to its replacement and a new active token is stored.
// A token can be rotated at most once; presenting an already-rotated
// token fails because it is no longer active.
//
// Known race: two concurrent Refresh calls with the same token can both
// observe it active and both rotate; the last write wins. Closing this
// would take a per-user row lock or a version column on the token row.
func (s *AuthService) Refresh(token, ip string) (*AuthResult, error) {
	now := s.now()

	var current models.RefreshToken
	if err := s.db.Where("token = ?", token).First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("refresh failed: unknown token")
			return nil, apperr.Auth("invalid refresh token")
		}
		return nil, apperr.Internal(err)
	}
	if !current.Active(now) {
		s.log.Warn("refresh failed: inactive token", zap.Uint("user_id", current.UserID))
		return nil, apperr.Auth("refresh token is no longer active")
	}

	var user models.User
	if err := s.db.Preload("Roles").First(&user, current.UserID).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	replacement, err := s.tokens.RefreshToken(ip)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	replacement.UserID = user.ID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&replacement).Error; err != nil {
			return err
		}
		revoked := now
		updates := map[string]any{
			"revoked":           &revoked,
			"revoked_by_ip":     ip,
			"replaced_by_token": replacement.Token,
		}
		if err := tx.Model(&models.RefreshToken{}).Where("id = ?", current.ID).Updates(updates).Error; err != nil {
			return err
		}
		return s.pruneTokens(tx, user.ID)
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	access, err := s.tokens.AccessToken(&user)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info("refresh token rotated", zap.Uint("user_id", user.ID))
	return &AuthResult{AccessToken: access, RefreshToken: replacement.Token, User: &user}, nil
}

// Revoke marks a token revoked. It returns false when the token is
// unknown or already inactive, so a repeated revoke is a no-op failure.
func (s *AuthService) Revoke(token, ip string) (bool, error) {
	now := s.now()

	var current models.RefreshToken
	if err := s.db.Where("token = ?", token).First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperr.Internal(err)
	}
	if !current.Active(now) {
		return false, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		revoked := now
		updates := map[string]any{
			"revoked":       &revoked,
			"revoked_by_ip": ip,
		}
		if err := tx.Model(&models.RefreshToken{}).Where("id = ?", current.ID).Updates(updates).Error; err != nil {
			return err
		}
		return s.pruneTokens(tx, current.UserID)
	})
	if err != nil {
		return false, apperr.Internal(err)
	}

	s.log.Info("refresh token revoked", zap.Uint("user_id", current.UserID))
	return true, nil
}

// GetUser loads a user with roles.
func (s *AuthService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Roles").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Internal(err)
	}
	return &user, nil
}

// UpdateProfile edits the caller's profile fields. The date of birth is
// normalized to UTC before it is written.
func (s *AuthService) UpdateProfile(id uint, in UpdateProfileInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Address = in.Address
	user.Phone = in.Phone
	user.DateOfBirth = in.DateOfBirth.UTC()

	if err := s.db.Save(user).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// pruneTokens deletes tokens that are inactive and older than the
// retention window. Runs inside every token-set mutation so the
// collection cannot grow without bound while recently revoked tokens
// stay available for audit.
func (s *AuthService) pruneTokens(tx *gorm.DB, userID uint) error {
	now := s.now()
	cutoff := now.AddDate(0, 0, -s.cfg.RetentionDays)
	return tx.Where("user_id = ? AND (revoked IS NOT NULL OR expires <= ?) AND created <= ?",
		userID, now, cutoff).
		Delete(&models.RefreshToken{}).Error
}

func findOrCreateRole(tx *gorm.DB, name string) (models.Role, error) {
	var role models.Role
	err := tx.Where("name = ?", name).FirstOrCreate(&role, models.Role{Name: name}).Error
	return role, err
}
