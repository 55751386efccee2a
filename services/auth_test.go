package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-delivery-backend/apperr"
	"food-delivery-backend/models"
)

func TestRegisterIssuesBothTokens(t *testing.T) {
	svc, db := newTestAuthService(t)

	result, err := svc.Register(validRegisterInput("olena@example.com"), "10.0.0.1")
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	require.NotNil(t, result.User)
	assert.Equal(t, []string{models.RoleUser}, result.User.RoleNames())

	var stored models.RefreshToken
	require.NoError(t, db.Where("user_id = ?", result.User.ID).First(&stored).Error)
	assert.Equal(t, result.RefreshToken, stored.Token)
	assert.Equal(t, "10.0.0.1", stored.CreatedByIP)
	assert.True(t, stored.Active(time.Now().UTC()))
}

func TestRegisterNormalizesDateOfBirthToUTC(t *testing.T) {
	svc, db := newTestAuthService(t)

	kyiv := time.FixedZone("EET", 2*60*60)
	in := validRegisterInput("tz@example.com")
	in.DateOfBirth = time.Date(1990, 5, 10, 0, 0, 0, 0, kyiv)

	result, err := svc.Register(in, "10.0.0.1")
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user, result.User.ID).Error)
	assert.Equal(t, time.UTC, result.User.DateOfBirth.Location())
	assert.True(t, user.DateOfBirth.Equal(in.DateOfBirth))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, db := newTestAuthService(t)

	_, err := svc.Register(validRegisterInput("taken@example.com"), "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.Register(validRegisterInput("taken@example.com"), "10.0.0.1")
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "Email")

	var users int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "taken@example.com").Count(&users).Error)
	assert.Equal(t, int64(1), users, "second register must not create a user")

	var tokens int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&tokens).Error)
	assert.Equal(t, int64(1), tokens, "second register must not create a token")
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	in := validRegisterInput("weak@example.com")
	in.Password = "password"
	in.ConfirmPassword = "password"

	_, err := svc.Register(in, "10.0.0.1")
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "Password")
}

func TestLoginAppendsExactlyOneActiveToken(t *testing.T) {
	svc, db := newTestAuthService(t)

	reg, err := svc.Register(validRegisterInput("login@example.com"), "10.0.0.1")
	require.NoError(t, err)
	before := len(activeTokens(t, db, reg.User.ID))

	result, err := svc.Login(LoginInput{Email: "login@example.com", Password: "Password1!"}, "10.0.0.2")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEqual(t, reg.RefreshToken, result.RefreshToken)

	after := activeTokens(t, db, reg.User.ID)
	assert.Len(t, after, before+1)
}

func TestLoginFailuresAreAuthErrors(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(validRegisterInput("known@example.com"), "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.Login(LoginInput{Email: "unknown@example.com", Password: "Password1!"}, "10.0.0.1")
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindAuth, appErr.Kind)

	_, err = svc.Login(LoginInput{Email: "known@example.com", Password: "WrongPass1!"}, "10.0.0.1")
	appErr, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindAuth, appErr.Kind)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, db := newTestAuthService(t)

	reg, err := svc.Register(validRegisterInput("rotate@example.com"), "10.0.0.1")
	require.NoError(t, err)

	result, err := svc.Refresh(reg.RefreshToken, "10.0.0.9")
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, result.RefreshToken)

	var old models.RefreshToken
	require.NoError(t, db.Where("token = ?", reg.RefreshToken).First(&old).Error)
	require.NotNil(t, old.Revoked)
	assert.Equal(t, "10.0.0.9", old.RevokedByIP)
	assert.Equal(t, result.RefreshToken, old.ReplacedByToken, "rotation chain must point at the successor")
	assert.False(t, old.Active(time.Now().UTC()))

	var replacement models.RefreshToken
	require.NoError(t, db.Where("token = ?", result.RefreshToken).First(&replacement).Error)
	assert.True(t, replacement.Active(time.Now().UTC()))
}

func TestRefreshSecondUseFails(t *testing.T) {
	svc, _ := newTestAuthService(t)

	reg, err := svc.Register(validRegisterInput("double@example.com"), "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.Refresh(reg.RefreshToken, "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.Refresh(reg.RefreshToken, "10.0.0.1")
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindAuth, appErr.Kind)
}

func TestRefreshUnknownTokenFails(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Refresh("no-such-token", "10.0.0.1")
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindAuth, appErr.Kind)
}

func TestRevokeIsFalseOnRepeat(t *testing.T) {
	svc, db := newTestAuthService(t)

	reg, err := svc.Register(validRegisterInput("revoke@example.com"), "10.0.0.1")
	require.NoError(t, err)

	ok, err := svc.Revoke(reg.RefreshToken, "10.0.0.5")
	require.NoError(t, err)
	assert.True(t, ok)

	var stored models.RefreshToken
	require.NoError(t, db.Where("token = ?", reg.RefreshToken).First(&stored).Error)
	require.NotNil(t, stored.Revoked)
	assert.Equal(t, "10.0.0.5", stored.RevokedByIP)
	assert.False(t, stored.Active(time.Now().UTC()))

	ok, err = svc.Revoke(reg.RefreshToken, "10.0.0.5")
	require.NoError(t, err)
	assert.False(t, ok, "revoking an inactive token must report false")

	ok, err = svc.Revoke("never-issued", "10.0.0.5")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPruningRemovesOnlyStaleInactiveTokens(t *testing.T) {
	svc, db := newTestAuthService(t)

	reg, err := svc.Register(validRegisterInput("prune@example.com"), "10.0.0.1")
	require.NoError(t, err)
	userID := reg.User.ID

	now := time.Now().UTC()
	revokedLongAgo := now.AddDate(0, 0, -30)

	// Inactive and past retention: must be pruned.
	stale := models.RefreshToken{
		UserID:  userID,
		Token:   "stale-token",
		Created: now.AddDate(0, 0, -30),
		Expires: now.AddDate(0, 0, -23),
		Revoked: &revokedLongAgo,
	}
	// Inactive but recent: kept for revocation audit.
	recentRevoked := now.Add(-time.Hour)
	fresh := models.RefreshToken{
		UserID:  userID,
		Token:   "recently-revoked-token",
		Created: now.Add(-time.Hour),
		Expires: now.AddDate(0, 0, 7),
		Revoked: &recentRevoked,
	}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&fresh).Error)

	// Any token-set mutation triggers pruning.
	_, err = svc.Login(LoginInput{Email: "prune@example.com", Password: "Password1!"}, "10.0.0.1")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Where("token = ?", "stale-token").Count(&count).Error)
	assert.Equal(t, int64(0), count, "stale inactive token should be pruned")

	require.NoError(t, db.Model(&models.RefreshToken{}).Where("token = ?", "recently-revoked-token").Count(&count).Error)
	assert.Equal(t, int64(1), count, "recently revoked token stays within retention")

	require.NoError(t, db.Model(&models.RefreshToken{}).Where("token = ?", reg.RefreshToken).Count(&count).Error)
	assert.Equal(t, int64(1), count, "active token must never be pruned")
}

func TestUpdateProfileNormalizesDateOfBirth(t *testing.T) {
	svc, _ := newTestAuthService(t)

	reg, err := svc.Register(validRegisterInput("profile@example.com"), "10.0.0.1")
	require.NoError(t, err)

	kyiv := time.FixedZone("EET", 2*60*60)
	updated, err := svc.UpdateProfile(reg.User.ID, UpdateProfileInput{
		FirstName:   "Inna",
		LastName:    "Koval",
		Address:     "New Street 2",
		Phone:       "+380671112233",
		DateOfBirth: time.Date(1985, 3, 2, 12, 0, 0, 0, kyiv),
	})
	require.NoError(t, err)
	assert.Equal(t, "Inna", updated.FirstName)
	assert.Equal(t, time.UTC, updated.DateOfBirth.Location())
}

func TestGetUserNotFound(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.GetUser(999)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)
}
