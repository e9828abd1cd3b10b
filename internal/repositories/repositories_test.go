package repositories

import (
	"fmt"
	"testing"
	"time"

	"japa_backend/database"
	"japa_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func futureExpiry() time.Time {
	return time.Now().Add(24 * time.Hour)
}

func testUser(email string) *models.User {
	return &models.User{
		FriendlyID:   fmt.Sprintf("USR-%06d", len(email)*7919%1000000),
		Email:        email,
		PasswordHash: "x",
		FullName:     "Test User",
		Role:         models.UserRoleUser,
	}
}

func TestUserRepositoryCreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository()

	user := testUser("jane@example.com")
	require.NoError(t, repo.Create(db, user))
	require.NotEmpty(t, user.ID)

	found, err := repo.FindByEmail(db, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail(db, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository()

	require.NoError(t, repo.Create(db, testUser("dup@example.com")))

	again := testUser("dup@example.com")
	again.FriendlyID = "USR-999999"
	err := repo.Create(db, again)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestGetOrCreateByEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository()

	first := testUser("race@example.com")
	got, created, err := repo.GetOrCreateByEmail(db, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, first.ID, got.ID)

	// A second resolution for the same email must land on the winner's
	// row instead of erroring out.
	second := testUser("race@example.com")
	second.FriendlyID = "USR-111111"
	got2, created2, err := repo.GetOrCreateByEmail(db, second)
	require.NoError(t, err)
	assert.False(t, created2)
	assert.Equal(t, first.ID, got2.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "race@example.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApplicationCreateDuplicateSession(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewUserRepository()
	appRepo := NewApplicationRepository()

	user := testUser("applicant@example.com")
	require.NoError(t, userRepo.Create(db, user))

	sessionID := "cs_test_dup"
	first := &models.Application{
		ApplicationID:   "APP-000001",
		UserID:          user.ID,
		ModuleID:        5,
		SourceSessionID: &sessionID,
		Status:          models.ApplicationStatusUnderReview,
	}
	require.NoError(t, appRepo.Create(db, first))

	dup := &models.Application{
		ApplicationID:   "APP-000002",
		UserID:          user.ID,
		ModuleID:        5,
		SourceSessionID: &sessionID,
		Status:          models.ApplicationStatusUnderReview,
	}
	err := appRepo.Create(db, dup)
	require.ErrorIs(t, err, ErrApplicationExists)

	found, err := appRepo.FindBySourceSessionID(db, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "APP-000001", found.ApplicationID)

	var count int64
	require.NoError(t, db.Model(&models.Application{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestTokenRepositoryReplace(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewUserRepository()
	tokenRepo := NewTokenRepository()

	user := testUser("token@example.com")
	require.NoError(t, userRepo.Create(db, user))

	old := &models.PasswordResetToken{
		Token:     "old-token",
		UserID:    user.ID,
		ExpiresAt: futureExpiry(),
	}
	require.NoError(t, tokenRepo.Replace(db, old))

	fresh := &models.PasswordResetToken{
		Token:     "fresh-token",
		UserID:    user.ID,
		ExpiresAt: futureExpiry(),
	}
	require.NoError(t, tokenRepo.Replace(db, fresh))

	// Only the most recently issued token is redeemable.
	_, err := tokenRepo.FindValidByToken(db, "old-token")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	found, err := tokenRepo.FindValidByToken(db, "fresh-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)
	require.NotNil(t, found.User)
	assert.Equal(t, user.Email, found.User.Email)
}

func TestPaymentRepositoryHasSucceededForUser(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewUserRepository()
	paymentRepo := NewPaymentRepository()

	user := testUser("payer@example.com")
	require.NoError(t, userRepo.Create(db, user))

	pending := &models.Payment{
		StripeSessionID: "cs_pending",
		UserID:          &user.ID,
		Amount:          15,
		Currency:        "USD",
		Status:          models.PaymentStatusPending,
	}
	require.NoError(t, paymentRepo.Create(db, pending))

	paid, err := paymentRepo.HasSucceededForUser(db, user.ID)
	require.NoError(t, err)
	assert.False(t, paid)

	succeeded := &models.Payment{
		StripeSessionID: "cs_paid",
		UserID:          &user.ID,
		Amount:          15,
		Currency:        "USD",
		Status:          models.PaymentStatusSucceeded,
	}
	require.NoError(t, paymentRepo.Create(db, succeeded))

	paid, err = paymentRepo.HasSucceededForUser(db, user.ID)
	require.NoError(t, err)
	assert.True(t, paid)
}
