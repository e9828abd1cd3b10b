package repositories

import (
	"errors"
	"time"

	"japa_backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	Create(db *gorm.DB, user *models.User) error
	Update(db *gorm.DB, user *models.User) error
	GetOrCreateByEmail(db *gorm.DB, candidate *models.User) (*models.User, bool, error)
	UpdateStripeCustomerID(db *gorm.DB, userID, customerID string) error
	UpdatePassword(db *gorm.DB, userID, passwordHash string) error
	UpdateLastLogin(db *gorm.DB, userID string, at time.Time) error
	List(db *gorm.DB, limit, offset int) ([]models.User, int64, error)
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	err := db.Create(user).Error
	if isDuplicateKey(err) {
		return ErrUserAlreadyExists
	}
	return err
}

func (r *UserRepositoryImpl) Update(db *gorm.DB, user *models.User) error {
	result := db.Save(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetOrCreateByEmail inserts the candidate user, and when the email is
// already taken re-fetches the existing row instead. The unique index on
// email makes this safe under concurrent finalizations: exactly one insert
// wins, everyone else resolves to the same row. The bool reports whether a
// new row was created.
func (r *UserRepositoryImpl) GetOrCreateByEmail(db *gorm.DB, candidate *models.User) (*models.User, bool, error) {
	err := db.Create(candidate).Error
	if err == nil {
		return candidate, true, nil
	}
	if !isDuplicateKey(err) {
		return nil, false, err
	}

	existing, ferr := r.FindByEmail(db, candidate.Email)
	if ferr != nil {
		return nil, false, ferr
	}
	return existing, false, nil
}

func (r *UserRepositoryImpl) UpdateStripeCustomerID(db *gorm.DB, userID, customerID string) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).
		Update("stripe_customer_id", customerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdatePassword(db *gorm.DB, userID, passwordHash string) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdateLastLogin(db *gorm.DB, userID string, at time.Time) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).
		Update("last_login_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) List(db *gorm.DB, limit, offset int) ([]models.User, int64, error) {
	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

// isDuplicateKey recognizes unique-constraint violations from both the gorm
// error translator and the raw postgres driver.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
