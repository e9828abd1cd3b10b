package repositories

import (
	"errors"

	"japa_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository interface {
	Create(db *gorm.DB, payment *models.Payment) error
	FindBySessionID(db *gorm.DB, sessionID string) (*models.Payment, error)
	FindByPaymentIntentID(db *gorm.DB, paymentIntentID string) (*models.Payment, error)
	FindByTransactionID(db *gorm.DB, transactionID string) (*models.Payment, error)
	HasSucceededForUser(db *gorm.DB, userID string) (bool, error)
	Save(db *gorm.DB, payment *models.Payment) error
	ListByUserID(db *gorm.DB, userID string) ([]models.Payment, error)
}

type PaymentRepositoryImpl struct{}

func NewPaymentRepository() PaymentRepository {
	return &PaymentRepositoryImpl{}
}

func (r *PaymentRepositoryImpl) Create(db *gorm.DB, payment *models.Payment) error {
	return db.Create(payment).Error
}

func (r *PaymentRepositoryImpl) FindBySessionID(db *gorm.DB, sessionID string) (*models.Payment, error) {
	var payment models.Payment
	err := db.First(&payment, "stripe_session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindByPaymentIntentID(db *gorm.DB, paymentIntentID string) (*models.Payment, error) {
	var payment models.Payment
	err := db.First(&payment, "payment_intent_id = ?", paymentIntentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindByTransactionID(db *gorm.DB, transactionID string) (*models.Payment, error) {
	var payment models.Payment
	err := db.First(&payment, "transaction_id = ?", transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// HasSucceededForUser reports whether the user already has a successful
// registration payment. Used to reject duplicate checkouts.
func (r *PaymentRepositoryImpl) HasSucceededForUser(db *gorm.DB, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.Payment{}).
		Where("user_id = ? AND status = ?", userID, models.PaymentStatusSucceeded).
		Count(&count).Error
	return count > 0, err
}

func (r *PaymentRepositoryImpl) Save(db *gorm.DB, payment *models.Payment) error {
	return db.Save(payment).Error
}

func (r *PaymentRepositoryImpl) ListByUserID(db *gorm.DB, userID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}
