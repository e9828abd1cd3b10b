package apperrors

// Error codes grouped by domain.
const (
	// Authentication and authorization
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	// Validation
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	CodeWeakPassword     ErrorCode = "WEAK_PASSWORD"

	// Resources
	CodeUserNotFound        ErrorCode = "USER_NOT_FOUND"
	CodePaymentNotFound     ErrorCode = "PAYMENT_NOT_FOUND"
	CodeSessionNotFound     ErrorCode = "SESSION_NOT_FOUND"
	CodeApplicationNotFound ErrorCode = "APPLICATION_NOT_FOUND"
	CodeModuleNotFound      ErrorCode = "MODULE_NOT_FOUND"

	// Business logic
	CodeEmailAlreadyExists   ErrorCode = "EMAIL_ALREADY_EXISTS"
	CodeAlreadyPaid          ErrorCode = "ALREADY_PAID"
	CodePaymentPending       ErrorCode = "PAYMENT_PENDING"
	CodePaymentNotCompleted  ErrorCode = "PAYMENT_NOT_COMPLETED"
	CodeUnknownPaymentStatus ErrorCode = "UNKNOWN_PAYMENT_STATUS"
	CodeInvalidTransition    ErrorCode = "INVALID_STATUS_TRANSITION"
	CodeInvalidSignature     ErrorCode = "INVALID_SIGNATURE"

	// System errors
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
)
