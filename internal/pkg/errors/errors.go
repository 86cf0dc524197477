package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (нарушение уникальности,
	// недопустимый переход статуса сертификата).
	ErrConflict = errors.New("resource state conflict")

	// ErrNoAssessmentHistory - у пользователя нет ни одного результата, сертификат выдать нельзя.
	ErrNoAssessmentHistory = errors.New("no assessment history")

	// ErrCertificateIDCollision - повторная коллизия certificate_id после регенерации.
	// Запрос можно повторить.
	ErrCertificateIDCollision = fmt.Errorf("certificate identifier collision: %w", ErrConflict)
)

// FieldError описывает ошибку валидации конкретного поля
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError содержит ошибки по полям. errors.Is(err, ErrValidation) == true.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError создает ValidationError из набора ошибок полей
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

// Unwrap позволяет использовать errors.Is(err, ErrValidation)
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
