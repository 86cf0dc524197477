package service

import "errors"

// Ошибки сервисного слоя, не относящиеся к общим apperrors
var (
	// ErrInvalidCredentials - неверная пара username/password
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserInactive - учетная запись отключена
	ErrUserInactive = errors.New("user is inactive")
)
