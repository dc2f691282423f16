package services

import "errors"

// Ошибки сервисного слоя. Каждая соответствует одному HTTP-статусу в handlers.
var (
	// Аутентификация и авторизация
	ErrInvalidCredentials           = errors.New("invalid credentials")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrExpiredToken                 = errors.New("expired token")
	ErrUnauthorizedAccessToAdminAPI = errors.New("unauthorized access to admin API")
	ErrUserNotFound                 = errors.New("user not found")

	// Ресурс не найден
	ErrBetNotFound   = errors.New("bet not found")
	ErrGroupNotFound = errors.New("group not found")
	ErrPhaseNotFound = errors.New("phase not found")
	ErrTeamNotFound  = errors.New("team not found")
	ErrMatchNotFound = errors.New("match not found")
	ErrRuleNotFound  = errors.New("rule not found")

	// Невалидные входные данные
	ErrValidationFailed                = errors.New("request validation failed")
	ErrInvalidTeamID                   = errors.New("invalid team id")
	ErrUnsatisfiedPasswordRequirements = errors.New("password does not satisfy requirements")

	// Состояние
	ErrLockedBets            = errors.New("cannot modify bets because the locking date is exceeded")
	ErrNameAlreadyExists     = errors.New("name already exists")
	ErrNoResultsForAdminUser = errors.New("no results for admin user")
	ErrNoAdminUser           = errors.New("no admin user found")
)
