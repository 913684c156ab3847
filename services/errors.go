package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed           = errors.New("validation failed")
	ErrPlayerNameRequired         = errors.New("player full name is required")
	ErrPlayerEmailInvalid         = errors.New("player email is invalid")
	ErrTournamentNameRequired     = errors.New("tournament name is required")
	ErrTournamentInvalidDateRange = errors.New("tournament end date must be after start date")
	ErrMatchInvalidStatus         = errors.New("invalid match status provided")
	ErrMatchTeamsRequired         = errors.New("both team names are required")
	ErrFixtureGroupRequired       = errors.New("fixture group id is required")
	ErrTimeoutNotAllowed          = errors.New("timeout can only be started on a live match")
	ErrTimeoutTeamRequired        = errors.New("timeout team is required")
	ErrDRSVideoURLRequired        = errors.New("drs video url is required to activate replay")
	ErrMediaInvalidType           = errors.New("media type must be video or image")
	ErrMediaURLRequired           = errors.New("media url is required")
	ErrInvalidDisplayDate         = errors.New("display date must be in YYYY-MM-DD format")

	// Ошибки конфликтов
	ErrPlayerEmailConflict    = errors.New("player email is already registered")
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrPlayerNotFound           = errors.New("player not found")
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrMatchNotFound            = errors.New("match not found")
	ErrMediaItemNotFound        = errors.New("media item not found")
	ErrSponsorNotFound          = errors.New("sponsor not found")
	ErrDisplaySelectionNotFound = errors.New("display selection not found")
	ErrUserNotFound             = errors.New("user not found")
)
