package services

import (
	"errors"
	"fmt"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed                  = errors.New("validation failed")
	ErrTeamNameRequired                  = errors.New("team name is required")
	ErrTeamNameTooLong                   = errors.New("team name is too long")
	ErrTooManyPlayers                    = errors.New("players exceed the tournament team size")
	ErrDuplicatePlayers                  = errors.New("players must not contain duplicates")
	ErrUnknownPlayer                     = errors.New("players reference an unknown user")
	ErrSelfInvite                        = errors.New("captain cannot invite themselves")
	ErrInvalidRole                       = errors.New("invalid user role")
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentInvalidSchedule         = errors.New("registration deadline must be after the opening time")
	ErrInvalidBanner                     = errors.New("banner must be a png, jpeg or webp image up to 5 MiB")

	// Ошибки конфликтов
	ErrTeamNameConflict         = errors.New("team name is already taken in this tournament")
	ErrInviteConflict           = errors.New("this player has already been invited to the team")
	ErrInviteAlreadyResolved    = errors.New("invite has already been answered")
	ErrAlreadyOnTeam            = errors.New("user is already a member of this team")
	ErrTournamentStatusConflict = errors.New("tournament status was changed by another request")

	// Нехватка мест
	ErrCapacityExceeded   = errors.New("tournament is full or not accepting registrations")
	ErrTournamentFull     = fmt.Errorf("%w: all slots are taken", ErrCapacityExceeded)
	ErrRegistrationClosed = fmt.Errorf("%w: registration is closed", ErrCapacityExceeded)
	ErrTeamFull           = errors.New("team has no free seats")

	// Ошибки аутентификации и авторизации
	ErrUnauthorized   = errors.New("authentication required")
	ErrForbidden      = errors.New("operation not allowed for the current user")
	ErrNotTeamCaptain = errors.New("only the team captain can perform this action")
	ErrSelfAction     = errors.New("super admins cannot perform this action on themselves")

	// Ошибки, специфичные для сущностей (могут дублировать ErrNotFound, но дают больше контекста)
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrInviteNotFound     = errors.New("invite not found")

	ErrFeatureDisabled = errors.New("feature is not configured on this server")
)
