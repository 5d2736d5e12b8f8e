package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping. The
// handlers translate these with errors.Is, so wrap them rather than
// replacing them when adding context.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business-rule errors
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrBracketTypeInvalid     = errors.New("bracket type must be 'Round Robin' or 'Elimination'")
	ErrBracketTooFewTeams     = errors.New("bracket requires at least 2 teams")
	ErrBracketDuplicateTeams  = errors.New("bracket cannot contain duplicate teams")
	ErrBracketUnknownTeams    = errors.New("bracket teams must belong to the tournament")
	ErrTournamentNotStarted   = errors.New("tournament has not started")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrOutcomeIncomplete      = errors.New("outcome must specify a winner and a loser")
	ErrOutcomeParticipants    = errors.New("outcome winner and loser must be participants of the match")
	ErrStatFieldsMissing      = errors.New("outcome must provide all stat fields required by the tournament")
	ErrBracketNotFinished     = errors.New("bracket has undecided matches")

	// Conflict errors
	ErrOutcomeAlreadySet = errors.New("final outcome is already set for this match")
	ErrUsernameConflict  = errors.New("username is already taken")
	ErrTeamNameConflict  = errors.New("team name is already in use")

	// Authentication and authorization errors
	ErrAuthInvalidCredentials = errors.New("invalid username or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrAdminOnly              = errors.New("only the tournament admin can perform this action")
	ErrCaptainOnly            = errors.New("only a captain of a participating team can perform this action")

	// Entity-specific not-found errors
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrBracketNotFound    = errors.New("bracket not found")
	ErrMatchNotFound      = errors.New("match not found")
)
