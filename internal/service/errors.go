package service

type ErrorCode string

const (
	ErrorCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrorCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrorCodeInvalidBody   ErrorCode = "INVALID_BODY"
	ErrorCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrorCodeNotOnTeam     ErrorCode = "NOT_ON_TEAM"
	ErrorCodeTeamExists    ErrorCode = "TEAM_EXISTS"
	ErrorCodeInviteInvalid ErrorCode = "INVITE_INVALID"
	ErrorCodeCarpoolFull   ErrorCode = "CARPOOL_FULL"
	ErrorCodeAlreadyRiding ErrorCode = "ALREADY_RIDING"
	ErrorCodeDriverJoin    ErrorCode = "DRIVER_CANNOT_JOIN"
	ErrorCodeNotRiding     ErrorCode = "NOT_RIDING"
	ErrorCodeUnspecified   ErrorCode = "UNSPECIFIED"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func (e *Error) Error() string {
	return e.Message
}
