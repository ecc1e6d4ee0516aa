package httputil

// Machine-readable reason codes carried alongside error messages.
// Clients branch on these, not on the human-readable text.
const (
	CodeNotLoggedIn        = "UserNotLoggedIn"
	CodeInvalidCredentials = "InvalidCredentials"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
)
