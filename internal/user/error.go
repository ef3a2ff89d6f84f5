package user

import "procurement-be/internal/apperr"

var (
	ErrEmailExists         = apperr.New(apperr.KindConflict, "user with this email already exists")
	ErrInvalidCredentials  = apperr.New(apperr.KindUnauthorized, "invalid email or password")
	ErrMissingCredentials  = apperr.New(apperr.KindValidation, `Fields "email" and "password" are required`)
	ErrInvalidEmail        = apperr.New(apperr.KindValidation, "Enter a valid email address.")
	ErrPasswordTooShort    = apperr.New(apperr.KindValidation, "Password must contain at least 8 characters.")
	ErrRoleNotRegistrable  = apperr.New(apperr.KindValidation, `Field "type" must be "purchaser" or "supplier"`)
	ErrUserNotFound        = apperr.New(apperr.KindNotFound, "Not found.")
	ErrInvalidToken        = apperr.New(apperr.KindUnauthorized, "Invalid token.")
	ErrMissingTokenSecret  = apperr.New(apperr.KindInternal, "jwt secret is not set")
	ErrUnexpectedSigMethod = apperr.New(apperr.KindUnauthorized, "Invalid token.")
)
