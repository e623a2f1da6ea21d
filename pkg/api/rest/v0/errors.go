package v0_rest

import "errors"

var (
	ErrBadRequest         = errors.New("badRequest")         // 400
	ErrUnauthorized       = errors.New("Unauthorized")       // 401
	ErrInvalidTOTPCode    = errors.New("invalidTOTPCode")    // 401
	ErrMFARequired        = errors.New("mfaRequired")        // 403
	ErrIPBlocked          = errors.New("ipBlocked")          // 403
	ErrMissingPermissions = errors.New("missingPermissions") // 403
	ErrNotFound           = errors.New("notFound")           // 404
	ErrUsernameExists     = errors.New("usernameExists")     // 409
	ErrTooLarge           = errors.New("tooLarge")           // 413
	ErrRatelimited        = errors.New("tooManyRequests")    // 429
	ErrInternal           = errors.New("Internal")           // 500
	ErrUpstream           = errors.New("upstreamFailed")     // 502
)
