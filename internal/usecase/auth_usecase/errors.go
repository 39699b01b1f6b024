package auth

import "authcore/internal/usecase"

var (
	// ログイン失敗。emailとpasswordのどちらが違うかは返さない
	ErrInvalidCredentials = usecase.NewAppError(usecase.KindUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	// Google連携アカウントにパスワードでログインしようとした
	ErrUseFederatedLogin = ErrInvalidCredentials.WithMessage("this account signs in with Google")

	ErrAccountDeactivated = usecase.NewAppError(usecase.KindForbidden, "ACCOUNT_DEACTIVATED", "account is deactivated")

	ErrDuplicateEmail    = usecase.NewAppError(usecase.KindConflict, "DUPLICATE_EMAIL", "email is already registered")
	ErrDuplicateUsername = usecase.NewAppError(usecase.KindConflict, "DUPLICATE_USERNAME", "username is already taken")
	// パスワードのみのアカウントと同じメールでGoogleログインしてきた
	ErrFederatedEmailConflict = usecase.NewAppError(usecase.KindConflict, "CONFLICT", "an account with this email already exists, sign in with your password")

	ErrUnauthorized = usecase.NewAppError(usecase.KindUnauthorized, "UNAUTHORIZED", "unauthorized")
	ErrMissingToken = ErrUnauthorized.WithMessage("authentication required")
	ErrInvalidToken = usecase.NewAppError(usecase.KindUnauthorized, "INVALID_TOKEN", "invalid token")
	ErrTokenExpired = usecase.NewAppError(usecase.KindUnauthorized, "TOKEN_EXPIRED", "token expired")

	ErrForbidden      = usecase.NewAppError(usecase.KindForbidden, "FORBIDDEN", "forbidden")
	ErrFederationOnly = ErrForbidden.WithMessage("password cannot be changed for a Google account")

	ErrUserNotFound = usecase.NewAppError(usecase.KindNotFound, "NOT_FOUND", "user not found")

	ErrInvalidAuthorizationCode = usecase.NewAppError(usecase.KindValidation, "INVALID_INPUT", "authorization code is invalid")
	ErrRoleNotAllowed           = usecase.ErrValidation.WithMessage("role cannot be requested")
)
