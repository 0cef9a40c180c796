package handler

import (
	"errors"
	"net/http"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"relaychat/internal/app/user"
	"relaychat/internal/pkg/auth/jwt"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/req"
	"relaychat/internal/pkg/resp"
)

const (
	minPasswordBytes = 6

	// bcrypt ignores input beyond 72 bytes.
	maxPasswordBytes = 72
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// CredentialsInput is the request body for register and login.
type CredentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister creates an account and returns a bearer token for it.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, customErr := bindCredentials(w, r, deps)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		if len(input.Password) < minPasswordBytes || len(input.Password) > maxPasswordBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		created, err := deps.Users.Create(r.Context(), input.Username, string(hashedPassword))
		if err != nil {
			if errors.Is(err, user.ErrAlreadyExists) {
				logx.Warn("registration conflict: username already exists", "username", input.Username)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user in database")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		respondWithToken(w, r, deps, created.Username)
	}
}

// HandleLogin verifies credentials and issues a bearer token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, customErr := bindCredentials(w, r, deps)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		account, err := deps.Users.GetByUsername(r.Context(), input.Username)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				logx.Warn("login: unknown username", "username", input.Username)
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
				return
			}

			logx.Error(err, "login: user fetch failed", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		respondWithToken(w, r, deps, account.Username)
	}
}

// bindCredentials runs the checks shared by register and login.
func bindCredentials(w http.ResponseWriter, r *http.Request, deps *AppDeps) (CredentialsInput, *errs.CustomError) {
	var input CredentialsInput

	if deps.Users == nil {
		return input, errs.NewError(errs.ErrAuthUnavailable)
	}

	if payload := jwt.GetPayloadFromContext(r); payload != nil {
		return input, errs.NewError(errs.ErrAlreadyLoggedIn)
	}

	if customErr := req.BindJSON(w, r, &input); customErr != nil {
		return input, customErr
	}

	return input, nil
}

func respondWithToken(w http.ResponseWriter, r *http.Request, deps *AppDeps, username string) {
	token, err := jwt.GenerateToken(&jwt.Payload{Username: username}, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
	if err != nil {
		logx.Error(err, "jwt generation failed", "username", username)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	resp.RespondSuccess(w, r, map[string]any{
		"token":    token,
		"username": username,
	})
}
