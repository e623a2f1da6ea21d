package v0_rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialfeed/server/pkg/structs"
	"github.com/socialfeed/server/pkg/users"
)

func AuthRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Post("/login", login)
	r.Post("/register", register)
	r.Post("/logout", logout)

	return r
}

func login(w http.ResponseWriter, r *http.Request) {
	// Decode body
	var body LoginReq
	if !decodeBody(w, r, &body) {
		return
	}

	// IP Ratelimit
	if !checkRatelimit(w, r, "login", "ip", r.RemoteAddr, 30, 900) {
		return
	}

	// Check credentials
	account, user, err := users.Authenticate(r.Context(), body.Username, body.Password)
	if err == users.ErrInvalidCredentials {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, map[string]string{
			"username": "Incorrect username/password.",
			"password": "Incorrect username/password.",
		})
		return
	} else if err != nil {
		returnInternal(w, r, err)
		return
	}

	// Check MFA
	if len(account.Authenticators) > 0 {
		if body.TotpCode == "" {
			returnData(w, http.StatusUnauthorized, ErrResp{
				Error:      true,
				Type:       ErrMFARequired.Error(),
				MFAMethods: account.MfaMethods(),
			})
			return
		}
		if !account.CheckTotp(body.TotpCode) {
			returnErr(w, http.StatusUnauthorized, ErrInvalidTOTPCode, map[string]string{
				"totp_code": "Incorrect TOTP code.",
			})
			return
		}
	}

	returnSession(w, r, user)
}

func register(w http.ResponseWriter, r *http.Request) {
	// Decode body
	var body RegisterReq
	if !decodeBody(w, r, &body) {
		return
	}

	if !registrationEnabled(r) {
		returnErr(w, http.StatusForbidden, ErrMissingPermissions, nil)
		return
	}

	// Check IP ratelimit
	if ratelimited(r.Context(), "register_fail", "ip", r.RemoteAddr) || ratelimited(r.Context(), "register_success", "ip", r.RemoteAddr) {
		returnErr(w, http.StatusTooManyRequests, ErrRatelimited, nil)
		return
	}

	// Create account
	_, user, err := users.CreateAccount(r.Context(), body.Username, body.Password, body.Name, body.Email)
	if err != nil {
		ratelimit(r.Context(), w, "register_fail", "ip", r.RemoteAddr, 5, 30)
		if err == users.ErrUsernameTaken {
			returnErr(w, http.StatusConflict, ErrUsernameExists, map[string]string{
				"username": "Username already taken.",
			})
		} else {
			returnInternal(w, r, err)
		}
		return
	}

	// Success ratelimit
	ratelimit(r.Context(), w, "register_success", "ip", r.RemoteAddr, 3, 900)

	returnSession(w, r, user)
}

func logout(w http.ResponseWriter, r *http.Request) {
	session := getAuthedSession(r)
	if session == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	if err := session.Revoke(r.Context()); err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, BaseResp{})
}

func returnSession(w http.ResponseWriter, r *http.Request, user users.User) {
	// Create session
	session, err := users.CreateAccSession(r.Context(), user.Id, r.RemoteAddr, r.Header.Get("User-Agent"))
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	// Get session token
	token, err := session.Token()
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, AuthResp{
		Account: privateV0(&user),
		Session: session.V0(),
		Token:   token,
	})
}

// privateV0 includes the fields only the user themselves may see.
func privateV0(user *users.User) structs.V0User {
	v0 := user.V0()
	if user.Email != "" {
		email := user.Email
		v0.Email = &email
	}
	return v0
}
