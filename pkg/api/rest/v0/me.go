package v0_rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialfeed/server/pkg/emails"
	"github.com/socialfeed/server/pkg/events"
	"github.com/socialfeed/server/pkg/structs"
	"github.com/socialfeed/server/pkg/users"
)

func MeRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/", getMe)
	r.Patch("/", updateMe)
	r.Patch("/password", changePassword)
	r.Route("/authenticators", func(r chi.Router) {
		r.Get("/", getAuthenticators)
		r.Post("/", addAuthenticator)
		r.Delete("/{authenticatorId}", removeAuthenticator)
		r.Get("/totp-secret", getNewTotpSecret)
	})

	return r
}

func getMe(w http.ResponseWriter, r *http.Request) {
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	returnData(w, http.StatusOK, MeResp{
		V0User: privateV0(user),
	})
}

func updateMe(w http.ResponseWriter, r *http.Request) {
	// Decode body
	var body UpdateMeReq
	if !decodeBody(w, r, &body) {
		return
	}

	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Update profile
	if err := user.Update(r.Context(), users.UserUpdate{
		Name:   body.Name,
		Email:  body.Email,
		Avatar: body.Avatar,
	}); err != nil {
		returnInternal(w, r, err)
		return
	}
	users.Profiles.Forget(user.Id)
	events.Emit(r.Context(), events.OpUpdateUser, &events.UpdateUser{User: user.V0()})

	returnData(w, http.StatusOK, MeResp{
		V0User: privateV0(user),
	})
}

func changePassword(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Decode body
	var body ChangePasswordReq
	if !decodeBody(w, r, &body) {
		return
	}

	// Get account
	account, err := users.GetAccount(r.Context(), user.Id)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	// Check old password
	if err := account.CheckPassword(body.OldPassword); err != nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, map[string]string{
			"old": "Incorrect password.",
		})
		return
	}

	// Change password
	if err := account.ChangePassword(r.Context(), body.NewPassword); err != nil {
		returnInternal(w, r, err)
		return
	}

	emails.SendEmail(emails.TmplSecurityAlert, user.Name, user.Email, map[string]string{
		"message": "The password of your account was changed.",
	})

	returnData(w, http.StatusOK, BaseResp{})
}

func getAuthenticators(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Get account
	account, err := users.GetAccount(r.Context(), user.Id)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	// Parse authenticators
	v0Authenticators := []*structs.V0Authenticator{}
	for _, authenticator := range account.Authenticators {
		v0Authenticators = append(v0Authenticators, authenticator.V0())
	}

	returnData(w, http.StatusOK, ListResp{
		Autoget: v0Authenticators,
		Page:    1,
		Pages:   1,
	})
}

func addAuthenticator(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Get account
	account, err := users.GetAccount(r.Context(), user.Id)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	// Decode body
	var body AddAuthenticatorReq
	if !decodeBody(w, r, &body) {
		return
	}

	// Check TOTP code
	tempAccount := users.Account{Authenticators: []users.Authenticator{{Type: "totp", TotpSecret: body.TotpSecret}}}
	if !tempAccount.CheckTotp(body.TotpCode) {
		returnErr(w, http.StatusUnauthorized, ErrInvalidTOTPCode, map[string]string{
			"totp_code": "Invalid TOTP code.",
		})
		return
	}

	// Check password
	if err := account.CheckPassword(body.Password); err != nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, map[string]string{
			"password": "Incorrect password.",
		})
		return
	}

	// Add authenticator
	authenticator, err := account.AddTotpAuthenticator(r.Context(), body.Nickname, body.TotpSecret)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	emails.SendEmail(emails.TmplSecurityAlert, user.Name, user.Email, map[string]string{
		"message": "A new authenticator was added to your account.",
	})

	returnData(w, http.StatusOK, NewMfaResp{
		Authenticator: authenticator.V0(),
	})
}

func removeAuthenticator(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Get account
	account, err := users.GetAccount(r.Context(), user.Id)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	// Decode body
	var body AccountVerificationReq
	if !decodeBody(w, r, &body) {
		return
	}

	// Check password
	if err := account.CheckPassword(body.Password); err != nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, map[string]string{
			"password": "Incorrect password.",
		})
		return
	}

	// Remove authenticator
	authenticatorId, _ := getIdParam(r, "authenticatorId")
	if err := account.RemoveAuthenticator(r.Context(), authenticatorId); err != nil {
		if err == users.ErrAuthenticatorNotFound {
			returnErr(w, http.StatusNotFound, ErrNotFound, nil)
		} else {
			returnInternal(w, r, err)
		}
		return
	}

	returnData(w, http.StatusOK, BaseResp{})
}

func getNewTotpSecret(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Generate new TOTP secret
	enrollment, err := users.NewTotpSecret(user.Username)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, NewTotpSecretResp{
		Secret:          enrollment.Secret,
		ProvisioningUri: enrollment.ProvisioningUri,
		QRCodeSVG:       enrollment.QRCodeSVG,
	})
}
