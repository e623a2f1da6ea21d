package apiclient

import (
	"context"
	"net/http"

	"github.com/socialfeed/server/pkg/structs"
)

type authResp struct {
	Account structs.V0User    `json:"account"`
	Session structs.V0Session `json:"session"`
	Token   string            `json:"token"`
}

// Login signs in and keeps the session token for later requests. totpCode
// may be empty for accounts without MFA.
func (c *Client) Login(ctx context.Context, username, password, totpCode string) (structs.V0User, error) {
	var resp authResp
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"username":  username,
		"password":  password,
		"totp_code": totpCode,
	}, &resp)
	if err != nil {
		return structs.V0User{}, err
	}

	c.setToken(resp.Token)
	c.auth.SignIn(resp.Account.Id)
	return resp.Account, nil
}

// Resume restores a session from a stored token.
func (c *Client) Resume(ctx context.Context, token string) (structs.V0User, error) {
	c.setToken(token)
	user, err := c.Me(ctx)
	if err != nil {
		c.setToken("")
		return user, err
	}
	c.auth.SignIn(user.Id)
	return user, nil
}

func (c *Client) Me(ctx context.Context) (structs.V0User, error) {
	var user structs.V0User
	err := c.do(ctx, http.MethodGet, "/me", nil, nil, &user)
	return user, err
}

func (c *Client) Logout(ctx context.Context) error {
	if c.Token() == "" {
		return ErrNotSignedIn
	}
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	c.setToken("")
	c.auth.SignOut()
	return err
}
