package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/socialfeed/server/pkg/apiclient"
	"github.com/spf13/cobra"
)

func NewLoginCommand(opts *RootOptions) *cobra.Command {
	var password, totpCode string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("FEEDCTL_PASSWORD")
			}
			user, err := opts.client.Login(cmd.Context(), args[0], password, totpCode)
			if err != nil {
				var apiErr *apiclient.APIError
				if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized && len(apiErr.MFAMethods) > 0 {
					return fmt.Errorf("this account needs a code, pass --totp")
				}
				return err
			}
			if err := opts.saveToken(); err != nil {
				return err
			}
			fmt.Fprintf(opts.out, "Signed in as %s (@%s)\n", user.Name, user.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password, defaults to $FEEDCTL_PASSWORD")
	cmd.Flags().StringVar(&totpCode, "totp", "", "authenticator code")

	return cmd
}

func NewLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := opts.client.Logout(cmd.Context())
			if err != nil && !errors.Is(err, apiclient.ErrNotSignedIn) {
				return err
			}
			return opts.forgetToken()
		},
	}
}
