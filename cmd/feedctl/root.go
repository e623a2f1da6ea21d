package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/socialfeed/server/pkg/apiclient"
	"github.com/socialfeed/server/pkg/feedview"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ApiUrl    string
	TokenFile string

	client *apiclient.Client
	out    io.Writer
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "feedctl",
		Short: "Read and interact with a social feed from the terminal",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.out = cmd.OutOrStdout()
			opts.client = apiclient.New(opts.ApiUrl, nil)
			return opts.resume(cmd.Context())
		},
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ApiUrl, "api", envOr("FEEDCTL_API", "http://localhost:3000"), "API base URL")
	cmd.PersistentFlags().StringVar(&opts.TokenFile, "token-file", defaultTokenFile(), "where the session token is kept")

	// Add subcommands
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewFeedCommand(opts))
	cmd.AddCommand(NewReactCommand(opts))
	cmd.AddCommand(NewCommentsCommand(opts))

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".feedctl-token"
	}
	return filepath.Join(dir, "feedctl", "token")
}

// resume signs the client in with the stored token, if any. A token the
// server rejects is removed.
func (o *RootOptions) resume(ctx context.Context) error {
	token, err := os.ReadFile(o.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}

	if _, err := o.client.Resume(ctx, strings.TrimSpace(string(token))); err != nil {
		if apiclient.IsStatus(err, http.StatusUnauthorized) {
			return o.forgetToken()
		}
		return err
	}
	return nil
}

func (o *RootOptions) saveToken() error {
	if err := os.MkdirAll(filepath.Dir(o.TokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(o.TokenFile, []byte(o.client.Token()), 0o600)
}

func (o *RootOptions) forgetToken() error {
	err := os.Remove(o.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// notifier prints notices the way a toast would show them.
func (o *RootOptions) notifier() feedview.Notifier {
	return feedview.NotifierFunc(func(n feedview.Notice) {
		prefix := "ok"
		switch n.Level {
		case feedview.NoticeError:
			prefix = "error"
		case feedview.NoticePrompt:
			prefix = "note"
		}
		fmt.Fprintf(o.out, "[%s] %s\n", prefix, n.Message)
	})
}

func (o *RootOptions) openPost(ctx context.Context, postId string) (*feedview.PostView, error) {
	return feedview.OpenPost(ctx, postId, o.client, o.client, o.client.Auth(), o.notifier())
}
