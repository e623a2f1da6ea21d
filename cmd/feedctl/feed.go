package main

import (
	"fmt"
	"io"
	"time"

	"github.com/socialfeed/server/pkg/reactions"
	"github.com/socialfeed/server/pkg/structs"
	"github.com/spf13/cobra"
)

func NewFeedCommand(opts *RootOptions) *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := opts.client.Feed(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			for _, p := range posts {
				printPost(opts.out, p)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "posts per page")

	return cmd
}

func printPost(w io.Writer, p structs.V0Post) {
	fmt.Fprintf(w, "#%s @%s · %s\n", p.Id, p.User.Username, time.UnixMilli(p.CreatedAt).Format(time.DateTime))
	if p.Content != "" {
		fmt.Fprintf(w, "  %s\n", p.Content)
	}
	for _, u := range p.ImageUrls {
		fmt.Fprintf(w, "  [image] %s\n", u)
	}
	mine := ""
	if p.Actions.Current != reactions.None {
		mine = fmt.Sprintf(" (you: %s %s)", p.Actions.Current.Emoji(), p.Actions.Current)
	}
	fmt.Fprintf(w, "  %d reactions%s · %d comments · %d shares\n\n", p.Count.Like, mine, p.Count.Comment, p.Count.Share)
}
