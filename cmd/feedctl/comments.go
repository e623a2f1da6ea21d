package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/socialfeed/server/pkg/feedview"
	"github.com/socialfeed/server/pkg/images"
	"github.com/spf13/cobra"
)

func NewCommentsCommand(opts *RootOptions) *cobra.Command {
	var more int
	var replies string

	cmd := &cobra.Command{
		Use:   "comments <post id>",
		Short: "Show and manage the comments on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := opts.openPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer view.Close()

			pager := view.Comments
			if replies != "" {
				if pager, err = view.Comments.Expand(cmd.Context(), replies); err != nil {
					return err
				}
			}
			for range more {
				pager.ShowMore()
			}
			printComments(opts, pager)
			return nil
		},
	}

	cmd.Flags().IntVar(&more, "more", 0, "press \"show more\" this many times")
	cmd.Flags().StringVar(&replies, "replies", "", "show the replies to this comment instead")

	cmd.AddCommand(newAddCommentCommand(opts))
	cmd.AddCommand(newEditCommentCommand(opts))
	cmd.AddCommand(newDeleteCommentCommand(opts))
	cmd.AddCommand(newLikeCommentCommand(opts))

	return cmd
}

func printComments(opts *RootOptions, pager *feedview.Pager) {
	if pager.Len() == 0 {
		fmt.Fprintln(opts.out, "No comments yet.")
		return
	}
	for _, c := range pager.Displayed() {
		indent := ""
		if c.ParentId != nil {
			indent = "  "
		}
		fmt.Fprintf(opts.out, "%s#%s @%s · %s · %d likes\n", indent, c.Id, c.User.Username,
			time.UnixMilli(c.CreatedAt).Format(time.DateTime), len(c.Likes))
		if c.Content != "" {
			fmt.Fprintf(opts.out, "%s  %s\n", indent, c.Content)
		}
		if c.ImageUrl != "" {
			fmt.Fprintf(opts.out, "%s  [image] %s\n", indent, c.ImageUrl)
		}
	}
	if pager.HasMore() {
		fmt.Fprintf(opts.out, "… %d more, use --more\n", pager.Len()-pager.VisibleCount())
	}
}

func newAddCommentCommand(opts *RootOptions) *cobra.Command {
	var replyTo, imagePath string

	cmd := &cobra.Command{
		Use:   "add <post id> [text]",
		Short: "Comment on a post or reply to a comment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := feedview.NewComment{ParentId: replyTo}
			if len(args) == 2 {
				c.Content = args[1]
			}
			if imagePath != "" {
				f, err := readImage(imagePath)
				if err != nil {
					return err
				}
				c.Image = &f
			}

			view, err := opts.openPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer view.Close()

			return view.Comments.Add(cmd.Context(), c)
		},
	}

	cmd.Flags().StringVar(&replyTo, "reply-to", "", "comment id to reply to")
	cmd.Flags().StringVar(&imagePath, "image", "", "JPEG or PNG file to attach")

	return cmd
}

func readImage(path string) (images.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return images.File{}, err
	}
	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return images.File{Name: filepath.Base(path), Type: contentType, Data: data}, nil
}

func newEditCommentCommand(opts *RootOptions) *cobra.Command {
	var thread string

	cmd := &cobra.Command{
		Use:   "edit <post id> <comment id> <text>",
		Short: "Change the text of your comment",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := opts.openPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer view.Close()
			if err := expandThread(cmd, view, thread); err != nil {
				return err
			}

			return view.Comments.Update(cmd.Context(), args[1], args[2])
		},
	}

	cmd.Flags().StringVar(&thread, "thread", "", "parent comment id when the comment is a reply")

	return cmd
}

func newDeleteCommentCommand(opts *RootOptions) *cobra.Command {
	var thread string

	cmd := &cobra.Command{
		Use:   "delete <post id> <comment id>",
		Short: "Delete a comment and its replies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := opts.openPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer view.Close()
			if err := expandThread(cmd, view, thread); err != nil {
				return err
			}

			return view.Comments.Remove(cmd.Context(), args[1])
		},
	}

	cmd.Flags().StringVar(&thread, "thread", "", "parent comment id when the comment is a reply")

	return cmd
}

func newLikeCommentCommand(opts *RootOptions) *cobra.Command {
	var thread string

	cmd := &cobra.Command{
		Use:   "like <post id> <comment id>",
		Short: "Like or unlike a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := opts.openPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer view.Close()
			if err := expandThread(cmd, view, thread); err != nil {
				return err
			}

			return view.Comments.ToggleLike(cmd.Context(), args[1])
		},
	}

	cmd.Flags().StringVar(&thread, "thread", "", "parent comment id when the comment is a reply")

	return cmd
}

// expandThread loads the replies of parentId so they can be acted on.
func expandThread(cmd *cobra.Command, view *feedview.PostView, parentId string) error {
	if parentId == "" {
		return nil
	}
	_, err := view.Comments.Expand(cmd.Context(), parentId)
	return err
}
