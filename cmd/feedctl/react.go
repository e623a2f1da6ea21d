package main

import (
	"fmt"

	"github.com/socialfeed/server/pkg/feedview"
	"github.com/socialfeed/server/pkg/reactions"
	"github.com/spf13/cobra"
)

func NewReactCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "react <post id> <like|love|haha|wow|sad|angry|none>",
		Short: "Set, switch or clear your reaction to a post",
		Long:  `Picking the reaction you already have clears it, as does "none".`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := reactions.None
			if args[1] != "none" {
				var err error
				if kind, err = reactions.Parse(args[1]); err != nil {
					return err
				}
			}

			view, err := opts.openPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer view.Close()

			if err := view.Reactions.SetReaction(cmd.Context(), kind); err != nil {
				return err
			}
			printReactionState(opts, view.Reactions.State())
			return nil
		},
	}
}

func printReactionState(opts *RootOptions, s feedview.ReactionState) {
	if s.Current == reactions.None {
		fmt.Fprintf(opts.out, "%d reactions\n", s.Count)
		return
	}
	fmt.Fprintf(opts.out, "%d reactions, yours: %s %s\n", s.Count, s.Current.Emoji(), s.Current)
}
