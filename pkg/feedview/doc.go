// Package feedview holds the client-side view state of a single post: the
// viewer's reaction, kept responsive with optimistic updates, and a growing
// window over the post's comments.
//
// Local state is always mutated before the remote call is issued and the
// remote call runs without holding any lock, so a slow request never blocks
// reads of the view. Every failure is turned into a Notice for the user and
// also returned to the caller wrapped in one of the sentinel errors.
package feedview
