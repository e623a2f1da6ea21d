package admin

import (
	"context"

	"github.com/socialfeed/server/pkg/emails"
	"github.com/socialfeed/server/pkg/logger"
	"github.com/socialfeed/server/pkg/posts"
	"github.com/socialfeed/server/pkg/users"
	"go.uber.org/zap"
)

const excerptLength = 140

// RemovePost deletes a post on behalf of a moderator and emails its author
// the reason.
func RemovePost(ctx context.Context, p *posts.Post, moderator *users.User, reason string) error {
	if err := p.Delete(ctx); err != nil {
		return err
	}
	posts.EmitDeletePostEvent(ctx, p.Id)

	logger.L.Info("post removed by moderator",
		zap.Int64("post_id", p.Id),
		zap.Int64("moderator_id", moderator.Id),
		zap.String("reason", reason),
	)

	if p.UserId == moderator.Id {
		return nil
	}
	author, err := users.GetUser(ctx, p.UserId)
	if err != nil {
		// the post is gone either way
		logger.L.Warn("could not notify author", zap.Int64("user_id", p.UserId), zap.Error(err))
		return nil
	}
	if reason == "" {
		reason = "It broke the community guidelines."
	}
	emails.SendEmail(emails.TmplPostRemoved, author.Name, author.Email, map[string]string{
		"reason":  reason,
		"excerpt": excerpt(p.Content, excerptLength),
	})
	return nil
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
