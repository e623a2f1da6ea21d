package admin

import (
	"context"
	"time"

	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/posts"
	"github.com/socialfeed/server/pkg/structs"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

func GetDashboardStats(ctx context.Context) (structs.V0DashboardStats, error) {
	var stats structs.V0DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stats.TotalUsers, err = db.Users.EstimatedDocumentCount(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalPosts, err = db.Posts.EstimatedDocumentCount(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TodayPosts, err = posts.CountSince(ctx, startOfDay(time.Now()).UnixMilli())
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalLikes, err = totalLikes(ctx)
		return err
	})

	return stats, g.Wait()
}

func totalLikes(ctx context.Context) (int64, error) {
	cur, err := db.Posts.Aggregate(ctx, bson.A{
		bson.M{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$count.like"}}},
	})
	if err != nil {
		return 0, err
	}
	var res []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &res); err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0].Total, nil
}

// startOfDay is midnight UTC of t's day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
