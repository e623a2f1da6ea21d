package posts

import "github.com/socialfeed/server/pkg/feedid"

type PaginationOpts interface {
	BeforeId() *feedid.FeedID
	AfterId() *feedid.FeedID
	Skip() int64
	Limit() int64
}
