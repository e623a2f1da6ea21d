package v0_rest

import (
	"net/http"
	"strconv"

	"github.com/socialfeed/server/pkg/feedid"
)

const (
	defaultPaginationLimit = 25
	maxPaginationLimit     = 100
)

type PaginationOpts struct {
	Request *http.Request
}

func (p PaginationOpts) BeforeId() *feedid.FeedID {
	beforeId, err := strconv.ParseInt(p.Request.URL.Query().Get("before"), 10, 64)
	if err == nil {
		return &beforeId
	}

	return nil
}

func (p PaginationOpts) AfterId() *feedid.FeedID {
	afterId, err := strconv.ParseInt(p.Request.URL.Query().Get("after"), 10, 64)
	if err == nil {
		return &afterId
	}

	return nil
}

func (p PaginationOpts) Skip() int64 {
	return (p.Page() - 1) * p.Limit()
}

func (p PaginationOpts) Limit() int64 {
	limit, err := strconv.ParseInt(p.Request.URL.Query().Get("limit"), 10, 64)
	if err == nil && limit > 0 {
		if limit > maxPaginationLimit {
			return maxPaginationLimit
		}

		return limit
	}

	return defaultPaginationLimit
}

func (p PaginationOpts) Page() int64 {
	page, err := strconv.ParseInt(p.Request.URL.Query().Get("page"), 10, 64)
	if err == nil && page > 0 {
		return page
	}

	return 1
}
