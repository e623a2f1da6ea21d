package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/socialfeed/server/pkg/reactions"
	"github.com/socialfeed/server/pkg/structs"
)

// Feed returns a page of posts, newest first. Pages start at 1.
func (c *Client) Feed(ctx context.Context, page int, limit int) ([]structs.V0Post, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var resp listResp[structs.V0Post]
	err := c.do(ctx, http.MethodGet, "/posts", query, nil, &resp)
	return resp.Autoget, err
}

func (c *Client) CreatePost(ctx context.Context, content string, imageUrls []string) (structs.V0Post, error) {
	if imageUrls == nil {
		imageUrls = []string{}
	}
	var post structs.V0Post
	err := c.do(ctx, http.MethodPost, "/posts", nil, map[string]interface{}{
		"content":    content,
		"image_urls": imageUrls,
	}, &post)
	return post, err
}

func (c *Client) GetPost(ctx context.Context, postId string) (structs.V0Post, error) {
	var post structs.V0Post
	err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(postId), nil, nil, &post)
	return post, err
}

func (c *Client) DeletePost(ctx context.Context, postId string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postId), nil, nil, nil)
}

type setReactionBody struct {
	Kind       reactions.Kind `json:"kind"`
	WasReacted bool           `json:"was_reacted"`
}

func (c *Client) SetReaction(ctx context.Context, postId string, kind reactions.Kind, wasReacted bool) error {
	return c.do(ctx, http.MethodPut, "/posts/"+url.PathEscape(postId)+"/reaction", nil, setReactionBody{
		Kind:       kind,
		WasReacted: wasReacted,
	}, nil)
}

func (c *Client) ClearReaction(ctx context.Context, postId string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postId)+"/reaction", nil, nil, nil)
}
