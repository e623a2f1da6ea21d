package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/socialfeed/server/pkg/feedview"
)

func (c *Client) ListComments(ctx context.Context, postId string) ([]feedview.Comment, error) {
	var resp listResp[feedview.Comment]
	err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(postId)+"/comments", nil, nil, &resp)
	return resp.Autoget, err
}

func (c *Client) ListReplies(ctx context.Context, parentId string) ([]feedview.Comment, error) {
	var resp listResp[feedview.Comment]
	err := c.do(ctx, http.MethodGet, "/comments/"+url.PathEscape(parentId)+"/replies", nil, nil, &resp)
	return resp.Autoget, err
}

type createCommentBody struct {
	Content  string `json:"content"`
	ParentId string `json:"parent_id,omitempty"`
	ImageUrl string `json:"image_url,omitempty"`
}

func (c *Client) CreateComment(ctx context.Context, postId string, content string, parentId string, imageUrl string) error {
	return c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postId)+"/comments", nil, createCommentBody{
		Content:  content,
		ParentId: parentId,
		ImageUrl: imageUrl,
	}, nil)
}

func (c *Client) UpdateComment(ctx context.Context, commentId string, content string) error {
	return c.do(ctx, http.MethodPatch, "/comments/"+url.PathEscape(commentId), nil, map[string]string{
		"content": content,
	}, nil)
}

func (c *Client) DeleteComment(ctx context.Context, commentId string) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+url.PathEscape(commentId), nil, nil, nil)
}

func (c *Client) SetCommentLiked(ctx context.Context, commentId string, liked bool) error {
	method := http.MethodDelete
	if liked {
		method = http.MethodPut
	}
	return c.do(ctx, method, "/comments/"+url.PathEscape(commentId)+"/like", nil, nil, nil)
}
