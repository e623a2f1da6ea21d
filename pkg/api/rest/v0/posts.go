package v0_rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/socialfeed/server/pkg/comments"
	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/logger"
	"github.com/socialfeed/server/pkg/posts"
	"github.com/socialfeed/server/pkg/reactions"
	"github.com/socialfeed/server/pkg/structs"
	"github.com/socialfeed/server/pkg/users"
	"go.uber.org/zap"
)

type ctxPostKey struct{}

func PostsRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/", getFeed)
	r.Post("/", createPost)
	r.Route("/{postId}", func(r chi.Router) {
		r.Use(postCtx)

		r.Get("/", getPost)
		r.Patch("/", updatePost)
		r.Delete("/", deletePost)
		r.Put("/reaction", setReaction)
		r.Delete("/reaction", clearReaction)
		r.Post("/share", sharePost)
		r.Get("/analytics", getPostAnalytics)
		r.Get("/comments", getComments)
		r.Post("/comments", createComment)
	})

	return r
}

// postCtx loads the post named by the URL onto the request context.
func postCtx(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postId, ok := getIdParam(r, "postId")
		if !ok {
			returnErr(w, http.StatusNotFound, ErrNotFound, nil)
			return
		}

		post, err := posts.GetPost(r.Context(), postId)
		if err != nil {
			if err == posts.ErrPostNotFound {
				returnErr(w, http.StatusNotFound, ErrNotFound, nil)
			} else {
				returnInternal(w, r, err)
			}
			return
		}

		h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxPostKey{}, &post)))
	})
}

func ctxPost(r *http.Request) *posts.Post {
	return r.Context().Value(ctxPostKey{}).(*posts.Post)
}

func renderPost(ctx context.Context, post *posts.Post, viewer *users.User) (structs.V0Post, error) {
	v0posts, err := posts.HydrateV0(ctx, []posts.Post{*post}, viewerId(viewer))
	if err != nil {
		return structs.V0Post{}, err
	}
	return v0posts[0], nil
}

func getFeed(w http.ResponseWriter, r *http.Request) {
	paginationOpts := PaginationOpts{Request: r}
	feed, err := posts.GetPosts(r.Context(), nil, paginationOpts)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	v0posts, err := posts.HydrateV0(r.Context(), feed, viewerId(getAuthedUser(r)))
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, ListResp{
		Autoget: v0posts,
		Page:    paginationOpts.Page(),
	})
}

func createPost(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Decode body
	var body CreatePostReq
	if !decodeBody(w, r, &body) {
		return
	}

	// Ratelimit
	if !checkRatelimit(w, r, "post", "user", strconv.FormatInt(user.Id, 10), 10, 60) {
		return
	}

	// Create post
	post, err := posts.CreatePost(r.Context(), user.Id, body.Content, body.ImageUrls)
	if err != nil {
		switch err {
		case posts.ErrEmptyPost:
			returnErr(w, http.StatusBadRequest, ErrBadRequest, map[string]string{
				"content": "Post cannot be empty.",
			})
		case posts.ErrTooManyImages:
			returnErr(w, http.StatusBadRequest, ErrBadRequest, map[string]string{
				"image_urls": "Too many images.",
			})
		default:
			returnInternal(w, r, err)
		}
		return
	}

	v0post := post.V0(*user, &user.Id)
	posts.EmitCreatePostEvent(r.Context(), v0post)

	returnData(w, http.StatusOK, v0post)
}

func getPost(w http.ResponseWriter, r *http.Request) {
	v0post, err := renderPost(r.Context(), ctxPost(r), getAuthedUser(r))
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, v0post)
}

func updatePost(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Check permissions
	post := ctxPost(r)
	if !post.CanManage(user) {
		returnErr(w, http.StatusForbidden, ErrMissingPermissions, nil)
		return
	}

	// Decode body
	var body UpdatePostReq
	if !decodeBody(w, r, &body) {
		return
	}

	// Update post
	if err := post.Update(r.Context(), body.Content, body.ImageUrls); err != nil {
		switch err {
		case posts.ErrEmptyPost, posts.ErrTooManyImages:
			returnErr(w, http.StatusBadRequest, ErrBadRequest, nil)
		default:
			returnInternal(w, r, err)
		}
		return
	}

	v0post, err := renderPost(r.Context(), post, user)
	if err != nil {
		returnInternal(w, r, err)
		return
	}
	posts.EmitUpdatePostEvent(r.Context(), v0post)

	returnData(w, http.StatusOK, v0post)
}

func deletePost(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Check permissions
	post := ctxPost(r)
	if !post.CanManage(user) {
		returnErr(w, http.StatusForbidden, ErrMissingPermissions, nil)
		return
	}

	// Delete post
	if err := post.Delete(r.Context()); err != nil {
		returnInternal(w, r, err)
		return
	}
	posts.EmitDeletePostEvent(r.Context(), post.Id)

	returnData(w, http.StatusOK, BaseResp{})
}

func setReaction(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Decode body
	var body SetReactionReq
	if !decodeBody(w, r, &body) {
		return
	}

	// Ratelimit
	if !checkRatelimit(w, r, "reaction", "user", strconv.FormatInt(user.Id, 10), 60, 60) {
		return
	}

	post := ctxPost(r)
	if current := post.ViewerReaction(&user.Id); body.WasReacted != (current != reactions.None) {
		logger.L.Debug("client reaction state is out of date",
			zap.Int64("post_id", post.Id),
			zap.Int64("user_id", user.Id),
			zap.Bool("client_was_reacted", body.WasReacted),
		)
	}

	// Set or clear reaction
	var err error
	if body.Kind == reactions.None {
		err = post.ClearReaction(r.Context(), user.Id)
	} else {
		err = post.SetReaction(r.Context(), user.Id, body.Kind)
	}
	if err != nil {
		if err == posts.ErrInvalidReaction {
			returnErr(w, http.StatusBadRequest, ErrBadRequest, map[string]string{
				"kind": "Unknown reaction.",
			})
		} else {
			returnPostErr(w, r, err)
		}
		return
	}

	returnReacted(w, r, post, user, body.Kind)
}

func clearReaction(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Ratelimit
	if !checkRatelimit(w, r, "reaction", "user", strconv.FormatInt(user.Id, 10), 60, 60) {
		return
	}

	// Clear reaction
	post := ctxPost(r)
	if err := post.ClearReaction(r.Context(), user.Id); err != nil {
		returnPostErr(w, r, err)
		return
	}

	returnReacted(w, r, post, user, reactions.None)
}

func returnReacted(w http.ResponseWriter, r *http.Request, post *posts.Post, user *users.User, kind reactions.Kind) {
	posts.EmitPostReactionEvent(r.Context(), post, user.Id, kind)

	v0post, err := renderPost(r.Context(), post, user)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, v0post)
}

func returnPostErr(w http.ResponseWriter, r *http.Request, err error) {
	if err == posts.ErrPostNotFound {
		returnErr(w, http.StatusNotFound, ErrNotFound, nil)
	} else {
		returnInternal(w, r, err)
	}
}

func sharePost(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	post := ctxPost(r)
	if err := post.Share(r.Context()); err != nil {
		returnPostErr(w, r, err)
		return
	}

	v0post, err := renderPost(r.Context(), post, user)
	if err != nil {
		returnInternal(w, r, err)
		return
	}
	posts.EmitUpdatePostEvent(r.Context(), v0post)

	returnData(w, http.StatusOK, v0post)
}

func getPostAnalytics(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Check permissions
	post := ctxPost(r)
	if !post.CanManage(user) {
		returnErr(w, http.StatusForbidden, ErrMissingPermissions, nil)
		return
	}

	returnData(w, http.StatusOK, structs.V0PostAnalytics{
		PostId:    strconv.FormatInt(post.Id, 10),
		Reactions: post.ReactionBreakdown(),
		Count: structs.V0PostCount{
			Like:    post.Count.Like,
			Comment: post.Count.Comment,
			Share:   post.Count.Share,
		},
		Score: post.Score,
	})
}

func getComments(w http.ResponseWriter, r *http.Request) {
	postComments, err := comments.ListByPost(r.Context(), ctxPost(r).Id)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnComments(w, r, postComments)
}

func returnComments(w http.ResponseWriter, r *http.Request, list []comments.Comment) {
	v0comments, err := comments.HydrateV0(r.Context(), list)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, ListResp{
		Autoget: v0comments,
		Page:    1,
		Pages:   1,
	})
}

func createComment(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Decode body
	var body CreateCommentReq
	if !decodeBody(w, r, &body) {
		return
	}

	// Ratelimit
	if !checkRatelimit(w, r, "comment", "user", strconv.FormatInt(user.Id, 10), 20, 60) {
		return
	}

	// Parse parent
	var parentId *feedid.FeedID
	if body.ParentId != "" {
		id, err := strconv.ParseInt(body.ParentId, 10, 64)
		if err != nil {
			returnErr(w, http.StatusBadRequest, ErrBadRequest, map[string]string{
				"parent_id": "Invalid comment id.",
			})
			return
		}
		parentId = &id
	}

	// Create comment
	post := ctxPost(r)
	comment, err := comments.CreateComment(r.Context(), post.Id, user.Id, body.Content, parentId, body.ImageUrl)
	if err != nil {
		switch err {
		case comments.ErrEmptyComment:
			returnErr(w, http.StatusBadRequest, ErrBadRequest, map[string]string{
				"content": "Comment cannot be empty.",
			})
		case comments.ErrCommentNotFound, comments.ErrParentMismatch, comments.ErrNestedReply:
			returnErr(w, http.StatusBadRequest, ErrBadRequest, map[string]string{
				"parent_id": err.Error(),
			})
		default:
			returnPostErr(w, r, err)
		}
		return
	}

	v0comment := comment.V0(*user)
	comments.EmitCreateCommentEvent(r.Context(), v0comment)

	returnData(w, http.StatusOK, v0comment)
}
