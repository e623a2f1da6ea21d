package v0_rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/socialfeed/server/pkg/comments"
)

type ctxCommentKey struct{}

func CommentsRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Route("/{commentId}", func(r chi.Router) {
		r.Use(commentCtx)

		r.Get("/replies", getReplies)
		r.Patch("/", updateComment)
		r.Delete("/", deleteComment)
		r.Put("/like", likeComment)
		r.Delete("/like", unlikeComment)
	})

	return r
}

func commentCtx(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commentId, ok := getIdParam(r, "commentId")
		if !ok {
			returnErr(w, http.StatusNotFound, ErrNotFound, nil)
			return
		}

		comment, err := comments.GetComment(r.Context(), commentId)
		if err != nil {
			returnCommentErr(w, r, err)
			return
		}

		h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxCommentKey{}, &comment)))
	})
}

func ctxComment(r *http.Request) *comments.Comment {
	return r.Context().Value(ctxCommentKey{}).(*comments.Comment)
}

func returnCommentErr(w http.ResponseWriter, r *http.Request, err error) {
	if err == comments.ErrCommentNotFound {
		returnErr(w, http.StatusNotFound, ErrNotFound, nil)
	} else {
		returnInternal(w, r, err)
	}
}

func getReplies(w http.ResponseWriter, r *http.Request) {
	replies, err := comments.ListReplies(r.Context(), ctxComment(r).Id)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnComments(w, r, replies)
}

func updateComment(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Check permissions
	comment := ctxComment(r)
	if comment.UserId != user.Id {
		returnErr(w, http.StatusForbidden, ErrMissingPermissions, nil)
		return
	}

	// Decode body
	var body UpdateCommentReq
	if !decodeBody(w, r, &body) {
		return
	}

	// Update comment
	if err := comment.Update(r.Context(), body.Content); err != nil {
		if err == comments.ErrEmptyComment {
			returnErr(w, http.StatusBadRequest, ErrBadRequest, map[string]string{
				"content": "Comment cannot be empty.",
			})
		} else {
			returnInternal(w, r, err)
		}
		return
	}

	v0comment := comment.V0(*user)
	comments.EmitUpdateCommentEvent(r.Context(), v0comment)

	returnData(w, http.StatusOK, v0comment)
}

func deleteComment(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Check permissions
	comment := ctxComment(r)
	if !comment.CanManage(user) {
		returnErr(w, http.StatusForbidden, ErrMissingPermissions, nil)
		return
	}

	// Delete comment
	if err := comment.Delete(r.Context()); err != nil {
		returnCommentErr(w, r, err)
		return
	}
	comments.EmitDeleteCommentEvent(r.Context(), comment)

	returnData(w, http.StatusOK, BaseResp{})
}

func likeComment(w http.ResponseWriter, r *http.Request) {
	setCommentLiked(w, r, true)
}

func unlikeComment(w http.ResponseWriter, r *http.Request) {
	setCommentLiked(w, r, false)
}

func setCommentLiked(w http.ResponseWriter, r *http.Request, liked bool) {
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

	// Set like
	comment := ctxComment(r)
	if err := comment.SetLiked(r.Context(), user.Id, liked); err != nil {
		returnCommentErr(w, r, err)
		return
	}
	comments.EmitCommentLikeEvent(r.Context(), comment, user.Id, liked)

	v0comments, err := comments.HydrateV0(r.Context(), []comments.Comment{*comment})
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, v0comments[0])
}
