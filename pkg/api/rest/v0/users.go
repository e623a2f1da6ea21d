package v0_rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialfeed/server/pkg/posts"
	"github.com/socialfeed/server/pkg/users"
)

func UsersRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/", getUser)
	r.Get("/posts", getUserPosts)

	return r
}

func getUser(w http.ResponseWriter, r *http.Request) {
	user, err := getUserByUrlParam(r, "username")
	if err != nil {
		if err == users.ErrUserNotFound {
			returnErr(w, http.StatusNotFound, ErrNotFound, nil)
		} else {
			returnInternal(w, r, err)
		}
		return
	}

	returnData(w, http.StatusOK, user.V0())
}

func getUserPosts(w http.ResponseWriter, r *http.Request) {
	user, err := getUserByUrlParam(r, "username")
	if err != nil {
		if err == users.ErrUserNotFound {
			returnErr(w, http.StatusNotFound, ErrNotFound, nil)
		} else {
			returnInternal(w, r, err)
		}
		return
	}

	paginationOpts := PaginationOpts{Request: r}
	userPosts, err := posts.GetPosts(r.Context(), &user.Id, paginationOpts)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	v0posts, err := posts.HydrateV0(r.Context(), userPosts, viewerId(getAuthedUser(r)))
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, ListResp{
		Autoget: v0posts,
		Page:    paginationOpts.Page(),
	})
}
