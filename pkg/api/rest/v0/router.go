package v0_rest

import (
	"github.com/go-chi/chi/v5"
	"github.com/socialfeed/server/pkg/images"
)

var uploader *images.Uploader

// Router builds the v0 API. imageUploader may be nil, in which case the
// upload endpoint answers 502.
func Router(imageUploader *images.Uploader) *chi.Mux {
	uploader = imageUploader

	r := chi.NewRouter()
	r.Use(blockCheck)

	r.Mount("/", RootRouter())
	r.Mount("/auth", AuthRouter())
	r.Mount("/me", MeRouter())
	r.Mount("/posts", PostsRouter())
	r.Mount("/comments", CommentsRouter())
	r.Mount("/uploads", UploadsRouter())
	r.Mount("/users/{username}", UsersRouter())
	r.Mount("/admin", AdminRouter())

	return r
}
