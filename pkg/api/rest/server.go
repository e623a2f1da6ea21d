package rest

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	v0_rest "github.com/socialfeed/server/pkg/api/rest/v0"
	"github.com/socialfeed/server/pkg/images"
)

// Router builds the HTTP API. realIPHeader names a header set by a trusted
// proxy, empty uses the connection's address.
func Router(realIPHeader string, uploader *images.Uploader) *chi.Mux {
	r := chi.NewRouter()

	// CORS middleware
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"OPTIONS", "GET", "POST", "PATCH", "PUT", "DELETE"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)

	// IP address middleware
	r.Use(func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if realIPHeader != "" && r.Header.Get(realIPHeader) != "" {
				r.RemoteAddr = r.Header.Get(realIPHeader)
			} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				r.RemoteAddr = host
			}
			h.ServeHTTP(w, r)
		})
	})

	r.Use(middleware.Recoverer)

	// Mount routers
	r.Mount("/", v0_rest.Router(uploader)) // default
	r.Mount("/v0", v0_rest.Router(uploader))

	return r
}
