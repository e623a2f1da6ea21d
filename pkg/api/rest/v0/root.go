package v0_rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/networks"
	"github.com/socialfeed/server/pkg/rdb"
)

const apiVersion = "0"

func RootRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/", root)
	r.Get("/status", getStatus)
	r.Get("/statistics", getStatistics)
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {})

	return r
}

func root(w http.ResponseWriter, r *http.Request) {
	returnData(w, http.StatusOK, WelcomeResp{
		Error:   false,
		Name:    "socialfeed",
		Version: apiVersion,
	})
}

func getStatus(w http.ResponseWriter, r *http.Request) {
	var regsDisabled, repairMode int64
	if rdb.Client != nil {
		var err error
		regsDisabled, err = rdb.Client.Exists(r.Context(), "regsdisabled").Result()
		if err != nil {
			returnInternal(w, r, err)
			return
		}
		repairMode, err = rdb.Client.Exists(r.Context(), "repairmode").Result()
		if err != nil {
			returnInternal(w, r, err)
			return
		}
	}

	blocked, err := networks.IsBlocked(r.RemoteAddr)
	if err != nil && err != networks.ErrInvalidAddress {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, StatusResp{
		RegistrationEnabled: regsDisabled == 0,
		RepairMode:          repairMode == 1,
		IPBlocked:           blocked,
	})
}

func registrationEnabled(r *http.Request) bool {
	if rdb.Client == nil {
		return true
	}
	disabled, err := rdb.Client.Exists(r.Context(), "regsdisabled").Result()
	return err != nil || disabled == 0
}

func getStatistics(w http.ResponseWriter, r *http.Request) {
	userCount, err := db.Users.EstimatedDocumentCount(r.Context())
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	postCount, err := db.Posts.EstimatedDocumentCount(r.Context())
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	commentCount, err := db.Comments.EstimatedDocumentCount(r.Context())
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, StatisticsResp{
		UserCount:    userCount,
		PostCount:    postCount,
		CommentCount: commentCount,
	})
}
