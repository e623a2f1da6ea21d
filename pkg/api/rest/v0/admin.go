package v0_rest

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/socialfeed/server/pkg/admin"
	"github.com/socialfeed/server/pkg/events"
	"github.com/socialfeed/server/pkg/networks"
	"github.com/socialfeed/server/pkg/posts"
	"github.com/socialfeed/server/pkg/structs"
	"github.com/socialfeed/server/pkg/users"
)

func AdminRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(requireAdmin)

	r.Get("/stats", getDashboardStats)

	r.Get("/users", adminListUsers)
	r.Patch("/users/{userId}", adminUpdateUser)
	r.Delete("/users/{userId}", adminDeleteUser)

	r.Get("/posts", adminListPosts)
	r.With(postCtx).Delete("/posts/{postId}", adminRemovePost)

	r.Get("/netblocks", listNetblocks)
	r.Post("/netblocks", createNetblock)
	r.Delete("/netblocks/{blockId}", deleteNetblock)

	r.Get("/reconcile", getReconcileStatus)
	r.Post("/reconcile", runReconcile)

	return r
}

func getDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := admin.GetDashboardStats(r.Context())
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, DashboardStatsResp{V0DashboardStats: stats})
}

func adminListUsers(w http.ResponseWriter, r *http.Request) {
	paginationOpts := PaginationOpts{Request: r}
	list, err := users.ListUsers(r.Context(), paginationOpts.Skip(), paginationOpts.Limit())
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	v0users := make([]structs.V0User, 0, len(list))
	for i := range list {
		v0users = append(v0users, privateV0(&list[i]))
	}

	returnData(w, http.StatusOK, ListResp{
		Autoget: v0users,
		Page:    paginationOpts.Page(),
	})
}

func getUserByIdParam(w http.ResponseWriter, r *http.Request) (users.User, bool) {
	userId, ok := getIdParam(r, "userId")
	if !ok {
		returnErr(w, http.StatusNotFound, ErrNotFound, nil)
		return users.User{}, false
	}

	user, err := users.GetUser(r.Context(), userId)
	if err != nil {
		if err == users.ErrUserNotFound {
			returnErr(w, http.StatusNotFound, ErrNotFound, nil)
		} else {
			returnInternal(w, r, err)
		}
		return user, false
	}
	return user, true
}

func adminUpdateUser(w http.ResponseWriter, r *http.Request) {
	// Decode body
	var body AdminUpdateUserReq
	if !decodeBody(w, r, &body) {
		return
	}

	// Get user
	user, ok := getUserByIdParam(w, r)
	if !ok {
		return
	}

	// Update user
	upd := users.UserUpdate{Name: body.Name, Email: body.Email}
	if body.Role != nil {
		role := users.Role(*body.Role)
		upd.Role = &role
	}
	if err := user.Update(r.Context(), upd); err != nil {
		returnInternal(w, r, err)
		return
	}
	users.Profiles.Forget(user.Id)
	events.Emit(r.Context(), events.OpUpdateUser, &events.UpdateUser{User: user.V0()})

	returnData(w, http.StatusOK, privateV0(&user))
}

func adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	// Get user
	user, ok := getUserByIdParam(w, r)
	if !ok {
		return
	}

	// Admins can't delete themselves here
	if user.Id == getAuthedUser(r).Id {
		returnErr(w, http.StatusForbidden, ErrMissingPermissions, nil)
		return
	}

	// Delete user
	if err := user.Delete(r.Context()); err != nil {
		returnInternal(w, r, err)
		return
	}
	users.Profiles.Forget(user.Id)
	events.Emit(r.Context(), events.OpDeleteUser, &events.DeleteUser{UserId: strconv.FormatInt(user.Id, 10)})

	returnData(w, http.StatusOK, BaseResp{})
}

func adminListPosts(w http.ResponseWriter, r *http.Request) {
	paginationOpts := PaginationOpts{Request: r}
	list, err := posts.GetPosts(r.Context(), nil, paginationOpts)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	v0posts, err := posts.HydrateV0(r.Context(), list, nil)
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, ListResp{
		Autoget: v0posts,
		Page:    paginationOpts.Page(),
	})
}

func adminRemovePost(w http.ResponseWriter, r *http.Request) {
	if err := admin.RemovePost(r.Context(), ctxPost(r), getAuthedUser(r), r.URL.Query().Get("reason")); err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, BaseResp{})
}

func netblockResp(b networks.Block) NetblockResp {
	return NetblockResp{
		Id:        strconv.FormatInt(b.Id, 10),
		Address:   b.Address,
		Reason:    b.Reason,
		CreatedBy: strconv.FormatInt(b.CreatedBy, 10),
		CreatedAt: b.CreatedAt,
		ExpiresAt: b.ExpiresAt,
	}
}

func listNetblocks(w http.ResponseWriter, r *http.Request) {
	blocks := networks.Default.List()
	resp := make([]NetblockResp, 0, len(blocks))
	for _, b := range blocks {
		resp = append(resp, netblockResp(b))
	}

	returnData(w, http.StatusOK, ListResp{
		Autoget: resp,
		Page:    1,
		Pages:   1,
	})
}

func createNetblock(w http.ResponseWriter, r *http.Request) {
	// Decode body
	var body CreateNetblockReq
	if !decodeBody(w, r, &body) {
		return
	}

	// Create block
	block, err := networks.CreateBlock(r.Context(), body.Address, body.Reason, getAuthedUser(r).Id, body.ExpiresAt)
	if err != nil {
		if err == networks.ErrInvalidAddress {
			returnErr(w, http.StatusBadRequest, ErrBadRequest, map[string]string{
				"address": "Invalid address or network.",
			})
		} else {
			returnInternal(w, r, err)
		}
		return
	}

	returnData(w, http.StatusOK, netblockResp(block))
}

func deleteNetblock(w http.ResponseWriter, r *http.Request) {
	blockId, ok := getIdParam(r, "blockId")
	if !ok {
		returnErr(w, http.StatusNotFound, ErrNotFound, nil)
		return
	}

	if err := networks.DeleteBlock(r.Context(), blockId); err != nil {
		if err == networks.ErrBlockNotFound {
			returnErr(w, http.StatusNotFound, ErrNotFound, nil)
		} else {
			returnInternal(w, r, err)
		}
		return
	}

	returnData(w, http.StatusOK, BaseResp{})
}

func getReconcileStatus(w http.ResponseWriter, r *http.Request) {
	status := admin.Counters.Status()
	resp := ReconcileResp{Fixed: status.Fixed}
	if !status.LastRun.IsZero() {
		resp.LastRun = status.LastRun.UnixMilli()
	}
	if status.Err != nil {
		resp.LastError = status.Err.Error()
	}

	returnData(w, http.StatusOK, resp)
}

func runReconcile(w http.ResponseWriter, r *http.Request) {
	fixed, err := admin.Counters.RunOnce(r.Context())
	if err != nil {
		returnInternal(w, r, err)
		return
	}

	returnData(w, http.StatusOK, ReconcileResp{Fixed: fixed})
}
