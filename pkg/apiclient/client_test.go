package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/socialfeed/server/pkg/feedview"
	"github.com/socialfeed/server/pkg/images"
	"github.com/socialfeed/server/pkg/reactions"
	"github.com/socialfeed/server/pkg/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// fakeAPI serves the subset of the REST API the client uses from memory.
type fakeAPI struct {
	mu        sync.Mutex
	comments  []structs.V0Comment
	reactions []setReactionBody
	requests  []*http.Request
	rejectAll bool
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.requests = append(f.requests, r)
			reject := f.rejectAll
			f.mu.Unlock()
			if r.URL.Path != "/auth/login" && (reject || r.Header.Get("token") != testToken) && r.Method != http.MethodGet {
				writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": true, "type": "Unauthorized"})
				return
			}
			h.ServeHTTP(w, r)
		})
	})

	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "hunter22" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"error":  true,
				"type":   "Unauthorized",
				"fields": map[string]string{"password": "Incorrect username/password."},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"account": structs.V0User{Id: "1", Username: body["username"]},
			"token":   testToken,
		})
	})
	r.Get("/posts/{postId}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, structs.V0Post{
			Id:      chi.URLParam(r, "postId"),
			Count:   structs.V0PostCount{Like: 2},
			Actions: structs.V0PostActions{Current: reactions.Like},
		})
	})
	r.Put("/posts/{postId}/reaction", func(w http.ResponseWriter, r *http.Request) {
		var body setReactionBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": true, "type": "badRequest"})
			return
		}
		f.mu.Lock()
		f.reactions = append(f.reactions, body)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, structs.V0Post{Id: chi.URLParam(r, "postId")})
	})
	r.Get("/posts/{postId}/comments", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"error": false, "autoget": f.comments, "page#": 1})
	})
	r.Post("/posts/{postId}/comments", func(w http.ResponseWriter, r *http.Request) {
		var body createCommentBody
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		c := structs.V0Comment{
			Id:        "c" + string(rune('1'+len(f.comments))),
			PostId:    chi.URLParam(r, "postId"),
			Content:   body.Content,
			CreatedAt: int64(100 + len(f.comments)),
		}
		f.comments = append(f.comments, c)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, c)
	})
	r.Post("/uploads", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("image")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": true, "type": "badRequest"})
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		writeJSON(w, http.StatusOK, structs.V0Upload{
			Url:  "https://img.example/" + header.Filename,
			Name: header.Filename,
			Size: int64(len(data)),
			Type: header.Header.Get("Content-Type"),
		})
	})

	return r
}

func (f *fakeAPI) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	hs := httptest.NewServer(api.router())
	t.Cleanup(hs.Close)

	c := New(hs.URL+"/", nil)
	c.http = hs.Client()
	return c, api
}

func signedIn(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	c, api := newTestClient(t)
	_, err := c.Login(context.Background(), "tnix", "hunter22", "")
	require.NoError(t, err)
	return c, api
}

func TestLogin(t *testing.T) {
	c, api := newTestClient(t)

	user, err := c.Login(context.Background(), "tnix", "hunter22", "")
	require.NoError(t, err)
	assert.Equal(t, "tnix", user.Username)
	assert.Equal(t, testToken, c.Token())

	userId, ok := c.Auth().CurrentUserId()
	assert.True(t, ok)
	assert.Equal(t, "1", userId)

	_, err = uuid.Parse(api.lastRequest().Header.Get(RequestIdHeader))
	assert.NoError(t, err)
}

func TestLoginFailure(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Login(context.Background(), "tnix", "wrong", "")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Unauthorized", apiErr.Type)
	assert.Contains(t, apiErr.Fields, "password")
	_, ok := c.Auth().CurrentUserId()
	assert.False(t, ok)
}

func TestSetReactionSendsClientState(t *testing.T) {
	c, api := signedIn(t)

	require.NoError(t, c.SetReaction(context.Background(), "5", reactions.Love, true))

	assert.Equal(t, []setReactionBody{{Kind: reactions.Love, WasReacted: true}}, api.reactions)
	req := api.lastRequest()
	assert.Equal(t, testToken, req.Header.Get("token"))
	assert.Equal(t, "/posts/5/reaction", req.URL.Path)
}

func TestRejectedTokenSignsOut(t *testing.T) {
	c, api := signedIn(t)
	api.mu.Lock()
	api.rejectAll = true
	api.mu.Unlock()

	err := c.SetReaction(context.Background(), "5", reactions.Like, false)
	require.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Empty(t, c.Token())
	_, ok := c.Auth().CurrentUserId()
	assert.False(t, ok)
}

func TestUploadImage(t *testing.T) {
	c, _ := signedIn(t)

	imageUrl, err := c.UploadImage(context.Background(), images.File{Name: "cat.png", Type: "image/png", Data: pngData})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/cat.png", imageUrl)
}

func TestUploadImageValidatesLocally(t *testing.T) {
	c, api := signedIn(t)
	before := len(api.requests)

	_, err := c.UploadImage(context.Background(), images.File{Name: "a.gif", Type: "image/gif", Data: []byte("GIF89a")})
	require.ErrorIs(t, err, images.ErrInvalidImageType)
	assert.Len(t, api.requests, before)
}

func TestPostViewOverAPI(t *testing.T) {
	c, _ := signedIn(t)
	ctx := context.Background()

	view, err := feedview.OpenPost(ctx, "5", c, c, c.Auth(), nil)
	require.NoError(t, err)
	defer view.Close()

	assert.Equal(t, feedview.ReactionState{Current: reactions.Like, Count: 2}, view.Reactions.State())
	assert.Zero(t, view.Comments.Len())

	require.NoError(t, view.Comments.Add(ctx, feedview.NewComment{Content: "first"}))
	require.NoError(t, view.Comments.Add(ctx, feedview.NewComment{Content: "second"}))
	assert.Equal(t, 2, view.Comments.Len())
	assert.Equal(t, "first", view.Comments.Displayed()[0].Content)

	require.NoError(t, view.Reactions.SetReaction(ctx, reactions.Wow))
	assert.Equal(t, feedview.ReactionState{Current: reactions.Wow, Count: 2}, view.Reactions.State())
}
