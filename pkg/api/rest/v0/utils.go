package v0_rest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/logger"
	"github.com/socialfeed/server/pkg/networks"
	"github.com/socialfeed/server/pkg/rdb"
	"github.com/socialfeed/server/pkg/users"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
)

var validate = validator.New()

type CtxKey string

const ctxUser CtxKey = "user"

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	// Decode body
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") || contentType == "" { // default
		err := json.NewDecoder(r.Body).Decode(v)
		if err != nil {
			returnErr(w, http.StatusBadRequest, ErrBadRequest, nil)
			return false
		}
	} else {
		returnErr(w, http.StatusBadRequest, ErrBadRequest, nil)
		return false
	}

	// Get struct type
	structType := reflect.TypeOf(v)
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}

	// Validate
	err := validate.Struct(v)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			returnErr(w, http.StatusBadRequest, ErrBadRequest, nil)
			return false
		}
		errFields := make(map[string]string, len(validationErrs))
		for _, err := range validationErrs {
			field, _ := structType.FieldByName(err.StructField())
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			errFields[name] = err.Error()
		}
		returnErr(w, http.StatusBadRequest, ErrBadRequest, errFields)
		return false
	}

	return true
}

func returnData(w http.ResponseWriter, code int, data interface{}) {
	marshaled, err := json.Marshal(data)
	if err != nil {
		returnErr(w, http.StatusInternalServerError, ErrInternal, nil)
	} else {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write(marshaled)
	}
}

func returnErr(w http.ResponseWriter, code int, errType error, fields map[string]string) {
	marshaled, err := json.Marshal(ErrResp{
		Error:  true,
		Type:   errType.Error(),
		Fields: fields,
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("An error occurred while sending the error response."))
	} else {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write(marshaled)
	}
}

// returnInternal logs and reports an unexpected error before answering 500.
func returnInternal(w http.ResponseWriter, r *http.Request, err error) {
	logger.L.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	sentry.CaptureException(err)
	returnErr(w, http.StatusInternalServerError, ErrInternal, nil)
}

// Update a ratelimit for a resource (bucket) based on a scope and identifier.
//
// Only 1 ratelimit should be set before returning a response.
// Otherwise, the ratelimit headers might accidentally be overwritten.
//
// The bucket should be the action, such as 'login'.
// The scope should be one of the following: ip, user.
// The identifier should be the IP address or user ID.
func ratelimit(ctx context.Context, w http.ResponseWriter, bucket string, scope string, id string, limit int, seconds int) error {
	if rdb.Client == nil {
		return nil
	}

	// Get ratelimit hash
	ratelimitHash := getRatelimitHash(bucket, scope, id)

	// Get remaining limit and TTL
	var newRemaining int
	var newTTL time.Duration
	remaining, err := rdb.Client.Get(ctx, ratelimitHash).Int()
	if err == redis.Nil {
		newRemaining = limit - 1
		newTTL = time.Duration(seconds) * time.Second
	} else if err != nil {
		return err
	} else {
		newRemaining = remaining - 1
		newTTL = rdb.Client.TTL(ctx, ratelimitHash).Val()
	}

	// Set new limit
	if err := rdb.Client.Set(ctx, ratelimitHash, newRemaining, newTTL).Err(); err != nil {
		return err
	}

	// Set response headers
	w.Header().Add("X-Rtl-Bucket", bucket)
	w.Header().Add("X-Rtl-Scope", scope)
	w.Header().Add("X-Rtl-Remaining", strconv.FormatInt(int64(newRemaining), 10))
	w.Header().Add("X-Rtl-Reset", strconv.FormatInt(time.Now().Add(newTTL).UnixMilli(), 10))

	return nil
}

func ratelimited(ctx context.Context, bucket string, scope string, id string) bool {
	if rdb.Client == nil {
		return false
	}
	ratelimitHash := getRatelimitHash(bucket, scope, id)
	remaining, err := rdb.Client.Get(ctx, ratelimitHash).Int()
	if err == redis.Nil || err != nil || remaining > 0 {
		return false
	} else {
		return true
	}
}

func getRatelimitHash(bucket string, scope string, id string) string {
	h := sha3.NewShake256()
	h.Write([]byte("rtl"))
	h.Write([]byte(bucket))
	h.Write([]byte(scope))
	h.Write([]byte(id))

	sum := make([]byte, 32)
	h.Read(sum)
	return base64.URLEncoding.EncodeToString(sum)
}

// checkRatelimit answers 429 and returns false when the bucket is spent,
// otherwise it consumes one request from it.
func checkRatelimit(w http.ResponseWriter, r *http.Request, bucket string, scope string, id string, limit int, seconds int) bool {
	if ratelimited(r.Context(), bucket, scope, id) {
		returnErr(w, http.StatusTooManyRequests, ErrRatelimited, nil)
		return false
	}
	if err := ratelimit(r.Context(), w, bucket, scope, id, limit, seconds); err != nil {
		logger.L.Warn("failed updating ratelimit", zap.String("bucket", bucket), zap.Error(err))
	}
	return true
}

func requestToken(r *http.Request) string {
	if token := r.Header.Get("token"); token != "" {
		return token
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func getAuthedSession(r *http.Request) *users.AccSession {
	token := requestToken(r)
	if token == "" {
		return nil
	}

	session, err := users.GetAccSessionByToken(r.Context(), token)
	if err != nil {
		switch err {
		case users.ErrTokenExpired, users.ErrSessionNotFound, users.ErrInvalidTokenFormat, users.ErrInvalidTokenSignature:
		default:
			logger.L.Error("failed getting session", zap.Error(err))
			sentry.CaptureException(err)
		}
		return nil
	}
	return &session
}

func getAuthedUser(r *http.Request) *users.User {
	if user, ok := r.Context().Value(ctxUser).(*users.User); ok {
		return user
	}

	session := getAuthedSession(r)
	if session == nil {
		return nil
	}

	user, err := users.GetUser(r.Context(), session.UserId)
	if err != nil {
		if err != users.ErrUserNotFound {
			logger.L.Error("failed getting authed user", zap.Error(err))
			sentry.CaptureException(err)
		}
		return nil
	}

	return &user
}

// requireAdmin lets only signed in admins through and stores the user on the
// request context.
func requireAdmin(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := getAuthedUser(r)
		if user == nil {
			returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
			return
		}
		if !user.IsAdmin() {
			returnErr(w, http.StatusForbidden, ErrMissingPermissions, nil)
			return
		}
		h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUser, user)))
	})
}

// blockCheck keeps blocked networks to read-only requests.
func blockCheck(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			h.ServeHTTP(w, r)
			return
		}

		blocked, err := networks.IsBlocked(r.RemoteAddr)
		if err != nil && err != networks.ErrInvalidAddress {
			returnInternal(w, r, err)
			return
		} else if blocked {
			returnErr(w, http.StatusForbidden, ErrIPBlocked, nil)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func getIdParam(r *http.Request, urlParam string) (feedid.FeedID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, urlParam), 10, 64)
	return id, err == nil && id > 0
}

func getUserByUrlParam(r *http.Request, urlParam string) (users.User, error) {
	var user users.User
	var err error
	username := chi.URLParam(r, urlParam)
	if strings.HasPrefix(username, "$") {
		userId, _ := strconv.ParseInt(strings.Replace(username, "$", "", 1), 10, 64)
		user, err = users.GetUser(r.Context(), userId)
	} else {
		user, err = users.GetUserByUsername(r.Context(), username)
	}
	return user, err
}

func viewerId(user *users.User) *feedid.FeedID {
	if user == nil {
		return nil
	}
	return &user.Id
}
