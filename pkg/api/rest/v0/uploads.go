package v0_rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/socialfeed/server/pkg/images"
	"github.com/socialfeed/server/pkg/logger"
	"github.com/socialfeed/server/pkg/structs"
	"go.uber.org/zap"
)

// multipart overhead on top of the image itself
const uploadFormSlack = 1 << 20

func UploadsRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Post("/", uploadImage)

	return r
}

func uploadImage(w http.ResponseWriter, r *http.Request) {
	// Get authed user
	user := getAuthedUser(r)
	if user == nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	// Ratelimit
	if !checkRatelimit(w, r, "upload", "user", strconv.FormatInt(user.Id, 10), 10, 60) {
		return
	}

	// Read image
	r.Body = http.MaxBytesReader(w, r.Body, images.MaxImageSize+uploadFormSlack)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			returnErr(w, http.StatusRequestEntityTooLarge, ErrTooLarge, nil)
		} else {
			returnErr(w, http.StatusBadRequest, ErrBadRequest, map[string]string{
				"image": "Missing image.",
			})
		}
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		returnErr(w, http.StatusBadRequest, ErrBadRequest, nil)
		return
	}
	f := images.File{
		Name: header.Filename,
		Type: header.Header.Get("Content-Type"),
		Data: data,
	}
	expiration, _ := strconv.Atoi(r.FormValue("expiration"))

	// Validate before touching the host
	if err := images.Validate(f.Name, f.Type, f.Data); err != nil {
		if errors.Is(err, images.ErrImageTooLarge) {
			returnErr(w, http.StatusRequestEntityTooLarge, ErrTooLarge, nil)
		} else {
			returnErr(w, http.StatusBadRequest, ErrBadRequest, map[string]string{
				"image": err.Error(),
			})
		}
		return
	}
	if uploader == nil {
		returnErr(w, http.StatusBadGateway, ErrUpstream, nil)
		return
	}

	// Upload
	imageUrl, err := uploader.Upload(r.Context(), f, expiration)
	if err != nil {
		logger.L.Warn("image upload failed", zap.Int64("user_id", user.Id), zap.Error(err))
		if !errors.Is(err, images.ErrUploadFailed) {
			sentry.CaptureException(err)
		}
		returnErr(w, http.StatusBadGateway, ErrUpstream, nil)
		return
	}

	// Log upload, failures are only reported
	if _, err := images.LogUpload(r.Context(), f, imageUrl, user.Id); err != nil {
		logger.L.Error("failed logging upload", zap.String("url", imageUrl), zap.Error(err))
		sentry.CaptureException(err)
	}

	returnData(w, http.StatusOK, UploadResp{
		V0Upload: structs.V0Upload{
			Url:  imageUrl,
			Name: f.Name,
			Size: int64(len(f.Data)),
			Type: f.Type,
		},
	})
}
