package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/feedid"
)

type File struct {
	Name string
	Type string
	Data []byte
}

// Uploader sends images to an ImgBB compatible host.
type Uploader struct {
	Endpoint string
	ApiKey   string
	Client   *http.Client
}

type hostResponse struct {
	Data struct {
		Id  string `json:"id"`
		Url string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

func NewUploader(endpoint, apiKey string) *Uploader {
	return &Uploader{
		Endpoint: endpoint,
		ApiKey:   apiKey,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload validates f and posts it to the host, returning the public URL.
// expiration is in seconds, zero keeps the image forever.
func (u *Uploader) Upload(ctx context.Context, f File, expiration int) (string, error) {
	if err := Validate(f.Name, f.Type, f.Data); err != nil {
		return "", err
	}

	// Build form
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", f.Name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	// Build URL
	endpoint, err := url.Parse(u.Endpoint)
	if err != nil {
		return "", err
	}
	query := endpoint.Query()
	query.Set("key", u.ApiKey)
	if expiration > 0 {
		query.Set("expiration", strconv.Itoa(expiration))
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	var decoded hostResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: status %d", ErrUploadFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || !decoded.Success || decoded.Data.Url == "" {
		msg := http.StatusText(resp.StatusCode)
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, msg)
	}

	return decoded.Data.Url, nil
}

type UploadLog struct {
	Id        string        `bson:"_id"`
	Url       string        `bson:"url"`
	Name      string        `bson:"name"`
	Size      int64         `bson:"size"`
	Type      string        `bson:"type"`
	UserId    feedid.FeedID `bson:"user_id"`
	Provider  string        `bson:"provider"`
	CreatedAt int64         `bson:"created_at"`
}

// LogUpload records an uploaded image in the uploads collection.
func LogUpload(ctx context.Context, f File, imageUrl string, userId feedid.FeedID) (UploadLog, error) {
	l := UploadLog{
		Id:        uuid.NewString(),
		Url:       imageUrl,
		Name:      f.Name,
		Size:      int64(len(f.Data)),
		Type:      f.Type,
		UserId:    userId,
		Provider:  "imgbb",
		CreatedAt: time.Now().UnixMilli(),
	}
	_, err := db.Uploads.InsertOne(ctx, l)
	return l, err
}
