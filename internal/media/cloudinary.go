package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backend-xclone/internal/config"
)

// Store is the media-hosting interface the post and user services consume.
// Upload takes the client-supplied payload (a data URI or remote URL) and
// returns the hosted URL; Destroy removes a previously uploaded asset.
type Store interface {
	Upload(ctx context.Context, payload string) (string, error)
	Destroy(ctx context.Context, publicID string) error
}

// Cloudinary talks to a Cloudinary-compatible image API.
type Cloudinary struct {
	baseURL   string
	cloudName string
	apiKey    string
	apiSecret string
	client    *http.Client
}

func NewCloudinary(cfg config.Config) *Cloudinary {
	return &Cloudinary{
		baseURL:   strings.TrimSuffix(cfg.MediaBaseURL, "/"),
		cloudName: cfg.MediaCloudName,
		apiKey:    cfg.MediaAPIKey,
		apiSecret: cfg.MediaAPISecret,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

var nowFn = time.Now

func (c *Cloudinary) Upload(ctx context.Context, payload string) (string, error) {
	ts := fmt.Sprintf("%d", nowFn().Unix())
	form := url.Values{}
	form.Set("file", payload)
	form.Set("api_key", c.apiKey)
	form.Set("timestamp", ts)
	form.Set("signature", c.sign("timestamp="+ts))

	var result struct {
		SecureURL string `json:"secure_url"`
	}
	if err := c.post(ctx, "/image/upload", form, &result); err != nil {
		return "", err
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("media upload returned no url")
	}
	return result.SecureURL, nil
}

func (c *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	ts := fmt.Sprintf("%d", nowFn().Unix())
	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("api_key", c.apiKey)
	form.Set("timestamp", ts)
	form.Set("signature", c.sign("public_id="+publicID+"&timestamp="+ts))

	var result struct {
		Result string `json:"result"`
	}
	return c.post(ctx, "/image/destroy", form, &result)
}

func (c *Cloudinary) post(ctx context.Context, path string, form url.Values, out any) error {
	endpoint := c.baseURL + "/" + c.cloudName + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("media api returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// sign produces the request signature: sha1 hex of the sorted parameter
// string concatenated with the API secret.
func (c *Cloudinary) sign(params string) string {
	sum := sha1.Sum([]byte(params + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

// PublicID extracts the asset id from a hosted URL: the last path segment
// with its file extension stripped.
func PublicID(hostedURL string) string {
	segment := hostedURL
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if i := strings.Index(segment, "."); i >= 0 {
		segment = segment[:i]
	}
	return segment
}
