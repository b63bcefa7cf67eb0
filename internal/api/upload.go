package api

import (
	"context"
	"net/http"

	"github.com/pmeridian/charta/internal/domain"
)

// UploadThumbnailFromURL asks the server to fetch an image and store it in
// object storage, returning the stored URL. The upload itself is opaque to
// this client; the result is just a URL string to set on an entity.
func (c *Client) UploadThumbnailFromURL(ctx context.Context, imageURL string) (string, error) {
	if imageURL == "" {
		return "", domain.NewValidationError("url", "image URL is required")
	}
	var resp struct {
		URL string `json:"url"`
	}
	body := map[string]string{"url": imageURL}
	if err := c.do(ctx, http.MethodPost, "/upload/thumbnail-from-url", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
