package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"telegram-media-relay/internal/domain"
	"telegram-media-relay/internal/domain/model"
	"telegram-media-relay/internal/domain/ports/adapter"
)

var _ adapter.LinkResolver = (*InstagramResolver)(nil)

// InstagramResolver calls the external Instagram resolution API.
type InstagramResolver struct {
	baseURL string
	client  *http.Client
}

func NewInstagramResolver(baseURL string, timeout time.Duration) *InstagramResolver {
	return &InstagramResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type instagramResponse struct {
	VideoURL string `json:"videoUrl"`
	AudioURL string `json:"audioUrl"`
}

func (r *InstagramResolver) Resolve(ctx context.Context, link string) (*model.ResolvedLink, error) {
	reqURL := fmt.Sprintf("%s?url=%s", r.baseURL, url.QueryEscape(link))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build instagram request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResolutionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: instagram resolver status %d", domain.ErrResolutionFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read instagram response: %w", err)
	}
	var out instagramResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: unmarshal instagram response: %v", domain.ErrResolutionFailed, err)
	}

	resolved := &model.ResolvedLink{Audio: out.AudioURL}
	if out.VideoURL != "" {
		resolved.Variants = map[string]string{"video": out.VideoURL}
	}
	return resolved, nil
}
