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

var _ adapter.LinkResolver = (*YouTubeResolver)(nil)

// YouTubeResolver calls the external YouTube resolution API and maps its
// response onto the domain's variant snapshot.
type YouTubeResolver struct {
	baseURL string
	client  *http.Client
}

func NewYouTubeResolver(baseURL string, timeout time.Duration) *YouTubeResolver {
	return &YouTubeResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// youtubeResponse mirrors the resolver service's wire format.
type youtubeResponse struct {
	VideoLinks map[string]string `json:"videoLinks"`
	AudioLink  string            `json:"audioLink"`
}

func (r *YouTubeResolver) Resolve(ctx context.Context, link string) (*model.ResolvedLink, error) {
	reqURL := fmt.Sprintf("%s?url=%s", r.baseURL, url.QueryEscape(link))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build youtube request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResolutionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: youtube resolver status %d", domain.ErrResolutionFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read youtube response: %w", err)
	}
	var out youtubeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: unmarshal youtube response: %v", domain.ErrResolutionFailed, err)
	}

	return &model.ResolvedLink{
		Variants: out.VideoLinks,
		Audio:    out.AudioLink,
	}, nil
}
