// Package youtube fetches timed captions for a video through the public
// watch page, the innertube player endpoint and the timedtext feed.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/domain/transcript"
	"github.com/kailas-cloud/chatdesk/internal/metrics"
)

const (
	defaultBaseURL   = "https://www.youtube.com"
	defaultTimeout   = 15 * time.Second
	maxBodyBytes     = 8 << 20
	metricsName      = "youtube"
	androidClientVer = "20.10.38"
	acceptLanguage   = "en-US"
)

var apiKeyPattern = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client retrieves transcripts. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a transcript client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, fn := range opts {
		fn(c)
	}
	return c
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

func (t captionTrack) generated() bool { return t.Kind == "asr" }

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type timedText struct {
	Texts []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
}

// Fetch returns the transcript of videoID in the first of languages that has
// captions. Manually created captions win over auto-generated ones for the
// same language. A missing video, caption track or unreadable caption payload
// wraps domain.ErrTranscriptUnavailable; network failures and other non-200
// replies wrap domain.ErrProviderError.
func (c *Client) Fetch(ctx context.Context, videoID string, languages []string) (transcript.Transcript, error) {
	if videoID == "" {
		return nil, fmt.Errorf("empty video id: %w", domain.ErrTranscriptUnavailable)
	}

	apiKey, err := c.innertubeKey(ctx, videoID)
	if err != nil {
		return nil, err
	}

	tracks, err := c.captionTracks(ctx, videoID, apiKey)
	if err != nil {
		return nil, err
	}

	track, ok := pickTrack(tracks, languages)
	if !ok {
		return nil, fmt.Errorf("no captions for %s in %v: %w", videoID, languages, domain.ErrTranscriptUnavailable)
	}

	c.logger.Debug("Caption track selected",
		zap.String("video_id", videoID),
		zap.String("language", track.LanguageCode),
		zap.Bool("generated", track.generated()),
	)

	return c.timedText(ctx, track)
}

func (c *Client) innertubeKey(ctx context.Context, videoID string) (string, error) {
	u := c.baseURL + "/watch?" + url.Values{"v": {videoID}}.Encode()
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	m := apiKeyPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("innertube key not found for %s: %w", videoID, domain.ErrTranscriptUnavailable)
	}
	return string(m[1]), nil
}

func (c *Client) captionTracks(ctx context.Context, videoID, apiKey string) ([]captionTrack, error) {
	payload, err := json.Marshal(map[string]any{
		"context": map[string]any{
			"client": map[string]string{
				"clientName":    "ANDROID",
				"clientVersion": androidClientVer,
			},
		},
		"videoId": videoID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal player request: %w", err)
	}

	u := c.baseURL + "/youtubei/v1/player?" + url.Values{"key": {apiKey}}.Encode()
	body, err := c.do(ctx, http.MethodPost, u, payload)
	if err != nil {
		return nil, err
	}

	var resp playerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode player response: %v: %w", err, domain.ErrTranscriptUnavailable)
	}
	if s := resp.PlayabilityStatus.Status; s != "" && s != "OK" {
		return nil, fmt.Errorf("video %s not playable (%s %s): %w",
			videoID, s, resp.PlayabilityStatus.Reason, domain.ErrTranscriptUnavailable)
	}
	return resp.Captions.Renderer.CaptionTracks, nil
}

func (c *Client) timedText(ctx context.Context, track captionTrack) (transcript.Transcript, error) {
	u := strings.Replace(track.BaseURL, "&fmt=srv3", "", 1)
	if strings.HasPrefix(u, "/") {
		u = c.baseURL + u
	}
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode timedtext: %v: %w", err, domain.ErrTranscriptUnavailable)
	}

	out := make(transcript.Transcript, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text, err := html2text.FromString(t.Body, html2text.Options{OmitLinks: true})
		if err != nil {
			c.logger.Warn("Failed to clean caption text", zap.Error(err))
			text = t.Body
		}
		text = strings.TrimSpace(text)
		start, _ := strconv.ParseFloat(t.Start, 64)
		dur, _ := strconv.ParseFloat(t.Dur, 64)
		out = append(out, transcript.Segment{Start: start, Duration: dur, Text: text})
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept-Language", acceptLanguage)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ProviderRequestDuration.WithLabelValues(metricsName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(metricsName, "error").Inc()
		return nil, fmt.Errorf("youtube request: %v: %w", err, domain.ErrProviderError)
	}
	defer resp.Body.Close()

	metrics.ProviderRequestsTotal.WithLabelValues(metricsName, strconv.Itoa(resp.StatusCode)).Inc()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("youtube returned %d: %w", resp.StatusCode, domain.ErrTranscriptUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("youtube: %w", domain.NewProviderError(metricsName, resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read youtube body: %v: %w", err, domain.ErrProviderError)
	}
	return data, nil
}

// pickTrack walks languages in order, preferring a manual track over an
// auto-generated one for each language.
func pickTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	for _, lang := range languages {
		var generated *captionTrack
		for i := range tracks {
			if tracks[i].LanguageCode != lang {
				continue
			}
			if !tracks[i].generated() {
				return tracks[i], true
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, true
		}
	}
	return captionTrack{}, false
}
