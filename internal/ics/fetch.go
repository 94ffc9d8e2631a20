package ics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"calview/internal/config"
	appLog "calview/internal/log"
	"calview/internal/model"
)

// Source is one subscribed calendar: where its ICS payload lives plus
// the calendar identity its events carry on the timeline.
type Source struct {
	ID       string
	Name     string
	URL      string
	Color    string
	Editable bool
}

// SourcesFromConfig maps configured sources onto fetchable ones.
func SourcesFromConfig(cfgs []config.SourceConfig) []Source {
	out := make([]Source, len(cfgs))
	for i, sc := range cfgs {
		out[i] = Source{
			ID:       sc.ID,
			Name:     sc.Name,
			URL:      sc.URL,
			Color:    sc.Color,
			Editable: sc.Editable,
		}
	}
	return out
}

// cacheMeta is the HTTP validator state stored next to a cached body.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher retrieves ICS payloads. HTTP sources are fetched with ETag /
// Last-Modified validators backed by a per-source disk cache, and the
// cached body is served when the network fails; file sources are read
// directly.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFetcher creates a Fetcher caching under cacheDir.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/ics-cache"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 15 * time.Second},
		cacheDir: cacheDir,
	}
}

// Fetch returns the ICS payload of one source.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	if src.URL == "" {
		return nil, errors.New("ics: source URL is empty")
	}
	if path, ok := localPath(src.URL); ok {
		return os.ReadFile(path)
	}
	return f.fetchHTTP(ctx, src)
}

// localPath reports whether raw names a local file, returning its path.
func localPath(raw string) (string, bool) {
	if strings.HasPrefix(raw, "file://") {
		return strings.TrimPrefix(raw, "file://"), true
	}
	if u, err := url.Parse(raw); err != nil || u.Scheme == "" {
		return raw, true
	}
	return "", false
}

func (f *Fetcher) fetchHTTP(ctx context.Context, src Source) ([]byte, error) {
	dir := filepath.Join(f.cacheDir, src.ID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	meta := f.loadMeta(dir, src.URL)
	cached, _ := os.ReadFile(filepath.Join(dir, "body.ics"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cached) > 0 {
			appLog.Warn("ics fetch failed, serving cached body", "source", src.ID, "url", redactURL(src.URL), "reason", err)
			return cached, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		f.saveCache(dir, cacheMeta{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}, body, src)
		appLog.Debug("ics fetched", "source", src.ID, "url", redactURL(src.URL), "bytes", len(body))
		return body, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return nil, errors.New("ics: 304 Not Modified without a cached body")
		}
		appLog.Debug("ics not modified, using cache", "source", src.ID, "url", redactURL(src.URL))
		return cached, nil

	default:
		if len(cached) > 0 {
			appLog.Warn("ics fetch non-OK, serving cached body", "source", src.ID, "url", redactURL(src.URL), "status", resp.StatusCode)
			return cached, nil
		}
		return nil, fmt.Errorf("ics: fetch %s: %s", redactURL(src.URL), resp.Status)
	}
}

// loadMeta returns the cached validators, discarding them when the
// cached URL no longer matches the source.
func (f *Fetcher) loadMeta(dir, sourceURL string) cacheMeta {
	var meta cacheMeta
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return cacheMeta{}
	}
	if json.Unmarshal(data, &meta) != nil || meta.URL != sourceURL {
		return cacheMeta{}
	}
	return meta
}

func (f *Fetcher) saveCache(dir string, meta cacheMeta, body []byte, src Source) {
	// Body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(dir, "body.ics"), body, 0o600); err != nil {
		appLog.Warn("ics cache write failed", "source", src.ID, "reason", err)
		return
	}
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, "meta.json"), data, 0o600)
	}
	if err != nil {
		appLog.Warn("ics cache meta write failed", "source", src.ID, "reason", err)
	}
}

// Load runs the whole source pipeline: fetch, parse and expand every
// source into visible events within [rangeStart, rangeEnd), sorted by
// start time. A failing source is logged and skipped so the remaining
// calendars still render.
func (f *Fetcher) Load(ctx context.Context, sources []Source, rangeStart, rangeEnd time.Time) []model.VisibleEvent {
	var out []model.VisibleEvent
	for _, src := range sources {
		body, err := f.Fetch(ctx, src)
		if err != nil {
			appLog.Error("ics source unavailable", err, "source", src.ID, "url", redactURL(src.URL))
			continue
		}
		parsed, err := Parse(src.ID, body)
		if err != nil {
			appLog.Error("ics source unreadable", err, "source", src.ID, "url", redactURL(src.URL))
			continue
		}
		out = append(out, Expand(src, parsed, rangeStart, rangeEnd)...)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// redactURL trims an ICS URL down to its host for logging; paths and
// query strings of calendar subscriptions often embed access tokens.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/..."
}
