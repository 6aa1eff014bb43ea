package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bilishelf-api/internal/models"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
	"github.com/noah-isme/bilishelf-api/pkg/retry"
)

// Endpoint labels used in logs, errors and metrics.
const (
	EndpointNav         = "nav"
	EndpointFolders     = "folders"
	EndpointFolderMedia = "folder_media"
	EndpointArchiveTags = "archive_tags"
)

const (
	navPath         = "/x/web-interface/nav"
	foldersPath     = "/x/v3/fav/folder/created/list-all"
	folderMediaPath = "/x/v3/fav/resource/list"
	archiveTagsPath = "/x/tag/archive/tags"

	// MaxPageSize keeps folder pages small enough not to trip the remote's defenses.
	MaxPageSize = 20

	defaultMaxAttempts = 4
	loginRequiredCode  = -101
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do calls f(req).
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Observer receives per-request telemetry. Status is 0 for transport errors.
type Observer interface {
	ObserveRemoteRequest(endpoint string, status int)
	ObserveRemoteRetry(endpoint string)
}

// Options tunes a Client. Zero values take the production defaults.
type Options struct {
	BaseURL     string
	UserAgent   string
	MaxAttempts int
	// Fallback is tried once when the primary transport stays risk-blocked.
	Fallback Doer
	Sleep    retry.Sleeper
	Observer Observer
	Logger   *zap.Logger
}

// Client is the Remote Fetch Protocol over the platform's read API.
type Client struct {
	doer        Doer
	fallback    Doer
	baseURL     string
	userAgent   string
	maxAttempts int
	backoff     func(attempt int) time.Duration
	pageDelay   func() time.Duration
	sleep       retry.Sleeper
	observer    Observer
	logger      *zap.Logger
}

// NewClient builds a client sending through doer.
func NewClient(doer Doer, opts Options) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.bilibili.com"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Sleep == nil {
		opts.Sleep = retry.SleepContext
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		doer:        doer,
		fallback:    opts.Fallback,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		userAgent:   opts.UserAgent,
		maxAttempts: opts.MaxAttempts,
		backoff:     retry.LinearJitter(350*time.Millisecond, 260*time.Millisecond),
		pageDelay:   func() time.Duration { return retry.Jitter(120*time.Millisecond, 140*time.Millisecond) },
		sleep:       opts.Sleep,
		observer:    opts.Observer,
		logger:      opts.Logger,
	}
}

// Nav checks the credential's login state.
func (c *Client) Nav(ctx context.Context, credential string) (*Nav, error) {
	var nav Nav
	if err := c.get(ctx, EndpointNav, navPath, nil, credential, &nav); err != nil {
		return nil, err
	}
	if !nav.IsLogin || nav.Mid <= 0 {
		return nil, appErrors.Clone(appErrors.ErrLoginRequired, "")
	}
	return &nav, nil
}

// ListFolders returns the credential owner's non-empty remote folders.
func (c *Client) ListFolders(ctx context.Context, credential string) ([]models.RemoteFolder, error) {
	nav, err := c.Nav(ctx, credential)
	if err != nil {
		return nil, err
	}

	var list folderList
	query := url.Values{"up_mid": {strconv.FormatInt(int64(nav.Mid), 10)}}
	if err := c.get(ctx, EndpointFolders, foldersPath, query, credential, &list); err != nil {
		return nil, err
	}

	folders := make([]models.RemoteFolder, 0, len(list.List))
	for _, entry := range list.List {
		id := int64(entry.ID)
		if id <= 0 {
			id = int64(entry.MediaID)
		}
		title := NormalizeText(entry.Title)
		if id <= 0 || title == "" || entry.MediaCount <= 0 {
			continue
		}
		folders = append(folders, models.RemoteFolder{RemoteID: id, Title: title, MediaCount: int(entry.MediaCount)})
	}
	return folders, nil
}

// FolderMediaPage fetches one page of a remote folder.
func (c *Client) FolderMediaPage(ctx context.Context, credential string, remoteID int64, page, pageSize int) (*MediaPage, error) {
	query := url.Values{
		"media_id": {strconv.FormatInt(remoteID, 10)},
		"pn":       {strconv.Itoa(page)},
		"ps":       {strconv.Itoa(pageSize)},
		"keyword":  {""},
		"order":    {"mtime"},
		"type":     {"0"},
		"tid":      {"0"},
		"platform": {"web"},
	}
	var data mediaPage
	if err := c.get(ctx, EndpointFolderMedia, folderMediaPath, query, credential, &data); err != nil {
		return nil, err
	}
	return &MediaPage{Page: page, Items: data.Medias, HasMore: pageHasMore(data, page, pageSize)}, nil
}

func pageHasMore(data mediaPage, page, pageSize int) bool {
	if data.HasMore != nil {
		return *data.HasMore
	}
	if total := int(data.Info.MediaCount); total > 0 {
		return page*pageSize < total
	}
	return len(data.Medias) >= pageSize
}

// FetchFolderMedia walks a folder from startPage for at most maxPages pages or
// maxVideos items. When the item cap cuts a page short the cursor points back at
// that page, so a resumed run may revisit items but never skips any.
func (c *Client) FetchFolderMedia(ctx context.Context, credential string, remoteID int64, startPage, maxPages, maxVideos int) (*FolderFetch, error) {
	if startPage < 1 {
		startPage = 1
	}
	limit := maxVideos
	if limit < 1 {
		limit = 1
	}
	pageSize := MaxPageSize
	if limit < pageSize {
		pageSize = limit
	}

	out := &FolderFetch{}
	for step := 0; step < maxPages; step++ {
		page := startPage + step
		if step > 0 {
			if err := c.sleep(ctx, c.pageDelay()); err != nil {
				return nil, err
			}
		}

		result, err := c.FolderMediaPage(ctx, credential, remoteID, page, pageSize)
		if err != nil {
			return nil, err
		}
		if len(result.Items) == 0 {
			out.HasMorePage, out.NextPage = false, nil
			break
		}

		remain := limit - len(out.Items)
		if len(result.Items) > remain {
			out.Items = append(out.Items, result.Items[:remain]...)
			out.HasMorePage, out.NextPage = true, &page
			break
		}
		out.Items = append(out.Items, result.Items...)

		if !result.HasMore {
			out.HasMorePage, out.NextPage = false, nil
			break
		}
		next := page + 1
		out.HasMorePage, out.NextPage = true, &next
		if len(out.Items) >= limit {
			break
		}
	}
	return out, nil
}

// ArchiveTags looks up the tag names of a single video.
func (c *Client) ArchiveTags(ctx context.Context, credential, bvid string) ([]string, error) {
	var data []archiveTag
	if err := c.get(ctx, EndpointArchiveTags, archiveTagsPath, url.Values{"bvid": {bvid}}, credential, &data); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(data))
	for _, tag := range data {
		name := NormalizeText(tag.TagName)
		if name == "" {
			name = NormalizeText(tag.TagNameV2)
		}
		if name == "" {
			name = NormalizeText(tag.Name)
		}
		names = append(names, name)
	}
	return FilterTagNames(names), nil
}

type statusError struct {
	endpoint string
	status   int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("bilibili %s request failed (%d)", e.endpoint, e.status)
}

func isRetryable(err error) bool {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.status == http.StatusPreconditionFailed || se.status == http.StatusTooManyRequests || se.status >= 500
	}
	return true
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, credential string, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	_, err := retry.Do(ctx, retry.Policy{
		MaxAttempts: c.maxAttempts,
		IsRetryable: isRetryable,
		Backoff:     c.backoff,
		Sleep:       c.sleep,
		OnRetry: func(attempt int, err error) {
			if c.observer != nil {
				c.observer.ObserveRemoteRetry(endpoint)
			}
			c.logger.Debug("bilibili request retry", zap.String("endpoint", endpoint), zap.Int("attempt", attempt), zap.Error(err))
		},
	}, func(ctx context.Context, attempt int) (struct{}, error) {
		return struct{}{}, c.send(ctx, c.doer, endpoint, target, credential, out)
	})
	if err == nil {
		return nil
	}

	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusPreconditionFailed {
		return c.escalateRisk(ctx, se, endpoint, target, credential, out)
	}
	return appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status,
		fmt.Sprintf("bilibili %s unavailable after %d attempts", endpoint, c.maxAttempts))
}

func (c *Client) escalateRisk(ctx context.Context, primary *statusError, endpoint, target, credential string, out interface{}) error {
	message := fmt.Sprintf("%s; remote risk control is active, retry later with a smaller scope", primary.Error())
	if c.fallback == nil {
		return appErrors.Wrap(primary, appErrors.ErrRiskControlled.Code, appErrors.ErrRiskControlled.Status, message)
	}

	c.logger.Info("bilibili request switching to fallback transport", zap.String("endpoint", endpoint))
	fbErr := c.send(ctx, c.fallback, endpoint, target, credential, out)
	if fbErr == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(fbErr, &appErr) {
		return appErr
	}
	return appErrors.Wrap(primary, appErrors.ErrRiskControlled.Code, appErrors.ErrRiskControlled.Status,
		fmt.Sprintf("%s; fallback transport failed: %v", message, fbErr))
}

func (c *Client) send(ctx context.Context, doer Doer, endpoint, target, credential string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return appErrors.Internal(err, "build bilibili request")
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", SiteOrigin+"/")
	req.Header.Set("Origin", SiteOrigin)
	req.Header.Set("User-Agent", c.userAgent)
	if credential != "" {
		req.Header.Set("Cookie", credential)
	}

	resp, err := doer.Do(req)
	if err != nil {
		c.observe(endpoint, 0)
		return fmt.Errorf("bilibili %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &statusError{endpoint: endpoint, status: resp.StatusCode}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode bilibili %s response: %w", endpoint, err)
	}
	if env.Code == loginRequiredCode {
		return appErrors.Clone(appErrors.ErrLoginRequired, "")
	}
	if env.Code != 0 {
		return appErrors.Clone(appErrors.ErrRemoteRejected,
			fmt.Sprintf("bilibili %s rejected request: %s (code %d)", endpoint, env.text(), env.Code))
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode bilibili %s data: %w", endpoint, err)
	}
	return nil
}

func (c *Client) observe(endpoint string, status int) {
	if c.observer != nil {
		c.observer.ObserveRemoteRequest(endpoint, status)
	}
}
