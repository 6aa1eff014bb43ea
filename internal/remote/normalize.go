package remote

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/bilishelf-api/internal/models"
)

const (
	// SiteOrigin is the public web origin used for canonical links.
	SiteOrigin = "https://www.bilibili.com"
	// DefaultCover is used when an item has no cover.
	DefaultCover = "https://i0.hdslb.com/bfs/archive/placeholder.jpg"
	// DefaultUploader is used when an item has no uploader name.
	DefaultUploader = "Unknown uploader"
	// DefaultPartition is used when an item has no category label.
	DefaultPartition = "uncategorized"
	// InvalidTitle is the title the remote gives to removed media.
	InvalidTitle = "已失效视频"
)

var (
	appSchemePattern = regexp.MustCompile(`(?i)^bilibili://video/([^/?#]+)`)
	bvidPattern      = regexp.MustCompile(`(?i)^BV[0-9A-Za-z]+$`)
	avidPattern      = regexp.MustCompile(`(?i)^av\d+$`)
	digitsPattern    = regexp.MustCompile(`^\d+$`)
	httpPrefix       = regexp.MustCompile(`(?i)^http://`)
	schemePrefix     = regexp.MustCompile(`(?i)^https?://`)
	videoPathPrefix  = regexp.MustCompile(`(?i)^video/`)
)

// NormalizeText trims whitespace and a leading byte-order mark.
func NormalizeText(value string) string {
	return strings.TrimSpace(strings.TrimPrefix(value, "\uFEFF"))
}

// NormalizeCoverURL upgrades protocol-relative and plain http covers to https.
func NormalizeCoverURL(input string) string {
	value := NormalizeText(input)
	switch {
	case value == "":
		return DefaultCover
	case strings.HasPrefix(value, "//"):
		return "https:" + value
	case httpPrefix.MatchString(value):
		return httpPrefix.ReplaceAllString(value, "https://")
	}
	return value
}

// NormalizeVideoURL returns the canonical watch URL for a link in any of the
// forms the remote or a snapshot may carry, falling back to the bvid.
func NormalizeVideoURL(input, bvid string) string {
	value := NormalizeText(input)
	fallback := ""
	if b := NormalizeText(bvid); b != "" {
		fallback = SiteOrigin + "/video/" + b + "/"
	}
	if value == "" {
		return fallback
	}

	if m := appSchemePattern.FindStringSubmatch(value); m != nil {
		token := NormalizeText(m[1])
		switch {
		case bvidPattern.MatchString(token):
			return SiteOrigin + "/video/" + token + "/"
		case fallback != "":
			return fallback
		case digitsPattern.MatchString(token):
			return SiteOrigin + "/video/av" + token + "/"
		}
		return SiteOrigin + "/video/" + token + "/"
	}

	switch {
	case strings.HasPrefix(value, "//"):
		return "https:" + value
	case strings.HasPrefix(value, "/video/"):
		return SiteOrigin + value
	case videoPathPrefix.MatchString(value):
		return SiteOrigin + "/" + value
	case bvidPattern.MatchString(value), avidPattern.MatchString(value):
		return SiteOrigin + "/video/" + value + "/"
	case digitsPattern.MatchString(value):
		if fallback != "" {
			return fallback
		}
		return SiteOrigin + "/video/av" + value + "/"
	case httpPrefix.MatchString(value):
		return httpPrefix.ReplaceAllString(value, "https://")
	case schemePrefix.MatchString(value):
		return value
	}
	if fallback != "" {
		return fallback
	}
	return value
}

// NormalizeSpaceURL returns the uploader's space page or nil when nothing usable is known.
func NormalizeSpaceURL(input, mid string) *string {
	value := NormalizeText(input)
	var fallback *string
	if m := NormalizeText(mid); digitsPattern.MatchString(m) && m != "0" {
		link := SiteOrigin + "/space/" + m
		fallback = &link
	}
	if value == "" {
		return fallback
	}
	if digitsPattern.MatchString(value) {
		link := SiteOrigin + "/space/" + value
		return &link
	}
	if strings.HasPrefix(value, "//") {
		link := "https:" + value
		return &link
	}
	parsed, err := url.Parse(value)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fallback
	}
	parsed.Scheme = "https"
	link := parsed.String()
	return &link
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTimestamp reads epoch seconds, epoch millis or a date string into epoch millis.
// Values above 1e12 are taken as millis.
func ParseTimestamp(raw string) *int64 {
	text := NormalizeText(raw)
	if text == "" {
		return nil
	}
	if numeric, err := strconv.ParseFloat(text, 64); err == nil {
		ms := toMillis(numeric)
		return &ms
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			ms := t.UnixMilli()
			return &ms
		}
	}
	return nil
}

// FormatTimestamp renders epoch millis as local "YYYY-MM-DD HH:MM:SS"; zero and nil render empty.
func FormatTimestamp(ms *int64) string {
	if ms == nil || *ms == 0 {
		return ""
	}
	return time.UnixMilli(*ms).Local().Format("2006-01-02 15:04:05")
}

func toMillis(value float64) int64 {
	if value > 1e12 {
		return int64(value)
	}
	return int64(value * 1000)
}

// ParseRawTimestamp reads a JSON number or string timestamp; null, blank and
// non-positive values yield nil.
func ParseRawTimestamp(raw json.RawMessage) *int64 {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" || text == "null" {
		return nil
	}
	ms := ParseTimestamp(text)
	if ms == nil || *ms <= 0 {
		return nil
	}
	return ms
}

// FilterTagNames drops blanks, reserved names and case-insensitive duplicates, keeping order.
func FilterTagNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := NormalizeText(raw)
		if name == "" || models.IsReservedTagName(name) {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

// TagNames lists the item's inline tags followed by its category label.
func (m Media) TagNames() []string {
	names := make([]string, 0, len(m.Tags)+1)
	for _, tag := range m.Tags {
		name := tag.TagName
		if NormalizeText(name) == "" {
			name = tag.Name
		}
		names = append(names, name)
	}
	names = append(names, m.TName)
	return FilterTagNames(names)
}

// FavoritedAt is the time the item was saved to the folder, or now when unknown.
func (m Media) FavoritedAt(now int64) int64 {
	if ms := ParseRawTimestamp(m.FavTime); ms != nil {
		return *ms
	}
	return now
}

// Candidate converts the item into resolver input. ok is false when the item has no bvid.
func (m Media) Candidate() (models.VideoCandidate, bool) {
	bvid := NormalizeText(m.BVID)
	if bvid == "" {
		return models.VideoCandidate{}, false
	}
	title := NormalizeText(m.Title)
	if title == "" {
		title = bvid
	}
	uploader := NormalizeText(m.Upper.Name)
	if uploader == "" {
		uploader = DefaultUploader
	}
	partition := NormalizeText(m.TName)
	if partition == "" {
		partition = DefaultPartition
	}
	publishAt := ParseRawTimestamp(m.PubTime)
	if publishAt == nil {
		publishAt = ParseRawTimestamp(m.CTime)
	}
	return models.VideoCandidate{
		BVID:             bvid,
		Title:            title,
		CoverURL:         NormalizeCoverURL(m.Cover),
		Uploader:         uploader,
		UploaderSpaceURL: NormalizeSpaceURL(m.Upper.Space, strconv.FormatInt(int64(m.Upper.Mid), 10)),
		Description:      NormalizeText(m.Intro),
		Partition:        partition,
		PublishAt:        publishAt,
		CanonicalURL:     NormalizeVideoURL(m.Link, bvid),
		IsInvalid:        title == InvalidTitle || m.Attr != 0,
	}, true
}
