package remote

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCoverURL(t *testing.T) {
	assert.Equal(t, DefaultCover, NormalizeCoverURL("  "))
	assert.Equal(t, "https://i0.hdslb.com/a.jpg", NormalizeCoverURL("//i0.hdslb.com/a.jpg"))
	assert.Equal(t, "https://i0.hdslb.com/a.jpg", NormalizeCoverURL("http://i0.hdslb.com/a.jpg"))
	assert.Equal(t, "https://x/a.jpg", NormalizeCoverURL("https://x/a.jpg"))
}

func TestNormalizeVideoURL(t *testing.T) {
	cases := []struct {
		input, bvid, want string
	}{
		{"", "BV1ab", "https://www.bilibili.com/video/BV1ab/"},
		{"bilibili://video/BV1cd?page=2", "BV1ab", "https://www.bilibili.com/video/BV1cd/"},
		{"bilibili://video/123", "", "https://www.bilibili.com/video/av123/"},
		{"bilibili://video/123", "BV1ab", "https://www.bilibili.com/video/BV1ab/"},
		{"//www.bilibili.com/video/BV1ab", "", "https://www.bilibili.com/video/BV1ab"},
		{"/video/BV1ab/", "", "https://www.bilibili.com/video/BV1ab/"},
		{"video/BV1ab", "", "https://www.bilibili.com/video/BV1ab"},
		{"BV1ab", "", "https://www.bilibili.com/video/BV1ab/"},
		{"av77", "", "https://www.bilibili.com/video/av77/"},
		{"77", "", "https://www.bilibili.com/video/av77/"},
		{"http://b23.tv/x", "", "https://b23.tv/x"},
		{"garbage", "BV1ab", "https://www.bilibili.com/video/BV1ab/"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeVideoURL(tc.input, tc.bvid), tc.input)
	}
}

func TestNormalizeSpaceURL(t *testing.T) {
	got := NormalizeSpaceURL("", "123")
	require.NotNil(t, got)
	assert.Equal(t, "https://www.bilibili.com/space/123", *got)

	got = NormalizeSpaceURL("http://space.bilibili.com/9", "")
	require.NotNil(t, got)
	assert.Equal(t, "https://space.bilibili.com/9", *got)

	assert.Nil(t, NormalizeSpaceURL("", "0"))
	assert.Nil(t, NormalizeSpaceURL("ftp://nope", ""))
}

func TestParseTimestamp(t *testing.T) {
	ms := ParseTimestamp("1700000000")
	require.NotNil(t, ms)
	assert.Equal(t, int64(1700000000000), *ms)

	ms = ParseTimestamp("1700000000123")
	require.NotNil(t, ms)
	assert.Equal(t, int64(1700000000123), *ms)

	ms = ParseTimestamp("2024-01-02 03:04:05")
	require.NotNil(t, ms)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local).UnixMilli(), *ms)

	assert.Nil(t, ParseTimestamp(""))
	assert.Nil(t, ParseTimestamp("yesterday"))

	round := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local).UnixMilli()
	back := ParseTimestamp(FormatTimestamp(&round))
	require.NotNil(t, back)
	assert.Equal(t, round, *back)
}

func TestMediaCandidate(t *testing.T) {
	var media Media
	require.NoError(t, json.Unmarshal([]byte(`{
		"bvid":"BV1xx","title":"已失效视频","cover":"//c/1.jpg","intro":" hi ",
		"upper":{"mid":5,"name":""},"pubtime":1700000000,"fav_time":1700000500,
		"tname":"Music","tags":[{"tag_name":"Live"},{"name":"music"},{"tag_name":"uncategorized"}]
	}`), &media))

	candidate, ok := media.Candidate()
	require.True(t, ok)
	assert.Equal(t, "BV1xx", candidate.BVID)
	assert.True(t, candidate.IsInvalid)
	assert.Equal(t, "https://c/1.jpg", candidate.CoverURL)
	assert.Equal(t, DefaultUploader, candidate.Uploader)
	assert.Equal(t, "https://www.bilibili.com/space/5", *candidate.UploaderSpaceURL)
	assert.Equal(t, "hi", candidate.Description)
	assert.Equal(t, int64(1700000000000), *candidate.PublishAt)
	assert.Equal(t, "https://www.bilibili.com/video/BV1xx/", candidate.CanonicalURL)
	assert.Equal(t, int64(1700000500000), media.FavoritedAt(1))
	assert.Equal(t, []string{"Live", "music"}, media.TagNames())

	_, ok = Media{}.Candidate()
	assert.False(t, ok)
	assert.Equal(t, int64(9), Media{}.FavoritedAt(9))
}
