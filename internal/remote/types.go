package remote

import (
	"encoding/json"
	"strconv"
	"strings"
)

// envelope is the common response wrapper of the read API.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Msg != "" {
		return e.Msg
	}
	return "bilibili api returned non-zero code"
}

// flexInt decodes numbers that arrive either as JSON numbers or numeric strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(raw []byte) error {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" || text == "null" {
		*f = 0
		return nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(int64(value))
	return nil
}

// Nav is the login identity of the credential.
type Nav struct {
	IsLogin bool    `json:"isLogin"`
	Mid     flexInt `json:"mid"`
}

type folderList struct {
	List []folderEntry `json:"list"`
}

type folderEntry struct {
	ID         flexInt `json:"id"`
	MediaID    flexInt `json:"media_id"`
	Title      string  `json:"title"`
	MediaCount flexInt `json:"media_count"`
}

// Upper is the uploader block of a media item.
type Upper struct {
	Mid   flexInt `json:"mid"`
	Name  string  `json:"name"`
	Space string  `json:"space"`
}

// MediaTag is an inline tag on a media item.
type MediaTag struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
}

// Media is one item of a remote folder.
type Media struct {
	BVID    string          `json:"bvid"`
	Title   string          `json:"title"`
	Cover   string          `json:"cover"`
	Intro   string          `json:"intro"`
	Link    string          `json:"link"`
	Attr    int             `json:"attr"`
	Upper   Upper           `json:"upper"`
	CTime   json.RawMessage `json:"ctime"`
	PubTime json.RawMessage `json:"pubtime"`
	FavTime json.RawMessage `json:"fav_time"`
	TName   string          `json:"tname"`
	Tags    []MediaTag      `json:"tags"`
}

type mediaPage struct {
	HasMore *bool   `json:"has_more"`
	Medias  []Media `json:"medias"`
	Info    struct {
		MediaCount flexInt `json:"media_count"`
	} `json:"info"`
}

type archiveTag struct {
	TagName   string `json:"tag_name"`
	TagNameV2 string `json:"tag_name_v2"`
	Name      string `json:"name"`
}

// MediaPage is one fetched page with the derived continuation flag.
type MediaPage struct {
	Page    int
	Items   []Media
	HasMore bool
}

// FolderFetch is the bounded result of walking a folder's pages.
type FolderFetch struct {
	Items       []Media
	HasMorePage bool
	NextPage    *int
}
