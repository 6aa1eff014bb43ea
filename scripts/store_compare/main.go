// Command store_compare exports the library from two running instances, typically
// one on the relational store and one on the KV store, and reports entities
// present on only one side. Surrogate ids are ignored; entities are keyed by
// folder name, bvid and tag name.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/pkg/export"
)

type snapshot struct {
	Folders     []models.Folder     `json:"folders"`
	Videos      []models.Video      `json:"videos"`
	FolderItems []models.FolderItem `json:"folderItems"`
	Tags        []models.Tag        `json:"tags"`
	VideoTags   []models.VideoTag   `json:"videoTags"`
}

type section struct {
	Name      string
	OnlyLeft  []string
	OnlyRight []string
}

func (s section) clean() bool {
	return len(s.OnlyLeft) == 0 && len(s.OnlyRight) == 0
}

func main() {
	var (
		leftBase  string
		rightBase string
		prefix    string
		token     string
		timeout   time.Duration
	)

	flag.StringVar(&leftBase, "left", "http://localhost:8080", "Base URL of the first instance")
	flag.StringVar(&rightBase, "right", "http://localhost:8081", "Base URL of the second instance")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API prefix")
	flag.StringVar(&token, "token", os.Getenv("BILISHELF_TOKEN"), "Bearer token for both instances")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}
	left, err := fetchSnapshot(client, leftBase+prefix, token)
	if err != nil {
		log.Fatalf("left export failed: %v", err)
	}
	right, err := fetchSnapshot(client, rightBase+prefix, token)
	if err != nil {
		log.Fatalf("right export failed: %v", err)
	}

	sections := compare(left, right)
	printReport(leftBase, rightBase, sections)
	for _, s := range sections {
		if !s.clean() {
			os.Exit(1)
		}
	}
}

func fetchSnapshot(client *http.Client, base, token string) (*snapshot, error) {
	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(base, "/")+"/export?format=json", nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return decodeSnapshot(body)
}

func decodeSnapshot(body []byte) (*snapshot, error) {
	body = []byte(strings.TrimPrefix(string(body), export.ByteOrderMark))
	var snap snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// keys projects a snapshot onto id-free natural keys per entity kind.
func keys(s *snapshot) map[string][]string {
	folderName := make(map[int64]string, len(s.Folders))
	folders := make([]string, 0, len(s.Folders))
	for _, f := range s.Folders {
		folderName[f.ID] = f.Name
		folders = append(folders, fmt.Sprintf("%s trashed=%t", f.Name, f.DeletedAt != nil))
	}

	bvid := make(map[int64]string, len(s.Videos))
	videos := make([]string, 0, len(s.Videos))
	for _, v := range s.Videos {
		bvid[v.ID] = v.BVID
		videos = append(videos, fmt.Sprintf("%s trashed=%t invalid=%t", v.BVID, v.DeletedAt != nil, v.IsInvalid))
	}

	tagName := make(map[int64]string, len(s.Tags))
	tags := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		tagName[t.ID] = string(t.Type) + ":" + t.Name
		tags = append(tags, fmt.Sprintf("%s:%s archived=%t", t.Type, t.Name, t.ArchivedAt != nil))
	}

	items := make([]string, 0, len(s.FolderItems))
	for _, it := range s.FolderItems {
		items = append(items, folderName[it.FolderID]+" <- "+bvid[it.VideoID])
	}

	videoTags := make([]string, 0, len(s.VideoTags))
	for _, vt := range s.VideoTags {
		videoTags = append(videoTags, bvid[vt.VideoID]+" # "+tagName[vt.TagID])
	}

	return map[string][]string{
		"folders":      folders,
		"videos":       videos,
		"tags":         tags,
		"folder items": items,
		"video tags":   videoTags,
	}
}

func compare(left, right *snapshot) []section {
	l, r := keys(left), keys(right)
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]section, 0, len(names))
	for _, name := range names {
		onlyLeft, onlyRight := diff(l[name], r[name])
		out = append(out, section{Name: name, OnlyLeft: onlyLeft, OnlyRight: onlyRight})
	}
	return out
}

func diff(a, b []string) (onlyA, onlyB []string) {
	seen := make(map[string]int, len(a))
	for _, k := range a {
		seen[k]++
	}
	for _, k := range b {
		if seen[k] > 0 {
			seen[k]--
			continue
		}
		onlyB = append(onlyB, k)
	}
	for k, n := range seen {
		for ; n > 0; n-- {
			onlyA = append(onlyA, k)
		}
	}
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	return onlyA, onlyB
}

func printReport(leftBase, rightBase string, sections []section) {
	fmt.Println("Store Compare Report")
	fmt.Println("====================")
	fmt.Printf("left:  %s\nright: %s\n", leftBase, rightBase)
	for _, s := range sections {
		status := "OK"
		if !s.clean() {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s\n", status, s.Name)
		for _, k := range s.OnlyLeft {
			fmt.Printf("  - only left:  %s\n", k)
		}
		for _, k := range s.OnlyRight {
			fmt.Printf("  + only right: %s\n", k)
		}
	}
}
