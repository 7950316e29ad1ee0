// Package wsb scrapes the r/wallstreetbets search endpoint for the weekly
// earnings thread and digs an embedded image out of whatever shape the post
// happens to have.
package wsb

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	DefaultSearchURL = "https://www.reddit.com/r/wallstreetbets/search.json"

	// DefaultQuery targets the recurring weekly earnings thread. Tune if the
	// subreddit changes titles or flairs.
	DefaultQuery = `flair_name:"Earnings Thread" OR "Weekly Earnings Thread" OR "Weekly Earnings"`

	// MinCandidateScore is the heuristic score a post needs to be accepted
	// without falling back to the newest result.
	MinCandidateScore = 4

	// maxCrosspostDepth bounds crosspost recursion so a malformed chain of
	// crossposts cannot loop the extractor forever.
	maxCrosspostDepth = 4

	userAgent = "fin-board-relay/1.0 (weekly earnings thread relay)"
)

// Client queries the subreddit search endpoint and downloads images.
type Client struct {
	SearchURL string
	client    *http.Client
}

func NewClient() *Client {
	return &Client{
		SearchURL: DefaultSearchURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Post is a forum post candidate. Only the fields the scorer and the image
// extractor care about are decoded.
type Post struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Flair         string               `json:"link_flair_text"`
	CreatedUTC    float64              `json:"created_utc"`
	Permalink     string               `json:"permalink"`
	URL           string               `json:"url"`
	URLOverridden string               `json:"url_overridden_by_dest"`
	IsSelf        bool                 `json:"is_self"`
	Crossposts    []Post               `json:"crosspost_parent_list"`
	MediaMetadata map[string]mediaMeta `json:"media_metadata"`
	Preview       preview              `json:"preview"`
}

// Created returns the post creation time in UTC.
func (p *Post) Created() time.Time {
	return time.Unix(int64(p.CreatedUTC), 0).UTC()
}

// PermalinkURL returns the absolute link to the post.
func (p *Post) PermalinkURL() string {
	return "https://reddit.com" + p.Permalink
}

type mediaMeta struct {
	S struct {
		U string `json:"u"`
		X int    `json:"x"`
		Y int    `json:"y"`
	} `json:"s"`
}

type preview struct {
	Images []struct {
		Source struct {
			URL string `json:"url"`
		} `json:"source"`
	} `json:"images"`
}

type searchListing struct {
	Data struct {
		Children []struct {
			Data *Post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Search queries the subreddit search endpoint, newest first.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]*Post, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("restrict_sr", "1")
	params.Set("sort", "new")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("include_over_18", "on")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.client.Do(req) //nolint:bodyclose
	if err != nil {
		return nil, fmt.Errorf("error fetching search results: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d: %s", res.StatusCode, res.Status)
	}

	var listing searchListing
	if err := json.NewDecoder(res.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("error decoding search response: %w", err)
	}

	var posts []*Post
	for _, child := range listing.Data.Children {
		if child.Data != nil {
			posts = append(posts, child.Data)
		}
	}
	return posts, nil
}

// DownloadImage fetches the raw bytes of an image URL.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating image request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.client.Do(req) //nolint:bodyclose
	if err != nil {
		return nil, fmt.Errorf("error downloading image: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download returned status %d: %s", res.StatusCode, res.Status)
	}

	return io.ReadAll(res.Body)
}

// Score rates how much a post looks like the weekly earnings thread.
// Weighted keyword presence in the title and flair.
func Score(p *Post) int {
	title := strings.ToLower(p.Title)
	flair := strings.ToLower(p.Flair)

	s := 0
	if strings.Contains(title, "weekly") {
		s += 2
	}
	if strings.Contains(title, "earnings") {
		s += 3
	}
	if strings.Contains(title, "thread") {
		s++
	}
	if strings.Contains(flair, "earnings") {
		s += 2
	}
	return s
}

// PickCandidate returns the highest-scoring post at or above minScore,
// the newest post if none score high enough, or nil for an empty set.
// Ties on score go to the newer post.
func PickCandidate(posts []*Post, minScore int) *Post {
	if len(posts) == 0 {
		return nil
	}

	best := lo.MaxBy(posts, func(a, b *Post) bool {
		if Score(a) != Score(b) {
			return Score(a) > Score(b)
		}
		return a.CreatedUTC > b.CreatedUTC
	})
	if Score(best) >= minScore {
		return best
	}

	return lo.MaxBy(posts, func(a, b *Post) bool {
		return a.CreatedUTC > b.CreatedUTC
	})
}

var imageHostPattern = regexp.MustCompile(`(i\.redd\.it|i\.imgur\.com|\.png$|\.jpg$|\.jpeg$|\.webp$)`)

// ExtractImageURL finds the best image for a post, trying in priority order:
// the crosspost's original post, the largest gallery image, the first preview
// image, and finally a direct link to a known image host or extension.
func ExtractImageURL(p *Post) (string, bool) {
	return extractImageURL(p, 0)
}

func extractImageURL(p *Post, depth int) (string, bool) {
	if p == nil {
		return "", false
	}

	if len(p.Crossposts) > 0 && depth < maxCrosspostDepth {
		if u, ok := extractImageURL(&p.Crossposts[0], depth+1); ok {
			return u, true
		}
	}

	// Gallery posts keep every item in media_metadata; take the largest one
	if len(p.MediaMetadata) > 0 {
		best := ""
		bestArea := -1
		for _, meta := range p.MediaMetadata {
			if meta.S.U == "" || meta.S.X <= 0 || meta.S.Y <= 0 {
				continue
			}
			if area := meta.S.X * meta.S.Y; area > bestArea {
				bestArea = area
				best = meta.S.U
			}
		}
		if best != "" {
			return html.UnescapeString(best), true
		}
	}

	if len(p.Preview.Images) > 0 {
		if src := p.Preview.Images[0].Source.URL; src != "" {
			return html.UnescapeString(src), true
		}
	}

	direct := p.URLOverridden
	if direct == "" {
		direct = p.URL
	}
	if direct != "" && imageHostPattern.MatchString(direct) {
		return html.UnescapeString(direct), true
	}

	return "", false
}
