package wsb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func Test_Score(t *testing.T) {
	tests := []struct {
		name string
		post *Post
		want int
	}{
		{
			name: "full title and flair match",
			post: &Post{Title: "Weekly Earnings Thread 1/29 - 2/2", Flair: "Earnings Thread"},
			want: 8,
		},
		{
			name: "title only",
			post: &Post{Title: "Weekly Earnings"},
			want: 5,
		},
		{
			name: "flair only",
			post: &Post{Title: "What are you buying?", Flair: "Earnings Thread"},
			want: 2,
		},
		{
			name: "no match",
			post: &Post{Title: "Loss porn", Flair: "Loss"},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.post); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_PickCandidate(t *testing.T) {
	thread := &Post{ID: "a", Title: "Weekly Earnings Thread", Flair: "Earnings Thread", CreatedUTC: 1000}
	older := &Post{ID: "b", Title: "Weekly Earnings Thread", Flair: "Earnings Thread", CreatedUTC: 500}
	noise := &Post{ID: "c", Title: "YOLO update", CreatedUTC: 2000}

	tests := []struct {
		name  string
		posts []*Post
		want  *Post
	}{
		{
			name:  "highest scorer wins over newer noise",
			posts: []*Post{noise, older, thread},
			want:  thread,
		},
		{
			name:  "score tie goes to the newer post",
			posts: []*Post{older, thread},
			want:  thread,
		},
		{
			name:  "fallback to newest when nothing scores",
			posts: []*Post{{ID: "x", Title: "gains", CreatedUTC: 10}, noise},
			want:  noise,
		},
		{
			name:  "empty set",
			posts: nil,
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PickCandidate(tt.posts, MinCandidateScore); got != tt.want {
				t.Errorf("PickCandidate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_ExtractImageURL(t *testing.T) {
	gallery := map[string]mediaMeta{}
	gallery["small"] = mediaMetaOf("https://preview.redd.it/small.jpg", 100, 100)
	gallery["large"] = mediaMetaOf("https://preview.redd.it/large.jpg?width=1920&amp;s=abc", 1920, 1080)

	previewPost := preview{}
	previewPost.Images = append(previewPost.Images, struct {
		Source struct {
			URL string `json:"url"`
		} `json:"source"`
	}{})
	previewPost.Images[0].Source.URL = "https://preview.redd.it/first.png?auto=webp&amp;s=def"

	tests := []struct {
		name   string
		post   *Post
		want   string
		wantOk bool
	}{
		{
			name:   "gallery beats preview and largest image wins",
			post:   &Post{MediaMetadata: gallery, Preview: previewPost},
			want:   "https://preview.redd.it/large.jpg?width=1920&s=abc",
			wantOk: true,
		},
		{
			name:   "preview source with entity unescape",
			post:   &Post{Preview: previewPost},
			want:   "https://preview.redd.it/first.png?auto=webp&s=def",
			wantOk: true,
		},
		{
			name:   "crosspost parent is preferred",
			post:   &Post{Crossposts: []Post{{Preview: previewPost}}, URL: "https://i.redd.it/own.png"},
			want:   "https://preview.redd.it/first.png?auto=webp&s=def",
			wantOk: true,
		},
		{
			name:   "direct i.redd.it link",
			post:   &Post{URLOverridden: "https://i.redd.it/abc123.jpeg"},
			want:   "https://i.redd.it/abc123.jpeg",
			wantOk: true,
		},
		{
			name:   "direct link by extension",
			post:   &Post{URL: "https://example.com/board.webp"},
			want:   "https://example.com/board.webp",
			wantOk: true,
		},
		{
			name:   "non-image direct link",
			post:   &Post{URL: "https://example.com/article"},
			want:   "",
			wantOk: false,
		},
		{
			name:   "nothing at all",
			post:   &Post{},
			want:   "",
			wantOk: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractImageURL(tt.post)
			if got != tt.want || ok != tt.wantOk {
				t.Errorf("ExtractImageURL() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func Test_ExtractImageURL_crosspostDepthBound(t *testing.T) {
	// Build a crosspost chain longer than the recursion bound whose image
	// sits beyond the cutoff. The extractor must give up instead of walking
	// the whole chain.
	leaf := Post{URL: "https://i.redd.it/deep.png"}
	chain := leaf
	for i := 0; i < maxCrosspostDepth+1; i++ {
		chain = Post{Crossposts: []Post{chain}}
	}
	// Strip the direct URL from intermediate nodes so only the leaf matches
	if _, ok := ExtractImageURL(&chain); ok {
		t.Errorf("ExtractImageURL() should not reach an image beyond the depth bound")
	}

	// A chain within the bound still resolves
	shallow := Post{Crossposts: []Post{{Crossposts: []Post{leaf}}}}
	got, ok := ExtractImageURL(&shallow)
	if !ok || got != "https://i.redd.it/deep.png" {
		t.Errorf("ExtractImageURL() shallow chain = (%q, %v), want leaf image", got, ok)
	}
}

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("sort") != "new" || q.Get("restrict_sr") != "1" || q.Get("limit") != "15" {
			t.Errorf("unexpected query params: %v", q)
		}
		fmt.Fprint(w, `{"data":{"children":[
			{"data":{"id":"p1","title":"Weekly Earnings Thread","link_flair_text":"Earnings Thread","created_utc":1706000000}},
			{"data":{"id":"p2","title":"Random post","created_utc":1706100000}}
		]}}`)
	}))
	defer srv.Close()

	c := NewClient()
	c.SearchURL = srv.URL

	posts, err := c.Search(context.Background(), DefaultQuery, 15)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("Search() returned %d posts, want 2", len(posts))
	}
	if posts[0].ID != "p1" || posts[0].Flair != "Earnings Thread" {
		t.Errorf("Search() first post = %+v", posts[0])
	}
	if !reflect.DeepEqual(posts[1].Created().Unix(), int64(1706100000)) {
		t.Errorf("Created() = %v", posts[1].Created())
	}
}

func TestClient_Search_httpError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient()
	c.SearchURL = srv.URL

	if _, err := c.Search(context.Background(), DefaultQuery, 15); err == nil {
		t.Errorf("Search() expected error on 429")
	}
}

func TestClient_DownloadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	c := NewClient()
	got, err := c.DownloadImage(context.Background(), srv.URL+"/img.png")
	if err != nil {
		t.Fatalf("DownloadImage() error = %v", err)
	}
	if !reflect.DeepEqual(got, []byte{0x89, 'P', 'N', 'G'}) {
		t.Errorf("DownloadImage() = %v", got)
	}
}

func mediaMetaOf(u string, x, y int) mediaMeta {
	var m mediaMeta
	m.S.U = u
	m.S.X = x
	m.S.Y = y
	return m
}
