// Package preview fetches OpenGraph metadata for links in message content.
package preview

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xenn00/chat-delivery/internal/entity"
	"github.com/xenn00/chat-delivery/internal/utils"
	"golang.org/x/net/html"
)

const maxBody = 512 << 10

type Fetcher struct {
	client   *http.Client
	rdb      *redis.Client
	cacheTTL time.Duration
}

func NewFetcher(rdb *redis.Client, timeout, cacheTTL time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		rdb:      rdb,
		cacheTTL: cacheTTL,
	}
}

func cacheKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return "preview:" + hex.EncodeToString(sum[:])
}

func (f *Fetcher) Preview(ctx context.Context, url string) (*entity.UrlPreview, error) {
	if f.rdb == nil {
		return f.fetch(ctx, url)
	}
	return utils.GetOrLoad(ctx, f.rdb, cacheKey(url), f.cacheTTL, func(ctx context.Context) (*entity.UrlPreview, error) {
		return f.fetch(ctx, url)
	})
}

func (f *Fetcher) fetch(ctx context.Context, url string) (*entity.UrlPreview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "chat-delivery-preview/1.0")
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("preview %s: status %d", url, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("preview %s: unsupported content type %q", url, ct)
	}

	p, err := Parse(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	p.URL = url
	return p, nil
}

// Parse reads og:* meta tags, falling back to <title> and the description meta tag.
func Parse(r io.Reader) (*entity.UrlPreview, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	p := &entity.UrlPreview{}
	var title, description string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && title == "" {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				key, content := metaAttrs(n)
				switch key {
				case "og:title":
					p.Title = content
				case "og:description":
					p.Description = content
				case "og:image":
					p.ImageURL = content
				case "og:site_name":
					p.SiteName = content
				case "description":
					description = content
				}
			case "body":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if p.Title == "" {
		p.Title = title
	}
	if p.Description == "" {
		p.Description = description
	}
	return p, nil
}

func metaAttrs(n *html.Node) (key, content string) {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "property", "name":
			key = strings.ToLower(a.Val)
		case "content":
			content = strings.TrimSpace(a.Val)
		}
	}
	return key, content
}
