package pipeline

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/xenn00/chat-delivery/internal/entity"
	"mvdan.cc/xurls/v2"
)

const defaultMaxPreviews = 3

var urlPattern = xurls.Strict()

// ExtractURLs returns the distinct http(s) URLs in content, in order of appearance.
func ExtractURLs(content string, limit int) []string {
	urls := lo.Uniq(lo.Filter(urlPattern.FindAllString(content, -1), func(u string, _ int) bool {
		lower := strings.ToLower(u)
		return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
	}))
	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	return urls
}

// UrlPreviewEnrichment attaches link previews. A failed fetch only drops that preview.
type UrlPreviewEnrichment struct {
	Fetcher PreviewFetcher
	MaxURLs int
}

func (f *UrlPreviewEnrichment) Name() string { return "UrlPreviewEnrichment" }

func (f *UrlPreviewEnrichment) Apply(ctx context.Context, env Envelope, next Next) (Envelope, error) {
	if f.Fetcher == nil {
		return next(ctx, env)
	}

	limit := f.MaxURLs
	if limit <= 0 {
		limit = defaultMaxPreviews
	}

	var previews []entity.UrlPreview
	for _, u := range ExtractURLs(env.Message.Content, limit) {
		p, err := f.Fetcher.Preview(ctx, u)
		if err != nil {
			log.Warn().Err(err).Str("url", u).Str("room_id", env.Message.RoomID).Msg("url preview skipped")
			continue
		}
		if p != nil {
			previews = append(previews, *p)
		}
	}
	env.Message.Previews = previews

	return next(ctx, env)
}
