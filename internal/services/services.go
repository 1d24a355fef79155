// package services implements the upstream clients and the orchestration built on them
//
// Spotify (OAuth, top tracks), Last.fm (listening statistics), Deezer (artwork and preview lookup)
package services

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// ImageResolver finds cover artwork for an artist/track pair.
//
// Implementations are best-effort: every failure is reported as ok == false, never as an error.
type ImageResolver interface {
	CoverImage(ctx context.Context, artist, track string) (url string, ok bool)
}

// PreviewResolver finds a playable audio preview for a free-text query, best-effort like [ImageResolver].
type PreviewResolver interface {
	Preview(ctx context.Context, query string) (url string, ok bool)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
