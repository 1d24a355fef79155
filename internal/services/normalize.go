package services

import (
	"context"
	"strings"

	"github.com/desertthunder/snaketracks/internal/models"
)

// Last.fm serves this grey star for every track and artist without artwork.
const (
	DefaultPlaceholderSuffix = "2a96cbd8b46e442fc41c2b86b821562f.png"
	DefaultPlaceholderImage  = "https://lastfm.freetls.fastly.net/i/u/300x300/2a96cbd8b46e442fc41c2b86b821562f.png"
)

// Normalizer converts Last.fm records into canonical models, filling missing artwork through an [ImageResolver].
type Normalizer struct {
	resolver          ImageResolver
	placeholderSuffix string
	placeholderImage  string
}

// NewNormalizer creates a normalizer. Empty suffix or image fall back to the Last.fm defaults, and a nil
// resolver means records without artwork go straight to the placeholder.
func NewNormalizer(resolver ImageResolver, placeholderSuffix, placeholderImage string) *Normalizer {
	if placeholderSuffix == "" {
		placeholderSuffix = DefaultPlaceholderSuffix
	}
	if placeholderImage == "" {
		placeholderImage = DefaultPlaceholderImage
	}
	return &Normalizer{
		resolver:          resolver,
		placeholderSuffix: placeholderSuffix,
		placeholderImage:  placeholderImage,
	}
}

// Placeholder returns the image used when nothing else is available.
func (n *Normalizer) Placeholder() string {
	return n.placeholderImage
}

// Track normalizes a top or recent track record.
func (n *Normalizer) Track(ctx context.Context, rec LastFMRecord) models.Track {
	name := string(rec.Name)
	artist := rec.Artist.Name

	return models.Track{
		Name:      name,
		Artist:    artist,
		Playcount: playcount(rec.Playcount),
		ImageURL:  n.image(ctx, rec.Image, artist, name),
		SourceURL: string(rec.URL),
	}
}

// Artist normalizes a top artist record. Artwork lookups search by artist name alone.
func (n *Normalizer) Artist(ctx context.Context, rec LastFMRecord) models.Artist {
	name := string(rec.Name)

	return models.Artist{
		Name:      name,
		Playcount: playcount(rec.Playcount),
		ImageURL:  n.image(ctx, rec.Image, name, ""),
		SourceURL: string(rec.URL),
	}
}

// Tracks normalizes records in order. The result is never nil.
func (n *Normalizer) Tracks(ctx context.Context, recs []LastFMRecord) []models.Track {
	tracks := make([]models.Track, 0, len(recs))
	for _, rec := range recs {
		tracks = append(tracks, n.Track(ctx, rec))
	}
	return tracks
}

// Artists normalizes records in order. The result is never nil.
func (n *Normalizer) Artists(ctx context.Context, recs []LastFMRecord) []models.Artist {
	artists := make([]models.Artist, 0, len(recs))
	for _, rec := range recs {
		artists = append(artists, n.Artist(ctx, rec))
	}
	return artists
}

// validImage returns the largest usable image. Last.fm lists sizes small to large.
func (n *Normalizer) validImage(images imageList) (string, bool) {
	for i := len(images) - 1; i >= 0; i-- {
		text := string(images[i].Text)
		if text != "" && !strings.HasSuffix(text, n.placeholderSuffix) {
			return text, true
		}
	}
	return "", false
}

func (n *Normalizer) image(ctx context.Context, images imageList, artist, track string) string {
	if img, ok := n.validImage(images); ok {
		return img
	}

	if n.resolver != nil {
		if img, ok := n.resolver.CoverImage(ctx, artist, track); ok && img != "" {
			return img
		}
	}
	return n.placeholderImage
}

func playcount(p flexString) string {
	if p == "" {
		return "0"
	}
	return string(p)
}
