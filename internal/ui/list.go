package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/snaketracks/internal/models"
)

var (
	_ list.Item = sectionItem{}
	_ list.Item = trackItem{}
	_ list.Item = artistItem{}
)

// Section identifies one of the three lists in [models.Stats].
type Section int

const (
	TopTracks Section = iota
	TopArtists
	RecentTracks
)

func (s Section) String() string {
	switch s {
	case TopTracks:
		return "Top Tracks"
	case TopArtists:
		return "Top Artists"
	case RecentTracks:
		return "Recent Tracks"
	default:
		return "Unknown"
	}
}

// sectionItem is an entry of the summary menu.
type sectionItem struct {
	section Section
	count   int
}

func (i sectionItem) FilterValue() string { return i.section.String() }
func (i sectionItem) Title() string       { return i.section.String() }
func (i sectionItem) Description() string { return fmt.Sprintf("%d entries", i.count) }

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
	plays bool
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	if !i.plays {
		return i.track.Artist
	}
	return fmt.Sprintf("%s • %s plays", i.track.Artist, i.track.Playcount)
}

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	artist models.Artist
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string { return fmt.Sprintf("%s plays", i.artist.Playcount) }

func sectionItems(stats *models.Stats) []list.Item {
	return []list.Item{
		sectionItem{TopTracks, len(stats.TopTracks)},
		sectionItem{TopArtists, len(stats.TopArtists)},
		sectionItem{RecentTracks, len(stats.RecentTracks)},
	}
}

func itemsFor(stats *models.Stats, section Section) []list.Item {
	var items []list.Item
	switch section {
	case TopTracks:
		for _, t := range stats.TopTracks {
			items = append(items, trackItem{track: t, plays: true})
		}
	case TopArtists:
		for _, a := range stats.TopArtists {
			items = append(items, artistItem{artist: a})
		}
	case RecentTracks:
		for _, t := range stats.RecentTracks {
			items = append(items, trackItem{track: t})
		}
	}
	return items
}
