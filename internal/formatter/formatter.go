// package formatter renders Last.fm statistics in various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/snaketracks/internal/models"
	"github.com/desertthunder/snaketracks/internal/shared"
)

// Format names accepted by [Render].
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// Formats lists every supported format.
var Formats = []string{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// Section names used in CSV output.
const (
	SectionTopTracks    = "top_tracks"
	SectionTopArtists   = "top_artists"
	SectionRecentTracks = "recent_tracks"
)

// ParseFormat normalizes a format name. "md" is accepted for Markdown.
func ParseFormat(name string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(name)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidArgument, name, strings.Join(Formats, ", "))
	}
}

// Render converts stats to the named format.
func Render(stats *models.Stats, format string) ([]byte, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	switch f {
	case FormatMarkdown:
		return ExportToMarkdown(stats)
	case FormatCSV:
		return ExportToCSV(stats)
	case FormatJSON:
		return ExportToJSON(stats)
	default:
		return ExportToText(stats)
	}
}

// ExportToCSV writes one row per record with columns: Section, Rank, Name, Artist, Playcount, Image, URL
func ExportToCSV(stats *models.Stats) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Section", "Rank", "Name", "Artist", "Playcount", "Image", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	var records [][]string
	for i, track := range stats.TopTracks {
		records = append(records, trackRecord(SectionTopTracks, i, track))
	}
	for i, artist := range stats.TopArtists {
		records = append(records, []string{
			SectionTopArtists,
			strconv.Itoa(i + 1),
			artist.Name,
			"",
			artist.Playcount,
			artist.ImageURL,
			artist.SourceURL,
		})
	}
	for i, track := range stats.RecentTracks {
		records = append(records, trackRecord(SectionRecentTracks, i, track))
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func trackRecord(section string, i int, track models.Track) []string {
	return []string{
		section,
		strconv.Itoa(i + 1),
		track.Name,
		track.Artist,
		track.Playcount,
		track.ImageURL,
		track.SourceURL,
	}
}

// ExportToMarkdown renders a profile header followed by one numbered list per section
func ExportToMarkdown(stats *models.Stats) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", displayName(stats.User))
	if stats.User.Image != "" {
		fmt.Fprintf(&buf, "![Avatar](%s)\n\n", stats.User.Image)
	}
	fmt.Fprintf(&buf, "**Scrobbles**: %s\n", stats.User.Playcount)
	if stats.User.URL != "" {
		fmt.Fprintf(&buf, "**Profile**: %s\n", stats.User.URL)
	}

	buf.WriteString("\n## Top Tracks\n\n")
	writeMarkdownTracks(&buf, stats.TopTracks, true)

	buf.WriteString("\n## Top Artists\n\n")
	if len(stats.TopArtists) == 0 {
		buf.WriteString("_None_\n")
	}
	for i, artist := range stats.TopArtists {
		fmt.Fprintf(&buf, "%d. %s (%s plays)\n", i+1, link(artist.Name, artist.SourceURL), artist.Playcount)
	}

	buf.WriteString("\n## Recent Tracks\n\n")
	writeMarkdownTracks(&buf, stats.RecentTracks, false)

	return buf.Bytes(), nil
}

func writeMarkdownTracks(buf *bytes.Buffer, tracks []models.Track, plays bool) {
	if len(tracks) == 0 {
		buf.WriteString("_None_\n")
		return
	}
	for i, track := range tracks {
		line := fmt.Sprintf("%d. %s - %s", i+1, track.Artist, link(track.Name, track.SourceURL))
		if plays {
			line += fmt.Sprintf(" (%s plays)", track.Playcount)
		}
		buf.WriteString(line + "\n")
	}
}

func link(text, url string) string {
	if url == "" {
		return text
	}
	return fmt.Sprintf("[%s](%s)", text, url)
}

// ExportToText converts stats to plain text format
func ExportToText(stats *models.Stats) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "User: %s\n", displayName(stats.User))
	fmt.Fprintf(&buf, "Scrobbles: %s\n", stats.User.Playcount)

	buf.WriteString("\nTop tracks:\n")
	for i, track := range stats.TopTracks {
		fmt.Fprintf(&buf, "%d. %s - %s (%s)\n", i+1, track.Artist, track.Name, track.Playcount)
	}

	buf.WriteString("\nTop artists:\n")
	for i, artist := range stats.TopArtists {
		fmt.Fprintf(&buf, "%d. %s (%s)\n", i+1, artist.Name, artist.Playcount)
	}

	buf.WriteString("\nRecent tracks:\n")
	for i, track := range stats.RecentTracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.Name)
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders stats exactly as the HTTP API serves them, indented.
func ExportToJSON(stats *models.Stats) ([]byte, error) {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stats: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport renders stats and writes them to path.
func WriteExport(stats *models.Stats, format, path string) error {
	data, err := Render(stats, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func displayName(user models.UserSummary) string {
	if user.Name == "" {
		return "(unknown)"
	}
	return user.Name
}
