package tools

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
)

//go:embed data/classifications.json
var classificationsJSON []byte

// classificationData mirrors the embedded dataset: Ticketmaster's segment →
// genre → subgenre hierarchy, snapshotted so category lookups never need a
// network call.
type classificationData struct {
	Segments []segmentData `json:"segments"`
}

type segmentData struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Genres []genreData `json:"genres"`
}

type genreData struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Subgenres []subgenreData `json:"subgenres"`
}

type subgenreData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoriesTool answers questions about the event classification hierarchy:
// which segments exist, which genres belong to a segment, which subgenres to
// a genre, and the IDs behind the names (for use as Discovery API filters).
type CategoriesTool struct {
	segments  map[string]segmentData // keyed by segment name
	genres    map[string]genreData   // keyed by genre name
	genreSeg  map[string]string      // genre name → segment name
	subgenres map[string][2]string   // subgenre name → {genre name, segment name}
}

// NewCategoriesTool builds the lookup tables from the embedded dataset.
func NewCategoriesTool() (*CategoriesTool, error) {
	var data classificationData
	if err := json.Unmarshal(classificationsJSON, &data); err != nil {
		return nil, fmt.Errorf("categories: parse embedded classifications: %w", err)
	}

	t := &CategoriesTool{
		segments:  make(map[string]segmentData),
		genres:    make(map[string]genreData),
		genreSeg:  make(map[string]string),
		subgenres: make(map[string][2]string),
	}
	for _, seg := range data.Segments {
		t.segments[seg.Name] = seg
		for _, g := range seg.Genres {
			t.genres[g.Name] = g
			t.genreSeg[g.Name] = seg.Name
			for _, sub := range g.Subgenres {
				t.subgenres[sub.Name] = [2]string{g.Name, seg.Name}
			}
		}
	}
	return t, nil
}

func (t *CategoriesTool) Definition() llm.ToolDefinition {
	return Definition(
		"get_event_categories",
		"Browse the event classification hierarchy (segments, genres, subgenres) and look up the IDs used as Ticketmaster search filters. Actions: list_segments, list_genres, list_subgenres, get_segment_id, get_genre_id.",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"action": map[string]interface{}{
					"type": "string",
					"enum": []interface{}{
						"list_segments", "list_genres", "list_subgenres",
						"get_segment_id", "get_genre_id",
					},
					"description": "What to look up",
				},
				"segment": map[string]interface{}{
					"type":        "string",
					"description": "Segment name to filter genres by, or to look up the ID of",
				},
				"genre": map[string]interface{}{
					"type":        "string",
					"description": "Genre name to filter subgenres by, or to look up the ID of",
				},
				"format": map[string]interface{}{
					"type":        "string",
					"enum":        []interface{}{"list", "detailed"},
					"description": "Output format: compact name list or detailed lines with IDs",
				},
			},
			"required": []interface{}{"action"},
		},
	)
}

func (t *CategoriesTool) Run(_ context.Context, args map[string]interface{}) string {
	action := argString(args, "action")
	segment := argString(args, "segment")
	genre := argString(args, "genre")
	format := argString(args, "format")
	if format == "" {
		format = "list"
	}

	switch action {
	case "list_segments":
		return t.formatSegments(format)
	case "list_genres":
		return t.formatGenres(segment, format)
	case "list_subgenres":
		return t.formatSubgenres(genre, format)
	case "get_segment_id":
		return t.segmentID(segment)
	case "get_genre_id":
		return t.genreID(genre)
	default:
		return fmt.Sprintf("Invalid action: %s. Please use one of: list_segments, list_genres, list_subgenres, get_segment_id, or get_genre_id.", action)
	}
}

func (t *CategoriesTool) segmentNames() []string {
	names := make([]string, 0, len(t.segments))
	for name := range t.segments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *CategoriesTool) formatSegments(format string) string {
	if len(t.segments) == 0 {
		return "No segment data available."
	}
	names := t.segmentNames()
	if format == "list" {
		return "Available segments: " + strings.Join(names, ", ")
	}
	var b strings.Builder
	b.WriteString("Event Segments (Main Categories):\n")
	for _, name := range names {
		fmt.Fprintf(&b, "\n- %s (ID: %s)", name, t.segments[name].ID)
	}
	return b.String()
}

func (t *CategoriesTool) formatGenres(segment, format string) string {
	var names []string
	if segment != "" {
		seg, ok := t.segments[segment]
		if !ok {
			return fmt.Sprintf("Segment '%s' not found. Available segments: %s",
				segment, strings.Join(t.segmentNames(), ", "))
		}
		for _, g := range seg.Genres {
			names = append(names, g.Name)
		}
	} else {
		for name := range t.genres {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "No genre data available."
	}
	sort.Strings(names)

	scope := ""
	if segment != "" {
		scope = " for " + segment
	}
	if format == "list" {
		return fmt.Sprintf("Available genres%s: %s", scope, strings.Join(names, ", "))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Event Genres%s:\n", scope)
	for _, name := range names {
		if segment != "" {
			fmt.Fprintf(&b, "\n- %s (ID: %s)", name, t.genres[name].ID)
		} else {
			fmt.Fprintf(&b, "\n- %s (ID: %s, Segment: %s)", name, t.genres[name].ID, t.genreSeg[name])
		}
	}
	return b.String()
}

func (t *CategoriesTool) formatSubgenres(genre, format string) string {
	type subRef struct {
		sub     subgenreData
		genre   string
		segment string
	}
	var subs []subRef
	if genre != "" {
		g, ok := t.genres[genre]
		if !ok {
			return fmt.Sprintf("Genre '%s' not found. Available genres: %s",
				genre, strings.Join(t.genreNames(), ", "))
		}
		for _, sub := range g.Subgenres {
			subs = append(subs, subRef{sub: sub, genre: genre, segment: t.genreSeg[genre]})
		}
	} else {
		for name, ref := range t.subgenres {
			subs = append(subs, subRef{
				sub:     t.findSubgenre(ref[0], name),
				genre:   ref[0],
				segment: ref[1],
			})
		}
	}
	if len(subs) == 0 {
		return "No subgenre data available."
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].sub.Name < subs[j].sub.Name })

	scope := ""
	if genre != "" {
		scope = " for " + genre
	}
	if format == "list" {
		names := make([]string, 0, len(subs))
		for _, s := range subs {
			names = append(names, s.sub.Name)
		}
		return fmt.Sprintf("Available subgenres%s: %s", scope, strings.Join(names, ", "))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Event Subgenres%s:\n", scope)
	for _, s := range subs {
		if genre != "" {
			fmt.Fprintf(&b, "\n- %s (ID: %s)", s.sub.Name, s.sub.ID)
		} else {
			fmt.Fprintf(&b, "\n- %s (ID: %s, Genre: %s, Segment: %s)", s.sub.Name, s.sub.ID, s.genre, s.segment)
		}
	}
	return b.String()
}

func (t *CategoriesTool) segmentID(segment string) string {
	if segment == "" {
		return "Please provide a segment name to get its ID."
	}
	seg, ok := t.segments[segment]
	if !ok {
		return fmt.Sprintf("Segment '%s' not found. Available segments: %s",
			segment, strings.Join(t.segmentNames(), ", "))
	}
	return fmt.Sprintf("ID for segment '%s': %s", segment, seg.ID)
}

func (t *CategoriesTool) genreID(genre string) string {
	if genre == "" {
		return "Please provide a genre name to get its ID."
	}
	g, ok := t.genres[genre]
	if !ok {
		return fmt.Sprintf("Genre '%s' not found. Available genres: %s",
			genre, strings.Join(t.genreNames(), ", "))
	}
	return fmt.Sprintf("ID for genre '%s': %s", genre, g.ID)
}

func (t *CategoriesTool) genreNames() []string {
	names := make([]string, 0, len(t.genres))
	for name := range t.genres {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *CategoriesTool) findSubgenre(genreName, subName string) subgenreData {
	for _, sub := range t.genres[genreName].Subgenres {
		if sub.Name == subName {
			return sub
		}
	}
	return subgenreData{Name: subName}
}

var _ Tool = (*CategoriesTool)(nil)
