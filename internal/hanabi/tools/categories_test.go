package tools

import (
	"context"
	"strings"
	"testing"
)

func newCategories(t *testing.T) *CategoriesTool {
	t.Helper()
	tool, err := NewCategoriesTool()
	if err != nil {
		t.Fatalf("NewCategoriesTool: %v", err)
	}
	return tool
}

func runCategories(t *testing.T, args map[string]interface{}) string {
	t.Helper()
	return newCategories(t).Run(context.Background(), args)
}

func TestCategories_ListSegments(t *testing.T) {
	got := runCategories(t, map[string]interface{}{"action": "list_segments"})
	if !strings.HasPrefix(got, "Available segments: ") {
		t.Errorf("output = %q", got)
	}
	for _, seg := range []string{"Music", "Sports", "Arts & Theatre", "Film", "Miscellaneous"} {
		if !strings.Contains(got, seg) {
			t.Errorf("output missing segment %q: %q", seg, got)
		}
	}
}

func TestCategories_ListSegmentsDetailed(t *testing.T) {
	got := runCategories(t, map[string]interface{}{"action": "list_segments", "format": "detailed"})
	if !strings.Contains(got, "Music (ID: KZFzniwnSyZfZ7v7nJ)") {
		t.Errorf("detailed output missing Music ID: %q", got)
	}
}

func TestCategories_ListGenresForSegment(t *testing.T) {
	got := runCategories(t, map[string]interface{}{"action": "list_genres", "segment": "Sports"})
	if !strings.Contains(got, "for Sports") {
		t.Errorf("output missing scope: %q", got)
	}
	for _, genre := range []string{"Baseball", "Basketball", "Football", "Hockey", "Soccer"} {
		if !strings.Contains(got, genre) {
			t.Errorf("output missing genre %q: %q", genre, got)
		}
	}
	if strings.Contains(got, "Jazz") {
		t.Errorf("output leaked a Music genre: %q", got)
	}
}

func TestCategories_UnknownSegmentListsAvailable(t *testing.T) {
	got := runCategories(t, map[string]interface{}{"action": "list_genres", "segment": "Cooking"})
	if !strings.Contains(got, "Segment 'Cooking' not found") {
		t.Errorf("output = %q", got)
	}
	if !strings.Contains(got, "Music") {
		t.Errorf("output does not list available segments: %q", got)
	}
}

func TestCategories_ListSubgenresForGenre(t *testing.T) {
	got := runCategories(t, map[string]interface{}{"action": "list_subgenres", "genre": "Rock", "format": "detailed"})
	if !strings.Contains(got, "Classic Rock") || !strings.Contains(got, "Hard Rock") {
		t.Errorf("output = %q", got)
	}
}

func TestCategories_GetSegmentID(t *testing.T) {
	got := runCategories(t, map[string]interface{}{"action": "get_segment_id", "segment": "Music"})
	if got != "ID for segment 'Music': KZFzniwnSyZfZ7v7nJ" {
		t.Errorf("output = %q", got)
	}
}

func TestCategories_GetSegmentIDWithoutName(t *testing.T) {
	got := runCategories(t, map[string]interface{}{"action": "get_segment_id"})
	if got != "Please provide a segment name to get its ID." {
		t.Errorf("output = %q", got)
	}
}

func TestCategories_GetGenreID(t *testing.T) {
	got := runCategories(t, map[string]interface{}{"action": "get_genre_id", "genre": "Jazz"})
	if got != "ID for genre 'Jazz': KnvZfZ7vAvE" {
		t.Errorf("output = %q", got)
	}
}

func TestCategories_InvalidAction(t *testing.T) {
	got := runCategories(t, map[string]interface{}{"action": "dance"})
	if !strings.HasPrefix(got, "Invalid action: dance.") {
		t.Errorf("output = %q", got)
	}
}
