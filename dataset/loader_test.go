package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rushteam/movierec/core"
)

const sampleEvents = "196\t242\t3\t881250949\n" +
	"186\t302\t3\t891717742\n" +
	"22\t377\t1\t878887116\n" +
	"\n" +
	"244\t51\t2\t880606923\n" +
	"166\t999\t1\t886397596\n"

const sampleTitles = "item_id,title\n" +
	"242,Kolya (1996)\n" +
	"302,L.A. Confidential (1997)\n" +
	"377,Heavyweights (1994)\n" +
	"51,\"Legends of the Fall, The (1994)\"\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestReadEvents(t *testing.T) {
	events, err := ReadEvents(strings.NewReader(sampleEvents))
	if err != nil {
		t.Fatalf("ReadEvents() error = %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("len(events) = %d, want 5", len(events))
	}
	want := RatingEvent{UserID: 196, ItemID: 242, Rating: 3, Timestamp: 881250949}
	if events[0] != want {
		t.Errorf("events[0] = %+v, want %+v", events[0], want)
	}
}

func TestReadEvents_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"three fields", "1\t2\t3\n"},
		{"five fields", "1\t2\t3\t4\t5\n"},
		{"non numeric user", "x\t2\t3\t4\n"},
		{"non numeric rating", "1\t2\tgood\t4\n"},
		{"non integer timestamp", "1\t2\t3\t4.5\n"},
		{"comma separated", "1,2,3,4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadEvents(strings.NewReader(tt.input))
			if !core.IsDataFormat(err) {
				t.Fatalf("ReadEvents() error = %v, want DataFormatError", err)
			}
		})
	}
}

func TestReadTitles(t *testing.T) {
	titles, err := ReadTitles(strings.NewReader(sampleTitles))
	if err != nil {
		t.Fatalf("ReadTitles() error = %v", err)
	}
	if len(titles) != 4 {
		t.Fatalf("len(titles) = %d, want 4", len(titles))
	}
	if titles[3].Title != "Legends of the Fall, The (1994)" {
		t.Errorf("quoted title = %q", titles[3].Title)
	}
}

func TestReadTitles_HeaderOrder(t *testing.T) {
	in := "title,genre,item_id\nToy Story (1995),Animation,1\n"
	titles, err := ReadTitles(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadTitles() error = %v", err)
	}
	if len(titles) != 1 || titles[0].ItemID != 1 || titles[0].Title != "Toy Story (1995)" {
		t.Errorf("titles = %+v", titles)
	}
}

func TestReadTitles_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"duplicate id", "item_id,title\n1,A\n1,B\n"},
		{"duplicate title", "item_id,title\n1,A\n2,A\n"},
		{"bad id", "item_id,title\none,A\n"},
		{"missing column", "item_id,title\n1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTitles(strings.NewReader(tt.input))
			if !core.IsDataFormat(err) {
				t.Fatalf("ReadTitles() error = %v, want DataFormatError", err)
			}
		})
	}
}

func TestMerge_InnerJoinDropsUnmatched(t *testing.T) {
	events := []RatingEvent{
		{UserID: 1, ItemID: 10, Rating: 5},
		{UserID: 2, ItemID: 99, Rating: 4},
		{UserID: 3, ItemID: 10, Rating: 2},
	}
	titles := []ItemTitle{{ItemID: 10, Title: "X"}, {ItemID: 11, Title: "Y"}}

	merged, err := Merge(events, titles)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}
	for _, m := range merged {
		if m.Title != "X" {
			t.Errorf("unexpected title %q", m.Title)
		}
	}
	if merged[0].UserID != 1 || merged[1].UserID != 3 {
		t.Errorf("order not preserved: %+v", merged)
	}
}

func TestMerge_DuplicateTitle(t *testing.T) {
	_, err := Merge(nil, []ItemTitle{{ItemID: 1, Title: "A"}, {ItemID: 2, Title: "A"}})
	if !core.IsDataFormat(err) {
		t.Fatalf("Merge() error = %v, want DataFormatError", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	eventsPath := writeFile(t, dir, "u.data", sampleEvents)
	titlesPath := writeFile(t, dir, "Movie_Id_Titles", sampleTitles)

	merged, err := Load(context.Background(), eventsPath, titlesPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// item 999 has no title
	if len(merged) != 4 {
		t.Fatalf("len(merged) = %d, want 4", len(merged))
	}
	if merged[3].Title != "Legends of the Fall, The (1994)" || merged[3].UserID != 244 {
		t.Errorf("merged[3] = %+v", merged[3])
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	eventsPath := writeFile(t, dir, "u.data", sampleEvents)
	titlesPath := writeFile(t, dir, "Movie_Id_Titles", sampleTitles)
	badEvents := writeFile(t, dir, "bad.data", "1\t2\n")

	tests := []struct {
		name   string
		events string
		titles string
		check  func(error) bool
	}{
		{"missing events", filepath.Join(dir, "nope"), titlesPath, core.IsDataNotFound},
		{"missing titles", eventsPath, filepath.Join(dir, "nope"), core.IsDataNotFound},
		{"malformed events", badEvents, titlesPath, core.IsDataFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), tt.events, tt.titles)
			if err == nil || !tt.check(err) {
				t.Fatalf("Load() error = %v", err)
			}
		})
	}
}
