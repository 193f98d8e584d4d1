package storage

import (
	"context"
	"testing"
)

func TestCourseByCode(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.UpsertCourse(ctx, &Course{
		Code:        "CMPE 113",
		Title:       "Fundamentals of Programming I",
		Instructor:  "Dr. X",
		Description: "Introduction to structured programming.",
	})
	if err != nil {
		t.Fatalf("UpsertCourse() error = %v", err)
	}

	tests := []struct {
		query string
		found bool
	}{
		{"CMPE 113", true},
		{"cmpe 113", true},
		{"CMPE113", true},
		{"SENG 101", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			course, err := db.CourseByCode(ctx, tt.query)
			if err != nil {
				t.Fatalf("CourseByCode(%q) error = %v", tt.query, err)
			}
			if (course != nil) != tt.found {
				t.Errorf("CourseByCode(%q) found = %v, want %v", tt.query, course != nil, tt.found)
			}
			if course != nil && course.Instructor != "Dr. X" {
				t.Errorf("Instructor = %q, want Dr. X", course.Instructor)
			}
		})
	}
}

func TestNormalizeCourseCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cmpe 113", "CMPE113"},
		{" CMPE113 ", "CMPE113"},
		{"seng 271", "SENG271"},
	}
	for _, tt := range tests {
		if got := NormalizeCourseCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCourseCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVenueAndEventUpserts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	venue := &Venue{
		ID:                 "off-cafe",
		Name:               "Off Cafe",
		Category:           "cafe",
		DistanceFromCampus: 0.13,
		Price:              "₺₺",
	}
	if err := db.UpsertVenue(ctx, venue); err != nil {
		t.Fatalf("UpsertVenue() error = %v", err)
	}
	// Idempotent upsert
	venue.Price = "₺₺₺"
	if err := db.UpsertVenue(ctx, venue); err != nil {
		t.Fatalf("UpsertVenue() second error = %v", err)
	}
	if count, _ := db.CountVenues(ctx); count != 1 {
		t.Errorf("CountVenues() = %d, want 1", count)
	}

	event := &Event{
		ID:        "jazz-night",
		Title:     "Jazz Night",
		Category:  "music",
		PriceInfo: "400 TL",
		TicketURL: "https://example.com/jazz",
	}
	if err := db.UpsertEvent(ctx, event); err != nil {
		t.Fatalf("UpsertEvent() error = %v", err)
	}
	if count, _ := db.CountEvents(ctx); count != 1 {
		t.Errorf("CountEvents() = %d, want 1", count)
	}
}

func TestAllVenuesOrderedByDistance(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	venues := []*Venue{
		{ID: "far", Name: "Far Place", Category: "restaurant", DistanceFromCampus: 4.2},
		{ID: "near", Name: "Near Place", Category: "cafe", DistanceFromCampus: 0.3},
		{ID: "mid", Name: "Mid Place", Category: "arcade", DistanceFromCampus: 1.5},
	}
	for _, v := range venues {
		if err := db.UpsertVenue(ctx, v); err != nil {
			t.Fatalf("UpsertVenue(%s) error = %v", v.ID, err)
		}
	}

	all, err := db.AllVenues(ctx)
	if err != nil {
		t.Fatalf("AllVenues() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("AllVenues() returned %d venues, want 3", len(all))
	}
	wantOrder := []string{"near", "mid", "far"}
	for i, want := range wantOrder {
		if all[i].ID != want {
			t.Errorf("AllVenues()[%d].ID = %q, want %q", i, all[i].ID, want)
		}
	}
}

func TestAllEventsOrderedByDate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	events := []*Event{
		{ID: "later", Title: "Later Show", EventDate: "2026-10-05"},
		{ID: "sooner", Title: "Sooner Show", EventDate: "2026-09-12"},
	}
	for _, e := range events {
		if err := db.UpsertEvent(ctx, e); err != nil {
			t.Fatalf("UpsertEvent(%s) error = %v", e.ID, err)
		}
	}

	all, err := db.AllEvents(ctx)
	if err != nil {
		t.Fatalf("AllEvents() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("AllEvents() returned %d events, want 2", len(all))
	}
	if all[0].ID != "sooner" || all[1].ID != "later" {
		t.Errorf("AllEvents() order = [%s, %s], want [sooner, later]", all[0].ID, all[1].ID)
	}
}
