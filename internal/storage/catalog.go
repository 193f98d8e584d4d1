package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CourseByCode returns a course by its exact code ("CMPE 113").
// Lookup is case-insensitive and tolerant of a missing space between the
// letter prefix and the number. Returns nil, nil when not found so the
// retriever can treat absence as a non-error.
func (db *DB) CourseByCode(ctx context.Context, code string) (*Course, error) {
	normalized := NormalizeCourseCode(code)

	var course Course
	var instructor, description sql.NullString
	err := db.conn.QueryRowContext(ctx,
		`SELECT code, title, instructor, description FROM courses
		 WHERE REPLACE(UPPER(code), ' ', '') = ?`, normalized,
	).Scan(&course.Code, &course.Title, &instructor, &description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up course: %w", err)
	}

	course.Instructor = instructor.String
	course.Description = description.String
	return &course, nil
}

// NormalizeCourseCode uppercases a course code and strips internal spaces,
// so "cmpe 113" and "CMPE113" compare equal.
func NormalizeCourseCode(code string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(code)), " ", "")
}

// UpsertCourse inserts or replaces a catalog course row.
func (db *DB) UpsertCourse(ctx context.Context, course *Course) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO courses (code, title, instructor, description, cached_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
		   title = excluded.title,
		   instructor = excluded.instructor,
		   description = excluded.description,
		   cached_at = excluded.cached_at`,
		course.Code, course.Title, course.Instructor, course.Description, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert course: %w", err)
	}
	return nil
}

// AllCourses returns every catalog course ordered by code.
func (db *DB) AllCourses(ctx context.Context) ([]*Course, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT code, title, instructor, description FROM courses ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var courses []*Course
	for rows.Next() {
		var course Course
		var instructor, description sql.NullString
		if err := rows.Scan(&course.Code, &course.Title, &instructor, &description); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		course.Instructor = instructor.String
		course.Description = description.String
		courses = append(courses, &course)
	}
	return courses, rows.Err()
}

// CountCourses returns the number of catalog courses.
func (db *DB) CountCourses(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return count, nil
}

// UpsertVenue inserts or replaces a venue row.
func (db *DB) UpsertVenue(ctx context.Context, venue *Venue) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO venues (id, name, category, cuisine_type, distance_from_campus, price, address, tags, phone, cached_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   category = excluded.category,
		   cuisine_type = excluded.cuisine_type,
		   distance_from_campus = excluded.distance_from_campus,
		   price = excluded.price,
		   address = excluded.address,
		   tags = excluded.tags,
		   phone = excluded.phone,
		   cached_at = excluded.cached_at`,
		venue.ID, venue.Name, venue.Category, venue.CuisineType, venue.DistanceFromCampus,
		venue.Price, venue.Address, venue.Tags, venue.Phone, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert venue: %w", err)
	}
	return nil
}

// AllVenues returns every venue row ordered by distance from campus.
func (db *DB) AllVenues(ctx context.Context) ([]*Venue, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, category, cuisine_type, distance_from_campus, price, address, tags, phone
		 FROM venues ORDER BY distance_from_campus`)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var venues []*Venue
	for rows.Next() {
		var venue Venue
		var category, cuisine, price, address, tags, phone sql.NullString
		var distance sql.NullFloat64
		if err := rows.Scan(&venue.ID, &venue.Name, &category, &cuisine,
			&distance, &price, &address, &tags, &phone); err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venue.Category = category.String
		venue.CuisineType = cuisine.String
		venue.DistanceFromCampus = distance.Float64
		venue.Price = price.String
		venue.Address = address.String
		venue.Tags = tags.String
		venue.Phone = phone.String
		venues = append(venues, &venue)
	}
	return venues, rows.Err()
}

// CountVenues returns the number of venue rows.
func (db *DB) CountVenues(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count venues: %w", err)
	}
	return count, nil
}

// UpsertEvent inserts or replaces an event row.
func (db *DB) UpsertEvent(ctx context.Context, event *Event) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO events (id, title, category, event_type, event_date, venue_name, price_info, ticket_url, cached_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   category = excluded.category,
		   event_type = excluded.event_type,
		   event_date = excluded.event_date,
		   venue_name = excluded.venue_name,
		   price_info = excluded.price_info,
		   ticket_url = excluded.ticket_url,
		   cached_at = excluded.cached_at`,
		event.ID, event.Title, event.Category, event.EventType, event.EventDate,
		event.VenueName, event.PriceInfo, event.TicketURL, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}
	return nil
}

// AllEvents returns every event row ordered by date.
func (db *DB) AllEvents(ctx context.Context) ([]*Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, category, event_type, event_date, venue_name, price_info, ticket_url
		 FROM events ORDER BY event_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*Event
	for rows.Next() {
		var event Event
		var category, eventType, eventDate, venueName, priceInfo, ticketURL sql.NullString
		if err := rows.Scan(&event.ID, &event.Title, &category, &eventType,
			&eventDate, &venueName, &priceInfo, &ticketURL); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Category = category.String
		event.EventType = eventType.String
		event.EventDate = eventDate.String
		event.VenueName = venueName.String
		event.PriceInfo = priceInfo.String
		event.TicketURL = ticketURL.String
		events = append(events, &event)
	}
	return events, rows.Err()
}

// CountEvents returns the number of event rows.
func (db *DB) CountEvents(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
