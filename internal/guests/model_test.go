package guests

import (
	"testing"
	"time"
)

func TestIsMinor(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	adult := Guest{BirthDate: date(1984, 6, 2)}
	if adult.IsMinor(now) {
		t.Error("40-year-old reported as minor")
	}

	child := Guest{BirthDate: date(2019, 2, 28)}
	if !child.IsMinor(now) {
		t.Error("5-year-old reported as adult")
	}

	// Turns 18 the day after "now".
	almost := Guest{BirthDate: date(2006, 6, 2)}
	if !almost.IsMinor(now) {
		t.Error("guest turning 18 tomorrow should still be a minor")
	}
}

func TestReservationNights(t *testing.T) {
	r := Reservation{StartDate: date(2024, 5, 29), EndDate: date(2024, 6, 5)}
	if got := r.Nights(); got != 7 {
		t.Fatalf("expected 7 nights, got %d", got)
	}
}

func TestHasLevel(t *testing.T) {
	r := Reservation{Guests: []Guest{{Level: NonMember}, {Level: Gold}}}
	if !r.HasLevel(Gold) {
		t.Error("expected gold party to satisfy Gold")
	}
	if r.HasLevel(Platinum) {
		t.Error("gold party should not satisfy Platinum")
	}
}

func TestReservationsByChatID(t *testing.T) {
	dir := NewSampleDirectory()

	found := dir.ReservationsByChatID("6449557216", "")
	if len(found) != 1 {
		t.Fatalf("expected 1 reservation for known chat id, got %d", len(found))
	}

	none := dir.ReservationsByChatID("unknown", "")
	if len(none) != 0 {
		t.Fatalf("expected no reservations without fallback, got %d", len(none))
	}

	fallback := dir.ReservationsByChatID("unknown", "Leire")
	if len(fallback) != 1 {
		t.Fatalf("expected fabricated fallback reservation, got %d", len(fallback))
	}
	if fallback[0].Guests[0].Name != "Leire" {
		t.Errorf("fallback guest should carry the fallback name, got %q", fallback[0].Guests[0].Name)
	}
	if !fallback[0].HasLevel(Gold) {
		t.Error("fallback guest should be a gold member")
	}
}

func TestSessionAttributes(t *testing.T) {
	dir := NewSampleDirectory()

	attrs := dir.SessionAttributes("1522147268", "Antonio")
	if attrs["hotel_name"] != "Costa Tartessos Luxury Resort" {
		t.Errorf("unexpected hotel name %q", attrs["hotel_name"])
	}
	if attrs["checkin_date"] != "2024-05-29" {
		t.Errorf("unexpected checkin %q", attrs["checkin_date"])
	}
	if attrs["member_level"] != "silver" {
		t.Errorf("unexpected member level %q", attrs["member_level"])
	}
	if attrs["room_number"] != "307" {
		t.Errorf("unexpected room %q", attrs["room_number"])
	}
}

func TestRoomKeyAndPosterEmbedded(t *testing.T) {
	r := Reservation{}
	if len(r.DigitalRoomKey()) == 0 {
		t.Error("room key image should be embedded")
	}
	if len(sampleHotel.Poster) == 0 {
		t.Error("poster image should be embedded")
	}
}
