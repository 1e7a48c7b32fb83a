package guests

import (
	_ "embed"
	"strconv"
	"time"
)

//go:embed assets/room-key.png
var roomKeyImage []byte

//go:embed assets/poster.jpg
var posterImage []byte

var sampleHotel = Hotel{
	Name: "Costa Tartessos Luxury Resort",
	Location: Location{
		Latitude:  36.3407887,
		Longitude: -6.1609661,
		Address:   "Playa de la Victoria, Cádiz",
	},
	Stars:  5,
	URL:    "https://costatartessos.example.com",
	Poster: posterImage,
}

var sampleReservations = []Reservation{
	{
		Hotel: sampleHotel,
		Guests: []Guest{
			{Name: "Joseba", Surnames: []string{"Echevarría", "García"}, BirthDate: date(1984, 6, 2), Level: Gold, ChatID: "6449557216"},
			{Name: "María", Surnames: []string{"García", "Rodríguez"}, BirthDate: date(1985, 9, 15), Level: NonMember},
			{Name: "Iker", Surnames: []string{"García", "Echevarría"}, BirthDate: date(2019, 2, 28), Level: NonMember},
		},
		StartDate:  date(2024, 5, 29),
		EndDate:    date(2024, 6, 5),
		RoomNumber: 126,
	},
	{
		Hotel: sampleHotel,
		Guests: []Guest{
			{Name: "Antonio", Surnames: []string{"Campos", "Rodríguez"}, BirthDate: date(1986, 9, 12), Level: Silver, ChatID: "1522147268"},
			{Name: "Elena", Surnames: []string{"Díez", "Vázquez"}, BirthDate: date(1986, 1, 21), Level: NonMember},
		},
		StartDate:  date(2024, 5, 29),
		EndDate:    date(2024, 7, 3),
		RoomNumber: 307,
	},
	{
		Hotel: sampleHotel,
		Guests: []Guest{
			{Name: "Joseba", Surnames: []string{"Echevarría", "García"}, BirthDate: date(1984, 6, 2), Level: Gold, ChatID: "114649997"},
			{Name: "María", Surnames: []string{"García", "Rodríguez"}, BirthDate: date(1985, 9, 15), Level: NonMember},
		},
		StartDate:  date(2024, 5, 29),
		EndDate:    date(2024, 6, 6),
		RoomNumber: 306,
	},
}

// Directory answers reservation lookups for the orchestrator. The sample
// implementation is process-local seed data standing in for the property
// management system.
type Directory struct {
	reservations []Reservation
}

// NewSampleDirectory returns a directory seeded with demo reservations.
func NewSampleDirectory() *Directory {
	return &Directory{reservations: sampleReservations}
}

// ReservationsByChatID returns the reservations whose guest list contains
// the given chat identity. When nothing matches and a fallback name is
// given, a default reservation is fabricated so the assistant always has
// something to talk about.
func (d *Directory) ReservationsByChatID(chatID, fallbackName string) []Reservation {
	var out []Reservation
	for _, r := range d.reservations {
		for _, g := range r.Guests {
			if g.ChatID == chatID {
				out = append(out, r)
				break
			}
		}
	}
	if len(out) > 0 || fallbackName == "" {
		return out
	}

	return []Reservation{{
		Hotel: sampleHotel,
		Guests: []Guest{{
			Name:      fallbackName,
			BirthDate: date(1984, 6, 2),
			Level:     Gold,
			ChatID:    chatID,
		}},
		StartDate:  date(2024, 5, 29),
		EndDate:    date(2024, 6, 5),
		RoomNumber: 126,
	}}
}

// SessionAttributes builds the attribute bundle forwarded to the assistant
// on every freeform turn, describing the requester's current reservation.
func (d *Directory) SessionAttributes(chatID, name string) map[string]string {
	reservations := d.ReservationsByChatID(chatID, name)
	if len(reservations) == 0 {
		return map[string]string{"main_guest_name": name}
	}

	next := reservations[0]
	for _, r := range reservations[1:] {
		if r.StartDate.Before(next.StartDate) {
			next = r
		}
	}

	return map[string]string{
		"main_guest_name": name,
		"hotel_name":      next.Hotel.Name,
		"checkin_date":    next.StartDate.Format("2006-01-02"),
		"checkout_date":   next.EndDate.Format("2006-01-02"),
		"room_number":     strconv.Itoa(next.RoomNumber),
		"member_level":    bestLevel(next.Guests).String(),
	}
}

func bestLevel(gs []Guest) MemberLevel {
	best := NonMember
	for _, g := range gs {
		if g.Level > best {
			best = g.Level
		}
	}
	return best
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
