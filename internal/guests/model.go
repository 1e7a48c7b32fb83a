package guests

import "time"

// MemberLevel is the loyalty tier of a guest. Ordering matters: Gold and
// above unlock the digital room key flow.
type MemberLevel int

const (
	NonMember MemberLevel = iota
	White
	Silver
	Gold
	Platinum
)

func (l MemberLevel) String() string {
	switch l {
	case White:
		return "white"
	case Silver:
		return "silver"
	case Gold:
		return "gold"
	case Platinum:
		return "platinum"
	default:
		return "non-member"
	}
}

// Guest is one person on a reservation. ChatID links the guest to a
// messaging-channel identity when known.
type Guest struct {
	Name      string
	Surnames  []string
	BirthDate time.Time
	Level     MemberLevel
	ChatID    string
}

// IsMinor reports whether the guest is under 18 at the given instant.
func (g Guest) IsMinor(now time.Time) bool {
	return g.BirthDate.AddDate(18, 0, 0).After(now)
}

// Location is a point on the map with an optional street address.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Hotel describes one property.
type Hotel struct {
	Name     string
	Location Location
	Stars    int
	URL      string
	Poster   []byte
}

// Reservation is one stay at a hotel.
type Reservation struct {
	Hotel      Hotel
	Guests     []Guest
	StartDate  time.Time
	EndDate    time.Time
	RoomNumber int
}

// Nights returns the length of the stay.
func (r Reservation) Nights() int {
	return int(r.EndDate.Sub(r.StartDate).Hours() / 24)
}

// HasLevel reports whether any guest on the reservation holds at least the
// given loyalty tier.
func (r Reservation) HasLevel(level MemberLevel) bool {
	for _, g := range r.Guests {
		if g.Level >= level {
			return true
		}
	}
	return false
}

// DigitalRoomKey produces the key image for the reservation's room. The
// sample directory ships a placeholder PNG.
func (r Reservation) DigitalRoomKey() []byte {
	return roomKeyImage
}
