package assistant

import "testing"

func TestDecodeFragmentPlainText(t *testing.T) {
	f := DecodeFragment([]byte("The spa opens at nine."))
	if f.Text != "The spa opens at nine." {
		t.Fatalf("unexpected text %q", f.Text)
	}
	if f.Availability != nil || f.Unrecognized != nil || f.Err != nil {
		t.Fatal("plain text must not carry structured fields")
	}
}

func TestDecodeFragmentSpaAvailability(t *testing.T) {
	payload := []byte(`{"response_type": "spa_availability", "date": "2025-03-10", "available_slots": ["2025-03-10 10:00", "2025-03-10 11:00"]}`)

	f := DecodeFragment(payload)
	if f.Availability == nil {
		t.Fatalf("expected structured fragment, got %#v", f)
	}
	if f.Availability.Date != "2025-03-10" {
		t.Errorf("unexpected date %q", f.Availability.Date)
	}
	if len(f.Availability.AvailableSlots) != 2 {
		t.Errorf("unexpected slots %v", f.Availability.AvailableSlots)
	}
}

func TestDecodeFragmentEmptySlotList(t *testing.T) {
	f := DecodeFragment([]byte(`{"response_type": "spa_availability", "date": "2025-03-10"}`))
	if f.Availability == nil {
		t.Fatal("expected structured fragment")
	}
	if f.Availability.AvailableSlots == nil || len(f.Availability.AvailableSlots) != 0 {
		t.Fatalf("missing slot list must decode as empty, got %#v", f.Availability.AvailableSlots)
	}
}

func TestDecodeFragmentUnknownDocument(t *testing.T) {
	f := DecodeFragment([]byte(`{"response_type": "weather", "temp": 21}`))
	if f.Unrecognized == nil {
		t.Fatalf("expected opaque structured fragment, got %#v", f)
	}
	if f.Availability != nil {
		t.Fatal("unknown document must not decode as availability")
	}
}

func TestDecodeFragmentBraceButNotJSON(t *testing.T) {
	f := DecodeFragment([]byte("{not json at all"))
	if f.Text != "{not json at all" {
		t.Fatalf("malformed braces should fall back to text, got %#v", f)
	}
}

func TestDecodeFragmentLeadingWhitespace(t *testing.T) {
	f := DecodeFragment([]byte("  \n{\"response_type\":\"spa_availability\",\"date\":\"2025-03-11\",\"available_slots\":[]}"))
	if f.Availability == nil || f.Availability.Date != "2025-03-11" {
		t.Fatalf("whitespace-prefixed document should still decode, got %#v", f)
	}
}
