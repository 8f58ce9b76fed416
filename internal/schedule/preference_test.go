package schedule

import (
	"errors"
	"testing"
)

func TestSelection_AddUpdateRemove(t *testing.T) {
	empty := NewSelection()
	one := empty.Add(DefaultPreference)
	two := one.Add(SlotPreference{DayOfWeek: Friday, Time: "18:30"})

	if empty.Len() != 0 || one.Len() != 1 || two.Len() != 2 {
		t.Fatalf("lengths = %d, %d, %d; want 0, 1, 2", empty.Len(), one.Len(), two.Len())
	}

	updated := two.Update(0, SlotPreference{DayOfWeek: Sunday, Time: "08:00"})
	if got := updated.Items()[0]; got.DayOfWeek != Sunday || got.Time != "08:00" {
		t.Errorf("updated[0] = %+v", got)
	}
	if got := two.Items()[0]; got != DefaultPreference {
		t.Errorf("Update mutated the source selection: %+v", got)
	}

	removed := updated.RemoveAt(0)
	if removed.Len() != 1 || removed.Items()[0].DayOfWeek != Friday {
		t.Errorf("after RemoveAt(0) = %+v", removed.Items())
	}
	if updated.Len() != 2 {
		t.Errorf("RemoveAt mutated the source selection")
	}
}

func TestSelection_OutOfRangeIsNoop(t *testing.T) {
	empty := NewSelection()
	if got := empty.RemoveAt(0); got.Len() != 0 {
		t.Errorf("RemoveAt(0) on empty = %+v", got.Items())
	}

	s := NewSelection(DefaultPreference)
	for _, i := range []int{-1, 1, 5} {
		if got := s.RemoveAt(i); got.Len() != 1 {
			t.Errorf("RemoveAt(%d) changed length to %d", i, got.Len())
		}
		if got := s.Update(i, SlotPreference{DayOfWeek: Friday, Time: "01:00"}); got.Items()[0] != DefaultPreference {
			t.Errorf("Update(%d) changed entry 0", i)
		}
	}
}

func TestSelection_ItemsIsACopy(t *testing.T) {
	s := NewSelection(DefaultPreference)
	items := s.Items()
	items[0].Time = "23:00"
	if s.Items()[0].Time != "10:00" {
		t.Error("mutating Items() leaked into the selection")
	}
}

func TestSelection_Payload(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single digit hour", "9:30", "9:30:00"},
		{"two digit hour", "09:30", "09:30:00"},
		{"already wire format", "09:30:00", "09:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelection(SlotPreference{DayOfWeek: Monday, Time: tt.in})
			payload := s.Payload()
			if len(payload) != 1 {
				t.Fatalf("payload length = %d", len(payload))
			}
			if payload[0].Time != tt.want {
				t.Errorf("time = %q, want %q", payload[0].Time, tt.want)
			}
			if payload[0].DayOfWeek != Monday {
				t.Errorf("day = %q", payload[0].DayOfWeek)
			}

			again := NewSelection(payload...).Payload()
			if again[0].Time != tt.want {
				t.Errorf("normalizing twice = %q, want %q", again[0].Time, tt.want)
			}
		})
	}
}

func TestNormalizeTime_Invalid(t *testing.T) {
	for _, in := range []string{"", "9", "25:00", "10:60", "1:2:3:4", "ab:cd"} {
		if _, err := NormalizeTime(in); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("NormalizeTime(%q) error = %v, want ErrInvalidTime", in, err)
		}
	}
}

func TestSelection_Validate(t *testing.T) {
	if err := NewSelection().Validate(); err == nil {
		t.Error("empty selection should not validate")
	}
	if err := NewSelection(DefaultPreference).Validate(); err != nil {
		t.Errorf("default selection: %v", err)
	}
	bad := NewSelection(DefaultPreference, SlotPreference{DayOfWeek: "Someday", Time: "10:00"})
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDayOfWeek) {
		t.Errorf("error = %v, want ErrInvalidDayOfWeek", err)
	}
	badTime := NewSelection(SlotPreference{DayOfWeek: Monday, Time: "noon"})
	if err := badTime.Validate(); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("error = %v, want ErrInvalidTime", err)
	}
}

func TestParsePreference(t *testing.T) {
	tests := []struct {
		in      string
		want    SlotPreference
		wantErr bool
	}{
		{in: "Monday@10:00", want: SlotPreference{DayOfWeek: Monday, Time: "10:00"}},
		{in: "fri 18:30", want: SlotPreference{DayOfWeek: Friday, Time: "18:30"}},
		{in: "sunday@9:15:00", want: SlotPreference{DayOfWeek: Sunday, Time: "9:15:00"}},
		{in: "Monday", wantErr: true},
		{in: "Moonday@10:00", wantErr: true},
		{in: "Monday@later", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePreference(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
