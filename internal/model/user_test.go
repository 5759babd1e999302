package model

import (
	"reflect"
	"testing"
)

func TestPushRecentCityEvictsOldest(t *testing.T) {
	var u User
	for _, c := range []string{"A", "B", "C", "D"} {
		u.PushRecentCity(c)
	}
	want := []string{"B", "C", "D"}
	if !reflect.DeepEqual(u.RecentSearchedCities, want) {
		t.Fatalf("cities = %v, want %v", u.RecentSearchedCities, want)
	}
}

func TestPushRecentCity(t *testing.T) {
	tests := []struct {
		name   string
		cities []string
		city   string
		want   []string
	}{
		{"empty", nil, "Paris", []string{"Paris"}},
		{"below capacity", []string{"A", "B"}, "C", []string{"A", "B", "C"}},
		{"at capacity", []string{"A", "B", "C"}, "D", []string{"B", "C", "D"}},
		{"over capacity input", []string{"A", "B", "C", "D"}, "E", []string{"C", "D", "E"}},
		{"blank ignored", []string{"A"}, "  ", []string{"A"}},
		{"trimmed", nil, " Rome ", []string{"Rome"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PushRecentCity(tt.cities, tt.city)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("PushRecentCity(%v, %q) = %v, want %v", tt.cities, tt.city, got, tt.want)
			}
		})
	}
}

func TestPushRecentCityDoesNotMutateInput(t *testing.T) {
	in := []string{"A", "B", "C"}
	_ = PushRecentCity(in, "D")
	if !reflect.DeepEqual(in, []string{"A", "B", "C"}) {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestNormalizeLabels(t *testing.T) {
	got := NormalizeLabels([]string{" Free WiFi", "Pool", "", "Free WiFi", "Pool "})
	want := []string{"Free WiFi", "Pool"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeLabels = %v, want %v", got, want)
	}
}

func TestRoomTypeValid(t *testing.T) {
	if !RoomTypeFamilySuite.Valid() {
		t.Fatal("Family Suite should be valid")
	}
	if RoomType("Penthouse").Valid() {
		t.Fatal("Penthouse should not be valid")
	}
}
