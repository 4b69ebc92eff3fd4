package rwanda

import (
	"os"
	"reflect"
	"strings"
	"testing"
)

// countWalk counts entries per level by walking the default table.
func countWalk(t *testing.T) map[Level]int {
	t.Helper()
	counts := make(map[Level]int)
	Default().Walk(func(l Location) bool {
		counts[l.Level]++
		return true
	})
	return counts
}

func TestProvinces(t *testing.T) {
	want := []string{"East", "Kigali", "North", "South", "West"}
	got := Provinces()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Provinces() = %v, want %v", got, want)
	}
}

func TestNoFilterReturnsEveryName(t *testing.T) {
	counts := countWalk(t)

	tests := []struct {
		name  string
		query func(*Filter) ([]string, bool)
		level Level
	}{
		{"districts", Districts, LevelDistrict},
		{"sectors", Sectors, LevelSector},
		{"cells", Cells, LevelCell},
		{"villages", Villages, LevelVillage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.query(nil)
			if !ok {
				t.Fatalf("%s(nil) unresolved", tt.name)
			}
			if len(got) != counts[tt.level] {
				t.Errorf("len(%s(nil)) = %d, want %d", tt.name, len(got), counts[tt.level])
			}
			if Default().Count(tt.level) != counts[tt.level] {
				t.Errorf("Count(%s) = %d, want %d", tt.level, Default().Count(tt.level), counts[tt.level])
			}
		})
	}
}

func TestBundledDatasetCounts(t *testing.T) {
	tests := []struct {
		level Level
		want  int
	}{
		{LevelProvince, 5},
		{LevelDistrict, 30},
		{LevelSector, 416},
		{LevelCell, 157},
		{LevelVillage, 12},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := Default().Count(tt.level); got != tt.want {
				t.Errorf("Count(%s) = %d, want %d", tt.level, got, tt.want)
			}
		})
	}
}

func TestEmptyFilterMatchesNilFilter(t *testing.T) {
	withNil, _ := Sectors(nil)
	withEmpty, ok := Sectors(&Filter{})
	if !ok {
		t.Fatal("Sectors(&Filter{}) unresolved")
	}
	if !reflect.DeepEqual(withNil, withEmpty) {
		t.Error("Sectors(&Filter{}) differs from Sectors(nil)")
	}
}

func TestCells_KicukiroNyarugunga(t *testing.T) {
	want := []string{"Kamashashi", "Nonko", "Rwimbogo"}

	tests := []struct {
		name   string
		filter Filter
	}{
		{"exact case", Filter{Province: "Kigali", District: "Kicukiro", Sector: "Nyarugunga"}},
		{"mixed case sector", Filter{Province: "Kigali", District: "Kicukiro", Sector: "nyarUguNgA"}},
		{"upper case chain", Filter{Province: "KIGALI", District: "KICUKIRO", Sector: "NYARUGUNGA"}},
		{"surrounding whitespace", Filter{Province: " Kigali ", District: "Kicukiro\t", Sector: " Nyarugunga"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Cells(&tt.filter)
			if !ok {
				t.Fatalf("Cells(%+v) unresolved", tt.filter)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Cells(%+v) = %v, want %v", tt.filter, got, want)
			}
		})
	}
}

func TestUnresolvedFilters(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		filter Filter
	}{
		{"district outside province", LevelCell, Filter{Province: "Kigali", District: "Bugesera", Sector: "Nyarugunga"}},
		{"unknown province", LevelDistrict, Filter{Province: "Atlantis"}},
		{"unknown sector", LevelCell, Filter{Province: "Kigali", District: "Kicukiro", Sector: "Nowhere"}},
		{"unknown cell", LevelVillage, Filter{Province: "Kigali", District: "Gasabo", Sector: "Kimironko", Cell: "Nope"}},
		{"valid leaf with bad province", LevelSector, Filter{Province: "North", District: "Kicukiro"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Default().Names(tt.level, &tt.filter)
			if ok {
				t.Errorf("Names(%s, %+v) = %v, want unresolved", tt.level, tt.filter, got)
			}
			if got != nil {
				t.Errorf("Names(%s, %+v) returned %v alongside unresolved", tt.level, tt.filter, got)
			}
		})
	}
}

func TestBundledDatasetCoverage(t *testing.T) {
	tests := []struct {
		name         string
		level        Level
		filter       Filter
		wantComplete bool
	}{
		{"kigali sector cells", LevelCell, Filter{Province: "Kigali", District: "Kicukiro", Sector: "Nyarugunga"}, true},
		{"bibare villages", LevelVillage, Filter{Province: "Kigali", District: "Gasabo", Sector: "Kimironko", Cell: "Bibare"}, true},
		{"every sector", LevelSector, Filter{}, true},
		{"sector outside kigali", LevelCell, Filter{Province: "East", District: "Bugesera", Sector: "Gashora"}, false},
		{"cell without villages listed", LevelVillage, Filter{Province: "Kigali", District: "Kicukiro", Sector: "Nyarugunga", Cell: "Nonko"}, false},
		{"null cell", LevelVillage, Filter{Province: "Kigali", District: "Gasabo", Sector: "Kimironko", Cell: "Kibagabaga"}, false},
		{"every cell", LevelCell, Filter{}, false},
		{"villages below an unlisted province", LevelVillage, Filter{Province: "East"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Default().Lookup(tt.level, &tt.filter)
			if !r.Resolved {
				t.Fatalf("Lookup(%s, %+v) unresolved", tt.level, tt.filter)
			}
			if r.Complete != tt.wantComplete {
				t.Errorf("Lookup(%s, %+v).Complete = %v, want %v", tt.level, tt.filter, r.Complete, tt.wantComplete)
			}
			if r.Complete && len(r.Names) == 0 {
				t.Errorf("Lookup(%s, %+v) complete but empty", tt.level, tt.filter)
			}
		})
	}

	for _, l := range []Level{LevelProvince, LevelDistrict, LevelSector} {
		if !Default().Complete(l) {
			t.Errorf("Complete(%s) = false", l)
		}
	}
	for _, l := range []Level{LevelCell, LevelVillage} {
		if Default().Complete(l) {
			t.Errorf("Complete(%s) = true for the bundled extract", l)
		}
	}
}

// TestNationalDataset checks a full national export when one is provided
// through RWANDA_NATIONAL_DATASET (YAML or CSV).
func TestNationalDataset(t *testing.T) {
	path := os.Getenv("RWANDA_NATIONAL_DATASET")
	if path == "" {
		t.Skip("RWANDA_NATIONAL_DATASET not set")
	}
	tbl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile(%s) error = %v", path, err)
	}

	want := map[Level]int{
		LevelProvince: 5,
		LevelDistrict: 30,
		LevelSector:   416,
		LevelCell:     2149,
	}
	for level, n := range want {
		names, ok := tbl.Names(level, nil)
		if !ok || len(names) != n {
			t.Errorf("len(Names(%s, nil)) = %d, %v; want %d", level, len(names), ok, n)
		}
	}
	for _, l := range Levels {
		if !tbl.Complete(l) {
			t.Errorf("Complete(%s) = false for a national dataset", l)
		}
	}
	if tbl.Count(LevelVillage) < tbl.Count(LevelCell) {
		t.Errorf("Count(village) = %d, fewer than cells", tbl.Count(LevelVillage))
	}

	cells, ok := tbl.Cells(&Filter{Province: "Kigali", District: "Kicukiro", Sector: "nyarUguNgA"})
	if !ok || strings.Join(cells, ",") != "Kamashashi,Nonko,Rwimbogo" {
		t.Errorf("Cells(Kigali/Kicukiro/nyarUguNgA) = %v, %v", cells, ok)
	}
}

func TestDistricts_ByProvince(t *testing.T) {
	got, ok := Districts(&Filter{Province: "kigali"})
	if !ok {
		t.Fatal("Districts(kigali) unresolved")
	}
	want := []string{"Gasabo", "Kicukiro", "Nyarugenge"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Districts(kigali) = %v, want %v", got, want)
	}
}

func TestVillages_Bibare(t *testing.T) {
	got, ok := Villages(&Filter{Province: "Kigali", District: "Gasabo", Sector: "Kimironko", Cell: "bibare"})
	if !ok {
		t.Fatal("Villages(Bibare) unresolved")
	}
	if len(got) != 12 {
		t.Fatalf("len(Villages(Bibare)) = %d, want 12", len(got))
	}
	if got[0] != "Abatuje" || got[len(got)-1] != "Urumuri" {
		t.Errorf("Villages(Bibare) order = %v", got)
	}
}

func TestIgnoredDeeperFilterFields(t *testing.T) {
	plain, _ := Districts(&Filter{Province: "Kigali"})
	noisy, ok := Districts(&Filter{Province: "Kigali", District: "Nope", Sector: "Nope", Cell: "Nope"})
	if !ok {
		t.Fatal("Districts with fields below district level should ignore them")
	}
	if !reflect.DeepEqual(plain, noisy) {
		t.Errorf("Districts(noisy) = %v, want %v", noisy, plain)
	}
}

func TestOmittedIntermediateLevelIsWildcard(t *testing.T) {
	// Nyarugenge is both a Kigali district and a sector of Nyarugenge and Bugesera.
	got, ok := Cells(&Filter{Sector: "Nyarugenge"})
	if !ok {
		t.Fatal("Cells(sector=Nyarugenge) unresolved")
	}
	want := []string{"Agatare", "Biryogo", "Kiyovu", "Rwampara"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Cells(sector=Nyarugenge) = %v, want %v", got, want)
	}

	sectors, ok := Sectors(&Filter{District: "Kicukiro"})
	if !ok {
		t.Fatal("Sectors(district=Kicukiro) unresolved")
	}
	if len(sectors) != 10 {
		t.Errorf("len(Sectors(district=Kicukiro)) = %d, want 10", len(sectors))
	}

	if _, ok := Cells(&Filter{Sector: "Atlantis"}); ok {
		t.Error("Cells(sector=Atlantis) resolved, want unresolved")
	}
}

func TestWildcardConcatenatesBranches(t *testing.T) {
	got, ok := Sectors(&Filter{Province: "Kigali"})
	if !ok {
		t.Fatal("Sectors(Kigali) unresolved")
	}
	if len(got) != 35 {
		t.Fatalf("len(Sectors(Kigali)) = %d, want 35", len(got))
	}
	if got[0] != "Bumbogo" || got[15] != "Gahanga" || got[25] != "Gitega" {
		t.Errorf("Sectors(Kigali) not in table order: %v", got)
	}
}

func TestIdempotentAndDefensiveCopies(t *testing.T) {
	f := &Filter{Province: "Kigali", District: "Kicukiro", Sector: "Nyarugunga"}
	first, _ := Cells(f)
	first[0] = "mutated"

	second, _ := Cells(f)
	third, _ := Cells(f)
	if second[0] != "Kamashashi" {
		t.Errorf("table affected by caller mutation: %v", second)
	}
	if !reflect.DeepEqual(second, third) {
		t.Errorf("repeated calls differ: %v vs %v", second, third)
	}

	provinces := Provinces()
	provinces[0] = "mutated"
	if Provinces()[0] != "East" {
		t.Error("Provinces() shares backing storage between calls")
	}
}

func TestNames_InvalidLevel(t *testing.T) {
	if got, ok := Default().Names(Level(0), nil); ok || got != nil {
		t.Errorf("Names(0) = %v, %v; want nil, false", got, ok)
	}
	if got, ok := Default().Names(Level(9), nil); ok || got != nil {
		t.Errorf("Names(9) = %v, %v; want nil, false", got, ok)
	}
}

func TestConcurrentReads(t *testing.T) {
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 200; j++ {
				cells, ok := Cells(&Filter{Province: "kigali", District: "kicukiro", Sector: "nyarugunga"})
				if !ok || strings.Join(cells, ",") != "Kamashashi,Nonko,Rwimbogo" {
					t.Errorf("concurrent Cells() = %v, %v", cells, ok)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
