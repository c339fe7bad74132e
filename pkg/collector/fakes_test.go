package collector

import (
	"context"
	"strings"
	"time"
)

func testWindow() TimeWindow {
	return TimeWindow{
		StartUTC: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndUTC:   time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
	}
}

// fakeLocationSource returns a fixed location set.
type fakeLocationSource struct {
	locations []Location
	err       error
	calls     int
}

func (f *fakeLocationSource) ActiveLocations(ctx context.Context) ([]Location, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.locations, nil
}

// scriptedSearcher serves pre-scripted pages per location batch, keyed by the
// joined location ids of the request.
type scriptedSearcher struct {
	pages    map[string][]*PageResult
	next     map[string]int
	err      error
	calls    int
	requests []SearchRequest
}

func newScriptedSearcher() *scriptedSearcher {
	return &scriptedSearcher{
		pages: make(map[string][]*PageResult),
		next:  make(map[string]int),
	}
}

func (s *scriptedSearcher) script(locationIDs []string, pages ...*PageResult) {
	s.pages[strings.Join(locationIDs, ",")] = pages
}

func (s *scriptedSearcher) Search(ctx context.Context, req SearchRequest) (*PageResult, error) {
	s.calls++
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}

	key := strings.Join(req.LocationIDs, ",")
	scripted := s.pages[key]
	idx := s.next[key]
	if idx >= len(scripted) {
		return &PageResult{}, nil
	}
	s.next[key] = idx + 1
	return scripted[idx], nil
}

// fakeCatalog resolves from a fixed item set.
type fakeCatalog struct {
	items   []CatalogItem
	err     error
	calls   int
	lastIDs []string
}

func (f *fakeCatalog) Resolve(ctx context.Context, ids []string) ([]CatalogItem, error) {
	f.calls++
	f.lastIDs = ids
	if f.err != nil {
		return nil, f.err
	}

	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	var matched []CatalogItem
	for _, item := range f.items {
		if _, ok := requested[item.VariationID]; ok {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func makeLocations(n int) []Location {
	locations := make([]Location, n)
	for i := range locations {
		locations[i] = Location{ID: locationID(i), Active: true}
	}
	return locations
}

func locationID(i int) string {
	return "L" + string(rune('A'+i/10)) + string(rune('0'+i%10))
}
