// internal/analytics/window.go
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/hongngoc-nguyen/brandpulse/internal/models"
	"github.com/hongngoc-nguyen/brandpulse/internal/store"
)

// ResponseWindow is the set of responses inside one date window, with the
// per-response lookups nearly every aggregator needs: the day bucket and the
// originating prompt.
type ResponseWindow struct {
	DateOf   map[string]string // response id -> YYYY-MM-DD
	PromptOf map[string]string // response id -> prompt id ("" when unresolvable)
	Dates    []string          // sorted distinct day buckets in the window
}

// Contains reports membership of a response id.
func (w ResponseWindow) Contains(responseID string) bool {
	_, ok := w.DateOf[responseID]
	return ok
}

// Size returns the number of responses in the window.
func (w ResponseWindow) Size() int {
	return len(w.DateOf)
}

// PromptIDs returns the distinct non-empty prompt ids in the window.
func (w ResponseWindow) PromptIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, pid := range w.PromptOf {
		if pid == "" {
			continue
		}
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}
		ids = append(ids, pid)
	}
	return ids
}

// WindowSelector turns a date filter or a rolling-window length into the set
// of response ids falling inside the window.
type WindowSelector struct {
	store store.Store
	now   func() time.Time
}

func NewWindowSelector(s store.Store) *WindowSelector {
	return &WindowSelector{store: s, now: time.Now}
}

// Select returns the responses matching dateFilter: the sentinel "all" (no
// lower bound), or an exact calendar day YYYY-MM-DD treated as the half-open
// interval [day 00:00, day+1 00:00). An unparseable day yields an empty
// window without touching the store.
func (s *WindowSelector) Select(ctx context.Context, dateFilter string) (ResponseWindow, error) {
	if dateFilter == FilterAll || dateFilter == "" {
		responses, err := s.store.AllResponses(ctx)
		if err != nil {
			return ResponseWindow{}, err
		}
		return buildWindow(responses), nil
	}

	day, err := time.ParseInLocation("2006-01-02", dateFilter, time.UTC)
	if err != nil {
		return buildWindow(nil), nil
	}

	responses, err := s.store.ResponsesBetween(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		return ResponseWindow{}, err
	}
	return buildWindow(responses), nil
}

// SelectRolling returns the current window [now-days, now) and the previous
// window [now-2*days, now-days), both half-open. A non-positive days yields
// two empty windows.
func (s *WindowSelector) SelectRolling(ctx context.Context, days int) (current, previous ResponseWindow, err error) {
	if days <= 0 {
		return buildWindow(nil), buildWindow(nil), nil
	}

	now := s.now().UTC()
	span := time.Duration(days) * 24 * time.Hour

	currentResponses, err := s.store.ResponsesBetween(ctx, now.Add(-span), now)
	if err != nil {
		return ResponseWindow{}, ResponseWindow{}, err
	}
	previousResponses, err := s.store.ResponsesBetween(ctx, now.Add(-2*span), now.Add(-span))
	if err != nil {
		return ResponseWindow{}, ResponseWindow{}, err
	}

	return buildWindow(currentResponses), buildWindow(previousResponses), nil
}

func buildWindow(responses []models.Response) ResponseWindow {
	w := ResponseWindow{
		DateOf:   make(map[string]string, len(responses)),
		PromptOf: make(map[string]string, len(responses)),
	}

	seenDates := make(map[string]struct{})
	for _, r := range responses {
		date := models.DateKey(r.Date)
		w.DateOf[r.ID] = date
		w.PromptOf[r.ID] = r.PromptID
		if _, ok := seenDates[date]; !ok {
			seenDates[date] = struct{}{}
			w.Dates = append(w.Dates, date)
		}
	}
	sort.Strings(w.Dates)

	return w
}
