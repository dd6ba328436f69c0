package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pharos-integrity/pharos/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func setupRouter(store *Store) chi.Router {
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r
}

func TestLogAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	entry := Entry{
		ID:             "evt-1",
		Timestamp:      ts,
		RequestID:      "req-9",
		Kind:           KindReport,
		Source:         SourceHTTP,
		Company:        "Acme",
		Sector:         "Energy",
		ClaimCount:     3,
		Status:         200,
		RiskLevel:      "High",
		Interpretation: "structured",
		Model:          "google/gemini-3-flash-preview",
		DurationMS:     1834,
	}

	if err := store.Log(ctx, entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	got, err := store.GetByID(ctx, "evt-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %s, want %s", got.Timestamp, ts)
	}
	got.Timestamp = entry.Timestamp
	if *got != entry {
		t.Errorf("GetByID = %+v, want %+v", *got, entry)
	}
}

func TestLogGeneratesIDAndTimestamp(t *testing.T) {
	store := setupStore(t)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	if err := store.Log(ctx, Entry{Kind: KindClaim, Source: SourceCLI, Status: 200}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	entries, err := store.Query(ctx, QueryFilter{Source: SourceCLI})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID == "" {
		t.Error("expected generated ID, got empty string")
	}
	if !entries[0].Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %s, want %s", entries[0].Timestamp, fixed)
	}
}

func seed(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "a", Kind: KindClaim, Source: SourceHTTP, Company: "Acme", Status: 200, RiskLevel: "Low", Interpretation: "structured", ClaimCount: 1},
		{ID: "b", Kind: KindReport, Source: SourceHTTP, Company: "Acme", Status: 200, RiskLevel: "High", Interpretation: "fallback", ClaimCount: 4},
		{ID: "c", Kind: KindClaim, Source: SourceMCP, Company: "Globex", Status: 429, Error: "Rate limit exceeded. Please try again later.", ClaimCount: 1},
		{ID: "d", Kind: KindClaim, Source: SourceHTTP, Company: "Globex", Status: 400, Error: "Claim text is required"},
	}
	for i, e := range entries {
		e.Timestamp = base.Add(time.Duration(i) * time.Hour)
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log(%s): %v", e.ID, err)
		}
	}
}

func TestQueryFilters(t *testing.T) {
	store := setupStore(t)
	seed(t, store)
	ctx := context.Background()
	since := time.Date(2026, 5, 1, 1, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter QueryFilter
		want   []string
	}{
		{"all newest first", QueryFilter{}, []string{"d", "c", "b", "a"}},
		{"by kind", QueryFilter{Kind: KindReport}, []string{"b"}},
		{"by source", QueryFilter{Source: SourceMCP}, []string{"c"}},
		{"by company", QueryFilter{Company: "Acme"}, []string{"b", "a"}},
		{"fallbacks", QueryFilter{Interpretation: "fallback"}, []string{"b"}},
		{"failed only", QueryFilter{FailedOnly: true}, []string{"d", "c"}},
		{"since", QueryFilter{Since: &since}, []string{"d", "c", "b"}},
		{"limit offset", QueryFilter{Limit: 2, Offset: 1}, []string{"c", "b"}},
		{"offset without limit", QueryFilter{Offset: 3}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			var ids []string
			for _, e := range entries {
				ids = append(ids, e.ID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("got %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("got %v, want %v", ids, tt.want)
					break
				}
			}
		})
	}
}

func TestQueryDefaultLimit(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	const total = DefaultQueryLimit + 5
	for i := 0; i < total; i++ {
		e := Entry{Kind: KindClaim, Source: SourceHTTP, Status: 200, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	entries, err := store.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != DefaultQueryLimit {
		t.Fatalf("expected %d entries, got %d", DefaultQueryLimit, len(entries))
	}
	if !entries[0].Timestamp.Equal(base.Add((total - 1) * time.Minute)) {
		t.Errorf("expected newest entry first, got %v", entries[0].Timestamp)
	}

	entries, err = store.Query(ctx, QueryFilter{Limit: total})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != total {
		t.Errorf("expected %d entries with explicit limit, got %d", total, len(entries))
	}

	stats, err := store.Stats(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != total {
		t.Errorf("expected stats over all %d entries, got %d", total, stats.Total)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
	rec := httptest.NewRecorder()
	setupRouter(store).ServeHTTP(rec, req)
	var got []Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != DefaultQueryLimit {
		t.Errorf("expected %d entries over HTTP, got %d", DefaultQueryLimit, len(got))
	}
}

func TestStats(t *testing.T) {
	store := setupStore(t)
	seed(t, store)

	st, err := store.Stats(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 4 || st.Failed != 2 || st.Fallbacks != 1 || st.Claims != 6 {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.ByRisk["High"] != 1 || st.ByRisk["Low"] != 1 || len(st.ByRisk) != 2 {
		t.Errorf("unexpected risk breakdown %v", st.ByRisk)
	}

	st, err = store.Stats(context.Background(), QueryFilter{Company: "Globex"})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 2 || len(st.ByRisk) != 0 {
		t.Errorf("unexpected filtered stats %+v", st)
	}
}

func TestStatsEmpty(t *testing.T) {
	store := setupStore(t)
	st, err := store.Stats(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 0 || st.Claims != 0 {
		t.Errorf("expected zero stats, got %+v", st)
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	seed(t, store)
	ctx := context.Background()

	n, err := store.DeleteBefore(ctx, time.Date(2026, 5, 1, 2, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}

	entries, err := store.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 remaining, got %d", len(entries))
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t)
	if _, err := store.GetByID(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing entry")
	}
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = Nop{}
	if err := r.Log(context.Background(), Entry{}); err != nil {
		t.Errorf("Nop.Log: %v", err)
	}
}

func TestHTTPGetByID(t *testing.T) {
	store := setupStore(t)
	seed(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/audit/b", nil)
	rec := httptest.NewRecorder()
	setupRouter(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "b" || got.Kind != KindReport || got.ClaimCount != 4 {
		t.Errorf("unexpected entry %+v", got)
	}
}

func TestHTTPGetByIDNotFound(t *testing.T) {
	store := setupStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/audit/missing", nil)
	rec := httptest.NewRecorder()
	setupRouter(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHTTPQueryWithFilter(t *testing.T) {
	store := setupStore(t)
	seed(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/audit?company=Globex&failed=true&limit=10", nil)
	rec := httptest.NewRecorder()
	setupRouter(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entries []Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestHTTPQueryEmptyIsArray(t *testing.T) {
	store := setupStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
	rec := httptest.NewRecorder()
	setupRouter(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}

func TestHTTPStats(t *testing.T) {
	store := setupStore(t)
	seed(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/audit/stats?kind=claim", nil)
	rec := httptest.NewRecorder()
	setupRouter(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var st Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.Total != 3 {
		t.Errorf("expected 3 claim entries, got %d", st.Total)
	}
}
