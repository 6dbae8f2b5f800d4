package transport_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campaignkit/slotpool/internal/domain/audit"
	"github.com/campaignkit/slotpool/internal/domain/contact"
	"github.com/campaignkit/slotpool/internal/domain/search"
	"github.com/campaignkit/slotpool/internal/domain/slot"
	"github.com/campaignkit/slotpool/internal/domain/stats"
	"github.com/campaignkit/slotpool/internal/sqlite"
	"github.com/campaignkit/slotpool/internal/transport"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	contactRepo := sqlite.NewContactRepository(db)
	slotRepo := sqlite.NewSlotRepository(db)
	searchRepo := sqlite.NewSearchRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)
	statsRepo := sqlite.NewStatsRepository(db)

	services := transport.Services{
		Contacts: contact.NewService(contactRepo, auditRepo, 0, nil),
		Slots:    slot.NewService(slotRepo, auditRepo, nil),
		Search:   search.NewService(searchRepo, 0, 0, nil),
		Stats:    stats.NewService(statsRepo, nil),
		Audit:    audit.NewService(auditRepo, nil),
	}

	srv := httptest.NewServer(transport.NewRouter(services, nil))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func uploadContacts(t *testing.T, srv *httptest.Server, channel string, values []string) {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/contacts/upload", map[string]any{
		"channel": channel,
		"values":  values,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpload(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/contacts/upload", map[string]any{
		"channel": "WhatsApp",
		"values":  []string{"+91 98765 43210", "9876543210", "bogus"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result contact.IngestResult
	decodeInto(t, resp, &result)
	require.Equal(t, 3, result.TotalReceived)
	require.Equal(t, 1, result.Inserted)
	require.Equal(t, 1, result.Duplicates)
	require.Equal(t, 1, result.Invalid)
	require.Equal(t, []string{"bogus"}, result.InvalidValues)
}

func TestUpload_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/contacts/upload", map[string]any{
		"channel": "pigeon",
		"values":  []string{"9876543210"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/contacts/upload", map[string]any{"channel": "WhatsApp"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRunCampaignAndReconcile(t *testing.T) {
	srv := newTestServer(t)

	uploadContacts(t, srv, "WhatsApp", []string{
		"9000000001", "9000000002", "9000000003", "9000000004", "9000000005",
	})

	resp := postJSON(t, srv.URL+"/api/campaigns/run", map[string]any{
		"channel":        "WhatsApp",
		"required_count": 5,
		"freshness":      "New",
		"user":           "ops",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created slot.Slot
	decodeInto(t, resp, &created)
	require.Len(t, created.Values, 5)
	require.Equal(t, "ops", created.CreatedBy)

	// The pool is drained of New contacts now
	resp = postJSON(t, srv.URL+"/api/campaigns/run", map[string]any{
		"channel":        "WhatsApp",
		"required_count": 1,
		"freshness":      "New",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var shortfall struct {
		Required  int `json:"required"`
		Available int `json:"available"`
	}
	decodeInto(t, resp, &shortfall)
	require.Equal(t, 1, shortfall.Required)
	require.Equal(t, 0, shortfall.Available)

	// Report two failures; one value was never in the slot
	resp = postJSON(t, srv.URL+fmt.Sprintf("/api/slots/%d/failed", created.ID), map[string]any{
		"values": []string{"9000000002", "1111111111"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result slot.ReconcileResult
	decodeInto(t, resp, &result)
	require.Equal(t, 1, result.Removed)

	// The released contact is New-eligible again
	resp = postJSON(t, srv.URL+"/api/campaigns/run", map[string]any{
		"channel":        "WhatsApp",
		"required_count": 1,
		"freshness":      "New",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var second slot.Slot
	decodeInto(t, resp, &second)
	require.Equal(t, []string{"9000000002"}, second.Values)
}

func TestRunCampaign_ScheduleMode(t *testing.T) {
	srv := newTestServer(t)

	uploadContacts(t, srv, "Email", []string{"a@x.co", "b@x.co", "c@x.co"})

	resp := postJSON(t, srv.URL+"/api/campaigns/run", map[string]any{
		"channel":  "Email",
		"duration": 60,
		"interval": 30,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created slot.Slot
	decodeInto(t, resp, &created)
	require.Len(t, created.Values, 2)

	// Zero-count schedules are rejected up front
	resp = postJSON(t, srv.URL+"/api/campaigns/run", map[string]any{
		"channel":  "Email",
		"duration": 10,
		"interval": 30,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestReconcile_SlotNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/slots/99/failed", map[string]any{
		"values": []string{"9000000001"},
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestLabels(t *testing.T) {
	srv := newTestServer(t)

	uploadContacts(t, srv, "WhatsApp", []string{"9000000001"})

	resp := postJSON(t, srv.URL+"/api/labels", map[string]any{
		"channel":  "WhatsApp",
		"identity": "9000000001",
		"label":    "vip",
		"user":     "alice",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/labels", map[string]any{
		"channel":  "WhatsApp",
		"identity": "1234567890",
		"label":    "vip",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t)

	uploadContacts(t, srv, "WhatsApp", []string{"9876543210"})

	resp := postJSON(t, srv.URL+"/api/search", map[string]any{"query": "98765"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result search.Result
	decodeInto(t, resp, &result)
	require.Len(t, result.WhatsApp, 1)
	require.Empty(t, result.Email)
	require.Empty(t, result.Slots)

	resp = postJSON(t, srv.URL+"/api/search", map[string]any{"query": "  "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSlotsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/slots")
	require.NoError(t, err)
	var empty []slot.Slot
	decodeInto(t, resp, &empty)
	require.Empty(t, empty)

	uploadContacts(t, srv, "WhatsApp", []string{"9000000001", "9000000002"})
	postJSON(t, srv.URL+"/api/campaigns/run", map[string]any{
		"channel": "WhatsApp", "required_count": 2,
	}).Body.Close()

	resp, err = http.Get(srv.URL + "/api/slots")
	require.NoError(t, err)
	var listed []slot.Slot
	decodeInto(t, resp, &listed)
	require.Len(t, listed, 1)

	resp, err = http.Get(srv.URL + "/api/slots/" + fmt.Sprint(listed[0].ID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got slot.Slot
	decodeInto(t, resp, &got)
	require.Equal(t, listed[0].Values, got.Values)

	resp, err = http.Get(srv.URL + "/api/slots/404")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/slots/abc")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestDashboardAndAudit(t *testing.T) {
	srv := newTestServer(t)

	uploadContacts(t, srv, "WhatsApp", []string{"9000000001", "9000000002"})
	postJSON(t, srv.URL+"/api/campaigns/run", map[string]any{
		"channel": "WhatsApp", "required_count": 1, "user": "ops",
	}).Body.Close()

	resp, err := http.Get(srv.URL + "/api/dashboard")
	require.NoError(t, err)
	var overview stats.Overview
	decodeInto(t, resp, &overview)
	require.Equal(t, 2, overview.WhatsApp.Total)
	require.Equal(t, 1, overview.WhatsApp.Used)
	require.Equal(t, 1, overview.WhatsApp.Unused)
	require.Equal(t, 1, overview.Slots.Total)
	require.Equal(t, 1, overview.Slots.Today)
	require.Len(t, overview.RecentSlots, 1)

	resp, err = http.Get(srv.URL + "/api/audit")
	require.NoError(t, err)
	var entries []audit.Entry
	decodeInto(t, resp, &entries)
	require.Len(t, entries, 2) // ingest + allocation
	require.Equal(t, audit.ActionAllocate, entries[0].Action)
	require.Equal(t, audit.ActionIngest, entries[1].Action)
}
