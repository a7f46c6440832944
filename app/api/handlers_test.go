package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getsendy/sendy-pipeline/app/database"
)

type mockPackRepo struct {
	packs       map[string]*database.ContentPack
	lastFilter  database.PackFilter
	lastContent *database.ContentPack
}

func newMockPackRepo(packs ...*database.ContentPack) *mockPackRepo {
	repo := &mockPackRepo{packs: make(map[string]*database.ContentPack)}
	for _, pack := range packs {
		repo.packs[pack.ID] = pack
	}
	return repo
}

func (m *mockPackRepo) GetPack(ctx context.Context, id string) (*database.ContentPack, error) {
	if pack, ok := m.packs[id]; ok {
		copied := *pack
		return &copied, nil
	}
	return nil, nil
}

func (m *mockPackRepo) GetPackBySourceID(ctx context.Context, sourceID string) (*database.ContentPack, error) {
	for _, pack := range m.packs {
		if pack.SourceID == sourceID {
			copied := *pack
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockPackRepo) GetPacksByStatus(ctx context.Context, statuses ...database.Status) ([]database.ContentPack, error) {
	return nil, nil
}

func (m *mockPackRepo) ListPacks(ctx context.Context, filter database.PackFilter) ([]database.ContentPack, error) {
	m.lastFilter = filter
	var result []database.ContentPack
	for _, pack := range m.packs {
		if filter.Status != nil && pack.Status != *filter.Status {
			continue
		}
		if filter.Breaking != nil && pack.Breaking != *filter.Breaking {
			continue
		}
		result = append(result, *pack)
	}
	return result, nil
}

func (m *mockPackRepo) GetPackCount(ctx context.Context) (int, error) {
	return len(m.packs), nil
}

func (m *mockPackRepo) InsertPack(ctx context.Context, pack database.NewPack) (string, error) {
	return "new-id", nil
}

func (m *mockPackRepo) UpdatePackEnrichment(ctx context.Context, packID string, enrichment database.Enrichment, status database.Status) error {
	return nil
}

func (m *mockPackRepo) UpdatePackStatus(ctx context.Context, packID string, status database.Status) error {
	if pack, ok := m.packs[packID]; ok {
		pack.Status = status
	}
	return nil
}

func (m *mockPackRepo) UpdatePackContent(ctx context.Context, pack *database.ContentPack) error {
	copied := *pack
	m.lastContent = &copied
	m.packs[pack.ID] = &copied
	return nil
}

type mockDraftRepo struct {
	drafts      []database.CreativeDraft
	attribution *database.Attribution
}

func (m *mockDraftRepo) InsertDraft(ctx context.Context, draft database.NewDraft) error {
	return nil
}

func (m *mockDraftRepo) GetDrafts(ctx context.Context, packID string) ([]database.CreativeDraft, error) {
	return m.drafts, nil
}

func (m *mockDraftRepo) InsertAttributionIfAbsent(ctx context.Context, packID string, attribution database.NewAttribution) error {
	return nil
}

func (m *mockDraftRepo) GetAttribution(ctx context.Context, packID string) (*database.Attribution, error) {
	return m.attribution, nil
}

func (m *mockDraftRepo) GetAssets(ctx context.Context, packID string) ([]database.Asset, error) {
	return nil, nil
}

type mockPipeline struct {
	created int
	calls   int
}

func (m *mockPipeline) RunPipeline(ctx context.Context) (int, error) {
	m.calls++
	return m.created, nil
}

func testPack(id string, status database.Status) *database.ContentPack {
	return &database.ContentPack{
		ID:       id,
		SourceID: "src-" + id,
		Title:    "Trail runner wins alpine stage",
		Summary:  "Unexpected sprint finish at summit.",
		Status:   status,
	}
}

func serveRequest(handler *Handler, apiKey, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	server := NewServer(handler, apiKey)

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func TestGetHealth(t *testing.T) {
	handler := NewHandler(newMockPackRepo(testPack("p1", database.StatusNew)), &mockDraftRepo{}, &mockPipeline{})

	recorder := serveRequest(handler, "", "GET", "/health", "", nil)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	body := decodeBody(t, recorder)
	if body["content_packs"] != float64(1) {
		t.Errorf("Expected content_packs count 1, got %v", body["content_packs"])
	}
}

func TestListPacks_StatusFilter(t *testing.T) {
	repo := newMockPackRepo(
		testPack("p1", database.StatusNew),
		testPack("p2", database.StatusDraftReady),
	)
	handler := NewHandler(repo, &mockDraftRepo{}, &mockPipeline{})

	recorder := serveRequest(handler, "", "GET", "/content-packs?status=DRAFT_READY", "", nil)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	body := decodeBody(t, recorder)
	if body["total"] != float64(1) {
		t.Errorf("Expected 1 filtered pack, got %v", body["total"])
	}
}

func TestListPacks_InvalidStatus(t *testing.T) {
	handler := NewHandler(newMockPackRepo(), &mockDraftRepo{}, &mockPipeline{})

	recorder := serveRequest(handler, "", "GET", "/content-packs?status=BOGUS", "", nil)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown status, got %d", recorder.Code)
	}
}

func TestGetPack_NotFound(t *testing.T) {
	handler := NewHandler(newMockPackRepo(), &mockDraftRepo{}, &mockPipeline{})

	recorder := serveRequest(handler, "", "GET", "/content-packs/missing", "", nil)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown pack, got %d", recorder.Code)
	}
}

func TestUpdatePack_Fields(t *testing.T) {
	repo := newMockPackRepo(testPack("p1", database.StatusDraftReady))
	handler := NewHandler(repo, &mockDraftRepo{}, &mockPipeline{})

	recorder := serveRequest(handler, "", "PATCH", "/content-packs/p1",
		`{"summary": "Edited summary.", "bullets": ["one", "two"]}`, nil)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	if repo.lastContent == nil {
		t.Fatal("Expected UpdatePackContent to be called")
	}
	if repo.lastContent.Summary != "Edited summary." {
		t.Errorf("Expected updated summary, got %q", repo.lastContent.Summary)
	}
	if len(repo.lastContent.Bullets) != 2 {
		t.Errorf("Expected 2 bullets, got %v", repo.lastContent.Bullets)
	}
	// Status was not in the request and must not change.
	if repo.lastContent.Status != database.StatusDraftReady {
		t.Errorf("Expected status unchanged, got %s", repo.lastContent.Status)
	}
}

func TestUpdatePack_InvalidTransition(t *testing.T) {
	repo := newMockPackRepo(testPack("p1", database.StatusNew))
	handler := NewHandler(repo, &mockDraftRepo{}, &mockPipeline{})

	recorder := serveRequest(handler, "", "PATCH", "/content-packs/p1",
		`{"status": "POSTED"}`, nil)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for illegal transition, got %d", recorder.Code)
	}

	body := decodeBody(t, recorder)
	errMsg, _ := body["error"].(string)
	if !strings.Contains(errMsg, "invalid status transition") {
		t.Errorf("Expected transition error message, got %q", errMsg)
	}
	if repo.lastContent != nil {
		t.Error("Pack must not be persisted after a rejected transition")
	}
}

func TestApprovePack(t *testing.T) {
	repo := newMockPackRepo(testPack("p1", database.StatusInReview))
	handler := NewHandler(repo, &mockDraftRepo{}, &mockPipeline{})

	recorder := serveRequest(handler, "", "POST", "/content-packs/p1/approve", "", nil)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if repo.packs["p1"].Status != database.StatusApproved {
		t.Errorf("Expected pack to be APPROVED, got %s", repo.packs["p1"].Status)
	}
}

func TestApprovePack_WrongStatus(t *testing.T) {
	repo := newMockPackRepo(testPack("p1", database.StatusNew))
	handler := NewHandler(repo, &mockDraftRepo{}, &mockPipeline{})

	recorder := serveRequest(handler, "", "POST", "/content-packs/p1/approve", "", nil)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 approving a NEW pack, got %d", recorder.Code)
	}
	if repo.packs["p1"].Status != database.StatusNew {
		t.Errorf("Expected pack to stay NEW, got %s", repo.packs["p1"].Status)
	}
}

func TestRejectPack(t *testing.T) {
	repo := newMockPackRepo(testPack("p1", database.StatusDraftReady))
	handler := NewHandler(repo, &mockDraftRepo{}, &mockPipeline{})

	recorder := serveRequest(handler, "", "POST", "/content-packs/p1/reject",
		`{"reviewer_notes": "Headline is misleading."}`, nil)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if repo.lastContent.Status != database.StatusInReview {
		t.Errorf("Expected rejected pack in IN_REVIEW, got %s", repo.lastContent.Status)
	}
	if repo.lastContent.ReviewerNotes != "Headline is misleading." {
		t.Errorf("Expected reviewer notes persisted, got %q", repo.lastContent.ReviewerNotes)
	}
}

func TestRejectPack_NotesRequired(t *testing.T) {
	repo := newMockPackRepo(testPack("p1", database.StatusDraftReady))
	handler := NewHandler(repo, &mockDraftRepo{}, &mockPipeline{})

	recorder := serveRequest(handler, "", "POST", "/content-packs/p1/reject", `{}`, nil)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without reviewer notes, got %d", recorder.Code)
	}
}

func TestExportPack_UnitsBlock(t *testing.T) {
	repo := newMockPackRepo(testPack("p1", database.StatusApproved))
	drafts := &mockDraftRepo{
		attribution: &database.Attribution{
			PackID:             "p1",
			RequiredCreditLine: "TBD by reviewer",
			SafeToRepost:       "unknown",
		},
	}
	handler := NewHandler(repo, drafts, &mockPipeline{})

	recorder := serveRequest(handler, "", "GET", "/content-packs/p1/export", "", nil)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	body := decodeBody(t, recorder)
	units, ok := body["units"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected units block in export payload")
	}
	if units["distance"] != "km" {
		t.Errorf("Expected distance unit km, got %v", units["distance"])
	}
	if units["ui_toggle_supported"] != "miles" {
		t.Errorf("Expected miles toggle, got %v", units["ui_toggle_supported"])
	}

	handoff, ok := body["handoff_package"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected handoff_package in export payload")
	}
	attribution, ok := handoff["attribution"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected attribution in handoff package")
	}
	if attribution["required_credit_line"] != "TBD by reviewer" {
		t.Errorf("Unexpected credit line: %v", attribution["required_credit_line"])
	}
}

func TestRunPipeline(t *testing.T) {
	runner := &mockPipeline{created: 2}
	handler := NewHandler(newMockPackRepo(), &mockDraftRepo{}, runner)

	recorder := serveRequest(handler, "", "POST", "/pipeline/run", "", nil)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	body := decodeBody(t, recorder)
	if body["created_content_packs"] != float64(2) {
		t.Errorf("Expected 2 created packs reported, got %v", body["created_content_packs"])
	}
	if runner.calls != 1 {
		t.Errorf("Expected 1 pipeline run, got %d", runner.calls)
	}
}

func TestAuthMiddleware(t *testing.T) {
	handler := NewHandler(newMockPackRepo(), &mockDraftRepo{}, &mockPipeline{})

	// Without credentials the protected routes are rejected.
	recorder := serveRequest(handler, "secret-key", "GET", "/content-packs", "", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without API key, got %d", recorder.Code)
	}

	// Health stays public.
	recorder = serveRequest(handler, "secret-key", "GET", "/health", "", nil)
	if recorder.Code != http.StatusOK {
		t.Errorf("Expected 200 for public health endpoint, got %d", recorder.Code)
	}

	recorder = serveRequest(handler, "secret-key", "GET", "/content-packs", "",
		map[string]string{"X-API-Key": "secret-key"})
	if recorder.Code != http.StatusOK {
		t.Errorf("Expected 200 with X-API-Key header, got %d", recorder.Code)
	}

	recorder = serveRequest(handler, "secret-key", "GET", "/content-packs", "",
		map[string]string{"Authorization": "Bearer secret-key"})
	if recorder.Code != http.StatusOK {
		t.Errorf("Expected 200 with bearer token, got %d", recorder.Code)
	}

	recorder = serveRequest(handler, "secret-key", "GET", "/content-packs", "",
		map[string]string{"X-API-Key": "wrong-key"})
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong API key, got %d", recorder.Code)
	}
}
