package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/beamdec/internal/beam"
	"github.com/samcharles93/beamdec/internal/toy"
)

func baseConfig() beam.Config {
	return beam.Config{
		BeamSize:         2,
		MaxSteps:         12,
		MinSteps:         2,
		StartToken:       0,
		StopToken:        1,
		UnknownThreshold: 4,
		Mode:             beam.ModePlain,
		StartSentenceIDs: beam.NewIDSet(0, 14),
		StopwordIDs:      beam.NewIDSet(4, 9),
		PronounIDs:       beam.NewIDSet(17),
	}
}

func newTestEcho() *echo.Echo {
	cfg := baseConfig()
	// Fanout must cover the largest beam size the tests request.
	model := toy.New(cfg, 3, 11)
	model.Fanout = 8
	renderer := toy.Renderer{Threshold: cfg.UnknownThreshold, StopToken: cfg.StopToken}
	provider := NewStaticProvider(model, renderer, cfg)
	server := NewServer(NewDecodeStore(), NewDecodeService(provider))
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateDecodeBasic(t *testing.T) {
	t.Parallel()

	e := newTestEcho()
	rec := doJSON(t, e, http.MethodPost, "/v1/decodes", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp DecodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Object != "decode" {
		t.Fatalf("unexpected object: %q", resp.Object)
	}
	if !strings.HasPrefix(resp.ID, "dec_") {
		t.Fatalf("unexpected id format: %q", resp.ID)
	}
	if len(resp.Tokens) == 0 || resp.Tokens[0] != 0 {
		t.Fatalf("tokens missing start token: %v", resp.Tokens)
	}
	if resp.Tokens[len(resp.Tokens)-1] != 1 {
		t.Fatalf("tokens missing stop token: %v", resp.Tokens)
	}
	if resp.Text == "" {
		t.Fatal("expected rendered text")
	}
	if resp.BeamSize != 2 || resp.Mode != "plain" {
		t.Fatalf("defaults not applied: beam=%d mode=%q", resp.BeamSize, resp.Mode)
	}
}

func TestCreateDecodeOverrides(t *testing.T) {
	t.Parallel()

	e := newTestEcho()
	rec := doJSON(t, e, http.MethodPost, "/v1/decodes", `{"mode":"smart"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("smart decode: got %d body=%s", rec.Code, rec.Body.String())
	}
	var smart DecodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &smart); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if smart.Mode != "smart" {
		t.Fatalf("mode override lost: %q", smart.Mode)
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/decodes", `{"beam_size":4,"max_steps":6}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp DecodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.BeamSize != 4 {
		t.Fatalf("beam size override lost: %d", resp.BeamSize)
	}
	if resp.Steps > 6 {
		t.Fatalf("max steps override lost: %d steps", resp.Steps)
	}
}

func TestCreateDecodeValidation(t *testing.T) {
	t.Parallel()

	e := newTestEcho()

	rec := doJSON(t, e, http.MethodPost, "/v1/decodes", `{"beam_size":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "beam_size") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/decodes", `{"mode":"greedy"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/decodes", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestDecodeLifecycle(t *testing.T) {
	t.Parallel()

	e := newTestEcho()
	createRec := doJSON(t, e, http.MethodPost, "/v1/decodes", `{}`)
	if createRec.Code != http.StatusOK {
		t.Fatalf("create: got %d body=%s", createRec.Code, createRec.Body.String())
	}
	var created DecodeResponse
	if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	getRec := doJSON(t, e, http.MethodGet, "/v1/decodes/"+created.ID, "")
	if getRec.Code != http.StatusOK {
		t.Fatalf("get: got %d body=%s", getRec.Code, getRec.Body.String())
	}

	listRec := doJSON(t, e, http.MethodGet, "/v1/decodes", "")
	if listRec.Code != http.StatusOK {
		t.Fatalf("list: got %d", listRec.Code)
	}
	var list DecodeListResponse
	if err := json.Unmarshal(listRec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	delRec := doJSON(t, e, http.MethodDelete, "/v1/decodes/"+created.ID, "")
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete: got %d body=%s", delRec.Code, delRec.Body.String())
	}
	if !strings.Contains(delRec.Body.String(), `"deleted":true`) {
		t.Fatalf("delete response missing deleted=true: %s", delRec.Body.String())
	}

	if rec := doJSON(t, e, http.MethodGet, "/v1/decodes/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestDeterministicDecodes(t *testing.T) {
	t.Parallel()

	e := newTestEcho()
	first := doJSON(t, e, http.MethodPost, "/v1/decodes", `{}`)
	second := doJSON(t, e, http.MethodPost, "/v1/decodes", `{}`)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("decode failed: %d %d", first.Code, second.Code)
	}
	var a, b DecodeResponse
	if err := json.Unmarshal(first.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(second.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Text != b.Text || a.Score != b.Score {
		t.Fatalf("decodes diverged: %q/%v vs %q/%v", a.Text, a.Score, b.Text, b.Score)
	}
}
