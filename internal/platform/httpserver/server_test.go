package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	grantsservice "ensgrants/contexts/funding/grants-service"
	"ensgrants/contexts/funding/grants-service/domain/entities"
	grantserrors "ensgrants/contexts/funding/grants-service/domain/errors"
	"ensgrants/contexts/funding/grants-service/ports"
)

const testSigner = "0x2222222222222222222222222222222222222222"

type stubVerifier struct {
	signer string
	err    error
}

func (s stubVerifier) RecoverSigner(context.Context, ports.SignedPayload) (string, error) {
	return s.signer, s.err
}

type stubPolicy struct {
	admin bool
}

func (p stubPolicy) AuthorizeRoundCreation(context.Context, string) error {
	if !p.admin {
		return grantserrors.ErrUnauthorized
	}
	return nil
}

func (p stubPolicy) CanCreateGrant(signer string, declared string) bool {
	return strings.EqualFold(signer, declared)
}

func newTestServer(verifier stubVerifier, policy stubPolicy) *Server {
	module := grantsservice.NewInMemoryModule(
		[]entities.Round{{RoundID: 1, Title: "Round 1", AllocationTokenAmount: big.NewInt(1)}},
		verifier,
		policy,
		entities.SupersessionScopeRound,
		nil,
	)
	return New(module, Options{EnableSwagger: true}, nil)
}

func serve(server *Server, method string, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func grantBody(address string, roundID string) string {
	return fmt.Sprintf(`{"method":"create_grant","grantData":{"address":%q,"roundId":%s,"title":"t","description":"d","fullText":"f"},"signature":"0xsig"}`,
		address, roundID)
}

func roundBody(address string) string {
	return fmt.Sprintf(`{"method":"create_round","roundData":{"address":%q,"title":"r","description":"d",`+
		`"allocation_token_address":"0xc18360217d8f7ab5e7c516566761ea12ce7f9d72","allocation_token_amount":"1000",`+
		`"max_winner_count":3,"proposal_start":1,"proposal_end":2,"voting_start":3,"voting_end":4},"signature":"0xsig"}`, address)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %q", rr.Body.String())
	}
	return body
}

func assertCORS(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	for name, value := range corsHeaders {
		if got := rr.Header().Get(name); got != value {
			t.Fatalf("expected %s=%q, got %q", name, value, got)
		}
	}
}

func TestPreflightReturnsOK(t *testing.T) {
	server := newTestServer(stubVerifier{signer: testSigner}, stubPolicy{})
	rr := serve(server, http.MethodOptions, "/rpc", "")

	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("expected 200 ok, got %d body=%q", rr.Code, rr.Body.String())
	}
	assertCORS(t, rr)
}

func TestCreateGrantReturnsCreated(t *testing.T) {
	server := newTestServer(stubVerifier{signer: testSigner}, stubPolicy{})
	rr := serve(server, http.MethodPost, "/rpc", grantBody(testSigner, "1"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	assertCORS(t, rr)

	var resp struct {
		Data []struct {
			ID       int64  `json:"id"`
			Proposer string `json:"proposer"`
		} `json:"data"`
		Superseded []int64 `json:"superseded"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Proposer != testSigner {
		t.Fatalf("unexpected response: %s", rr.Body.String())
	}
}

func TestRootPathDispatchesLikeRPC(t *testing.T) {
	server := newTestServer(stubVerifier{signer: testSigner}, stubPolicy{admin: true})
	rr := serve(server, http.MethodPost, "/", roundBody(testSigner))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestErrorStatuses(t *testing.T) {
	cases := []struct {
		name     string
		verifier stubVerifier
		policy   stubPolicy
		body     string
		status   int
		code     string
	}{
		{"unknown method", stubVerifier{signer: testSigner}, stubPolicy{}, `{"method":"drop_tables"}`, http.StatusNotFound, "not_found"},
		{"malformed body", stubVerifier{signer: testSigner}, stubPolicy{}, `{"method":`, http.StatusBadRequest, "malformed_request"},
		{"round not found", stubVerifier{signer: testSigner}, stubPolicy{}, grantBody(testSigner, "42"), http.StatusBadRequest, "round_not_found"},
		{"numeric overflow", stubVerifier{signer: testSigner}, stubPolicy{}, grantBody(testSigner, `"0xffffffffffffffffff"`), http.StatusBadRequest, "numeric_overflow"},
		{"schema mismatch", stubVerifier{err: grantserrors.ErrSchemaVersionMismatch}, stubPolicy{}, grantBody(testSigner, "1"), http.StatusBadRequest, "schema_version_mismatch"},
		{"signer mismatch", stubVerifier{signer: testSigner}, stubPolicy{}, grantBody("0x3333333333333333333333333333333333333333", "1"), http.StatusUnauthorized, "invalid_signature"},
		{"non admin round", stubVerifier{signer: testSigner}, stubPolicy{}, roundBody(testSigner), http.StatusUnauthorized, "unauthorized"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(tc.verifier, tc.policy)
			rr := serve(server, http.MethodPost, "/rpc", tc.body)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d body=%s", tc.status, rr.Code, rr.Body.String())
			}
			if body := decodeError(t, rr); body["code"] != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, body["code"])
			}
			assertCORS(t, rr)
		})
	}
}

func TestStoreFailurePassesMessageThrough(t *testing.T) {
	rr := httptest.NewRecorder()
	status := writeGrantsDomainError(rr, grantserrors.NewStoreError("submit_grant", errors.New("deadlock detected")))

	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	body := decodeError(t, rr)
	if body["code"] != "store_failure" || body["message"] != "deadlock detected" {
		t.Fatalf("unexpected body: %v", body)
	}

	rr = httptest.NewRecorder()
	writeGrantsDomainError(rr, grantserrors.NewStoreError("submit_grant", grantserrors.ErrGrantConflict))
	if body := decodeError(t, rr); body["code"] != "store_failure" {
		t.Fatalf("expected grant conflict to surface as store failure, got %v", body)
	}
}

func TestUnroutedRequestsGetJSON404(t *testing.T) {
	server := newTestServer(stubVerifier{signer: testSigner}, stubPolicy{})
	rr := serve(server, http.MethodGet, "/rpc", "")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	decodeError(t, rr)
	assertCORS(t, rr)
}

func TestOversizedBodyIsBadRequest(t *testing.T) {
	module := grantsservice.NewInMemoryModule(nil, stubVerifier{signer: testSigner}, stubPolicy{}, entities.SupersessionScopeRound, nil)
	server := New(module, Options{MaxBodyBytes: 16}, nil)
	rr := serve(server, http.MethodPost, "/rpc", grantBody(testSigner, "1"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	server := newTestServer(stubVerifier{signer: testSigner}, stubPolicy{})
	serve(server, http.MethodPost, "/rpc", grantBody(testSigner, "1"))

	if rr := serve(server, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", rr.Code)
	}

	rr := serve(server, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `grants_rpc_requests_total{code="201",method="create_grant"} 1`) {
		t.Fatalf("expected create_grant counter in metrics output")
	}

	unhealthy := New(grantsservice.NewInMemoryModule(nil, stubVerifier{}, stubPolicy{}, "", nil), Options{
		Health: func(context.Context) error { return errors.New("db down") },
	}, nil)
	if rr := serve(unhealthy, http.MethodGet, "/healthz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
