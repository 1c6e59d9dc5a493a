package api

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/allsmog/zkauth-go/pkg/service"
	"github.com/allsmog/zkauth-go/pkg/store"
	"github.com/allsmog/zkauth-go/pkg/zkauth"
	"github.com/allsmog/zkauth-go/pkg/zkauth/discretelog"
)

func newTestServer(t *testing.T) (*Server, *discretelog.Flavor) {
	t.Helper()

	flavor := discretelog.New(&discretelog.Parameters{
		P: big.NewInt(23),
		Q: big.NewInt(11),
		G: big.NewInt(4),
		H: big.NewInt(9),
	})
	st := store.NewMemoryStore(time.Minute, time.Hour)
	t.Cleanup(func() { st.Close() })

	svc := service.New(flavor, st, flavor.Configuration())
	return New(svc), flavor
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestGetConfiguration(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/v1/configuration", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var cfg struct {
		Flavor            string `json:"flavor"`
		DiscreteLogarithm struct {
			P string `json:"p"`
		} `json:"discrete_logarithm"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Flavor != "discrete_logarithm" || cfg.DiscreteLogarithm.P != "23" {
		t.Fatalf("unexpected configuration body: %s", rec.Body.String())
	}
}

func TestRegisterChallengeVerifyRoundTrip(t *testing.T) {
	s, flavor := newTestServer(t)

	x := flavor.DeriveSecret("abc")
	y1, y2, err := flavor.PublicCommitments(x)
	if err != nil {
		t.Fatalf("PublicCommitments: %v", err)
	}

	rec := doJSON(t, s, http.MethodPost, "/v1/register", registerRequest{
		User: "alice", Y1: y1.String(), Y2: y2.String(),
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	k, err := flavor.GenerateScalar()
	if err != nil {
		t.Fatalf("GenerateScalar: %v", err)
	}
	r1, r2, err := flavor.Ephemeral(k)
	if err != nil {
		t.Fatalf("Ephemeral: %v", err)
	}

	rec = doJSON(t, s, http.MethodPost, "/v1/authentication/challenge", challengeRequest{
		User: "alice", R1: r1.String(), R2: r2.String(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var chResp challengeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &chResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if chResp.AuthID == "" {
		t.Fatalf("expected non-empty auth_id")
	}

	c, err := zkauth.ParseScalar(chResp.C)
	if err != nil {
		t.Fatalf("parse challenge scalar: %v", err)
	}
	sResp, err := flavor.Respond(x, k, c)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	rec = doJSON(t, s, http.MethodPost, "/v1/authentication/answer", verifyRequest{
		AuthID: chResp.AuthID, S: sResp.String(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var vResp verifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &vResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if vResp.SessionID == "" {
		t.Fatalf("expected non-empty session_id")
	}
}

func TestRegisterMalformedElementIsInvalidArgument(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/register", registerRequest{
		User: "alice", Y1: "xyz", Y2: "9",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestChallengeUnknownUserIsNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/authentication/challenge", challengeRequest{
		User: "ghost", R1: "1", R2: "1",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestVerifyUnknownAuthIDIsNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/authentication/answer", verifyRequest{
		AuthID: "does-not-exist", S: "1",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}
