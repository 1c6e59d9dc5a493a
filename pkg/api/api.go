// Package api is the wire surface: four HTTP+JSON operations translating
// pkg/service's contracts to and from decimal-string wire values. Uses
// JSON-over-HTTP via chi rather than a generated gRPC service.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/allsmog/zkauth-go/pkg/service"
	"github.com/allsmog/zkauth-go/pkg/zkauth"
)

// Server exposes a Service over HTTP. No business logic lives here: every
// handler decodes its request, delegates to the Service, and encodes the
// result.
type Server struct {
	svc    *service.Service
	router chi.Router
}

// New builds a Server routing the four authentication operations to svc.
func New(svc *service.Service) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	s := &Server{svc: svc, router: r}

	r.Get("/v1/configuration", s.handleGetConfiguration)
	r.Post("/v1/register", s.handleRegister)
	r.Post("/v1/authentication/challenge", s.handleCreateChallenge)
	r.Post("/v1/authentication/answer", s.handleVerifyAuthentication)
	r.Get("/health", s.handleHealth)

	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.GetConfiguration())
}

type registerRequest struct {
	User string `json:"user"`
	Y1   string `json:"y1"`
	Y2   string `json:"y2"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", zkauth.ErrInvalidEncoding, err))
		return
	}

	y1, err := zkauth.ParseElement(req.Y1)
	if err != nil {
		writeError(w, err)
		return
	}
	y2, err := zkauth.ParseElement(req.Y2)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.svc.Register(req.User, y1, y2); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type challengeRequest struct {
	User string `json:"user"`
	R1   string `json:"r1"`
	R2   string `json:"r2"`
}

type challengeResponse struct {
	AuthID string `json:"auth_id"`
	C      string `json:"c"`
}

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", zkauth.ErrInvalidEncoding, err))
		return
	}

	r1, err := zkauth.ParseElement(req.R1)
	if err != nil {
		writeError(w, err)
		return
	}
	r2, err := zkauth.ParseElement(req.R2)
	if err != nil {
		writeError(w, err)
		return
	}

	authID, c, err := s.svc.CreateAuthenticationChallenge(req.User, r1, r2)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, challengeResponse{AuthID: authID, C: c.String()})
}

type verifyRequest struct {
	AuthID string `json:"auth_id"`
	S      string `json:"s"`
}

type verifyResponse struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleVerifyAuthentication(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", zkauth.ErrInvalidEncoding, err))
		return
	}

	resp, err := zkauth.ParseScalar(req.S)
	if err != nil {
		writeError(w, err)
		return
	}

	sessionID, err := s.svc.VerifyAuthentication(req.AuthID, resp)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{SessionID: sessionID})
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeError classifies err into the status-code taxonomy and writes the
// matching HTTP status and JSON error body. Unrecognized errors map to
// Internal/500. Panics do not pass through here: middleware.Recoverer
// answers them with a bare 500 and no JSON error body.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)

	var body errorBody
	body.Error.Code = code
	body.Error.Message = err.Error()

	writeJSON(w, status, body)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, zkauth.ErrInvalidEncoding), errors.Is(err, zkauth.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, zkauth.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, zkauth.ErrUnauthenticated):
		return http.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, zkauth.ErrFailedPrecondition):
		return http.StatusPreconditionFailed, "FAILED_PRECONDITION"
	case errors.Is(err, zkauth.ErrParameterGeneration), errors.Is(err, zkauth.ErrInternal):
		return http.StatusInternalServerError, "INTERNAL"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
