package server

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	svc "coffee-doctor-core/svc"
	svcmodels "coffee-doctor-core/svc/models"
)

// Server exposes the doctor service as a JSON HTTP API. This is the machine
// boundary a conversational front-end talks to; turn-taking and rendering
// stay on the front-end side.
type Server struct {
	dsvc *svc.DoctorService
}

func NewServer(dsvc *svc.DoctorService) *Server {
	return &Server{dsvc: dsvc}
}

// Handler returns the routed handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/diagnosis", s.handleStartDiagnosis)
	mux.HandleFunc("POST /api/v1/diagnosis/{id}/answer", s.handleSubmitAnswer)
	mux.HandleFunc("GET /api/v1/diagnosis/{id}", s.handleGetSession)
	mux.HandleFunc("GET /api/v1/diagnosis", s.handleListSessions)
	return mux
}

func (s *Server) handleStartDiagnosis(w http.ResponseWriter, r *http.Request) {
	var input svcmodels.StartDiagnosisInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	log.Printf("StartDiagnosis called with input: %+v", input)

	output, err := s.dsvc.StartDiagnosis(&input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, output)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var input svcmodels.SubmitAnswerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	input.SessionID = r.PathValue("id")
	log.Printf("SubmitAnswer called for session %s", input.SessionID)

	output, err := s.dsvc.SubmitAnswer(&input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	input := svcmodels.GetSessionInput{
		UserID:    r.URL.Query().Get("user_id"),
		SessionID: r.PathValue("id"),
	}
	output, err := s.dsvc.GetSession(&input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	input := svcmodels.ListSessionsInput{
		UserID: r.URL.Query().Get("user_id"),
	}
	output, err := s.dsvc.ListSessions(&input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, svc.ErrSessionComplete):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, svc.ErrCollaborator):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// RunServer starts the HTTP server. An empty port picks a dynamic one,
// which the tests rely on. The returned WaitGroup is done once the server
// stops serving.
func RunServer(dsvc *svc.DoctorService, port string) (*http.Server, *sync.WaitGroup, string) {
	s := NewServer(dsvc)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:8081", "http://localhost:3001", "http://localhost:3000", "http://localhost"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Origin",
		},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
	})

	var listener net.Listener
	var err error

	if port == "" {
		listener, err = net.Listen("tcp", ":0")
		if err != nil {
			log.Fatalf("Failed to listen: %v", err)
		}
		port = strconv.Itoa(listener.Addr().(*net.TCPAddr).Port)
	} else {
		listener, err = net.Listen("tcp", ":"+port)
		if err != nil {
			log.Fatalf("Failed to listen on port %s: %v", port, err)
		}
	}

	srv := &http.Server{
		Handler: h2c.NewHandler(corsHandler.Handler(s.Handler()), &http2.Server{}),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Coffee Doctor server is running on port %s", port)
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	return srv, &wg, port
}
