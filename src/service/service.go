package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
)

// StatsSource is anything that can summarise itself as a flat string map. The
// benchmarker and the reference ledger both are.
type StatsSource interface {
	GetStats() map[string]string
}

// Service exposes the stats of a StatsSource and, optionally, a metrics
// handler over HTTP.
type Service struct {
	sync.Mutex

	bindAddress string
	source      StatsSource
	mux         *http.ServeMux
	server      *http.Server
	logger      *logrus.Entry
}

// NewService creates a Service. metricsHandler is mounted on /metrics when it
// is not nil.
func NewService(bindAddress string, source StatsSource, metricsHandler http.Handler, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		source:      source,
		mux:         http.NewServeMux(),
		logger:      logger,
	}

	service.registerHandlers(metricsHandler)

	return &service
}

func (s *Service) registerHandlers(metricsHandler http.Handler) {
	s.logger.Debug("Registering API handlers")
	s.mux.HandleFunc("/stats", s.makeHandler(s.GetStats))
	if metricsHandler != nil {
		s.mux.Handle("/metrics", metricsHandler)
	}
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Handler returns the handler serving every route.
func (s *Service) Handler() http.Handler {
	return s.mux
}

// Serve listens on the bind address. This is a blocking call that returns
// after Close.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving API")

	s.Lock()
	s.server = &http.Server{
		Addr:    s.bindAddress,
		Handler: s.mux,
	}
	server := s.server
	s.Unlock()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error(err)
	}
}

// Close stops a running Serve.
func (s *Service) Close() error {
	s.Lock()
	defer s.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

// GetStats ...
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := s.source.GetStats()

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(stats)
}
