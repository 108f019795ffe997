package server

import (
	"context"
	"errors"
	"evcdr/core"
	"evcdr/internal"
	"evcdr/internal/config"
	"evcdr/metrics"
	"fmt"
	"github.com/julienschmidt/httprouter"
	"net"
	"net/http"
	"time"
)

const (
	buildEndpoint       = "/api/cdrs"
	buildStoredEndpoint = "/api/sessions/:id/cdr"
	cdrEndpoint         = "/api/cdrs/:id"
	logEndpoint         = "/api/log"
	maxBodyBytes        = 1 << 20
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	service    *core.Service
	logger     internal.LogHandler
}

func NewServer(conf *config.Config, service *core.Service, logger internal.LogHandler) *Server {
	server := Server{
		conf:    conf,
		service: service,
		logger:  logger,
	}
	// register itself as a router for httpServer handler
	router := httprouter.New()
	server.Register(router)
	server.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &server
}

func (s *Server) Register(router *httprouter.Router) {
	router.POST(buildEndpoint, s.handleBuild)
	router.POST(buildStoredEndpoint, s.handleBuildStored)
	router.GET(cdrEndpoint, s.handleGetCdr)
	router.GET(logEndpoint, s.handleReadLog)
	metrics.Register(router)
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	if s.conf == nil {
		return errors.New("configuration not loaded")
	}
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	s.logger.Debug(fmt.Sprintf("starting server on %s", serverAddress))
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}
	if s.conf.Listen.TLS {
		s.logger.Debug("starting https TLS server")
		err = s.httpServer.ServeTLS(listener, s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
	} else {
		s.logger.Debug("starting http server")
		err = s.httpServer.Serve(listener)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
