package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const contentTypeJSON = "application/json"

// Caller executes a JSON-RPC call
type Caller interface {
	Call(ctx context.Context, method string, params ...json.RawMessage) (json.RawMessage, error)
}

// Server exposes a Caller as a JSON-RPC 2.0 HTTP endpoint
type Server struct {
	logger *log.Logger
	cfg    Config
	caller Caller
	engine *gin.Engine
	srv    *http.Server
}

// New creates the server and registers its routes
func New(logger *log.Logger, cfg Config, caller Caller) *Server {
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	engine.Use(cors.New(corsCfg))

	s := &Server{
		logger: logger,
		cfg:    cfg,
		caller: caller,
		engine: engine,
	}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadTimeout.Duration,
		ReadTimeout:       cfg.ReadTimeout.Duration,
		WriteTimeout:      cfg.WriteTimeout.Duration,
	}
	engine.POST("/", s.handleRPC)
	engine.GET("/health", s.handleHealth)
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens and serves until Stop is called
func (s *Server) Start() error {
	s.logger.Infof("JSON-RPC proxy listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRPC(c *gin.Context) {
	start := time.Now()
	body, err := c.GetRawData()
	if err != nil {
		s.write(c, newError(nil, codeParseError, "error reading body"))
		return
	}
	body = bytes.TrimSpace(body)

	if len(body) > 0 && body[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(body, &batch); err != nil {
			s.write(c, newError(nil, codeParseError, "parse error"))
			return
		}
		if len(batch) == 0 {
			s.write(c, newError(nil, codeInvalidRequest, "empty batch"))
			return
		}
		if s.cfg.MaxBatchSize > 0 && len(batch) > s.cfg.MaxBatchSize {
			s.write(c, newError(nil, codeInvalidRequest,
				fmt.Sprintf("batch of %d calls exceeds the limit of %d", len(batch), s.cfg.MaxBatchSize)))
			return
		}
		responses := make([]response, len(batch))
		for i, raw := range batch {
			responses[i] = s.handleSingle(c.Request.Context(), raw)
		}
		s.write(c, responses)
		s.logger.Debugf("served batch of %d calls in %s", len(batch), time.Since(start))
		return
	}

	s.write(c, s.handleSingle(c.Request.Context(), body))
}

func (s *Server) handleSingle(ctx context.Context, raw json.RawMessage) response {
	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		return newError(nil, codeParseError, "parse error")
	}
	if req.Method == "" {
		return newError(req.ID, codeInvalidRequest, "missing method")
	}
	params, err := decodeParams(req.Params)
	if err != nil {
		return newError(req.ID, codeInvalidParams, err.Error())
	}

	res, err := s.caller.Call(ctx, req.Method, params...)
	if err != nil {
		s.logger.Debugf("call %s failed: %v", req.Method, err)
		return fromError(req.ID, err)
	}
	return newResult(req.ID, res)
}

func (s *Server) write(c *gin.Context, payload interface{}) {
	b, err := json.Marshal(payload)
	if err != nil {
		s.logger.Errorf("error encoding response: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, contentTypeJSON, b)
}
