// Package api serves the practice engine over HTTP. Answers are checked
// server side; clients only ever see the choices of a question.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abhisek/mathlingo/internal/engine"
	"github.com/abhisek/mathlingo/internal/logger"
	"github.com/abhisek/mathlingo/internal/session"
)

// LearnerHeader identifies the learner of a request.
const LearnerHeader = "X-Learner-ID"

const learnerKey = "learner_id"

// Option configures a Server.
type Option func(*Server)

// WithPendingCapacity bounds the number of served, unanswered questions.
func WithPendingCapacity(n int) Option {
	return func(s *Server) { s.pending = newPending(n) }
}

// WithGinMode sets gin's mode (debug, release or test).
func WithGinMode(mode string) Option {
	return func(s *Server) { s.ginMode = mode }
}

// WithCORS allows browser clients from origins.
func WithCORS(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// Server is the HTTP front of an engine.
type Server struct {
	engine      *engine.Engine
	pending     *pending
	ginMode     string
	corsOrigins []string
	log         *logger.Logger
}

func New(e *engine.Engine, log *logger.Logger, opts ...Option) *Server {
	s := &Server{
		engine:  e,
		pending: newPending(DefaultPendingCapacity),
		ginMode: gin.ReleaseMode,
		log:     logger.OrNop(log).With("component", "api"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	gin.SetMode(s.ginMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if len(s.corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.corsOrigins,
			AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", LearnerHeader},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.GET("/healthz", s.healthz)

	v1 := r.Group("/api/v1")
	v1.Use(requireLearner())
	v1.GET("/chapters", s.listChapters)
	v1.GET("/chapters/:id/batch", s.nextBatch)
	v1.GET("/review", s.reviewBatch)
	v1.POST("/answers", s.submitAnswer)
	v1.GET("/progress", s.getProgress)
	v1.DELETE("/progress", s.resetProgress)
	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

func requireLearner() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(LearnerHeader)
		if id == "" {
			respondError(c, http.StatusBadRequest, "missing_learner", errors.New("missing "+LearnerHeader+" header"))
			return
		}
		c.Set(learnerKey, id)
		c.Next()
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status == http.StatusNoContent {
		c.Status(status)
		return
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "error", err)
	}
	respondError(c, status, code, err)
}

// GET /healthz
func (s *Server) healthz(c *gin.Context) {
	select {
	case <-s.engine.Catalog().Ready():
		c.String(http.StatusOK, "ok")
	default:
		c.String(http.StatusServiceUnavailable, "loading")
	}
}

// GET /api/v1/chapters
func (s *Server) listChapters(c *gin.Context) {
	st, err := s.engine.Chapters(c.Request.Context(), c.GetString(learnerKey))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func countParam(c *gin.Context) (int, bool) {
	raw := c.Query("count")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respondError(c, http.StatusBadRequest, "bad_count", errors.New("count must be a non-negative integer"))
		return 0, false
	}
	return n, true
}

// GET /api/v1/chapters/:id/batch?count=N
func (s *Server) nextBatch(c *gin.Context) {
	count, ok := countParam(c)
	if !ok {
		return
	}
	learner := c.GetString(learnerKey)
	b, err := s.engine.NextBatch(c.Request.Context(), learner, c.Param("id"), count)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.remember(learner, b, false)
	c.JSON(http.StatusOK, viewOf(b))
}

// GET /api/v1/review?chapter=all|<id>&count=N
func (s *Server) reviewBatch(c *gin.Context) {
	count, ok := countParam(c)
	if !ok {
		return
	}
	learner := c.GetString(learnerKey)
	b, err := s.engine.ReviewBatch(c.Request.Context(), learner, c.DefaultQuery("chapter", session.ScopeAll), count)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.remember(learner, b, true)
	c.JSON(http.StatusOK, viewOf(b))
}

func (s *Server) remember(learner string, b *session.Batch, review bool) {
	for _, it := range b.Items {
		s.pending.put(pendingEntry{learnerID: learner, question: it.Question, category: it.Category, review: review})
	}
}

// AnswerRequest is the body of POST /api/v1/answers.
type AnswerRequest struct {
	InstanceID string `json:"instanceId" binding:"required"`
	Response   string `json:"response"`
	Review     bool   `json:"review"`
}

// POST /api/v1/answers
func (s *Server) submitAnswer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	learner := c.GetString(learnerKey)
	entry, ok := s.pending.take(req.InstanceID, learner)
	if !ok {
		s.fail(c, engine.ErrUnknownQuestion)
		return
	}
	mode := engine.ModePractice
	if entry.review || req.Review {
		mode = engine.ModeReview
	}
	fb, err := s.engine.Submit(c.Request.Context(), learner, engine.Submission{
		Question: entry.question,
		Response: req.Response,
		Mode:     mode,
		Category: entry.category,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fb)
}

// GET /api/v1/progress
func (s *Server) getProgress(c *gin.Context) {
	up, err := s.engine.Progress(c.Request.Context(), c.GetString(learnerKey))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, up)
}

// DELETE /api/v1/progress
func (s *Server) resetProgress(c *gin.Context) {
	if err := s.engine.Reset(c.Request.Context(), c.GetString(learnerKey)); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
