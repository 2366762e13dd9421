package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rfidattend/internal/attendance"
	"rfidattend/internal/auth"
	"rfidattend/internal/config"
	"rfidattend/internal/httpmiddleware"
	"rfidattend/internal/metrics"
	"rfidattend/internal/queue"
	"rfidattend/internal/reader"
	"rfidattend/internal/registry"
	"rfidattend/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run(cfg config.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := registry.New()
	if cfg.Env == "dev" {
		seedDevUsers(reg)
	}

	m := metrics.New()
	engine := attendance.NewService(reg, cfg.HistorySize)

	monitor := reader.NewMonitor(cfg.HeartbeatTimeout)
	monitor.OnChange(m.ReaderStatus)
	go monitor.Run(ctx, cfg.HeartbeatSweep)

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	}
	go drainQueue(ctx, q, engine, monitor, m)

	recordScan := func(evt attendance.ScanEvent) attendance.Record {
		rec := engine.SubmitScan(evt)
		m.ScanProcessed(string(rec.Outcome))
		m.CurrentlyInside.Set(float64(engine.Summary("").CurrentlyInside))
		return rec
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := cfg.QueueBackend == "memory" || redisClient.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy})
	})

	r.POST("/v1/readers/register", func(c *gin.Context) {
		var req struct {
			ReaderID string `json:"reader_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		tokens, err := auth.Issue(req.ReaderID, auth.RoleReader, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	r.POST("/v1/admin/login", func(c *gin.Context) {
		var req struct {
			APIKey string `json:"api_key" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if cfg.AdminAPIKey == "" || req.APIKey != cfg.AdminAPIKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		tokens, err := auth.Issue("admin", auth.RoleAdmin, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token": tokens.AccessToken,
			"expires_at":   tokens.AccessExp.Unix(),
		})
	})

	authGroup := r.Group("/v1", auth.Bearer(cfg.JWTSigningKey, cfg.JWTIssuer))

	authGroup.POST("/scans", func(c *gin.Context) {
		var req struct {
			TagID      string    `json:"tag_id" binding:"required"`
			ReaderID   string    `json:"reader_id"`
			Timestamp  time.Time `json:"timestamp"`
			ActionHint string    `json:"action_hint"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if claims, ok := claimsFrom(c); ok && claims.Role == auth.RoleReader &&
			req.ReaderID != "" && claims.Subject != req.ReaderID {
			c.JSON(http.StatusForbidden, gin.H{"error": "reader mismatch"})
			return
		}
		rec := recordScan(attendance.ScanEvent{
			TagID:      req.TagID,
			ReaderID:   req.ReaderID,
			Timestamp:  req.Timestamp,
			ActionHint: req.ActionHint,
		})
		c.JSON(http.StatusOK, gin.H{
			"outcome": rec.Outcome,
			"tag_id":  rec.TagID,
			"name":    rec.Name,
			"at":      rec.At,
		})
	})

	authGroup.POST("/heartbeats", func(c *gin.Context) {
		var req struct {
			ReaderID  string    `json:"reader_id" binding:"required"`
			Timestamp time.Time `json:"timestamp"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if claims, ok := claimsFrom(c); ok && claims.Role == auth.RoleReader && claims.Subject != req.ReaderID {
			c.JSON(http.StatusForbidden, gin.H{"error": "reader mismatch"})
			return
		}
		monitor.Heartbeat(req.ReaderID, req.Timestamp)
		c.Status(http.StatusNoContent)
	})

	authGroup.GET("/sessions", func(c *gin.Context) {
		sessions := engine.Sessions(c.Query("date"), c.Query("tag"), c.Query("q"))
		c.JSON(http.StatusOK, gin.H{"sessions": sessionViews(sessions)})
	})

	authGroup.GET("/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, engine.Summary(c.Query("date")))
	})

	authGroup.GET("/activity", func(c *gin.Context) {
		limit := 20
		if v := c.Query("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				limit = parsed
			}
		}
		c.JSON(http.StatusOK, gin.H{"activity": engine.RecentActivity(limit)})
	})

	authGroup.GET("/readers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"readers": monitor.Snapshot()})
	})

	authGroup.GET("/readers/:id/health", func(c *gin.Context) {
		h, ok := monitor.Health(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown reader"})
			return
		}
		c.JSON(http.StatusOK, h)
	})

	adminGroup := authGroup.Group("", auth.RequireRole(auth.RoleAdmin))

	adminGroup.GET("/users", func(c *gin.Context) {
		users := reg.List(registry.Role(c.Query("role")), c.Query("q"))
		c.JSON(http.StatusOK, gin.H{"users": users})
	})

	adminGroup.POST("/users", func(c *gin.Context) {
		var id registry.Identity
		if err := c.ShouldBindJSON(&id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := reg.Add(id); err != nil {
			c.JSON(statusForRegistryErr(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, id)
	})

	adminGroup.PUT("/users/:tag", func(c *gin.Context) {
		var id registry.Identity
		if err := c.ShouldBindJSON(&id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id.TagID = c.Param("tag")
		if err := reg.Update(id); err != nil {
			c.JSON(statusForRegistryErr(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, id)
	})

	adminGroup.DELETE("/users/:tag", func(c *gin.Context) {
		if err := reg.Remove(c.Param("tag")); err != nil {
			c.JSON(statusForRegistryErr(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	// Stops the queue drain and the monitor before the listener so no
	// half-applied scan can arrive while handlers wind down.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}

// drainQueue applies queued reader events through the same engine entry
// points as the HTTP handlers.
func drainQueue(ctx context.Context, q queue.Queue, engine *attendance.Service, monitor *reader.Monitor, m *metrics.Metrics) {
	messages, err := q.Consume(ctx)
	if err != nil {
		log.Printf("queue consume init failed: %v", err)
		return
	}
	for msg := range messages {
		switch msg.Type {
		case queue.TypeScan:
			p, err := queue.DecodeScan(msg)
			if err != nil {
				log.Printf("bad scan payload: %v", err)
				continue
			}
			rec := engine.SubmitScan(attendance.ScanEvent{
				TagID:      p.TagID,
				ReaderID:   p.ReaderID,
				Timestamp:  p.Timestamp,
				ActionHint: p.ActionHint,
			})
			m.ScanProcessed(string(rec.Outcome))
			m.CurrentlyInside.Set(float64(engine.Summary("").CurrentlyInside))
		case queue.TypeHeartbeat:
			p, err := queue.DecodeHeartbeat(msg)
			if err != nil {
				log.Printf("bad heartbeat payload: %v", err)
				continue
			}
			monitor.Heartbeat(p.ReaderID, p.Timestamp)
		default:
			log.Printf("unknown queue message type %q", msg.Type)
		}
	}
}

type sessionView struct {
	attendance.Session
	DurationSeconds *int64 `json:"duration_seconds,omitempty"`
}

func sessionViews(sessions []attendance.Session) []sessionView {
	out := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		view := sessionView{Session: s}
		if d, ok := s.Duration(); ok {
			secs := int64(d.Seconds())
			view.DurationSeconds = &secs
		}
		out = append(out, view)
	}
	return out
}

func claimsFrom(c *gin.Context) (auth.Claims, bool) {
	claimsAny, ok := c.Get("claims")
	if !ok {
		return auth.Claims{}, false
	}
	claims, cast := claimsAny.(auth.Claims)
	return claims, cast
}

func statusForRegistryErr(err error) int {
	switch err {
	case registry.ErrTagExists:
		return http.StatusConflict
	case registry.ErrTagNotFound:
		return http.StatusNotFound
	case registry.ErrInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// seedDevUsers loads a small roster so a dev server has someone to
// scan.
func seedDevUsers(reg *registry.Registry) {
	seed := []registry.Identity{
		{TagID: "RF001", Name: "Alice Johnson", Role: registry.RoleStudent, Email: "alice@school.edu", Active: true},
		{TagID: "RF002", Name: "Bob Smith", Role: registry.RoleTeacher, Email: "bob@school.edu", Active: true},
		{TagID: "RF003", Name: "Carol Davis", Role: registry.RoleStudent, Email: "carol@school.edu", Active: false},
		{TagID: "RF004", Name: "David Wilson", Role: registry.RoleStaff, Email: "david@school.edu", Active: true},
		{TagID: "RF005", Name: "Emma Brown", Role: registry.RoleStudent, Email: "emma@school.edu", Active: true},
	}
	for _, id := range seed {
		if err := reg.Add(id); err != nil {
			log.Printf("seed user %s: %v", id.TagID, err)
		}
	}
	log.Printf("seeded %d dev users", len(seed))
}

// CORS middleware for browser requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
