package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classattend/internal/attendance"
	"classattend/internal/config"
	"classattend/internal/csvio"
	"classattend/internal/httpmiddleware"
	"classattend/internal/metrics"
	"classattend/internal/roster"
	"classattend/internal/session"
	"classattend/internal/settings"
	"classattend/internal/store"
	"classattend/internal/teacher"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(context.Background(), db.Client); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var sessions session.Store
	if cfg.SessionBackend == "memory" {
		sessions = session.NewInMemory()
	} else {
		sessions = session.NewRedisStore(redisClient.Client)
	}
	sessionMgr := session.NewManager(cfg.JWTIssuer, cfg.JWTSigningKey, cfg.SessionTTL, sessions)

	rosterRepo := roster.NewRepository(db.Client)
	rosterSvc := roster.NewService(rosterRepo)
	settingsSvc := settings.NewService(settings.NewRepository(db.Client))
	teacherSvc := teacher.NewService(teacher.NewRepository(db.Client))
	attendanceRepo := attendance.NewRepository(db.Client)
	att := attendance.NewService(attendanceRepo, rosterRepo, settingsSvc)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	// Student sign-in is open to anonymous callers and carries no session.
	r.POST("/v1/sign-in", func(c *gin.Context) {
		var req struct {
			StudentID string `json:"student_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "student_id is required"})
			return
		}

		res, err := att.SignIn(c.Request.Context(), req.StudentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
			return
		}
		metrics.SignIns.WithLabelValues(string(res.Outcome)).Inc()

		switch res.Outcome {
		case attendance.OutcomeStudentNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Student ID not found."})
		case attendance.OutcomeAlreadySignedIn:
			c.JSON(http.StatusOK, gin.H{
				"outcome": res.Outcome,
				"message": "You have already signed in today.",
			})
		default:
			c.JSON(http.StatusOK, gin.H{
				"outcome": res.Outcome,
				"status":  res.Status,
				"message": signInMessage(res.Status),
			})
		}
	})

	r.POST("/v1/teachers/sign-in", func(c *gin.Context) {
		var req struct {
			TeacherID string `json:"teacher_id" binding:"required"`
			PIN       string `json:"pin"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "teacher_id is required"})
			return
		}

		t, err := teacherSvc.Authenticate(c.Request.Context(), req.TeacherID, req.PIN)
		switch {
		case errors.Is(err, teacher.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Teacher ID not found."})
			return
		case errors.Is(err, teacher.ErrInvalidPIN):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid PIN."})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
			return
		}

		token, exp, err := sessionMgr.Start(c.Request.Context(), t.TeacherID, t.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session start failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":        token,
			"teacher_name": t.Name,
			"expires_at":   exp.Unix(),
		})
	})

	r.POST("/v1/teachers/sign-out", func(c *gin.Context) {
		if token := session.TokenFromRequest(c); token != "" {
			if err := sessionMgr.End(c.Request.Context(), token); err != nil {
				log.Printf("session end failed: %v", err)
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "Teacher signed out."})
	})

	staff := r.Group("/v1", session.StaffRequired(sessionMgr, cfg.StaffKey))

	staff.GET("/students", func(c *gin.Context) {
		students, err := rosterSvc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"students": students})
	})

	staff.POST("/students", func(c *gin.Context) {
		var req struct {
			StudentID string `json:"student_id" binding:"required"`
			Name      string `json:"name" binding:"required"`
			Email     string `json:"email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and name are required"})
			return
		}
		st, err := rosterSvc.Add(c.Request.Context(), req.StudentID, req.Name, req.Email)
		switch {
		case errors.Is(err, roster.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, roster.ErrDuplicateStudentID):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusCreated, gin.H{"student": st})
		}
	})

	staff.DELETE("/students/:studentID", func(c *gin.Context) {
		err := rosterSvc.Delete(c.Request.Context(), c.Param("studentID"))
		switch {
		case errors.Is(err, roster.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Student ID not found."})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, gin.H{"message": "Student deleted."})
		}
	})

	staff.POST("/students/import", func(c *gin.Context) {
		body, err := importBody(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer body.Close()

		rows, err := csvio.ParseRoster(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		summary, err := rosterSvc.Import(c.Request.Context(), rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed, nothing was applied"})
			return
		}
		metrics.ImportedRows.WithLabelValues("created").Add(float64(summary.Created))
		metrics.ImportedRows.WithLabelValues("updated").Add(float64(summary.Updated))
		c.JSON(http.StatusOK, summary)
	})

	staff.GET("/attendance/export", func(c *gin.Context) {
		start, end, err := dateRange(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rows, err := att.Export(c.Request.Context(), start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="attendance_export.csv"`)
		if err := csvio.WriteExport(c.Writer, rows); err != nil {
			log.Printf("export write failed: %v", err)
		}
	})

	staff.GET("/attendance/log", func(c *gin.Context) {
		filter := attendance.LogFilter{
			Date:        strings.TrimSpace(c.Query("date")),
			StudentName: strings.TrimSpace(c.Query("student")),
		}
		if filter.Date != "" {
			if _, err := time.Parse("2006-01-02", filter.Date); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
		}
		entries, err := att.Log(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	})

	staff.GET("/report", func(c *gin.Context) {
		start, end, err := dateRange(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rows, err := att.Report(c.Request.Context(), start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"report": rows})
	})

	staff.GET("/settings", func(c *gin.Context) {
		s, err := settingsSvc.Get(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": s})
	})

	staff.PUT("/settings", func(c *gin.Context) {
		var req struct {
			ClassStartTime       string      `json:"class_start_time"`
			LateThresholdMinutes json.Number `json:"late_threshold_minutes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
			return
		}
		s, err := settingsSvc.Update(c.Request.Context(), req.ClassStartTime, req.LateThresholdMinutes.String())
		switch {
		case errors.Is(err, settings.ErrInvalidStartTime), errors.Is(err, settings.ErrInvalidThreshold):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, gin.H{"settings": s})
		}
	})

	staff.GET("/teachers", func(c *gin.Context) {
		teachers, err := teacherSvc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"teachers": teachers})
	})

	staff.POST("/teachers", func(c *gin.Context) {
		var req struct {
			TeacherID string `json:"teacher_id" binding:"required"`
			Name      string `json:"name"`
			PIN       string `json:"pin"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "teacher_id is required"})
			return
		}
		t, err := teacherSvc.Add(c.Request.Context(), req.TeacherID, req.Name, req.PIN)
		switch {
		case errors.Is(err, teacher.ErrDuplicateTeacherID):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusCreated, gin.H{"teacher": t})
		}
	})

	staff.DELETE("/teachers/:teacherID", func(c *gin.Context) {
		err := teacherSvc.Delete(c.Request.Context(), c.Param("teacherID"))
		switch {
		case errors.Is(err, teacher.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found."})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, gin.H{"message": "Teacher deleted."})
		}
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

func signInMessage(status attendance.Status) string {
	switch status {
	case attendance.StatusLate:
		return "Attendance recorded as LATE."
	case attendance.StatusAbsent:
		return "Attendance recorded as ABSENT (beyond late threshold)."
	default:
		return "Attendance recorded. Thank you."
	}
}

// importBody returns the CSV payload from either a multipart "file" field or
// the raw request body.
func importBody(c *gin.Context) (io.ReadCloser, error) {
	if strings.Contains(c.ContentType(), "multipart/form-data") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			return nil, errors.New("file field required")
		}
		return file, nil
	}
	if c.Request.Body == nil {
		return nil, errors.New("empty request body")
	}
	return c.Request.Body, nil
}

// dateRange parses optional inclusive start_date/end_date query parameters.
func dateRange(c *gin.Context) (start, end *time.Time, err error) {
	parse := func(name string) (*time.Time, error) {
		v := strings.TrimSpace(c.Query(name))
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, errors.New(name + " must be YYYY-MM-DD")
		}
		return &t, nil
	}
	if start, err = parse("start_date"); err != nil {
		return nil, nil, err
	}
	if end, err = parse("end_date"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Staff-Key")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
