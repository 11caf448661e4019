package frontend

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/textproc"
)

//go:embed templates/index.html
var templateFS embed.FS

// RequestIDHeader carries the per-request identifier
const RequestIDHeader = "X-Request-Id"

const (
	actionPredict    = "predict"
	actionClear      = "clear"
	actionSampleSpam = "sample_spam"
	actionSampleHam  = "sample_ham"
)

// HTTPOptions configures the web front end
type HTTPOptions struct {
	ListenAddress   string
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxInputSize    int
}

// HTTPFrontend serves the web form and the JSON API
type HTTPFrontend struct {
	service *core.SpamDetectorService
	logger  *zap.Logger
	opts    HTTPOptions
	engine  *gin.Engine

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// pageData is what the form template renders
type pageData struct {
	Message string
	Warning string
	Error   string
	Result  *VerdictResponse
}

// classifyRequest is the body of POST /api/v1/classify
type classifyRequest struct {
	Message string `json:"message"`
}

// NewHTTPFrontend creates a new HTTP front end
func NewHTTPFrontend(service *core.SpamDetectorService, logger *zap.Logger, opts HTTPOptions) (*HTTPFrontend, error) {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)

	f := &HTTPFrontend{
		service: service,
		logger:  logger,
		opts:    opts,
		engine:  engine,
	}

	engine.Use(gin.Recovery(), requestID(), f.accessLog())
	f.registerRoutes()

	return f, nil
}

func (f *HTTPFrontend) registerRoutes() {
	f.engine.GET("/", f.showForm)
	f.engine.POST("/", f.submitForm)

	api := f.engine.Group("/api/v1")
	{
		api.POST("/classify", f.classify)
		api.GET("/samples", f.samples)
	}

	f.engine.GET("/health", f.health)
}

// Handler returns the HTTP handler, mainly for tests
func (f *HTTPFrontend) Handler() http.Handler {
	return f.engine
}

// Start starts listening and serves requests in the background
func (f *HTTPFrontend) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ln, err := net.Listen("tcp", f.opts.ListenAddress)
	if err != nil {
		return err
	}

	f.listener = ln
	f.server = &http.Server{
		Handler:      f.engine,
		ReadTimeout:  f.opts.ReadTimeout,
		WriteTimeout: f.opts.WriteTimeout,
	}

	f.logger.Info("HTTP front end starting", zap.String("address", ln.Addr().String()))

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}(f.server)

	return nil
}

// Addr returns the bound address once started
func (f *HTTPFrontend) Addr() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listener == nil {
		return ""
	}
	return f.listener.Addr().String()
}

// Stop gracefully shuts the server down
func (f *HTTPFrontend) Stop() error {
	f.mu.Lock()
	srv := f.server
	f.server = nil
	f.mu.Unlock()

	if srv == nil {
		return nil
	}

	timeout := f.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return srv.Shutdown(ctx)
}

// ProcessMessage classifies a message
func (f *HTTPFrontend) ProcessMessage(ctx context.Context, msg *core.Message) (*core.Verdict, error) {
	msg.Text = textproc.TruncateText(msg.Text, f.opts.MaxInputSize)
	return f.service.DetectMessage(ctx, msg)
}

func (f *HTTPFrontend) showForm(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{})
}

func (f *HTTPFrontend) submitForm(c *gin.Context) {
	action := c.DefaultPostForm("action", actionPredict)
	data := pageData{Message: c.PostForm("message")}

	switch action {
	case actionClear:
		data.Message = ""
	case actionSampleSpam:
		data.Message = SampleSpam
	case actionSampleHam:
		data.Message = SampleHam
	case actionPredict:
		verdict, err := f.ProcessMessage(c.Request.Context(), &core.Message{Text: data.Message, Source: "web"})
		switch {
		case err == nil:
			resp := newVerdictResponse(verdict)
			data.Result = &resp
		case core.KindOf(err) == core.KindEmptyInput:
			data.Warning = core.UserMessageOf(err)
		default:
			data.Error = core.UserMessageOf(err)
		}
	default:
		data.Error = "Unknown action."
		c.HTML(http.StatusBadRequest, "index.html", data)
		return
	}

	c.HTML(http.StatusOK, "index.html", data)
}

func (f *HTTPFrontend) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	verdict, err := f.ProcessMessage(c.Request.Context(), &core.Message{Text: req.Message, Source: "api"})
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{
			Error: core.UserMessageOf(err),
			Kind:  string(core.KindOf(err)),
		})
		return
	}

	c.JSON(http.StatusOK, newVerdictResponse(verdict))
}

func (f *HTTPFrontend) samples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"spam": SampleSpam,
		"ham":  SampleHam,
	})
}

func (f *HTTPFrontend) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"model":  f.service.ModelName(),
	})
}

// statusFor maps a classification error to an HTTP status
func statusFor(err error) int {
	switch core.KindOf(err) {
	case core.KindEmptyInput:
		return http.StatusBadRequest
	case core.KindNormalizationDegenerate:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// requestID tags every request with an identifier, reusing a well-formed incoming one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// accessLog records one line per request. Message content is never logged.
func (f *HTTPFrontend) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		f.logger.Info("HTTP request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
