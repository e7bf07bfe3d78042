package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"authn-simple/internal/domain"
	"authn-simple/internal/service"
)

// Authenticator validates a login payload.
type Authenticator interface {
	Authenticate(ctx context.Context, payload string) (*domain.Identity, error)
}

// Handler wires HTTP routes to the authenticator.
type Handler struct {
	authn    Authenticator
	logger   *logrus.Logger
	registry *prometheus.Registry
	metrics  *metrics
	prefix   string
}

func NewHandler(authn Authenticator, logger *logrus.Logger, registry *prometheus.Registry, prefix string) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &Handler{
		authn:    authn,
		logger:   logger,
		registry: registry,
		metrics:  newMetrics(registry),
		prefix:   strings.TrimRight(prefix, "/"),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestIDMiddleware(), h.loggingMiddleware(), h.metrics.middleware())

	h.mount(router.Group("/"))
	if h.prefix != "" {
		h.mount(router.Group(h.prefix))
	}

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})))
}

func (h *Handler) mount(group *gin.RouterGroup) {
	group.GET("/version", h.getVersion)
	group.POST("/authenticate", h.authenticate)
	group.GET("/description", h.getDescription)
}

func (h *Handler) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, versionResponse())
}

func (h *Handler) getDescription(c *gin.Context) {
	c.JSON(http.StatusOK, descriptionResponse())
}

func (h *Handler) authenticate(c *gin.Context) {
	identity, err := h.authn.Authenticate(c.Request.Context(), c.PostForm("json"))
	if err != nil {
		h.metrics.observeOutcome(err)
		h.fail(c, err)
		return
	}
	h.metrics.observeOutcome(nil)
	c.JSON(http.StatusOK, successResponse(*identity))
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	message := err.Error()

	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		code = authErr.Code
		message = authErr.Message
	} else {
		requestLogger(c, h.logger).WithError(err).Error("authenticate")
	}

	c.JSON(code, ErrorResponse{Code: http.StatusText(code), Message: message})
}
