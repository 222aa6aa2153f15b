package api

import (
	"context"
	"net/http"
	"time"

	"alarm_gateway/apperror"
	"alarm_gateway/events"
	"alarm_gateway/logger"
	"alarm_gateway/metrics"
	"alarm_gateway/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Plain-text bodies of the write endpoints
const (
	AlarmOnReply  = "Alarme ligado com sucesso"
	AlarmOffReply = "Alarme desligado com sucesso"
	ReadingReply  = "Dados obtidos com sucesso!"
)

// Store is what the handlers need from the database layer
type Store interface {
	Alerts(ctx context.Context) ([]models.Alert, error)
	RecentReadings(ctx context.Context) ([]models.Reading, error)
	RecordAlarm(ctx context.Context, on bool) (models.Action, error)
	RecordReading(ctx context.Context, r models.Reading) (models.Action, error)
	AlarmState(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

// Handler serves the gateway endpoints
type Handler struct {
	store     Store
	publisher events.Publisher
	statuses  StatusMap
}

// NewHandler builds a handler. A nil publisher disables events and a nil
// status map means DefaultStatusMap.
func NewHandler(store Store, publisher events.Publisher, statuses StatusMap) *Handler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if statuses == nil {
		statuses = DefaultStatusMap()
	}
	return &Handler{store: store, publisher: publisher, statuses: statuses}
}

// RegisterRoutes mounts the gateway endpoints
func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/alertas", h.ListAlerts)
	router.GET("/dados", h.ListReadings)
	router.GET("/ligar_alarme", h.AlarmOn)
	router.GET("/desligar_alarme", h.AlarmOff)
	router.POST("/receber_dados", h.ReceiveReading)
	router.GET("/estado_alarme", h.AlarmState)
	router.GET("/health", h.Health)
}

func (h *Handler) fail(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	metrics.HandlerError(kind.String())
	logger.L().Warn("handler error",
		zap.String("path", c.FullPath()),
		zap.String("kind", kind.String()),
		zap.String(requestIDKey, c.GetString(requestIDKey)),
		zap.Error(err),
	)
	c.JSON(h.statuses.Status(err), ErrorBody{Erro: err.Error()})
}

func (h *Handler) appended(action models.Action) {
	metrics.ActionAppended(action.Evento)
	h.publisher.ActionAppended(action)
}

// ListAlerts returns every alert, newest first
func (h *Handler) ListAlerts(c *gin.Context) {
	alerts, err := h.store.Alerts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	views := make([]models.AlertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, a.View())
	}
	c.JSON(http.StatusOK, views)
}

// ListReadings returns the latest sensor readings
func (h *Handler) ListReadings(c *gin.Context) {
	readings, err := h.store.RecentReadings(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	views := make([]models.ReadingView, 0, len(readings))
	for _, r := range readings {
		views = append(views, r.View())
	}
	c.JSON(http.StatusOK, views)
}

// AlarmOn logs the alarm being switched on
func (h *Handler) AlarmOn(c *gin.Context) {
	h.toggle(c, true, AlarmOnReply)
}

// AlarmOff logs the alarm being switched off
func (h *Handler) AlarmOff(c *gin.Context) {
	h.toggle(c, false, AlarmOffReply)
}

func (h *Handler) toggle(c *gin.Context, on bool, reply string) {
	action, err := h.store.RecordAlarm(c.Request.Context(), on)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.appended(action)
	c.String(http.StatusOK, reply)
}

// ReceiveReading stores a "<movement>,<smoke>" payload from the sensor board
func (h *Handler) ReceiveReading(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.fail(c, apperror.Wrap(apperror.KindValidation, "", err))
		return
	}

	reading, err := models.ParseReading(body)
	if err != nil {
		h.fail(c, apperror.Wrap(apperror.KindValidation, "", err))
		return
	}

	action, err := h.store.RecordReading(c.Request.Context(), reading)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.appended(action)
	c.String(http.StatusOK, ReadingReply)
}

// AlarmState returns the raw alarm state string
func (h *Handler) AlarmState(c *gin.Context) {
	state, err := h.store.AlarmState(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	// bare text, not JSON: existing clients read the body as-is
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(state))
}

// Health reports whether the database answers
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"erro":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
