package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"

	"keyword-report/internal/service"
	"keyword-report/pkg/logger"
	"keyword-report/pkg/report"
	"keyword-report/pkg/storage"
)

// Controller serves the stored report history. It never triggers runs.
type Controller struct {
	archive service.ReportArchive
	config  ControllerConfig
	log     *logger.Logger
}

type ControllerConfig struct {
	DefaultLimit int
	MaxLimit     int
	Timeout      time.Duration
}

type StatusResponse struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	LatestReport string `json:"latest_report,omitempty"`
	LatestDate   string `json:"latest_date,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		DefaultLimit: 10,
		MaxLimit:     100,
		Timeout:      5 * time.Second,
	}
}

func NewController(archive service.ReportArchive, config ControllerConfig, log *logger.Logger) *Controller {
	defaults := DefaultControllerConfig()
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = defaults.DefaultLimit
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = defaults.MaxLimit
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Controller{
		archive: archive,
		config:  config,
		log:     log.Component("report_controller"),
	}
}

// Register mounts every route; metrics may be nil to skip /metrics
func (ctl *Controller) Register(app *fiber.App, metrics http.Handler) {
	app.Get("/health", ctl.Health)

	reports := app.Group("/api/reports")
	reports.Get("/", ctl.ListReports)
	reports.Get("/latest", ctl.LatestReport)
	reports.Get("/:id", ctl.GetReport)
	reports.Get("/:id/text", ctl.GetReportText)

	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics))
	}
}

func (ctl *Controller) Health(c *fiber.Ctx) error {
	ctx, cancel := ctl.context(c)
	defer cancel()

	status := StatusResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	latest, err := ctl.archive.Latest(ctx)
	switch {
	case err == nil:
		status.LatestReport = latest.ID
		status.LatestDate = latest.Date
	case !errors.Is(err, storage.ErrNotFound):
		ctl.log.WithError(err).Warn("Health check could not read report history")
		status.Status = "degraded"
	}

	return c.JSON(status)
}

func (ctl *Controller) ListReports(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", ctl.config.DefaultLimit)
	if limit <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be positive")
	}
	if limit > ctl.config.MaxLimit {
		limit = ctl.config.MaxLimit
	}

	ctx, cancel := ctl.context(c)
	defer cancel()

	summaries, err := ctl.archive.List(ctx, limit)
	if err != nil {
		return err
	}
	return c.JSON(summaries)
}

func (ctl *Controller) LatestReport(c *fiber.Ctx) error {
	ctx, cancel := ctl.context(c)
	defer cancel()

	latest, err := ctl.archive.Latest(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no reports stored")
		}
		return err
	}
	return c.JSON(latest)
}

func (ctl *Controller) GetReport(c *fiber.Ctx) error {
	r, err := ctl.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(r)
}

func (ctl *Controller) GetReportText(c *fiber.Ctx) error {
	r, err := ctl.lookup(c)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(r.Text)
}

func (ctl *Controller) lookup(c *fiber.Ctx) (*report.FinalReport, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid report id")
	}

	ctx, cancel := ctl.context(c)
	defer cancel()

	r, err := ctl.archive.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "report not found")
		}
		return nil, err
	}
	return r, nil
}

func (ctl *Controller) context(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), ctl.config.Timeout)
}

// ErrorHandler renders every error as JSON, hiding internal messages
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else if log != nil {
			log.WithError(err).WithField("path", c.Path()).Error("Request failed")
		}

		return c.Status(code).JSON(ErrorResponse{Error: message})
	}
}
