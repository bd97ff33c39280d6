package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-portal/internal/config"
)

// NewApp builds the fiber application with middlewares and routes attached.
func NewApp(appCfg config.AppConfig, attachmentCfg config.AttachmentConfig, mw MiddlewareConfig, routes RouteConfig) *fiber.App {
	maxBytes := attachmentCfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = config.MaxAttachmentBytes
	}
	app := fiber.New(fiber.Config{
		AppName:               appCfg.Name,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(mw.Logger, mw.Metrics),
		// Base64 inflates attachments by a third; leave room for the form fields.
		BodyLimit: maxBytes*4/3 + 64*1024,
	})
	RegisterMiddlewares(app, mw)
	RegisterRoutes(app, routes)
	return app
}
