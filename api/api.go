package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sahilchouksey/degreefyd-api/utils/response"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

func NewAPIServer(listenAddress string) *APIServer {
	return &APIServer{
		app:           fiber.New(NewConfig()),
		listenAddress: listenAddress,
	}
}

// NewConfig is the fiber configuration shared by the server and tests
func NewConfig() fiber.Config {
	return fiber.Config{
		AppName:      "degreefyd-api",
		BodyLimit:    10 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		ErrorHandler: errorHandler,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	log.Info().Str("address", s.listenAddress).Msg("starting API server")

	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown(timeout time.Duration) error {
	log.Info().Msg("shutting down API server")
	return s.app.ShutdownWithTimeout(timeout)
}

// errorHandler renders errors that escape handlers, such as unknown routes,
// in the standard envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return response.NotFound(c, "Route not found")
		case fiber.StatusMethodNotAllowed:
			return response.Error(c, fe.Code, fe.Message, "METHOD_NOT_ALLOWED")
		case fiber.StatusRequestEntityTooLarge:
			return response.Error(c, fe.Code, fe.Message, "PAYLOAD_TOO_LARGE")
		}
		return response.Error(c, fe.Code, fe.Message, "ERROR")
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return response.InternalServerError(c, "")
}
