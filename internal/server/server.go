package server

import (
	"aggregat4/coffeeshop/internal/auth"
	"aggregat4/coffeeshop/internal/domain"
	"aggregat4/coffeeshop/internal/logging"
	"aggregat4/coffeeshop/internal/repository"
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var logger = logging.ForComponent("internal.server")

const (
	PermissionGetDrinksDetail = "get:drinks-detail"
	PermissionPostDrinks      = "post:drinks"
	PermissionPatchDrinks     = "patch:drinks"
	PermissionDeleteDrinks    = "delete:drinks"
)

type Controller struct {
	Store    *repository.Store
	Config   domain.Configuration
	Verifier *auth.Verifier
}

// RunServer serves until the context is cancelled and then shuts down gracefully.
func RunServer(ctx context.Context, controller Controller) error {
	address, err := controller.Config.ListenAddress()
	if err != nil {
		return err
	}
	e := InitServer(controller)
	errChan := make(chan error, 1)
	go func() {
		logging.Info(logger, "Starting server on {Address}", address)
		errChan <- e.Start(address)
	}()
	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logging.Info(logger, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func InitServer(controller Controller) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// Set server timeouts based on advice from https://blog.cloudflare.com/the-complete-guide-to-golang-net-http-timeouts/#1687428081
	e.Server.ReadTimeout = time.Duration(controller.Config.ServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(controller.Config.ServerWriteTimeoutSeconds) * time.Second
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: controller.Config.CorsAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	e.GET("/status", controller.Status)
	e.GET("/environment", controller.environment)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/drinks", controller.getDrinks)
	e.GET("/drinks-detail", controller.getDrinksDetail, auth.RequirePermission(controller.Verifier, PermissionGetDrinksDetail))
	e.POST("/drinks", controller.createDrink, auth.RequirePermission(controller.Verifier, PermissionPostDrinks))
	e.PATCH("/drinks/:id", controller.updateDrink, auth.RequirePermission(controller.Verifier, PermissionPatchDrinks))
	e.DELETE("/drinks/:id", controller.deleteDrink, auth.RequirePermission(controller.Verifier, PermissionDeleteDrinks))

	return e
}

func (controller *Controller) Status(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// environment publishes the record the client bootstraps from. It only
// contains public values.
func (controller *Controller) environment(c echo.Context) error {
	return c.JSON(http.StatusOK, controller.Config.Environment)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Status >= http.StatusInternalServerError {
				logging.Error(logger, "{Method} {Uri} returned {Status} in {Latency} request_id={RequestId}: {Error}",
					v.Method, v.URI, v.Status, v.Latency, v.RequestID, v.Error)
				return nil
			}
			logging.Info(logger, "{Method} {Uri} returned {Status} in {Latency} request_id={RequestId}",
				v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	})
}
