package handler

import (
	"activities/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Router struct {
	handler Handler
	auth    *AuthMiddleware
	app     *fiber.App
	conf    *config.Config
	logger  *zap.SugaredLogger
}

func NewRouter(handler Handler, auth *AuthMiddleware, app *fiber.App, conf *config.Config, logger *zap.SugaredLogger) *Router {
	return &Router{
		logger:  logger,
		app:     app,
		conf:    conf,
		handler: handler,
		auth:    auth,
	}
}

func (r *Router) RegisterRouter() {
	r.app.Get("/health", r.handler.HealthCheck)

	r.app.Use(
		recover.New(recover.Config{
			EnableStackTrace: true,
		}),
		logger.New(),
	)

	r.app.Route("/activities", func(router fiber.Router) {

		router.Use("/swagger/*", swagger.New(swagger.Config{
			DeepLinking: false,
			URL:         "/activities/swagger/doc.json",
		}))

		api := router.Group("/api")

		v1 := api.Group("/v1", r.auth.RequireIdentity())

		v1.Post("/activity", r.handler.CreateActivity)
		v1.Get("/activity", r.handler.AllActivities)
		v1.Get("/activity/available", r.handler.AvailableActivities)
		v1.Get("/activity/search", r.handler.SearchActivities)
		v1.Get("/activity/:id", r.handler.ActivityByID)
		v1.Put("/activity/:id", r.handler.ModifyActivity)
		v1.Delete("/activity/:id", r.handler.DeleteActivity)
		v1.Put("/activity/:id/address/:addressId", r.handler.AddAddress)
		v1.Put("/activity/:id/tags", r.handler.AddTags)
		v1.Post("/activity/:id/participants", r.handler.AddParticipant)
		v1.Delete("/activity/:id/participants/:userId", r.handler.RemoveParticipant)
		v1.Post("/activity/:id/promote", r.handler.FreePlace)
		v1.Get("/activity/:id/opinions", r.handler.OpinionsByActivity)
		v1.Post("/activity/:id/opinions", r.handler.AddOpinion)
		v1.Delete("/activity/:id/opinions", r.handler.DeleteOpinion)
	})
}
