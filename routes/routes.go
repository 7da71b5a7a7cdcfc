package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fedsports/registration-system/handlers"
	"github.com/fedsports/registration-system/middleware"
	"github.com/fedsports/registration-system/models"
)

// SetupRoutes wires the HTTP surface. Association-side operations live
// behind the association panel, academy-side ones behind the academy panel;
// read endpoints only require authentication.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	eventHandler *handlers.EventHandler,
	formHandler *handlers.FormHandler,
	adhesionHandler *handlers.AdhesionHandler,
	registrationHandler *handlers.RegistrationHandler,
	consolidationHandler *handlers.ConsolidationHandler,
	attachmentHandler *handlers.AttachmentHandler,
	categoryHandler *handlers.CategoryHandler,
	paymentHandler *handlers.PaymentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/login", authHandler.LoginHandler)
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/auth/me", authHandler.MeHandler)
	})

	router.Route("/forms", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Get("/field-catalog", formHandler.FieldCatalogHandler)
		r.Get("/", formHandler.ListHandler)
		r.Get("/{formID}", formHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePanelMode(models.PanelFederation, models.PanelAssociation))
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleFederationManager, models.RoleAssociationManager))

			r.Post("/", formHandler.CreateHandler)
			r.Put("/{formID}", formHandler.UpdateHandler)
			r.Delete("/{formID}", formHandler.DeleteHandler)
		})
	})

	router.Route("/events-competitions", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Get("/", eventHandler.ListHandler)
		r.Get("/{eventID}", eventHandler.GetByIDHandler)
		r.Get("/{eventID}/form", eventHandler.GetFormHandler)
		r.Get("/{eventID}/adhesions", adhesionHandler.ListByEventHandler)
		r.Get("/{eventID}/adhesion", adhesionHandler.GetHandler)
		r.Get("/{eventID}/registered", registrationHandler.ListRegisteredHandler)

		r.Post("/{eventID}/register", registrationHandler.SubmitFormHandler)

		// Academy-side roster management.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePanelMode(models.PanelAcademy))

			r.Post("/adhere/{eventID}", adhesionHandler.AdhereHandler)
			r.Post("/unadhere/{eventID}", adhesionHandler.UnadhereHandler)
			r.Post("/{eventID}/submit-registrations", registrationHandler.SubmitBatchHandler)
			r.Post("/{eventID}/walk-in", registrationHandler.WalkInHandler)
			r.Delete("/{eventID}/registrations", registrationHandler.WipeHandler)
		})

		// Association-side lifecycle, consolidation and bookkeeping.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePanelMode(models.PanelAssociation, models.PanelFederation))
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleFederationManager, models.RoleAssociationManager))

			r.Post("/", eventHandler.CreateHandler)
			r.Put("/{eventID}", eventHandler.EditHandler)
			r.Delete("/{eventID}", eventHandler.DeleteHandler)
			r.Post("/{eventID}/finalize", eventHandler.FinalizeHandler)
			r.Post("/{eventID}/reactivate", eventHandler.ReactivateHandler)
			r.Post("/{eventID}/cancel-submission", registrationHandler.CancelSubmissionHandler)

			r.Get("/{eventID}/consolidated", consolidationHandler.ConsolidatedHandler)
			r.Get("/{eventID}/export/xlsx", consolidationHandler.ExportExcelHandler)
			r.Get("/{eventID}/export/pdf", consolidationHandler.ExportPDFHandler)
			r.Get("/{eventID}/print", consolidationHandler.PrintHandler)
			r.Get("/{eventID}/export-config", consolidationHandler.GetExportConfigHandler)
			r.Put("/{eventID}/export-config", consolidationHandler.SaveExportConfigHandler)

			r.Get("/{eventID}/payments", paymentHandler.ListHandler)
			r.Put("/{eventID}/payments", paymentHandler.RecordHandler)
		})
	})

	router.Route("/registrations", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Put("/{registrationID}", registrationHandler.EditHandler)
		r.Delete("/{registrationID}", registrationHandler.CancelHandler)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Get("/categories", categoryHandler.ListHandler)
		r.Get("/categories/find", categoryHandler.FindHandler)
		r.Get("/attachments/{attachmentID}/download", attachmentHandler.DownloadHandler)
	})

	// Browsers cannot set Authorization headers on websocket upgrades, so
	// the feed stays outside the auth group. It only carries counters.
	router.Get("/ws/events-competitions/{eventID}", webSocketHandler.ServeWs)
}
