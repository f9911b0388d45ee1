package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/voca-api/internal/api"
	apiMiddleware "github.com/phrazzld/voca-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(cors.Handler(corsOptions(app.config.Server.CORSOrigins)))

	authHandler := api.NewAuthHandler(app.userService, app.config.Auth, app.logger)
	deckHandler := api.NewDeckHandler(app.deckService, app.engine, app.logger)
	sessionHandler := api.NewSessionHandler(app.engine, app.logger)

	// A nil *content.Publisher must not become a non-nil interface.
	var publisher api.ImageBytesPublisher
	if app.publisher != nil {
		publisher = app.publisher
	}
	mediaHandler := api.NewMediaHandler(app.audio, app.images, publisher, app.logger)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Post("/auth/password-reset", authHandler.RequestPasswordReset)
		r.Post("/auth/password-reset/confirm", authHandler.ConfirmPasswordReset)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/change-password", authHandler.ChangePassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.OptionalAuthenticate)

			r.Get("/decks", deckHandler.ListDecks)
			r.Post("/decks/upload", deckHandler.UploadDeck)
			r.Get("/decks/{id}", deckHandler.GetDeck)
			r.Delete("/decks/{id}", deckHandler.DeleteDeck)
			r.Get("/decks/{id}/words", deckHandler.ListWords)
			r.Get("/decks/{id}/wrong", deckHandler.WrongWords)

			r.Post("/session/start", sessionHandler.StartSession)
		})

		r.Get("/session/{id}/prompt", sessionHandler.GetPrompt)
		r.Post("/session/{id}/submit", sessionHandler.SubmitAnswer)
		r.Get("/session/{id}/summary", sessionHandler.GetSummary)
		r.Get("/session/{id}/wrong", sessionHandler.GetWrongWords)

		r.Post("/tts", mediaHandler.TTS)
		r.Post("/image", mediaHandler.Image)
		r.Post("/image/github", mediaHandler.PublishImage)
	})

	r.Get("/health", api.Health)

	return r
}

// corsOptions allows every origin unless specific ones are configured.
func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{api.GitHubURLHeader, "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}
