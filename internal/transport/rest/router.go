package rest

import (
	"log/slog"
	"net/http"

	"github.com/adisurya/campushub/internal/auth"
	"github.com/adisurya/campushub/internal/group"
	"github.com/adisurya/campushub/internal/post"
	"github.com/adisurya/campushub/internal/reservation"
	"github.com/adisurya/campushub/internal/room"
	"github.com/adisurya/campushub/internal/transport/middleware"
	"github.com/adisurya/campushub/internal/transport/swagger"
	"github.com/adisurya/campushub/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sqlx.DB,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	groupHandler *group.Handler,
	roomHandler *room.Handler,
	reservationHandler *reservation.Handler,
	postHandler *post.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// OpenAPI spec at root, UI under /swagger
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Unauthenticated: signup, confirmation and login
		r.Post("/signup", userHandler.Signup)
		r.Get("/confirm", userHandler.ConfirmEmail)
		r.Post("/confirm", userHandler.ConfirmEmail)
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/logout", authHandler.Logout)
		})

		// Everything below resolves the session cookie first
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.Middleware)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/me", userHandler.GetUser)
				ur.Patch("/me", userHandler.UpdateBio)
				ur.Get("/{username}", userHandler.GetUser)
				ur.Patch("/{username}", userHandler.ModifyUser)
			})

			pr.Route("/groups", func(gr chi.Router) {
				gr.Get("/", groupHandler.ListGroups)
				gr.Get("/public", groupHandler.ListPublicGroups)
				gr.Post("/", groupHandler.CreateGroup)
				gr.Patch("/{id}", groupHandler.ModifyGroup)
				gr.Post("/{id}/join", groupHandler.JoinGroup)
				gr.Post("/{id}/leave", groupHandler.LeaveGroup)
			})

			pr.Route("/rooms", func(rr chi.Router) {
				rr.Get("/", roomHandler.GetRooms)
				rr.Post("/", roomHandler.CreateRoom)
				rr.Patch("/{id}", roomHandler.ModifyRoom)
				rr.Delete("/{id}", roomHandler.RetireRoom)
				rr.Get("/{id}/availability", reservationHandler.AvailableTimes)
				rr.Get("/available", reservationHandler.AvailableRooms)
			})

			pr.Route("/reservations", func(rr chi.Router) {
				rr.Post("/", reservationHandler.Reserve)
				rr.Get("/", reservationHandler.ListReservations)
				rr.Delete("/{id}", reservationHandler.Cancel)
				rr.Patch("/{id}/decision", reservationHandler.Decide)
			})

			pr.Route("/posts", func(ps chi.Router) {
				ps.Post("/", postHandler.CreatePost)
				ps.Get("/", postHandler.ListPosts)
				ps.Get("/timeline", postHandler.Timeline)
				ps.Get("/{id}", postHandler.GetPost)
				ps.Patch("/{id}", postHandler.ModifyPost)
				ps.Post("/{id}/vote", postHandler.Vote)
				ps.Post("/{id}/follow", postHandler.Follow)
				ps.Delete("/{id}/follow", postHandler.Unfollow)
			})
		})
	})
}
