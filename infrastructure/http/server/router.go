package server

import (
	"net/http"
	"wa-gateway/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler, issuer *auth.TokenIssuer) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(handler.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.healthz)
	r.Post("/auth/token", handler.issueToken)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(issuer))
		r.Get("/status", handler.status)
		r.Get("/ws", handler.realtime)
		r.Get("/groups", handler.listGroups)
		r.Post("/is-registered", handler.isRegistered)
		r.Post("/send-message", handler.sendMessage)
		r.Post("/send-media", handler.sendMedia)
		r.Post("/send-group-message", handler.sendGroupMessage)
		r.Post("/add-to-group", handler.addToGroup)
		r.Post("/clear-message", handler.clearMessage)
	})
	return r
}
