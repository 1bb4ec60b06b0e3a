package router

import (
	"log/slog"
	"net/http"

	"sharedspace/internal/http-server/handlers/admin"
	bookspace "sharedspace/internal/http-server/handlers/book_space"
	cancelbooking "sharedspace/internal/http-server/handlers/cancel_booking"
	"sharedspace/internal/http-server/handlers/loyalty"
	paymentintent "sharedspace/internal/http-server/handlers/payment_intent"
	"sharedspace/internal/http-server/handlers/spaces"
	"sharedspace/internal/http-server/handlers/transactions"
	"sharedspace/internal/http-server/handlers/wallet"
	"sharedspace/internal/lib/jwt"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

type Slots interface {
	spaces.AvailabilityProvider
	admin.Slots
}

type Bookings interface {
	bookspace.Booker
	cancelbooking.Canceller
}

type Deps struct {
	AppSecret    string
	Slots        Slots
	Bookings     Bookings
	Transactions transactions.Service
	Payments     paymentintent.Payments
	Wallets      wallet.Sessions
	Roles        admin.RoleChecker
}

func New(log *slog.Logger, d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/spaces", spaces.List(log, d.Slots))
	r.Get("/spaces/{id}", spaces.Get(log, d.Slots))
	r.Get("/spaces/{id}/availability", spaces.Availability(log, d.Slots))
	r.Get("/loyalty/tiers", loyalty.Tiers())

	r.Group(func(r chi.Router) {
		r.Use(jwt.AuthMiddleware(d.AppSecret))

		r.Post("/bookings", bookspace.New(log, d.Bookings))
		r.Post("/bookings/{id}/cancel", cancelbooking.New(log, d.Bookings))
		r.Get("/bookings/history", transactions.History(log, d.Transactions))

		r.Get("/transactions", transactions.List(log, d.Transactions))
		r.Get("/transactions/stats", transactions.Stats(log, d.Transactions))
		r.Get("/transactions/{id}", transactions.Get(log, d.Transactions))
		r.Delete("/transactions", transactions.Clear(log, d.Transactions))

		r.Get("/loyalty", loyalty.Progress(log, d.Transactions))

		r.Post("/payments/intents", paymentintent.Create(log, d.Payments))
		r.Get("/payments/intents/{id}", paymentintent.Get(log, d.Payments))
		r.Post("/payments/intents/{id}/confirm", paymentintent.Confirm(log, d.Payments))

		r.Get("/wallet", wallet.Get(log, d.Wallets))
		r.Post("/wallet/connect", wallet.Connect(log, d.Wallets))
		r.Post("/wallet/disconnect", wallet.Disconnect(log, d.Wallets))
		r.Post("/wallet/auto-connect", wallet.AutoConnect(log, d.Wallets))
		r.Delete("/wallet", wallet.Clear(log, d.Wallets))

		r.Route("/admin", func(r chi.Router) {
			r.Use(admin.RequireAdmin(log, d.Roles))

			r.Delete("/slots", admin.ClearSlots(log, d.Slots))
			r.Post("/slots/release", admin.ReleaseSlot(log, d.Slots))
			r.Get("/spaces/{id}/booked", admin.Booked(log, d.Slots))
		})
	})

	return r
}
