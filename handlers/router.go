package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Handlers agrupa os handlers montados pelo roteador.
type Handlers struct {
	TPF         *TPFHandler
	Market      *MarketHandler
	Transaction *TransactionHandler
	User        *UserHandler
	Wallet      *WalletHandler
	AdminToken  string
}

// NewRouter monta as rotas da API.
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logrus.StandardLogger(), NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/tpfs", func(r chi.Router) {
		r.Post("/", h.TPF.Create)
		r.Get("/", h.TPF.List)
		r.Get("/prices", h.TPF.PriceList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.TPF.Get)
			r.Get("/price", h.TPF.Price)
			r.Post("/simulate", h.TPF.Simulate)
			r.Get("/holders", h.TPF.Holders)
			r.Get("/asset-balance", h.TPF.AssetBalance)
			r.Post("/approve", h.TPF.PrepareApprove)
			r.Post("/invest", h.TPF.PrepareInvest)
			r.Post("/redeem", h.TPF.PrepareRedeem)
			r.Post("/withdraw", h.TPF.PrepareWithdraw)
		})
	})

	r.Route("/market/listings", func(r chi.Router) {
		r.Get("/", h.Market.ListOrders)
		r.Post("/", h.Market.PrepareCreateListing)
		r.Post("/approve", h.Market.PrepareApproveListing)
		r.Post("/{listingID}/cancel", h.Market.PrepareCancelListing)
		r.Post("/{listingID}/approve", h.Market.PrepareApproveBuy)
		r.Post("/{listingID}/buy", h.Market.PrepareBuyListing)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.Transaction.Broadcast)
		r.Post("/track", h.Transaction.Track)
		r.Get("/{hash}", h.Transaction.Get)
		r.Post("/{hash}/wait", h.Transaction.Wait)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.User.Register)
		r.Get("/", h.User.List)
		r.Post("/login", h.User.Login)
		r.Get("/{id}", h.User.GetUserByID)
	})

	r.Get("/wallets/{address}/balances", h.Wallet.Balances)

	r.Route("/admin", func(r chi.Router) {
		r.Use(AdminOnly(h.AdminToken))
		r.Post("/brlx/mint", h.Wallet.MintBRLX)
		r.Post("/tpfs/{id}/withdraw", h.TPF.AdminWithdraw)
		r.Post("/tpfs/{id}/freeze", h.TPF.Freeze)
		r.Post("/tpfs/{id}/invest", h.TPF.AdminInvest)
		r.Post("/market/listings", h.Market.AdminCreateListing)
		r.Post("/market/listings/{listingID}/buy", h.Market.AdminBuyListing)
	})

	return r
}
