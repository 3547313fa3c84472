package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ecoeats/internal/api/http/handlers"
	"github.com/spec-kit/ecoeats/internal/auth"
	"github.com/spec-kit/ecoeats/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Partners       *handlers.PartnersHandler
	Requests       *handlers.RequestsHandler
	Vouchers       *handlers.VouchersHandler
	Surplus        *handlers.SurplusHandler
	Impact         *handlers.ImpactHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/impact/summary", cfg.Impact.Summary)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/partners/register", cfg.Partners.Register)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireRole(), cfg.Users.Me)

	partner := app.Group("/partner", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RolePartnerOwner, domain.RolePartnerStaff), auth.RequirePartner())
	partner.Post("/staff", auth.RequireRole(domain.RolePartnerOwner), cfg.Partners.AddStaff)
	partner.Get("/me", cfg.Partners.Me)
	partner.Get("/surplus", cfg.Surplus.ListMine)
	partner.Get("/redemptions", cfg.Vouchers.PartnerRedemptions)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleBeneficiary))
	requests.Post("", cfg.Requests.Create)
	requests.Get("", cfg.Requests.ListMine)
	requests.Get("/eligibility", cfg.Requests.Eligibility)
	requests.Get("/:id", cfg.Requests.GetMine)

	vouchers := app.Group("/vouchers", cfg.AuthMiddleware.Handle)
	vouchers.Get("", auth.RequireRole(domain.RoleBeneficiary), cfg.Vouchers.ListMine)
	vouchers.Get("/lookup", auth.RequireRole(domain.RolePartnerOwner, domain.RolePartnerStaff), auth.RequirePartner(), cfg.Vouchers.Lookup)
	vouchers.Post("/redeem", auth.RequireRole(domain.RolePartnerOwner, domain.RolePartnerStaff), auth.RequirePartner(), cfg.Vouchers.Redeem)

	surplus := app.Group("/surplus", cfg.AuthMiddleware.Handle, auth.RequireRole())
	surplus.Get("", cfg.Surplus.ListAvailable)
	surplus.Post("", auth.RequireRole(domain.RolePartnerOwner, domain.RolePartnerStaff), auth.RequirePartner(), cfg.Surplus.Create)
	surplus.Get("/claims", auth.RequireRole(domain.RoleBeneficiary), cfg.Surplus.ListClaims)
	surplus.Post("/claims/confirm", auth.RequireRole(domain.RolePartnerOwner, domain.RolePartnerStaff), auth.RequirePartner(), cfg.Surplus.ConfirmPickup)
	surplus.Post("/claims/:id/cancel", auth.RequireRole(domain.RoleBeneficiary), cfg.Surplus.CancelClaim)
	surplus.Post("/:id/claims", auth.RequireRole(domain.RoleBeneficiary), cfg.Surplus.Claim)
	surplus.Post("/:id/complete", auth.RequireRole(domain.RolePartnerOwner), auth.RequirePartner(), cfg.Surplus.Complete)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/requests", cfg.Requests.ListPending)
	admin.Post("/requests/:id/review", cfg.Requests.Review)
	admin.Post("/vouchers", cfg.Vouchers.Issue)
	admin.Post("/vouchers/:id/revoke", cfg.Vouchers.Revoke)
}
