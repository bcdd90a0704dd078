package routes

import (
	"github.com/go-chi/chi/v5"

	"greek-row/chapterhouse/internal/api"
	"greek-row/chapterhouse/internal/middleware"
)

// RegisterAPIRoutes registers all /api routes and handlers
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers) {
	// login and the public join forms share a per-IP limiter
	limiter := middleware.NewRateLimiter(1, 5)

	r.Route("/api", func(apiRouter chi.Router) {

		// Public
		apiRouter.Group(func(public chi.Router) {
			public.Use(limiter.Middleware)
			public.Post("/auth/login", handlers.Login())
			public.Get("/invitations/validate/{token}", handlers.ValidateInvitation())
			public.Post("/invitations/accept/{token}", handlers.AcceptInvitation())
			public.Post("/alumni-invitations/accept/{token}", handlers.AcceptAlumniInvitation())
		})

		// Authenticated (bearer token or session cookie)
		apiRouter.Group(func(authed chi.Router) {
			authed.Use(middleware.AuthMiddleware(deps.Services.Auth))
			authed.Use(middleware.LoadProfile(deps.Repo.Profiles, deps.Repo.Recruits))

			authed.Post("/auth/logout", handlers.Logout())
			authed.Get("/profiles/me", handlers.GetMe())
			authed.Patch("/profiles/me", handlers.UpdateMe())

			// Active members only (pending approval is blocked)
			authed.Group(func(member chi.Router) {
				member.Use(middleware.IsActiveMemberMiddleware())

				features := deps.Services.Chapters

				member.Get("/members", handlers.ListMembers())
				member.With(middleware.RequireFeature(features, "alumni_network")).
					Get("/alumni", handlers.ListAlumni())

				member.Group(func(ann chi.Router) {
					ann.Use(middleware.RequireFeature(features, "announcements"))
					ann.Get("/announcements", handlers.ListAnnouncements())
					ann.Post("/announcements", handlers.CreateAnnouncement())
					ann.Patch("/announcements/{id}/read", handlers.MarkAnnouncementRead())
					ann.With(middleware.IsAdminMiddleware()).
						Delete("/announcements/{id}", handlers.DeleteAnnouncement())
				})

				member.Group(func(msg chi.Router) {
					msg.Use(middleware.RequireFeature(features, "messaging"))
					msg.Get("/connections", handlers.ListConnections())
					msg.Post("/connections", handlers.CreateConnection())
					msg.Patch("/connections/{id}", handlers.UpdateConnection())
					msg.Delete("/connections/{id}", handlers.DeleteConnection())

					msg.Get("/messages", handlers.ListMessages())
					msg.Post("/messages", handlers.SendMessage())
					msg.Patch("/messages/{id}/read", handlers.MarkMessageRead())
				})

				member.Get("/chapters/{id}", handlers.GetChapter())
				member.Get("/chapters/{id}/features", handlers.GetFeatures())
				member.Get("/chapters/{id}/branding", handlers.GetBranding())

				// Recruitment staff (admin or exec)
				member.Group(func(staff chi.Router) {
					staff.Use(middleware.IsRecruitmentStaffMiddleware())
					staff.Use(middleware.RequireFeature(features, "recruitment"))
					staff.Get("/recruitment/recruits", handlers.ListRecruits())
					staff.Post("/recruitment/recruits", handlers.CreateRecruit())
					staff.Get("/recruitment/recruits/{id}", handlers.GetRecruit())
					staff.Patch("/recruitment/recruits/{id}", handlers.UpdateRecruit())
					staff.Delete("/recruitment/recruits/{id}", handlers.DeleteRecruit())
				})

				// Admin-only group
				member.Group(func(admin chi.Router) {
					admin.Use(middleware.IsAdminMiddleware())

					admin.Patch("/members/{id}", handlers.UpdateMember())

					admin.Post("/invitations", handlers.CreateInvitation())
					admin.Get("/invitations", handlers.ListInvitations())
					admin.Delete("/invitations/{id}", handlers.DeactivateInvitation())

					admin.Patch("/chapters/{id}/features", handlers.UpdateFeatures())
					admin.Patch("/chapters/{id}/branding", handlers.UpdateBranding())
				})
			})
		})
	})
}
