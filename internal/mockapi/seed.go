package mockapi

import (
	"fmt"
	"time"

	"github.com/jrsteele09/baysawarr-web/apiclient"
	"github.com/jrsteele09/baysawarr-web/internal/utils"
	"github.com/jrsteele09/baysawarr-web/users"
)

// Demo credentials created by Seed
const (
	DemoAdminEmail     = "admin@baysawarr.test"
	DemoAdminPassword  = "Admin1234"
	DemoMemberEmail    = "awa.diop@baysawarr.test"
	DemoMemberPassword = "Member1234"
)

// Seed fills the mock with demo accounts and content
func (s *Server) Seed() error {
	if _, err := s.AddUser(users.User{
		Email:     DemoAdminEmail,
		FirstName: "Moussa",
		LastName:  "Ndiaye",
		Role:      users.RoleAdmin,
	}, DemoAdminPassword); err != nil {
		return fmt.Errorf("[mockapi Seed] admin: %w", err)
	}

	if _, err := s.AddUser(users.User{
		Email:     DemoMemberEmail,
		FirstName: "Awa",
		LastName:  "Diop",
		Role:      users.RoleMember,
		Phone:     utils.Ptr("+221 77 000 00 00"),
		Company: &users.Company{
			Name:    "Diop Karité",
			Sector:  "Cosmétique",
			Country: "Sénégal",
		},
	}, DemoMemberPassword); err != nil {
		return fmt.Errorf("[mockapi Seed] member: %w", err)
	}

	now := s.now().UTC()

	s.AddEnrollment(apiclient.Enrollment{
		FirstName: "Awa", LastName: "Diop", Email: DemoMemberEmail,
		Company: "Diop Karité", Sector: "Cosmétique", Country: "Sénégal",
		Status: apiclient.EnrollmentApproved, CreatedAt: now.AddDate(0, -2, 0),
	})
	s.AddEnrollment(apiclient.Enrollment{
		FirstName: "Kofi", LastName: "Mensah", Email: "kofi@example.com",
		Company: "Mensah Cacao", Sector: "Agroalimentaire", Country: "Ghana",
		CreatedAt: now.AddDate(0, 0, -3),
	})

	s.AddProduct(apiclient.Product{Name: "Beurre de karité bio", Category: "Cosmétique", Price: 4500, Currency: "XOF", Producer: "Diop Karité", Featured: true, CreatedAt: now})
	s.AddProduct(apiclient.Product{Name: "Fèves de cacao", Category: "Agroalimentaire", Price: 12000, Currency: "XOF", Producer: "Mensah Cacao", CreatedAt: now})
	s.AddProduct(apiclient.Product{Name: "Bissap séché", Category: "Agroalimentaire", Price: 2500, Currency: "XOF", Producer: "Coopérative Thiès", Featured: true, CreatedAt: now})

	s.AddBlog(apiclient.Blog{
		Title: "Exporter vers l'Europe : les étapes clés", Slug: "exporter-vers-europe",
		Excerpt: "Normes, certifications et logistique pour les producteurs.",
		Content: "Les marchés européens exigent une traçabilité complète...",
		Author:  "Équipe BAY SA WARR", Tags: []string{"export", "normes"}, PublishedAt: now.AddDate(0, 0, -10),
	})
	s.AddBlog(apiclient.Blog{
		Title: "Financer sa croissance", Slug: "financer-sa-croissance",
		Excerpt: "Microcrédit, subventions et investisseurs d'impact.",
		Content: "Plusieurs leviers existent pour les entrepreneurs africains...",
		Author:  "Équipe BAY SA WARR", Tags: []string{"finance"}, PublishedAt: now.AddDate(0, 0, -4),
	})

	s.AddFormation(apiclient.Formation{
		Title: "Marketing digital pour producteurs", Trainer: "Fatou Sow", Location: "Dakar",
		StartDate: now.AddDate(0, 1, 0), EndDate: now.AddDate(0, 1, 2), Seats: 25, Price: 15000,
	})

	s.AddEvent(apiclient.Event{
		Title: "Salon des producteurs africains", Location: "Dakar, CICAD",
		Description: "Rencontres B2B entre producteurs, acheteurs et partenaires.",
		StartsAt:    now.AddDate(0, 0, 21), EndsAt: now.AddDate(0, 0, 23),
	})
	s.AddEvent(apiclient.Event{
		Title: "Webinaire : certification bio", Location: "En ligne",
		StartsAt: now.AddDate(0, 0, 7).Add(10 * time.Hour),
	})
	return nil
}
