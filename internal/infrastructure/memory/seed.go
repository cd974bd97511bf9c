package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

// SeedUser is a demo account together with its plaintext secret.
type SeedUser struct {
	User   domain.User
	Secret string
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(fmt.Sprintf("memory: bad seed timestamp %q: %v", s, err))
	}
	return t.UTC()
}

// SeedUsers returns the three demo accounts, one per role.
func SeedUsers() []SeedUser {
	return []SeedUser{
		{
			User: domain.User{
				ID: "1", Email: "admin@metalprofile.ru", Username: "admin",
				FirstName: "System", LastName: "Administrator", Patronymic: "Petrovich",
				Role: domain.RoleAdmin, CreatedAt: ts("2024-01-15T10:00:00Z"), Avatar: "/placeholder.svg",
			},
			Secret: "admin123",
		},
		{
			User: domain.User{
				ID: "2", Email: "partner@metalprofile.ru", Username: "partner",
				FirstName: "Ivan", LastName: "Partnerov", Patronymic: "Sergeevich",
				Role: domain.RolePartner, CreatedAt: ts("2024-02-20T14:30:00Z"), Avatar: "/placeholder.svg",
			},
			Secret: "partner123",
		},
		{
			User: domain.User{
				ID: "3", Email: "client@example.com", Username: "client",
				FirstName: "Maria", LastName: "Klientova", Patronymic: "Ivanovna",
				Role: domain.RoleClient, CreatedAt: ts("2024-03-10T09:15:00Z"),
			},
			Secret: "client123",
		},
	}
}

// SeedArticles returns the demo news feed, newest first.
func SeedArticles() []*domain.NewsArticle {
	return []*domain.NewsArticle{
		{
			ID:         "1",
			Title:      "New MP-20 profiled sheet line with increased strength",
			Body:       "Metall Profil Volga presents a new line of MP-20 profiled sheets with improved strength. The product has passed testing and is already available to order.",
			ImageURL:   "/placeholder.svg",
			AuthorID:   "1",
			AuthorName: "System Administrator",
			AuthorRole: domain.RoleAdmin,
			CreatedAt:  ts("2024-04-10T09:00:00Z"),
			UpdatedAt:  ts("2024-04-10T09:00:00Z"),
			Tags:       []string{"new products", "profiled sheet", "MP-20"},
			Comments: []domain.Comment{
				{
					ID: "101", Body: "Great news! When can we order samples?",
					AuthorID: "3", AuthorName: "Maria Klientova", AuthorRole: domain.RoleClient,
					CreatedAt: ts("2024-04-10T10:15:00Z"), IsApproved: true, ArticleID: "1",
				},
			},
		},
		{
			ID:         "2",
			Title:      "New distribution centre opens in Kazan",
			Body:       "We are glad to announce the opening of a new distribution centre in Kazan. Deliveries in the region are now faster and more convenient. The centre is fitted with modern equipment and ready for large order volumes.",
			ImageURL:   "/placeholder.svg",
			AuthorID:   "2",
			AuthorName: "Ivan Partnerov",
			AuthorRole: domain.RolePartner,
			CreatedAt:  ts("2024-04-05T14:30:00Z"),
			UpdatedAt:  ts("2024-04-05T14:30:00Z"),
			Tags:       []string{"logistics", "Kazan", "expansion"},
			Comments:   []domain.Comment{},
		},
		{
			ID:         "3",
			Title:      "Partner training programme launched",
			Body:       "Metall Profil Volga launches a training programme for partners: a series of webinars, workshops and in-person meetings for sales and installation specialists.",
			ImageURL:   "/placeholder.svg",
			AuthorID:   "1",
			AuthorName: "System Administrator",
			AuthorRole: domain.RoleAdmin,
			CreatedAt:  ts("2024-03-28T11:45:00Z"),
			UpdatedAt:  ts("2024-03-28T11:45:00Z"),
			Tags:       []string{"training", "partners", "growth"},
			Comments: []domain.Comment{
				{
					ID: "102", Body: "When will the webinar schedule be published?",
					AuthorID: "2", AuthorName: "Ivan Partnerov", AuthorRole: domain.RolePartner,
					CreatedAt: ts("2024-03-28T13:20:00Z"), IsApproved: true, ArticleID: "3",
				},
				{
					ID: "103", Body: "Will certificates be issued after the training?",
					AuthorID: "3", AuthorName: "Maria Klientova", AuthorRole: domain.RoleClient,
					CreatedAt: ts("2024-03-29T10:05:00Z"), IsApproved: false, ArticleID: "3",
				},
			},
		},
	}
}

// SeedAuditLog returns the demo audit history, oldest first.
func SeedAuditLog() []domain.AuditLogEntry {
	entry := func(id string, action domain.AuditAction, userID, username string, role domain.Role, at, ip, details string) domain.AuditLogEntry {
		return domain.AuditLogEntry{
			ID: id, Action: action, UserID: userID, Username: username, UserRole: role,
			Timestamp: ts(at), IPAddress: ip, Details: details,
		}
	}
	return []domain.AuditLogEntry{
		entry("1", domain.ActionLogin, "1", "admin", domain.RoleAdmin, "2024-04-15T08:30:00Z", "192.168.1.1", "Successful login"),
		entry("2", domain.ActionCreateNews, "1", "admin", domain.RoleAdmin, "2024-04-15T09:15:00Z", "192.168.1.1", "Created news ID:1 'New MP-20 profiled sheet line with increased strength'"),
		entry("3", domain.ActionLogin, "2", "partner", domain.RolePartner, "2024-04-15T10:00:00Z", "192.168.1.2", "Successful login"),
		entry("4", domain.ActionCreateNews, "2", "partner", domain.RolePartner, "2024-04-15T10:30:00Z", "192.168.1.2", "Created news ID:2 'New distribution centre opens in Kazan'"),
		entry("5", domain.ActionLogin, "3", "client", domain.RoleClient, "2024-04-15T11:20:00Z", "192.168.1.3", "Successful login"),
		entry("6", domain.ActionAddComment, "3", "client", domain.RoleClient, "2024-04-15T11:30:00Z", "192.168.1.3", "Added comment to news ID:1"),
		entry("7", domain.ActionApproveComment, "1", "admin", domain.RoleAdmin, "2024-04-15T12:00:00Z", "192.168.1.1", "Approved comment ID:101 on news ID:1"),
	}
}

// SeedSiteStats returns the demo dashboard numbers.
func SeedSiteStats() domain.SiteStats {
	return domain.SiteStats{
		TotalVisits:       1247,
		UniqueVisitors:    845,
		PageViews:         3680,
		AverageTimeOnSite: "3m 45s",
		TopPages: []domain.PageViews{
			{Page: "Home", Views: 1200},
			{Page: "News", Views: 850},
			{Page: "Contacts", Views: 520},
			{Page: "About", Views: 480},
			{Page: "Catalog", Views: 430},
		},
		VisitsByDay: []domain.DailyVisits{
			{Date: "2024-04-09", Visits: 120},
			{Date: "2024-04-10", Visits: 140},
			{Date: "2024-04-11", Visits: 135},
			{Date: "2024-04-12", Visits: 160},
			{Date: "2024-04-13", Visits: 180},
			{Date: "2024-04-14", Visits: 190},
			{Date: "2024-04-15", Visits: 210},
		},
	}
}

// Seed fills empty stores with the demo data. hash turns each plaintext
// secret into the stored credential hash.
func Seed(ctx context.Context, users *UserRepository, news *NewsRepository, audit *AuditRepository, hash func(string) (string, error)) error {
	for _, su := range SeedUsers() {
		h, err := hash(su.Secret)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.User.Username, err)
		}
		u := su.User
		if _, err := users.Create(ctx, &u, domain.Credential{Username: u.Username, SecretHash: h}); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}

	articles := SeedArticles()
	for i := len(articles) - 1; i >= 0; i-- {
		if err := news.Insert(ctx, articles[i]); err != nil {
			return fmt.Errorf("seed article %s: %w", articles[i].ID, err)
		}
	}

	for _, e := range SeedAuditLog() {
		if err := audit.Append(ctx, e); err != nil {
			return fmt.Errorf("seed audit %s: %w", e.ID, err)
		}
	}
	return nil
}
