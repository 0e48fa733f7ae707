// Package seed loads the starter feed and demo user on first boot.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"waste-hunt-api/models"
	"waste-hunt-api/store"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed reports.yaml
var defaultData []byte

type report struct {
	Title        string              `yaml:"title"`
	Description  string              `yaml:"description"`
	Amount       int64               `yaml:"amount"`
	Location     string              `yaml:"location"`
	Year         int                 `yaml:"year"`
	Source       models.ReportSource `yaml:"source"`
	AuthorHandle string              `yaml:"author_handle"`
	PlatformIcon string              `yaml:"platform_icon"`
	PostURL      string              `yaml:"post_url"`
}

type Data struct {
	Users   []string `yaml:"users"`
	Reports []report `yaml:"reports"`
}

// Default returns the embedded seed set.
func Default() (*Data, error) {
	return Parse(defaultData)
}

func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	for i, r := range data.Reports {
		switch r.Source {
		case "", models.SourceOfficial, models.SourceSocial, models.SourceUserSubmitted:
		default:
			return nil, fmt.Errorf("seed report %d (%s): unknown source %q", i, r.Title, r.Source)
		}
	}
	return &data, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r report) model() *models.Report {
	return &models.Report{
		Title:        r.Title,
		Description:  r.Description,
		Amount:       r.Amount,
		Location:     r.Location,
		Year:         r.Year,
		Source:       r.Source,
		AuthorHandle: optional(r.AuthorHandle),
		PlatformIcon: optional(r.PlatformIcon),
		PostURL:      optional(r.PostURL),
	}
}

// Run inserts reports when the feed is empty and users when nobody has
// registered yet. Running it again is a no-op.
func Run(ctx context.Context, ledger store.Ledger, data *Data, log logrus.FieldLogger) error {
	existing, err := ledger.ListReports(ctx)
	if err != nil {
		return fmt.Errorf("check existing reports: %w", err)
	}
	if len(existing) == 0 {
		for _, r := range data.Reports {
			if err := ledger.AddReport(ctx, r.model()); err != nil {
				return fmt.Errorf("seed report %q: %w", r.Title, err)
			}
		}
		log.WithField("count", len(data.Reports)).Info("🌱 Sample waste items initialized")
	}

	users, err := ledger.TopUsers(ctx, 1)
	if err != nil {
		return fmt.Errorf("check existing users: %w", err)
	}
	if len(users) == 0 {
		for _, name := range data.Users {
			if err := ledger.CreateUser(ctx, &models.User{Username: name, Rank: models.DefaultRank}); err != nil {
				return fmt.Errorf("seed user %q: %w", name, err)
			}
		}
		log.WithField("count", len(data.Users)).Info("🌱 Sample users created")
	}
	return nil
}
