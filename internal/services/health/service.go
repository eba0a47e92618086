package health

import (
	"context"
	"database/sql"
	"time"

	"resume-converter/internal/conversions"
)

// Service encapsulates readiness checks for the API.
type Service struct {
	DB        *sql.DB
	Templates conversions.TemplateSource
}

// NewService constructs a health service. Both dependencies are optional;
// absent ones are reported as skipped rather than failing.
func NewService(db *sql.DB, templates conversions.TemplateSource) *Service {
	return &Service{DB: db, Templates: templates}
}

// Report is the health payload.
type Report struct {
	OK       bool   `json:"ok"`
	DB       string `json:"db"`
	Template string `json:"template"`
}

// Status probes the database and the output template.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true, DB: "skipped", Template: "skipped"}

	if s.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.DB.PingContext(pingCtx); err != nil {
			report.OK = false
			report.DB = "down"
		} else {
			report.DB = "ok"
		}
	}

	if s.Templates != nil {
		if _, err := s.Templates.Load(ctx); err != nil {
			report.OK = false
			report.Template = "missing"
		} else {
			report.Template = "ok"
		}
	}

	return report
}
