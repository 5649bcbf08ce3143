package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bookworm/internal/domain"
	"bookworm/internal/ports"
)

// Delta is the change in an author's aggregate stats between their two most
// recent measurement rows.
type Delta struct {
	RatingCount   int
	AverageRating float64
	ReviewCount   int
	ShelvedCount  int
}

// ComputeDelta subtracts the previous measurement from the current one.
func ComputeDelta(curr, prev domain.AuthorMeasurement) Delta {
	return Delta{
		RatingCount:   curr.RatingCount - prev.RatingCount,
		AverageRating: curr.AverageRating - prev.AverageRating,
		ReviewCount:   curr.ReviewCount - prev.ReviewCount,
		ShelvedCount:  curr.ShelvedCount - prev.ShelvedCount,
	}
}

// AuthorReport is one author's line in the tracking report.
type AuthorReport struct {
	Name  string
	Curr  domain.AuthorMeasurement
	Delta *Delta // nil when only one measurement exists yet
}

// Reporter is a read-only consumer of the measurement history: it compares
// the two most recent snapshots per author and mails the result.
type Reporter struct {
	store  ports.AuthorStore
	sender ports.ReportSender
	logger *slog.Logger
}

// NewReporter wires the measurement store with an outbound sender.
func NewReporter(store ports.AuthorStore, sender ports.ReportSender, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{store: store, sender: sender, logger: logger}
}

// SendDaily builds and sends the tracking report for all tracked authors.
func (r *Reporter) SendDaily(ctx context.Context) error {
	reports, err := r.Collect(ctx)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		r.logger.Info("no tracked authors, skipping report")
		return nil
	}

	body := FormatReport(reports)
	if err := r.sender.Send(ctx, "Daily Author Tracking", body); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	r.logger.Info("report sent", "authors", len(reports))
	return nil
}

// Collect gathers the per-author deltas without sending anything.
func (r *Reporter) Collect(ctx context.Context) ([]AuthorReport, error) {
	authors, err := r.store.TrackedAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}

	var reports []AuthorReport
	for _, author := range authors {
		recent, err := r.store.RecentAuthorMeasurements(ctx, author.ID, 2)
		if err != nil {
			return nil, fmt.Errorf("measurements for %s: %w", author.Name, err)
		}
		if len(recent) == 0 {
			continue
		}

		report := AuthorReport{Name: author.Name, Curr: recent[0]}
		if len(recent) == 2 {
			delta := ComputeDelta(recent[0], recent[1])
			report.Delta = &delta
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// FormatReport renders the plain-text report body.
func FormatReport(reports []AuthorReport) string {
	var b strings.Builder
	for _, report := range reports {
		fmt.Fprintf(&b, "%s\n", report.Name)
		fmt.Fprintf(&b, "  average rating: %.2f\n", report.Curr.AverageRating)
		fmt.Fprintf(&b, "  ratings: %d, reviews: %d, shelved: %d\n",
			report.Curr.RatingCount, report.Curr.ReviewCount, report.Curr.ShelvedCount)
		if report.Delta != nil {
			fmt.Fprintf(&b, "  since last run: %+d ratings, %+d reviews, %+d shelved, %+.2f avg rating\n",
				report.Delta.RatingCount, report.Delta.ReviewCount,
				report.Delta.ShelvedCount, report.Delta.AverageRating)
		}
		b.WriteString("\n")
	}
	return b.String()
}
