package stats

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"minilibrary/internal/access"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Dashboard runs every reporting query concurrently and fails if any of
// them fails.
func (s *Service) Dashboard(ctx context.Context, actor access.Actor) (Dashboard, error) {
	if err := actor.Authorize(access.MinRole(access.Librarian)); err != nil {
		return Dashboard{}, err
	}
	now := s.now().UTC()

	var (
		d       Dashboard
		buckets []MonthBucket
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TotalBooks, err = s.repo.CountBooks(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalUsers, err = s.repo.CountUsers(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.ActiveCheckouts, err = s.repo.CountActive(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.OverdueCount, err = s.repo.CountOverdue(ctx, now)
		return err
	})
	g.Go(func() (err error) {
		d.RecentTransactions, err = s.repo.RecentTransactions(ctx, RecentLimit)
		return err
	})
	g.Go(func() (err error) {
		d.GenreCounts, err = s.repo.GenreCounts(ctx, GenreLimit)
		return err
	})
	g.Go(func() (err error) {
		buckets, err = s.repo.CheckoutsByMonth(ctx, WindowStart(now))
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	for i := range d.GenreCounts {
		if d.GenreCounts[i].Genre == "" {
			d.GenreCounts[i].Genre = UnknownGenre
		}
	}
	d.MonthlyCheckouts = MonthlySeries(buckets, now)
	return d, nil
}
