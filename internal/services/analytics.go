package services

import (
	"context"
	"fmt"
	"time"

	"boarddash/internal/models"
	"boarddash/internal/store"
)

const (
	DefaultMonthWindow = 12
	DefaultDayWindow   = 7
	ActiveUserWindow   = 30 * 24 * time.Hour
	recentLimit        = 5
)

// Summary holds the dashboard's headline counts.
type Summary struct {
	Users     int64
	Posts     int64
	Comments  int64
	Likes     int64
	Bookmarks int64
}

// Bucket is one period of an active-user series.
type Bucket struct {
	Label string
	Start time.Time
	Count int64
}

// Series is an oldest-first run of buckets.
type Series []Bucket

func (s Series) Labels() []string {
	out := make([]string, len(s))
	for i, b := range s {
		out[i] = b.Label
	}
	return out
}

func (s Series) Counts() []int64 {
	out := make([]int64, len(s))
	for i, b := range s {
		out[i] = b.Count
	}
	return out
}

// Distribution is a labelled breakdown for the content chart.
type Distribution struct {
	Labels []string
	Values []int64
}

// DashboardData is everything the staff dashboard renders.
type DashboardData struct {
	Summary       Summary
	MonthlyActive int64
	Monthly       Series
	Daily         Series
	Distribution  Distribution
	RecentUsers   []models.User
	RecentPosts   []models.Post
}

// AnalyticsService computes dashboard numbers. Calendar buckets are cut in
// loc, never in the server's local zone.
type AnalyticsService struct {
	users     store.UserRepository
	posts     store.PostRepository
	comments  store.CommentRepository
	reactions store.ReactionRepository
	loc       *time.Location
	now       func() time.Time
}

func NewAnalyticsService(s *store.Store, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{
		users:     s.Users,
		posts:     s.Posts,
		comments:  s.Comments,
		reactions: s.Reactions,
		loc:       loc,
		now:       time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

func (s *AnalyticsService) SummaryCounts(ctx context.Context) (Summary, error) {
	var (
		sum Summary
		err error
	)
	if sum.Users, err = s.users.Count(ctx); err != nil {
		return sum, fmt.Errorf("count users: %w", err)
	}
	if sum.Posts, err = s.posts.Count(ctx); err != nil {
		return sum, fmt.Errorf("count posts: %w", err)
	}
	if sum.Comments, err = s.comments.Count(ctx); err != nil {
		return sum, fmt.Errorf("count comments: %w", err)
	}
	if sum.Likes, err = s.reactions.Count(ctx, store.KindLike); err != nil {
		return sum, fmt.Errorf("count likes: %w", err)
	}
	if sum.Bookmarks, err = s.reactions.Count(ctx, store.KindBookmark); err != nil {
		return sum, fmt.Errorf("count bookmarks: %w", err)
	}
	return sum, nil
}

// MonthlyActiveUsers returns one bucket per calendar month, current month
// last, counting users whose last login falls in that month.
func (s *AnalyticsService) MonthlyActiveUsers(ctx context.Context, months int) (Series, error) {
	if months <= 0 {
		months = DefaultMonthWindow
	}
	now := s.now().In(s.loc)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	start := current.AddDate(0, -(months - 1), 0)
	end := current.AddDate(0, 1, 0)

	buckets := make(Series, months)
	for i := range buckets {
		b := start.AddDate(0, i, 0)
		buckets[i] = Bucket{Label: b.Format("2006-01"), Start: b}
	}
	if err := s.fill(ctx, buckets, start, end, "2006-01"); err != nil {
		return nil, fmt.Errorf("monthly active users: %w", err)
	}
	return buckets, nil
}

// DailyActiveUsers returns one bucket per calendar day, today last.
func (s *AnalyticsService) DailyActiveUsers(ctx context.Context, days int) (Series, error) {
	if days <= 0 {
		days = DefaultDayWindow
	}
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	start := today.AddDate(0, 0, -(days - 1))
	end := today.AddDate(0, 0, 1)

	buckets := make(Series, days)
	for i := range buckets {
		b := start.AddDate(0, 0, i)
		buckets[i] = Bucket{Label: b.Format("01-02"), Start: b}
	}
	if err := s.fill(ctx, buckets, start, end, "2006-01-02"); err != nil {
		return nil, fmt.Errorf("daily active users: %w", err)
	}
	return buckets, nil
}

// fill loads login times in [start, end) with one query and counts them into
// buckets by their calendar key in s.loc.
func (s *AnalyticsService) fill(ctx context.Context, buckets Series, start, end time.Time, keyLayout string) error {
	times, err := s.users.LoginTimesBetween(ctx, start, end)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Start.Format(keyLayout)] = i
	}
	for _, t := range times {
		if i, ok := index[t.In(s.loc).Format(keyLayout)]; ok {
			buckets[i].Count++
		}
	}
	return nil
}

// ActiveUsersSince counts users who logged in within the trailing window d.
func (s *AnalyticsService) ActiveUsersSince(ctx context.Context, d time.Duration) (int64, error) {
	n, err := s.users.CountActiveSince(ctx, s.now().Add(-d))
	if err != nil {
		return 0, fmt.Errorf("active users: %w", err)
	}
	return n, nil
}

// ContentDistribution pairs fixed labels with the summary's content counts.
func ContentDistribution(sum Summary) Distribution {
	return Distribution{
		Labels: []string{"posts", "comments", "likes", "bookmarks"},
		Values: []int64{sum.Posts, sum.Comments, sum.Likes, sum.Bookmarks},
	}
}

// Dashboard assembles the full dashboard view.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*DashboardData, error) {
	sum, err := s.SummaryCounts(ctx)
	if err != nil {
		return nil, err
	}
	data := &DashboardData{
		Summary:      sum,
		Distribution: ContentDistribution(sum),
	}

	if data.MonthlyActive, err = s.ActiveUsersSince(ctx, ActiveUserWindow); err != nil {
		return nil, err
	}
	if data.Monthly, err = s.MonthlyActiveUsers(ctx, DefaultMonthWindow); err != nil {
		return nil, err
	}
	if data.Daily, err = s.DailyActiveUsers(ctx, DefaultDayWindow); err != nil {
		return nil, err
	}
	if data.RecentUsers, err = s.users.Recent(ctx, recentLimit); err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}
	if data.RecentPosts, err = s.posts.Recent(ctx, recentLimit); err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	return data, nil
}
