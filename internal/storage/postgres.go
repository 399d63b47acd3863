package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() {
	p.pool.Close()
}

// --- CalendarEntryRepository ---
func (p *PostgresStorage) ListCalendarEntries(ctx context.Context, userID string, from, to time.Time) ([]internal.CalendarEntry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, title, COALESCE(description, ''), date, time, type, COALESCE(category, '')
         FROM calendar_events
         WHERE user_id = $1 AND date >= $2 AND date < $3
         ORDER BY date, time`,
		userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		p.logger.Errorf("failed to query calendar events: %v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []internal.CalendarEntry
	for rows.Next() {
		var e internal.CalendarEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Type, &e.Category); err != nil {
			p.logger.Errorf("failed to scan calendar event: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// --- ActionItemRepository ---
func (p *PostgresStorage) ListActionItems(ctx context.Context, userID string) ([]internal.ActionItem, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, title, COALESCE(description, ''), date, start_time, duration_minutes, status, action_type, COALESCE(focus_area, '')
         FROM daily_actions
         WHERE user_id = $1
         ORDER BY date`,
		userID)
	if err != nil {
		p.logger.Errorf("failed to query daily actions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []internal.ActionItem
	for rows.Next() {
		var a internal.ActionItem
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Description, &a.Date, &a.StartTime, &a.DurationMinutes, &a.Status, &a.ActionType, &a.FocusArea); err != nil {
			p.logger.Errorf("failed to scan daily action: %v", err)
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// --- CommitmentRepository ---
func (p *PostgresStorage) ListScheduledCommitments(ctx context.Context, userID string) ([]internal.Commitment, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, action_text, scheduled_date, scheduled_time, status, action_type, COALESCE(category, '')
         FROM extracted_actions
         WHERE user_id = $1 AND scheduled_date IS NOT NULL
         ORDER BY scheduled_date`,
		userID)
	if err != nil {
		p.logger.Errorf("failed to query extracted actions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var commitments []internal.Commitment
	for rows.Next() {
		var c internal.Commitment
		if err := rows.Scan(&c.ID, &c.UserID, &c.ActionText, &c.ScheduledDate, &c.ScheduledTime, &c.Status, &c.ActionType, &c.Category); err != nil {
			p.logger.Errorf("failed to scan extracted action: %v", err)
			return nil, err
		}
		commitments = append(commitments, c)
	}
	return commitments, rows.Err()
}

// --- SurveyRepository ---
func (p *PostgresStorage) LatestCompletedSurvey(ctx context.Context, userID string) (*internal.Survey, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, user_id, answers, status, created_at
         FROM surveys
         WHERE user_id = $1 AND status = 'completed'
         ORDER BY created_at DESC LIMIT 1`,
		userID)
	var s internal.Survey
	if err := row.Scan(&s.ID, &s.UserID, &s.Answers, &s.Status, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSurveyNotFound
		}
		p.logger.Errorf("failed to load survey: %v", err)
		return nil, err
	}
	return &s, nil
}

func (p *PostgresStorage) SaveSurvey(ctx context.Context, survey *internal.Survey) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO surveys (id, user_id, answers, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		survey.ID, survey.UserID, survey.Answers, survey.Status, survey.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert survey: %v", err)
		return err
	}
	return nil
}

// --- Compile-time assertions ---
var _ CalendarEntryRepository = (*PostgresStorage)(nil)
var _ ActionItemRepository = (*PostgresStorage)(nil)
var _ CommitmentRepository = (*PostgresStorage)(nil)
var _ SurveyRepository = (*PostgresStorage)(nil)
