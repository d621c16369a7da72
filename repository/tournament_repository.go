package repository

import (
	"context"
	"errors"
	"fmt"

	"gamblelog/database"
	"gamblelog/models"
	"gamblelog/service"

	"github.com/jackc/pgx/v5"
)

const tournamentColumns = `id, creator_id, name, entry_fee, starts_at, ends_at, state,
	total_pot, winner_id, created_at, finished_at`

// TournamentRepository implements all tournament related data access
type TournamentRepository struct {
	q queryable
}

// NewTournamentRepository creates a new tournament repository
func NewTournamentRepository(db *database.DB) *TournamentRepository {
	return &TournamentRepository{q: db.Pool}
}

// newTournamentRepositoryWithTx creates a new tournament repository with a transaction
func newTournamentRepositoryWithTx(tx queryable) service.TournamentRepository {
	return &TournamentRepository{q: tx}
}

func scanTournament(row pgx.Row) (*models.Tournament, error) {
	var t models.Tournament
	err := row.Scan(
		&t.ID,
		&t.CreatorID,
		&t.Name,
		&t.EntryFee,
		&t.StartsAt,
		&t.EndsAt,
		&t.State,
		&t.TotalPot,
		&t.WinnerID,
		&t.CreatedAt,
		&t.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a tournament
func (r *TournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (creator_id, name, entry_fee, starts_at, ends_at, state, total_pot)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		tournament.CreatorID,
		tournament.Name,
		tournament.EntryFee,
		tournament.StartsAt,
		tournament.EndsAt,
		tournament.State,
		tournament.TotalPot,
	).Scan(&tournament.ID, &tournament.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}

	return nil
}

func (r *TournamentRepository) getByID(ctx context.Context, id int64, lock bool) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	tournament, err := scanTournament(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}

	return tournament, nil
}

// GetByID retrieves a tournament by ID
func (r *TournamentRepository) GetByID(ctx context.Context, id int64) (*models.Tournament, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate retrieves a tournament and locks its row
func (r *TournamentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Tournament, error) {
	return r.getByID(ctx, id, true)
}

// Update persists state, pot and result fields
func (r *TournamentRepository) Update(ctx context.Context, tournament *models.Tournament) error {
	query := `
		UPDATE tournaments
		SET state = $1, total_pot = $2, winner_id = $3, finished_at = $4
		WHERE id = $5
	`

	result, err := r.q.Exec(ctx, query,
		tournament.State,
		tournament.TotalPot,
		tournament.WinnerID,
		tournament.FinishedAt,
		tournament.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", tournament.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tournament %d: %w", tournament.ID, service.ErrNotFound)
	}

	return nil
}

// List returns tournaments, newest first, optionally filtered by state
func (r *TournamentRepository) List(ctx context.Context, state *models.TournamentState) ([]*models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE ($1::text IS NULL OR state = $1)
		ORDER BY created_at DESC, id DESC
	`

	var stateArg *string
	if state != nil {
		s := string(*state)
		stateArg = &s
	}

	rows, err := r.q.Query(ctx, query, stateArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		tournament, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, tournament)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tournaments: %w", err)
	}

	return tournaments, nil
}

// AddEntry inserts an entry; joining twice fails with ErrConflict
func (r *TournamentRepository) AddEntry(ctx context.Context, entry *models.TournamentEntry) error {
	query := `
		INSERT INTO tournament_entries (tournament_id, user_id, balance_history_id)
		VALUES ($1, $2, $3)
		RETURNING id, score, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.TournamentID,
		entry.UserID,
		entry.BalanceHistoryID,
	).Scan(&entry.ID, &entry.Score, &entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %d already joined tournament %d: %w", entry.UserID, entry.TournamentID, service.ErrConflict)
		}
		return fmt.Errorf("failed to add entry to tournament %d: %w", entry.TournamentID, err)
	}

	return nil
}

const entrySelect = `
	SELECT e.id, e.tournament_id, e.user_id, u.username, e.score, e.rank, e.payout,
	       e.balance_history_id, e.created_at
	FROM tournament_entries e
	JOIN users u ON u.id = e.user_id
`

func scanEntry(row pgx.Row) (*models.TournamentEntry, error) {
	var entry models.TournamentEntry
	err := row.Scan(
		&entry.ID,
		&entry.TournamentID,
		&entry.UserID,
		&entry.Username,
		&entry.Score,
		&entry.Rank,
		&entry.Payout,
		&entry.BalanceHistoryID,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetEntry returns a user's entry in a tournament
func (r *TournamentRepository) GetEntry(ctx context.Context, tournamentID, userID int64) (*models.TournamentEntry, error) {
	query := entrySelect + ` WHERE e.tournament_id = $1 AND e.user_id = $2`

	entry, err := scanEntry(r.q.QueryRow(ctx, query, tournamentID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry of user %d in tournament %d: %w", userID, tournamentID, err)
	}

	return entry, nil
}

// GetEntries returns the entries of a tournament in join order
func (r *TournamentRepository) GetEntries(ctx context.Context, tournamentID int64) ([]*models.TournamentEntry, error) {
	query := entrySelect + ` WHERE e.tournament_id = $1 ORDER BY e.created_at, e.id`

	rows, err := r.q.Query(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	var entries []*models.TournamentEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tournament entries: %w", err)
	}

	return entries, nil
}

// UpdateEntry persists score, rank, payout and the linked balance history row
func (r *TournamentRepository) UpdateEntry(ctx context.Context, entry *models.TournamentEntry) error {
	query := `
		UPDATE tournament_entries
		SET score = $1, rank = $2, payout = $3, balance_history_id = $4
		WHERE id = $5
	`

	result, err := r.q.Exec(ctx, query,
		entry.Score,
		entry.Rank,
		entry.Payout,
		entry.BalanceHistoryID,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament entry %d: %w", entry.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tournament entry %d: %w", entry.ID, service.ErrNotFound)
	}

	return nil
}
