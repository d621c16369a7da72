package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"gamblelog/config"
	"gamblelog/events"
	"gamblelog/models"
)

const maxTournamentNameLength = 64

type tournamentService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
	now        func() time.Time
}

// NewTournamentService creates a new tournament service
func NewTournamentService(uowFactory UnitOfWorkFactory, cfg *config.Config) TournamentService {
	return &tournamentService{
		uowFactory: uowFactory,
		config:     cfg,
		now:        time.Now,
	}
}

func relatedTypePtr(rt models.RelatedType) *models.RelatedType {
	return &rt
}

// CreateTournament opens a new tournament scored over [startsAt, endsAt)
func (s *tournamentService) CreateTournament(ctx context.Context, creatorID int64, name string, entryFee int64, startsAt, endsAt time.Time) (*models.Tournament, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxTournamentNameLength {
		return nil, fmt.Errorf("name must be 1 to %d characters: %w", maxTournamentNameLength, ErrInvalidInput)
	}
	if entryFee < 0 {
		return nil, fmt.Errorf("entry fee must not be negative: %w", ErrInvalidInput)
	}
	if !startsAt.Before(endsAt) {
		return nil, fmt.Errorf("tournament must start before it ends: %w", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	creator, err := uow.UserRepository().GetByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	if creator == nil {
		return nil, fmt.Errorf("creator %d: %w", creatorID, ErrNotFound)
	}

	tournament := &models.Tournament{
		CreatorID: creatorID,
		Name:      name,
		EntryFee:  entryFee,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		State:     models.TournamentStateOpen,
		TotalPot:  0,
	}
	if err := uow.TournamentRepository().Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return tournament, nil
}

// JoinTournament enters a user and moves the entry fee from their points into the pot
func (s *tournamentService) JoinTournament(ctx context.Context, tournamentID, userID int64, now time.Time) (*models.TournamentEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tournament, err := uow.TournamentRepository().GetByIDForUpdate(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament == nil {
		return nil, fmt.Errorf("tournament %d: %w", tournamentID, ErrNotFound)
	}
	if !tournament.CanAcceptEntries(now) {
		return nil, fmt.Errorf("tournament %d no longer accepts entries: %w", tournamentID, ErrConflict)
	}

	existing, err := uow.TournamentRepository().GetEntry(ctx, tournamentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing entry: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("already joined tournament %d: %w", tournamentID, ErrConflict)
	}

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	entry := &models.TournamentEntry{
		TournamentID: tournamentID,
		UserID:       userID,
		Username:     user.Username,
	}

	if tournament.EntryFee > 0 {
		if user.Balance < tournament.EntryFee {
			return nil, fmt.Errorf("have %d points, entry fee is %d: %w", user.Balance, tournament.EntryFee, ErrInsufficientBalance)
		}
		if err := uow.UserRepository().DeductBalance(ctx, userID, tournament.EntryFee); err != nil {
			return nil, fmt.Errorf("failed to deduct entry fee: %w", err)
		}

		history := &models.BalanceHistory{
			UserID:          userID,
			BalanceBefore:   user.Balance,
			BalanceAfter:    user.Balance - tournament.EntryFee,
			ChangeAmount:    -tournament.EntryFee,
			TransactionType: models.TransactionTypeTournamentEntry,
			TransactionMetadata: map[string]any{
				"tournament_id":   tournamentID,
				"tournament_name": tournament.Name,
			},
			RelatedID:   &tournamentID,
			RelatedType: relatedTypePtr(models.RelatedTypeTournament),
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return nil, fmt.Errorf("failed to record entry fee: %w", err)
		}
		entry.BalanceHistoryID = &history.ID

		tournament.TotalPot += tournament.EntryFee
		if err := uow.TournamentRepository().Update(ctx, tournament); err != nil {
			return nil, fmt.Errorf("failed to update tournament pot: %w", err)
		}
	}

	if err := uow.TournamentRepository().AddEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add entry: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entry, nil
}

// rankEntries sets scores and ranks in place and returns entries by rank.
// Entries must be in join order; equal scores keep it.
func rankEntries(entries []*models.TournamentEntry, scores map[int64]int64) []*models.TournamentEntry {
	ranked := make([]*models.TournamentEntry, len(entries))
	copy(ranked, entries)

	for _, entry := range ranked {
		entry.Score = scores[entry.UserID]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i, entry := range ranked {
		rank := i + 1
		entry.Rank = &rank
	}

	return ranked
}

func (s *tournamentService) liveStandings(ctx context.Context, uow UnitOfWork, tournament *models.Tournament) ([]*models.TournamentEntry, error) {
	entries, err := uow.TournamentRepository().GetEntries(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	userIDs := make([]int64, len(entries))
	for i, entry := range entries {
		userIDs[i] = entry.UserID
	}

	scores, err := uow.RecordRepository().SumProfitByUsers(ctx, userIDs, tournament.StartsAt, tournament.EndsAt)
	if err != nil {
		return nil, fmt.Errorf("failed to score entries: %w", err)
	}

	return rankEntries(entries, scores), nil
}

// GetTournament returns the tournament with its standings.
// Open tournaments are scored live; finished ones show the stored result.
func (s *tournamentService) GetTournament(ctx context.Context, tournamentID int64) (*models.TournamentDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tournament, err := uow.TournamentRepository().GetByID(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament == nil {
		return nil, fmt.Errorf("tournament %d: %w", tournamentID, ErrNotFound)
	}

	var entries []*models.TournamentEntry
	switch tournament.State {
	case models.TournamentStateOpen:
		entries, err = s.liveStandings(ctx, uow, tournament)
		if err != nil {
			return nil, err
		}
	default:
		entries, err = uow.TournamentRepository().GetEntries(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get entries: %w", err)
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return rankOf(entries[i]) < rankOf(entries[j])
		})
	}

	return &models.TournamentDetail{Tournament: tournament, Entries: entries}, nil
}

func rankOf(entry *models.TournamentEntry) int {
	if entry.Rank == nil {
		return int(^uint(0) >> 1)
	}
	return *entry.Rank
}

// SplitPot divides pot across the top places. Percentages are renormalised over
// the places actually used and the integer remainder goes to first place.
func SplitPot(pot int64, split []int, entrants int) []int64 {
	if entrants <= 0 || pot <= 0 {
		return make([]int64, max(entrants, 0))
	}

	payouts := make([]int64, entrants)
	places := min(len(split), entrants)
	if places == 0 {
		payouts[0] = pot
		return payouts
	}

	total := 0
	for _, pct := range split[:places] {
		total += pct
	}

	var paid int64
	for i := 0; i < places; i++ {
		payouts[i] = pot * int64(split[i]) / int64(total)
		paid += payouts[i]
	}
	payouts[0] += pot - paid

	return payouts
}

// FinishTournament ranks entrants, pays out the pot and closes the tournament
func (s *tournamentService) FinishTournament(ctx context.Context, tournamentID, actorID int64, now time.Time) (*models.TournamentResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tournament, err := uow.TournamentRepository().GetByIDForUpdate(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament == nil {
		return nil, fmt.Errorf("tournament %d: %w", tournamentID, ErrNotFound)
	}
	if !tournament.IsOpen() {
		return nil, fmt.Errorf("tournament %d is %s: %w", tournamentID, tournament.State, ErrConflict)
	}
	if !tournament.CanBeFinishedBy(actorID, now) {
		return nil, fmt.Errorf("only the creator can finish tournament %d before it ends: %w", tournamentID, ErrForbidden)
	}

	standings, err := s.liveStandings(ctx, uow, tournament)
	if err != nil {
		return nil, err
	}

	payouts := SplitPot(tournament.TotalPot, s.config.TournamentPayoutSplit, len(standings))
	payoutDetails := make(map[int64]int64, len(standings))

	transactionType := models.TransactionTypeTournamentPayout
	if len(standings) == 1 {
		transactionType = models.TransactionTypeTournamentRefund
	}

	for i, entry := range standings {
		payout := payouts[i]
		entry.Payout = &payout
		payoutDetails[entry.UserID] = payout

		if payout > 0 {
			historyID, err := s.creditPoints(ctx, uow, tournament, entry.UserID, payout, transactionType, *entry.Rank)
			if err != nil {
				return nil, err
			}
			entry.BalanceHistoryID = &historyID
		}

		if err := uow.TournamentRepository().UpdateEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to update entry: %w", err)
		}
	}

	tournament.State = models.TournamentStateFinished
	tournament.FinishedAt = &now
	var winnerName string
	if len(standings) > 0 {
		winnerID := standings[0].UserID
		tournament.WinnerID = &winnerID
		winnerName = standings[0].Username
	}

	if err := uow.TournamentRepository().Update(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to update finished tournament: %w", err)
	}

	uow.EventBus().Publish(events.TournamentFinishedEvent{
		TournamentID: tournament.ID,
		Name:         tournament.Name,
		WinnerID:     tournament.WinnerID,
		WinnerName:   winnerName,
		TotalPot:     tournament.TotalPot,
		Entrants:     len(standings),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.TournamentResult{
		Tournament:    tournament,
		Standings:     standings,
		TotalPot:      tournament.TotalPot,
		PayoutDetails: payoutDetails,
	}, nil
}

func (s *tournamentService) creditPoints(ctx context.Context, uow UnitOfWork, tournament *models.Tournament, userID, amount int64, transactionType models.TransactionType, rank int) (int64, error) {
	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	if user == nil {
		return 0, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	if err := uow.UserRepository().AddBalance(ctx, userID, amount); err != nil {
		return 0, fmt.Errorf("failed to credit user %d: %w", userID, err)
	}

	metadata := map[string]any{
		"tournament_id":   tournament.ID,
		"tournament_name": tournament.Name,
	}
	if rank > 0 {
		metadata["rank"] = rank
	}

	history := &models.BalanceHistory{
		UserID:              userID,
		BalanceBefore:       user.Balance,
		BalanceAfter:        user.Balance + amount,
		ChangeAmount:        amount,
		TransactionType:     transactionType,
		TransactionMetadata: metadata,
		RelatedID:           &tournament.ID,
		RelatedType:         relatedTypePtr(models.RelatedTypeTournament),
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return 0, fmt.Errorf("failed to record %s: %w", transactionType, err)
	}

	return history.ID, nil
}

// CancelTournament closes an open tournament and refunds every entry fee
func (s *tournamentService) CancelTournament(ctx context.Context, tournamentID, actorID int64) (*models.Tournament, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tournament, err := uow.TournamentRepository().GetByIDForUpdate(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament == nil {
		return nil, fmt.Errorf("tournament %d: %w", tournamentID, ErrNotFound)
	}
	if tournament.CreatorID != actorID {
		return nil, fmt.Errorf("only the creator can cancel tournament %d: %w", tournamentID, ErrForbidden)
	}
	if !tournament.IsOpen() {
		return nil, fmt.Errorf("tournament %d is %s: %w", tournamentID, tournament.State, ErrConflict)
	}

	entries, err := uow.TournamentRepository().GetEntries(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}

	if tournament.EntryFee > 0 {
		for _, entry := range entries {
			historyID, err := s.creditPoints(ctx, uow, tournament, entry.UserID, tournament.EntryFee, models.TransactionTypeTournamentRefund, 0)
			if err != nil {
				return nil, err
			}
			refund := tournament.EntryFee
			entry.Payout = &refund
			entry.BalanceHistoryID = &historyID
			if err := uow.TournamentRepository().UpdateEntry(ctx, entry); err != nil {
				return nil, fmt.Errorf("failed to update entry: %w", err)
			}
		}
	}

	now := s.now()
	tournament.State = models.TournamentStateCancelled
	tournament.FinishedAt = &now
	if err := uow.TournamentRepository().Update(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to update cancelled tournament: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return tournament, nil
}

// ListTournaments returns tournaments, optionally only those in state
func (s *tournamentService) ListTournaments(ctx context.Context, state *models.TournamentState) ([]*models.Tournament, error) {
	if state != nil {
		switch *state {
		case models.TournamentStateOpen, models.TournamentStateFinished, models.TournamentStateCancelled:
		default:
			return nil, fmt.Errorf("unknown tournament state %q: %w", *state, ErrInvalidInput)
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tournaments, err := uow.TournamentRepository().List(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	return tournaments, nil
}
