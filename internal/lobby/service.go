package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/moyeshkhanal/partyGames/internal/store"
)

// Options tune service policy. Zero values select the defaults.
type Options struct {
	// EnforceUniqueUsernames rejects joins whose name is already on the
	// roster (host-flagged joins are exempt).
	EnforceUniqueUsernames bool

	// MaxAttempts bounds both code allocation and the conditional-write
	// retry loop.
	MaxAttempts int

	// IntN draws the imposter index; defaults to math/rand. Injected so
	// tests can pin the selection.
	IntN func(n int) int

	// Now supplies timestamps; defaults to time.Now.
	Now func() time.Time
}

// Service orchestrates the lobby lifecycle against the record store. All
// lobby values it works on are private per-call copies; the store is the
// only shared state, and every mutation goes through a conditional write.
type Service struct {
	store  store.Store
	codes  *CodeAllocator
	logger *slog.Logger
	opts   Options
}

func NewService(st store.Store, logger *slog.Logger, opts Options) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = store.DefaultMaxAttempts
	}
	if opts.IntN == nil {
		opts.IntN = rand.Intn
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:  st,
		codes:  NewCodeAllocator(st, opts.MaxAttempts),
		logger: logger,
		opts:   opts,
	}
}

// CreateLobby allocates an unused code and stores a new lobby built from the
// seed's name, timestamp, and (optionally) players. The host is never
// assigned here; it is set by the first host-flagged join, in the same
// commit as the host's roster entry. When the create loses the
// allocate-then-write race to another client, the whole cycle re-runs with
// a fresh code.
func (s *Service) CreateLobby(ctx context.Context, seed Lobby) (string, error) {
	createdAt := seed.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.opts.Now()
	}

	for attempt := 0; attempt < s.opts.MaxAttempts; attempt++ {
		code, err := s.codes.Allocate(ctx)
		if err != nil {
			return "", err
		}

		l := Lobby{
			Code:      code,
			Name:      seed.Name,
			CreatedAt: createdAt,
			Players:   append([]Player(nil), seed.Players...),
		}
		rec, err := EncodeLobby(l)
		if err != nil {
			return "", err
		}

		err = s.store.Create(ctx, lobbyKey(code), rec)
		if errors.Is(err, store.ErrExists) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("storing lobby: %w", err)
		}

		s.logger.Info("lobby created", "lobbyId", code, "name", l.Name)
		return code, nil
	}

	return "", ErrCodesExhausted
}

// JoinLobby appends a new player to the lobby's roster and, when isHost is
// set, designates that player as host. Capacity and username uniqueness are
// validated inside the conditional-write cycle, so they hold against the
// roster as committed even under concurrent joins.
func (s *Service) JoinLobby(ctx context.Context, code, username string, isHost bool) (Player, error) {
	var joined Player

	err := store.Mutate(ctx, s.store, lobbyKey(code), s.opts.MaxAttempts, func(rec store.Record) (store.Record, error) {
		l, err := DecodeLobby(rec)
		if err != nil {
			return nil, err
		}

		if len(l.Players) >= MaxPlayers {
			return nil, ErrLobbyFull
		}
		if s.opts.EnforceUniqueUsernames && !isHost && l.HasPlayerName(username) {
			return nil, ErrUsernameTaken
		}

		joined = Player{
			ID:        uuid.NewString(),
			Name:      username,
			CreatedAt: s.opts.Now(),
			Score:     0,
		}
		l.Players = append(l.Players, joined)

		players, err := encodePlayers(l.Players)
		if err != nil {
			return nil, err
		}
		fields := store.Record{fieldPlayers: players}
		if isHost {
			fields[fieldHostID] = joined.ID
		}
		return fields, nil
	})
	if err != nil {
		return Player{}, s.mapStoreErr("joining lobby", code, err)
	}

	s.logger.Info("player joined", "lobbyId", code, "playerId", joined.ID, "isHost", isHost)
	return joined, nil
}

// StartGame picks one roster member uniformly at random as the imposter and
// writes the role briefings. The index is drawn against the roster fetched
// in the same conditional-write cycle that commits it, so the imposter id
// always references a member of the list as stored.
func (s *Service) StartGame(ctx context.Context, code string) error {
	err := store.Mutate(ctx, s.store, lobbyKey(code), s.opts.MaxAttempts, func(rec store.Record) (store.Record, error) {
		l, err := DecodeLobby(rec)
		if err != nil {
			return nil, err
		}

		if len(l.Players) < MinPlayersToStart {
			return nil, ErrNotEnoughPlayers
		}

		imposter := l.Players[s.opts.IntN(len(l.Players))]
		return store.Record{
			fieldImposterID:      imposter.ID,
			fieldImposterMessage: imposterBriefing,
			fieldPlayerMessage:   playerBriefing,
		}, nil
	})
	if err != nil {
		return s.mapStoreErr("starting game", code, err)
	}

	s.logger.Info("game started", "lobbyId", code)
	return nil
}

// DeleteLobby removes the lobby record. The second delete of the same code
// reports ErrLobbyNotFound; the record is gone either way.
func (s *Service) DeleteLobby(ctx context.Context, code string) error {
	if err := s.store.Delete(ctx, lobbyKey(code)); err != nil {
		return s.mapStoreErr("deleting lobby", code, err)
	}
	s.logger.Info("lobby deleted", "lobbyId", code)
	return nil
}

// ListPlayers fetches only the roster field. found is false when the lobby
// or its players field is absent; err reports store failures only.
func (s *Service) ListPlayers(ctx context.Context, code string) (players []Player, found bool, err error) {
	raw, ok, err := s.store.FetchField(ctx, lobbyKey(code), fieldPlayers)
	if err != nil {
		return nil, false, fmt.Errorf("listing players for %s: %w", code, err)
	}
	if !ok {
		return nil, false, nil
	}
	players, err = decodePlayers(raw)
	if err != nil {
		return nil, false, err
	}
	return players, true, nil
}

func (s *Service) mapStoreErr(op, code string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrLobbyNotFound
	}
	// Domain failures pass through untouched; everything else is a store
	// failure worth the operation context.
	switch {
	case errors.Is(err, ErrLobbyFull),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrNotEnoughPlayers):
		return err
	}
	return fmt.Errorf("%s %s: %w", op, code, err)
}
