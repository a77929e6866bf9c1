package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/nexus-arena/backend/models"
	"github.com/nexus-arena/backend/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore backs the fake repositories with shared in-memory state so
// cross-repository effects (result rows feeding stat recomputation) behave
// like the real database.
type fakeStore struct {
	mu sync.Mutex

	nextMatchID  int
	nextPlayerID int
	nextUserID   int
	nextRowID    int

	matches      map[int]*models.Match
	matchPlayers []*models.MatchPlayer
	players      map[int]*models.Player
	tournaments  map[int]*models.Tournament
	users        map[int]*models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		matches:     make(map[int]*models.Match),
		players:     make(map[int]*models.Player),
		tournaments: make(map[int]*models.Tournament),
		users:       make(map[int]*models.User),
	}
}

func (s *fakeStore) addPlayer(name string) *models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPlayerID++
	p := &models.Player{ID: s.nextPlayerID, UserID: s.nextPlayerID, PlayerName: name}
	s.players[p.ID] = p
	return p
}

func (s *fakeStore) addTournament(t *models.Tournament) *models.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = len(s.tournaments) + 1
	}
	s.tournaments[t.ID] = t
	return t
}

func (s *fakeStore) addMatch(m *models.Match) *models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMatchID++
	m.ID = s.nextMatchID
	if m.Status == "" {
		m.Status = models.MatchStatusScheduled
	}
	s.matches[m.ID] = m
	return m
}

// snapshot and restore give the fake transaction manager rollback semantics.
func (s *fakeStore) snapshot() *fakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := newFakeStore()
	snap.nextMatchID = s.nextMatchID
	snap.nextPlayerID = s.nextPlayerID
	snap.nextUserID = s.nextUserID
	snap.nextRowID = s.nextRowID
	for id, m := range s.matches {
		cp := *m
		snap.matches[id] = &cp
	}
	for _, mp := range s.matchPlayers {
		cp := *mp
		snap.matchPlayers = append(snap.matchPlayers, &cp)
	}
	for id, p := range s.players {
		cp := *p
		snap.players[id] = &cp
	}
	for id, tr := range s.tournaments {
		cp := *tr
		snap.tournaments[id] = &cp
	}
	for id, u := range s.users {
		cp := *u
		snap.users[id] = &cp
	}
	return snap
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMatchID = snap.nextMatchID
	s.nextPlayerID = snap.nextPlayerID
	s.nextUserID = snap.nextUserID
	s.nextRowID = snap.nextRowID
	s.matches = snap.matches
	s.matchPlayers = snap.matchPlayers
	s.players = snap.players
	s.tournaments = snap.tournaments
	s.users = snap.users
}

type fakeTxManager struct {
	store    *fakeStore
	beginErr error
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	snap := m.store.snapshot()
	if err := fn(nil); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeMatchRepo struct {
	store *fakeStore

	// forcedCodeCollisions makes the next N SetRoomCode calls fail as if the
	// generated code already existed.
	forcedCodeCollisions int
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.store.addMatch(match)
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeMatchRepo) GetByRoomCode(ctx context.Context, code string) (*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.matches {
		if m.RoomCode != nil && *m.RoomCode == code {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) List(ctx context.Context, tournamentID *int) ([]*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.store.matches {
		if tournamentID != nil && m.TournamentID != *tournamentID {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) ListPendingWithRoomCode(ctx context.Context) ([]*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.store.matches {
		if m.Status != models.MatchStatusCompleted && m.RoomCode != nil {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) ListRecentCompleted(ctx context.Context, limit int) ([]*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.store.matches {
		if m.Status == models.MatchStatusCompleted {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMatchRepo) ListCompletedByPlayer(ctx context.Context, playerID int, limit int) ([]*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	byMatch := make(map[int]bool)
	for _, mp := range r.store.matchPlayers {
		if mp.PlayerID == playerID {
			byMatch[mp.MatchID] = true
		}
	}
	out := make([]*models.Match, 0)
	for id := range byMatch {
		if m, ok := r.store.matches[id]; ok && m.Status == models.MatchStatusCompleted {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMatchRepo) Update(ctx context.Context, match *models.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	cp := *match
	r.store.matches[match.ID] = &cp
	return nil
}

func (r *fakeMatchRepo) SetRoomCode(ctx context.Context, id int, code string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.forcedCodeCollisions > 0 {
		r.forcedCodeCollisions--
		return repositories.ErrRoomCodeTaken
	}
	m, ok := r.store.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	for _, other := range r.store.matches {
		if other.ID != id && other.RoomCode != nil && *other.RoomCode == code {
			return repositories.ErrRoomCodeTaken
		}
	}
	m.RoomCode = &code
	return nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, scoreTeam1, scoreTeam2 int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	s1, s2 := scoreTeam1, scoreTeam2
	m.ScoreTeam1 = &s1
	m.ScoreTeam2 = &s2
	m.Status = models.MatchStatusCompleted
	return nil
}

type fakeMatchPlayerRepo struct {
	store *fakeStore

	bulkInsertErr error
}

func (r *fakeMatchPlayerRepo) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.MatchPlayer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.MatchPlayer, 0)
	for _, mp := range r.store.matchPlayers {
		if mp.MatchID == matchID {
			cp := *mp
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMatchPlayerRepo) DeleteByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.matchPlayers[:0]
	for _, mp := range r.store.matchPlayers {
		if mp.MatchID != matchID {
			kept = append(kept, mp)
		}
	}
	r.store.matchPlayers = kept
	return nil
}

func (r *fakeMatchPlayerRepo) BulkInsert(ctx context.Context, exec repositories.SQLExecutor, rows []*models.MatchPlayer) error {
	if r.bulkInsertErr != nil {
		return r.bulkInsertErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, row := range rows {
		r.store.nextRowID++
		cp := *row
		cp.ID = r.store.nextRowID
		r.store.matchPlayers = append(r.store.matchPlayers, &cp)
	}
	return nil
}

type fakePlayerRepo struct {
	store *fakeStore
}

func (r *fakePlayerRepo) Create(ctx context.Context, player *models.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.players {
		if p.UserID == player.UserID {
			return repositories.ErrPlayerUserConflict
		}
	}
	r.store.nextPlayerID++
	player.ID = r.store.nextPlayerID
	cp := *player
	r.store.players[cp.ID] = &cp
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlayerRepo) GetByUserID(ctx context.Context, userID int) (*models.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.players {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) List(ctx context.Context) ([]*models.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Player, 0, len(r.store.players))
	for _, p := range r.store.players {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepo) FilterByIDs(ctx context.Context, ids []int) (map[int]*models.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[int]*models.Player)
	for _, id := range ids {
		if p, ok := r.store.players[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) ListTopRanked(ctx context.Context, limit int) ([]*models.Player, error) {
	players, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].TotalPoints != players[j].TotalPoints {
			return players[i].TotalPoints > players[j].TotalPoints
		}
		if players[i].Wins != players[j].Wins {
			return players[i].Wins > players[j].Wins
		}
		return players[i].ID < players[j].ID
	})
	if len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}

func (r *fakePlayerRepo) GetRank(ctx context.Context, playerID int) (int, error) {
	r.store.mu.Lock()
	target, ok := r.store.players[playerID]
	if !ok {
		r.store.mu.Unlock()
		return 0, repositories.ErrPlayerNotFound
	}
	rank := 1
	for _, p := range r.store.players {
		if p.TotalPoints > target.TotalPoints ||
			(p.TotalPoints == target.TotalPoints && p.Wins > target.Wins) {
			rank++
		}
	}
	r.store.mu.Unlock()
	return rank, nil
}

// RecalculateStats mirrors the SQL aggregate: rebuild wins, losses, and total
// points from the player's rows in completed matches. Ties credit neither
// side.
func (r *fakePlayerRepo) RecalculateStats(ctx context.Context, exec repositories.SQLExecutor, playerID int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}

	wins, losses, points := 0, 0, 0
	for _, mp := range r.store.matchPlayers {
		if mp.PlayerID != playerID {
			continue
		}
		m, ok := r.store.matches[mp.MatchID]
		if !ok || m.Status != models.MatchStatusCompleted || m.ScoreTeam1 == nil || m.ScoreTeam2 == nil {
			continue
		}
		points += mp.Score
		switch {
		case mp.Team == models.SideTeam1 && *m.ScoreTeam1 > *m.ScoreTeam2,
			mp.Team == models.SideTeam2 && *m.ScoreTeam2 > *m.ScoreTeam1:
			wins++
		case mp.Team == models.SideTeam1 && *m.ScoreTeam1 < *m.ScoreTeam2,
			mp.Team == models.SideTeam2 && *m.ScoreTeam2 < *m.ScoreTeam1:
			losses++
		}
	}
	p.Wins = wins
	p.Losses = losses
	p.TotalPoints = points
	return nil
}

type fakeTournamentRepo struct {
	store *fakeStore
}

func (r *fakeTournamentRepo) Create(ctx context.Context, tournament *models.Tournament) error {
	r.store.addTournament(tournament)
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Tournament, 0, len(r.store.tournaments))
	for _, t := range r.store.tournaments {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, tournament *models.Tournament) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tournaments[tournament.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	cp := *tournament
	r.store.tournaments[cp.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) UpdateBannerKey(ctx context.Context, id int, key *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.BannerKey = key
	return nil
}

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	r.store.nextUserID++
	user.ID = r.store.nextUserID
	cp := *user
	r.store.users[cp.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateActive(ctx context.Context, id int, active bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}
