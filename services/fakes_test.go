package services

import (
	"context"
	"sync"

	"github.com/changycj/tourneytrack/models"
	"github.com/changycj/tourneytrack/repositories"
)

// In-memory repository fakes. The match fake guards its state with a mutex
// so concurrent service calls exercise the same interleavings the real
// store allows.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return repositories.ErrUserUsernameConflict
		}
	}
	user.ID = len(r.users) + 1
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[int]models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]models.Tournament)}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, tournament *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tournament.ID = len(r.tournaments) + 1
	r.tournaments[tournament.ID] = *tournament
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tournament, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &tournament, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		tournament := t
		out = append(out, &tournament)
	}
	return out, nil
}

func (r *fakeTournamentRepo) SetStarted(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tournament, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	tournament.Started = true
	r.tournaments[id] = tournament
	return nil
}

func (r *fakeTournamentRepo) SetWinner(ctx context.Context, id int, winnerTeamID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tournament, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	tournament.WinnerTeamID = winnerTeamID
	r.tournaments[id] = tournament
	return nil
}

type fakeTeamRepo struct {
	mu    sync.Mutex
	teams map[int]models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]models.Team)}
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team.ID = len(r.teams) + 1
	r.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &team, nil
}

func (r *fakeTeamRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Team, 0)
	for _, t := range r.teams {
		if t.TournamentID == tournamentID {
			team := t
			out = append(out, &team)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) CountByIDs(ctx context.Context, tournamentID int, ids []int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, id := range ids {
		if team, ok := r.teams[id]; ok && team.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	r.teams[id] = team
	return nil
}

type fakeBracketRepo struct {
	mu       sync.Mutex
	brackets map[int]models.Bracket
}

func newFakeBracketRepo() *fakeBracketRepo {
	return &fakeBracketRepo{brackets: make(map[int]models.Bracket)}
}

func (r *fakeBracketRepo) Create(ctx context.Context, exec repositories.SQLExecutor, bracket *models.Bracket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bracket.ID = len(r.brackets) + 1
	r.brackets[bracket.ID] = *bracket
	return nil
}

func (r *fakeBracketRepo) GetByID(ctx context.Context, id int) (*models.Bracket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bracket, ok := r.brackets[id]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	return &bracket, nil
}

func (r *fakeBracketRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Bracket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Bracket, 0)
	for _, b := range r.brackets {
		if b.TournamentID == tournamentID {
			bracket := b
			out = append(out, &bracket)
		}
	}
	return out, nil
}

func (r *fakeBracketRepo) SetWinner(ctx context.Context, id int, winnerTeamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bracket, ok := r.brackets[id]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	bracket.WinnerTeamID = &winnerTeamID
	r.brackets[id] = bracket
	return nil
}

func (r *fakeBracketRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.brackets[id]; !ok {
		return repositories.ErrBracketNotFound
	}
	delete(r.brackets, id)
	return nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[int]models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]models.Match)}
}

func (r *fakeMatchRepo) add(match models.Match) *models.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	match.ID = r.nextID
	r.matches[match.ID] = match
	return &match
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	match.ID = r.nextID
	r.matches[match.ID] = *match
	return nil
}

func (r *fakeMatchRepo) SetParentLinks(ctx context.Context, exec repositories.SQLExecutor, id int, winnerParentID, loserParentID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.WinnerParentID = winnerParentID
	match.LoserParentID = loserParentID
	r.matches[id] = match
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &match, nil
}

func (r *fakeMatchRepo) List(ctx context.Context, filter repositories.MatchFilter) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0)
	for id := 1; id <= r.nextID; id++ {
		match, ok := r.matches[id]
		if !ok {
			continue
		}
		if filter.BracketID != nil && match.BracketID != *filter.BracketID {
			continue
		}
		if filter.TeamID != nil && !match.HasParticipant(*filter.TeamID) {
			continue
		}
		m := match
		out = append(out, &m)
	}
	return out, nil
}

func (r *fakeMatchRepo) ListByBracket(ctx context.Context, bracketID int) ([]*models.Match, error) {
	return r.List(ctx, repositories.MatchFilter{BracketID: &bracketID})
}

func (r *fakeMatchRepo) AppendParticipant(ctx context.Context, id int, teamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Participants = append(append([]int{}, match.Participants...), teamID)
	r.matches[id] = match
	return nil
}

func (r *fakeMatchRepo) UpdateOutcome(ctx context.Context, id int, outcome *models.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Outcome = outcome
	r.matches[id] = match
	return nil
}

func (r *fakeMatchRepo) UpdatePreliminaryOutcomes(ctx context.Context, id int, outcomes []models.PreliminaryOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.PreliminaryOutcomes = outcomes
	r.matches[id] = match
	return nil
}

func (r *fakeMatchRepo) DeleteByBracket(ctx context.Context, exec repositories.SQLExecutor, bracketID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, match := range r.matches {
		if match.BracketID == bracketID {
			delete(r.matches, id)
		}
	}
	return nil
}
