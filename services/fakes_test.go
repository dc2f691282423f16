package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/repositories"
	"github.com/google/uuid"
)

// memStore backs every fake repository. Reads hand out copies, so a caller only
// changes stored rows through an explicit write.
type memStore struct {
	mu sync.Mutex

	users      map[uuid.UUID]*models.User
	phases     []*models.Phase
	groups     []*models.Group
	teams      []*models.Team
	refs       []*models.MatchReference
	matches    map[uuid.UUID]*models.Match
	scoreBets  map[uuid.UUID]*models.ScoreBet
	binaryBets map[uuid.UUID]*models.BinaryBet
	positions  map[uuid.UUID]*models.GroupPosition
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[uuid.UUID]*models.User),
		matches:    make(map[uuid.UUID]*models.Match),
		scoreBets:  make(map[uuid.UUID]*models.ScoreBet),
		binaryBets: make(map[uuid.UUID]*models.BinaryBet),
		positions:  make(map[uuid.UUID]*models.GroupPosition),
	}
}

type fakeTransactor struct{}

func (fakeTransactor) WithinTx(_ context.Context, _ *sql.TxOptions, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

func (s *memStore) phaseByID(id uuid.UUID) *models.Phase {
	for _, p := range s.phases {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *memStore) groupByID(id uuid.UUID) *models.Group {
	for _, g := range s.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (s *memStore) teamByID(id *uuid.UUID) *models.Team {
	if id == nil {
		return nil
	}
	for _, t := range s.teams {
		if t.ID == *id {
			c := *t
			return &c
		}
	}
	return nil
}

func (s *memStore) joinedGroup(id uuid.UUID) *models.Group {
	g := s.groupByID(id)
	if g == nil {
		return nil
	}
	c := *g
	if p := s.phaseByID(g.PhaseID); p != nil {
		pc := *p
		c.Phase = &pc
	}
	return &c
}

func (s *memStore) joinedMatch(m *models.Match) *models.Match {
	c := *m
	c.Group = s.joinedGroup(m.GroupID)
	c.Team1 = s.teamByID(m.Team1ID)
	c.Team2 = s.teamByID(m.Team2ID)
	return &c
}

func (s *memStore) matchesFilter(m *models.Match, f repositories.MatchFilter) bool {
	if f.UserID != nil && m.UserID != *f.UserID {
		return false
	}
	if f.GroupID != nil && m.GroupID != *f.GroupID {
		return false
	}
	if f.GroupCode != "" && (m.Group == nil || m.Group.Code != f.GroupCode) {
		return false
	}
	if f.PhaseCode != "" && (m.Group == nil || m.Group.Phase == nil || m.Group.Phase.Code != f.PhaseCode) {
		return false
	}
	return true
}

func matchLess(a, b *models.Match) bool {
	if a.Group.Phase.Index != b.Group.Phase.Index {
		return a.Group.Phase.Index < b.Group.Phase.Index
	}
	if a.Group.Index != b.Group.Index {
		return a.Group.Index < b.Group.Index
	}
	return a.Index < b.Index
}

type fakeUserRepo struct{ *memStore }

func (r fakeUserRepo) Create(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Name == user.Name {
			return repositories.ErrUserNameConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r fakeUserRepo) GetByName(_ context.Context, _ repositories.SQLExecutor, name string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Name == name {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r fakeUserRepo) UpdatePassword(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Password = password
	return nil
}

func (r fakeUserRepo) ListPlayers(_ context.Context, _ repositories.SQLExecutor) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		if u.Name != models.AdminName {
			c := *u
			players = append(players, &c)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].Points != players[j].Points {
			return players[i].Points > players[j].Points
		}
		return players[i].Name < players[j].Name
	})
	return players, nil
}

func (r fakeUserRepo) UpdateResults(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	password := u.Password
	*u = *user
	u.Password = password
	return nil
}

type fakeStructureRepo struct{ *memStore }

func (r fakeStructureRepo) CreatePhase(_ context.Context, _ repositories.SQLExecutor, phase *models.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.phases {
		if p.Code == phase.Code {
			return repositories.ErrStructureConflict
		}
	}
	if phase.ID == uuid.Nil {
		phase.ID = uuid.New()
	}
	c := *phase
	r.phases = append(r.phases, &c)
	return nil
}

func (r fakeStructureRepo) CreateGroup(_ context.Context, _ repositories.SQLExecutor, group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phaseByID(group.PhaseID) == nil {
		return repositories.ErrPhaseNotFound
	}
	for _, g := range r.groups {
		if g.Code == group.Code {
			return repositories.ErrStructureConflict
		}
	}
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	c := *group
	r.groups = append(r.groups, &c)
	return nil
}

func (r fakeStructureRepo) CreateTeam(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.Code == team.Code {
			return repositories.ErrStructureConflict
		}
	}
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	c := *team
	r.teams = append(r.teams, &c)
	return nil
}

func (r fakeStructureRepo) CreateMatchReference(_ context.Context, _ repositories.SQLExecutor, ref *models.MatchReference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.refs {
		if m.GroupID == ref.GroupID && m.Index == ref.Index {
			return repositories.ErrMatchReferenceConflict
		}
	}
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	c := *ref
	r.refs = append(r.refs, &c)
	return nil
}

func (r fakeStructureRepo) ListPhases(_ context.Context, _ repositories.SQLExecutor) ([]*models.Phase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Phase, 0, len(r.phases))
	for _, p := range r.phases {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (r fakeStructureRepo) GetPhaseByCode(_ context.Context, _ repositories.SQLExecutor, code string) (*models.Phase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.phases {
		if p.Code == code {
			c := *p
			return &c, nil
		}
	}
	return nil, repositories.ErrPhaseNotFound
}

func (r fakeStructureRepo) listGroups(keep func(*models.Group) bool) []*models.Group {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Group, 0, len(r.groups))
	for _, g := range r.groups {
		joined := r.joinedGroup(g.ID)
		if keep(joined) {
			out = append(out, joined)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (r fakeStructureRepo) ListGroups(_ context.Context, _ repositories.SQLExecutor) ([]*models.Group, error) {
	return r.listGroups(func(*models.Group) bool { return true }), nil
}

func (r fakeStructureRepo) ListGroupsByPhaseCode(_ context.Context, _ repositories.SQLExecutor, phaseCode string) ([]*models.Group, error) {
	return r.listGroups(func(g *models.Group) bool { return g.Phase != nil && g.Phase.Code == phaseCode }), nil
}

func (r fakeStructureRepo) GetGroupByCode(_ context.Context, _ repositories.SQLExecutor, code string) (*models.Group, error) {
	groups := r.listGroups(func(g *models.Group) bool { return g.Code == code })
	if len(groups) == 0 {
		return nil, repositories.ErrGroupNotFound
	}
	return groups[0], nil
}

func (r fakeStructureRepo) GetGroupByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Group, error) {
	groups := r.listGroups(func(g *models.Group) bool { return g.ID == id })
	if len(groups) == 0 {
		return nil, repositories.ErrGroupNotFound
	}
	return groups[0], nil
}

func (r fakeStructureRepo) findTeam(match func(*models.Team) bool) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if match(t) {
			c := *t
			return &c, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r fakeStructureRepo) ListTeams(_ context.Context, _ repositories.SQLExecutor) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Team, 0, len(r.teams))
	for _, t := range r.teams {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (r fakeStructureRepo) GetTeamByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Team, error) {
	return r.findTeam(func(t *models.Team) bool { return t.ID == id })
}

func (r fakeStructureRepo) GetTeamByCode(_ context.Context, _ repositories.SQLExecutor, code string) (*models.Team, error) {
	return r.findTeam(func(t *models.Team) bool { return t.Code == code })
}

func (r fakeStructureRepo) GetTeamByDescriptionEN(_ context.Context, _ repositories.SQLExecutor, description string) (*models.Team, error) {
	return r.findTeam(func(t *models.Team) bool { return t.DescriptionEN == description })
}

func (r fakeStructureRepo) ListMatchReferences(_ context.Context, _ repositories.SQLExecutor) ([]*models.MatchReference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.MatchReference, 0, len(r.refs))
	for _, ref := range r.refs {
		c := *ref
		out = append(out, &c)
	}
	return out, nil
}

type fakeMatchRepo struct{ *memStore }

func (r fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.groupByID(match.GroupID) == nil {
		return repositories.ErrGroupNotFound
	}
	for _, id := range []*uuid.UUID{match.Team1ID, match.Team2ID} {
		if id != nil && r.teamByID(id) == nil {
			return repositories.ErrTeamNotFound
		}
	}
	if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	c := *match
	r.matches[match.ID] = &c
	return nil
}

func (r fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return r.joinedMatch(m), nil
}

func (r fakeMatchRepo) GetByUserGroupIndex(_ context.Context, _ repositories.SQLExecutor, userID, groupID uuid.UUID, index int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.UserID == userID && m.GroupID == groupID && m.Index == index {
			return r.joinedMatch(m), nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r fakeMatchRepo) UpdateTeams(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, team1ID, team2ID *uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	for _, tid := range []*uuid.UUID{team1ID, team2ID} {
		if tid != nil && r.teamByID(tid) == nil {
			return repositories.ErrTeamNotFound
		}
	}
	m.Team1ID, m.Team2ID = team1ID, team2ID
	return nil
}

func (r fakeMatchRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	for betID, bet := range r.scoreBets {
		if bet.MatchID == id {
			delete(r.scoreBets, betID)
		}
	}
	for betID, bet := range r.binaryBets {
		if bet.MatchID == id {
			delete(r.binaryBets, betID)
		}
	}
	return nil
}

func (r fakeMatchRepo) List(_ context.Context, _ repositories.SQLExecutor, filter repositories.MatchFilter) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		joined := r.joinedMatch(m)
		if r.matchesFilter(joined, filter) {
			out = append(out, joined)
		}
	}
	sort.Slice(out, func(i, j int) bool { return matchLess(out[i], out[j]) })
	return out, nil
}

type fakeBetRepo struct{ *memStore }

func (r fakeBetRepo) CreateScoreBet(_ context.Context, _ repositories.SQLExecutor, bet *models.ScoreBet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[bet.MatchID]; !ok {
		return repositories.ErrMatchNotFound
	}
	if bet.ID == uuid.Nil {
		bet.ID = uuid.New()
	}
	c := *bet
	c.Match = nil
	r.scoreBets[bet.ID] = &c
	return nil
}

func (r fakeBetRepo) GetScoreBet(_ context.Context, _ repositories.SQLExecutor, userID, id uuid.UUID, _ bool) (*models.ScoreBet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bet, ok := r.scoreBets[id]
	if !ok {
		return nil, repositories.ErrBetNotFound
	}
	m := r.matches[bet.MatchID]
	if m == nil || m.UserID != userID {
		return nil, repositories.ErrBetNotFound
	}
	c := *bet
	c.Match = r.joinedMatch(m)
	return &c, nil
}

func (r fakeBetRepo) UpdateScoreBet(_ context.Context, _ repositories.SQLExecutor, bet *models.ScoreBet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.scoreBets[bet.ID]
	if !ok {
		return repositories.ErrBetNotFound
	}
	stored.Score1, stored.Score2 = bet.Score1, bet.Score2
	return nil
}

func (r fakeBetRepo) ListScoreBets(_ context.Context, _ repositories.SQLExecutor, filter repositories.MatchFilter) ([]*models.ScoreBet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ScoreBet, 0)
	for _, bet := range r.scoreBets {
		m := r.joinedMatch(r.matches[bet.MatchID])
		if r.matchesFilter(m, filter) {
			c := *bet
			c.Match = m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return matchLess(out[i].Match, out[j].Match) })
	return out, nil
}

func (r fakeBetRepo) CreateBinaryBet(_ context.Context, _ repositories.SQLExecutor, bet *models.BinaryBet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[bet.MatchID]; !ok {
		return repositories.ErrMatchNotFound
	}
	if bet.ID == uuid.Nil {
		bet.ID = uuid.New()
	}
	c := *bet
	c.Match = nil
	r.binaryBets[bet.ID] = &c
	return nil
}

func (r fakeBetRepo) GetBinaryBet(_ context.Context, _ repositories.SQLExecutor, userID, id uuid.UUID, _ bool) (*models.BinaryBet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bet, ok := r.binaryBets[id]
	if !ok {
		return nil, repositories.ErrBetNotFound
	}
	m := r.matches[bet.MatchID]
	if m == nil || m.UserID != userID {
		return nil, repositories.ErrBetNotFound
	}
	c := *bet
	c.Match = r.joinedMatch(m)
	return &c, nil
}

func (r fakeBetRepo) UpdateBinaryBet(_ context.Context, _ repositories.SQLExecutor, bet *models.BinaryBet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.binaryBets[bet.ID]
	if !ok {
		return repositories.ErrBetNotFound
	}
	stored.IsOneWon = bet.IsOneWon
	return nil
}

func (r fakeBetRepo) ListBinaryBets(_ context.Context, _ repositories.SQLExecutor, filter repositories.MatchFilter) ([]*models.BinaryBet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.BinaryBet, 0)
	for _, bet := range r.binaryBets {
		m := r.joinedMatch(r.matches[bet.MatchID])
		if r.matchesFilter(m, filter) {
			c := *bet
			c.Match = m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return matchLess(out[i].Match, out[j].Match) })
	return out, nil
}

type fakePositionRepo struct{ *memStore }

func (r fakePositionRepo) Create(_ context.Context, _ repositories.SQLExecutor, position *models.GroupPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.positions {
		if p.UserID == position.UserID && p.GroupID == position.GroupID && p.TeamID == position.TeamID {
			return repositories.ErrGroupPositionConflict
		}
	}
	if position.ID == uuid.Nil {
		position.ID = uuid.New()
	}
	c := *position
	r.positions[position.ID] = &c
	return nil
}

func (r fakePositionRepo) ListByUserAndGroup(_ context.Context, _ repositories.SQLExecutor, userID, groupID uuid.UUID) ([]*models.GroupPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.GroupPosition, 0)
	for _, p := range r.positions {
		if p.UserID == userID && p.GroupID == groupID {
			c := *p
			c.Team = r.teamByID(&c.TeamID)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Team.Code < out[j].Team.Code })
	return out, nil
}

func (r fakePositionRepo) Save(_ context.Context, _ repositories.SQLExecutor, position *models.GroupPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.positions[position.ID]; !ok {
		return repositories.ErrGroupPositionNotFound
	}
	c := *position
	c.Team = nil
	r.positions[position.ID] = &c
	return nil
}

func (r fakePositionRepo) MarkForRecomputation(_ context.Context, _ repositories.SQLExecutor, userID uuid.UUID, teamIDs ...uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.positions {
		for _, id := range teamIDs {
			if p.UserID == userID && p.TeamID == id {
				p.NeedRecomputation = true
			}
		}
	}
	return nil
}

type memScoreBoardCache struct {
	mu    sync.Mutex
	board []models.UserResult
	ok    bool
}

func (c *memScoreBoardCache) Get(context.Context) ([]models.UserResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board, c.ok, nil
}

func (c *memScoreBoardCache) Set(_ context.Context, board []models.UserResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board, c.ok = board, true
	return nil
}

func (c *memScoreBoardCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board, c.ok = nil, false
	return nil
}
