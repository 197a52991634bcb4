package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/repositories"
	"github.com/Dosada05/tournament-hub/storage"
	"github.com/google/uuid"
)

// memStore backs the Postgres-shaped fakes. One mutex stands in for a
// transaction so the conditional updates stay atomic under concurrency.
type memStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*models.User
	tournaments map[uuid.UUID]*models.Tournament
	teams       map[uuid.UUID]*models.Team
	teamOrder   []uuid.UUID
	invites     map[uuid.UUID]*models.TeamInvite
	inviteOrder []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[uuid.UUID]*models.User),
		tournaments: make(map[uuid.UUID]*models.Tournament),
		teams:       make(map[uuid.UUID]*models.Team),
		invites:     make(map[uuid.UUID]*models.TeamInvite),
	}
}

func (s *memStore) addUser(name string, role models.UserRole) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{
		ID:          uuid.New(),
		ExternalID:  "ext-" + name,
		Email:       name + "@example.com",
		DisplayName: name,
		Role:        role,
		CreatedAt:   time.Now(),
	}
	s.users[u.ID] = u
	cp := *u
	return &cp
}

func (s *memStore) addTournament(t models.Tournament) *models.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Name == "" {
		t.Name = "Cup"
	}
	if t.Status == "" {
		t.Status = models.StatusRegistrationOpen
	}
	stored := t
	s.tournaments[t.ID] = &stored
	return &t
}

func (s *memStore) tournament(id uuid.UUID) models.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.tournaments[id]
}

func (s *memStore) invite(id uuid.UUID) models.TeamInvite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.invites[id]
}

func (s *memStore) team(id uuid.UUID) models.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *s.teams[id]
	t.Players = append([]uuid.UUID(nil), t.Players...)
	return t
}

func copyTeam(t *models.Team) *models.Team {
	cp := *t
	cp.Players = append([]uuid.UUID(nil), t.Players...)
	return &cp
}

// --- users ---

type fakeUserRepo struct {
	s   *memStore
	err error
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) UpsertByExternalID(_ context.Context, identity models.ExternalIdentity, promote bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var user *models.User
	for _, u := range r.s.users {
		if u.ExternalID == identity.ExternalID {
			user = u
			break
		}
	}
	if user == nil {
		user = &models.User{ID: uuid.New(), ExternalID: identity.ExternalID, Role: models.RolePlayer, CreatedAt: time.Now()}
		r.s.users[user.ID] = user
	}
	user.Email = identity.Email
	user.DisplayName = identity.DisplayName
	if promote {
		user.Role = models.RoleSuperAdmin
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) List(context.Context) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeUserRepo) mutate(id uuid.UUID, fn func(u *models.User)) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	fn(u)
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role models.UserRole) (*models.User, error) {
	return r.mutate(id, func(u *models.User) { u.Role = role })
}

func (r *fakeUserRepo) SetBanned(_ context.Context, id uuid.UUID, banned bool) (*models.User, error) {
	return r.mutate(id, func(u *models.User) { u.Banned = banned })
}

func (r *fakeUserRepo) UpdateHandles(_ context.Context, id uuid.UUID, minecraftName, discordName *string) (*models.User, error) {
	return r.mutate(id, func(u *models.User) {
		u.MinecraftName = minecraftName
		u.DiscordName = discordName
	})
}

// --- tournaments ---

type fakeTournamentRepo struct {
	s *memStore
}

var _ repositories.TournamentRepository = (*fakeTournamentRepo)(nil)

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	stored := *t
	r.s.tournaments[t.ID] = &stored
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) ListPublic(context.Context) ([]*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Tournament
	for _, t := range r.s.tournaments {
		if t.Status == models.StatusDraft {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *fakeTournamentRepo) OpenDueRegistrations(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, t := range r.s.tournaments {
		if t.Status == models.StatusScheduled && !t.ScheduledAt.After(now) {
			t.Status = models.StatusRegistrationOpen
			n++
		}
	}
	return n, nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.TournamentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok || t.Status != from {
		return repositories.ErrTournamentStatusChanged
	}
	t.Status = to
	return nil
}

func (r *fakeTournamentRepo) UpdateBannerKey(_ context.Context, id uuid.UUID, key *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.BannerKey = key
	return nil
}

// --- teams ---

type fakeTeamRepo struct {
	s *memStore
}

var _ repositories.TeamRepository = (*fakeTeamRepo)(nil)

func (r *fakeTeamRepo) Register(_ context.Context, team *models.Team, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tournaments[team.TournamentID]
	if !ok || t.Status != models.StatusRegistrationOpen || t.RegisteredTeams >= t.MaxTeams ||
		(t.RegistrationDeadline != nil && !t.RegistrationDeadline.After(now)) {
		return repositories.ErrTournamentSlotUnavailable
	}
	for _, existing := range r.s.teams {
		if existing.TournamentID == team.TournamentID && strings.EqualFold(existing.TeamName, team.TeamName) {
			return repositories.ErrTeamNameConflict
		}
	}
	for _, id := range team.Players {
		if _, ok := r.s.users[id]; !ok {
			return repositories.ErrTeamPlayerInvalid
		}
	}

	t.RegisteredTeams++
	team.ID = uuid.New()
	team.CreatedAt = now
	team.PlayerCount = len(team.Players)
	r.s.teams[team.ID] = copyTeam(team)
	r.s.teamOrder = append(r.s.teamOrder, team.ID)
	return nil
}

func (r *fakeTeamRepo) GetByName(_ context.Context, tournamentID uuid.UUID, name string) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.teams {
		if t.TournamentID == tournamentID && strings.EqualFold(t.TeamName, name) {
			return copyTeam(t), nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) NameExists(ctx context.Context, tournamentID uuid.UUID, name string) (bool, error) {
	_, err := r.GetByName(ctx, tournamentID, name)
	if errors.Is(err, repositories.ErrTeamNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeTeamRepo) ListByTournament(_ context.Context, tournamentID uuid.UUID) ([]models.TeamSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.TeamSummary
	for _, id := range r.s.teamOrder {
		t := r.s.teams[id]
		if t.TournamentID == tournamentID {
			out = append(out, models.TeamSummary{ID: t.ID, Name: t.TeamName, CreatedAt: t.CreatedAt})
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Team
	for i := len(r.s.teamOrder) - 1; i >= 0; i-- {
		t := r.s.teams[r.s.teamOrder[i]]
		if t.HasMember(userID) {
			out = append(out, copyTeam(t))
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) GetDetail(_ context.Context, teamID uuid.UUID) (*models.TeamDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[teamID]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	tour := r.s.tournaments[t.TournamentID]
	detail := &models.TeamDetail{
		ID:             t.ID,
		TeamName:       t.TeamName,
		Status:         t.Status,
		CaptainID:      t.CaptainID,
		TournamentID:   t.TournamentID,
		TournamentName: tour.Name,
		TournamentDate: tour.Date,
		StartTime:      tour.StartTime,
		Tournament:     tour.Status,
		CreatedAt:      t.CreatedAt,
	}
	for _, id := range t.Players {
		u := r.s.users[id]
		detail.Players = append(detail.Players, models.TeamPlayer{
			UserID:        id,
			DisplayName:   u.DisplayName,
			MinecraftName: u.MinecraftName,
			DiscordName:   u.DiscordName,
			IsCaptain:     id == t.CaptainID,
			JoinedAt:      t.CreatedAt,
		})
	}
	return detail, nil
}

// --- invites ---

type fakeInviteRepo struct {
	s *memStore
}

var _ repositories.InviteRepository = (*fakeInviteRepo)(nil)

func (r *fakeInviteRepo) Create(_ context.Context, invite *models.TeamInvite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[invite.InviteeID]; !ok {
		return repositories.ErrInviteUserInvalid
	}
	for _, existing := range r.s.invites {
		if existing.CaptainID == invite.CaptainID && existing.TournamentID == invite.TournamentID &&
			existing.TeamName == invite.TeamName && existing.InviteeID == invite.InviteeID {
			return repositories.ErrInviteConflict
		}
	}
	invite.ID = uuid.New()
	invite.Status = models.InvitePending
	invite.CreatedAt = time.Now()
	stored := *invite
	r.s.invites[invite.ID] = &stored
	r.s.inviteOrder = append(r.s.inviteOrder, invite.ID)
	return nil
}

func (r *fakeInviteRepo) GetByID(_ context.Context, id uuid.UUID) (*models.TeamInvite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invites[id]
	if !ok {
		return nil, repositories.ErrInviteNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInviteRepo) ListPendingByInvitee(_ context.Context, inviteeID uuid.UUID) ([]*models.TeamInvite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.TeamInvite
	for i := len(r.s.inviteOrder) - 1; i >= 0; i-- {
		inv := r.s.invites[r.s.inviteOrder[i]]
		if inv.InviteeID == inviteeID && inv.Status == models.InvitePending {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInviteRepo) Accept(_ context.Context, inviteID, inviteeID, teamID uuid.UUID, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invites[inviteID]
	if !ok || inv.InviteeID != inviteeID || inv.Status != models.InvitePending {
		return repositories.ErrInviteResolved
	}
	team, ok := r.s.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	if team.PlayerCount >= r.s.tournaments[team.TournamentID].TeamSize {
		return repositories.ErrTeamFull
	}
	if team.HasMember(inviteeID) {
		return repositories.ErrTeamMemberConflict
	}
	inv.Status = models.InviteAccepted
	inv.RespondedAt = &now
	team.Players = append(team.Players, inviteeID)
	team.PlayerCount++
	return nil
}

func (r *fakeInviteRepo) Reject(_ context.Context, inviteID, inviteeID uuid.UUID, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invites[inviteID]
	if !ok || inv.InviteeID != inviteeID || inv.Status != models.InvitePending {
		return repositories.ErrInviteResolved
	}
	inv.Status = models.InviteRejected
	inv.RespondedAt = &now
	return nil
}

// --- settings ---

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings *models.SiteSettings
	err      error
}

var _ repositories.SettingsRepository = (*fakeSettingsRepo)(nil)

func (r *fakeSettingsRepo) Get(context.Context) (*models.SiteSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.settings == nil {
		return nil, repositories.ErrSettingsNotFound
	}
	cp := *r.settings
	return &cp, nil
}

func (r *fakeSettingsRepo) upsert(fn func(s *models.SiteSettings)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.settings == nil {
		d := models.DefaultSiteSettings()
		r.settings = &d
	}
	fn(r.settings)
	return nil
}

func (r *fakeSettingsRepo) Replace(_ context.Context, settings models.SiteSettings) error {
	return r.upsert(func(s *models.SiteSettings) { *s = settings })
}

func (r *fakeSettingsRepo) SetMaintenance(_ context.Context, enabled bool, actorID string, now time.Time) error {
	return r.upsert(func(s *models.SiteSettings) {
		s.MaintenanceMode, s.UpdatedBy, s.UpdatedAt = enabled, actorID, now
	})
}

func (r *fakeSettingsRepo) SetAnnouncement(_ context.Context, a models.Announcement, actorID string, now time.Time) error {
	return r.upsert(func(s *models.SiteSettings) {
		s.Announcement, s.UpdatedBy, s.UpdatedAt = a, actorID, now
	})
}

func (r *fakeSettingsRepo) SetTicker(_ context.Context, items []models.TickerItem, actorID string, now time.Time) error {
	return r.upsert(func(s *models.SiteSettings) {
		s.Ticker, s.UpdatedBy, s.UpdatedAt = items, actorID, now
	})
}

// --- audit ---

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AuditLog
	err     error
}

var _ repositories.AuditRepository = (*fakeAuditRepo)(nil)

func (r *fakeAuditRepo) Insert(ctx context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) ListRecent(_ context.Context, limit int64) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AuditLog
	for i := len(r.entries) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

func (r *fakeAuditRepo) EnsureIndexes(context.Context) error { return nil }

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

func (r *fakeAuditRepo) last() *models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[len(r.entries)-1]
}

// --- notifier ---

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.Event
}

func (n *recordingNotifier) Notify(_ context.Context, e models.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

// --- storage ---

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

var _ storage.FileUploader = (*fakeUploader)(nil)

func (u *fakeUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.objects == nil {
		u.objects = make(map[string][]byte)
	}
	u.objects[key] = data
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}
