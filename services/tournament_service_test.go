package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tournamentFixture struct {
	store    *memStore
	audit    *fakeAuditRepo
	notifier *recordingNotifier
	uploader *fakeUploader
	svc      TournamentService
}

func newTournamentFixture(t *testing.T, withUploader bool) *tournamentFixture {
	t.Helper()
	f := &tournamentFixture{
		store:    newMemStore(),
		audit:    &fakeAuditRepo{},
		notifier: &recordingNotifier{},
	}
	var uploader *fakeUploader
	if withUploader {
		uploader = &fakeUploader{}
		f.uploader = uploader
	}
	audit := NewAuditService(f.audit, zap.NewNop())
	if withUploader {
		f.svc = NewTournamentService(&fakeTournamentRepo{s: f.store}, &fakeTeamRepo{s: f.store}, uploader, audit, f.notifier, zap.NewNop())
	} else {
		f.svc = NewTournamentService(&fakeTournamentRepo{s: f.store}, &fakeTeamRepo{s: f.store}, nil, audit, f.notifier, zap.NewNop())
	}
	return f
}

func TestListPublicOpensDueAndHidesDrafts(t *testing.T) {
	f := newTournamentFixture(t, false)
	now := time.Now()
	due := f.store.addTournament(models.Tournament{
		Name: "Due", Status: models.StatusScheduled, ScheduledAt: now.Add(-time.Minute),
		Date: now.AddDate(0, 0, 1), StartTime: "18:00", MaxTeams: 4, TeamSize: 2,
	})
	later := f.store.addTournament(models.Tournament{
		Name: "Later", Status: models.StatusScheduled, ScheduledAt: now.Add(time.Hour),
		Date: now.AddDate(0, 0, 2), StartTime: "18:00", MaxTeams: 4, TeamSize: 2,
	})
	f.store.addTournament(models.Tournament{Name: "Hidden", Status: models.StatusDraft, Date: now})

	list, err := f.svc.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, due.ID, list[0].ID)
	require.Equal(t, models.StatusRegistrationOpen, list[0].Status)
	require.Equal(t, later.ID, list[1].ID)
	require.Equal(t, models.StatusScheduled, list[1].Status)

	require.Equal(t, models.StatusRegistrationOpen, f.store.tournament(due.ID).Status)
}

func TestCheckNameAvailable(t *testing.T) {
	f := newTournamentFixture(t, false)
	ctx := context.Background()
	tour := f.store.addTournament(models.Tournament{MaxTeams: 4, TeamSize: 1, Status: models.StatusRegistrationOpen})
	captain := f.store.addUser("cap", models.RolePlayer)
	teams := NewTeamService(&fakeTeamRepo{s: f.store}, &fakeTournamentRepo{s: f.store}, NopNotifier{}, zap.NewNop())
	_, err := teams.CreateTeam(ctx, tour.ID, captain.ID, CreateTeamInput{TeamName: "Taken"})
	require.NoError(t, err)

	available, err := f.svc.CheckNameAvailable(ctx, tour.ID, "taken")
	require.NoError(t, err)
	require.False(t, available)

	available, err = f.svc.CheckNameAvailable(ctx, tour.ID, "Free")
	require.NoError(t, err)
	require.True(t, available)

	_, err = f.svc.CheckNameAvailable(ctx, tour.ID, "  ")
	require.ErrorIs(t, err, ErrTeamNameRequired)

	_, err = f.svc.CheckNameAvailable(ctx, uuid.New(), "Free")
	require.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestDraftTournamentHiddenFromPublicLookups(t *testing.T) {
	f := newTournamentFixture(t, false)
	ctx := context.Background()
	draft := f.store.addTournament(models.Tournament{Name: "Secret", Status: models.StatusDraft, MaxTeams: 4, TeamSize: 2})

	_, _, err := f.svc.ListTeams(ctx, draft.ID)
	require.ErrorIs(t, err, ErrTournamentNotFound)

	_, err = f.svc.CheckNameAvailable(ctx, draft.ID, "Alpha")
	require.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestCreateTournamentValidates(t *testing.T) {
	f := newTournamentFixture(t, false)
	ctx := context.Background()
	actor := uuid.New()
	opening := time.Now().Add(time.Hour)

	_, err := f.svc.Create(ctx, actor, CreateTournamentInput{Name: "Cup"})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Contains(t, verrs.Fields(), "type")

	deadline := opening.Add(-time.Minute)
	_, err = f.svc.Create(ctx, actor, CreateTournamentInput{
		Name: "Cup", Type: "bedwars", Date: "2026-11-01", StartTime: "18:30",
		ScheduledAt: opening, RegistrationDeadline: &deadline, MaxTeams: 8, TeamSize: 4,
	})
	require.ErrorIs(t, err, ErrTournamentInvalidSchedule)

	created, err := f.svc.Create(ctx, actor, CreateTournamentInput{
		Name: " Cup ", Type: "bedwars", Date: "2026-11-01", StartTime: "18:30",
		ScheduledAt: opening, MaxTeams: 8, TeamSize: 4, Draft: true,
	})
	require.NoError(t, err)
	require.Equal(t, "Cup", created.Name)
	require.Equal(t, models.StatusDraft, created.Status)
	require.Equal(t, []string{models.AuditTournamentCreate}, f.audit.actions())
	require.Equal(t, actor.String(), f.audit.last().ActorID)
}

func TestChangeStatusIsForwardOnly(t *testing.T) {
	f := newTournamentFixture(t, false)
	ctx := context.Background()
	actor := uuid.New()
	tour := f.store.addTournament(models.Tournament{Status: models.StatusRegistrationOpen, MaxTeams: 2, TeamSize: 1})

	_, err := f.svc.ChangeStatus(ctx, actor, tour.ID, models.StatusScheduled)
	require.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)

	_, err = f.svc.ChangeStatus(ctx, actor, tour.ID, "paused")
	require.ErrorIs(t, err, ErrTournamentInvalidStatus)

	updated, err := f.svc.ChangeStatus(ctx, actor, tour.ID, models.StatusRegistrationClosed)
	require.NoError(t, err)
	require.Equal(t, models.StatusRegistrationClosed, updated.Status)
	require.Equal(t, models.StatusRegistrationClosed, f.store.tournament(tour.ID).Status)

	require.Equal(t, []string{models.AuditTournamentStatus}, f.audit.actions())
	require.Equal(t, []string{models.EventTournamentStatus}, f.notifier.types())

	_, err = f.svc.ChangeStatus(ctx, actor, uuid.New(), models.StatusCompleted)
	require.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestUploadBanner(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	disabled := newTournamentFixture(t, false)
	tour := disabled.store.addTournament(models.Tournament{Status: models.StatusScheduled})
	_, err := disabled.svc.UploadBanner(ctx, actor, tour.ID, bytes.NewReader([]byte("img")), 3, "image/png")
	require.ErrorIs(t, err, ErrFeatureDisabled)

	f := newTournamentFixture(t, true)
	tour = f.store.addTournament(models.Tournament{Status: models.StatusScheduled, ScheduledAt: time.Now().Add(time.Hour)})

	_, err = f.svc.UploadBanner(ctx, actor, tour.ID, bytes.NewReader([]byte("gif")), 3, "image/gif")
	require.ErrorIs(t, err, ErrInvalidBanner)

	first, err := f.svc.UploadBanner(ctx, actor, tour.ID, bytes.NewReader([]byte("one")), 3, "image/png")
	require.NoError(t, err)
	require.NotNil(t, first.BannerURL)
	firstKey := *f.store.tournament(tour.ID).BannerKey
	require.Contains(t, *first.BannerURL, firstKey)

	_, err = f.svc.UploadBanner(ctx, actor, tour.ID, bytes.NewReader([]byte("two")), 3, "image/webp")
	require.NoError(t, err)
	require.Equal(t, []string{firstKey}, f.uploader.deleted)
	require.Len(t, f.uploader.objects, 1)
	require.Equal(t, []string{models.AuditTournamentBanner, models.AuditTournamentBanner}, f.audit.actions())
}
