package services

import (
	"context"
	"testing"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func (f *teamFixture) registerTeam(t *testing.T, tour *models.Tournament, captain *models.User, name string) *models.Team {
	t.Helper()
	team, err := f.teamSvc.CreateTeam(context.Background(), tour.ID, captain.ID, CreateTeamInput{TeamName: name})
	require.NoError(t, err)
	return team
}

func TestInviteAcceptAddsPlayerOnce(t *testing.T) {
	f := newTeamFixture(t)
	ctx := context.Background()
	tour := f.openTournament(4, 3)
	captain := f.store.addUser("cap", models.RolePlayer)
	invitee := f.store.addUser("invitee", models.RolePlayer)
	team := f.registerTeam(t, tour, captain, "Builders")

	invite, err := f.inviteSvc.InviteToTeam(ctx, captain.ID, tour.ID, InviteInput{TeamName: "builders", InviteeID: invitee.ID})
	require.NoError(t, err)
	require.Equal(t, models.InvitePending, invite.Status)
	require.Equal(t, "Builders", invite.TeamName)

	pending, err := f.inviteSvc.ListMyInvites(ctx, invitee.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	accepted, err := f.inviteSvc.RespondToInvite(ctx, invitee.ID, invite.ID, true)
	require.NoError(t, err)
	require.Equal(t, models.InviteAccepted, accepted.Status)

	stored := f.store.team(team.ID)
	require.Equal(t, 2, stored.PlayerCount)
	require.Contains(t, stored.Players, invitee.ID)

	_, err = f.inviteSvc.RespondToInvite(ctx, invitee.ID, invite.ID, false)
	require.ErrorIs(t, err, ErrInviteAlreadyResolved)
	require.Equal(t, models.InviteAccepted, f.store.invite(invite.ID).Status)

	pending, err = f.inviteSvc.ListMyInvites(ctx, invitee.ID)
	require.NoError(t, err)
	require.Empty(t, pending)
	require.Contains(t, f.notifier.types(), models.EventInviteAccepted)
}

func TestInviteAcceptOnFullTeamStaysPending(t *testing.T) {
	f := newTeamFixture(t)
	ctx := context.Background()
	tour := f.openTournament(4, 1)
	captain := f.store.addUser("cap", models.RolePlayer)
	invitee := f.store.addUser("invitee", models.RolePlayer)
	team := f.registerTeam(t, tour, captain, "Solo")

	invite, err := f.inviteSvc.InviteToTeam(ctx, captain.ID, tour.ID, InviteInput{TeamName: "Solo", InviteeID: invitee.ID})
	require.NoError(t, err)

	_, err = f.inviteSvc.RespondToInvite(ctx, invitee.ID, invite.ID, true)
	require.ErrorIs(t, err, ErrTeamFull)
	require.Equal(t, models.InvitePending, f.store.invite(invite.ID).Status)
	require.Equal(t, 1, f.store.team(team.ID).PlayerCount)
}

func TestInviteRejectIsTerminal(t *testing.T) {
	f := newTeamFixture(t)
	ctx := context.Background()
	tour := f.openTournament(4, 2)
	captain := f.store.addUser("cap", models.RolePlayer)
	invitee := f.store.addUser("invitee", models.RolePlayer)
	f.registerTeam(t, tour, captain, "Duo")

	invite, err := f.inviteSvc.InviteToTeam(ctx, captain.ID, tour.ID, InviteInput{TeamName: "Duo", InviteeID: invitee.ID})
	require.NoError(t, err)

	rejected, err := f.inviteSvc.RespondToInvite(ctx, invitee.ID, invite.ID, false)
	require.NoError(t, err)
	require.Equal(t, models.InviteRejected, rejected.Status)

	_, err = f.inviteSvc.RespondToInvite(ctx, invitee.ID, invite.ID, true)
	require.ErrorIs(t, err, ErrInviteAlreadyResolved)
	require.Equal(t, models.InviteRejected, f.store.invite(invite.ID).Status)

	_, err = f.inviteSvc.InviteToTeam(ctx, captain.ID, tour.ID, InviteInput{TeamName: "Duo", InviteeID: invitee.ID})
	require.ErrorIs(t, err, ErrInviteConflict)
}

func TestInviteToTeamRules(t *testing.T) {
	f := newTeamFixture(t)
	ctx := context.Background()
	tour := f.openTournament(4, 3)
	captain := f.store.addUser("cap", models.RolePlayer)
	other := f.store.addUser("other", models.RolePlayer)
	invitee := f.store.addUser("invitee", models.RolePlayer)
	f.registerTeam(t, tour, captain, "Crew")

	_, err := f.inviteSvc.InviteToTeam(ctx, captain.ID, tour.ID, InviteInput{TeamName: "Missing", InviteeID: invitee.ID})
	require.ErrorIs(t, err, ErrTeamNotFound)

	_, err = f.inviteSvc.InviteToTeam(ctx, other.ID, tour.ID, InviteInput{TeamName: "Crew", InviteeID: invitee.ID})
	require.ErrorIs(t, err, ErrNotTeamCaptain)

	_, err = f.inviteSvc.InviteToTeam(ctx, captain.ID, tour.ID, InviteInput{TeamName: "Crew", InviteeID: captain.ID})
	require.ErrorIs(t, err, ErrSelfInvite)

	_, err = f.inviteSvc.InviteToTeam(ctx, captain.ID, tour.ID, InviteInput{TeamName: "Crew", InviteeID: uuid.New()})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.inviteSvc.InviteToTeam(ctx, captain.ID, tour.ID, InviteInput{TeamName: "Crew"})
	require.ErrorIs(t, err, ErrValidationFailed)
}

func TestRespondToSomeoneElsesInvite(t *testing.T) {
	f := newTeamFixture(t)
	ctx := context.Background()
	tour := f.openTournament(4, 3)
	captain := f.store.addUser("cap", models.RolePlayer)
	invitee := f.store.addUser("invitee", models.RolePlayer)
	stranger := f.store.addUser("stranger", models.RolePlayer)
	f.registerTeam(t, tour, captain, "Crew")

	invite, err := f.inviteSvc.InviteToTeam(ctx, captain.ID, tour.ID, InviteInput{TeamName: "Crew", InviteeID: invitee.ID})
	require.NoError(t, err)

	_, err = f.inviteSvc.RespondToInvite(ctx, stranger.ID, invite.ID, true)
	require.ErrorIs(t, err, ErrInviteNotFound)
	_, err = f.inviteSvc.RespondToInvite(ctx, invitee.ID, uuid.New(), true)
	require.ErrorIs(t, err, ErrInviteNotFound)
	require.Equal(t, models.InvitePending, f.store.invite(invite.ID).Status)
}
