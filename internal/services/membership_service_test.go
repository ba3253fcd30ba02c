package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/models"
)

func TestMembershipService_RequestToJoin(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	project := env.createProject(t, "Launch Plan", owner.ID)

	request, err := env.memberships.RequestToJoin(project.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusPending, request.Status)
	require.Equal(t, bob.ID, request.UserID)

	// A second request with the first still pending conflicts.
	_, err = env.memberships.RequestToJoin(project.ID, bob.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	// The owner is a member by definition, even without a membership row.
	_, err = env.memberships.RequestToJoin(project.ID, owner.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	_, err = env.memberships.RequestToJoin(9999, bob.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestMembershipService_RequestToJoin_ExistingMember(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	project := env.createProject(t, "Launch Plan", owner.ID)
	env.addMember(t, project.ID, bob.ID)

	_, err := env.memberships.RequestToJoin(project.ID, bob.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestMembershipService_ApproveRequest(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	project := env.createProject(t, "Launch Plan", owner.ID)
	env.addMember(t, project.ID, carol.ID)

	request, err := env.memberships.RequestToJoin(project.ID, bob.ID)
	require.NoError(t, err)

	// Only the owner resolves requests; a plain member may not.
	_, err = env.memberships.ApproveRequest(request.ID, carol.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindPermission))

	approved, err := env.memberships.ApproveRequest(request.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusApproved, approved.Status)

	isMember, err := env.memberships.IsMember(project.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, isMember)

	// Exactly one membership row came out of the approval.
	var count int64
	require.NoError(t, env.db.Model(&models.Membership{}).
		Where("project_id = ? AND user_id = ?", project.ID, bob.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	// Approving twice conflicts; the request is no longer pending.
	_, err = env.memberships.ApproveRequest(request.ID, owner.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	_, err = env.memberships.ApproveRequest(9999, owner.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestMembershipService_RejectRequest_AllowsRetry(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	project := env.createProject(t, "Launch Plan", owner.ID)

	request, err := env.memberships.RequestToJoin(project.ID, bob.ID)
	require.NoError(t, err)

	rejected, err := env.memberships.RejectRequest(request.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusRejected, rejected.Status)

	isMember, err := env.memberships.IsMember(project.ID, bob.ID)
	require.NoError(t, err)
	require.False(t, isMember)

	_, err = env.memberships.RejectRequest(request.ID, owner.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	// A rejection is not a ban: the user may file a fresh request.
	retry, err := env.memberships.RequestToJoin(project.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusPending, retry.Status)
	require.NotEqual(t, request.ID, retry.ID)
}

func TestMembershipService_AddMember(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	project := env.createProject(t, "Launch Plan", owner.ID)
	env.addMember(t, project.ID, carol.ID)

	err := env.memberships.AddMember(project.ID, bob.ID, carol.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindPermission))

	err = env.memberships.AddMember(project.ID, 9999, owner.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	err = env.memberships.AddMember(project.ID, owner.ID, owner.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	require.NoError(t, env.memberships.AddMember(project.ID, bob.ID, owner.ID))

	err = env.memberships.AddMember(project.ID, bob.ID, owner.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestMembershipService_AddMember_ResolvesPendingRequest(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	project := env.createProject(t, "Launch Plan", owner.ID)

	request, err := env.memberships.RequestToJoin(project.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, env.memberships.AddMember(project.ID, bob.ID, owner.ID))

	// The direct add consumed the pending request.
	var stored models.JoinRequest
	require.NoError(t, env.db.First(&stored, request.ID).Error)
	require.Equal(t, models.RequestStatusApproved, stored.Status)

	pending, err := env.memberships.ListPendingRequests(project.ID, owner.ID)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestMembershipService_RemoveMember(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	project := env.createProject(t, "Launch Plan", owner.ID)
	env.addMember(t, project.ID, bob.ID)
	env.addMember(t, project.ID, carol.ID)

	// A member cannot remove another member.
	err := env.memberships.RemoveMember(project.ID, bob.ID, carol.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindPermission))

	// Owner removes bob; carol removes herself.
	require.NoError(t, env.memberships.RemoveMember(project.ID, bob.ID, owner.ID))
	require.NoError(t, env.memberships.RemoveMember(project.ID, carol.ID, carol.ID))

	err = env.memberships.RemoveMember(project.ID, bob.ID, owner.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	isMember, err := env.memberships.IsMember(project.ID, bob.ID)
	require.NoError(t, err)
	require.False(t, isMember)
}

func TestMembershipService_ListMembers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	outsider := env.createUser(t, "carol")
	project := env.createProject(t, "Launch Plan", owner.ID)
	env.addMember(t, project.ID, bob.ID)

	listed, members, err := env.memberships.ListMembers(project.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, project.ID, listed.ID)
	require.Equal(t, "alice", listed.Owner.Username)
	require.Len(t, members, 1)
	require.Equal(t, "bob", members[0].User.Username)

	_, _, err = env.memberships.ListMembers(project.ID, outsider.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindPermission))
}

func TestMembershipService_ListPendingRequests_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	project := env.createProject(t, "Launch Plan", owner.ID)
	env.addMember(t, project.ID, carol.ID)

	_, err := env.memberships.RequestToJoin(project.ID, bob.ID)
	require.NoError(t, err)

	_, err = env.memberships.ListPendingRequests(project.ID, carol.ID)
	require.True(t, apperrors.IsKind(err, apperrors.KindPermission))

	pending, err := env.memberships.ListPendingRequests(project.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "bob", pending[0].User.Username)
}
