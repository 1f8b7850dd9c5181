package policy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"yamdb/proj/internal/domain/models"
)

var (
	anon      = Anonymous
	user      = Actor{ID: 1, Kind: KindUser}
	otherUser = Actor{ID: 2, Kind: KindUser}
	moderator = Actor{ID: 3, Kind: KindModerator}
	admin     = Actor{ID: 4, Kind: KindAdmin}
)

func TestActorFrom(t *testing.T) {
	testCases := []struct {
		name string
		user *models.User
		want Actor
	}{
		{"nil", nil, Anonymous},
		{"anonymous", models.AnonymousUser, Anonymous},
		{"inactive", &models.User{ID: 1, Role: models.RoleAdmin}, Anonymous},
		{"user", &models.User{ID: 1, Role: models.RoleUser, IsActive: true}, Actor{ID: 1, Kind: KindUser}},
		{"moderator", &models.User{ID: 2, Role: models.RoleModerator, IsActive: true}, Actor{ID: 2, Kind: KindModerator}},
		{"admin", &models.User{ID: 3, Role: models.RoleAdmin, IsActive: true}, Actor{ID: 3, Kind: KindAdmin}},
		{"superuser", &models.User{ID: 4, Role: models.RoleUser, IsSuperuser: true, IsActive: true}, Actor{ID: 4, Kind: KindAdmin}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ActorFrom(tc.user))
		})
	}
}

func TestActionFor(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.Equal(t, ActionRead, ActionFor(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete} {
		assert.Equal(t, ActionWrite, ActionFor(m), m)
	}
}

func TestAdminOrReadOnly(t *testing.T) {
	testCases := []struct {
		actor  Actor
		action Action
		want   Decision
	}{
		{anon, ActionRead, Allow},
		{user, ActionRead, Allow},
		{anon, ActionWrite, DenyUnauthenticated},
		{user, ActionWrite, DenyForbidden},
		{moderator, ActionWrite, DenyForbidden},
		{admin, ActionWrite, Allow},
	}
	for _, tc := range testCases {
		t.Run(tc.actor.Kind.String()+"/"+tc.action.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, AdminOrReadOnly.Collection(tc.actor, tc.action))
			assert.Equal(t, tc.want, AdminOrReadOnly.Object(tc.actor, tc.action, tc.actor.ID))
		})
	}
}

func TestAdminOnly(t *testing.T) {
	testCases := []struct {
		actor  Actor
		action Action
		want   Decision
	}{
		{anon, ActionRead, DenyUnauthenticated},
		{user, ActionRead, DenyForbidden},
		{moderator, ActionRead, DenyForbidden},
		{admin, ActionRead, Allow},
		{user, ActionWrite, DenyForbidden},
		{admin, ActionWrite, Allow},
	}
	for _, tc := range testCases {
		t.Run(tc.actor.Kind.String()+"/"+tc.action.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, AdminOnly.Collection(tc.actor, tc.action))
		})
	}
}

func TestOwnerOrPrivileged(t *testing.T) {
	t.Run("collection", func(t *testing.T) {
		assert.Equal(t, Allow, OwnerOrPrivileged.Collection(anon, ActionRead))
		assert.Equal(t, DenyUnauthenticated, OwnerOrPrivileged.Collection(anon, ActionWrite))
		assert.Equal(t, Allow, OwnerOrPrivileged.Collection(user, ActionWrite))
	})
	const ownerID = 1
	testCases := []struct {
		name   string
		actor  Actor
		action Action
		want   Decision
	}{
		{"anonymous read", anon, ActionRead, Allow},
		{"anonymous write", anon, ActionWrite, DenyUnauthenticated},
		{"owner write", user, ActionWrite, Allow},
		{"stranger write", otherUser, ActionWrite, DenyForbidden},
		{"stranger read", otherUser, ActionRead, Allow},
		{"moderator write", moderator, ActionWrite, Allow},
		{"admin write", admin, ActionWrite, Allow},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, OwnerOrPrivileged.Object(tc.actor, tc.action, ownerID))
		})
	}
}

func TestAuthenticated(t *testing.T) {
	assert.Equal(t, DenyUnauthenticated, Authenticated.Collection(anon, ActionRead))
	assert.Equal(t, Allow, Authenticated.Collection(user, ActionWrite))
	assert.True(t, Authenticated.Object(moderator, ActionRead, 0).Allowed())
}
