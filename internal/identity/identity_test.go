package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifehubapp/lifehub/internal/gateway"
	"github.com/lifehubapp/lifehub/internal/identity"
)

type fakeVerifier struct {
	principal string
	err       error
}

func (v *fakeVerifier) Verify(ctx context.Context, token string) (string, error) {
	if v.err != nil {
		return "", v.err
	}
	return v.principal, nil
}

type fakeMigrator struct {
	calls []string
	err   error
}

func (m *fakeMigrator) MigrateOwnership(ctx context.Context, fromOwner, toOwner string, collections []string) error {
	m.calls = append(m.calls, fromOwner+"->"+toOwner)
	return m.err
}

func TestContext_Bootstrap(t *testing.T) {
	idc := identity.New(&fakeVerifier{}, &fakeMigrator{}, nil, nil)
	require.Equal(t, identity.StateUninitialized, idc.State())
	require.Equal(t, identity.AnonymousOwner, idc.OwnerID())

	require.NoError(t, idc.Bootstrap(context.Background()))
	require.Equal(t, identity.StateAnonymous, idc.State())

	// Bootstrapping twice is a no-op.
	require.NoError(t, idc.Bootstrap(context.Background()))
}

func TestContext_SignInTransitionsAndMigrates(t *testing.T) {
	migrator := &fakeMigrator{}
	idc := identity.New(&fakeVerifier{principal: "uid-1"}, migrator, []string{"projects"}, nil)
	ctx := context.Background()

	require.NoError(t, idc.Bootstrap(ctx))
	require.NoError(t, idc.SignIn(ctx, "token"))

	require.Equal(t, identity.StateAuthenticated, idc.State())
	require.Equal(t, "uid-1", idc.OwnerID())
	require.Equal(t, []string{"anonymous->uid-1"}, migrator.calls)
}

func TestContext_SignInRequiresBootstrap(t *testing.T) {
	idc := identity.New(&fakeVerifier{principal: "uid-1"}, &fakeMigrator{}, nil, nil)
	require.ErrorIs(t, idc.SignIn(context.Background(), "token"), identity.ErrUninitialized)
}

func TestContext_SignInRejectsBadCredentials(t *testing.T) {
	idc := identity.New(&fakeVerifier{err: errors.New("expired")}, &fakeMigrator{}, nil, nil)
	ctx := context.Background()

	require.NoError(t, idc.Bootstrap(ctx))
	err := idc.SignIn(ctx, "token")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)
	require.Equal(t, identity.StateAnonymous, idc.State())
}

func TestContext_SignInTwiceFails(t *testing.T) {
	idc := identity.New(&fakeVerifier{principal: "uid-1"}, &fakeMigrator{}, nil, nil)
	ctx := context.Background()

	require.NoError(t, idc.Bootstrap(ctx))
	require.NoError(t, idc.SignIn(ctx, "token"))
	require.ErrorIs(t, idc.SignIn(ctx, "token"), identity.ErrAlreadyAuthenticated)
}

func TestContext_PartialMigrationStillTransitions(t *testing.T) {
	migErr := &gateway.MigrationError{Failures: []gateway.FailedRecord{{Collection: "projects", ID: "p2"}}}
	idc := identity.New(&fakeVerifier{principal: "uid-1"}, &fakeMigrator{err: migErr}, nil, nil)
	ctx := context.Background()

	require.NoError(t, idc.Bootstrap(ctx))
	err := idc.SignIn(ctx, "token")

	var got *gateway.MigrationError
	require.ErrorAs(t, err, &got)
	require.Len(t, got.Failures, 1)
	require.Equal(t, identity.StateAuthenticated, idc.State())
	require.Equal(t, "uid-1", idc.OwnerID())
}

func TestContext_ObserversRunInRegistrationOrder(t *testing.T) {
	idc := identity.New(&fakeVerifier{principal: "uid-1"}, &fakeMigrator{}, nil, nil)
	ctx := context.Background()

	var order []string
	idc.OnChange(func(ctx context.Context, ownerID string) error {
		order = append(order, "first:"+ownerID)
		return nil
	})
	idc.OnChange(func(ctx context.Context, ownerID string) error {
		order = append(order, "second:"+ownerID)
		return nil
	})

	require.NoError(t, idc.Bootstrap(ctx))
	require.NoError(t, idc.SignIn(ctx, "token"))

	require.Equal(t, []string{
		"first:anonymous", "second:anonymous",
		"first:uid-1", "second:uid-1",
	}, order)
}

func TestContext_SignOut(t *testing.T) {
	idc := identity.New(&fakeVerifier{principal: "uid-1"}, &fakeMigrator{}, nil, nil)
	ctx := context.Background()

	require.ErrorIs(t, idc.SignOut(ctx), identity.ErrNotAuthenticated)

	require.NoError(t, idc.Bootstrap(ctx))
	require.NoError(t, idc.SignIn(ctx, "token"))
	require.NoError(t, idc.SignOut(ctx))

	require.Equal(t, identity.StateAnonymous, idc.State())
	require.Equal(t, identity.AnonymousOwner, idc.OwnerID())
}

func TestContext_ObserverErrorsJoined(t *testing.T) {
	idc := identity.New(&fakeVerifier{principal: "uid-1"}, &fakeMigrator{}, nil, nil)
	ctx := context.Background()

	reloadErr := errors.New("reload failed")
	idc.OnChange(func(ctx context.Context, ownerID string) error { return reloadErr })

	require.ErrorIs(t, idc.Bootstrap(ctx), reloadErr)
}
