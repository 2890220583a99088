package sync

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdbridge/internal/domain/credential"
	"sdbridge/internal/infrastructure/servicedesk"
)

func refreshableCred(userID int64, username string) *credential.Credential {
	return &credential.Credential{
		UserID:   userID,
		RemoteID: int(userID) + 40,
		Username: username,
		Role:     credential.RoleExecutor,
		Secret:   "pw-" + username,
		Token:    "stale",
		ChatID:   userID * 100,
	}
}

func TestReauth_RefreshesTokens(t *testing.T) {
	ctx := context.Background()
	creds := newFakeCredRepo(refreshableCred(1, "alpha"), refreshableCred(2, "beta"))
	notifier := newFakeNotifier()
	source := &fakeSource{
		authenticateFunc: func(_ context.Context, username, password string) (*servicedesk.AuthResult, error) {
			return &servicedesk.AuthResult{Username: username, Token: "fresh-" + username}, nil
		},
	}

	svc := NewReauthService(creds, source, notifier, newNopLogger())
	require.NoError(t, svc.RunOnce(ctx, false))

	for userID, username := range map[int64]string{1: "alpha", 2: "beta"} {
		cred, err := creds.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "fresh-"+username, cred.Token)
	}
	assert.Empty(t, notifier.sent)
}

func TestReauth_RejectedSecretNotifiesAndClearsTokenOnly(t *testing.T) {
	ctx := context.Background()
	creds := newFakeCredRepo(refreshableCred(1, "alpha"), refreshableCred(2, "beta"))
	notifier := newFakeNotifier()
	source := &fakeSource{
		authenticateFunc: func(_ context.Context, username, _ string) (*servicedesk.AuthResult, error) {
			if username == "alpha" {
				return nil, &servicedesk.UnauthorizedError{StatusCode: 401}
			}
			return &servicedesk.AuthResult{Username: username, Token: "fresh"}, nil
		},
	}

	svc := NewReauthService(creds, source, notifier, newNopLogger())
	require.NoError(t, svc.RunOnce(ctx, false))

	rejected, err := creds.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rejected.Token)
	assert.Equal(t, "pw-alpha", rejected.Secret, "a rejected secret is kept for a later retry")
	require.Len(t, notifier.sentTo(100), 1)
	assert.Contains(t, notifier.sentTo(100)[0], "/link")

	// The other user is still refreshed.
	ok, err := creds.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "fresh", ok.Token)
}

func TestReauth_TransientErrorQuietByDefault(t *testing.T) {
	ctx := context.Background()
	creds := newFakeCredRepo(refreshableCred(1, "alpha"))
	notifier := newFakeNotifier()
	source := &fakeSource{
		authenticateFunc: func(context.Context, string, string) (*servicedesk.AuthResult, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}

	svc := NewReauthService(creds, source, notifier, newNopLogger())
	require.NoError(t, svc.RunOnce(ctx, false))

	cred, err := creds.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "stale", cred.Token, "a transient failure leaves the token alone")
	assert.Empty(t, notifier.sent)

	// With notifyTransient set, the user hears about it.
	require.NoError(t, svc.RunOnce(ctx, true))
	require.Len(t, notifier.sentTo(100), 1)
	assert.Contains(t, notifier.sentTo(100)[0], "retry")
}
