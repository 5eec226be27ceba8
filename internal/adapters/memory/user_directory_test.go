package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/mmk-sso/internal/domain/auth"
)

func TestUserDirectory_ProvisionThenFind(t *testing.T) {
	dir := NewUserDirectory()
	ctx := context.Background()

	missing, err := dir.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, isNew, err := dir.Provision(ctx, domainauth.NewUser{
		Email:     "a@example.com",
		FirstName: "Ada",
		Locale:    "en",
		Roles:     []domainauth.RoleRef{{ID: "admin"}},
	})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)

	found, err := dir.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, []domainauth.RoleRef{{ID: "admin"}}, found.Roles)

	other, err := dir.FindByEmail(ctx, "A@example.com")
	require.NoError(t, err)
	assert.Nil(t, other, "lookup is exact")

	again, isNew, err := dir.Provision(ctx, domainauth.NewUser{Email: "a@example.com", FirstName: "Other"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "Ada", again.FirstName)
}

func TestUserDirectory_ConcurrentProvisionYieldsOneUser(t *testing.T) {
	dir := NewUserDirectory()
	ctx := context.Background()

	const n = 16
	ids := make([]string, n)
	var creations atomic.Int32
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, isNew, err := dir.Provision(ctx, domainauth.NewUser{Email: "race@example.com"})
			if err == nil {
				ids[i] = u.ID
			}
			if isNew {
				creations.Add(1)
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, dir.c.ItemCount())
	assert.Equal(t, int32(1), creations.Load())
}

func TestUserDirectory_ProvisionRequiresEmail(t *testing.T) {
	_, _, err := NewUserDirectory().Provision(context.Background(), domainauth.NewUser{Email: " "})
	require.Error(t, err)
}
