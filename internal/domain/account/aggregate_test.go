package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestAccount(t *testing.T) Account {
	t.Helper()
	a, err := Register("acct-1", "alice@example.com", "$2a$hash", RoleCustomer, now)
	require.NoError(t, err)
	return Reconstruct(a.State(), 1)
}

func TestRegister(t *testing.T) {
	a, err := Register("acct-1", "alice@example.com", "$2a$hash", RoleCustomer, now)

	require.NoError(t, err)
	assert.True(t, a.IsActive())
	assert.Equal(t, RoleCustomer, a.Role())
	require.Len(t, a.Events(), 1)
	data := a.Events()[0].Data.(AccountRegistered)
	assert.Equal(t, "alice@example.com", data.Email.String())
}

func TestRegister_Validation(t *testing.T) {
	_, err := Register("acct-1", "alice@example.com", "", RoleCustomer, now)
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = Register("acct-1", "alice@example.com", "hash", "superuser", now)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAccount_RecordLogin(t *testing.T) {
	next, err := newTestAccount(t).RecordLogin(now)

	require.NoError(t, err)
	require.NotNil(t, next.State().LastLoginAt)
	assert.Equal(t, EventAccountLoggedIn, next.Events()[0].EventType)

	_, err = newTestAccount(t).Deactivate(now).RecordLogin(now)
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestAccount_ChangePassword(t *testing.T) {
	next, err := newTestAccount(t).ChangePassword("$2a$new", now)
	require.NoError(t, err)
	assert.Equal(t, "$2a$new", next.PasswordHash())

	_, err = newTestAccount(t).ChangePassword("", now)
	assert.ErrorIs(t, err, ErrPasswordRequired)
}

func TestAccount_DeactivateActivate(t *testing.T) {
	a := newTestAccount(t)
	assert.Empty(t, a.Activate(now).Events())

	off := a.Deactivate(now)
	assert.False(t, off.IsActive())
	require.Len(t, off.Events(), 1)

	on := Reconstruct(off.State(), 2).Activate(now)
	assert.True(t, on.IsActive())
	assert.Equal(t, EventAccountActivated, on.Events()[0].EventType)
}
