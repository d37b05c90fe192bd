package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/benderchat/bender/internal/errors"
	"github.com/benderchat/bender/internal/payload"
	"github.com/benderchat/bender/internal/store/sqlstore/sqlstoretest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func errType(t *testing.T, err error) apperrors.ErrorType {
	t.Helper()
	require.Error(t, err)
	return apperrors.AsStructuredError(err).Type
}

func TestSignupAndLogin(t *testing.T) {
	st := sqlstoretest.Open(t)
	conn := st.Acquire()
	defer conn.Close()
	ctx := context.Background()
	svc := NewService(bcrypt.MinCost)

	id, err := svc.Signup(ctx, conn, Credentials{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, conn, Credentials{Username: "alice", Password: "pw2"})
	assert.Equal(t, apperrors.TypeConflict, errType(t, err))

	user, err := svc.Login(ctx, conn, Credentials{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.False(t, user.IsAdmin)
	assert.NotContains(t, user.PasswordHash, "pw1")

	for _, wrong := range []string{"wrong", "pw2", "pw", "pw1 ", "PW1", ""} {
		_, err = svc.Login(ctx, conn, Credentials{Username: "alice", Password: wrong})
		assert.Equal(t, apperrors.TypeAuth, errType(t, err), wrong)
	}

	_, err = svc.Login(ctx, conn, Credentials{Username: "nobody", Password: "pw1"})
	assert.Equal(t, apperrors.TypeAuth, errType(t, err))
}

func TestConcurrentSignupSameName(t *testing.T) {
	st := sqlstoretest.OpenFile(t)
	svc := NewService(bcrypt.MinCost)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := st.Acquire()
			defer conn.Close()
			_, errs[i] = svc.Signup(context.Background(), conn, Credentials{Username: "racer", Password: fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		if apperrors.AsStructuredError(err).Type == apperrors.TypeConflict {
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

func TestParseCredentials(t *testing.T) {
	tests := []struct {
		body string
		ok   bool
	}{
		{`{"username":"a","password":"b"}`, true},
		{`{"username":"","password":""}`, true},
		{`{"username":"a"}`, false},
		{`{"password":"b"}`, false},
		{`{"username":null,"password":"b"}`, false},
		{`{"username":5,"password":"b"}`, false},
	}
	for _, tt := range tests {
		obj, err := payload.Decode(strings.NewReader(tt.body))
		require.NoError(t, err)
		_, err = ParseCredentials(obj)
		if tt.ok {
			assert.NoError(t, err, tt.body)
			continue
		}
		assert.Equal(t, apperrors.TypeValidation, errType(t, err), tt.body)
		assert.Equal(t, "Missing username or password", apperrors.AsStructuredError(err).Message)
	}
}

func TestEnsureAdmin(t *testing.T) {
	st := sqlstoretest.Open(t)
	conn := st.Acquire()
	defer conn.Close()
	ctx := context.Background()
	svc := NewService(bcrypt.MinCost)

	id, err := svc.Signup(ctx, conn, Credentials{Username: "carol", Password: "pw"})
	require.NoError(t, err)

	got, err := svc.EnsureAdmin(ctx, conn, Credentials{Username: "carol", Password: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	user, err := svc.Login(ctx, conn, Credentials{Username: "carol", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)

	fresh, err := svc.EnsureAdmin(ctx, conn, Credentials{Username: "root", Password: "toor"})
	require.NoError(t, err)
	user, err = svc.Login(ctx, conn, Credentials{Username: "root", Password: "toor"})
	require.NoError(t, err)
	assert.Equal(t, fresh, user.ID)
	assert.True(t, user.IsAdmin)
}
