package admin

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/benderchat/bender/internal/errors"
	"github.com/benderchat/bender/internal/payload"
	"github.com/benderchat/bender/internal/store"
	"github.com/benderchat/bender/internal/store/sqlstore/sqlstoretest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errType(err error) apperrors.ErrorType {
	return apperrors.AsStructuredError(err).Type
}

func seedUserWithArticles(t *testing.T, conn store.Conn, name string, articles int) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := conn.CreateUser(ctx, name, "hash", false)
	require.NoError(t, err)
	for i := 0; i < articles; i++ {
		_, err := conn.CreateArticle(ctx, id, store.ArticleFields{Title: "t", Content: "c", ContentHTML: "<p>c</p>\n", SkinID: 1, Tags: "[]"})
		require.NoError(t, err)
	}
	return id
}

func TestDeleteUserCascades(t *testing.T) {
	st := sqlstoretest.Open(t)
	conn := st.Acquire()
	defer conn.Close()
	ctx := context.Background()
	svc := NewService()

	victim := seedUserWithArticles(t, conn, "victim", 3)
	other := seedUserWithArticles(t, conn, "other", 1)

	require.NoError(t, svc.DeleteUser(ctx, conn, victim, &other))

	left, err := conn.ListArticles(ctx, &victim)
	require.NoError(t, err)
	assert.Empty(t, left)

	users, err := svc.ListUsers(ctx, conn)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, other, users[0].ID)

	all, err := svc.ListArticles(ctx, conn)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteUserSelfGuard(t *testing.T) {
	st := sqlstoretest.Open(t)
	conn := st.Acquire()
	defer conn.Close()
	ctx := context.Background()
	svc := NewService()

	me := seedUserWithArticles(t, conn, "me", 2)

	err := svc.DeleteUser(ctx, conn, me, &me)
	require.Error(t, err)
	se := apperrors.AsStructuredError(err)
	assert.Equal(t, apperrors.TypeForbidden, se.Type)
	assert.Equal(t, "Cannot delete your own account while logged in", se.Message)

	users, err := svc.ListUsers(ctx, conn)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	mine, err := conn.ListArticles(ctx, &me)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestDeleteUserMissingRollsBack(t *testing.T) {
	st := sqlstoretest.Open(t)
	conn := st.Acquire()
	defer conn.Close()
	ctx := context.Background()
	svc := NewService()

	ghost := int64(404)
	_, err := conn.CreateArticle(ctx, ghost, store.ArticleFields{Title: "orphan", Content: "c", ContentHTML: "c", SkinID: 1, Tags: "[]"})
	require.NoError(t, err)

	err = svc.DeleteUser(ctx, conn, ghost, nil)
	assert.Equal(t, apperrors.TypeNotFound, errType(err))
	assert.Equal(t, "User not found", apperrors.AsStructuredError(err).Message)

	left, err := conn.ListArticles(ctx, &ghost)
	require.NoError(t, err)
	assert.Len(t, left, 1, "articles survive when no user row was deleted")
}

func TestSetAdminStatus(t *testing.T) {
	st := sqlstoretest.Open(t)
	conn := st.Acquire()
	defer conn.Close()
	ctx := context.Background()
	svc := NewService()

	id := seedUserWithArticles(t, conn, "dave", 0)
	require.NoError(t, svc.SetAdminStatus(ctx, conn, id, true))

	admins, err := svc.ListAdmins(ctx, conn)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "dave", admins[0].Username)

	require.NoError(t, svc.SetAdminStatus(ctx, conn, id, false))
	admins, err = svc.ListAdmins(ctx, conn)
	require.NoError(t, err)
	assert.Empty(t, admins)

	err = svc.SetAdminStatus(ctx, conn, id+1, true)
	assert.Equal(t, apperrors.TypeNotFound, errType(err))
}

func TestParseAdminFlag(t *testing.T) {
	tests := []struct {
		body    string
		want    bool
		wantMsg string
	}{
		{`{"is_admin": true}`, true, ""},
		{`{"is_admin": false}`, false, ""},
		{`{"is_admin": 1}`, true, ""},
		{`{"is_admin": 0}`, false, ""},
		{`{"is_admin": "yes"}`, true, ""},
		{`{"is_admin": ""}`, false, ""},
		{`{"is_admin": null}`, false, "Missing is_admin field"},
		{`{"other": true}`, false, "Missing is_admin field"},
	}
	for _, tt := range tests {
		obj, err := payload.Decode(strings.NewReader(tt.body))
		require.NoError(t, err)
		got, err := ParseAdminFlag(obj)
		if tt.wantMsg != "" {
			require.Error(t, err, tt.body)
			assert.Equal(t, tt.wantMsg, apperrors.AsStructuredError(err).Message)
			continue
		}
		require.NoError(t, err, tt.body)
		assert.Equal(t, tt.want, got, tt.body)
	}

	_, err := ParseAdminFlag(nil)
	assert.Equal(t, "No data provided", apperrors.AsStructuredError(err).Message)
}

func TestDeleteArticle(t *testing.T) {
	st := sqlstoretest.Open(t)
	conn := st.Acquire()
	defer conn.Close()
	ctx := context.Background()
	svc := NewService()

	id, err := conn.CreateArticle(ctx, 1, store.ArticleFields{Title: "t", Content: "c", ContentHTML: "c", SkinID: 1, Tags: "[]"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteArticle(ctx, conn, id))
	err = svc.DeleteArticle(ctx, conn, id)
	assert.Equal(t, apperrors.TypeNotFound, errType(err))
	assert.Equal(t, "Article not found", apperrors.AsStructuredError(err).Message)
}

func TestDeleteUserStorageFailureRollsBack(t *testing.T) {
	st, raw := sqlstoretest.OpenRaw(t)
	conn := st.Acquire()
	defer conn.Close()
	ctx := context.Background()
	svc := NewService()

	victim := seedUserWithArticles(t, conn, "victim", 2)
	_, err := raw.Exec(`CREATE TRIGGER users_no_delete BEFORE DELETE ON users BEGIN SELECT RAISE(ABORT, 'boom'); END`)
	require.NoError(t, err)

	err = svc.DeleteUser(ctx, conn, victim, nil)
	se := apperrors.AsStructuredError(err)
	assert.Equal(t, apperrors.TypeStorage, se.Type)
	assert.Equal(t, "Database error occurred", se.Message)

	left, err := conn.ListArticles(ctx, &victim)
	require.NoError(t, err)
	assert.Len(t, left, 2, "article deletion is rolled back with the failed user delete")
	users, err := svc.ListUsers(ctx, conn)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestStorageErrorsOnMissingTable(t *testing.T) {
	st, raw := sqlstoretest.OpenRaw(t)
	conn := st.Acquire()
	defer conn.Close()
	ctx := context.Background()
	svc := NewService()

	_, err := raw.Exec(`DROP TABLE articles`)
	require.NoError(t, err)

	_, err = svc.ListArticles(ctx, conn)
	se := apperrors.AsStructuredError(err)
	assert.Equal(t, apperrors.TypeStorage, se.Type)
	assert.Contains(t, se.Message, "no such table: articles")

	err = svc.DeleteArticle(ctx, conn, 1)
	se = apperrors.AsStructuredError(err)
	assert.Equal(t, apperrors.TypeStorage, se.Type)
	assert.Equal(t, "Database error occurred", se.Message)
}
