package content

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	apperrors "github.com/benderchat/bender/internal/errors"
	"github.com/benderchat/bender/internal/payload"
	"github.com/benderchat/bender/internal/store/sqlstore/sqlstoretest"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) payload.Object {
	t.Helper()
	obj, err := payload.Decode(strings.NewReader(body))
	require.NoError(t, err)
	return obj
}

func errType(err error) apperrors.ErrorType {
	return apperrors.AsStructuredError(err).Type
}

func TestRenderMarkdown(t *testing.T) {
	html := RenderMarkdown("**hi**")
	assert.Contains(t, html, "<strong>hi</strong>")
	assert.Equal(t, html, RenderMarkdown("**hi**"))

	doc := "# Title\n\nSome *text* and a [link](https://example.com).\n\n- a\n- b\n"
	assert.Equal(t, RenderMarkdown(doc), RenderMarkdown(doc))
	assert.Contains(t, RenderMarkdown(doc), "<h1>Title</h1>")
	assert.Contains(t, RenderMarkdown(doc), "<li>a</li>")
}

func TestSerializeTags(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "[]"},
		{"null", "[]"},
		{`[]`, "[]"},
		{`["go", "sql"]`, `["go","sql"]`},
		{`[1, 2.5, true, null]`, `[1,2.5,true,null]`},
		{`["<b>"]`, `["<b>"]`},
		{`"go,sql"`, "go,sql"},
		{`5`, "5"},
		{`{"a": 1}`, `{"a": 1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SerializeTags(json.RawMessage(tt.raw)), tt.raw)
	}
}

func TestDecodeTags(t *testing.T) {
	assert.Equal(t, []any{"go", "sql"}, DecodeTags(`["go","sql"]`))
	assert.Equal(t, []any{}, DecodeTags(""))
	assert.Equal(t, []any{}, DecodeTags("not json"))
	assert.Equal(t, []any{}, DecodeTags(`"a string"`))
	assert.Equal(t, []any{}, DecodeTags(`{"a":1}`))
	assert.Equal(t, []any{}, DecodeTags("null"))
}

func TestTagsRoundTrip(t *testing.T) {
	for _, list := range [][]any{{}, {"a"}, {"a", "b", "c d"}, {"ünï", "x\"y"}} {
		raw, err := json.Marshal(list)
		require.NoError(t, err)
		assert.Equal(t, list, DecodeTags(SerializeTags(raw)))
	}
}

func TestParseInput(t *testing.T) {
	in, err := ParseInput(decode(t, `{"user_id":"3","title":"T","content":"c","skin_id":1}`), true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), in.UserID)
	assert.Equal(t, int64(1), in.SkinID)
	assert.Equal(t, "", in.Subtitle)
	assert.Equal(t, "[]", in.Tags)
	assert.Nil(t, in.PublicationDatetime)

	in, err = ParseInput(decode(t, `{"title":"T","content":"c","skin_id":1,"subtitle":null,"author":"Ann","publication_datetime":"2024-05-01T10:00","tags":["x"]}`), false)
	require.NoError(t, err)
	assert.Equal(t, "", in.Subtitle)
	assert.Equal(t, "Ann", in.Author)
	require.NotNil(t, in.PublicationDatetime)
	assert.Equal(t, "2024-05-01T10:00", *in.PublicationDatetime)
	assert.Equal(t, `["x"]`, in.Tags)

	in, err = ParseInput(decode(t, `{"title":"T","content":"c","skin_id":1,"publication_datetime":""}`), false)
	require.NoError(t, err)
	assert.Nil(t, in.PublicationDatetime)

	bad := []string{
		`{"title":"T","content":"c","skin_id":1}`,
		`{"user_id":1,"content":"c","skin_id":1}`,
		`{"user_id":1,"title":"T","skin_id":1}`,
		`{"user_id":1,"title":"T","content":"c"}`,
		`{"user_id":1,"title":null,"content":"c","skin_id":1}`,
	}
	for _, body := range bad {
		_, err := ParseInput(decode(t, body), true)
		require.Error(t, err, body)
		se := apperrors.AsStructuredError(err)
		assert.Equal(t, apperrors.TypeValidation, se.Type, body)
		assert.Equal(t, "Missing required fields", se.Message, body)
	}

	_, err = ParseInput(decode(t, `{"user_id":"abc","title":"T","content":"c","skin_id":1}`), true)
	assert.Equal(t, apperrors.TypeValidation, errType(err))
	_, err = ParseInput(decode(t, `{"title":"T","content":42,"skin_id":1}`), false)
	assert.Equal(t, apperrors.TypeValidation, errType(err))
	_, err = ParseInput(decode(t, `{"title":5,"content":"c","skin_id":1}`), false)
	assert.Equal(t, "Invalid value for title", apperrors.AsStructuredError(err).Message)
}

func TestServiceLifecycle(t *testing.T) {
	st := sqlstoretest.Open(t)
	conn := st.Acquire()
	defer conn.Close()
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC))
	svc := NewService(clock)

	in, err := ParseInput(decode(t, `{"user_id":1,"title":"T","content":"**hi**","skin_id":1}`), true)
	require.NoError(t, err)
	id, err := svc.Create(ctx, conn, in)
	require.NoError(t, err)

	got, err := svc.Get(ctx, conn, id)
	require.NoError(t, err)
	assert.Contains(t, got.ContentHTML, "<strong>hi</strong>")
	assert.Equal(t, []any{}, got.Tags)
	assert.Nil(t, got.UpdatedAt)

	clock.Advance(time.Hour)
	edit, err := ParseInput(decode(t, `{"title":"T2","content":"_x_","skin_id":2,"tags":["a","b"]}`), false)
	require.NoError(t, err)
	require.NoError(t, svc.Edit(ctx, conn, id, edit))

	got, err = svc.Get(ctx, conn, id)
	require.NoError(t, err)
	assert.Equal(t, "T2", got.Title)
	assert.Equal(t, int64(1), got.UserID, "edit keeps the author")
	assert.Equal(t, "<p><em>x</em></p>\n", got.ContentHTML)
	assert.Equal(t, []any{"a", "b"}, got.Tags)
	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, "2024-03-04 06:06:07", *got.UpdatedAt)

	err = svc.Edit(ctx, conn, id+99, edit)
	assert.Equal(t, apperrors.TypeNotFound, errType(err))

	list, err := svc.List(ctx, conn, "1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, `["a","b"]`, list[0].Tags)

	list, err = svc.List(ctx, conn, "abc")
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.Delete(ctx, conn, id))
	err = svc.Delete(ctx, conn, id)
	assert.Equal(t, apperrors.TypeNotFound, errType(err))
	_, err = svc.Get(ctx, conn, id)
	assert.Equal(t, apperrors.TypeNotFound, errType(err))
}
