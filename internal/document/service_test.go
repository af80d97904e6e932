package document

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
)

func newTestService(t *testing.T) (*Service, *InMemoryStore) {
	t.Helper()
	store := NewInMemoryStore()
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestStoreAndRetrieve(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	raw := []byte("contenu du justificatif")
	doc, err := svc.Store(ctx, Upload{
		FileName:    "justificatif.pdf",
		ContentType: "application/pdf",
		Raw:         raw,
		Type:        TypeJustificatif,
	})
	require.NoError(t, err)
	require.NotZero(t, doc.ID)
	assert.NotEqual(t, raw, doc.Content, "persisted content is compressed")

	got, err := svc.Retrieve(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, raw, got.Raw)
	assert.Equal(t, "justificatif.pdf", got.FileName)
	assert.Equal(t, "application/pdf", got.ContentType)
}

func TestRetrieveUnknownDocument(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Retrieve(ctx, 12345)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDescribeSkipsDecompression(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	doc, err := svc.Store(ctx, Upload{
		FileName:    "notice.pdf",
		ContentType: "application/pdf",
		Raw:         []byte("notice publique"),
		Type:        TypePublic,
		Title:       "Notice",
		Description: "Guide de depot",
	})
	require.NoError(t, err)

	meta, err := svc.Describe(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, TypePublic, meta.Type)
	assert.Equal(t, "Notice", meta.Title)
	assert.Equal(t, "Guide de depot", meta.Description)
}

func TestDeleteForRequest(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	requestID := id.RequestID(7)
	otherID := id.RequestID(8)

	linked, err := svc.Store(ctx, Upload{FileName: "a.pdf", Raw: []byte("a"), Type: TypeJustificatif, RequestID: &requestID})
	require.NoError(t, err)
	kept, err := svc.Store(ctx, Upload{FileName: "b.pdf", Raw: []byte("b"), Type: TypeJustificatif, RequestID: &otherID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteForRequest(ctx, requestID))

	_, err = svc.Retrieve(ctx, linked.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = store.FindByID(ctx, kept.ID)
	require.NoError(t, err)
}

func TestListPublic(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	requestID := id.RequestID(1)
	_, err := svc.Store(ctx, Upload{FileName: "private.pdf", Raw: []byte("x"), Type: TypeJustificatif, RequestID: &requestID})
	require.NoError(t, err)
	_, err = svc.Store(ctx, Upload{FileName: "public.pdf", Raw: []byte("y"), Type: TypePublic, Title: "Formulaire"})
	require.NoError(t, err)

	docs, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "public.pdf", docs[0].FileName)
}
