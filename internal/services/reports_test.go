package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store/memstore"
)

func TestReportLifecycle(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewReportService(memstore.New(), dir)
	require.NoError(t, err)
	ctx := context.Background()
	admin := models.Admin{ID: "a1"}

	_, err = svc.Create(ctx, models.Doctor{ID: "d1"}, NewReport{Title: "x", Filename: "a.pdf", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = svc.Create(ctx, admin, NewReport{Filename: "a.pdf", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, models.ErrValidation)

	for _, name := range []string{"page.html", "logo.SVG", "run.js", "noext"} {
		_, err = svc.Create(ctx, admin, NewReport{Title: "x", Filename: name, Body: strings.NewReader("<script>")})
		assert.ErrorIs(t, err, models.ErrValidation, name)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "refused uploads leave nothing on disk")

	r, err := svc.Create(ctx, admin, NewReport{
		Title: "Q3 summary", Description: "visits", Filename: "../../etc/Q3.PDF", Body: strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(r.FilePath, "/uploads/"))
	assert.True(t, strings.HasSuffix(r.FilePath, ".pdf"))

	onDisk := filepath.Join(dir, filepath.Base(r.FilePath))
	b, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(b))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, admin, r.ID))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, svc.Delete(ctx, admin, r.ID), models.ErrNotFound)
}
