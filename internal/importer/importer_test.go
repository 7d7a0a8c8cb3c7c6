package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/domain"
)

type fakeProducts struct {
	cleared  bool
	upserted []domain.Product
	err      error
}

func (f *fakeProducts) Search(context.Context, string, bool, int) ([]domain.Product, error) {
	return nil, nil
}

func (f *fakeProducts) List(context.Context, int) ([]domain.Product, error) { return nil, nil }

func (f *fakeProducts) Clear(context.Context) error {
	f.cleared = true
	return nil
}

func (f *fakeProducts) Upsert(_ context.Context, p domain.Product) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, p)
	return nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportCSVSemicolonAndRussianHeaders(t *testing.T) {
	path := writeCSV(t, "Артикул;Название;Остаток;Цена\n"+
		"N1280;Nokia 1280;3;1100\n"+
		"CH-01;Чехол синий;12;99,50\n")

	repo := &fakeProducts{}
	res, err := ImportCSV(context.Background(), path, repo, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, repo.cleared)
	assert.Equal(t, 2, res.Imported)
	assert.Zero(t, res.Skipped)
	assert.Zero(t, res.GeneratedSKUs)

	require.Len(t, repo.upserted, 2)
	first := repo.upserted[0]
	assert.Equal(t, "N1280", first.SKU)
	assert.Equal(t, "Nokia 1280", first.Name)
	assert.Equal(t, 3, first.Qty)
	require.NotNil(t, first.Price)
	assert.InDelta(t, 1100, *first.Price, 0.001)
	assert.Equal(t, "active", first.Status)

	second := repo.upserted[1]
	require.NotNil(t, second.Price)
	assert.InDelta(t, 99.5, *second.Price, 0.001)
}

func TestImportCSVGeneratesMissingSKUs(t *testing.T) {
	path := writeCSV(t, "name,qty\nNokia 1280,3\nЧехол,1\n")

	repo := &fakeProducts{}
	res, err := ImportCSV(context.Background(), path, repo, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.GeneratedSKUs)
	require.Len(t, repo.upserted, 2)
	assert.NotEmpty(t, repo.upserted[0].SKU)
	assert.NotEqual(t, repo.upserted[0].SKU, repo.upserted[1].SKU)
}

func TestImportCSVSkipsDuplicatesAndEmptyNames(t *testing.T) {
	path := writeCSV(t, "sku,name\n"+
		"A1,Первый\n"+
		"A1,Дубликат\n"+
		"A2,\n")

	repo := &fakeProducts{}
	res, err := ImportCSV(context.Background(), path, repo, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "Первый", repo.upserted[0].Name)
}

func TestImportCSVStripsBOM(t *testing.T) {
	path := writeCSV(t, "\ufeffname,qty\nNokia 1280,3\n")

	repo := &fakeProducts{}
	res, err := ImportCSV(context.Background(), path, repo, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
}

func TestImportCSVRequiresNameColumn(t *testing.T) {
	path := writeCSV(t, "sku,qty\nA1,3\n")

	repo := &fakeProducts{}
	_, err := ImportCSV(context.Background(), path, repo, zap.NewNop())
	assert.Error(t, err)
	assert.False(t, repo.cleared)
}

func TestImportCSVNoDataRows(t *testing.T) {
	path := writeCSV(t, "name,qty\n")

	_, err := ImportCSV(context.Background(), path, &fakeProducts{}, zap.NewNop())
	assert.Error(t, err)
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', detectDelimiter("a;b;c\n1;2;3"))
	assert.Equal(t, ',', detectDelimiter("a,b,c\n1,2,3"))
	assert.Equal(t, ',', detectDelimiter("single"))
}
