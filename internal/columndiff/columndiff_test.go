package columndiff_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doccompare/internal/columndiff"
	"doccompare/internal/domain"
	"doccompare/internal/tablealign"
)

var valueComparer = cmp.Comparer(func(a, b domain.Value) bool { return a.Equal(b) })

func priceTables(t *testing.T) *tablealign.Alignment {
	t.Helper()
	left := domain.Dataset{Columns: []string{"ID", "Price", "Note"}, Records: []domain.Record{
		{"ID": domain.NumberValue(1), "Price": domain.NumberValue(100), "Note": domain.StringValue("a")},
		{"ID": domain.NumberValue(2), "Price": domain.NumberValue(20), "Note": domain.StringValue("b")},
	}}
	right := domain.Dataset{Columns: []string{"ID", "Price", "Note", "Extra"}, Records: []domain.Record{
		{"ID": domain.NumberValue(1), "Price": domain.NumberValue(150), "Note": domain.StringValue("a")},
		{"ID": domain.NumberValue(2), "Price": domain.NumberValue(20), "Note": domain.StringValue("c")},
	}}
	a, err := tablealign.Align(left, right, tablealign.Options{KeyColumns: []string{"ID"}, CaseSensitive: true})
	require.NoError(t, err)
	return a
}

func TestDiff_ExactMode(t *testing.T) {
	got := columndiff.Diff(priceTables(t), columndiff.Options{CompareColumns: []string{"Price"}})

	want := []domain.CellDiff{{
		Key:    domain.JoinKey{domain.NumberValue(1)},
		Column: "Price",
		Left:   domain.NumberValue(100),
		Right:  domain.NumberValue(150),
	}}
	if diff := cmp.Diff(want, got, valueComparer); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, got[0].Similarity)
}

func TestDiff_FuzzyModeAnnotates(t *testing.T) {
	got := columndiff.Diff(priceTables(t), columndiff.Options{CompareColumns: []string{"Price"}, Fuzzy: true})
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Similarity)
	assert.Equal(t, 66.67, *got[0].Similarity)
}

func TestDiff_ColumnMajorOrder(t *testing.T) {
	got := columndiff.Diff(priceTables(t), columndiff.Options{CompareColumns: []string{"Note", "Price"}})
	require.Len(t, got, 2)
	assert.Equal(t, "Note", got[0].Column)
	assert.Equal(t, "2", got[0].Key.String())
	assert.Equal(t, "Price", got[1].Column)
	assert.Equal(t, "1", got[1].Key.String())
}

func TestDiff_SkipsKeyAndMissingColumns(t *testing.T) {
	got := columndiff.Diff(priceTables(t), columndiff.Options{CompareColumns: []string{"ID", "Extra", "Nope"}})
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestDiff_NoTypeCoercion(t *testing.T) {
	left := domain.Dataset{Columns: []string{"K", "V"}, Records: []domain.Record{
		{"K": domain.StringValue("x"), "V": domain.NumberValue(100)},
	}}
	right := domain.Dataset{Columns: []string{"K", "V"}, Records: []domain.Record{
		{"K": domain.StringValue("x"), "V": domain.StringValue("100")},
	}}
	a, err := tablealign.Align(left, right, tablealign.Options{KeyColumns: []string{"K"}, CaseSensitive: true})
	require.NoError(t, err)

	got := columndiff.Diff(a, columndiff.Options{CompareColumns: []string{"V"}, Fuzzy: true})
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, *got[0].Similarity)
}

func TestDiff_NullCells(t *testing.T) {
	left := domain.Dataset{Columns: []string{"K", "V"}, Records: []domain.Record{
		{"K": domain.StringValue("x")},
		{"K": domain.StringValue("y")},
	}}
	right := domain.Dataset{Columns: []string{"K", "V"}, Records: []domain.Record{
		{"K": domain.StringValue("x")},
		{"K": domain.StringValue("y"), "V": domain.StringValue("set")},
	}}
	a, err := tablealign.Align(left, right, tablealign.Options{KeyColumns: []string{"K"}, CaseSensitive: true})
	require.NoError(t, err)

	got := columndiff.Diff(a, columndiff.Options{CompareColumns: []string{"V"}})
	require.Len(t, got, 1)
	assert.Equal(t, "y", got[0].Key.String())
	assert.True(t, got[0].Left.IsNull())
}

func TestDiff_NilAlignment(t *testing.T) {
	assert.Empty(t, columndiff.Diff(nil, columndiff.Options{CompareColumns: []string{"A"}}))
}

func TestColumns_Dedupes(t *testing.T) {
	assert.Equal(t, []string{"Price", "Note"},
		columndiff.Columns(priceTables(t), []string{"Price", "Note", "Price"}))
}
