package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGet(t *testing.T) {
	rec := NewRecord(
		Field{Name: "gender", Value: String("M")},
		Field{Name: "age", Value: Number(34)},
		Field{Name: "hand", Value: Missing{}},
	)

	assert.Equal(t, String("M"), rec.Get("gender"))
	assert.Equal(t, Number(34), rec.Get("age"))
	assert.True(t, IsMissing(rec.Get("hand")), "explicit missing field")
	assert.True(t, IsMissing(rec.Get("nope")), "absent field reads as missing")
	assert.True(t, rec.Has("hand"))
	assert.False(t, rec.Has("nope"))
}

func TestRecordDuplicateFieldKeepsFirst(t *testing.T) {
	rec := NewRecord(
		Field{Name: "x", Value: String("first")},
		Field{Name: "x", Value: String("second")},
	)
	assert.Equal(t, String("first"), rec.Get("x"))
	assert.Len(t, rec.Fields(), 2)
}

func TestDatasetColumn(t *testing.T) {
	ds := &Dataset{Records: []Record{
		NewRecord(Field{Name: "g", Value: String("M")}),
		NewRecord(Field{Name: "g", Value: Missing{}}),
		NewRecord(Field{Name: "other", Value: String("x")}),
	}}

	col := ds.Column("g")
	require.Len(t, col, 3)
	assert.Equal(t, String("M"), col[0])
	assert.True(t, IsMissing(col[1]))
	assert.True(t, IsMissing(col[2]), "record without the field reads as missing")
}

func TestDatasetWithColumnDoesNotMutateReceiver(t *testing.T) {
	ds := &Dataset{Records: []Record{
		NewRecord(Field{Name: "g", Value: String("M")}),
		NewRecord(Field{Name: "g", Value: String("F")}),
	}}

	out := ds.WithColumn("g", []Value{String("Male"), String("Female")})

	assert.Equal(t, String("Male"), out.Records[0].Get("g"))
	assert.Equal(t, String("M"), ds.Records[0].Get("g"), "original unchanged")
}

func TestDatasetWithColumnAppendsNewField(t *testing.T) {
	ds := &Dataset{Records: []Record{
		NewRecord(Field{Name: "g", Value: String("M")}),
	}}

	out := ds.WithColumn("recoded", []Value{String("Male")})
	assert.Equal(t, String("Male"), out.Records[0].Get("recoded"))
	assert.Equal(t, String("M"), out.Records[0].Get("g"))
}

func TestFromCSV(t *testing.T) {
	input := strings.Join([]string{
		"gender,hand,age",
		"M,R,34",
		"F,,41",
		"NA,L,notanumber",
	}, "\n")

	ds, err := FromCSV(strings.NewReader(input), CSVOptions{
		MissingTokens: []string{"NA"},
		Numeric:       []string{"age"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	assert.Equal(t, String("M"), ds.Records[0].Get("gender"))
	assert.Equal(t, Number(34), ds.Records[0].Get("age"))
	assert.True(t, IsMissing(ds.Records[1].Get("hand")), "empty cell is missing")
	assert.True(t, IsMissing(ds.Records[2].Get("gender")), "NA token is missing")
	assert.True(t, IsMissing(ds.Records[2].Get("age")), "unparseable numeric is missing")
}

func TestFromCSVRejectsRaggedRows(t *testing.T) {
	input := "a,b\n1,2,3\n"
	_, err := FromCSV(strings.NewReader(input), CSVOptions{})
	require.Error(t, err)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "<missing>", Display(Missing{}))
	assert.Equal(t, "<missing>", Display(nil))
	assert.Equal(t, "M", Display(String("M")))
	assert.Equal(t, "34", Display(Number(34)))
}
