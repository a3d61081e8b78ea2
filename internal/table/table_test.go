package table

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func load(t *testing.T, name, body string) *Table {
	t.Helper()
	tbl, err := Load(context.Background(), name, []byte(body), Options{})
	require.NoError(t, err)
	return tbl
}

func TestLoad_AgeCity(t *testing.T) {
	tbl := load(t, "people.csv", "age,city\n25,NYC\n30,LA\n35,SF\n")

	assert.Equal(t, "people.csv", tbl.Source())
	assert.Equal(t, FormatCSV, tbl.Format())
	assert.Equal(t, 3, tbl.Nrow())
	assert.Equal(t, 2, tbl.Ncol())
	assert.Equal(t, []string{"age", "city"}, tbl.Names())

	age, ok := tbl.Column("age")
	require.True(t, ok)
	assert.Equal(t, series.Int, age.Type)
	assert.Equal(t, "int64", age.Dtype())

	city, ok := tbl.Column("city")
	require.True(t, ok)
	assert.Equal(t, series.String, city.Type)
	assert.Equal(t, "object", city.Dtype())

	vals, err := tbl.Floats("age")
	require.NoError(t, err)
	assert.Equal(t, []float64{25, 30, 35}, vals)

	assert.Equal(t, [][]string{
		{"25", "NYC"},
		{"30", "LA"},
		{"35", "SF"},
	}, tbl.Head(5))
	assert.Equal(t, [][]string{{"25", "NYC"}}, tbl.Head(1))
}

func TestLoad_RaggedRowFails(t *testing.T) {
	_, err := Load(context.Background(), "bad.csv", []byte("a,b\n1,2\n3,4,5\n"), Options{})
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "bad.csv", pe.Source)
	assert.Equal(t, 3, pe.Record)
	assert.Contains(t, err.Error(), "invalid csv")
	assert.True(t, IsParseError(err))
}

func TestLoad_TrailingEmptyCellsAllowed(t *testing.T) {
	tbl := load(t, "x.csv", "a,b\n1,2,\n3,4\n")
	assert.Equal(t, 2, tbl.Nrow())
	assert.Equal(t, 2, tbl.Ncol())
}

func TestLoad_ShortRowPadded(t *testing.T) {
	tbl := load(t, "x.csv", "a,b\n1,2\n3\n")

	b, ok := tbl.Column("b")
	require.True(t, ok)
	assert.Equal(t, series.Float, b.Type)
	assert.Equal(t, 1, b.Missing)

	vals, err := tbl.Floats("b")
	require.NoError(t, err)
	assert.Equal(t, 2.0, vals[0])
	assert.True(t, math.IsNaN(vals[1]))
}

func TestLoad_BinaryRejected(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	_, err := Load(context.Background(), "chart.csv", png, Options{})
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestLoad_Empty(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"no bytes", "", ErrEmptyFile},
		{"whitespace", " \n\n", ErrEmptyFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), "f.csv", []byte(tt.body), Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsParseError(err))
		})
	}
}

func TestLoad_HeaderOnly(t *testing.T) {
	tbl := load(t, "head.csv", "a,b\n")

	assert.Equal(t, 0, tbl.Nrow())
	assert.Equal(t, 2, tbl.Ncol())
	assert.Equal(t, []string{"a", "b"}, tbl.Names())
	for _, c := range tbl.Columns() {
		assert.Equal(t, series.String, c.Type, c.Name)
		assert.Equal(t, "object", c.Dtype(), c.Name)
		assert.Zero(t, c.Missing, c.Name)
	}
	assert.Nil(t, tbl.Head(5))

	values, missing, err := tbl.Values("a")
	require.NoError(t, err)
	assert.Empty(t, values)
	assert.Empty(t, missing)
}

func TestLoad_WhitespaceKeptInText(t *testing.T) {
	tbl := load(t, "f.csv", "code,n,flag\n A,1 ,true\nA, 2, false\n NA ,3,true\n")

	code, _ := tbl.Column("code")
	assert.Equal(t, series.String, code.Type)
	assert.Equal(t, 1, code.Missing)
	values, _, err := tbl.Values("code")
	require.NoError(t, err)
	assert.Equal(t, []string{" A", "A", ""}, values)

	n, _ := tbl.Column("n")
	assert.Equal(t, series.Int, n.Type)
	nums, err := tbl.Floats("n")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, nums)

	flag, _ := tbl.Column("flag")
	assert.Equal(t, series.Bool, flag.Type)
	flags, _, err := tbl.Values("flag")
	require.NoError(t, err)
	assert.Equal(t, []string{"true", "false", "true"}, flags)
}

func TestCleanCell(t *testing.T) {
	tests := map[string]string{
		" A":       " A",
		"A ":       "A ",
		" NA ":     "",
		"  ":       "",
		`="007"`:   "007",
		` ="007" `: "007",
		"plain":    "plain",
		"#N/A":     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanCell(in), "cleanCell(%q)", in)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, "f.csv", []byte("a\n1\n"), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_BOMAndDelimiters(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bom", "\xEF\xBB\xBFx,y\n1,2\n"},
		{"semicolon", "x;y\n1;2\n"},
		{"tab", "x\ty\n1\t2\n"},
		{"quoted header", "\"x\";y\n1;2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := load(t, "f.csv", tt.body)
			assert.Equal(t, []string{"x", "y"}, tbl.Names())
			assert.Equal(t, [][]string{{"1", "2"}}, tbl.Head(5))
		})
	}
}

func TestLoad_ExplicitDelimiter(t *testing.T) {
	tbl, err := Load(context.Background(), "f.txt", []byte("a|b\n1|2\n"), Options{Delimiter: '|'})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Names())
}

func TestLoad_HeaderNames(t *testing.T) {
	tbl := load(t, "f.csv", "a,a, ,a.1\n1,2,3,4\n")
	assert.Equal(t, []string{"a", "a.2", "Unnamed: 2", "a.1"}, tbl.Names())
}

func TestLoad_MissingValues(t *testing.T) {
	tbl := load(t, "f.csv", "score,name\n1.5,x\nNA,y\n2,\n")

	score, _ := tbl.Column("score")
	assert.Equal(t, series.Float, score.Type)
	assert.Equal(t, 1, score.Missing)

	name, _ := tbl.Column("name")
	assert.Equal(t, series.String, name.Type)
	assert.Equal(t, 1, name.Missing)

	values, missing, err := tbl.Values("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", ""}, values)
	assert.Equal(t, []bool{false, false, true}, missing)

	assert.Equal(t, [][]string{
		{"1.5", "x"},
		{"NaN", "y"},
		{"2", "NaN"},
	}, tbl.Head(3))
}

func TestLoad_TypeInference(t *testing.T) {
	tbl := load(t, "f.csv", "i,f,b,s,blank,mixed\n1,1.5,true,a,,1\n2,2,False,b,,x\n")

	want := map[string]series.Type{
		"i":     series.Int,
		"f":     series.Float,
		"b":     series.Bool,
		"s":     series.String,
		"blank": series.Float,
		"mixed": series.String,
	}
	for name, typ := range want {
		col, ok := tbl.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, typ, col.Type, name)
	}

	values, _, err := tbl.Values("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"true", "false"}, values)
}

func TestInferType_BoolWithMissingIsText(t *testing.T) {
	typ, missing := inferType([]string{"true", "", "false"})
	assert.Equal(t, series.String, typ)
	assert.Equal(t, 1, missing)
}

func TestInferType_NoRowsIsText(t *testing.T) {
	typ, missing := inferType(nil)
	assert.Equal(t, series.String, typ)
	assert.Zero(t, missing)
}

func TestTable_AccessorErrors(t *testing.T) {
	tbl := load(t, "f.csv", "age,city\n25,NYC\n")

	_, err := tbl.Floats("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = tbl.Floats("city")
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, _, err = tbl.Values("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	assert.Nil(t, tbl.Head(0))
}

func TestFromRecords(t *testing.T) {
	tbl, err := FromRecords("mem", [][]string{{"x"}, {"1"}, {"2"}})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Nrow())

	_, err = FromRecords("mem", nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"age", "city"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{25, "NYC"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{30, "LA"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	tbl, err := Load(context.Background(), "people.xlsx", buf.Bytes(), Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, tbl.Format())
	assert.Equal(t, []string{"age", "city"}, tbl.Names())

	age, _ := tbl.Column("age")
	assert.Equal(t, series.Int, age.Type)
	assert.Equal(t, [][]string{{"25", "NYC"}, {"30", "LA"}}, tbl.Head(5))

	_, err = Load(context.Background(), "people.xlsx", buf.Bytes(), Options{Sheet: "Missing"})
	assert.True(t, IsParseError(err))
}

func TestSniffDelimiter(t *testing.T) {
	tests := map[string]rune{
		"a,b,c\n":     ',',
		"a;b;c\n":     ';',
		"a\tb\n":      '\t',
		"single\n":    ',',
		"\n\na;b\n":   ';',
		"\"a;b\",c\n": ',',
	}
	for in, want := range tests {
		assert.Equal(t, want, sniffDelimiter([]byte(in)), "sniffDelimiter(%q)", in)
	}
}
