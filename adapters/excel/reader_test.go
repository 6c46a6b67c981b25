package excel

import (
	"bytes"
	"strings"
	"testing"

	"edahub/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNewDataReader_FileType(t *testing.T) {
	assert.Equal(t, FileTypeCSV, NewDataReader("people.csv").FileType())
	assert.Equal(t, FileTypeXLSX, NewDataReader("People.XLSX").FileType())
	assert.Equal(t, FileTypeCSV, NewDataReader("notes.txt").FileType())
}

func TestReadTable_CSV(t *testing.T) {
	src := strings.NewReader("age, city\n25,NY\n40,LA\n61\n")
	tbl, err := NewDataReader("people.csv").ReadTable(src)
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "city"}, tbl.Names())
	assert.Equal(t, 3, tbl.Nrow())
	kind, err := tbl.Kind("age")
	require.NoError(t, err)
	assert.Equal(t, table.KindNumeric, kind)
	assert.True(t, tbl.IsNA(2, "city"))
}

func TestReadTable_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"age", "city"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{25, "NY"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{40, "LA"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := NewDataReader("people.xlsx").ReadTable(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "city"}, tbl.Names())
	assert.Equal(t, 2, tbl.Nrow())
	assert.Equal(t, "LA", tbl.Text(1, "city"))
	assert.Equal(t, 40.0, tbl.Float(1, "age"))
}

func TestReadData_Errors(t *testing.T) {
	_, err := NewDataReader("empty.csv").ReadData(strings.NewReader(""))
	assert.Error(t, err)

	_, err = NewDataReader("bad.xlsx").ReadData(strings.NewReader("not a workbook"))
	assert.Error(t, err)

	_, err = NewDataReader("quote.csv").ReadData(strings.NewReader("a\n\"unterminated\n"))
	assert.Error(t, err)
}

func TestRawData_Records(t *testing.T) {
	d := &RawData{Headers: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}}
	assert.Equal(t, [][]string{{"a"}, {"1"}, {"2"}}, d.Records())
}
