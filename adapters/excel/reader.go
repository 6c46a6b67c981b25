package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"edahub/domain/table"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading uploaded Excel and CSV files
type DataReader struct {
	fileName string
	fileType FileType
}

// NewDataReader creates a reader for the named upload. Anything that is not
// an .xlsx file is read as CSV.
func NewDataReader(fileName string) *DataReader {
	fileType := FileTypeCSV
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		fileType = FileTypeXLSX
	}
	return &DataReader{fileName: fileName, fileType: fileType}
}

// FileType reports how the upload will be parsed
func (r *DataReader) FileType() FileType {
	return r.fileType
}

// ReadData reads the whole upload into memory
func (r *DataReader) ReadData(src io.Reader) (*RawData, error) {
	log.Printf("[DataReader] Starting to read %s upload: %s", r.fileType, r.fileName)

	var (
		rows [][]string
		err  error
	)
	readStart := time.Now()
	switch r.fileType {
	case FileTypeXLSX:
		rows, err = r.readExcelRows(src)
	default:
		rows, err = r.readCSVRows(src)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)",
		r.fileName, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s file must have a header row", strings.ToUpper(string(r.fileType)))
	}
	return r.processRows(rows), nil
}

// ReadTable reads the upload and infers column types
func (r *DataReader) ReadTable(src io.Reader) (*table.Table, error) {
	data, err := r.ReadData(src)
	if err != nil {
		return nil, err
	}
	t, err := table.FromRecords(data.Records())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", r.fileName, err)
	}
	return t, nil
}

// readExcelRows reads the first sheet of the workbook
func (r *DataReader) readExcelRows(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows trims cells and skips the empty rows excelize reports for
// untouched lines of a sheet
func (r *DataReader) processRows(rows [][]string) *RawData {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		body = append(body, cells)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(string(r.fileType)), len(headers), len(body))

	return &RawData{Headers: headers, Rows: body}
}
