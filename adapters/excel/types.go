package excel

// FileType is the upload format, decided from the file extension
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// RawData is the header and body of an upload before type inference
type RawData struct {
	Headers []string
	Rows    [][]string
}

// Records returns the header followed by the rows
func (d *RawData) Records() [][]string {
	out := make([][]string, 0, len(d.Rows)+1)
	out = append(out, d.Headers)
	return append(out, d.Rows...)
}
