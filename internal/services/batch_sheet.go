package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/edutrial/thpt-score-service/internal/graduation"
	"github.com/edutrial/thpt-score-service/internal/models"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// Batch sheet column ids
const (
	ColumnStudentID = "maHocSinh"
	ColumnFullName  = "hoTen"
)

const (
	FileTypeXLSX = "xlsx"
	FileTypeCSV  = "csv"

	reportSheet = "Kết quả"
)

// columnAliases maps normalised header text to a column id
var columnAliases = buildColumnAliases()

func buildColumnAliases() map[string]string {
	aliases := map[string]string{}
	add := func(id string, names ...string) {
		aliases[normalizeHeader(id)] = id
		for _, name := range names {
			aliases[normalizeHeader(name)] = id
		}
	}

	add(ColumnStudentID, "Mã học sinh", "Mã HS", "SBD", "Số báo danh")
	add(ColumnFullName, "Họ tên", "Họ và tên")
	for _, s := range graduation.MandatorySubjects() {
		add(s.ID, s.Name)
	}
	for _, g := range graduation.ElectiveGroups() {
		for _, s := range g.Subjects() {
			add(s.ID, s.Name)
		}
	}
	add(graduation.SubjectPhysics.ID, "Vật lý")
	add(graduation.SubjectChemistry.ID, "Hoá học")
	add(graduation.SubjectGeography.ID, "Địa lý")
	add(graduation.SubjectCivics.ID, "GDCD")
	add(graduation.SubjectForeignLanguage.ID, "Tiếng Anh")
	add(graduation.FieldElectiveGroup, "Tổ hợp", "Tổ hợp môn")
	add(graduation.FieldGrade10, "ĐTB lớp 10")
	add(graduation.FieldGrade11, "ĐTB lớp 11")
	add(graduation.FieldGrade12, "ĐTB lớp 12")
	add(graduation.FieldEncouragement, "Điểm khuyến khích", "Điểm KK")
	add(graduation.FieldPriority, "Điểm ưu tiên", "Điểm ƯT")
	return aliases
}

// requiredColumns must appear in every batch header
var requiredColumns = []string{
	graduation.SubjectMath.ID,
	graduation.SubjectLiterature.ID,
	graduation.SubjectForeignLanguage.ID,
	graduation.FieldElectiveGroup,
	graduation.FieldGrade10,
	graduation.FieldGrade11,
	graduation.FieldGrade12,
}

const utf8BOM = "\ufeff"

// normalizeHeader folds header text so NFD input from some spreadsheet tools
// matches the precomposed aliases. A leading byte-order mark (Excel's "CSV UTF-8") is dropped.
func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, utf8BOM)
	return strings.ToLower(strings.Join(strings.Fields(norm.NFC.String(s)), " "))
}

// sheetRow is one data row keyed by column id
type sheetRow struct {
	number int // 1-based row number in the file, header is row 1
	cells  map[string]string
}

func (r sheetRow) get(column string) string {
	return strings.TrimSpace(r.cells[column])
}

// toInput maps the row onto the calculator form
func (r sheetRow) toInput() graduation.Input {
	var in graduation.Input
	in.MandatoryScores = graduation.MandatoryScores{
		Math:            graduation.Text(r.get(graduation.SubjectMath.ID)),
		Literature:      graduation.Text(r.get(graduation.SubjectLiterature.ID)),
		ForeignLanguage: graduation.Text(r.get(graduation.SubjectForeignLanguage.ID)),
	}

	rawGroup := r.get(graduation.FieldElectiveGroup)
	if group, ok := graduation.ParseElectiveGroup(rawGroup); ok {
		in.SelectElectiveGroup(group)
		for i, s := range group.Subjects() {
			in.ElectiveScores[i] = graduation.Text(r.get(s.ID))
		}
	} else {
		in.ElectiveGroup = graduation.ElectiveGroup(rawGroup)
	}

	in.YearlyAverages = graduation.YearlyAverages{
		Grade10: graduation.Text(r.get(graduation.FieldGrade10)),
		Grade11: graduation.Text(r.get(graduation.FieldGrade11)),
		Grade12: graduation.Text(r.get(graduation.FieldGrade12)),
	}
	in.EncouragementPoints = graduation.Text(r.get(graduation.FieldEncouragement))
	in.PriorityPoints = graduation.Text(r.get(graduation.FieldPriority))
	return in
}

// fileTypeOf returns xlsx or csv from the file extension
func fileTypeOf(filename string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		return FileTypeXLSX, nil
	case ".csv":
		return FileTypeCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
}

// readSheet reads the first sheet of an xlsx file or a whole csv file into raw records
func readSheet(fileType string, reader io.Reader) ([][]string, error) {
	switch fileType {
	case FileTypeCSV:
		csvReader := csv.NewReader(reader)
		csvReader.TrimLeadingSpace = true
		csvReader.FieldsPerRecord = -1
		records, err := csvReader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read CSV: %v", ErrBadRequest, err)
		}
		return records, nil

	case FileTypeXLSX:
		f, err := excelize.OpenReader(reader)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open Excel file: %v", ErrBadRequest, err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, NewBusinessRuleError("empty_file", "Excel file has no sheets", nil)
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel rows: %w", err)
		}
		return rows, nil
	}
	return nil, ErrUnsupportedFileType
}

// parseRecords maps the header onto column ids and keys every non-blank data row by id
func parseRecords(records [][]string, maxRows int) ([]sheetRow, error) {
	if len(records) == 0 {
		return nil, NewBusinessRuleError("empty_file", "file has no header row", nil)
	}

	columns := make(map[int]string)
	seen := make(map[string]bool)
	for i, header := range records[0] {
		if id, ok := columnAliases[normalizeHeader(header)]; ok && !seen[id] {
			columns[i] = id
			seen[id] = true
		}
	}

	var missing []string
	for _, id := range requiredColumns {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, NewBusinessRuleError("missing_columns",
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
			map[string]interface{}{"columns": missing})
	}

	var rows []sheetRow
	for index, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		if len(rows) == maxRows {
			return nil, NewBusinessRuleError("max_rows",
				fmt.Sprintf("file has more than %d data rows", maxRows),
				map[string]interface{}{"max_rows": maxRows})
		}

		row := sheetRow{number: index + 2, cells: make(map[string]string, len(columns))}
		for i, id := range columns {
			if i < len(record) {
				row.cells[id] = record[i]
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, NewBusinessRuleError("empty_file", "file must have a header row and at least one data row", nil)
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ===== REPORTS =====

var reportHeaders = []string{
	"Dòng", "Mã học sinh", "Họ tên", "Tổ hợp", "Kết quả", "Điểm xét tốt nghiệp", "Ghi chú",
}

func reportRecord(r models.BatchRowResult) []string {
	score := ""
	if r.Score != nil {
		score = graduation.FormatScore(*r.Score)
	}
	note := r.Reason
	if len(r.Errors) > 0 {
		note = strings.Join(r.Errors, " ")
	}
	return []string{
		fmt.Sprintf("%d", r.Row),
		r.StudentID,
		r.FullName,
		r.ElectiveGroup,
		graduation.Verdict(r.Verdict).Message(),
		score,
		note,
	}
}

func buildCSVReport(results []models.BatchRowResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(reportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write(reportRecord(r)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func buildXLSXReport(results []models.BatchRowResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return nil, fmt.Errorf("failed to name Excel sheet: %w", err)
	}

	for i, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(reportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	for rowIndex, r := range results {
		values := []interface{}{r.Row, r.StudentID, r.FullName, r.ElectiveGroup, graduation.Verdict(r.Verdict).Message()}
		if r.Score != nil {
			values = append(values, *r.Score)
		} else {
			values = append(values, "")
		}
		values = append(values, reportRecord(r)[6])

		for colIndex, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err := f.SetCellValue(reportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	scoreStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err == nil && len(results) > 0 {
		_ = f.SetCellStyle(reportSheet, "F2", fmt.Sprintf("F%d", len(results)+1), scoreStyle)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
