package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/vgsales/pkg/errors"
)

// sentinelNA は入力CSVが欠損値を表すために使う文字列
const sentinelNA = "N/A"

// expectedHeader は入力CSVの固定スキーマ（11列）
var expectedHeader = []string{
	ColRank, ColName, ColPlatform, ColYear, ColGenre, ColPublisher,
	ColNASales, ColEUSales, ColJPSales, ColOtherSales, ColGlobalSales,
}

// ReadCSV はファイルパスからデータセットを読み込む
//
// ファイルが存在しない場合は致命的エラーとして呼び出し元に返す。
// "N/A"および空文字列はnullに正規化され、パースできないYearは
// nullに変換される（エラーにはならない）。
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()

	return ReadCSVFrom(f)
}

// ReadCSVFrom はReaderからデータセットを読み込む
func ReadCSVFrom(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(expectedHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var records []Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "read csv line %d", line)
		}
		rec, err := parseRow(row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, errors.NewModelError("dataset.ReadCSVFrom", "no data rows", errors.ErrEmptyData)
	}
	return NewTable(records), nil
}

func validateHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return errors.NewSchemaError(1, expectedHeader, header)
	}
	for i, name := range expectedHeader {
		if strings.TrimSpace(header[i]) != name {
			return errors.NewSchemaError(1, expectedHeader, header)
		}
	}
	return nil
}

func parseRow(row []string, line int) (Record, error) {
	var rec Record
	var err error

	rec.Rank, err = strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil {
		return rec, errors.NewValueError("dataset.parseRow",
			"line "+strconv.Itoa(line)+": unparseable Rank "+strconv.Quote(row[0]))
	}
	rec.Name = row[1]
	rec.Platform = row[2]
	rec.Year = parseNullYear(row[3])
	rec.Genre = row[4]
	rec.Publisher = parseNullString(row[5])

	sales := [5]*float64{&rec.NASales, &rec.EUSales, &rec.JPSales, &rec.OtherSales, &rec.GlobalSales}
	for i, dst := range sales {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[6+i]), 64)
		if err != nil {
			return rec, errors.NewValueError("dataset.parseRow",
				"line "+strconv.Itoa(line)+": unparseable "+SalesColumns()[i]+" "+strconv.Quote(row[6+i]))
		}
		if v < 0 {
			return rec, errors.Wrapf(errors.ErrNegativeSales,
				"line %d: %s = %g", line, SalesColumns()[i], v)
		}
		*dst = v
	}
	return rec, nil
}

// parseNullYear は年の文字列をnull許容整数に変換する
// 空文字列・"N/A"・パース不能な値はすべてnullになる。
func parseNullYear(s string) NullInt {
	s = strings.TrimSpace(s)
	if s == "" || s == sentinelNA {
		return NullInt{}
	}
	// "2006.0" のような浮動小数表記も受け付ける
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return NullInt{Int: int(f), Valid: true}
	}
	return NullInt{}
}

// parseNullString は文字列をnull許容値に変換する
func parseNullString(s string) NullString {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == sentinelNA {
		return NullString{}
	}
	return NullString{String: s, Valid: true}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
