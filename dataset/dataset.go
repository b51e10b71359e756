// Package dataset は販売実績CSVのレコードモデルとテーブル表現を提供します。
//
// テーブルはクリーニング前の「生」状態と、クリーニング後の「分析可能」状態の
// 両方を表現します。クリーニング後のテーブルは不変であり、モデリング段階は
// 読み取りのみを行います。
package dataset

import (
	"math"
	"sort"
	"strings"

	"github.com/YuminosukeSato/vgsales/pkg/errors"
)

// NullInt はnull許容の整数値（クリーニング前のYear列）
type NullInt struct {
	Int   int
	Valid bool
}

// NullString はnull許容の文字列値（クリーニング前のPublisher列）
type NullString struct {
	String string
	Valid  bool
}

// Record はデータセットの1行を表す
//
// 売上はすべて百万本単位で非負。YearとPublisherはクリーニング前のみ
// null値を取りうる。ログ変換列とIs_Japan_Hitはクリーニング時に付与される
// 派生列で、生レコードではゼロ値のまま。
type Record struct {
	Rank      int
	Name      string
	Platform  string
	Year      NullInt
	Genre     string
	Publisher NullString

	NASales     float64
	EUSales     float64
	JPSales     float64
	OtherSales  float64
	GlobalSales float64

	// 派生列（クリーニング後のみ有効）
	NASalesLog     float64
	EUSalesLog     float64
	JPSalesLog     float64
	OtherSalesLog  float64
	GlobalSalesLog float64
	IsJapanHit     int
}

// 列名。入力CSVのヘッダおよび特徴量選択で使用する。
const (
	ColRank        = "Rank"
	ColName        = "Name"
	ColPlatform    = "Platform"
	ColYear        = "Year"
	ColGenre       = "Genre"
	ColPublisher   = "Publisher"
	ColNASales     = "NA_Sales"
	ColEUSales     = "EU_Sales"
	ColJPSales     = "JP_Sales"
	ColOtherSales  = "Other_Sales"
	ColGlobalSales = "Global_Sales"

	ColNASalesLog     = "NA_Sales_log"
	ColEUSalesLog     = "EU_Sales_log"
	ColJPSalesLog     = "JP_Sales_log"
	ColOtherSalesLog  = "Other_Sales_log"
	ColGlobalSalesLog = "Global_Sales_log"
	ColIsJapanHit     = "Is_Japan_Hit"
)

// SalesColumns は5つの生売上列を定義順で返す
func SalesColumns() []string {
	return []string{ColNASales, ColEUSales, ColJPSales, ColOtherSales, ColGlobalSales}
}

// LogColumn は売上列に対応するlog1p派生列の名前を返す
func LogColumn(salesCol string) string {
	return salesCol + "_log"
}

// Table はレコードの順序付き集合
//
// derivedフラグはログ変換列とIs_Japan_Hitが付与済みであることを示す。
type Table struct {
	records []Record
	derived bool
}

// NewTable は生レコードからテーブルを作成する
func NewTable(records []Record) *Table {
	return &Table{records: records}
}

// NewDerivedTable は派生列付与済みのレコードからテーブルを作成する
// （クリーニング変換器が使用する）
func NewDerivedTable(records []Record) *Table {
	return &Table{records: records, derived: true}
}

// Len はテーブルの行数を返す
func (t *Table) Len() int {
	return len(t.records)
}

// HasDerived は派生列が付与済みかどうかを返す
func (t *Table) HasDerived() bool {
	return t.derived
}

// Record はi行目のレコードのコピーを返す
func (t *Table) Record(i int) Record {
	return t.records[i]
}

// Records は全レコードのコピーを返す。呼び出し側の変更は
// テーブルに影響しない。
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Column は数値列を名前で取り出す
//
// 派生列は派生列付与済みのテーブルに対してのみ有効。
// 未知の列名やクリーニング前のYear/派生列参照はValueErrorを返す。
func (t *Table) Column(name string) ([]float64, error) {
	get, err := t.columnAccessor(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.records))
	for i := range t.records {
		out[i] = get(&t.records[i])
	}
	return out, nil
}

func (t *Table) columnAccessor(name string) (func(*Record) float64, error) {
	switch name {
	case ColRank:
		return func(r *Record) float64 { return float64(r.Rank) }, nil
	case ColYear:
		if !t.derived {
			return nil, errors.NewValueError("Table.Column", "Year is nullable before cleaning; use Record.Year")
		}
		return func(r *Record) float64 { return float64(r.Year.Int) }, nil
	case ColNASales:
		return func(r *Record) float64 { return r.NASales }, nil
	case ColEUSales:
		return func(r *Record) float64 { return r.EUSales }, nil
	case ColJPSales:
		return func(r *Record) float64 { return r.JPSales }, nil
	case ColOtherSales:
		return func(r *Record) float64 { return r.OtherSales }, nil
	case ColGlobalSales:
		return func(r *Record) float64 { return r.GlobalSales }, nil
	}

	if !t.derived {
		return nil, errors.NewValueError("Table.Column", "derived column "+name+" requires a cleaned table")
	}
	switch name {
	case ColNASalesLog:
		return func(r *Record) float64 { return r.NASalesLog }, nil
	case ColEUSalesLog:
		return func(r *Record) float64 { return r.EUSalesLog }, nil
	case ColJPSalesLog:
		return func(r *Record) float64 { return r.JPSalesLog }, nil
	case ColOtherSalesLog:
		return func(r *Record) float64 { return r.OtherSalesLog }, nil
	case ColGlobalSalesLog:
		return func(r *Record) float64 { return r.GlobalSalesLog }, nil
	case ColIsJapanHit:
		return func(r *Record) float64 { return float64(r.IsJapanHit) }, nil
	}
	return nil, errors.NewValueError("Table.Column", "unknown column "+name)
}

// Strings はカテゴリ列を名前で取り出す
func (t *Table) Strings(name string) ([]string, error) {
	var get func(*Record) string
	switch name {
	case ColName:
		get = func(r *Record) string { return r.Name }
	case ColPlatform:
		get = func(r *Record) string { return r.Platform }
	case ColGenre:
		get = func(r *Record) string { return r.Genre }
	case ColPublisher:
		get = func(r *Record) string { return r.Publisher.String }
	default:
		return nil, errors.NewValueError("Table.Strings", "unknown categorical column "+name)
	}
	out := make([]string, len(t.records))
	for i := range t.records {
		out[i] = get(&t.records[i])
	}
	return out, nil
}

// Years は全行のYear値を返す（null含む）
func (t *Table) Years() []NullInt {
	out := make([]NullInt, len(t.records))
	for i := range t.records {
		out[i] = t.records[i].Year
	}
	return out
}

// DistinctStrings は指定カテゴリ列の異なり値を辞書順で返す
func (t *Table) DistinctStrings(name string) ([]string, error) {
	vals, err := t.Strings(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(vals))
	var out []string
	for _, v := range vals {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}

// HasNull はレコードにnull値（Year/Publisher）が残っているかを返す
func (r *Record) HasNull() bool {
	return !r.Year.Valid || !r.Publisher.Valid
}

// Log1pSales は派生ログ列を計算して返す（元レコードは変更しない）
func (r *Record) Log1pSales() (na, eu, jp, other, global float64) {
	return math.Log1p(r.NASales), math.Log1p(r.EUSales), math.Log1p(r.JPSales),
		math.Log1p(r.OtherSales), math.Log1p(r.GlobalSales)
}

// DedupKey は完全重複行の判定キーを返す
// 全11列の生値を対象とし、派生列は含めない。
func (r *Record) DedupKey() string {
	var b strings.Builder
	writeField := func(s string) {
		b.WriteString(s)
		b.WriteByte('\x1f')
	}
	writeField(itoa(r.Rank))
	writeField(r.Name)
	writeField(r.Platform)
	if r.Year.Valid {
		writeField(itoa(r.Year.Int))
	} else {
		writeField("\x00")
	}
	writeField(r.Genre)
	if r.Publisher.Valid {
		writeField(r.Publisher.String)
	} else {
		writeField("\x00")
	}
	writeField(ftoa(r.NASales))
	writeField(ftoa(r.EUSales))
	writeField(ftoa(r.JPSales))
	writeField(ftoa(r.OtherSales))
	writeField(ftoa(r.GlobalSales))
	return b.String()
}
