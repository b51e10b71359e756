// Package preprocessing はクリーニング変換器とカテゴリ列エンコーダを提供します。
package preprocessing

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/vgsales/dataset"
	"github.com/YuminosukeSato/vgsales/pkg/errors"
	"github.com/YuminosukeSato/vgsales/pkg/log"
)

// JapanHitThreshold はIs_Japan_Hitフラグの閾値（日本売上100万本超）
const JapanHitThreshold = 1.0

// excludedYears はソースデータ中の既知の不良Year値
// 一般的な範囲フィルタではなく、この2つの値のみを明示的に除外する。
var excludedYears = map[int]bool{
	2017: true,
	2020: true,
}

// Cleaner は生テーブルを分析可能テーブルへ変換するクリーニング変換器
//
// 変換は純粋であり、入力テーブルを変更せず新しいテーブルを返す。
// クリーニング済みテーブルに再適用しても結果は変わらない（冪等）。
//
// 処理手順:
//  1. 完全重複行の除去
//  2. タイトル（Name）ごとの非null Yearの平均（四捨五入）を計算
//  3. タイトルごとの最頻出Publisherを計算（同数の場合は辞書順最小）
//  4. null YearとnullPublisherを上記の値で補完
//  5. Yearが既知の不良値（2017, 2020）の行を除外
//  6. なお補完できなかったnull行を破棄
//  7. 5つの売上列それぞれにlog1p派生列を付与
//  8. Is_Japan_Hitフラグを付与
//
// 補完不能な行（タイトル全体でYear/Publisherが一度も観測されない）は
// エラーにはならず黙って破棄される。破棄件数はDataQualityWarningとして
// 集計報告される。
type Cleaner struct {
	logger log.Logger
}

// NewCleaner は新しいクリーニング変換器を作成する
func NewCleaner() *Cleaner {
	return &Cleaner{logger: log.GetLoggerWithName("preprocessing")}
}

// Transform はクリーニングを実行し、新しいテーブルを返す
func (c *Cleaner) Transform(t *dataset.Table) (*dataset.Table, error) {
	if t == nil || t.Len() == 0 {
		return nil, errors.NewModelError("Cleaner.Transform", "empty table", errors.ErrEmptyData)
	}

	rowsIn := t.Len()
	records := t.Records()

	records = dropDuplicates(records)
	dedupDropped := rowsIn - len(records)

	yearByName := meanYearByTitle(records)
	publisherByName := modalPublisherByTitle(records)

	for i := range records {
		if !records[i].Year.Valid {
			if y, ok := yearByName[records[i].Name]; ok {
				records[i].Year = dataset.NullInt{Int: y, Valid: true}
			}
		}
		if !records[i].Publisher.Valid {
			if p, ok := publisherByName[records[i].Name]; ok {
				records[i].Publisher = dataset.NullString{String: p, Valid: true}
			}
		}
	}

	kept := records[:0:0]
	var badYear, nullDropped int
	for _, rec := range records {
		if rec.Year.Valid && excludedYears[rec.Year.Int] {
			badYear++
			continue
		}
		if rec.HasNull() {
			nullDropped++
			continue
		}
		kept = append(kept, rec)
	}

	for i := range kept {
		kept[i].NASalesLog, kept[i].EUSalesLog, kept[i].JPSalesLog,
			kept[i].OtherSalesLog, kept[i].GlobalSalesLog = kept[i].Log1pSales()
		if kept[i].JPSales > JapanHitThreshold {
			kept[i].IsJapanHit = 1
		} else {
			kept[i].IsJapanHit = 0
		}
	}

	if len(kept) == 0 {
		return nil, errors.NewModelError("Cleaner.Transform", "all rows dropped", errors.ErrEmptyData)
	}

	if dropped := rowsIn - len(kept); dropped > 0 {
		errors.Warn(errors.NewDataQualityWarning("cleaning", dropped, "duplicate, bad-year and irrecoverable rows removed"))
	}
	c.logger.Info("cleaning complete",
		log.OperationKey, "transform",
		log.RowsInKey, rowsIn,
		log.RowsOutKey, len(kept),
		"rows.duplicates", dedupDropped,
		"rows.bad_year", badYear,
		"rows.null_dropped", nullDropped,
	)

	return dataset.NewDerivedTable(kept), nil
}

// dropDuplicates は完全重複行を除去する（初出順を保持）
func dropDuplicates(records []dataset.Record) []dataset.Record {
	seen := make(map[string]struct{}, len(records))
	out := records[:0:0]
	for _, rec := range records {
		key := rec.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// meanYearByTitle はタイトルごとの非nullYearの平均（四捨五入）を計算する
// 同一タイトルがプラットフォーム別に異なる年で発売されるケースを扱う。
func meanYearByTitle(records []dataset.Record) map[string]int {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, rec := range records {
		if rec.Year.Valid {
			sums[rec.Name] += rec.Year.Int
			counts[rec.Name]++
		}
	}
	out := make(map[string]int, len(sums))
	for name, sum := range sums {
		out[name] = int(math.Round(float64(sum) / float64(counts[name])))
	}
	return out
}

// modalPublisherByTitle はタイトルごとの最頻出Publisherを計算する
// 出現数が同数の場合は辞書順で最小の値を選ぶ（決定的）。
func modalPublisherByTitle(records []dataset.Record) map[string]string {
	counts := make(map[string]map[string]int)
	for _, rec := range records {
		if !rec.Publisher.Valid {
			continue
		}
		if counts[rec.Name] == nil {
			counts[rec.Name] = make(map[string]int)
		}
		counts[rec.Name][rec.Publisher.String]++
	}

	out := make(map[string]string, len(counts))
	for name, byPublisher := range counts {
		publishers := make([]string, 0, len(byPublisher))
		for p := range byPublisher {
			publishers = append(publishers, p)
		}
		sort.Strings(publishers)

		best := publishers[0]
		for _, p := range publishers[1:] {
			if byPublisher[p] > byPublisher[best] {
				best = p
			}
		}
		out[name] = best
	}
	return out
}
