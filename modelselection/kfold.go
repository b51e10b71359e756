package modelselection

import (
	"math/rand"
)

// CVFold は交差検証の1分割（訓練側と検証側の行インデックス）
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold はK分割交差検証のスプリッタ
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    int64
}

// NewKFold は新しいK分割スプリッタを作成する
// nSplitsが2未満の場合はデフォルトの5になる。
func NewKFold(nSplits int, shuffle bool, seed int64) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// Split はnSamples行をNSplits個の訓練/検証分割に分ける
//
// 各フォールドのサイズは floor(n/k) で、余りは先頭のフォールドに
// 1行ずつ配分される。Shuffleが真の場合はシード付きで行順を並べ替える。
func (kf *KFold) Split(nSamples int) []CVFold {
	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		rand.New(rand.NewSource(kf.Seed)).Shuffle(nSamples, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	offset := 0
	for k := 0; k < kf.NSplits; k++ {
		size := foldSize
		if k < remainder {
			size++
		}

		test := make([]int, size)
		copy(test, indices[offset:offset+size])

		train := make([]int, 0, nSamples-size)
		train = append(train, indices[:offset]...)
		train = append(train, indices[offset+size:]...)

		folds[k] = CVFold{TrainIndices: train, TestIndices: test}
		offset += size
	}
	return folds
}
