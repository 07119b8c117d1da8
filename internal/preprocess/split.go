package preprocess

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// StratifiedSplit partitions row indices so each class keeps its share in
// both parts. The test part holds ceil(n*testSize) rows, allocated to classes
// by largest remainder; within a class, rows are drawn after a shuffle seeded
// by seed. Both index lists come back sorted.
func StratifiedSplit(labels []int, testSize float64, seed int64) (train, test []int, err error) {
	n := len(labels)
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size %v outside (0, 1)", testSize)
	}
	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest == 0 || nTest >= n {
		return nil, nil, fmt.Errorf("cannot split %d rows at test size %v", n, testSize)
	}

	byClass := make(map[int][]int)
	for i, l := range labels {
		byClass[l] = append(byClass[l], i)
	}
	classes := make([]int, 0, len(byClass))
	for c, rows := range byClass {
		if len(rows) < 2 {
			return nil, nil, errors.New("every class needs at least 2 rows for a stratified split")
		}
		classes = append(classes, c)
	}
	sort.Ints(classes)
	if nTest < len(classes) || n-nTest < len(classes) {
		return nil, nil, fmt.Errorf("split sizes %d/%d smaller than the %d classes", n-nTest, nTest, len(classes))
	}

	quota := allocate(classes, byClass, n, nTest)
	rng := rand.New(rand.NewSource(seed))
	for _, c := range classes {
		rows := append([]int(nil), byClass[c]...)
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		test = append(test, rows[:quota[c]]...)
		train = append(train, rows[quota[c]:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// allocate distributes nTest test rows across classes proportionally,
// handing the rounding leftovers to the largest fractional parts.
func allocate(classes []int, byClass map[int][]int, n, nTest int) map[int]int {
	type rem struct {
		class int
		frac  float64
	}
	quota := make(map[int]int, len(classes))
	rems := make([]rem, 0, len(classes))
	assigned := 0
	for _, c := range classes {
		exact := float64(len(byClass[c])) * float64(nTest) / float64(n)
		q := int(math.Floor(exact))
		quota[c] = q
		assigned += q
		rems = append(rems, rem{class: c, frac: exact - float64(q)})
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for i := 0; assigned < nTest; i = (i + 1) % len(rems) {
		c := rems[i].class
		if quota[c] < len(byClass[c])-1 {
			quota[c]++
			assigned++
		}
	}
	return quota
}
