package matrix

import (
	"reflect"
	"testing"
)

func TestExpandConcurrencyRange_ClampsFinalValueToEnd(t *testing.T) {
	got := ExpandConcurrencyRange(1, 100, 2)
	want := []int{1, 2, 4, 8, 16, 32, 64, 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandConcurrencyRange(1, 100, 2) = %v, want %v", got, want)
	}
}

func TestExpandConcurrencyRange_ExactPowerEndsOnEnd(t *testing.T) {
	got := ExpandConcurrencyRange(1, 64, 2)
	want := []int{1, 2, 4, 8, 16, 32, 64}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExpandConcurrencyRange_SingleValueWhenStartEqualsEnd(t *testing.T) {
	got := ExpandConcurrencyRange(8, 8, 2)
	if !reflect.DeepEqual(got, []int{8}) {
		t.Errorf("got %v, want [8]", got)
	}
}

func TestExpandConcurrencyRange_InvertedRangeIsEmpty(t *testing.T) {
	if got := ExpandConcurrencyRange(16, 8, 2); len(got) != 0 {
		t.Errorf("expected empty expansion for inverted range, got %v", got)
	}
}

func TestExpandConcurrencyRange_LastValueAlwaysEnd(t *testing.T) {
	for start := 1; start <= 16; start++ {
		for end := start; end <= 200; end += 7 {
			for _, step := range []int{2, 3, 4} {
				values := ExpandConcurrencyRange(start, end, step)
				if len(values) == 0 {
					t.Fatalf("empty expansion for (%d, %d, %d)", start, end, step)
				}
				if values[len(values)-1] != end {
					t.Fatalf("(%d, %d, %d): last value %d != end", start, end, step, values[len(values)-1])
				}
				for i := 1; i < len(values)-1; i++ {
					if values[i] <= values[i-1] {
						t.Fatalf("(%d, %d, %d): not strictly increasing: %v", start, end, step, values)
					}
				}
			}
		}
	}
}

func TestNarrowRange_MinRaisesStart(t *testing.T) {
	b := ConcurrencyBounds{Min: intPtr(4)}
	start, end, ok := b.NarrowRange(1, 64)
	if !ok || start != 4 || end != 64 {
		t.Errorf("got (%d, %d, %v), want (4, 64, true)", start, end, ok)
	}
}

func TestNarrowRange_WholeRangeBelowMinDropsPoint(t *testing.T) {
	b := ConcurrencyBounds{Min: intPtr(100)}
	if _, _, ok := b.NarrowRange(1, 64); ok {
		t.Error("expected drop when even the range end is below min")
	}
}

func TestNarrowRange_MaxLowersEnd(t *testing.T) {
	b := ConcurrencyBounds{Max: intPtr(32)}
	start, end, ok := b.NarrowRange(1, 64)
	if !ok || start != 1 || end != 32 {
		t.Errorf("got (%d, %d, %v), want (1, 32, true)", start, end, ok)
	}
}

func TestNarrowRange_StartAboveMaxCollapsesToMax(t *testing.T) {
	b := ConcurrencyBounds{Max: intPtr(4)}
	start, end, ok := b.NarrowRange(8, 64)
	if !ok || start != 4 || end != 4 {
		t.Errorf("got (%d, %d, %v), want (4, 4, true)", start, end, ok)
	}
}

func TestNarrowRange_NonPositiveBoundsDropPoint(t *testing.T) {
	if _, _, ok := (ConcurrencyBounds{Min: intPtr(0)}).NarrowRange(1, 64); ok {
		t.Error("min=0 must drop the point")
	}
	if _, _, ok := (ConcurrencyBounds{Max: intPtr(-1)}).NarrowRange(1, 64); ok {
		t.Error("max=-1 must drop the point")
	}
}

func TestFilterList_FiltersByMembership(t *testing.T) {
	b := ConcurrencyBounds{Min: intPtr(8), Max: intPtr(32)}
	values, ok := b.FilterList([]int{1, 4, 8, 16, 32, 64})
	if !ok || !reflect.DeepEqual(values, []int{8, 16, 32}) {
		t.Errorf("got (%v, %v), want ([8 16 32], true)", values, ok)
	}
}

func TestFilterList_EmptyResultDropsPoint(t *testing.T) {
	b := ConcurrencyBounds{Max: intPtr(2)}
	if _, ok := b.FilterList([]int{8, 16}); ok {
		t.Error("expected drop when no value survives the max bound")
	}
}

func TestFilterList_NonPositiveBoundsDropPoint(t *testing.T) {
	if _, ok := (ConcurrencyBounds{Min: intPtr(-3)}).FilterList([]int{1, 2}); ok {
		t.Error("min<=0 must drop the point")
	}
	if _, ok := (ConcurrencyBounds{Max: intPtr(0)}).FilterList([]int{1, 2}); ok {
		t.Error("max<=0 must drop the point")
	}
}

func TestClampParallelism_ClampsInsteadOfDropping(t *testing.T) {
	tp, ok := clampParallelism(8, intPtr(4))
	if !ok || tp != 4 {
		t.Errorf("got (%d, %v), want (4, true)", tp, ok)
	}
}

func TestClampParallelism_NonPositiveBoundDrops(t *testing.T) {
	if _, ok := clampParallelism(8, intPtr(0)); ok {
		t.Error("bound=0 must drop the point")
	}
}

func TestClampParallelism_NilBoundLeavesValue(t *testing.T) {
	tp, ok := clampParallelism(8, nil)
	if !ok || tp != 8 {
		t.Errorf("got (%d, %v), want (8, true)", tp, ok)
	}
}
