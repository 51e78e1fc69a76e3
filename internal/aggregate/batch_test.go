package aggregate

import (
	"reflect"
	"testing"
)

func TestSplitBatches(t *testing.T) {
	got, err := SplitBatches([]int{1, 2, 3, 4, 5}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]int{{1, 2}, {3, 4}, {5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batches mismatch: %+v != %+v", got, want)
	}
}

func TestSplitBatchesSingle(t *testing.T) {
	got, err := SplitBatches([]string{"a"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]string{{"a"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batches mismatch: %+v != %+v", got, want)
	}
}

func TestSplitBatchesEmpty(t *testing.T) {
	got, err := SplitBatches([]int{}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no batches, got %+v", got)
	}
}

func TestSplitBatchesInvalid(t *testing.T) {
	if _, err := SplitBatches([]int{1}, 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}
