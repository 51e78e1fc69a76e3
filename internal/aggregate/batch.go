package aggregate

import "fmt"

// SplitBatches splits items into consecutive chunks of at most size elements,
// preserving order.
func SplitBatches[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}

	return batches, nil
}
