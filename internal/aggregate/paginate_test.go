package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func pager(data []int, calls *[]int) func(context.Context, int, int) ([]int, error) {
	return func(_ context.Context, limit, offset int) ([]int, error) {
		*calls = append(*calls, offset)
		if offset >= len(data) {
			return nil, nil
		}
		end := offset + limit
		if end > len(data) {
			end = len(data)
		}
		return data[offset:end], nil
	}
}

func TestPaginateStopsOnShortPage(t *testing.T) {
	data := seed(7)
	var calls []int

	got, err := paginate(context.Background(), 3, pager(data, &calls))
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, []int{0, 3, 6}, calls)
}

func TestPaginateExactMultipleFetchesEmptyPage(t *testing.T) {
	data := seed(6)
	var calls []int

	got, err := paginate(context.Background(), 3, pager(data, &calls))
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, []int{0, 3, 6}, calls)
}

func TestPaginatePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := paginate(context.Background(), 2, func(context.Context, int, int) ([]int, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPaginateInvalidPageSize(t *testing.T) {
	var calls []int
	_, err := paginate(context.Background(), 0, pager(seed(1), &calls))
	assert.Error(t, err)
	assert.Empty(t, calls)
}
