package aggregate

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"sugarWatch/internal/model"
)

// DefaultSearchLimit caps search results when no limit is given.
const DefaultSearchLimit = 10

// SearchPools returns the pools whose symbol best matches query. Only pools
// with both tokens resolved are eligible. A single case-insensitive exact
// symbol match is returned alone.
func SearchPools(pools []model.LiquidityPool, query string, limit int) []model.LiquidityPool {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	eligible := make([]model.LiquidityPool, 0, len(pools))
	for _, p := range pools {
		if p.Priced() {
			eligible = append(eligible, p)
		}
	}

	var exact []model.LiquidityPool
	for _, p := range eligible {
		if strings.EqualFold(p.Symbol, query) {
			exact = append(exact, p)
		}
	}
	if len(exact) == 1 {
		return exact
	}

	type scored struct {
		pool  model.LiquidityPool
		score float64
	}
	normalizedQuery := tokenSort(query)
	ranked := make([]scored, len(eligible))
	for i, p := range eligible {
		ranked[i] = scored{pool: p, score: similarity(normalizedQuery, tokenSort(p.Symbol))}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]model.LiquidityPool, len(ranked))
	for i, r := range ranked {
		out[i] = r.pool
	}
	return out
}

// tokenSort lowercases s, splits it on anything that is not a letter or
// digit and rejoins the sorted words, so "WETH/USDC" and "usdc weth" compare equal.
func tokenSort(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	sort.Strings(words)
	return strings.Join(words, " ")
}

// similarity scores two strings from 0 to 100 by edit distance.
func similarity(a, b string) float64 {
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(dist)/float64(longest))
}
