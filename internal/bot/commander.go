package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sugarWatch/internal/address"
	"sugarWatch/internal/aggregate"
	"sugarWatch/internal/metrics"
	"sugarWatch/internal/model"
)

const (
	poolCommand      = "pool"
	poolQueryOption  = "address_or_query"
	poolSelectID     = "pool_select"
	poolPlaceholder  = "Which pool are you interested in..."
	choosePoolPrompt = "Choose a pool:"
	failureReply     = "Something went wrong, please try again later."
)

// PoolFinder looks up and searches pools.
type PoolFinder interface {
	ByAddress(ctx context.Context, addr string) (*model.LiquidityPool, error)
	Search(ctx context.Context, query string, limit int) ([]model.LiquidityPool, error)
}

// Choice is one entry of a pool picker.
type Choice struct {
	Label string
	Value string
}

// Reply is the commander answer: text, or a prompt with choices.
type Reply struct {
	Content string
	Choices []Choice
}

// Commander answers the /pool command.
type Commander struct {
	pools      PoolFinder
	appBaseURL string
	logger     *zap.Logger
}

func NewCommander(pools PoolFinder, appBaseURL string, logger *zap.Logger) *Commander {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Commander{pools: pools, appBaseURL: appBaseURL, logger: logger}
}

// HandlePool shows the stats of the pool at an address, or offers the
// search results for any other query.
func (c *Commander) HandlePool(ctx context.Context, query string) (Reply, error) {
	query = strings.TrimSpace(query)
	if address.IsAddress(query) {
		return c.HandleSelect(ctx, query)
	}

	pools, err := c.pools.Search(ctx, query, aggregate.DefaultSearchLimit)
	if err != nil {
		return Reply{}, err
	}
	if len(pools) == 0 {
		return Reply{Content: fmt.Sprintf("No pools found for: %s", query)}, nil
	}

	choices := make([]Choice, 0, len(pools))
	for _, p := range pools {
		choices = append(choices, Choice{Label: p.Symbol, Value: p.Address})
	}
	return Reply{Content: choosePoolPrompt, Choices: choices}, nil
}

// HandleSelect renders the stats of the pool at addr.
func (c *Commander) HandleSelect(ctx context.Context, addr string) (Reply, error) {
	pool, err := c.pools.ByAddress(ctx, addr)
	if err != nil {
		return Reply{}, err
	}
	if pool == nil {
		return Reply{Content: fmt.Sprintf("No pool found with this address: %s", addr)}, nil
	}
	return Reply{Content: RenderPoolStats(*pool, c.appBaseURL)}, nil
}

// RenderPoolStats formats the pool stats message.
func RenderPoolStats(pool model.LiquidityPool, appBaseURL string) string {
	tvl := metrics.TVL([]model.LiquidityPool{pool})

	var b strings.Builder
	fmt.Fprintf(&b, "> **%s ● Fee %s ● %s APR**\n",
		pool.Symbol, FormatPercentage(pool.FeePercentage()), FormatPercentage(pool.APR(tvl)))
	fmt.Fprintf(&b, "> - ~%s TVL\n", FormatCurrency(tvl, "$", true))
	fmt.Fprintf(&b, ">   - %s\n", FormatCurrency(pool.Reserve0.Value(), symbolOf(pool.Token0), false))
	fmt.Fprintf(&b, ">   - %s\n", FormatCurrency(pool.Reserve1.Value(), symbolOf(pool.Token1), false))
	fmt.Fprintf(&b, "> - ~%s volume this epoch\n", FormatCurrency(pool.Volume(), "$", true))
	fmt.Fprintf(&b, "> - ~%s fees this epoch\n", FormatCurrency(pool.TotalFees(), "$", true))
	b.WriteString(">\n")
	fmt.Fprintf(&b, "> [Deposit 🐖](%s) ● [Incentivize 🙋](%s)\n",
		depositURL(pool, appBaseURL), AppURL(appBaseURL, "/incentivize", map[string]string{"pool": pool.Address}))
	return b.String()
}

func depositURL(pool model.LiquidityPool, appBaseURL string) string {
	params := map[string]string{"stable": strconv.FormatBool(pool.IsStable)}
	if pool.Token0 != nil {
		params["token0"] = pool.Token0.Address
	}
	if pool.Token1 != nil {
		params["token1"] = pool.Token1.Address
	}
	return AppURL(appBaseURL, "/deposit", params)
}

func symbolOf(t *model.Token) string {
	if t == nil {
		return "?"
	}
	return t.Symbol
}
