package sugar

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"

	"sugarWatch/internal/model"
)

// tupleSchema names the positional fields of one contract tuple.
type tupleSchema struct {
	name   string
	fields []string
}

// Token tuple.
const (
	tokenAddress = iota
	tokenSymbol
	tokenDecimals
	tokenAccountBalance
	tokenListed
)

var tokenSchema = tupleSchema{
	name:   "token",
	fields: []string{"token_address", "symbol", "decimals", "account_balance", "listed"},
}

// Lp tuple. account_* fields are read by position but never decoded.
const (
	lpAddress = iota
	lpSymbol
	lpDecimals
	lpStable
	lpTotalSupply
	lpToken0
	lpReserve0
	lpClaimable0
	lpToken1
	lpReserve1
	lpClaimable1
	lpGauge
	lpGaugeTotalSupply
	lpGaugeAlive
	lpFee
	lpBribe
	lpFactory
	lpEmissions
	lpEmissionsToken
	lpAccountBalance
	lpAccountEarned
	lpAccountStaked
	lpPoolFee
	lpToken0Fees
	lpToken1Fees
)

var lpSchema = tupleSchema{
	name: "lp",
	fields: []string{
		"lp", "symbol", "decimals", "stable", "total_supply",
		"token0", "reserve0", "claimable0",
		"token1", "reserve1", "claimable1",
		"gauge", "gauge_total_supply", "gauge_alive",
		"fee", "bribe", "factory",
		"emissions", "emissions_token",
		"account_balance", "account_earned", "account_staked",
		"pool_fee", "token0_fees", "token1_fees",
	},
}

// LpEpoch tuple.
const (
	epochTimestamp = iota
	epochPool
	epochVotes
	epochEmissions
	epochBribes
	epochFees
)

var epochSchema = tupleSchema{
	name:   "epoch",
	fields: []string{"ts", "lp", "votes", "emissions", "bribes", "fees"},
}

// LpEpochBribe tuple, shared by bribes and fees.
const (
	rewardToken = iota
	rewardAmount
)

var rewardSchema = tupleSchema{
	name:   "reward",
	fields: []string{"token", "amount"},
}

// tupleReader reads positional fields from one decoded tuple.
// The first failure sticks and every later read returns a zero value.
type tupleReader struct {
	schema tupleSchema
	value  reflect.Value
	err    error
}

func newTupleReader(schema tupleSchema, value reflect.Value) *tupleReader {
	r := &tupleReader{schema: schema}
	for value.Kind() == reflect.Interface || value.Kind() == reflect.Pointer {
		if value.IsNil() {
			r.err = &DecodeError{Tuple: schema.name, Index: -1, Err: fmt.Errorf("nil tuple")}
			return r
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		r.err = &DecodeError{Tuple: schema.name, Index: -1, Err: fmt.Errorf("expected tuple, got %s", value.Kind())}
		return r
	}
	if value.NumField() != len(schema.fields) {
		r.err = &DecodeError{
			Tuple: schema.name,
			Index: -1,
			Err:   fmt.Errorf("expected %d fields, got %d", len(schema.fields), value.NumField()),
		}
		return r
	}
	r.value = value
	return r
}

func (r *tupleReader) field(i int) (interface{}, bool) {
	if r.err != nil {
		return nil, false
	}
	f := r.value.Field(i)
	if !f.CanInterface() {
		r.fail(i, fmt.Errorf("unexported field"))
		return nil, false
	}
	return f.Interface(), true
}

func (r *tupleReader) fail(i int, err error) {
	if r.err == nil {
		r.err = &DecodeError{Tuple: r.schema.name, Index: i, Field: r.schema.fields[i], Err: err}
	}
}

func (r *tupleReader) address(i int) common.Address {
	raw, ok := r.field(i)
	if !ok {
		return common.Address{}
	}
	v, err := asAddress(raw)
	if err != nil {
		r.fail(i, err)
	}
	return v
}

func (r *tupleReader) bigInt(i int) *big.Int {
	raw, ok := r.field(i)
	if !ok {
		return nil
	}
	v, err := asBigInt(raw)
	if err != nil {
		r.fail(i, err)
	}
	return v
}

func (r *tupleReader) uint8(i int) uint8 {
	raw, ok := r.field(i)
	if !ok {
		return 0
	}
	v, err := asUint8(raw)
	if err != nil {
		r.fail(i, err)
	}
	return v
}

func (r *tupleReader) string(i int) string {
	raw, ok := r.field(i)
	if !ok {
		return ""
	}
	v, err := asString(raw)
	if err != nil {
		r.fail(i, err)
	}
	return v
}

func (r *tupleReader) bool(i int) bool {
	raw, ok := r.field(i)
	if !ok {
		return false
	}
	v, err := asBool(raw)
	if err != nil {
		r.fail(i, err)
	}
	return v
}

func (r *tupleReader) rewards(i int) []model.RawReward {
	if r.err != nil {
		return nil
	}
	items, err := tupleSlice(rewardSchema, r.value.Field(i))
	if err != nil {
		r.fail(i, err)
		return nil
	}
	out := make([]model.RawReward, 0, len(items))
	for _, item := range items {
		rr := newTupleReader(rewardSchema, item)
		reward := model.RawReward{
			Token:  rr.address(rewardToken),
			Amount: rr.bigInt(rewardAmount),
		}
		if rr.err != nil {
			r.fail(i, rr.err)
			return nil
		}
		out = append(out, reward)
	}
	return out
}

// tupleSlice expands a tuple[] value into its elements.
func tupleSlice(schema tupleSchema, value reflect.Value) ([]reflect.Value, error) {
	for value.Kind() == reflect.Interface || value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Slice && value.Kind() != reflect.Array {
		return nil, &DecodeError{Tuple: schema.name, Index: -1, Err: fmt.Errorf("expected tuple list, got %s", value.Kind())}
	}
	out := make([]reflect.Value, value.Len())
	for i := range out {
		out[i] = value.Index(i)
	}
	return out, nil
}

// unpackedList returns the single tuple[] output of a contract call.
func unpackedList(schema tupleSchema, values []interface{}) ([]reflect.Value, error) {
	if len(values) != 1 {
		return nil, &DecodeError{Tuple: schema.name, Index: -1, Err: fmt.Errorf("expected 1 output, got %d", len(values))}
	}
	return tupleSlice(schema, reflect.ValueOf(values[0]))
}

func decodeTokens(values []interface{}) ([]model.RawToken, error) {
	rows, err := unpackedList(tokenSchema, values)
	if err != nil {
		return nil, err
	}
	out := make([]model.RawToken, 0, len(rows))
	for _, row := range rows {
		r := newTupleReader(tokenSchema, row)
		token := model.RawToken{
			Address:        r.address(tokenAddress),
			Symbol:         r.string(tokenSymbol),
			Decimals:       r.uint8(tokenDecimals),
			AccountBalance: r.bigInt(tokenAccountBalance),
			Listed:         r.bool(tokenListed),
		}
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, token)
	}
	return out, nil
}

func decodePools(values []interface{}) ([]model.RawPool, error) {
	rows, err := unpackedList(lpSchema, values)
	if err != nil {
		return nil, err
	}
	out := make([]model.RawPool, 0, len(rows))
	for _, row := range rows {
		r := newTupleReader(lpSchema, row)
		pool := model.RawPool{
			Address:          r.address(lpAddress),
			Symbol:           r.string(lpSymbol),
			Decimals:         r.uint8(lpDecimals),
			Stable:           r.bool(lpStable),
			TotalSupply:      r.bigInt(lpTotalSupply),
			Token0:           r.address(lpToken0),
			Reserve0:         r.bigInt(lpReserve0),
			Claimable0:       r.bigInt(lpClaimable0),
			Token1:           r.address(lpToken1),
			Reserve1:         r.bigInt(lpReserve1),
			Claimable1:       r.bigInt(lpClaimable1),
			Gauge:            r.address(lpGauge),
			GaugeTotalSupply: r.bigInt(lpGaugeTotalSupply),
			GaugeAlive:       r.bool(lpGaugeAlive),
			FeeContract:      r.address(lpFee),
			BribeContract:    r.address(lpBribe),
			Factory:          r.address(lpFactory),
			Emissions:        r.bigInt(lpEmissions),
			EmissionsToken:   r.address(lpEmissionsToken),
			PoolFee:          r.bigInt(lpPoolFee),
			Token0Fees:       r.bigInt(lpToken0Fees),
			Token1Fees:       r.bigInt(lpToken1Fees),
		}
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, pool)
	}
	return out, nil
}

func decodeEpochs(values []interface{}) ([]model.RawEpoch, error) {
	rows, err := unpackedList(epochSchema, values)
	if err != nil {
		return nil, err
	}
	out := make([]model.RawEpoch, 0, len(rows))
	for _, row := range rows {
		r := newTupleReader(epochSchema, row)
		epoch := model.RawEpoch{
			Timestamp: r.bigInt(epochTimestamp),
			Pool:      r.address(epochPool),
			Votes:     r.bigInt(epochVotes),
			Emissions: r.bigInt(epochEmissions),
			Bribes:    r.rewards(epochBribes),
			Fees:      r.rewards(epochFees),
		}
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, epoch)
	}
	return out, nil
}

func decodeRates(values []interface{}) ([]*big.Int, error) {
	if len(values) != 1 {
		return nil, &DecodeError{Tuple: "rates", Index: -1, Err: fmt.Errorf("expected 1 output, got %d", len(values))}
	}
	switch v := values[0].(type) {
	case []*big.Int:
		return v, nil
	default:
		return nil, &DecodeError{Tuple: "rates", Index: -1, Err: fmt.Errorf("unsupported rates type %T", values[0])}
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil int")
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func asString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported string type %T", value)
	}
}

func asBool(value interface{}) (bool, error) {
	v, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("unsupported bool type %T", value)
	}
	return v, nil
}
