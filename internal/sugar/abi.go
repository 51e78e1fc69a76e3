package sugar

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Only the read methods the aggregators use are declared.
const lpSugarABIJSON = `[
  {
    "inputs": [
      {"name": "_limit", "type": "uint256"},
      {"name": "_offset", "type": "uint256"},
      {"name": "_account", "type": "address"}
    ],
    "name": "tokens",
    "outputs": [
      {
        "components": [
          {"name": "token_address", "type": "address"},
          {"name": "symbol", "type": "string"},
          {"name": "decimals", "type": "uint8"},
          {"name": "account_balance", "type": "uint256"},
          {"name": "listed", "type": "bool"}
        ],
        "name": "",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"name": "_limit", "type": "uint256"},
      {"name": "_offset", "type": "uint256"},
      {"name": "_account", "type": "address"}
    ],
    "name": "all",
    "outputs": [
      {
        "components": [
          {"name": "lp", "type": "address"},
          {"name": "symbol", "type": "string"},
          {"name": "decimals", "type": "uint8"},
          {"name": "stable", "type": "bool"},
          {"name": "total_supply", "type": "uint256"},
          {"name": "token0", "type": "address"},
          {"name": "reserve0", "type": "uint256"},
          {"name": "claimable0", "type": "uint256"},
          {"name": "token1", "type": "address"},
          {"name": "reserve1", "type": "uint256"},
          {"name": "claimable1", "type": "uint256"},
          {"name": "gauge", "type": "address"},
          {"name": "gauge_total_supply", "type": "uint256"},
          {"name": "gauge_alive", "type": "bool"},
          {"name": "fee", "type": "address"},
          {"name": "bribe", "type": "address"},
          {"name": "factory", "type": "address"},
          {"name": "emissions", "type": "uint256"},
          {"name": "emissions_token", "type": "address"},
          {"name": "account_balance", "type": "uint256"},
          {"name": "account_earned", "type": "uint256"},
          {"name": "account_staked", "type": "uint256"},
          {"name": "pool_fee", "type": "uint256"},
          {"name": "token0_fees", "type": "uint256"},
          {"name": "token1_fees", "type": "uint256"}
        ],
        "name": "",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"name": "_limit", "type": "uint256"},
      {"name": "_offset", "type": "uint256"}
    ],
    "name": "epochsLatest",
    "outputs": [
      {
        "components": [
          {"name": "ts", "type": "uint256"},
          {"name": "lp", "type": "address"},
          {"name": "votes", "type": "uint256"},
          {"name": "emissions", "type": "uint256"},
          {
            "components": [
              {"name": "token", "type": "address"},
              {"name": "amount", "type": "uint256"}
            ],
            "name": "bribes",
            "type": "tuple[]"
          },
          {
            "components": [
              {"name": "token", "type": "address"},
              {"name": "amount", "type": "uint256"}
            ],
            "name": "fees",
            "type": "tuple[]"
          }
        ],
        "name": "",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const oracleABIJSON = `[
  {
    "inputs": [
      {"name": "src_len", "type": "uint8"},
      {"name": "connectors", "type": "address[]"}
    ],
    "name": "getManyRatesWithConnectors",
    "outputs": [
      {"name": "rates", "type": "uint256[]"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const (
	methodTokens = "tokens"
	methodPools  = "all"
	methodEpochs = "epochsLatest"
	methodRates  = "getManyRatesWithConnectors"
)

var (
	lpSugarABI     abi.ABI
	lpSugarABIOnce sync.Once
	lpSugarABIErr  error

	oracleABI     abi.ABI
	oracleABIOnce sync.Once
	oracleABIErr  error
)

// LpSugarABI returns the parsed LpSugar ABI.
func LpSugarABI() (abi.ABI, error) {
	lpSugarABIOnce.Do(func() {
		lpSugarABI, lpSugarABIErr = abi.JSON(strings.NewReader(lpSugarABIJSON))
	})
	return lpSugarABI, lpSugarABIErr
}

// OracleABI returns the parsed price oracle ABI.
func OracleABI() (abi.ABI, error) {
	oracleABIOnce.Do(func() {
		oracleABI, oracleABIErr = abi.JSON(strings.NewReader(oracleABIJSON))
	})
	return oracleABI, oracleABIErr
}

// loadABI parses the ABI at path, or returns fallback when path is empty.
// The override must still declare every method in required.
func loadABI(path string, fallback func() (abi.ABI, error), required ...string) (abi.ABI, error) {
	if path == "" {
		return fallback()
	}

	f, err := os.Open(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("open abi %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := abi.JSON(f)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi %s: %w", path, err)
	}
	for _, name := range required {
		if _, ok := parsed.Methods[name]; !ok {
			return abi.ABI{}, fmt.Errorf("abi %s: missing method %s", path, name)
		}
	}
	return parsed, nil
}
