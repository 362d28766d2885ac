package model

// Pool is a pool metadata record for the registry table.
type Pool struct {
	ChainID   uint64 `json:"chain_id"`
	Address   string `json:"address"`
	Name      string `json:"name"`
	Protocol  string `json:"protocol"`
	Token0    string `json:"token0"`
	Token1    string `json:"token1"`
	Decimals0 uint8  `json:"decimals0"`
	Decimals1 uint8  `json:"decimals1"`
}

// TokenMeta is ERC20 metadata read from chain.
type TokenMeta struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}
