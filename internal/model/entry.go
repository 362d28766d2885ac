package model

// TokenEntry is an unvalidated token as written in the config file or the
// token registry table.
type TokenEntry struct {
	Name  string      `mapstructure:"name" json:"name"`
	Token string      `mapstructure:"token" json:"token"`
	Pools []PoolEntry `mapstructure:"pools" json:"pools"`
}

// PoolEntry is an unvalidated pool of a TokenEntry.
type PoolEntry struct {
	Name     string `mapstructure:"name" json:"name"`
	Address  string `mapstructure:"address" json:"address"`
	Protocol string `mapstructure:"protocol" json:"protocol"`
}
