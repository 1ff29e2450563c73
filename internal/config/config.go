// Package config defines configuration for the four core processes.
// Each process reads a single JSON file (path given as argv[1]) with
// github.com/spf13/viper; there is no YAML and no environment-variable
// layer, since each process runs as its own deployment unit with its own
// secrets file.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// NearSide restricts which side of the near ladder a market-making context
// quotes.
type NearSide string

const (
	NearBoth NearSide = "BOTH"
	NearAsk  NearSide = "ASK"
	NearBid  NearSide = "BID"
)

// TermType selects spot vs futures order construction for the self-trader.
type TermType string

const (
	TermSpot   TermType = "SPOT"
	TermFuture TermType = "FUTURE"
)

// CacheConfig selects the quote-cache backend. When RedisAddr is empty
// the process falls back to an in-memory store (single-process only,
// useful for tests and for mock-mode runs).
type CacheConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// IngesterConfig configures one quote-ingester process — one venue's
// public WS feeds for a set of symbols, publishing depth and ticker
// snapshots into the shared quote cache.
type IngesterConfig struct {
	Version int `mapstructure:"version"`

	Exchange string   `mapstructure:"exchange"` // "binance_future" or "okx"
	WSURL    string   `mapstructure:"ws_url"`
	Symbols  []string `mapstructure:"symbols"`

	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LoadIngester reads and validates an ingester config.
func LoadIngester(path string) (*IngesterConfig, error) {
	var cfg IngesterConfig
	if err := loadJSON(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required ingester fields.
func (c *IngesterConfig) Validate() error {
	if c.Exchange == "" {
		return fmt.Errorf("exchange is required")
	}
	if c.WSURL == "" {
		return fmt.Errorf("ws_url is required")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	return nil
}

// MMConfig configures one market-making engine process — one follow
// stream mirrored onto one maker symbol.
type MMConfig struct {
	Version int `mapstructure:"version"`

	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	Passphrase string `mapstructure:"passphrase"`
	BaseURL    string `mapstructure:"base_url"`
	Mock       bool   `mapstructure:"mock"`

	MakerExchange  string `mapstructure:"maker_exchange"`
	MakerSymbol    string `mapstructure:"maker_symbol"`
	FollowExchange string `mapstructure:"follow_exchange"`
	FollowSymbol   string `mapstructure:"follow_symbol"`

	PriceDecimals int          `mapstructure:"price_decimals"`
	QtyDecimals   int          `mapstructure:"qty_decimals"`
	TermType      TermType     `mapstructure:"term_type"`
	PositionSide  string       `mapstructure:"position_side"`

	NearSide               NearSide `mapstructure:"near_side"`
	NearAskSize            int      `mapstructure:"near_ask_size"`
	NearBidSize            int      `mapstructure:"near_bid_size"`
	NearQtyMultiplier      float64  `mapstructure:"near_qty_multiplier"`
	NearSellPriceMargin    float64  `mapstructure:"near_sell_price_margin"`
	NearBuyPriceMargin     float64  `mapstructure:"near_buy_price_margin"`
	NearMaxAmtPerOrder     float64  `mapstructure:"near_max_amt_per_order"`
	NearIntervalMs         int      `mapstructure:"near_interval_ms"`
	NearTIF                string   `mapstructure:"near_tif"`
	NearDiffRatePerRound   float64  `mapstructure:"near_diff_rate_per_round"`
	ForceRefreshNum        int      `mapstructure:"force_refresh_num"`

	FarSide             NearSide `mapstructure:"far_side"`
	FarAskSize          int      `mapstructure:"far_ask_size"`
	FarBidSize          int     `mapstructure:"far_bid_size"`
	FarQtyMultiplier    float64 `mapstructure:"far_qty_multiplier"`
	FarSellPriceMargin  float64 `mapstructure:"far_sell_price_margin"`
	FarBuyPriceMargin   float64 `mapstructure:"far_buy_price_margin"`
	FarMaxAmtPerOrder   float64 `mapstructure:"far_max_amt_per_order"`
	FarIntervalMs       int     `mapstructure:"far_interval_ms"`
	FarTIF              string  `mapstructure:"far_tif"`

	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// HedgerConfig configures one hedger process — one maker symbol being
// watched for fills, hedged out onto a (possibly different) venue/symbol.
type HedgerConfig struct {
	Version int `mapstructure:"version"`

	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	Passphrase string `mapstructure:"passphrase"`
	StreamURL  string `mapstructure:"stream_url"`
	BaseURL    string `mapstructure:"base_url"`
	Mock       bool   `mapstructure:"mock"`

	MakerSymbol  string `mapstructure:"maker_symbol"`
	HedgeSymbol  string `mapstructure:"hedge_symbol"`
	HedgeExchange string `mapstructure:"hedge_exchange"`

	PriceDecimals  int     `mapstructure:"price_decimals"`
	QtyDecimals    int     `mapstructure:"qty_decimals"`
	MinQtyPerOrder float64 `mapstructure:"min_qty_per_order"`
	MinAmtPerOrder float64 `mapstructure:"min_amt_per_order"`
	Slippage       float64 `mapstructure:"slippage"`

	WorkerPoolSize int `mapstructure:"worker_pool_size"`

	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// STConfig configures one self-trader process.
type STConfig struct {
	Version int `mapstructure:"version"`

	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	Passphrase string `mapstructure:"passphrase"`
	BaseURL    string `mapstructure:"base_url"`
	Mock       bool   `mapstructure:"mock"`

	FollowExchange string   `mapstructure:"follow_exchange"`
	FollowSymbol   string   `mapstructure:"follow_symbol"`
	MakerSymbol    string   `mapstructure:"maker_symbol"`
	TermType       TermType `mapstructure:"term_type"`

	PriceDecimals   int     `mapstructure:"price_decimals"`
	QtyDecimals     int     `mapstructure:"qty_decimals"`
	IntervalMs      int     `mapstructure:"interval_ms"`
	QuoteTimeoutMs  int     `mapstructure:"quote_timeout_ms"`
	QtyMultiplier   float64 `mapstructure:"qty_multiplier"`
	MaxAmtPerOrder  float64 `mapstructure:"max_amt_per_order"`
	MinQtyPerOrder  float64 `mapstructure:"min_qty_per_order"`
	MinAmtPerOrder  float64 `mapstructure:"min_amt_per_order"`
	PriceDivergence float64 `mapstructure:"price_divergence"`

	Leverage     float64 `mapstructure:"leverage"`
	ContractSize float64 `mapstructure:"contract_size"`

	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig selects the slog handler. Format is "json" or "text".
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// loadJSON reads a single JSON config file at path into dst via viper.
func loadJSON(path string, dst interface{}) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := v.Unmarshal(dst); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// LoadMM reads and validates a market-making config.
func LoadMM(path string) (*MMConfig, error) {
	var cfg MMConfig
	if err := loadJSON(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required MM fields.
func (c *MMConfig) Validate() error {
	if c.APIKey == "" || c.APISecret == "" {
		return fmt.Errorf("api_key/api_secret are required")
	}
	if c.MakerSymbol == "" || c.FollowSymbol == "" {
		return fmt.Errorf("maker_symbol and follow_symbol are required")
	}
	if c.NearIntervalMs <= 0 {
		return fmt.Errorf("near_interval_ms must be > 0")
	}
	if c.NearSide == "" {
		c.NearSide = NearBoth
	}
	if c.FarSide == "" {
		c.FarSide = NearBoth
	}
	if c.NearTIF == "" {
		c.NearTIF = "GTC"
	}
	if c.FarTIF == "" {
		c.FarTIF = "GTC"
	}
	return nil
}

// LoadHedger reads and validates a hedger config.
func LoadHedger(path string) (*HedgerConfig, error) {
	var cfg HedgerConfig
	if err := loadJSON(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required hedger fields.
func (c *HedgerConfig) Validate() error {
	if c.APIKey == "" || c.APISecret == "" {
		return fmt.Errorf("api_key/api_secret are required")
	}
	if c.MakerSymbol == "" || c.HedgeSymbol == "" {
		return fmt.Errorf("maker_symbol and hedge_symbol are required")
	}
	if c.WorkerPoolSize <= 0 {
		c.WorkerPoolSize = 10
	}
	return nil
}

// LoadST reads and validates a self-trader config.
func LoadST(path string) (*STConfig, error) {
	var cfg STConfig
	if err := loadJSON(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required self-trader fields.
func (c *STConfig) Validate() error {
	if c.APIKey == "" || c.APISecret == "" {
		return fmt.Errorf("api_key/api_secret are required")
	}
	if c.MakerSymbol == "" || c.FollowSymbol == "" {
		return fmt.Errorf("maker_symbol and follow_symbol are required")
	}
	if c.IntervalMs <= 0 {
		return fmt.Errorf("interval_ms must be > 0")
	}
	if c.TermType == "" {
		c.TermType = TermSpot
	}
	if c.Leverage == 0 {
		c.Leverage = 2
	}
	if c.ContractSize == 0 {
		c.ContractSize = 0.1
	}
	return nil
}
