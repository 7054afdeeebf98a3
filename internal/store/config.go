package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode        string   `yaml:"mode"`
	PollSeconds int      `yaml:"poll_seconds"`
	Exchange    string   `yaml:"exchange"`
	Universe    []string `yaml:"universe"`
	Risk        struct {
		MinConfidence      float64 `yaml:"min_confidence"`
		RiskPerTrade       float64 `yaml:"risk_per_trade"`
		MaxPositionSize    int     `yaml:"max_position_size"`
		StopLossPercent    float64 `yaml:"stop_loss_percent"`
		TakeProfitPercent  float64 `yaml:"take_profit_percent"`
		MaxDailyTrades     int     `yaml:"max_daily_trades"`
		MaxTradesPerSymbol int     `yaml:"max_trades_per_symbol"`
		AllowShortSelling  bool    `yaml:"allow_short_selling"`
		TradingHours       struct {
			Start string `yaml:"start"`
			End   string `yaml:"end"`
		} `yaml:"trading_hours"`
		FundsCacheTTLSeconds int `yaml:"funds_cache_ttl_seconds"`
	} `yaml:"risk"`
	Features struct {
		LookbackTicks int `yaml:"lookback_ticks"`
	} `yaml:"features"`
	Strategy struct {
		Enabled      bool `yaml:"enabled"`
		AutoDeploy   bool `yaml:"auto_deploy"`
		LookbackDays int  `yaml:"lookback_days"`
	} `yaml:"strategy"`
	LLM struct {
		Provider    string  `yaml:"provider"`
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		Temperature float64 `yaml:"temperature"`
		TopK        int     `yaml:"top_k"`
		TopP        float64 `yaml:"top_p"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"llm"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.Universe) == 0 {
		return errors.New("universe cannot be empty")
	}
	if c.Risk.RiskPerTrade <= 0 || c.Risk.RiskPerTrade > 1 {
		return fmt.Errorf("risk.risk_per_trade must be in (0,1], got %.4f", c.Risk.RiskPerTrade)
	}
	if c.Risk.MinConfidence < 0 || c.Risk.MinConfidence > 1 {
		return fmt.Errorf("risk.min_confidence must be in [0,1], got %.4f", c.Risk.MinConfidence)
	}
	if c.Risk.StopLossPercent <= 0 || c.Risk.StopLossPercent >= 1 {
		return fmt.Errorf("risk.stop_loss_percent must be in (0,1), got %.4f", c.Risk.StopLossPercent)
	}
	if c.Risk.MaxDailyTrades < 0 || c.Risk.MaxTradesPerSymbol < 0 {
		return errors.New("risk trade caps cannot be negative")
	}
	return nil
}

// LoadConfig reads a YAML config file and applies defaults. Defaults
// mirror the conservative trading profile the bot ships with.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.PollSeconds == 0 {
		c.PollSeconds = 5
	}
	if c.Exchange == "" {
		c.Exchange = "NSE"
	}
	if c.Risk.MinConfidence == 0 {
		c.Risk.MinConfidence = 0.7
	}
	if c.Risk.RiskPerTrade == 0 {
		c.Risk.RiskPerTrade = 0.02
	}
	if c.Risk.MaxPositionSize == 0 {
		c.Risk.MaxPositionSize = 1000
	}
	if c.Risk.StopLossPercent == 0 {
		c.Risk.StopLossPercent = 0.05
	}
	if c.Risk.TakeProfitPercent == 0 {
		c.Risk.TakeProfitPercent = 0.10
	}
	if c.Risk.MaxDailyTrades == 0 {
		c.Risk.MaxDailyTrades = 10
	}
	// The per-symbol cap is resolved once, here, so that the execution
	// gate never has to fall back to the aggregate cap implicitly.
	if c.Risk.MaxTradesPerSymbol == 0 {
		c.Risk.MaxTradesPerSymbol = c.Risk.MaxDailyTrades
	}
	if c.Risk.TradingHours.Start == "" {
		c.Risk.TradingHours.Start = "09:15"
	}
	if c.Risk.TradingHours.End == "" {
		c.Risk.TradingHours.End = "15:30"
	}
	if c.Risk.FundsCacheTTLSeconds == 0 {
		c.Risk.FundsCacheTTLSeconds = 60
	}
	if c.Features.LookbackTicks == 0 {
		c.Features.LookbackTicks = 120
	}
	if c.Strategy.LookbackDays == 0 {
		c.Strategy.LookbackDays = 21
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-pro"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.1
	}
	if c.LLM.TopK == 0 {
		c.LLM.TopK = 40
	}
	if c.LLM.TopP == 0 {
		c.LLM.TopP = 0.95
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 512
	}
}
