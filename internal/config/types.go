package config

// Config is the top-level configuration for the autobid service.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Engine       EngineConfig       `mapstructure:"engine"`
	Store        StoreConfig        `mapstructure:"store"`
	AuctionHouse AuctionHouseConfig `mapstructure:"auction_house"`
	Notify       NotifyConfig       `mapstructure:"notify"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	HTTPAddr string `mapstructure:"http_addr"`
	LogPath  string `mapstructure:"log_path"`
}

// EngineConfig tunes the evaluation cycle.
type EngineConfig struct {
	// CycleInterval is the global tick interval, e.g. "60s".
	CycleInterval string `mapstructure:"cycle_interval"`
	// Workers bounds parallel agent evaluation inside a cycle.
	Workers int `mapstructure:"workers"`
	// PlacementTimeoutSeconds bounds one bid placement call.
	PlacementTimeoutSeconds int `mapstructure:"placement_timeout_seconds"`
	// ConditionsPath points at the condition template file.
	ConditionsPath string `mapstructure:"conditions_path"`
	// RunImmediately fires one cycle at startup before the first tick.
	RunImmediately bool `mapstructure:"run_immediately"`
}

type StoreConfig struct {
	AgentsPath           string `mapstructure:"agents_path"`
	OutcomesPath         string `mapstructure:"outcomes_path"`
	OutcomeRetentionDays int    `mapstructure:"outcome_retention_days"`
	// PurgeCron is a 6-field cron spec for the outcome purge job.
	PurgeCron string `mapstructure:"purge_cron"`
}

// AuctionHouseConfig describes how to reach the external auction service.
type AuctionHouseConfig struct {
	APIURL         string `mapstructure:"api_url"`
	APIToken       string `mapstructure:"api_token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}
