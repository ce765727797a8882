package config

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = ":8099"
	}
	if c.Engine.CycleInterval == "" {
		c.Engine.CycleInterval = "60s"
	}
	if c.Engine.Workers <= 0 {
		c.Engine.Workers = 4
	}
	if c.Engine.PlacementTimeoutSeconds <= 0 {
		c.Engine.PlacementTimeoutSeconds = 5
	}
	if c.Engine.ConditionsPath == "" {
		c.Engine.ConditionsPath = "configs/conditions.yaml"
	}
	if c.Store.AgentsPath == "" {
		c.Store.AgentsPath = "data/agents.db"
	}
	if c.Store.OutcomesPath == "" {
		c.Store.OutcomesPath = "data/outcomes.db"
	}
	if c.Store.OutcomeRetentionDays <= 0 {
		c.Store.OutcomeRetentionDays = 30
	}
	if c.Store.PurgeCron == "" {
		// 04:10 UTC daily, off the top of the hour.
		c.Store.PurgeCron = "0 10 4 * * *"
	}
	if c.AuctionHouse.TimeoutSeconds <= 0 {
		c.AuctionHouse.TimeoutSeconds = 10
	}
}
