package config

import (
	"fmt"

	"autobid/internal/scheduler"
)

func validate(c *Config) error {
	if _, ok := scheduler.ParseIntervalDuration(c.Engine.CycleInterval); !ok {
		return fmt.Errorf("engine.cycle_interval %q is not a valid interval", c.Engine.CycleInterval)
	}
	if c.AuctionHouse.APIURL == "" {
		return fmt.Errorf("auction_house.api_url is required")
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram requires bot_token and chat_id when enabled")
		}
	}
	return nil
}
