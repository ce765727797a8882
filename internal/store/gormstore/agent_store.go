package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"autobid/internal/model"
	storemodel "autobid/internal/store/model"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when an agent id does not exist.
var ErrNotFound = errors.New("agent not found")

// AgentStore persists auto-bid agents in SQLite through Gorm.
type AgentStore struct {
	db *gorm.DB
}

// NewAgentStore opens (and migrates) the agent database at path.
func NewAgentStore(path string) (*AgentStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("agent store: path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&storemodel.AgentModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: a little parallelism for admin reads, low lock contention.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &AgentStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *AgentStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LoadDue returns active agents whose next run time has elapsed (or was never
// set), ordered by creation time so outcome order is deterministic.
func (s *AgentStore) LoadDue(ctx context.Context, now time.Time) ([]model.AgentConfig, error) {
	var rows []storemodel.AgentModel
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("next_run_at IS NULL OR next_run_at <= ?", now.Unix()).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load due agents: %w", err)
	}
	return fromModels(rows)
}

// Save upserts the full agent row.
func (s *AgentStore) Save(ctx context.Context, agent model.AgentConfig) error {
	row, err := toModel(agent)
	if err != nil {
		return err
	}
	row.UpdatedAtUnix = time.Now().Unix()
	if row.CreatedAtUnix == 0 {
		row.CreatedAtUnix = row.UpdatedAtUnix
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save agent %s: %w", agent.ID, err)
	}
	return nil
}

// Get returns one agent by id.
func (s *AgentStore) Get(ctx context.Context, id string) (model.AgentConfig, error) {
	var row storemodel.AgentModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.AgentConfig{}, ErrNotFound
	}
	if err != nil {
		return model.AgentConfig{}, fmt.Errorf("get agent %s: %w", id, err)
	}
	return fromModel(row)
}

// List returns all agents, newest first.
func (s *AgentStore) List(ctx context.Context) ([]model.AgentConfig, error) {
	var rows []storemodel.AgentModel
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return fromModels(rows)
}

// Deactivate flips is_active off without touching the rest of the row.
func (s *AgentStore) Deactivate(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Model(&storemodel.AgentModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": time.Now().Unix(),
		})
	if res.Error != nil {
		return fmt.Errorf("deactivate agent %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func toModel(agent model.AgentConfig) (storemodel.AgentModel, error) {
	row := storemodel.AgentModel{
		ID:              agent.ID,
		AuctionID:       agent.AuctionID,
		UserID:          agent.UserID,
		IntervalMinutes: agent.IntervalMinutes,
		IsActive:        agent.IsActive,
	}
	if agent.MaxBidAmount != nil {
		s := agent.MaxBidAmount.String()
		row.MaxBidAmount = &s
	}
	if agent.IncrementAmount != nil {
		s := agent.IncrementAmount.String()
		row.IncrementAmount = &s
	}
	if len(agent.Conditions) > 0 {
		raw, err := json.Marshal(agent.Conditions)
		if err != nil {
			return storemodel.AgentModel{}, fmt.Errorf("encode conditions for agent %s: %w", agent.ID, err)
		}
		row.ConditionsJSON = datatypes.JSON(raw)
	}
	if agent.LastRunAt != nil {
		ts := agent.LastRunAt.Unix()
		row.LastRunUnix = &ts
	}
	if agent.NextRunAt != nil {
		ts := agent.NextRunAt.Unix()
		row.NextRunUnix = &ts
	}
	if !agent.CreatedAt.IsZero() {
		row.CreatedAtUnix = agent.CreatedAt.Unix()
	}
	return row, nil
}

func fromModel(row storemodel.AgentModel) (model.AgentConfig, error) {
	agent := model.AgentConfig{
		ID:              row.ID,
		AuctionID:       row.AuctionID,
		UserID:          row.UserID,
		IntervalMinutes: row.IntervalMinutes,
		IsActive:        row.IsActive,
		CreatedAt:       time.Unix(row.CreatedAtUnix, 0).UTC(),
		UpdatedAt:       time.Unix(row.UpdatedAtUnix, 0).UTC(),
	}
	if row.MaxBidAmount != nil {
		d, err := decimal.NewFromString(*row.MaxBidAmount)
		if err != nil {
			return model.AgentConfig{}, fmt.Errorf("agent %s: bad max_bid_amount %q: %w", row.ID, *row.MaxBidAmount, err)
		}
		agent.MaxBidAmount = &d
	}
	if row.IncrementAmount != nil {
		d, err := decimal.NewFromString(*row.IncrementAmount)
		if err != nil {
			return model.AgentConfig{}, fmt.Errorf("agent %s: bad increment_amount %q: %w", row.ID, *row.IncrementAmount, err)
		}
		agent.IncrementAmount = &d
	}
	if len(row.ConditionsJSON) > 0 {
		if err := json.Unmarshal(row.ConditionsJSON, &agent.Conditions); err != nil {
			return model.AgentConfig{}, fmt.Errorf("agent %s: bad conditions json: %w", row.ID, err)
		}
	}
	if row.LastRunUnix != nil {
		t := time.Unix(*row.LastRunUnix, 0).UTC()
		agent.LastRunAt = &t
	}
	if row.NextRunUnix != nil {
		t := time.Unix(*row.NextRunUnix, 0).UTC()
		agent.NextRunAt = &t
	}
	return agent, nil
}

func fromModels(rows []storemodel.AgentModel) ([]model.AgentConfig, error) {
	out := make([]model.AgentConfig, 0, len(rows))
	for _, row := range rows {
		agent, err := fromModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, agent)
	}
	return out, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
