// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package keyring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// accountModel maps the `accounts` table for Bun queries.
type accountModel struct {
	bun.BaseModel `bun:"table:accounts"`

	Address       string    `bun:"address,pk"`
	Kind          string    `bun:"kind,notnull"`
	Name          string    `bun:"name,notnull"`
	AccountOffset uint32    `bun:"account_offset,notnull"`
	AddressOffset uint32    `bun:"address_offset,notnull"`
	GenesisHash   string    `bun:"genesis_hash,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

func (m *accountModel) account() Account {
	return Account{
		Address:       m.Address,
		Kind:          m.Kind,
		Name:          m.Name,
		AccountOffset: m.AccountOffset,
		AddressOffset: m.AddressOffset,
		GenesisHash:   m.GenesisHash,
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

// SQLStore keeps accounts in a SQLite database.
type SQLStore struct {
	db  *bun.DB
	log *zap.Logger
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

// OpenSQLite opens (and creates when missing) the keyring database at dsn.
func OpenSQLite(ctx context.Context, dsn string, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring database: %w", err)
	}
	// in-memory databases are per connection
	if dsn == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	if _, err := db.NewCreateTable().Model((*accountModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create accounts table: %w", err)
	}

	logger.Debug("keyring opened", zap.String("dsn", dsn))
	return &SQLStore{db: db, log: logger, now: time.Now}, nil
}

func (s *SQLStore) AddHardware(ctx context.Context, address, kind string, meta Meta) (*Account, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	acc := newAccount(address, kind, meta, s.now())
	model := &accountModel{
		Address:       acc.Address,
		Kind:          acc.Kind,
		Name:          acc.Name,
		AccountOffset: acc.AccountOffset,
		AddressOffset: acc.AddressOffset,
		GenesisHash:   acc.GenesisHash,
		CreatedAt:     acc.CreatedAt,
	}

	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (address) DO UPDATE").
		Set("kind = EXCLUDED.kind").
		Set("name = EXCLUDED.name").
		Set("account_offset = EXCLUDED.account_offset").
		Set("address_offset = EXCLUDED.address_offset").
		Set("genesis_hash = EXCLUDED.genesis_hash").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to store account %s: %w", address, err)
	}

	s.log.Debug("account stored", zap.String("address", address), zap.String("kind", kind))
	return acc, nil
}

func (s *SQLStore) Get(ctx context.Context, address string) (*Account, error) {
	var m accountModel
	err := s.db.NewSelect().Model(&m).Where("address = ?", address).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", address, err)
	}
	acc := m.account()
	return &acc, nil
}

// List returns accounts ordered by creation time, then address.
func (s *SQLStore) List(ctx context.Context) ([]Account, error) {
	var models []accountModel
	err := s.db.NewSelect().Model(&models).Order("created_at ASC", "address ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	out := make([]Account, 0, len(models))
	for i := range models {
		out = append(out, models[i].account())
	}
	return out, nil
}

func (s *SQLStore) Remove(ctx context.Context, address string) error {
	res, err := s.db.NewDelete().Model((*accountModel)(nil)).Where("address = ?", address).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove account %s: %w", address, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
