package bootstrap

import (
	"context"
	"fmt"

	"feedback-ai/config"
	"feedback-ai/db"
	"feedback-ai/repositories"
)

func openStores(ctx context.Context, cfg config.StorageConfig) (*stores, error) {
	switch cfg.Driver {
	case config.StorageDriverSQL:
		gdb, err := db.OpenSQL(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open sql store: %w", err)
		}
		return &stores{
			feedback: repositories.NewSQLFeedbackRepository(gdb),
			aiLogs:   repositories.NewSQLAILogRepository(gdb),
			ping:     func(ctx context.Context) error { return db.PingSQL(ctx, gdb) },
			close: func(context.Context) error {
				sqlDB, err := gdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}, nil
	default:
		m, err := db.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return &stores{
			feedback: repositories.NewFeedbackRepository(m.Database),
			aiLogs:   repositories.NewAILogRepository(m.Database),
			ping:     m.Ping,
			close:    m.Close,
		}, nil
	}
}
