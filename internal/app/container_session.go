package app

import (
	"context"
	"fmt"

	"go.uber.org/dig"

	"driver-companion/internal/config"
	"driver-companion/internal/logx"
	"driver-companion/internal/session"
)

type storeOut struct {
	dig.Out

	Store  session.Store
	Closer resourceCloser `group:"closers"`
}

func openSessionStore(ctx context.Context, cfg *config.Config, logger logx.Logger) (storeOut, error) {
	sc := cfg.Session
	switch sc.Store {
	case config.SessionStoreMemory:
		logger.Warn("driver session kept in memory, it is lost on restart")
		return storeOut{Store: session.NewMemoryStore()}, nil
	case config.SessionStoreRedis:
		st, err := session.OpenRedis(ctx, sc.RedisAddr, sc.RedisKey, sc.RedisTTL)
		if err != nil {
			return storeOut{}, fmt.Errorf("open redis session store: %w", err)
		}
		return storeOut{Store: st, Closer: st.Close}, nil
	default:
		st, err := session.OpenSQLite(ctx, sc.DBPath)
		if err != nil {
			return storeOut{}, fmt.Errorf("open sqlite session store: %w", err)
		}
		return storeOut{Store: st, Closer: st.Close}, nil
	}
}
