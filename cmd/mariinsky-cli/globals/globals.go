package globals

import (
	"context"

	"mariinsky-counter/internal/config"
	"mariinsky-counter/internal/store"
)

type key struct{}

type Value struct {
	Config config.Config
	Period config.Period
	Store  store.Store
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}
