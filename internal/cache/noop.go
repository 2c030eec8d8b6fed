package cache

import (
	"context"
	"time"
)

// Noop кеш-заглушка для работы без Redis: всегда промах, записи игнорируются.
type Noop struct{}

// Get всегда возвращает промах.
func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }

// Set ничего не делает.
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }

// Invalidate ничего не делает.
func (Noop) Invalidate(context.Context, string) error { return nil }

// InvalidatePattern ничего не делает.
func (Noop) InvalidatePattern(context.Context, string) error { return nil }
