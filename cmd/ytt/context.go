package main

import (
	"context"
	"sync"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/resolvers"
	"github.com/anatolykoptev/go_transcript/internal/session"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

type commandContext struct {
	load session.Loader

	initOnce sync.Once
	manager  *session.Manager
}

// newCommandContext builds the shared CLI state. A nil loader configures
// the engine from the environment and resolves with the default chain.
func newCommandContext(load session.Loader) *commandContext {
	return &commandContext{load: load}
}

func (c *commandContext) ensureManager() *session.Manager {
	c.initOnce.Do(func() {
		if c.load == nil {
			engine.Init(engine.LoadConfig())
			c.load = session.DefaultLoader(resolvers.NewChain())
		}
		c.manager = session.NewManager(c.load)
	})
	return c.manager
}

func (c *commandContext) session(ctx context.Context, video string) (*session.Session, error) {
	return toolutil.Session(ctx, c.ensureManager(), video, false)
}
