package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts backend and ref from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if backend := GetBackend(ctx); backend != "" {
		e.Str("backend", backend)
	}

	if ref := GetRef(ctx); ref != "" {
		e.Str("ref", ref)
	}
}
