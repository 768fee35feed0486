package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	ScenarioKey  ctxKey = "scenario"
)

// WithScenario tags ctx so timing lines emitted while solving a what-if
// scenario can be told apart from baseline runs.
func WithScenario(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ScenarioKey, name)
}

// Time logs the duration of op when the returned func is deferred with the
// operation's error.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)
	scenario, _ := ctx.Value(ScenarioKey).(string)
	if scenario == "" {
		scenario = "baseline"
	}

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s scenario=%q op=%s dur=%dms err=%v", reqID, scenario, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s scenario=%q op=%s dur=%dms", reqID, scenario, name, dur.Milliseconds())
	}
}
