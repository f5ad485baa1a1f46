package health

import (
	"context"
	"fmt"
	"net/http"
)

// Pinger is the subset of a database pool used by [Database]. Satisfied by
// *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Database returns a [Checker] that pings the allowance/library database.
func Database(p Pinger) Checker {
	return Checker{
		Name: "database",
		Check: func(ctx context.Context) error {
			return p.Ping(ctx)
		},
	}
}

// Endpoint returns a [Checker] that probes an HTTP dependency, such as a
// local transcription server. Any response counts as reachable.
func Endpoint(name, url string) Checker {
	return Checker{
		Name: name,
		Check: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("health: build probe: %w", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("health: probe %s: %w", name, err)
			}
			return resp.Body.Close()
		},
	}
}
