package factory

import (
	"fmt"

	"github.com/koryxa/dispatch/auth"
	"github.com/koryxa/dispatch/connectors"
	"github.com/koryxa/dispatch/connectors/clients/worldstats"
)

const (
	IDWorldStats = "worldstats"
)

var (
	errUnknownClient = "unknown connector id: %s"
)

// NewStatsClient builds the stats client registered under id.
func NewStatsClient(id, baseURL string, authClient *auth.ClientCred) (connectors.StatsClient, error) {
	switch id {
	case IDWorldStats:
		return worldstats.New(baseURL, authClient), nil
	default:
		return nil, fmt.Errorf(errUnknownClient, id)
	}
}
