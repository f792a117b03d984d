package harvest

import (
	"context"

	"github.com/samvad-hq/bitbucket-harvester/pkg/bitbucket"
	"github.com/samvad-hq/bitbucket-harvester/pkg/publishers"
	"github.com/samvad-hq/bitbucket-harvester/pkg/queries"
)

// QueryRunner performs the single Bitbucket request a query describes.
type QueryRunner interface {
	Run(ctx context.Context, q queries.Query) (bitbucket.Payload, error)
}

// EventPublisher publishes harvested payloads downstream and reports how many
// sinks accepted the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
