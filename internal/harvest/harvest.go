// Package harvest runs configured Bitbucket queries and publishes payloads
// that changed since they were last published.
package harvest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/samvad-hq/bitbucket-harvester/internal/logger"
	"github.com/samvad-hq/bitbucket-harvester/internal/storage"
	"github.com/samvad-hq/bitbucket-harvester/pkg/bitbucket"
	"github.com/samvad-hq/bitbucket-harvester/pkg/publishers"
	"github.com/samvad-hq/bitbucket-harvester/pkg/queries"
)

// Service coordinates one harvest pass across queries.
type Service struct {
	runner    QueryRunner
	publisher EventPublisher
	store     storage.Store
	log       logger.Logger
}

// NewService wires a harvest service. A nil store publishes every payload.
func NewService(runner QueryRunner, pub EventPublisher, log logger.Logger, store storage.Store) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if store == nil {
		store, _ = storage.NewStore("none", "", storage.Options{})
	}
	return &Service{
		runner:    runner,
		publisher: pub,
		store:     store,
		log:       log,
	}
}

// Result summarizes a harvest pass.
type Result struct {
	Queries   int
	Published int
	Unchanged int
	Failed    int
}

// Run executes every query once, in order. Failures are logged and joined
// into the returned error; they never stop the pass.
func (s *Service) Run(ctx context.Context, qs []queries.Query) (Result, error) {
	if s == nil || s.runner == nil {
		return Result{}, fmt.Errorf("harvest service is not initialized")
	}
	if len(qs) == 0 {
		return Result{}, fmt.Errorf("no queries configured for harvesting")
	}

	res := Result{Queries: len(qs)}
	var errs []error
	for _, q := range qs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		published, err := s.runQuery(ctx, q)
		switch {
		case err != nil:
			res.Failed++
			errs = append(errs, err)
			s.logFailure(q, err)
		case published:
			res.Published++
		default:
			res.Unchanged++
		}
	}
	return res, errors.Join(errs...)
}

func (s *Service) runQuery(ctx context.Context, q queries.Query) (bool, error) {
	payload, err := s.runner.Run(ctx, q)
	if err != nil {
		return false, fmt.Errorf("query %s: %w", q.ID, err)
	}

	digest := Digest(payload.Body)
	changed, err := s.store.Changed(q.ID, digest)
	if err != nil {
		return false, fmt.Errorf("query %s: check store: %w", q.ID, err)
	}
	if !changed {
		s.log.DebugObj("query payload unchanged", "query_result", map[string]any{
			"query_id": q.ID,
			"digest":   digest,
		})
		return false, nil
	}

	if s.publisher != nil {
		evt := publishers.NewEvent(q.ID, q.Endpoint, digest, payload.Body)
		delivered, err := s.publisher.Publish(ctx, evt)
		if err != nil && delivered == 0 {
			return false, fmt.Errorf("query %s: publish: %w", q.ID, err)
		}
		if err != nil {
			s.log.WarnObj("event partially published", "publish_error", map[string]any{
				"query_id":  q.ID,
				"delivered": delivered,
				"error":     err.Error(),
			})
		}
	}

	if err := s.store.Record(q.ID, digest); err != nil {
		return true, fmt.Errorf("query %s: record digest: %w", q.ID, err)
	}

	s.log.InfoObj("query payload published", "query_result", map[string]any{
		"query_id": q.ID,
		"endpoint": q.Endpoint,
		"bytes":    len(payload.Body),
	})
	return true, nil
}

func (s *Service) logFailure(q queries.Query, err error) {
	fields := map[string]any{
		"query_id": q.ID,
		"endpoint": q.Endpoint,
		"error":    err.Error(),
	}

	var statusErr *bitbucket.StatusError
	var transportErr *bitbucket.TransportError
	switch {
	case errors.As(err, &statusErr):
		fields["status"] = statusErr.StatusCode
		s.log.WarnObj("query returned non-200 status", "query_error", fields)
	case errors.As(err, &transportErr):
		s.log.ErrorObj("query transport failure", "query_error", fields)
	default:
		s.log.ErrorObj("query failed", "query_error", fields)
	}
}

// Digest returns the hex sha256 of a payload body.
func Digest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
