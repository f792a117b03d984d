package app

import (
	"fmt"

	"github.com/samvad-hq/bitbucket-harvester/internal/config"
	"github.com/samvad-hq/bitbucket-harvester/internal/credential"
	"github.com/samvad-hq/bitbucket-harvester/internal/logger"
	"github.com/samvad-hq/bitbucket-harvester/pkg/bitbucket"
	"github.com/samvad-hq/bitbucket-harvester/pkg/httpclient"
)

// NewClient builds the Bitbucket client described by cfg.
func NewClient(cfg *config.Config, log logger.Logger) (*bitbucket.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	username, password, err := credential.Resolve(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials: %w", err)
	}

	client, err := bitbucket.New(username, password,
		bitbucket.WithTransport(httpclient.NewRestyClient(cfg.BitbucketTimeout)),
		bitbucket.WithLogger(log),
		bitbucket.WithAPIURL(cfg.BitbucketAPIURL),
		bitbucket.WithPageLen(cfg.BitbucketPageLen),
		bitbucket.WithHTTPArgs(bitbucket.HTTPArgs{
			Timeout:     cfg.BitbucketTimeout,
			HTTPVersion: cfg.BitbucketHTTPVersion,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("init bitbucket client: %w", err)
	}

	log.InfoObj("bitbucket client initialized", "bitbucket_client", map[string]any{
		"username":     client.Username(),
		"api_url":      client.APIURL(),
		"page_len":     client.PageLen(),
		"timeout":      cfg.BitbucketTimeout.String(),
		"http_version": cfg.BitbucketHTTPVersion,
	})
	return client, nil
}
