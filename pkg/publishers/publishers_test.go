package publishers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
}

func TestValidatePublisherConfigRejectsMissingHTTP(t *testing.T) {
	err := validatePublisherConfig(PublisherConfig{
		ID:   "h1",
		Type: TypeHTTP,
	})
	if err == nil {
		t.Fatalf("expected validation error for missing http block")
	}
}

func TestLoadRegistryParsesQueueSinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.json")
	raw := `{"publishers":[
		{"id":"queue","type":"SQS","sqs":{"uri":" https://sqs.test/q ","region":"eu-west-1"}},
		{"id":"topic","type":"sns","sns":{"topic_arn":"arn:aws:sns:eu-west-1:1:t","region":"eu-west-1","auth":{"access_key_id":"AK","secret_access_key":"SK"}}},
		{"id":"gcp","type":"gcp_pubsub","gcp_pubsub":{"project_id":"p","topic":"t"}}
	]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	q, ok := reg.ByID("queue")
	if !ok || q.Type != TypeSQS || q.SQS.QueueURL != "https://sqs.test/q" {
		t.Fatalf("queue not sanitized: %#v", q)
	}
	topic, _ := reg.ByID("topic")
	if topic.SNS == nil || topic.SNS.Auth.AccessKeyID != "AK" {
		t.Fatalf("sns auth not parsed: %#v", topic.SNS)
	}
	if len(reg.Enabled()) != 3 {
		t.Fatalf("publishers default to enabled")
	}
}

func TestValidatePublisherConfigQueueSinks(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "s", Type: TypeSNS},
		{ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "arn"}},
		{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{Region: "r"}},
		{ID: "g", Type: TypeGCPPubSub, GCPPubSub: &GCPPubSubPublisherConfig{ProjectID: "p"}},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}

func TestValidatePublisherConfigRejectsUnknownType(t *testing.T) {
	err := validatePublisherConfig(PublisherConfig{ID: "k", Type: "kafka"})
	if err == nil || !strings.Contains(err.Error(), "unsupported type") {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}

func TestLoadRegistryRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.json")
	if err := os.WriteFile(path, []byte(`{"publishers":[]}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected error for empty publishers list")
	}
}
