package publishers

import (
	"os"
	"path/filepath"
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
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:us-east-1:000000000000:ranks
      region: us-east-1
      endpoint: http://localhost:4566
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "topic" {
		t.Fatalf("expected only topic enabled, got %#v", enabled)
	}
	cfg, ok := reg.ByID("topic")
	if !ok || cfg.SNS.Region != "us-east-1" || cfg.SNS.Endpoint != "http://localhost:4566" {
		t.Fatalf("inline aws settings not decoded: %#v", cfg.SNS)
	}
}

func TestLoadRegistryJSONDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.json")
	raw := `{"publishers":[{"id":"hook","type":"HTTP","http":{"url":" https://example.com/hook "}}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cfg, _ := reg.ByID("hook")
	if cfg.Type != TypeHTTP || cfg.HTTP.Method != httpDefaultMethod || cfg.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("defaults not applied: %#v %#v", cfg, cfg.HTTP)
	}
	if cfg.HTTP.URL != "https://example.com/hook" {
		t.Fatalf("url not trimmed: %q", cfg.HTTP.URL)
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := map[string]PublisherConfig{
		"missing http block": {ID: "h1", Type: TypeHTTP},
		"missing queue url":  {ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{AWSConfig: AWSConfig{Region: "eu-west-1"}}},
		"missing region":     {ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "q"}},
		"half credentials":   {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "arn", AWSConfig: AWSConfig{Region: "eu-west-1", AccessKeyID: "k"}}},
		"missing topic arn":  {ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{AWSConfig: AWSConfig{Region: "eu-west-1"}}},
		"missing project":    {ID: "g", Type: TypeGCPPubSub, GCPPubSub: &GCPPubSubPublisherConfig{Topic: "t"}},
		"missing topic":      {ID: "g", Type: TypeGCPPubSub, GCPPubSub: &GCPPubSubPublisherConfig{ProjectID: "p"}},
		"missing id":         {Type: TypeHTTP},
		"missing type":       {ID: "x"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := validatePublisherConfig(sanitizePublisherConfig(cfg)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadRegistryRejectsDuplicateIDs(t *testing.T) {
	_, err := NewConfigRegistry([]PublisherConfig{
		{ID: "a", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://a"}},
		{ID: "a", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://b"}},
	})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}
