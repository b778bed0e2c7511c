package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Supported publisher types.
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypeHTTP   = "http"
	TypePubSub = "pubsub"
	TypeKafka  = "kafka"
	TypeAMQP   = "amqp"
	TypeES     = "elasticsearch"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
	kafkaDefaultBatchMs       = 200
	amqpDefaultExchangeType   = "topic"
	amqpDefaultRoutingKey     = "articles.collected"
)

// configFile represents the structure of the publishers configuration file.
type configFile struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig represents a single publisher entry declared in config files.
type PublisherConfig struct {
	ID      string                 `json:"id" yaml:"id"`
	Type    string                 `json:"type" yaml:"type"`
	Enabled *bool                  `json:"enabled" yaml:"enabled"`
	SQS     *SQSPublisherConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSPublisherConfig    `json:"sns" yaml:"sns"`
	HTTP    *HTTPPublisherConfig   `json:"http" yaml:"http"`
	PubSub  *PubSubPublisherConfig `json:"pubsub" yaml:"pubsub"`
	Kafka   *KafkaPublisherConfig  `json:"kafka" yaml:"kafka"`
	AMQP    *AMQPPublisherConfig   `json:"amqp" yaml:"amqp"`
	ES      *ESPublisherConfig     `json:"elasticsearch" yaml:"elasticsearch"`
}

// AWSCredentials optionally pins static credentials instead of the default chain.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// SQSPublisherConfig holds AWS SQS specific settings.
type SQSPublisherConfig struct {
	QueueURL    string          `json:"uri" yaml:"uri"`
	Region      string          `json:"region" yaml:"region"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// SNSPublisherConfig holds AWS SNS specific settings.
type SNSPublisherConfig struct {
	TopicARN    string          `json:"topic_arn" yaml:"topic_arn"`
	Region      string          `json:"region" yaml:"region"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// HTTPPublisherConfig holds generic HTTP sink settings.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// PubSubPublisherConfig holds GCP Pub/Sub settings.
type PubSubPublisherConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// KafkaPublisherConfig holds Kafka producer settings.
type KafkaPublisherConfig struct {
	Brokers        []string `json:"brokers" yaml:"brokers"`
	Topic          string   `json:"topic" yaml:"topic"`
	BatchTimeoutMs int      `json:"batch_timeout_ms" yaml:"batch_timeout_ms"`
}

// AMQPPublisherConfig holds RabbitMQ exchange settings.
type AMQPPublisherConfig struct {
	URL          string `json:"url" yaml:"url"`
	Exchange     string `json:"exchange" yaml:"exchange"`
	ExchangeType string `json:"exchange_type" yaml:"exchange_type"`
	RoutingKey   string `json:"routing_key" yaml:"routing_key"`
}

// ESPublisherConfig holds Elasticsearch index settings. Articles are indexed
// by article id so republishing overwrites the document.
type ESPublisherConfig struct {
	Addresses []string `json:"addresses" yaml:"addresses"`
	Index     string   `json:"index" yaml:"index"`
	Username  string   `json:"username" yaml:"username"`
	Password  string   `json:"password" yaml:"password"`
	APIKey    string   `json:"api_key" yaml:"api_key"`
}

// ConfigRegistry materializes publisher definitions loaded from config files.
type ConfigRegistry struct {
	publishers []PublisherConfig
}

// LoadRegistry loads the publisher registry from a YAML/JSON file.
// An empty path yields an empty registry.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return &ConfigRegistry{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	fileReg, err := parsePublisherRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	reg := &ConfigRegistry{publishers: make([]PublisherConfig, 0, len(fileReg.Publishers))}
	ids := make(map[string]struct{}, len(fileReg.Publishers))
	for i := range fileReg.Publishers {
		cfg := sanitizePublisherConfig(fileReg.Publishers[i])
		if err := validatePublisherConfig(cfg); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, exists := ids[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		ids[cfg.ID] = struct{}{}
		reg.publishers = append(reg.publishers, cfg)
	}

	return reg, nil
}

// parsePublisherRegistry decodes the publishers file by extension, trying every
// known format when the extension is missing.
func parsePublisherRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		exts []string
		fn   func([]byte, any) error
	}{
		{exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
		{exts: []string{".json"}, fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && !contains(d.exts, ext) {
			continue
		}
		var reg configFile
		if err := d.fn(data, &reg); err != nil {
			errs = append(errs, err)
			continue
		}
		return reg, nil
	}

	if len(errs) == 0 {
		return configFile{}, fmt.Errorf("publishers file extension %q not supported (expected YAML or JSON)", ext)
	}
	return configFile{}, fmt.Errorf("decode publishers file: %w", errors.Join(errs...))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// sanitizePublisherConfig trims and normalizes the publisher config fields.
func sanitizePublisherConfig(cfg PublisherConfig) PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.Region = strings.TrimSpace(c.Region)
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.Region = strings.TrimSpace(c.Region)
		cfg.SNS = &c
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		c.Headers = sanitizeHeaders(c.Headers)
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}
	if cfg.PubSub != nil {
		c := *cfg.PubSub
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		cfg.PubSub = &c
	}
	if cfg.Kafka != nil {
		c := *cfg.Kafka
		brokers := make([]string, 0, len(c.Brokers))
		for _, b := range c.Brokers {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		c.Brokers = brokers
		c.Topic = strings.TrimSpace(c.Topic)
		if c.BatchTimeoutMs <= 0 {
			c.BatchTimeoutMs = kafkaDefaultBatchMs
		}
		cfg.Kafka = &c
	}
	if cfg.AMQP != nil {
		c := *cfg.AMQP
		c.URL = strings.TrimSpace(c.URL)
		c.Exchange = strings.TrimSpace(c.Exchange)
		c.ExchangeType = strings.ToLower(strings.TrimSpace(c.ExchangeType))
		if c.ExchangeType == "" {
			c.ExchangeType = amqpDefaultExchangeType
		}
		c.RoutingKey = strings.TrimSpace(c.RoutingKey)
		if c.RoutingKey == "" {
			c.RoutingKey = amqpDefaultRoutingKey
		}
		cfg.AMQP = &c
	}
	if cfg.ES != nil {
		c := *cfg.ES
		addrs := make([]string, 0, len(c.Addresses))
		for _, a := range c.Addresses {
			if a = strings.TrimSpace(a); a != "" {
				addrs = append(addrs, a)
			}
		}
		c.Addresses = addrs
		c.Index = strings.TrimSpace(c.Index)
		cfg.ES = &c
	}

	return cfg
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validatePublisherConfig checks that required fields are present.
func validatePublisherConfig(cfg PublisherConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	case TypeSQS:
		if cfg.SQS == nil || cfg.SQS.QueueURL == "" || cfg.SQS.Region == "" {
			return fmt.Errorf("sqs.uri and sqs.region are required for publisher %q", cfg.ID)
		}
	case TypeSNS:
		if cfg.SNS == nil || cfg.SNS.TopicARN == "" || cfg.SNS.Region == "" {
			return fmt.Errorf("sns.topic_arn and sns.region are required for publisher %q", cfg.ID)
		}
	case TypeHTTP:
		if cfg.HTTP == nil || cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for publisher %q", cfg.ID)
		}
	case TypePubSub:
		if cfg.PubSub == nil || cfg.PubSub.ProjectID == "" || cfg.PubSub.Topic == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic are required for publisher %q", cfg.ID)
		}
	case TypeKafka:
		if cfg.Kafka == nil || len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
			return fmt.Errorf("kafka.brokers and kafka.topic are required for publisher %q", cfg.ID)
		}
	case TypeAMQP:
		if cfg.AMQP == nil || cfg.AMQP.URL == "" || cfg.AMQP.Exchange == "" {
			return fmt.Errorf("amqp.url and amqp.exchange are required for publisher %q", cfg.ID)
		}
	case TypeES:
		if cfg.ES == nil || len(cfg.ES.Addresses) == 0 || cfg.ES.Index == "" {
			return fmt.Errorf("elasticsearch.addresses and elasticsearch.index are required for publisher %q", cfg.ID)
		}
	}
	return nil
}

// All returns all configured publishers.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}
	out := make([]PublisherConfig, len(r.publishers))
	copy(out, r.publishers)
	return out
}

// Enabled returns publishers that are enabled.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	var out []PublisherConfig
	for _, cfg := range r.All() {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg PublisherConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
