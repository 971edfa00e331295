package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// Supported sink types.
	TypeQueue = "queue"
	TypeHTTP  = "http"

	// Supported queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

type configFile struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig is one audit sink declared in the publishers file.
type PublisherConfig struct {
	ID      string                `json:"id" yaml:"id"`
	Type    string                `json:"type" yaml:"type"`
	Enabled *bool                 `json:"enabled" yaml:"enabled"`
	Queue   *QueuePublisherConfig `json:"queue" yaml:"queue"`
	HTTP    *HTTPPublisherConfig  `json:"http" yaml:"http"`
}

// QueuePublisherConfig selects a cloud queue provider.
type QueuePublisherConfig struct {
	Provider string                 `json:"provider" yaml:"provider"`
	AWS      *AWSSQSPublisherConfig `json:"aws" yaml:"aws"`
	SNS      *AWSSNSPublisherConfig `json:"sns" yaml:"sns"`
	GCP      *GCPQueueConfig        `json:"gcp" yaml:"gcp"`
}

type AWSSQSPublisherConfig struct {
	QueueURL        string `json:"uri" yaml:"uri"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

type AWSSNSPublisherConfig struct {
	TopicARN        string `json:"topic_arn" yaml:"topic_arn"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

type GCPQueueConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPPublisherConfig posts events to a webhook.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// ConfigRegistry holds the sink definitions loaded from disk.
type ConfigRegistry struct {
	mu         sync.RWMutex
	publishers []PublisherConfig
	idx        map[string]PublisherConfig
}

// LoadRegistry loads sink definitions from a YAML or JSON file.
// ${VAR} references are expanded from the environment before decoding.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	file, err := decodeConfigFile([]byte(os.ExpandEnv(string(raw))), filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	reg := &ConfigRegistry{
		publishers: make([]PublisherConfig, 0, len(file.Publishers)),
		idx:        make(map[string]PublisherConfig, len(file.Publishers)),
	}
	for i, entry := range file.Publishers {
		cfg := entry.normalized()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := reg.idx[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		reg.publishers = append(reg.publishers, cfg)
		reg.idx[cfg.ID] = cfg
	}
	return reg, nil
}

// decodeConfigFile picks a decoder by extension; files without one are tried as YAML then JSON.
func decodeConfigFile(data []byte, ext string) (configFile, error) {
	decoders := map[string]func([]byte, any) error{
		".yaml": yaml.Unmarshal,
		".yml":  yaml.Unmarshal,
		".json": json.Unmarshal,
	}

	ext = strings.ToLower(strings.TrimSpace(ext))
	if fn, ok := decoders[ext]; ok {
		var f configFile
		if err := fn(data, &f); err != nil {
			return configFile{}, fmt.Errorf("decode %s publishers: %w", strings.TrimPrefix(ext, "."), err)
		}
		return f, nil
	}

	for _, fn := range []func([]byte, any) error{yaml.Unmarshal, json.Unmarshal} {
		var f configFile
		if err := fn(data, &f); err == nil {
			return f, nil
		}
	}
	return configFile{}, errors.New("publishers file format not recognized (expected YAML or JSON)")
}

// normalized trims fields and applies defaults.
func (cfg PublisherConfig) normalized() PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.Enabled == nil {
		on := true
		cfg.Enabled = &on
	}

	if q := cfg.Queue; q != nil {
		qc := *q
		qc.Provider = strings.ToLower(strings.TrimSpace(qc.Provider))
		if qc.AWS != nil {
			a := *qc.AWS
			trimAll(&a.QueueURL, &a.Region, &a.AccessKeyID, &a.SecretAccessKey)
			qc.AWS = &a
		}
		if qc.SNS != nil {
			s := *qc.SNS
			trimAll(&s.TopicARN, &s.Region, &s.AccessKeyID, &s.SecretAccessKey)
			qc.SNS = &s
		}
		if qc.GCP != nil {
			g := *qc.GCP
			trimAll(&g.ProjectID, &g.Topic, &g.CredentialsFile)
			qc.GCP = &g
		}
		cfg.Queue = &qc
	}

	if h := cfg.HTTP; h != nil {
		hc := *h
		hc.URL = strings.TrimSpace(hc.URL)
		hc.Method = strings.ToUpper(strings.TrimSpace(hc.Method))
		if hc.Method == "" {
			hc.Method = httpDefaultMethod
		}
		hc.Headers = sanitizeHeaders(hc.Headers)
		if hc.TimeoutSeconds <= 0 {
			hc.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &hc
	}
	return cfg
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key, val := strings.TrimSpace(k), strings.TrimSpace(v)
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

// validate checks that required fields are present for the sink type.
func (cfg PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}

	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	case TypeHTTP:
		if cfg.HTTP == nil || cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for publisher %q", cfg.ID)
		}
		return nil
	case TypeQueue:
		if cfg.Queue == nil {
			return fmt.Errorf("queue config required for publisher %q", cfg.ID)
		}
	default:
		return fmt.Errorf("type %q not supported for publisher %q", cfg.Type, cfg.ID)
	}

	switch q := cfg.Queue; q.Provider {
	case QueueProviderAWSSQS:
		if q.AWS == nil {
			return fmt.Errorf("aws config required for publisher %q", cfg.ID)
		}
		return requireFields(cfg.ID, "aws", map[string]string{
			"uri":               q.AWS.QueueURL,
			"region":            q.AWS.Region,
			"access_key_id":     q.AWS.AccessKeyID,
			"secret_access_key": q.AWS.SecretAccessKey,
		})
	case QueueProviderAWSSNS:
		if q.SNS == nil {
			return fmt.Errorf("sns config required for publisher %q", cfg.ID)
		}
		return requireFields(cfg.ID, "sns", map[string]string{
			"topic_arn":         q.SNS.TopicARN,
			"region":            q.SNS.Region,
			"access_key_id":     q.SNS.AccessKeyID,
			"secret_access_key": q.SNS.SecretAccessKey,
		})
	case QueueProviderGCP:
		if q.GCP == nil {
			return fmt.Errorf("gcp config required for publisher %q", cfg.ID)
		}
		return requireFields(cfg.ID, "gcp", map[string]string{
			"project_id": q.GCP.ProjectID,
			"topic":      q.GCP.Topic,
		})
	default:
		return fmt.Errorf("queue provider %q not supported for publisher %q", q.Provider, cfg.ID)
	}
}

// requireFields reports the first empty field in stable key order.
func requireFields(id, section string, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if fields[k] == "" {
			return fmt.Errorf("%s.%s is required for publisher %q", section, k, id)
		}
	}
	return nil
}

// ByID returns the sink config by id.
func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[strings.TrimSpace(id)]
	return cfg, ok
}

// All returns every configured sink in file order.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PublisherConfig, len(r.publishers))
	copy(out, r.publishers)
	return out
}

// Enabled returns the sinks that are switched on.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	var out []PublisherConfig
	for _, cfg := range r.All() {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns the enabled flag defaulting to true.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}
