package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/koryxa/dispatch/core/dispatch"
	"github.com/koryxa/dispatch/core/metrics"
	"github.com/koryxa/dispatch/core/needindex"
	"github.com/koryxa/dispatch/core/quota"
)

type Config struct {
	API        APIConfig        `json:"api"`
	Dispatch   dispatch.Config  `json:"dispatch"`
	Quota      quota.Config     `json:"quota"`
	NeedIndex  needindex.Config `json:"need_index"`
	NeedSource NeedSourceConfig `json:"need_source"`
	Audit      AuditConfig      `json:"audit"`
	Metrics    metrics.Config   `json:"metrics"`
	Notify     NotifyConfig     `json:"notify"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides: K_API__ADDR becomes api.addr. The
	// provider must split on the rewritten "." keys, not the raw "__".
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.API.SetDefaults()
	cfg.Dispatch.SetDefaults()
	cfg.Quota.SetDefaults()
	cfg.NeedIndex.SetDefaults()
	cfg.Audit.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Notify.SetDefaults()
	if err := cfg.Dispatch.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Quota.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.NeedIndex.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Audit.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
