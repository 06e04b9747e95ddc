package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	PageSize         int      `yaml:"page_size"`
	MenuCacheTTLSec  int      `yaml:"menu_cache_ttl_sec"`
	CacheSweepSec    int      `yaml:"cache_sweep_sec"`
	HistoryMax       int      `yaml:"history_max"`
	FetchTimeoutSec  int      `yaml:"fetch_timeout_sec"`
	DefaultLocale    string   `yaml:"default_locale"`
	DetailPanel      string   `yaml:"detail_panel"`
	OwnedListPanels  []string `yaml:"owned_list_panels"`
	PublicListPanels []string `yaml:"public_list_panels"`
}

func Defaults() Tuning {
	return Tuning{
		PageSize:         27,
		MenuCacheTTLSec:  120,
		CacheSweepSec:    30,
		HistoryMax:       10,
		FetchTimeoutSec:  5,
		DefaultLocale:    "en",
		DetailPanel:      "warp_detail",
		OwnedListPanels:  []string{"warps"},
		PublicListPanels: []string{"warps_public"},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.normalize()
	return t, nil
}

func (t *Tuning) normalize() {
	d := Defaults()
	if t.PageSize <= 0 {
		t.PageSize = d.PageSize
	}
	if t.MenuCacheTTLSec <= 0 {
		t.MenuCacheTTLSec = d.MenuCacheTTLSec
	}
	if t.CacheSweepSec <= 0 {
		t.CacheSweepSec = d.CacheSweepSec
	}
	if t.HistoryMax <= 0 {
		t.HistoryMax = d.HistoryMax
	}
	if t.FetchTimeoutSec <= 0 {
		t.FetchTimeoutSec = d.FetchTimeoutSec
	}
	if t.DefaultLocale == "" {
		t.DefaultLocale = d.DefaultLocale
	}
	if t.DetailPanel == "" {
		t.DetailPanel = d.DetailPanel
	}
	if len(t.OwnedListPanels) == 0 {
		t.OwnedListPanels = d.OwnedListPanels
	}
	if len(t.PublicListPanels) == 0 {
		t.PublicListPanels = d.PublicListPanels
	}
}
