package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_OverridesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	body := "page_size: 9\nhistory_max: 3\ndetail_panel: detail\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tun, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tun.PageSize != 9 {
		t.Fatalf("page_size: got %d want 9", tun.PageSize)
	}
	if tun.HistoryMax != 3 {
		t.Fatalf("history_max: got %d want 3", tun.HistoryMax)
	}
	if tun.DetailPanel != "detail" {
		t.Fatalf("detail_panel: got %q", tun.DetailPanel)
	}
	// Untouched knobs keep their defaults.
	if tun.MenuCacheTTLSec != Defaults().MenuCacheTTLSec {
		t.Fatalf("ttl default: got %d", tun.MenuCacheTTLSec)
	}
	if tun.DefaultLocale != "en" {
		t.Fatalf("locale default: got %q", tun.DefaultLocale)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected error")
	}
}
