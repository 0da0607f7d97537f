package cli

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	v := newViper()
	if err := readConfig(v, ""); err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr != ":5001" {
		t.Errorf("addr = %q, want :5001", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 15*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.Server.ShutdownTimeout)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"*"}) {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Artifacts.Source != "file" || cfg.Artifacts.Dir != "models" || cfg.Artifacts.ModelFile != "placement_model.json" {
		t.Errorf("artifacts = %+v", cfg.Artifacts)
	}
	if cfg.Cache.Backend != "none" || cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Feast.Enabled || cfg.Feast.Port != 6565 || cfg.Feast.FeatureView != "student_profile" {
		t.Errorf("feast = %+v", cfg.Feast)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	t.Setenv("PLACEKIT_CACHE_TTL", "1m")
	t.Setenv("PLACEKIT_FEAST_ENABLED", "true")

	v := newViper()
	if err := readConfig(v, "testdata/placekit.yaml"); err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q, want :9000", cfg.Server.Addr)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"http://localhost:5173"}) {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("cache backend = %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL != time.Minute {
		t.Errorf("cache ttl = %v, env should win over file", cfg.Cache.TTL)
	}
	if !cfg.Feast.Enabled {
		t.Error("feast.enabled from env ignored")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown source", map[string]string{"PLACEKIT_ARTIFACTS_SOURCE": "s3"}, "artifacts.source"},
		{"http without url", map[string]string{"PLACEKIT_ARTIFACTS_SOURCE": "http"}, "base-url"},
		{"unknown cache", map[string]string{"PLACEKIT_CACHE_BACKEND": "etcd"}, "cache.backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, val := range tt.env {
				t.Setenv(k, val)
			}
			_, err := loadConfig(newViper())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want contains %q", err, tt.want)
			}
		})
	}
}

func TestPredictCommand(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"predict", "--artifacts-dir", "../../models", "--file", "testdata/strong.json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("predict: %v", err)
	}

	var result struct {
		Placed bool     `json:"placed"`
		Tips   []string `json:"tips"`
	}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if !result.Placed {
		t.Error("strong profile not placed")
	}
	if len(result.Tips) != 1 {
		t.Errorf("tips = %q", result.Tips)
	}
}

func TestPredictCommand_Stdin(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(`{"CGPA": "high"}`))
	root.SetArgs([]string{"predict", "--artifacts-dir", "../../models"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "CGPA") {
		t.Fatalf("err = %v, want invalid CGPA", err)
	}
}

func TestArtifactsCommand(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"artifacts", "--artifacts-dir", "../../models"})
	if err := root.Execute(); err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	for _, want := range []string{"random_forest", "accuracy:    87.50%", "CSE", "Gender=[Female, Male]"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}

	root = NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"artifacts", "--artifacts-dir", "testdata/none"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for missing artifacts")
	}
}

func TestReadProfile_RejectsNonObject(t *testing.T) {
	if _, err := readProfile(strings.NewReader(`[1]`), "-"); err == nil {
		t.Fatal("expected error")
	}
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "placekit version: ") {
		t.Errorf("output = %q", out.String())
	}
}
