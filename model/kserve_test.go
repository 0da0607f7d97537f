package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestKServeClassifier_Classify(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		status     int
		wantPlaced float64
		wantErr    bool
	}{
		{name: "class pair", response: `{"predictions": [[0.3, 0.7]]}`, status: http.StatusOK, wantPlaced: 0.7},
		{name: "placed only", response: `{"predictions": [0.25]}`, status: http.StatusOK, wantPlaced: 0.25},
		{name: "server error", response: `oops`, status: http.StatusInternalServerError, wantErr: true},
		{name: "empty predictions", response: `{"predictions": []}`, status: http.StatusOK, wantErr: true},
		{name: "three classes", response: `{"predictions": [[0.1, 0.2, 0.7]]}`, status: http.StatusOK, wantErr: true},
		{name: "negative probability", response: `{"predictions": [[-0.1, 1.1]]}`, status: http.StatusOK, wantErr: true},
		{name: "label output", response: `{"predictions": ["placed"]}`, status: http.StatusOK, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				Instances [][]float64 `json:"instances"`
			}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/v1/models/placement:predict" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
					t.Errorf("Authorization = %q", auth)
				}
				if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
					t.Errorf("decode request: %v", err)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			c, err := Build(map[string]any{
				"type":       "kserve",
				"endpoint":   srv.URL + "/",
				"model_name": "placement",
				"n_features": 2.0,
				"token":      "secret",
				"timeout":    "2s",
			})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if c.Name() != "kserve:placement" {
				t.Errorf("Name() = %s", c.Name())
			}

			cls, err := c.Classify(context.Background(), []float64{0.5, -1})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", cls)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if cls.ProbPlaced != tt.wantPlaced {
				t.Errorf("ProbPlaced = %v, want %v", cls.ProbPlaced, tt.wantPlaced)
			}
			if len(got.Instances) != 1 || len(got.Instances[0]) != 2 || got.Instances[0][1] != -1 {
				t.Errorf("instances = %v", got.Instances)
			}
		})
	}
}

func TestKServeClassifier_WidthMismatch(t *testing.T) {
	c := NewKServeClassifier("http://127.0.0.1:0", "placement", 10, 0)
	if _, err := c.Classify(context.Background(), []float64{1, 2}); err == nil {
		t.Fatal("expected width error")
	}
}
