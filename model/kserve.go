package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rushteam/placekit/core"
)

func init() {
	Register("kserve", buildKServe)
}

// KServeClassifier 通过 KServe V1 协议调用远程部署的分类模型。
//
//   - Predict: POST {endpoint}/v1/models/{model_name}:predict
//   - 请求：{"instances": [[x0, x1, ..., x9]]}（已标准化的向量）
//   - 响应：{"predictions": [[p_not_placed, p_placed]]}，
//     或只返回 placed 概率：{"predictions": [p_placed]}
//
// 适用于 sklearn server 开启 predict_proba 的部署方式。
type KServeClassifier struct {
	// Endpoint 服务根地址，如 "http://localhost:8000"
	Endpoint string
	// ModelName 模型名称
	ModelName string
	// Token Bearer 认证（可选）
	Token string
	// Timeout 请求超时
	Timeout time.Duration

	features   int
	httpClient *http.Client
}

// NewKServeClassifier 创建 KServe 分类器
func NewKServeClassifier(endpoint, modelName string, numFeatures int, timeout time.Duration) *KServeClassifier {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &KServeClassifier{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		ModelName:  modelName,
		Timeout:    timeout,
		features:   numFeatures,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func buildKServe(spec map[string]any) (core.Classifier, error) {
	var raw struct {
		Endpoint    string        `json:"endpoint"`
		ModelName   string        `json:"model_name"`
		NumFeatures int           `json:"n_features"`
		Token       string        `json:"token"`
		Timeout     time.Duration `json:"timeout"`
	}
	if err := decodeSpec(spec, &raw); err != nil {
		return nil, fmt.Errorf("kserve: %w", err)
	}
	if raw.Endpoint == "" || raw.ModelName == "" {
		return nil, fmt.Errorf("kserve: endpoint and model_name are required")
	}
	if raw.NumFeatures <= 0 {
		return nil, fmt.Errorf("kserve: n_features must be positive")
	}
	c := NewKServeClassifier(raw.Endpoint, raw.ModelName, raw.NumFeatures, raw.Timeout)
	c.Token = raw.Token
	return c, nil
}

func (c *KServeClassifier) Name() string { return "kserve:" + c.ModelName }

func (c *KServeClassifier) NumFeatures() int { return c.features }

// Classify 调用远程模型服务
func (c *KServeClassifier) Classify(ctx context.Context, normalized []float64) (core.Classification, error) {
	if len(normalized) != c.features {
		return core.Classification{}, fmt.Errorf("kserve: expected %d features, got %d", c.features, len(normalized))
	}

	jsonData, err := json.Marshal(map[string]any{"instances": [][]float64{normalized}})
	if err != nil {
		return core.Classification{}, fmt.Errorf("kserve marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s:predict", c.Endpoint, c.ModelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return core.Classification{}, fmt.Errorf("kserve create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.Classification{}, fmt.Errorf("kserve request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Classification{}, fmt.Errorf("kserve read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return core.Classification{}, fmt.Errorf("kserve error: status=%d, body=%s", resp.StatusCode, string(body))
	}
	return parseKServePrediction(body)
}

func parseKServePrediction(body []byte) (core.Classification, error) {
	var out struct {
		Predictions []json.RawMessage `json:"predictions"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return core.Classification{}, fmt.Errorf("kserve parse response: %w", err)
	}
	if len(out.Predictions) != 1 {
		return core.Classification{}, fmt.Errorf("kserve: expected 1 prediction, got %d", len(out.Predictions))
	}

	var pair []float64
	if err := json.Unmarshal(out.Predictions[0], &pair); err == nil {
		if len(pair) != 2 {
			return core.Classification{}, fmt.Errorf("kserve: expected 2 class probabilities, got %d", len(pair))
		}
		return validProbabilities(pair[0], pair[1])
	}
	var placed float64
	if err := json.Unmarshal(out.Predictions[0], &placed); err != nil {
		return core.Classification{}, fmt.Errorf("kserve: unsupported prediction %s", string(out.Predictions[0]))
	}
	return validProbabilities(1-placed, placed)
}

func validProbabilities(p0, p1 float64) (core.Classification, error) {
	if p0 < 0 || p1 < 0 || p0+p1 <= 0 {
		return core.Classification{}, fmt.Errorf("kserve: invalid probabilities [%v, %v]", p0, p1)
	}
	return core.NewClassification(p0, p1), nil
}

var _ core.Classifier = (*KServeClassifier)(nil)
