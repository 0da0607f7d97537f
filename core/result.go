package core

// PredictionResult 是 /predict 的响应体。
type PredictionResult struct {
	Placed            bool               `json:"placed"`
	Confidence        float64            `json:"confidence"`
	Probability       Probability        `json:"probability"`
	Tips              []string           `json:"tips"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
}

// Probability 两类概率（百分比，各自保留两位小数）
type Probability struct {
	Placed    float64 `json:"placed"`
	NotPlaced float64 `json:"not_placed"`
}
