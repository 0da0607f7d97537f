package service

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rushteam/placekit/advice"
	"github.com/rushteam/placekit/artifact"
	"github.com/rushteam/placekit/core"
	"github.com/rushteam/placekit/feature"
	"github.com/rushteam/placekit/model"
	"github.com/rushteam/placekit/observability"
	"github.com/rushteam/placekit/store"
)

type countingClassifier struct {
	core.Classifier
	calls int
	err   error
}

func (c *countingClassifier) Classify(ctx context.Context, x []float64) (core.Classification, error) {
	c.calls++
	if c.err != nil {
		return core.Classification{}, c.err
	}
	return c.Classifier.Classify(ctx, x)
}

func testBundle(t *testing.T, classifier core.Classifier) *artifact.Bundle {
	t.Helper()
	if classifier == nil {
		classifier = &model.LogisticRegression{Coef: []float64{0, 0, 1.5, -1.0, 1.0, 0.5, 0.3, 0.2, 0.3, 0.2}}
	}
	accuracy := 87.5
	b := &artifact.Bundle{
		Classifier: classifier,
		Scaler: &feature.Scaler{
			Mean:  []float64{0, 0, 7, 1, 50, 2, 50, 2, 0.5, 3},
			Scale: []float64{1, 1, 1, 1, 20, 1, 50, 1, 0.5, 1},
		},
		Encoder: feature.NewLabelEncoder(map[string][]string{
			core.FieldBranch: {"AIML", "CSE", "Civil", "ECE", "EEE", "ETE", "ISE", "Mechanical"},
			core.FieldGender: {"Female", "Male"},
		}),
		Metadata: &feature.ModelMetadata{
			Features: append([]string(nil), feature.FeatureColumns...),
			Accuracy: &accuracy,
			Branches: []string{"CSE", "ISE"},
			NSamples: 1000,
		},
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("test bundle invalid: %v", err)
	}
	return b
}

func newTestService(t *testing.T, opts ...Option) *PredictionService {
	return NewPredictionService(artifact.NewStore(testBundle(t, nil)), opts...)
}

func strongProfile() core.RawProfile {
	return core.RawProfile{
		"Branch":              "CSE",
		"Gender":              "Male",
		"CGPA":                8.7,
		"Backlogs":            0,
		"DSA_Score":           85,
		"Projects":            4,
		"LeetCode_Problems":   300,
		"Certifications":      3,
		"Internship":          true,
		"Communication_Score": 4,
	}
}

func TestPredict_StrongProfile(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.Predict(context.Background(), strongProfile())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if !res.Placed {
		t.Errorf("placed = false, want true (p=%v)", res.Probability)
	}
	if res.Confidence < 99 {
		t.Errorf("confidence = %v, want >= 99", res.Confidence)
	}
	want := []string{advice.DefaultRules()[8].Tip}
	if !reflect.DeepEqual(res.Tips, want) {
		t.Errorf("tips = %q, want %q", res.Tips, want)
	}
}

func TestPredict_EmptyProfileUsesDefaults(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.Predict(context.Background(), core.RawProfile{})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	// z = -0.5 with all defaults
	wantPlaced := round2(100 / (1 + math.Exp(0.5)))
	if res.Placed || res.Probability.Placed != wantPlaced {
		t.Errorf("result = %+v, want not placed with p=%v", res, wantPlaced)
	}
	if res.Confidence != res.Probability.NotPlaced {
		t.Errorf("confidence %v != not_placed %v", res.Confidence, res.Probability.NotPlaced)
	}
	if len(res.Tips) == 0 {
		t.Error("defaults should produce tips")
	}
	if !reflect.DeepEqual(res.FeatureImportance, feature.DefaultFeatureImportance()) {
		t.Errorf("feature importance = %v, want fallback table", res.FeatureImportance)
	}
}

func TestPredict_ResultInvariants(t *testing.T) {
	svc := newTestService(t)
	profiles := []core.RawProfile{
		{},
		strongProfile(),
		{"CGPA": 5.0, "Backlogs": 3},
		{"CGPA": "6.8", "DSA_Score": "45", "Internship": "false"},
		{"Branch": "Mechanical", "CGPA": 9.9, "DSA_Score": 100},
	}
	for i, p := range profiles {
		res, err := svc.Predict(context.Background(), p)
		if err != nil {
			t.Fatalf("profile %d: %v", i, err)
		}
		if sum := res.Probability.Placed + res.Probability.NotPlaced; math.Abs(sum-100) > 0.011 {
			t.Errorf("profile %d: probabilities sum to %v", i, sum)
		}
		if res.Confidence != math.Max(res.Probability.Placed, res.Probability.NotPlaced) {
			t.Errorf("profile %d: confidence %v is not the larger probability", i, res.Confidence)
		}
		if res.Placed != (res.Probability.Placed > res.Probability.NotPlaced) {
			t.Errorf("profile %d: label disagrees with probabilities", i)
		}
	}
}

func TestPredict_WeakProfileWithBacklogs(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.Predict(context.Background(), core.RawProfile{"CGPA": 5.0, "Backlogs": 3})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if res.Placed {
		t.Error("placed = true, want false")
	}
	rules := advice.DefaultRules()
	var hasCGPA, hasBacklogs bool
	for _, tip := range res.Tips {
		hasCGPA = hasCGPA || tip == rules[0].Tip
		hasBacklogs = hasBacklogs || tip == rules[6].Tip
	}
	if !hasCGPA || !hasBacklogs {
		t.Errorf("tips = %q, want cgpa cutoff and backlogs tips", res.Tips)
	}
}

func TestPredict_InvalidInput(t *testing.T) {
	svc := newTestService(t)
	tests := []struct {
		name  string
		raw   core.RawProfile
		field string
	}{
		{"non-numeric cgpa", core.RawProfile{"CGPA": "high"}, "CGPA"},
		{"fractional string for int", core.RawProfile{"Projects": "2.5"}, "Projects"},
		{"object value", core.RawProfile{"DSA_Score": map[string]any{"x": 1}}, "DSA_Score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Predict(context.Background(), tt.raw)
			if !core.IsInvalidInput(err) {
				t.Fatalf("err = %v, want INVALID_INPUT", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err.Error(), tt.field)
			}
		})
	}
}

func TestPredict_Unavailable(t *testing.T) {
	svc := NewPredictionService(artifact.Unavailable(errors.New("missing files")))
	_, err := svc.Predict(context.Background(), strongProfile())
	if !core.IsUnavailable(err) {
		t.Fatalf("err = %v, want UNAVAILABLE", err)
	}
	if got := svc.Branches(); !reflect.DeepEqual(got, feature.DefaultBranches) {
		t.Errorf("Branches() = %v, want defaults", got)
	}
	h := svc.Health()
	if h.Status != "healthy" || h.ModelLoaded || h.Accuracy != nil {
		t.Errorf("Health() = %+v", h)
	}
}

func TestPredict_InternshipTruthiness(t *testing.T) {
	svc := newTestService(t)
	predict := func(v any) core.Probability {
		t.Helper()
		res, err := svc.Predict(context.Background(), core.RawProfile{"Internship": v})
		if err != nil {
			t.Fatalf("Internship=%#v: %v", v, err)
		}
		return res.Probability
	}
	with, without := predict(true), predict(false)
	if with == without {
		t.Fatal("internship should change the probability")
	}

	tests := []struct {
		in   any
		want bool
	}{
		{"yes", true},
		{"no", true},
		{"Y", true},
		{[]any{1.0}, true},
		{1.0, true},
		{"", false},
		{[]any{}, false},
		{0.0, false},
		{"false", false},
	}
	for _, tt := range tests {
		want := without
		if tt.want {
			want = with
		}
		if got := predict(tt.in); got != want {
			t.Errorf("Internship=%#v probability = %v, want %v", tt.in, got, want)
		}
	}
}

func TestPredict_EmptyGenderMatchesUnknownGender(t *testing.T) {
	svc := newTestService(t)
	empty, err := svc.Predict(context.Background(), core.RawProfile{"Gender": ""})
	if err != nil {
		t.Fatal(err)
	}
	unknown, err := svc.Predict(context.Background(), core.RawProfile{"Gender": "X"})
	if err != nil {
		t.Fatal(err)
	}
	if empty.Probability != unknown.Probability {
		t.Errorf("empty gender %v != unknown gender %v", empty.Probability, unknown.Probability)
	}
}

func TestPredict_NullFieldsUseDefaults(t *testing.T) {
	svc := newTestService(t)
	defaults, err := svc.Predict(context.Background(), core.RawProfile{})
	if err != nil {
		t.Fatal(err)
	}
	nulls, err := svc.Predict(context.Background(), core.RawProfile{"Branch": nil, "CGPA": nil, "Internship": nil})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(defaults, nulls) {
		t.Errorf("null fields = %+v, want defaults %+v", nulls, defaults)
	}
}

func TestPredict_ClassifierFailureIsInternal(t *testing.T) {
	c := &countingClassifier{Classifier: &model.LogisticRegression{Coef: make([]float64, 10)}, err: errors.New("boom")}
	svc := NewPredictionService(artifact.NewStore(testBundle(t, c)))
	res, err := svc.Predict(context.Background(), core.RawProfile{})
	if !core.IsInternal(err) || res != nil {
		t.Fatalf("Predict() = %v, %v; want nil, INTERNAL_ERROR", res, err)
	}
}

func TestPredict_UnknownBranchEncodesLikeCSE(t *testing.T) {
	metrics := observability.NewMetrics()
	svc := newTestService(t, WithMetrics(metrics))

	cse, err := svc.Predict(context.Background(), core.RawProfile{"Branch": "CSE"})
	if err != nil {
		t.Fatal(err)
	}
	unknown, err := svc.Predict(context.Background(), core.RawProfile{"Branch": "Astrophysics"})
	if err != nil {
		t.Fatal(err)
	}
	if cse.Probability != unknown.Probability {
		t.Errorf("unknown branch probability %v != CSE %v", unknown.Probability, cse.Probability)
	}
	if reflect.DeepEqual(cse.Tips, unknown.Tips) {
		t.Error("tips should use the raw branch, not the fallback")
	}
	if n := testutil.CollectAndCount(metrics.Registry(), "placekit_category_fallbacks_total"); n != 1 {
		t.Errorf("fallback series = %d, want 1", n)
	}
}

func TestPredict_CacheSkipsClassifier(t *testing.T) {
	c := &countingClassifier{Classifier: &model.LogisticRegression{Coef: []float64{0, 0, 1, 0, 0, 0, 0, 0, 0, 0}}}
	mem := store.NewMemoryStore(time.Minute)
	defer mem.Close()
	metrics := observability.NewMetrics()
	svc := NewPredictionService(artifact.NewStore(testBundle(t, c)), WithCache(mem, time.Minute), WithMetrics(metrics))

	first, err := svc.Predict(context.Background(), strongProfile())
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Predict(context.Background(), strongProfile())
	if err != nil {
		t.Fatal(err)
	}
	if c.calls != 1 {
		t.Errorf("classifier calls = %d, want 1", c.calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
	if n := testutil.CollectAndCount(metrics.Registry(), "placekit_cache_lookups_total"); n != 2 {
		t.Errorf("cache lookup series = %d, want 2 (miss and hit)", n)
	}
}

func TestPredict_ProfileEnricher(t *testing.T) {
	enricher := enrichFunc(func(raw core.RawProfile) core.RawProfile {
		out := raw.Clone()
		out["CGPA"] = 9.5
		return out
	})
	svc := newTestService(t, WithProfileEnricher(enricher))
	res, err := svc.Predict(context.Background(), core.RawProfile{})
	if err != nil {
		t.Fatal(err)
	}
	for _, tip := range res.Tips {
		if strings.Contains(tip, "CGPA") {
			t.Errorf("enriched CGPA ignored, got tip %q", tip)
		}
	}
}

func TestHealthAndBranches(t *testing.T) {
	svc := newTestService(t)
	h := svc.Health()
	if !h.ModelLoaded || h.Accuracy == nil || *h.Accuracy != 87.5 {
		t.Errorf("Health() = %+v", h)
	}
	if got := svc.Branches(); !reflect.DeepEqual(got, []string{"CSE", "ISE"}) {
		t.Errorf("Branches() = %v", got)
	}
}

type enrichFunc func(core.RawProfile) core.RawProfile

func (f enrichFunc) Enrich(_ context.Context, raw core.RawProfile) core.RawProfile { return f(raw) }
