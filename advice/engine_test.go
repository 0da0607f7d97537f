package advice

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rushteam/placekit/core"
)

func baseProfile() core.ResolvedProfile {
	return core.ResolvedProfile{
		Branch:             "CSE",
		Gender:             "Male",
		CGPA:               7.0,
		DSAScore:           50,
		Projects:           1,
		CommunicationScore: 3,
	}
}

func TestTipEngine_Generate(t *testing.T) {
	engine := NewDefaultTipEngine(nil)
	rules := DefaultRules()
	tip := func(i int) string { return rules[i].Tip }

	tests := []struct {
		name   string
		mutate func(p *core.ResolvedProfile)
		want   []string
	}{
		{
			name:   "defaults",
			mutate: func(p *core.ResolvedProfile) {},
			want:   []string{tip(1), tip(3), tip(4), tip(5), tip(7)},
		},
		{
			name: "strong profile",
			mutate: func(p *core.ResolvedProfile) {
				p.CGPA = 8.7
				p.DSAScore = 85
				p.Projects = 4
				p.LeetCodeProblems = 300
				p.Internship = true
			},
			want: []string{tip(8)},
		},
		{
			name: "weak profile with backlogs",
			mutate: func(p *core.ResolvedProfile) {
				p.CGPA = 5.0
				p.DSAScore = 30
				p.Backlogs = 3
			},
			want: []string{tip(0), tip(2), tip(4), tip(5), tip(6), tip(7)},
		},
		{
			name: "non-cs branch skips leetcode and internship",
			mutate: func(p *core.ResolvedProfile) {
				p.Branch = "Mechanical"
				p.CGPA = 8.0
				p.DSAScore = 70
				p.Projects = 3
			},
			want: []string{tip(8)},
		},
		{
			name: "cgpa boundary 7.5 is not improvement",
			mutate: func(p *core.ResolvedProfile) {
				p.CGPA = 7.5
				p.DSAScore = 60
				p.Projects = 2
				p.LeetCodeProblems = 50
				p.Internship = true
			},
			want: []string{tip(8)},
		},
		{
			name: "unknown branch gets no branch-specific tips",
			mutate: func(p *core.ResolvedProfile) {
				p.Branch = "Astrophysics"
			},
			want: []string{tip(1), tip(3), tip(4)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProfile()
			tt.mutate(&p)
			got := engine.Generate(p)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTipEngine_GroupsAreExclusive(t *testing.T) {
	engine := NewDefaultTipEngine(nil)
	rules := DefaultRules()
	for _, cgpa := range []float64{0, 3.2, 6.49, 6.5, 7.49, 7.5, 9.9} {
		p := baseProfile()
		p.CGPA = cgpa
		tips := engine.Generate(p)
		n := 0
		for _, tip := range tips {
			if tip == rules[0].Tip || tip == rules[1].Tip {
				n++
			}
		}
		if n > 1 {
			t.Errorf("cgpa=%v produced %d cgpa tips", cgpa, n)
		}
	}
}

func TestTipEngine_Idempotent(t *testing.T) {
	engine := NewDefaultTipEngine(nil)
	p := baseProfile()
	first := engine.Generate(p)
	for i := 0; i < 5; i++ {
		if got := engine.Generate(p); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d = %q, want %q", i, got, first)
		}
	}
}

func TestNewDefaultTipEngine_MatchesCompiledDefaults(t *testing.T) {
	compiled, err := NewTipEngine(DefaultRules(), nil)
	if err != nil {
		t.Fatalf("NewTipEngine: %v", err)
	}
	builtin := NewDefaultTipEngine(nil)
	profiles := []core.ResolvedProfile{
		baseProfile(),
		{Branch: "Civil", CGPA: 5.9, Backlogs: 2, DSAScore: 30},
		{Branch: "ISE", CGPA: 8.6, DSAScore: 80, Projects: 4, LeetCodeProblems: 250, Internship: true},
	}
	for i, p := range profiles {
		if got, want := builtin.Generate(p), compiled.Generate(p); !reflect.DeepEqual(got, want) {
			t.Errorf("profile %d: builtin %q, compiled %q", i, got, want)
		}
	}
}

func TestNewTipEngine_RejectsBadRules(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{"syntax error", Rule{When: "cgpa <", Tip: "x"}},
		{"non-boolean", Rule{When: "cgpa + 1.0", Tip: "x"}},
		{"unknown variable", Rule{When: "salary > 10", Tip: "x"}},
		{"empty tip", Rule{When: "cgpa < 6.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTipEngine([]Rule{tt.rule}, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadRules(t *testing.T) {
	doc := `
rules:
  - group: backlogs
    when: "backlogs > 0"
    tip: "clear backlogs"
  - when: "communication_score <= 2"
    tip: "work on communication"
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	engine, err := NewTipEngine(rules, nil)
	if err != nil {
		t.Fatalf("NewTipEngine: %v", err)
	}

	p := baseProfile()
	p.Backlogs = 1
	p.CommunicationScore = 2
	got := engine.Generate(p)
	want := []string{"clear backlogs", "work on communication"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %q, want %q", got, want)
	}
}

func TestParseRules_Empty(t *testing.T) {
	_, err := ParseRules([]byte("rules: []"))
	if err == nil || !strings.Contains(err.Error(), "no rules") {
		t.Fatalf("err = %v, want no rules error", err)
	}
}
