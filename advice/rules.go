package advice

// Rule 是一条提示规则：When 成立时输出 Tip。
// 同一 Group 内的规则按顺序匹配，命中第一条后跳过该组剩余规则；
// Group 为空的规则自成一组。
type Rule struct {
	Group string `yaml:"group" json:"group"`
	When  string `yaml:"when" json:"when"`
	Tip   string `yaml:"tip" json:"tip"`
}

// DefaultRules 内置提示规则，按输出顺序排列
func DefaultRules() []Rule {
	return []Rule{
		{
			Group: "cgpa",
			When:  "cgpa < 6.5",
			Tip:   "🎯 Focus on improving your CGPA to at least 6.5. Many companies have this as a cutoff.",
		},
		{
			Group: "cgpa",
			When:  "cgpa < 7.5",
			Tip:   "📚 Try to push your CGPA above 7.5 for better opportunities.",
		},
		{
			Group: "dsa",
			When:  "dsa_score < 40",
			Tip:   "💻 DSA is crucial! Practice on LeetCode/GeeksForGeeks daily. Aim for 50+ problems.",
		},
		{
			Group: "dsa",
			When:  "dsa_score < 60",
			Tip:   "📝 Good DSA foundation! Focus on medium-hard problems to stand out in coding rounds.",
		},
		{
			Group: "projects",
			When:  "projects < 2",
			Tip:   "🔧 Build at least 2-3 quality projects. Recruiters love seeing practical work!",
		},
		{
			Group: "leetcode",
			When:  `leetcode_problems < 50 && branch in ["CSE", "ISE", "AIML"]`,
			Tip:   "🏋️ Solve at least 100+ LeetCode problems before placement season.",
		},
		{
			Group: "backlogs",
			When:  "backlogs > 0",
			Tip:   "⚠️ Clear your backlogs ASAP! Many companies don't allow candidates with active backlogs.",
		},
		{
			Group: "internship",
			When:  `!internship && branch in ["CSE", "ISE", "AIML"]`,
			Tip:   "💼 Try to get at least one internship - it significantly boosts your profile!",
		},
		{
			Group: "strong",
			When:  "cgpa >= 7.5 && dsa_score >= 60 && projects >= 2 && backlogs == 0",
			Tip:   "🌟 Your profile looks strong! Focus on mock interviews and aptitude practice.",
		},
	}
}
