package models

type MatchPillars struct {
	SpiritualSync        float64 `json:"spiritualSync"`
	RhythmMatch          float64 `json:"rhythmMatch"`
	VulnerabilityBalance float64 `json:"vulnerabilityBalance"`
}

// MatchRecommendation is a suggested group returned by the matching model.
// It lives only for the current discovery session.
type MatchRecommendation struct {
	CandidateNames []string     `json:"candidateNames" binding:"required,min=1"`
	GroupType      string       `json:"groupType" binding:"required"`
	OverallScore   float64      `json:"overallScore"`
	Pillars        MatchPillars `json:"pillars"`
	Reasoning      string       `json:"reasoning"`
	CommonGround   []string     `json:"commonGround"`
}

type CommunitySearchResult struct {
	PeopleMatch []string `json:"peopleMatch"`
	ThemeMatch  []string `json:"themeMatch"`
	Explanation string   `json:"explanation"`
}

type PublicCircle struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Theme    string `json:"theme"`
	Activity string `json:"activity"`
}

// DiscoveryCorpus is what community search and matching look across.
type DiscoveryCorpus struct {
	People  []UserProfile  `json:"people" yaml:"candidates"`
	Circles []PublicCircle `json:"circles" yaml:"public_circles"`
	Themes  []string       `json:"themes" yaml:"spiritual_themes"`
}
