package rank

// AssessDifficulty classifies a keyword's competitiveness from the official
// tiers of its top competing results. First matching rule wins; with no
// known tiers at all the classification is unknown, not an error.
func AssessDifficulty(results []SearchResultItem) KeywordDifficulty {
	var known, high int
	var levelSum int

	for _, r := range results {
		if r.OfficialLevel == nil {
			continue
		}
		known++
		levelSum += *r.OfficialLevel
		if *r.OfficialLevel >= 3 {
			high++
		}
	}

	if known == 0 {
		return KeywordDifficulty{
			Difficulty: DifficultyUnknown,
			Score:      50,
			LevelFloor: 1,
		}
	}

	highRatio := float64(high) / float64(known)
	avgLevel := float64(levelSum) / float64(known)

	kd := KeywordDifficulty{HighLevelCount: high, KnownLevels: known}
	switch {
	case highRatio >= 0.7 || avgLevel >= 3.5:
		kd.Difficulty, kd.Score, kd.LevelFloor = DifficultyVeryHard, 90, 3
	case highRatio >= 0.4 || avgLevel >= 2.8:
		kd.Difficulty, kd.Score, kd.LevelFloor = DifficultyHard, 70, 2
	case avgLevel >= 2.0:
		kd.Difficulty, kd.Score, kd.LevelFloor = DifficultyModerate, 45, 2
	default:
		kd.Difficulty, kd.Score, kd.LevelFloor = DifficultyEasy, 20, 1
	}
	return kd
}
