package vstep

// band maps an inclusive range of correct-answer counts to a band score.
type band struct {
	MinCorrect int
	MaxCorrect int
	Score      int
}

// MaxCorrect returns the number of machine-graded questions in a full test
// for the given skill, or 0 for skills without score tables.
func MaxCorrect(skill Skill) int {
	switch skill {
	case SkillReading:
		return 40
	case SkillListening:
		return 35
	}
	return 0
}

// scoreTables holds the official correct-count to band-score conversion for
// the machine-graded skills. Bands are sorted, non-overlapping and cover the
// skill's full question count. Writing and speaking are graded by examiners
// and have no tables here.
var scoreTables = map[Skill]map[Level][]band{
	SkillReading: {
		LevelA2: {
			{0, 4, 1}, {5, 8, 2}, {9, 12, 3}, {13, 16, 4}, {17, 20, 5},
			{21, 24, 6}, {25, 28, 7}, {29, 32, 8}, {33, 36, 9}, {37, 40, 10},
		},
		LevelB1: {
			{0, 4, 1}, {5, 9, 2}, {10, 13, 3}, {14, 17, 4}, {18, 21, 5},
			{22, 25, 6}, {26, 29, 7}, {30, 33, 8}, {34, 37, 9}, {38, 40, 10},
		},
		LevelB2: {
			{0, 4, 1}, {5, 9, 2}, {10, 14, 3}, {15, 19, 4}, {20, 24, 5},
			{25, 29, 6}, {30, 34, 7}, {35, 37, 8}, {38, 40, 9},
		},
		LevelC1: {
			{0, 5, 1}, {6, 10, 2}, {11, 15, 3}, {16, 20, 4}, {21, 25, 5},
			{26, 30, 6}, {31, 34, 7}, {35, 37, 8}, {38, 39, 9}, {40, 40, 10},
		},
	},
	SkillListening: {
		LevelA2: {
			{0, 3, 1}, {4, 7, 2}, {8, 11, 3}, {12, 15, 4}, {16, 19, 5},
			{20, 23, 6}, {24, 27, 7}, {28, 31, 8}, {32, 34, 9}, {35, 35, 10},
		},
		LevelB1: {
			{0, 3, 1}, {4, 7, 2}, {8, 11, 3}, {12, 14, 4}, {15, 18, 5},
			{19, 22, 6}, {23, 26, 7}, {27, 30, 8}, {31, 33, 9}, {34, 35, 10},
		},
		LevelB2: {
			{0, 3, 1}, {4, 8, 2}, {9, 12, 3}, {13, 16, 4}, {17, 20, 5},
			{21, 24, 6}, {25, 28, 7}, {29, 31, 8}, {32, 34, 9}, {35, 35, 10},
		},
		LevelC1: {
			{0, 4, 1}, {5, 8, 2}, {9, 13, 3}, {14, 17, 4}, {18, 21, 5},
			{22, 25, 6}, {26, 29, 7}, {30, 32, 8}, {33, 34, 9}, {35, 35, 10},
		},
	},
}

// BandScore converts a correct-answer count into the band score for the given
// skill and level. Writing and speaking always return 0: those skills are
// scored through the examiner review pathway, not a lookup table. Counts below
// the lowest band (or any count no band matches) return the lowest band's
// score as a floor; this function never fails.
func BandScore(skill Skill, level Level, correctCount int) int {
	levels, ok := scoreTables[skill]
	if !ok {
		return 0
	}
	bands, ok := levels[level]
	if !ok || len(bands) == 0 {
		return 0
	}

	for _, b := range bands {
		if correctCount >= b.MinCorrect && correctCount <= b.MaxCorrect {
			return b.Score
		}
	}

	// Out of range either way: clamp to the nearest defined band.
	if correctCount > bands[len(bands)-1].MaxCorrect {
		return bands[len(bands)-1].Score
	}
	return bands[0].Score
}

// HasScoreTable reports whether the skill is machine-graded via band tables.
func HasScoreTable(skill Skill) bool {
	_, ok := scoreTables[skill]
	return ok
}
