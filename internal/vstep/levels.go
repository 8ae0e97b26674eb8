package vstep

// Skill identifies one of the four VSTEP exam skills.
type Skill string

const (
	SkillReading   Skill = "reading"
	SkillListening Skill = "listening"
	SkillWriting   Skill = "writing"
	SkillSpeaking  Skill = "speaking"
)

// Level is a CEFR-aligned proficiency band.
type Level string

const (
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
)

// levelOrder is the fixed progression used for next-level suggestions.
var levelOrder = []Level{LevelA2, LevelB1, LevelB2, LevelC1}

// ValidSkill reports whether s is a known skill.
func ValidSkill(s Skill) bool {
	switch s {
	case SkillReading, SkillListening, SkillWriting, SkillSpeaking:
		return true
	}
	return false
}

// ValidLevel reports whether l is a known level.
func ValidLevel(l Level) bool {
	switch l {
	case LevelA2, LevelB1, LevelB2, LevelC1:
		return true
	}
	return false
}

// NextLevel returns the level above l and true, or l and false when l is
// already the ceiling (C1) or unknown.
func NextLevel(l Level) (Level, bool) {
	for i, lvl := range levelOrder {
		if lvl == l && i < len(levelOrder)-1 {
			return levelOrder[i+1], true
		}
	}
	return l, false
}

// Levels returns the full level progression, lowest first.
func Levels() []Level {
	out := make([]Level, len(levelOrder))
	copy(out, levelOrder)
	return out
}
