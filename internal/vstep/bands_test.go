package vstep

import "testing"

// Every (skill, level) table must cover 0..MaxCorrect with no gaps and no
// overlaps, so a lookup can never land between bands.
func TestScoreTablesAreContiguous(t *testing.T) {
	for skill, levels := range scoreTables {
		maxCorrect := MaxCorrect(skill)
		if maxCorrect == 0 {
			t.Fatalf("skill %s has a score table but no max correct count", skill)
		}

		for level, bands := range levels {
			if len(bands) == 0 {
				t.Fatalf("%s/%s: empty band table", skill, level)
			}
			if bands[0].MinCorrect != 0 {
				t.Errorf("%s/%s: first band starts at %d, want 0", skill, level, bands[0].MinCorrect)
			}
			if bands[len(bands)-1].MaxCorrect != maxCorrect {
				t.Errorf("%s/%s: last band ends at %d, want %d",
					skill, level, bands[len(bands)-1].MaxCorrect, maxCorrect)
			}

			for i, b := range bands {
				if b.MinCorrect > b.MaxCorrect {
					t.Errorf("%s/%s band %d: min %d > max %d", skill, level, i, b.MinCorrect, b.MaxCorrect)
				}
				if i > 0 && b.MinCorrect != bands[i-1].MaxCorrect+1 {
					t.Errorf("%s/%s band %d: starts at %d, previous ended at %d",
						skill, level, i, b.MinCorrect, bands[i-1].MaxCorrect)
				}
				if i > 0 && b.Score <= bands[i-1].Score {
					t.Errorf("%s/%s band %d: score %d not above previous score %d",
						skill, level, i, b.Score, bands[i-1].Score)
				}
			}

			// Exhaustive: every count from 0 to max resolves to some band.
			for c := 0; c <= maxCorrect; c++ {
				matched := false
				for _, b := range bands {
					if c >= b.MinCorrect && c <= b.MaxCorrect {
						matched = true
						break
					}
				}
				if !matched {
					t.Errorf("%s/%s: no band covers correct count %d", skill, level, c)
				}
			}
		}
	}
}

func TestBandScore(t *testing.T) {
	tests := []struct {
		name    string
		skill   Skill
		level   Level
		correct int
		want    int
	}{
		{"reading B2 mid band", SkillReading, LevelB2, 34, 7},
		{"reading B2 perfect", SkillReading, LevelB2, 40, 9},
		{"listening A2 floor", SkillListening, LevelA2, 0, 1},
		{"reading A2 perfect", SkillReading, LevelA2, 40, 10},
		{"listening C1 perfect", SkillListening, LevelC1, 35, 10},
		{"negative count clamps to floor", SkillReading, LevelB1, -3, 1},
		{"count above max clamps to top", SkillListening, LevelB1, 99, 10},
		{"writing has no table", SkillWriting, LevelB2, 10, 0},
		{"speaking has no table", SkillSpeaking, LevelC1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BandScore(tt.skill, tt.level, tt.correct)
			if got != tt.want {
				t.Errorf("BandScore(%s, %s, %d) = %d, want %d",
					tt.skill, tt.level, tt.correct, got, tt.want)
			}
		})
	}
}

func TestNextLevel(t *testing.T) {
	tests := []struct {
		level  Level
		want   Level
		wantOK bool
	}{
		{LevelA2, LevelB1, true},
		{LevelB1, LevelB2, true},
		{LevelB2, LevelC1, true},
		{LevelC1, LevelC1, false},
		{Level("X9"), Level("X9"), false},
	}

	for _, tt := range tests {
		got, ok := NextLevel(tt.level)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NextLevel(%s) = (%s, %v), want (%s, %v)", tt.level, got, ok, tt.want, tt.wantOK)
		}
	}
}
