package catalog

// Default returns the built-in demo catalog: three contestants scored across
// three rounds. Round weights shift toward pitch and technique in the later
// rounds, mirroring a knockout format.
func Default() *Catalog {
	return &Catalog{
		Contestants: []Contestant{
			{
				ID:    "c1",
				Name:  "Cui",
				Title: "Hard rock / powerhouse vocals",
				Image: "https://images.unsplash.com/photo-1539571696357-5a69c17a67c6?q=80&w=800&auto=format&fit=crop",
			},
			{
				ID:    "c2",
				Name:  "Wei",
				Title: "Soul singer / silky registers",
				Image: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?q=80&w=800&auto=format&fit=crop",
			},
			{
				ID:    "c3",
				Name:  "Eric",
				Title: "Trendsetter / all-round producer",
				Image: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?q=80&w=800&auto=format&fit=crop",
			},
		},
		Rounds: []Round{
			{
				ID:          1,
				Title:       "Round 1: Free Choice",
				Description: "Each contestant performs the song that shows their own color best.",
				TotalMax:    30,
				Criteria: []Criterion{
					{ID: "pitch", Name: "Pitch & Rhythm", MaxScore: 10},
					{ID: "technique", Name: "Breath & Technique", MaxScore: 8},
					{ID: "emotion", Name: "Emotional Delivery", MaxScore: 6},
					{ID: "stage", Name: "Stage Presence", MaxScore: 4},
					{ID: "completion", Name: "Song Completion", MaxScore: 2},
				},
			},
			{
				ID:          2,
				Title:       "Round 2: Drawn Track",
				Description: "A randomly drawn song tests adaptability and live nerve.",
				TotalMax:    35,
				Criteria: []Criterion{
					{ID: "pitch", Name: "Pitch & Rhythm", MaxScore: 12},
					{ID: "technique", Name: "Breath & Technique", MaxScore: 10},
					{ID: "emotion", Name: "Emotional Delivery", MaxScore: 5},
					{ID: "stage", Name: "Stage Presence", MaxScore: 4},
					{ID: "completion", Name: "Song Completion", MaxScore: 4},
				},
			},
			{
				ID:          3,
				Title:       "Round 3: Rival's Pick",
				Description: "The final duel; each contestant sings a song chosen by an opponent.",
				TotalMax:    35,
				Criteria: []Criterion{
					{ID: "pitch", Name: "Pitch & Rhythm", MaxScore: 12},
					{ID: "technique", Name: "Breath & Technique", MaxScore: 10},
					{ID: "emotion", Name: "Emotional Delivery", MaxScore: 5},
					{ID: "stage", Name: "Stage Presence", MaxScore: 4},
					{ID: "completion", Name: "Song Completion", MaxScore: 4},
				},
			},
		},
	}
}
