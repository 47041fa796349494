package seed

import (
	"fmt"

	"soundwave/model"
)

const imageURL = "https://images.pexels.com/photos/%d/pexels-photo-%d.jpeg?auto=compress&cs=tinysrgb&w=800"

func image(n int) string {
	return fmt.Sprintf(imageURL, n, n)
}

// AudioURL is the SoundHelix demo track for catalog song n.
func AudioURL(n int) string {
	return fmt.Sprintf("https://www.soundhelix.com/examples/mp3/SoundHelix-Song-%d.mp3", n)
}

// AudioURLs maps catalog id to demo audio url.
func AudioURLs() map[string]string {
	out := make(map[string]string, 8)
	for n := 1; n <= 8; n++ {
		out[fmt.Sprint(n)] = AudioURL(n)
	}
	return out
}

var lyrics = map[string][]string{
	"1": {
		"In the silence of the midnight hour",
		"Dreams unfold like blooming flowers",
		"Electric pulses through the night",
		"Dancing shadows in neon light",
		"",
		"Midnight dreams are calling me",
		"To a world where I am free",
		"Luna's glow lights up the way",
		"Till the breaking of the day",
	},
	"2": {
		"Gentle waves upon the shore",
		"Whisper secrets from before",
		"Ocean's rhythm soothes the soul",
		"Makes the broken spirit whole",
		"",
		"Coastal harmony surrounds",
		"Nature's most enchanting sounds",
		"Seagulls dancing in the breeze",
		"Swaying palms and rustling trees",
	},
	"3": {
		"City lights illuminate the night",
		"Urban pulse beats strong and bright",
		"Streets alive with energy",
		"This is where I'm meant to be",
		"",
		"Neon signs and busy crowds",
		"Music playing clear and loud",
		"Metropolitan symphony",
		"City's calling out to me",
	},
}

// Songs returns the eight demo songs with lyrics and audio urls.
func Songs() []*model.Song {
	songs := []*model.Song{
		{ID: "1", Title: "Midnight Dreams", Artist: "Luna Eclipse", Album: "Nocturnal Vibes", Duration: "3:42", Image: image(1763075), Genre: "Electronic", IsLiked: true},
		{ID: "2", Title: "Ocean Waves", Artist: "Coastal Harmony", Album: "Seaside Sessions", Duration: "4:15", Image: image(1105666), Genre: "Ambient"},
		{ID: "3", Title: "City Lights", Artist: "Urban Pulse", Album: "Metropolitan", Duration: "3:28", Image: image(1190298), Genre: "Pop", IsLiked: true},
		{ID: "4", Title: "Mountain High", Artist: "Alpine Sound", Album: "Peak Experience", Duration: "5:03", Image: image(1699161), Genre: "Rock"},
		{ID: "5", Title: "Golden Hour", Artist: "Sunset Collective", Album: "Warm Memories", Duration: "3:56", Image: image(1540406), Genre: "Indie", IsLiked: true},
		{ID: "6", Title: "Neon Nights", Artist: "Synthwave Masters", Album: "Retro Future", Duration: "4:22", Image: image(1389429), Genre: "Synthwave"},
		{ID: "7", Title: "Forest Whispers", Artist: "Nature's Symphony", Album: "Woodland Tales", Duration: "6:18", Image: image(1496372), Genre: "Ambient", IsLiked: true},
		{ID: "8", Title: "Electric Storm", Artist: "Thunder Bay", Album: "Weather Patterns", Duration: "3:33", Image: image(1190297), Genre: "Electronic"},
	}
	urls := AudioURLs()
	for _, s := range songs {
		s.Lyrics = append(model.Lyrics{}, lyrics[s.ID]...)
		s.AudioURL = urls[s.ID]
	}
	return songs
}
