package recommend

import "sonicpdf/catalog"

// moodRule binds a music id to its trigger keywords. Rules are evaluated in
// order and the first match wins, so the slice order is the documented mood
// priority: happy, sad, horror, heroic, curiosity, motivational,
// philosophical, nostalgic, optimistic, pessimistic.
type moodRule struct {
	music    catalog.MusicID
	keywords []string
}

var moodRules = []moodRule{
	{music: "M5", keywords: []string{"happy", "joy", "celebrate", "smile", "laugh", "exciting", "celebration", "success", "win", "achievement"}},
	{music: "M7", keywords: []string{"sad", "sorrow", "cry", "tear", "grief", "depression", "mourn", "weep", "upset", "melancholy"}},
	{music: "M10", keywords: []string{"scary", "fear", "dark", "horror", "afraid", "terror", "frightening", "creepy", "scared", "dread"}},
	{music: "M9", keywords: []string{"hero", "brave", "courage", "victory", "triumph", "battle", "fight", "strong", "power", "mighty"}},
	{music: "M1", keywords: []string{"learn", "education", "study", "understand", "knowledge", "discovery", "science", "research", "analysis", "fact"}},
	{music: "M2", keywords: []string{"motivate", "inspire", "achieve", "goal", "dream", "ambition", "purpose", "determination", "progress"}},
	{music: "M4", keywords: []string{"think", "philosophy", "deep", "meaning", "question", "wonder", "contemplation", "ponder", "reflect", "mind"}},
	{music: "M13", keywords: []string{"memory", "past", "childhood", "remember", "nostalgia", "old days", "history", "reminisce", "vintage", "throwback"}},
	{music: "M6", keywords: []string{"optimistic", "hopeful", "future", "bright", "positive", "better", "improve", "hope", "opportunity", "tomorrow"}},
	{music: "M8", keywords: []string{"pessimistic", "hopeless", "gloomy", "negative", "worse", "decline", "despair", "doom", "failure"}},
}

// effectRule binds an effect id to its trigger keywords.
type effectRule struct {
	effect   catalog.EffectID
	keywords []string
}

var effectRules = []effectRule{
	// Weather
	{effect: "E1b", keywords: []string{"rain", "rainy", "downpour", "drizzle"}},
	{effect: "E1a", keywords: []string{"thunder", "storm", "lightning"}},
	{effect: "E1c", keywords: []string{"sunny", "sunshine", "clear sky"}},
	{effect: "E1d", keywords: []string{"night", "evening", "dusk", "twilight"}},
	{effect: "E1e", keywords: []string{"wind", "breeze", "blow", "gust"}},
	{effect: "E1f", keywords: []string{"snow", "blizzard", "freeze", "ice"}},

	// Miscellaneous
	{effect: "E2a", keywords: []string{"market", "bazaar", "shop", "store"}},
	{effect: "E2b", keywords: []string{"walk", "step", "footstep", "strode", "marched"}},
	{effect: "E2c", keywords: []string{"knock", "tap"}},
	{effect: "E2d", keywords: []string{"glass", "shatter", "crash"}},
	{effect: "E2e", keywords: []string{"water", "river", "stream", "ocean", "splash", "swim"}},
	{effect: "E2f", keywords: []string{"cup", "drink", "pour", "fill"}},
	{effect: "E2g", keywords: []string{"breath", "sigh", "gasp", "inhale", "exhale"}},
	{effect: "E2h", keywords: []string{"doorbell", "visitor", "guest"}},
	{effect: "E2i", keywords: []string{"phone", "call", "mobile"}},
	{effect: "E2j", keywords: []string{"car", "engine", "drive", "vehicle", "automobile"}},
	{effect: "E2k", keywords: []string{"crowd", "audience", "cheer", "applause", "gathering"}},

	// Animal sounds
	{effect: "E3a", keywords: []string{"bird", "chirp", "tweet"}},
	{effect: "E3b", keywords: []string{"dog", "bark"}},
	{effect: "E3c", keywords: []string{"horse", "gallop", "trot"}},
	{effect: "E3d", keywords: []string{"cat", "purr", "meow", "feline"}},
	{effect: "E3e", keywords: []string{"owl", "hoot"}},

	// Beats
	{effect: "E4a", keywords: []string{"fast", "quick", "rapid", "hurry", "rush", "race", "speed"}},
	{effect: "E4b", keywords: []string{"tense", "suspense", "nervous", "anxious", "worry"}},
	{effect: "E4c", keywords: []string{"dramatic", "intense", "climax", "revelation", "shocking"}},
	{effect: "E4d", keywords: []string{"gentle", "soft", "calm", "peaceful", "serene"}},

	// Machine sounds
	{effect: "E5a", keywords: []string{"factory", "machine", "industrial", "manufacture"}},
	{effect: "E5b", keywords: []string{"spaceship", "starship", "rocket", "spacecraft"}},
	{effect: "E5c", keywords: []string{"gun", "gunshot", "bullet", "weapon", "blast"}},
}
