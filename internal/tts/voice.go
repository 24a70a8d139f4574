package tts

import "strings"

// VoiceSelector picks the voice to configure at initialization. It returns
// false to leave the engine's default voice in place.
type VoiceSelector func(voices []Voice) (Voice, bool)

// PreferVoice returns a selector that picks the first voice whose name contains
// hint (case-insensitive), else the first voice, else nothing. Voice names are
// platform-dependent, so this is a heuristic.
func PreferVoice(hint string) VoiceSelector {
	hint = strings.ToLower(hint)
	return func(voices []Voice) (Voice, bool) {
		if len(voices) == 0 {
			return Voice{}, false
		}
		if hint != "" {
			for _, v := range voices {
				if strings.Contains(strings.ToLower(v.Name), hint) {
					return v, true
				}
			}
		}
		return voices[0], true
	}
}

// matchVoice finds the voice a per-request hint refers to: an exact id, else
// the first name containing hint. Unlike PreferVoice it never picks a default.
func matchVoice(voices []Voice, hint string) (Voice, bool) {
	if hint == "" {
		return Voice{}, false
	}
	for _, v := range voices {
		if strings.EqualFold(v.ID, hint) {
			return v, true
		}
	}
	hint = strings.ToLower(hint)
	for _, v := range voices {
		if strings.Contains(strings.ToLower(v.Name), hint) {
			return v, true
		}
	}
	return Voice{}, false
}
