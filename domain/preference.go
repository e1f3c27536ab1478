package domain

// ViewerPreference is a client-local accessibility mode. It only affects
// rendering and is never attached to a MessageRecord: two viewers of the
// same message may hold different preferences.
type ViewerPreference string

const (
	PreferenceNone           ViewerPreference = "None"
	PreferenceDeafness       ViewerPreference = "Deafness"
	PreferenceColorBlindness ViewerPreference = "Color-Blindness"
)

// ParsePreference maps a stored string back to a preference. Unrecognized
// values degrade to PreferenceNone instead of failing, so a stale or
// corrupted local value can never break session start.
func ParsePreference(s string) ViewerPreference {
	switch ViewerPreference(s) {
	case PreferenceDeafness:
		return PreferenceDeafness
	case PreferenceColorBlindness:
		return PreferenceColorBlindness
	default:
		return PreferenceNone
	}
}
