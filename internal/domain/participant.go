package domain

// Participant is one roster entry with its per-participant media flags.
// No transport or lifecycle logic here.
type Participant struct {
	UserID         UserID         `json:"userId"`
	DisplayName    string         `json:"displayName"`
	VideoOn        bool           `json:"bVideoOn"`
	ShareOn        bool           `json:"sharerOn"`
	IsHost         bool           `json:"isHost"`
	NetworkQuality NetworkQuality `json:"networkQuality"`
}

// VideoOn reports the video flag of p, treating a missing participant as video off.
func VideoOn(p *Participant) bool {
	return p != nil && p.VideoOn
}

// SameUser reports whether a and b name the same participant. Two nils are the same.
func SameUser(a, b *Participant) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.UserID == b.UserID
}
