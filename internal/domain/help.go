package domain

import "fmt"

// HelpKind enumerates the lifelines. The zero value is not a valid kind.
type HelpKind int

const (
	FiftyFifty HelpKind = iota + 1
	AudienceHelp
	FriendCall
)

// HelpKinds lists every lifeline in display order.
var HelpKinds = []HelpKind{FiftyFifty, AudienceHelp, FriendCall}

func (k HelpKind) String() string {
	switch k {
	case FiftyFifty:
		return "fifty_fifty"
	case AudienceHelp:
		return "audience_help"
	case FriendCall:
		return "friend_call"
	default:
		return fmt.Sprintf("HelpKind(%d)", int(k))
	}
}

// Valid reports whether k is one of the known lifelines.
func (k HelpKind) Valid() bool {
	return k >= FiftyFifty && k <= FriendCall
}

// ParseHelpKind maps the wire name of a lifeline to its kind.
func ParseHelpKind(s string) (HelpKind, error) {
	for _, k := range HelpKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHelp, s)
}

func (k HelpKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHelp, int(k))
	}
	return []byte(k.String()), nil
}

func (k *HelpKind) UnmarshalText(b []byte) error {
	parsed, err := ParseHelpKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
