package app

import (
	"fmt"
	"sort"
	"strings"

	"millionaire-service/internal/domain"
)

const (
	// DefaultAudienceAccuracy is how often the audience's favourite is the right letter.
	DefaultAudienceAccuracy = 0.8
	// DefaultFriendAccuracy is how often the friend names the right letter.
	DefaultFriendAccuracy = 0.8

	audiencePeakMin = 45
	audiencePeakMax = 90
)

var defaultFriends = []string{"Vasily", "Maria", "Oleg", "Anna", "Pyotr"}

// HelpState records what lifelines did to one question.
type HelpState struct {
	FiftyFifty   []string       `json:"fiftyFifty,omitempty"`
	AudienceHelp map[string]int `json:"audienceHelp,omitempty"`
	FriendCall   *FriendAdvice  `json:"friendCall,omitempty"`
}

// Applied reports whether kind has been recorded.
func (h HelpState) Applied(kind domain.HelpKind) bool {
	switch kind {
	case domain.FiftyFifty:
		return h.FiftyFifty != nil
	case domain.AudienceHelp:
		return h.AudienceHelp != nil
	case domain.FriendCall:
		return h.FriendCall != nil
	default:
		return false
	}
}

func (h HelpState) clone() HelpState {
	out := HelpState{}
	if h.FiftyFifty != nil {
		out.FiftyFifty = append([]string(nil), h.FiftyFifty...)
	}
	if h.AudienceHelp != nil {
		out.AudienceHelp = make(map[string]int, len(h.AudienceHelp))
		for k, v := range h.AudienceHelp {
			out.AudienceHelp[k] = v
		}
	}
	if h.FriendCall != nil {
		fc := *h.FriendCall
		out.FriendCall = &fc
	}
	return out
}

// FriendAdvice is the friend's pick. Letter is authoritative; Text is for display.
type FriendAdvice struct {
	Friend string `json:"friend"`
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// LifelineConfig tunes how trustworthy the audience and the friend are.
type LifelineConfig struct {
	AudienceAccuracy float64
	FriendAccuracy   float64
	Friends          []string
}

// Lifelines derives lifeline results for a question.
type Lifelines struct {
	rnd              Rand
	audienceAccuracy float64
	friendAccuracy   float64
	friends          []string
}

func NewLifelines(rnd Rand, c LifelineConfig) *Lifelines {
	if c.AudienceAccuracy <= 0 || c.AudienceAccuracy > 1 {
		c.AudienceAccuracy = DefaultAudienceAccuracy
	}
	if c.FriendAccuracy <= 0 || c.FriendAccuracy > 1 {
		c.FriendAccuracy = DefaultFriendAccuracy
	}
	if len(c.Friends) == 0 {
		c.Friends = defaultFriends
	}
	return &Lifelines{
		rnd:              rnd,
		audienceAccuracy: c.AudienceAccuracy,
		friendAccuracy:   c.FriendAccuracy,
		friends:          c.Friends,
	}
}

// FiftyFifty keeps the correct letter and one random wrong letter, sorted.
func (l *Lifelines) FiftyFifty(correct string) []string {
	wrong := otherLetters(correct)
	kept := []string{correct, wrong[l.rnd.Intn(len(wrong))]}
	sort.Strings(kept)
	return kept
}

// AudiencePoll returns percentages for every letter summing to 100.
// The largest block of votes lands on the correct letter with probability audienceAccuracy.
func (l *Lifelines) AudiencePoll(correct string) map[string]int {
	favourite := correct
	if l.rnd.Float64() >= l.audienceAccuracy {
		wrong := otherLetters(correct)
		favourite = wrong[l.rnd.Intn(len(wrong))]
	}

	peak := audiencePeakMin + l.rnd.Intn(audiencePeakMax-audiencePeakMin+1)
	rest := 100 - peak
	lo, hi := l.rnd.Intn(rest+1), l.rnd.Intn(rest+1)
	if lo > hi {
		lo, hi = hi, lo
	}

	others := otherLetters(favourite)
	return map[string]int{
		favourite: peak,
		others[0]: lo,
		others[1]: hi - lo,
		others[2]: rest - hi,
	}
}

// FriendCall names the correct letter with probability friendAccuracy.
func (l *Lifelines) FriendCall(correct string) FriendAdvice {
	letter := correct
	if l.rnd.Float64() >= l.friendAccuracy {
		wrong := otherLetters(correct)
		letter = wrong[l.rnd.Intn(len(wrong))]
	}
	friend := l.friends[l.rnd.Intn(len(l.friends))]
	return FriendAdvice{
		Friend: friend,
		Letter: letter,
		Text:   fmt.Sprintf("%s thinks the answer is %s", friend, strings.ToUpper(letter)),
	}
}

func otherLetters(letter string) []string {
	out := make([]string, 0, len(domain.Letters)-1)
	for _, l := range domain.Letters {
		if l != letter {
			out = append(out, l)
		}
	}
	return out
}
