package script

import (
	"encoding/json"
	"strings"
)

// Speaker role labels. Every segment is attributed to exactly one of these
// two roles; the TTS layer maps each role to a configured voice.
const (
	SpeakerOne = "Speaker 1"
	SpeakerTwo = "Speaker 2"
)

// Segment is one attributed utterance within a script.
type Segment struct {
	Speaker    string `json:"speaker"`
	Text       string `json:"text"`
	Expression string `json:"expression,omitempty"`
}

// Script is an ordered sequence of segments.
type Script struct {
	Segments []Segment `json:"segments"`
}

// Roles returns the two configured speaker labels in order.
func Roles() [2]string {
	return [2]string{SpeakerOne, SpeakerTwo}
}

// Encode serializes the script to its canonical JSON form.
func (s *Script) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Render formats the script as prefixed dialogue lines, the same shape the
// fallback parser accepts. Re-parsing rendered output yields the same
// segment sequence.
func (s *Script) Render() string {
	var b strings.Builder
	for i, seg := range s.Segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(seg.Speaker)
		b.WriteString(": ")
		b.WriteString(seg.Text)
	}
	return b.String()
}
