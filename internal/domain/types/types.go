// Package types contains common types used across the application
package types

// Instrument identifies one of the fixed stems a song is separated into.
type Instrument string

// The fixed instrument set, in evaluation order.
const (
	Drums  Instrument = "drums"
	Bass   Instrument = "bass"
	Other  Instrument = "other"
	Vocals Instrument = "vocals"
)

// Instruments returns all instruments in evaluation order.
func Instruments() []Instrument {
	return []Instrument{Drums, Bass, Other, Vocals}
}

// Valid reports whether i is one of the known instruments.
func (i Instrument) Valid() bool {
	switch i {
	case Drums, Bass, Other, Vocals:
		return true
	}
	return false
}

// Channel identifies one side of a stereo signal.
type Channel string

const (
	Left  Channel = "left"
	Right Channel = "right"
)

// Channels returns both channels in left-to-right order.
func Channels() []Channel {
	return []Channel{Left, Right}
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c == Left || c == Right
}

// Pair is the unit of work: one song evaluated for one listener.
type Pair struct {
	Song     string
	Listener string
}

// ID returns a stable identifier used for at-most-once guarding.
func (p Pair) ID() string {
	return p.Listener + "_" + p.Song
}

// ScoreKey addresses one of the 8 per-(channel, instrument) scores.
type ScoreKey struct {
	Channel    Channel
	Instrument Instrument
}

// Column returns the report column name, e.g. "left_bass".
func (k ScoreKey) Column() string {
	return string(k.Channel) + "_" + string(k.Instrument)
}

// ScoreKeys returns all 8 keys in the fixed report column order.
func ScoreKeys() []ScoreKey {
	return []ScoreKey{
		{Left, Bass}, {Right, Bass},
		{Left, Drums}, {Right, Drums},
		{Left, Other}, {Right, Other},
		{Left, Vocals}, {Right, Vocals},
	}
}

// ScoreRecord is one completed evaluation: a pair, its combined score,
// and the 8 per-channel scores backing it.
type ScoreRecord struct {
	Song     string
	Listener string
	Score    float64
	Channels map[ScoreKey]float64
}

// Complete reports whether all 8 per-channel scores are present.
func (r ScoreRecord) Complete() bool {
	if len(r.Channels) != len(ScoreKeys()) {
		return false
	}
	for _, k := range ScoreKeys() {
		if _, ok := r.Channels[k]; !ok {
			return false
		}
	}
	return true
}

// Mono is a single-channel waveform in normalized [-1, 1] amplitude.
type Mono struct {
	Rate    int
	Samples []float64
}

// Stereo is a pair of equal-length mono waveforms sharing one sample rate.
type Stereo struct {
	Left  Mono
	Right Mono
}

// Rate returns the shared sample rate of both channels.
func (s Stereo) Rate() int {
	return s.Left.Rate
}
