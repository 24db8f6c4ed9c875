package types_test

import (
	"testing"

	types "github.com/auralab/stemscore/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInstrumentsAndChannels(t *testing.T) {
	Convey("Given the fixed instrument set", t, func() {
		Convey("When listing instruments", func() {
			instruments := types.Instruments()

			Convey("Then it should contain the four stems in evaluation order", func() {
				So(instruments, ShouldResemble, []types.Instrument{
					types.Drums, types.Bass, types.Other, types.Vocals,
				})
			})

			Convey("And each should be valid", func() {
				for _, inst := range instruments {
					So(inst.Valid(), ShouldBeTrue)
				}
			})
		})

		Convey("When checking an unknown instrument", func() {
			So(types.Instrument("piano").Valid(), ShouldBeFalse)
		})
	})

	Convey("Given the channel set", t, func() {
		Convey("When listing channels", func() {
			So(types.Channels(), ShouldResemble, []types.Channel{types.Left, types.Right})
		})

		Convey("When checking validity", func() {
			So(types.Left.Valid(), ShouldBeTrue)
			So(types.Right.Valid(), ShouldBeTrue)
			So(types.Channel("center").Valid(), ShouldBeFalse)
		})
	})
}

func TestScoreKeys(t *testing.T) {
	Convey("Given the fixed score key set", t, func() {
		keys := types.ScoreKeys()

		Convey("Then there should be exactly 8 keys", func() {
			So(len(keys), ShouldEqual, 8)
		})

		Convey("And their columns should match the report column order", func() {
			columns := make([]string, len(keys))
			for i, k := range keys {
				columns[i] = k.Column()
			}
			So(columns, ShouldResemble, []string{
				"left_bass", "right_bass",
				"left_drums", "right_drums",
				"left_other", "right_other",
				"left_vocals", "right_vocals",
			})
		})
	})
}

func TestPairID(t *testing.T) {
	Convey("Given a song/listener pair", t, func() {
		pair := types.Pair{Song: "song1", Listener: "L1"}

		Convey("Then the ID should be listener-prefixed", func() {
			So(pair.ID(), ShouldEqual, "L1_song1")
		})
	})
}

func TestScoreRecordComplete(t *testing.T) {
	Convey("Given a score record", t, func() {
		Convey("When all 8 channel scores are present", func() {
			rec := types.ScoreRecord{
				Song:     "song1",
				Listener: "L1",
				Channels: map[types.ScoreKey]float64{},
			}
			for i, k := range types.ScoreKeys() {
				rec.Channels[k] = float64(i)
			}

			Convey("Then it should be complete", func() {
				So(rec.Complete(), ShouldBeTrue)
			})
		})

		Convey("When one score is missing", func() {
			rec := types.ScoreRecord{Channels: map[types.ScoreKey]float64{}}
			for _, k := range types.ScoreKeys()[:7] {
				rec.Channels[k] = 0.5
			}

			Convey("Then it should not be complete", func() {
				So(rec.Complete(), ShouldBeFalse)
			})
		})

		Convey("When a foreign key pads the map to 8 entries", func() {
			rec := types.ScoreRecord{Channels: map[types.ScoreKey]float64{}}
			for _, k := range types.ScoreKeys()[:7] {
				rec.Channels[k] = 0.5
			}
			rec.Channels[types.ScoreKey{Channel: "center", Instrument: "piano"}] = 0.5

			Convey("Then it should still not be complete", func() {
				So(rec.Complete(), ShouldBeFalse)
			})
		})
	})
}

func TestStereo(t *testing.T) {
	Convey("Given a stereo waveform", t, func() {
		s := types.Stereo{
			Left:  types.Mono{Rate: 44100, Samples: []float64{0, 0.5}},
			Right: types.Mono{Rate: 44100, Samples: []float64{0, -0.5}},
		}

		Convey("Then the shared rate should come from the left channel", func() {
			So(s.Rate(), ShouldEqual, 44100)
		})
	})
}
