package codec_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/okian/skirmish/internal/adapters/codec"
	"github.com/okian/skirmish/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const sample = `{"type":"damage","id":"e1","timestamp":"2024-03-01T20:00:00Z","source":{"name":"You","category":"self"},"target":{"name":"cave troll","category":"npc"},"amount":120,"absorbed":20,"damage_type":"slash","action":"melee","critical":true}

{"type":"healing","id":"e2","timestamp":"2024-03-01T20:00:01Z","source":{"name":"Aelwyn","category":"player"},"target":{"name":"You","category":"self"},"amount":300,"effective":180,"ability":"Greater Heal"}
{"type":"crowd_control","id":"e3","timestamp":"2024-03-01T20:00:02Z","source":{"name":"You","category":"self"},"target":{"name":"cave troll","category":"npc"},"effect":"stun","duration":"4s"}
{"type":"death","id":"e4","timestamp":"2024-03-01T20:00:03Z","target":{"name":"cave troll","category":"npc"},"killer":{"name":"You","category":"self"}}
{"type":"unknown","id":"e5","timestamp":"2024-03-01T20:00:04Z","raw":"You feel a cold wind"}
`

func TestDecode(t *testing.T) {
	Convey("Given a JSON Lines stream with every event type", t, func() {
		events, err := codec.ReadAll(strings.NewReader(sample))

		Convey("Then every event is decoded into its variant", func() {
			So(err, ShouldBeNil)
			So(events, ShouldHaveLength, 5)

			dmg, ok := events[0].(model.Damage)
			So(ok, ShouldBeTrue)
			So(dmg.Source.IsSelf(), ShouldBeTrue)
			So(dmg.Effective(), ShouldEqual, 100)
			So(dmg.Critical, ShouldBeTrue)
			So(dmg.Timestamp.Equal(time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)), ShouldBeTrue)

			heal, ok := events[1].(model.Healing)
			So(ok, ShouldBeTrue)
			So(heal.Overheal(), ShouldEqual, 120)

			cc, ok := events[2].(model.CrowdControl)
			So(ok, ShouldBeTrue)
			So(cc.Effect, ShouldEqual, model.ControlStun)
			So(cc.Duration, ShouldEqual, 4*time.Second)

			death, ok := events[3].(model.Death)
			So(ok, ShouldBeTrue)
			So(death.HasKiller(), ShouldBeTrue)

			unknown, ok := events[4].(model.Unknown)
			So(ok, ShouldBeTrue)
			So(unknown.Raw, ShouldEqual, "You feel a cold wind")
		})
	})

	Convey("Given lines that omit optional fields", t, func() {
		input := `{"type":"damage","id":"a","timestamp":"2024-03-01T20:00:00Z","amount":10}
{"type":"healing","id":"b","timestamp":"2024-03-01T20:00:01Z","amount":50}
{"type":"crowd_control","id":"c","timestamp":"2024-03-01T20:00:02Z"}`
		events, err := codec.ReadAll(strings.NewReader(input))

		Convey("Then defaults are filled in", func() {
			So(err, ShouldBeNil)
			So(events[0].(model.Damage).DamageType, ShouldEqual, model.UnknownDamageType)
			So(events[1].(model.Healing).Effective(), ShouldEqual, 50)
			So(events[2].(model.CrowdControl).Effect, ShouldEqual, model.ControlOther)
		})
	})

	Convey("Given malformed input", t, func() {
		cases := []struct {
			name  string
			input string
			line  int
			want  error
		}{
			{"broken json", "{\"type\":\"damage\"", 1, codec.ErrSyntax},
			{"unknown type", "\n\n{\"type\":\"emote\",\"timestamp\":\"2024-03-01T20:00:00Z\"}", 3, codec.ErrUnknownType},
			{"negative amount", "{\"type\":\"damage\",\"amount\":-5}", 1, codec.ErrInvalid},
			{"bad duration", "{\"type\":\"crowd_control\",\"duration\":\"soon\"}", 1, codec.ErrInvalid},
		}

		for _, tc := range cases {
			Convey("When the input has "+tc.name, func() {
				_, err := codec.ReadAll(strings.NewReader(tc.input))

				Convey("Then a line error wraps the sentinel", func() {
					var lineErr *codec.LineError
					So(errors.As(err, &lineErr), ShouldBeTrue)
					So(lineErr.Line, ShouldEqual, tc.line)
					So(errors.Is(err, tc.want), ShouldBeTrue)
				})
			})
		}
	})

	Convey("Given events decoded before a bad line", t, func() {
		d := codec.NewDecoder(strings.NewReader(sample + "not json\n"))
		count := 0
		var err error
		for {
			_, err = d.Decode()
			if err != nil {
				break
			}
			count++
		}

		Convey("Then the good events are returned before the error", func() {
			So(count, ShouldEqual, 5)
			So(errors.Is(err, io.EOF), ShouldBeFalse)
			So(d.Line(), ShouldEqual, 7)
		})
	})
}

func TestEncode(t *testing.T) {
	Convey("Given decoded events", t, func() {
		events, err := codec.ReadAll(strings.NewReader(sample))
		So(err, ShouldBeNil)

		Convey("When they are written and read back", func() {
			var buf bytes.Buffer
			So(codec.WriteAll(&buf, events), ShouldBeNil)
			again, err := codec.ReadAll(&buf)

			Convey("Then the same events come back", func() {
				So(err, ShouldBeNil)
				So(again, ShouldResemble, events)
			})
		})

		Convey("When a single event is encoded", func() {
			var buf bytes.Buffer
			So(codec.NewEncoder(&buf).Encode(events[3]), ShouldBeNil)

			Convey("Then unused fields are omitted", func() {
				line := buf.String()
				So(line, ShouldStartWith, `{"type":"death","id":"e4"`)
				So(line, ShouldNotContainSubstring, "amount")
				So(line, ShouldEndWith, "\n")
			})
		})
	})
}
