package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/skirmish/internal/adapters/export"
)

// run executes the root command with args and stdin, returning stdout.
func run(stdin string, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands(t *testing.T) {
	convey.Convey("Given a generated combat log", t, func() {
		log, err := run("", "generate", "--seed", "11", "--encounters", "3", "--noise")
		convey.So(err, convey.ShouldBeNil)
		convey.So(strings.Count(log, "\n"), convey.ShouldBeGreaterThan, 30)

		convey.Convey("When sessions are listed as JSON", func() {
			_ = os.Setenv("SKIRMISH_SESSION__MIN_EVENTS", "2")
			defer func() { _ = os.Unsetenv("SKIRMISH_SESSION__MIN_EVENTS") }()
			out, err := run(log, "sessions", "--format", "json")

			convey.Convey("Then every encounter is a session and the strays are noise", func() {
				convey.So(err, convey.ShouldBeNil)
				var list struct {
					Sessions []struct {
						ID     string `json:"id"`
						Events int    `json:"events"`
					} `json:"sessions"`
					Noise int `json:"noise"`
				}
				convey.So(json.Unmarshal([]byte(out), &list), convey.ShouldBeNil)
				convey.So(list.Sessions, convey.ShouldHaveLength, 3)
				convey.So(list.Noise, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When all sessions are summarized as CSV", func() {
			out, err := run(log, "summary", "--format", "csv")

			convey.Convey("Then the meters are written with a header", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldStartWith, "session_id,meter,rank,name")
				convey.So(out, convey.ShouldContainSubstring, ",You,")
			})
		})

		convey.Convey("When one session is summarized as text", func() {
			out, err := run(log, "summary", "--session", "1")

			convey.Convey("Then the rendered summary names the log owner", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "You")
			})
		})

		convey.Convey("When the timeline is filtered to damage", func() {
			out, err := run(log, "timeline", "--session", "3", "--type", "damage", "--format", "json")

			convey.Convey("Then only damage entries are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				var doc struct {
					SessionID string `json:"session_id"`
					Entries   []struct {
						Marker string `json:"marker"`
					} `json:"entries"`
				}
				convey.So(json.Unmarshal([]byte(out), &doc), convey.ShouldBeNil)
				convey.So(doc.SessionID, convey.ShouldNotBeEmpty)
				convey.So(doc.Entries, convey.ShouldNotBeEmpty)
				for _, e := range doc.Entries {
					convey.So(e.Marker, convey.ShouldEqual, "damage")
				}
			})
		})

		convey.Convey("When the timeline type is unknown", func() {
			_, err := run(log, "timeline", "--type", "emote")

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When damage is broken down by category", func() {
			out, err := run(log, "breakdown", "--by", "category", "--format", "yaml")

			convey.Convey("Then groups are written", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "groups:")
			})
		})

		convey.Convey("When the log owner's stats are requested", func() {
			out, err := run(log, "stats", "--format", "yaml")

			convey.Convey("Then the aggregate covers every encounter", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "player: You")
				convey.So(out, convey.ShouldContainSubstring, "sessions: 3")
			})
		})

		convey.Convey("When the leaderboard is requested", func() {
			out, err := run(log, "leaderboard", "--limit", "2", "--format", "json")

			convey.Convey("Then at most two ranked players are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				var entries []struct {
					Rank   int    `json:"rank"`
					Player string `json:"player"`
				}
				convey.So(json.Unmarshal([]byte(out), &entries), convey.ShouldBeNil)
				convey.So(entries, convey.ShouldHaveLength, 2)
				convey.So(entries[0].Rank, convey.ShouldEqual, 1)
				convey.So(entries[1].Rank, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a session number is out of range", func() {
			_, err := run(log, "timeline", "--session", "9")

			convey.Convey("Then the session is not found", func() {
				convey.So(errors.Is(err, ErrSessionNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a metrics file is requested", func() {
			path := filepath.Join(t.TempDir(), "skirmish.prom")
			_, err := run(log, "sessions", "--metrics-file", path)

			convey.Convey("Then the exposition is written", func() {
				convey.So(err, convey.ShouldBeNil)
				raw, readErr := os.ReadFile(path)
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldContainSubstring, "skirmish_analysis_events_analyzed_total")
			})
		})
	})

	convey.Convey("Given invalid invocations", t, func() {
		convey.Convey("When the output format is unknown", func() {
			_, err := run("", "sessions", "--format", "xml")

			convey.Convey("Then the format is rejected", func() {
				convey.So(errors.Is(err, export.ErrUnknownFormat), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the input is empty", func() {
			_, err := run("", "summary", "--session", "1")

			convey.Convey("Then there are no sessions", func() {
				convey.So(errors.Is(err, ErrNoSessions), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the input is not JSON Lines", func() {
			_, err := run("not json\n", "sessions")

			convey.Convey("Then decoding fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the input file does not exist", func() {
			_, err := run("", "sessions", "--input", filepath.Join(t.TempDir(), "missing.jsonl"))

			convey.Convey("Then opening fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
