package models

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Standing is one row of a world-standings snapshot.
type Standing struct {
	Season         int     `bson:"season" json:"season"`
	EventCode      string  `bson:"event_code" json:"event_code"`
	Placing        *int    `bson:"placing" json:"placing"`
	ContestantName string  `bson:"contestant_name" json:"contestant_name"`
	Earnings       float64 `bson:"earnings" json:"earnings"`
	SourceURL      string  `bson:"source_url" json:"source_url"`
}

type Event string

const (
	EventBareback      Event = "BB"
	EventSaddleBronc   Event = "SB"
	EventBullRiding    Event = "BR"
	EventTieDown       Event = "TD"
	EventSteerWrestle  Event = "SW"
	EventTeamHeader    Event = "TRH"
	EventTeamHeeler    Event = "TRL"
	EventLadyBreakaway Event = "LBR"
)

// AllEvents is the sentinel accepted on the command line for every event.
const AllEvents = "ALL"

const (
	DefaultEvent  = EventBareback
	DefaultSeason = 2025
)

// Events lists every event in output order.
var Events = []Event{
	EventBareback,
	EventSaddleBronc,
	EventBullRiding,
	EventTieDown,
	EventSteerWrestle,
	EventTeamHeader,
	EventTeamHeeler,
	EventLadyBreakaway,
}

var eventNames = map[Event]string{
	EventBareback:      "Bareback Riding",
	EventSaddleBronc:   "Saddle Bronc Riding",
	EventBullRiding:    "Bull Riding",
	EventTieDown:       "Tie-Down Roping",
	EventSteerWrestle:  "Steer Wrestling",
	EventTeamHeader:    "Team Roping (Header)",
	EventTeamHeeler:    "Team Roping (Heeler)",
	EventLadyBreakaway: "Breakaway Roping",
}

func (e Event) String() string {
	return string(e)
}

func (e Event) Name() string {
	if n, ok := eventNames[e]; ok {
		return n
	}
	return string(e)
}

func (e Event) Valid() bool {
	_, ok := eventNames[e]
	return ok
}

// ParseEvents resolves a command-line selector into the events to scrape.
// Matching is case-insensitive and the empty selector means DefaultEvent.
func ParseEvents(selector string) ([]Event, error) {
	s := strings.ToUpper(strings.TrimSpace(selector))
	switch s {
	case "":
		return []Event{DefaultEvent}, nil
	case AllEvents:
		out := make([]Event, len(Events))
		copy(out, Events)
		return out, nil
	}

	e := Event(s)
	if !e.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, selector)
	}
	return []Event{e}, nil
}

// ParseSeason parses a season year; the empty string means DefaultSeason.
func ParseSeason(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSeason, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSeason, s)
	}
	return year, nil
}

// StandingsURL builds the world-standings query for one event and season.
func StandingsURL(baseURL string, event Event, season int) string {
	q := url.Values{}
	q.Set("eventType", string(event))
	q.Set("standingType", "world")
	q.Set("year", strconv.Itoa(season))
	return strings.TrimRight(baseURL, "/") + "/standings?" + encodeOrdered(q, "eventType", "standingType", "year")
}

// encodeOrdered keeps the parameter order stable and human readable,
// url.Values.Encode would sort keys alphabetically.
func encodeOrdered(q url.Values, keys ...string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(q.Get(k)))
	}
	return strings.Join(parts, "&")
}
