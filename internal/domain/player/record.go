// Package player defines the raw player record as stored by the data feed,
// the team and favorite documents around it, and the category sum type.
package player

// Record is one player document. Nullable feed counters are pointers; read
// them through Count so absent values become zero.
type Record struct {
	ID           int          `json:"id"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Name         string       `json:"name"`
	Nationality  string       `json:"nationality"`
	Age          int          `json:"age"`
	Height       float64      `json:"height"`
	Weight       float64      `json:"weight"`
	Position     string       `json:"position"`
	Photo        string       `json:"photo"`
	TeamID       int          `json:"teamId"`
	TeamName     string       `json:"teamName"`
	InjuredGames int          `json:"injuredGames"`
	NationalTeam bool         `json:"nationalTeam"`
	Media        *Media       `json:"media,omitempty"`
	Statistics   []Statistics `json:"statistics"`
}

// Media holds the attention figures used by the media section.
type Media struct {
	InstagramFollowers float64 `json:"instagramFollowers"`
	EngagementRate     float64 `json:"engagementRate"`
	GoogleSearches     float64 `json:"googleSearches"`
	TwitterMentions    float64 `json:"twitterMentions"`
}

// Statistics is one seasonal snapshot. The first snapshot is the current season.
type Statistics struct {
	Team        TeamRef     `json:"team"`
	League      League      `json:"league"`
	Games       Games       `json:"games"`
	Goals       Goals       `json:"goals"`
	Assists     *int        `json:"assists,omitempty"`
	Penalty     Penalty     `json:"penalty"`
	Dribbles    Dribbles    `json:"dribbles"`
	Tackles     Tackles     `json:"tackles"`
	Passes      Passes      `json:"passes"`
	Duels       Duels       `json:"duels"`
	Shots       Shots       `json:"shots"`
	Fouls       Fouls       `json:"fouls"`
	Substitutes Substitutes `json:"substitutes"`
	Cards       Cards       `json:"cards"`
}

type TeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type League struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Logo    string `json:"logo"`
	Country string `json:"country"`
	Season  int    `json:"season"`
	Flag    string `json:"flag"`
}

// Games keeps the feed's "appearences" spelling on the wire.
type Games struct {
	Appearances *int    `json:"appearences"`
	Position    string  `json:"position"`
	Rating      *string `json:"rating"`
	Minutes     *int    `json:"minutes"`
	Captain     bool    `json:"captain"`
	Number      *int    `json:"number"`
	Lineups     *int    `json:"lineups"`
}

type Goals struct {
	Total    *int `json:"total"`
	Assists  *int `json:"assists"`
	Saves    *int `json:"saves"`
	Conceded *int `json:"conceded"`
}

type Penalty struct {
	Missed   *int `json:"missed"`
	Saved    *int `json:"saved"`
	Commited *int `json:"commited"`
	Won      *int `json:"won"`
	Scored   *int `json:"scored"`
}

type Dribbles struct {
	Past     *int `json:"past"`
	Success  *int `json:"success"`
	Attempts *int `json:"attempts"`
}

type Tackles struct {
	Total         *int `json:"total"`
	Interceptions *int `json:"interceptions"`
	Blocks        *int `json:"blocks"`
}

type Passes struct {
	Key      *int `json:"key"`
	Total    *int `json:"total"`
	Accuracy *int `json:"accuracy"`
}

type Duels struct {
	Total *int `json:"total"`
	Won   *int `json:"won"`
}

type Shots struct {
	Total *int `json:"total"`
	On    *int `json:"on"`
}

type Fouls struct {
	Committed *int `json:"committed"`
	Drawn     *int `json:"drawn"`
}

type Substitutes struct {
	In    *int `json:"in"`
	Out   *int `json:"out"`
	Bench *int `json:"bench"`
}

type Cards struct {
	Yellow    *int `json:"yellow"`
	Red       *int `json:"red"`
	YellowRed *int `json:"yellowred"`
}

// Count reads a nullable counter, treating absent as zero.
func Count(v *int) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// Category resolves the record's position label.
func (r *Record) Category() (Category, error) {
	return ParseCategory(r.Position)
}

// CurrentSeason returns the first statistic snapshot.
func (r *Record) CurrentSeason() (Statistics, error) {
	if len(r.Statistics) == 0 {
		return Statistics{}, ErrNoStatistics
	}
	return r.Statistics[0], nil
}

// AssistCount prefers the top-level assists field and falls back to goals.assists.
func (s *Statistics) AssistCount() float64 {
	if s.Assists != nil {
		return float64(*s.Assists)
	}
	return Count(s.Goals.Assists)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() Record {
	out := *r
	if r.Media != nil {
		m := *r.Media
		out.Media = &m
	}
	if r.Statistics != nil {
		out.Statistics = make([]Statistics, len(r.Statistics))
		for i := range r.Statistics {
			out.Statistics[i] = r.Statistics[i].clone()
		}
	}
	return out
}

func (s Statistics) clone() Statistics {
	c := s
	c.Assists = dup(s.Assists)
	c.Games.Appearances = dup(s.Games.Appearances)
	c.Games.Minutes = dup(s.Games.Minutes)
	c.Games.Number = dup(s.Games.Number)
	c.Games.Lineups = dup(s.Games.Lineups)
	if s.Games.Rating != nil {
		r := *s.Games.Rating
		c.Games.Rating = &r
	}
	c.Goals = Goals{Total: dup(s.Goals.Total), Assists: dup(s.Goals.Assists), Saves: dup(s.Goals.Saves), Conceded: dup(s.Goals.Conceded)}
	c.Penalty = Penalty{Missed: dup(s.Penalty.Missed), Saved: dup(s.Penalty.Saved), Commited: dup(s.Penalty.Commited), Won: dup(s.Penalty.Won), Scored: dup(s.Penalty.Scored)}
	c.Dribbles = Dribbles{Past: dup(s.Dribbles.Past), Success: dup(s.Dribbles.Success), Attempts: dup(s.Dribbles.Attempts)}
	c.Tackles = Tackles{Total: dup(s.Tackles.Total), Interceptions: dup(s.Tackles.Interceptions), Blocks: dup(s.Tackles.Blocks)}
	c.Passes = Passes{Key: dup(s.Passes.Key), Total: dup(s.Passes.Total), Accuracy: dup(s.Passes.Accuracy)}
	c.Duels = Duels{Total: dup(s.Duels.Total), Won: dup(s.Duels.Won)}
	c.Shots = Shots{Total: dup(s.Shots.Total), On: dup(s.Shots.On)}
	c.Fouls = Fouls{Committed: dup(s.Fouls.Committed), Drawn: dup(s.Fouls.Drawn)}
	c.Substitutes = Substitutes{In: dup(s.Substitutes.In), Out: dup(s.Substitutes.Out), Bench: dup(s.Substitutes.Bench)}
	c.Cards = Cards{Yellow: dup(s.Cards.Yellow), Red: dup(s.Cards.Red), YellowRed: dup(s.Cards.YellowRed)}
	return c
}

func dup(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
