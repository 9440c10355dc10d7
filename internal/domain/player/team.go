package player

// Team is a club document. Ranking and competitiveness feed the demand section.
type Team struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Logo            string  `json:"logo"`
	Country         string  `json:"country"`
	WorldRanking    int     `json:"worldRanking"`
	MaxRanking      int     `json:"maxRanking"`
	Competitiveness float64 `json:"competitiveness"`
}

// Favorite links a user to a player in their pool.
type Favorite struct {
	UserID   string `json:"userId"`
	PlayerID int    `json:"playerId"`
}
