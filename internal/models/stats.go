package models

type DeckStat struct {
	DeckID       string  `json:"deck_id"`
	DeckName     string  `json:"deck_name"`
	SumScore     float64 `json:"sum_score"`
	SumPossible  float64 `json:"sum_possible"`
	Percentage   int     `json:"percentage"`
	SessionCount int     `json:"session_count"`
}

type LocationStat struct {
	LocationID   string  `json:"location_id"`
	LocationName string  `json:"location_name"`
	SumScore     float64 `json:"sum_score"`
	SumPossible  float64 `json:"sum_possible"`
	Percentage   int     `json:"percentage"`
	SessionCount int     `json:"session_count"`
}

type StatsSummary struct {
	ByDeck     []DeckStat     `json:"by_deck"`
	ByLocation []LocationStat `json:"by_location"`
}
