package domain

// PlanBlock is the wire shape of one activity inside a generated plan, as
// produced by the model and exchanged with clients. Time, Title, and Tags
// are mandatory; PlaceName and EstDuration are optional and defaulted at
// persistence time (empty string / 60 minutes).
type PlanBlock struct {
	Time        string   `json:"time"`
	Title       string   `json:"title"`
	PlaceName   string   `json:"place_name,omitempty"`
	Tags        []string `json:"tags"`
	EstDuration int      `json:"est_duration,omitempty"`
}

// DayPlan is one day of a generated itinerary.
type DayPlan struct {
	Day    int         `json:"day"`
	Blocks []PlanBlock `json:"blocks"`
}
