package dtos

type ServiceDates struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type MiningAccepted struct {
	Service      string `json:"service"`
	Repositories int    `json:"repositories"`
}
