package entities

import "time"

// CommitLOC is the running line count of a repository after one commit.
type CommitLOC struct {
	SHA  string `json:"sha"`
	LOC  int    `json:"loc"`
	Date string `json:"date"`
}

// BugBin is one bin's bug count for a service.
type BugBin struct {
	Service string    `json:"service"`
	Date    time.Time `json:"date"`
	Bugs    int       `json:"bugs"`
	LOC     int       `json:"loc"`
}

type DefectDensity struct {
	Year          int     `json:"year"`
	Bugs          int     `json:"bugs"`
	LOC           int     `json:"loc"`
	DefectDensity float64 `json:"defect_density"`
}

type RepairTime struct {
	Year       int     `json:"year"`
	Issues     int     `json:"issues"`
	MedianDays float64 `json:"median_days"`
}
