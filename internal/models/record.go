package models

import "time"

// DateLayout is the calendar-day layout stored with every record.
const DateLayout = "2006-01-02"

// Date is a calendar day in YYYY-MM-DD form. Comparison is plain string
// equality; no time-of-day or zone is carried.
type Date string

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Record represents the fine ledger of one named account
type Record struct {
	Total int  `json:"total"` // cumulative fines, never below zero
	Today int  `json:"today"` // fines accrued on Date
	Date  Date `json:"date"`  // day of the last mutation touching Today
}

// NamedRecord pairs a record with its account name for listings.
type NamedRecord struct {
	Name   string `json:"name"`
	Record Record `json:"record"`
}
