// Package models contains data structures used throughout the application
package models

import "time"

// Default patient target range in mg/dL, used until a login installs the
// patient-specific range and restored on Clear.
const (
	DefaultTargetHigh = 180
	DefaultTargetLow  = 70
)

// Session holds the authenticated account and the active patient. It is a
// pure data holder; all mutation happens through Commit and Clear so a login
// either installs everything or nothing.
type Session struct {
	Email       string
	AuthToken   string
	UserID      string
	TokenExpiry time.Time

	// Identity of the single monitored patient (first connection entry).
	PatientID        string
	PatientFirstName string
	PatientLastName  string

	// Patient-specific clinically defined target range, mg/dL.
	TargetHigh int
	TargetLow  int
}

// NewSession returns an empty session with default target range.
func NewSession() *Session {
	return &Session{
		TargetHigh: DefaultTargetHigh,
		TargetLow:  DefaultTargetLow,
	}
}

// Authenticated reports whether the session carries a token that has not
// expired yet.
func (s *Session) Authenticated() bool {
	return s.AuthToken != "" && time.Now().Before(s.TokenExpiry)
}

// Commit atomically installs the result of a successful login+connections
// sequence. It is all-or-nothing by construction: callers pass every field
// from the same sequence.
func (s *Session) Commit(email, token, userID string, expiry time.Time, patient Connection) {
	s.Email = email
	s.AuthToken = token
	s.UserID = userID
	s.TokenExpiry = expiry
	s.PatientID = patient.PatientID
	s.PatientFirstName = patient.FirstName
	s.PatientLastName = patient.LastName
	s.TargetHigh = patient.TargetHigh
	s.TargetLow = patient.TargetLow
}

// Clear resets every field to its default so a subsequent login starts from
// a known baseline. The target range goes back to 180/70, not zero.
func (s *Session) Clear() {
	s.Email = ""
	s.AuthToken = ""
	s.UserID = ""
	s.TokenExpiry = time.Time{}
	s.PatientID = ""
	s.PatientFirstName = ""
	s.PatientLastName = ""
	s.TargetHigh = DefaultTargetHigh
	s.TargetLow = DefaultTargetLow
}

// PatientName returns "First Last" or a placeholder when no patient is set.
func (s *Session) PatientName() string {
	if s.PatientFirstName == "" || s.PatientLastName == "" {
		return "--"
	}
	return s.PatientFirstName + " " + s.PatientLastName
}
