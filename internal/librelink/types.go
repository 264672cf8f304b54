package librelink

import (
	"time"

	"github.com/mrcode/librelink-follower/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthTicket is the provider-issued bearer credential.
type AuthTicket struct {
	Token    string `json:"token"`
	Expires  int64  `json:"expires"` // unix seconds
	Duration int64  `json:"duration"`
}

// ExpiryTime returns the ticket expiry as a time.Time.
func (t *AuthTicket) ExpiryTime() time.Time {
	return time.Unix(t.Expires, 0)
}

type loginUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Country   string `json:"country"`
}

type loginData struct {
	User       *loginUser  `json:"user"`
	AuthTicket *AuthTicket `json:"authTicket"`
	Redirect   bool        `json:"redirect"`
	Region     string      `json:"region"`
}

type loginResponse struct {
	Status int        `json:"status"`
	Data   *loginData `json:"data"`
}

type connectionsResponse struct {
	Status int                 `json:"status"`
	Data   []models.Connection `json:"data"`
	Ticket *AuthTicket         `json:"ticket"`
}

type graphResponse struct {
	Status int         `json:"status"`
	Data   *GraphData  `json:"data"`
	Ticket *AuthTicket `json:"ticket"`
}

// GraphData is the per-patient payload: the active connection (carrying the
// latest measurement) plus the recent-history window.
type GraphData struct {
	Connection *models.Connection          `json:"connection"`
	GraphData  []models.GlucoseMeasurement `json:"graphData"`
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	UserID     string
	Token      string
	Expiry     time.Time
	Redirected bool
	Region     string
}
