package model

// Event is a core to UI notification. The set of implementations is closed.
type Event interface {
	isEvent()
}

type Severity int

const (
	SeverityDefault Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "default"
	}
}

// Message is a line for the user-facing terminal log.
type Message struct {
	Platform    string
	Text        string
	Severity    Severity
	TypingSpeed int
}

// LoaderHidden tells the UI that the long initial load finished.
type LoaderHidden struct {
	Platform string
}

type SessionStatus struct {
	Platform string
	LoggedIn bool
}

// LoginStatus maps reference URLs to whether a session exists.
type LoginStatus struct {
	Status map[string]bool
}

type SettingsValue struct {
	Key   string
	Value any
	Found bool
}

type ClaimStatus int

const (
	ClaimSucceeded ClaimStatus = iota
	ClaimFailed
	ClaimFinished
)

func (s ClaimStatus) String() string {
	switch s {
	case ClaimSucceeded:
		return "true"
	case ClaimFailed:
		return "false"
	default:
		return "finish"
	}
}

// Claiming reports one sequential pipeline outcome. Entity and Item are empty
// for ClaimFinished.
type Claiming struct {
	Entity string
	Item   string
	Status ClaimStatus
}

type CampaignsDisplay struct {
	Campaigns   []Campaign
	InitialLoad bool
}

// RewardProgress carries the slowest item's percentage. Minutes is zero when
// unknown.
type RewardProgress struct {
	Percentage int
	Minutes    int
	Game       string
	Reward     string
}

// ClaimEnabled re-enables the claim affordance.
type ClaimEnabled struct{}

type PointsStatus int

const (
	PointsUpdate PointsStatus = iota
	PointsFinished
)

type PlatinumPoints struct {
	Claimed string
	Total   string
	Status  PointsStatus
}

// Notification is a user-visible completion notice.
type Notification struct {
	Title string
	Body  string
}

func (Message) isEvent()          {}
func (LoaderHidden) isEvent()     {}
func (SessionStatus) isEvent()    {}
func (LoginStatus) isEvent()      {}
func (SettingsValue) isEvent()    {}
func (Claiming) isEvent()         {}
func (CampaignsDisplay) isEvent() {}
func (RewardProgress) isEvent()   {}
func (ClaimEnabled) isEvent()     {}
func (PlatinumPoints) isEvent()   {}
func (Notification) isEvent()     {}
