package model

// Session is the per-platform run state rendered by the terminal dashboard.
type Session struct {
	Platform    string
	Idx         int
	LoginStatus string
	ClaimStatus string
	Current     string
	Progress    int
	Minutes     int
	Claimed     int
	Failed      int
	Points      string
	Log         []string
}

const maxSessionLog = 6

// AppendLog keeps the most recent lines only.
func (s *Session) AppendLog(line string) {
	if s == nil {
		return
	}
	s.Log = append(s.Log, line)
	if len(s.Log) > maxSessionLog {
		s.Log = append([]string(nil), s.Log[len(s.Log)-maxSessionLog:]...)
	}
}
