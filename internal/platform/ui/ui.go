package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/pterm/pterm"
)

var (
	multi    *pterm.MultiPrinter
	spinners = make(map[int]*pterm.SpinnerPrinter)
	states   = make(map[int]*blockState)
	mu       sync.Mutex
)

type blockState struct {
	session model.Session
	status  string
	delay   time.Duration
}

func StartUISystem() {
	m, _ := pterm.DefaultMultiPrinter.Start()
	multi = m
}

func StopUISystem() {
	mu.Lock()
	defer mu.Unlock()
	if multi != nil {
		multi.Stop()
		multi = nil
	}
}

// UpdateStatus sets the status line of the session's block.
func UpdateStatus(session model.Session, status string, remainingDelay time.Duration) {
	mu.Lock()
	defer mu.Unlock()

	st := stateFor(session)
	st.status = status
	st.delay = remainingDelay
	render(session.Idx, st)
}

// Apply mutates the stored session of a block and re-renders it.
func Apply(session model.Session, fn func(*model.Session)) {
	mu.Lock()
	defer mu.Unlock()

	st := stateFor(session)
	fn(&st.session)
	render(session.Idx, st)
}

func SetSpinnerSuccess(session model.Session, finalMessage string) {
	mu.Lock()
	defer mu.Unlock()
	st := stateFor(session)
	st.status = finalMessage
	st.delay = 0
	render(session.Idx, st)
	if spinner, ok := spinners[session.Idx]; ok {
		spinner.Success()
		delete(spinners, session.Idx)
	}
}

func SetSpinnerError(session model.Session, finalMessage string) {
	mu.Lock()
	defer mu.Unlock()
	st := stateFor(session)
	st.status = finalMessage
	st.delay = 0
	render(session.Idx, st)
	if spinner, ok := spinners[session.Idx]; ok {
		spinner.Fail()
		delete(spinners, session.Idx)
	}
}

func stateFor(session model.Session) *blockState {
	st, ok := states[session.Idx]
	if !ok {
		st = &blockState{session: session}
		states[session.Idx] = st
	}
	return st
}

func render(idx int, st *blockState) {
	if multi == nil {
		return
	}
	content := blockContent(st)
	if spinner, ok := spinners[idx]; ok {
		spinner.UpdateText(content)
		return
	}
	spinner, _ := pterm.DefaultSpinner.
		WithWriter(multi.NewWriter()).
		WithRemoveWhenDone(false).
		Start(content)
	spinners[idx] = spinner
}

func blockContent(st *blockState) string {
	s := st.session

	current := defaultString(s.Current, "-")
	progress := "-"
	if s.Current != "" {
		progress = fmt.Sprintf("%s %d%%", progressBar(s.Progress, 20), clamp(s.Progress))
		if s.Minutes > 0 {
			progress += " · " + FormatMinutes(s.Minutes)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n=============== %s ================\n", s.Platform)
	fmt.Fprintf(&b, "Login    : %s\n", defaultString(s.LoginStatus, "WAITING"))
	fmt.Fprintf(&b, "Claim    : %s\n", defaultString(s.ClaimStatus, "WAITING"))
	fmt.Fprintf(&b, "Current  : %s\n", current)
	fmt.Fprintf(&b, "Progress : %s\n", progress)
	fmt.Fprintf(&b, "Claimed  : %d   Failed : %d\n", s.Claimed, s.Failed)
	if s.Points != "" {
		fmt.Fprintf(&b, "Points   : %s\n", s.Points)
	}
	fmt.Fprintf(&b, "\nStatus   : %s\n", st.status)
	fmt.Fprintf(&b, "Delay    : %s\n", FormatDelay(st.delay))
	if len(s.Log) > 0 {
		b.WriteString("-------------------------------------------\n")
		for _, line := range s.Log {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString("===========================================")
	return b.String()
}

func FormatDelay(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d H %02d M %02d S", h, m, s)
}

// FormatMinutes renders a remaining duration the way the drops page words it.
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := minutes / 60
	rest := minutes % 60
	out := fmt.Sprintf("%d hour", hours)
	if hours > 1 {
		out += "s"
	}
	if rest > 0 {
		out += fmt.Sprintf(" %d minutes", rest)
	}
	return out
}

func progressBar(percentage, width int) string {
	filled := clamp(percentage) * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func clamp(percentage int) int {
	if percentage < 0 {
		return 0
	}
	if percentage > 100 {
		return 100
	}
	return percentage
}

func defaultString(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
