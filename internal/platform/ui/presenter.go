package ui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/pterm/pterm"
)

const (
	statusWaiting    = "WAITING"
	statusInProgress = "IN PROGRESS"
	statusDone       = "DONE"
	statusFailed     = "FAILED"

	terminatedPrefix = "Claiming terminated"
)

// SessionFor returns the dashboard session of a platform name. Unknown names
// share the last block.
func SessionFor(platform string) model.Session {
	for i, p := range model.Platforms {
		if strings.EqualFold(p.Name, platform) {
			return model.Session{Platform: p.Name, Idx: i}
		}
	}
	return model.Session{Platform: "General", Idx: len(model.Platforms)}
}

// Active reports whether the live dashboard is running.
func Active() bool {
	mu.Lock()
	defer mu.Unlock()
	return multi != nil
}

// Present renders events until done closes, then renders whatever is still
// queued.
func Present(events <-chan model.Event, done <-chan struct{}) {
	for {
		select {
		case ev := <-events:
			Handle(ev)
		case <-done:
			for {
				select {
				case ev := <-events:
					Handle(ev)
				default:
					return
				}
			}
		}
	}
}

func Handle(ev model.Event) {
	live := Active()

	switch e := ev.(type) {
	case model.Message:
		line := formatMessage(e)
		session := SessionFor(e.Platform)
		Apply(session, func(s *model.Session) { s.AppendLog(line) })
		if e.Severity == model.SeverityError && strings.HasPrefix(e.Text, terminatedPrefix) {
			SetSpinnerError(session, e.Text)
		}
		if !live {
			printMessage(e)
		}

	case model.LoaderHidden:
		Apply(SessionFor(e.Platform), func(s *model.Session) { s.ClaimStatus = statusInProgress })

	case model.SessionStatus:
		status := statusDone
		if !e.LoggedIn {
			status = statusFailed
		}
		session := SessionFor(e.Platform)
		Apply(session, func(s *model.Session) { s.LoginStatus = status })
		if !e.LoggedIn {
			SetSpinnerError(session, fmt.Sprintf("%s session is not available.", e.Platform))
		}
		if !live {
			if e.LoggedIn {
				pterm.Success.Printfln("%s session is active.", e.Platform)
			} else {
				pterm.Error.Printfln("%s session is not available.", e.Platform)
			}
		}

	case model.LoginStatus:
		printLoginStatus(e)

	case model.SettingsValue:
		if !e.Found {
			pterm.Warning.Printfln("%s is not set", e.Key)
			return
		}
		raw, err := json.Marshal(e.Value)
		if err != nil {
			pterm.Error.Printfln("%s: %v", e.Key, err)
			return
		}
		pterm.Info.Printfln("%s = %s", e.Key, raw)

	case model.Claiming:
		amazon := SessionFor(model.Amazon.Name)
		switch e.Status {
		case model.ClaimSucceeded:
			Apply(amazon, func(s *model.Session) {
				s.Claimed++
				s.Current = fmt.Sprintf("%s - %s", e.Entity, e.Item)
			})
		case model.ClaimFailed:
			Apply(amazon, func(s *model.Session) {
				s.Failed++
				s.Current = fmt.Sprintf("%s - %s", e.Entity, e.Item)
			})
		case model.ClaimFinished:
			Apply(amazon, func(s *model.Session) { s.ClaimStatus = statusDone })
			if live {
				SetSpinnerSuccess(amazon, "Claiming completed.")
			} else {
				pterm.Success.Println("Claiming completed.")
			}
		}

	case model.CampaignsDisplay:
		if live {
			Apply(SessionFor(model.Twitch.Name), func(s *model.Session) {
				s.AppendLog(fmt.Sprintf("%d open campaigns", len(e.Campaigns)))
			})
			return
		}
		if e.InitialLoad {
			printCampaigns(e.Campaigns)
		}

	case model.RewardProgress:
		Apply(SessionFor(model.Twitch.Name), func(s *model.Session) {
			s.ClaimStatus = statusInProgress
			s.Current = fmt.Sprintf("%s - %s", e.Game, e.Reward)
			s.Progress = e.Percentage
			s.Minutes = e.Minutes
		})

	case model.ClaimEnabled:
		Apply(SessionFor(model.Twitch.Name), func(s *model.Session) {
			if s.ClaimStatus == "" {
				s.ClaimStatus = statusWaiting
			}
		})

	case model.PlatinumPoints:
		nintendo := SessionFor(model.Nintendo.Name)
		switch e.Status {
		case model.PointsUpdate:
			Apply(nintendo, func(s *model.Session) {
				s.Points = fmt.Sprintf("+%s (total %s)", e.Claimed, e.Total)
			})
			if !live {
				pterm.Info.Printfln("Platinum points +%s, total %s", e.Claimed, e.Total)
			}
		case model.PointsFinished:
			Apply(nintendo, func(s *model.Session) { s.ClaimStatus = statusDone })
			if live {
				SetSpinnerSuccess(nintendo, "All points claimed!")
			} else {
				pterm.Success.Println("All points claimed!")
			}
		}

	case model.Notification:
		Apply(SessionFor(model.Twitch.Name), func(s *model.Session) {
			s.AppendLog(pterm.FgLightGreen.Sprint(e.Title + " " + e.Body))
		})
		if !live {
			pterm.DefaultBox.WithTitle(e.Title).Println(e.Body)
		}
	}
}

func formatMessage(m model.Message) string {
	switch m.Severity {
	case model.SeveritySuccess:
		return pterm.FgGreen.Sprint("✓ " + m.Text)
	case model.SeverityError:
		return pterm.FgRed.Sprint("✗ " + m.Text)
	default:
		return "› " + m.Text
	}
}

func printMessage(m model.Message) {
	if m.TypingSpeed > 0 {
		typeOut(formatMessage(m), time.Duration(m.TypingSpeed)*time.Millisecond)
		return
	}
	switch m.Severity {
	case model.SeveritySuccess:
		pterm.Success.Println(m.Text)
	case model.SeverityError:
		pterm.Error.Println(m.Text)
	default:
		pterm.Info.Println(m.Text)
	}
}

// typeOut prints text one rune at a time.
func typeOut(text string, delay time.Duration) {
	for _, r := range text {
		fmt.Print(string(r))
		time.Sleep(delay)
	}
	fmt.Println()
}

func printLoginStatus(e model.LoginStatus) {
	data := pterm.TableData{{"Platform", "Session"}}
	for _, p := range model.Platforms {
		loggedIn, ok := e.Status[p.ReferenceURL]
		if !ok {
			continue
		}
		state := pterm.FgRed.Sprint("Logged Out")
		if loggedIn {
			state = pterm.FgGreen.Sprint("Logged In")
		}
		data = append(data, []string{p.Name, state})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printCampaigns(campaigns []model.Campaign) {
	data := pterm.TableData{{"Game", "Reward", "Items", "Connected"}}
	for _, c := range campaigns {
		connected := "no"
		if c.Connected {
			connected = "yes"
		}
		if len(c.Rewards) == 0 {
			data = append(data, []string{c.Game, "-", "-", connected})
			continue
		}
		for _, r := range c.Rewards {
			data = append(data, []string{c.Game, r.Name, strings.Join(r.Items, ", "), connected})
		}
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
