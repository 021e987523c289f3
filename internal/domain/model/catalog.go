package model

// CatalogEntry is one claimable item on the sequential platform.
type CatalogEntry struct {
	Entity    string `json:"entity"`
	Item      string `json:"item"`
	ClaimLink string `json:"link"`
}

// Source is a place a reward can be watched from. Sources that need
// resolution point at a directory page that lists participating channels.
type Source struct {
	URL             string `json:"url"`
	NeedsResolution bool   `json:"resolve"`
}

type Reward struct {
	Name    string   `json:"name"`
	Items   []string `json:"items"`
	Sources []Source `json:"sources"`
}

type Campaign struct {
	Game      string   `json:"game"`
	Rewards   []Reward `json:"rewards"`
	Connected bool     `json:"connected"`
}

// FindCampaign returns the campaign for game, if listed.
func FindCampaign(campaigns []Campaign, game string) (Campaign, bool) {
	for _, c := range campaigns {
		if c.Game == game {
			return c, true
		}
	}
	return Campaign{}, false
}

// FindReward returns the named reward of the campaign, if listed.
func (c Campaign) FindReward(name string) (Reward, bool) {
	for _, r := range c.Rewards {
		if r.Name == name {
			return r, true
		}
	}
	return Reward{}, false
}

// ProgressSample is what one inventory checkpoint observed for a reward.
type ProgressSample struct {
	RewardAvailable bool
	LongestMinutes  int
	Percentage      int
	Claimed         []string
}
