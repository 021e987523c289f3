package worker

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
)

type inventoryItem struct {
	Name     string  `json:"name"`
	Progress *string `json:"progress"`
	Claimed  bool    `json:"claimed"`
}

type inventoryBlock struct {
	Items []inventoryItem `json:"items"`
}

type inventoryScan struct {
	Blocks []inventoryBlock `json:"blocks"`
}

// sampleFrom reduces an inventory scan to a progress sample. The item with
// the strictly greatest remaining time sets the percentage; a sample with no
// measurable item is unavailable.
func sampleFrom(scan inventoryScan) model.ProgressSample {
	sample := model.ProgressSample{LongestMinutes: -1, Percentage: -1}
	for _, block := range scan.Blocks {
		sample.RewardAvailable = true
		for _, item := range block.Items {
			if item.Progress != nil {
				percent, minutes := parseProgress(*item.Progress)
				if minutes > sample.LongestMinutes {
					sample.LongestMinutes = minutes
					sample.Percentage = percent
				}
			}
			if item.Claimed {
				sample.Claimed = append(sample.Claimed, item.Name)
			}
		}
	}
	if sample.LongestMinutes == -1 || sample.Percentage == -1 {
		sample.RewardAvailable = false
	}
	return sample
}

// parseProgress reads text like "55% 2 hours 10 minutes" into a percentage
// and a total minute count. Unreadable parts count as -1 and 0.
func parseProgress(text string) (percent, minutes int) {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return -1, 0
	}
	percent = leadingInt(parts[0])
	for i := 1; i < len(parts); i++ {
		n := leadingInt(parts[i-1])
		if n < 0 {
			continue
		}
		switch word := strings.ToLower(parts[i]); {
		case strings.HasPrefix(word, "hour"):
			minutes += n * 60
		case strings.HasPrefix(word, "min"):
			minutes += n
		}
	}
	return percent, minutes
}

func leadingInt(s string) int {
	end := 0
	for end < len(s) && unicode.IsDigit(rune(s[end])) {
		end++
	}
	if end == 0 {
		return -1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return -1
	}
	return n
}
