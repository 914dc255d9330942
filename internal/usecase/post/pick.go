package post

import (
	"regexp"
	"strings"
	"time"
)

var (
	tokenRe = regexp.MustCompile(`[a-z0-9]+|[\p{Han}]+`)
	cjkRe   = regexp.MustCompile(`^[\p{Han}]+$`)
)

// tokens splits text into lowercase word tokens. Chinese runs additionally
// yield bigrams so fuzzy hint matching works without a segmenter.
func tokens(text string) map[string]struct{} {
	out := map[string]struct{}{}
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return out
	}
	for _, part := range tokenRe.FindAllString(text, -1) {
		if part == "" {
			continue
		}
		out[part] = struct{}{}
		if cjkRe.MatchString(part) {
			runes := []rune(part)
			if len(runes) <= 4 {
				for _, r := range runes {
					out[string(r)] = struct{}{}
				}
			}
			for i := 0; i+1 < len(runes); i++ {
				out[string(runes[i:i+2])] = struct{}{}
			}
		}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// relevanceScore weights title matches heavily and rewards an exact
// substring hit.
func relevanceScore(item NewsItem, hint string) float64 {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return 0
	}
	hintLC := strings.ToLower(hint)
	itemText := strings.ToLower(item.Title + " " + item.Domain)

	hintTokens := tokens(hintLC)
	if len(hintTokens) == 0 {
		return 0
	}
	titleHit := overlap(hintTokens, tokens(item.Title))
	allHit := overlap(hintTokens, tokens(itemText))

	score := (2.0*float64(titleHit) + float64(allHit)) / float64(len(hintTokens))
	if strings.Contains(itemText, hintLC) {
		score += 1.0
	}
	return score
}

func parseSeenDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"20060102T150405Z", "2006-01-02T15:04:05Z", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// pickBestNews returns the highest scoring candidate, breaking ties by
// recency.
func pickBestNews(items []NewsItem, hint string) NewsItem {
	best := items[0]
	bestScore := -1.0
	var bestSeen time.Time
	for _, item := range items {
		score := relevanceScore(item, hint)
		seen := parseSeenDate(item.SeenDate)
		if score > bestScore || (score == bestScore && seen.After(bestSeen)) {
			best = item
			bestScore = score
			bestSeen = seen
		}
	}
	return best
}

// pickNewsItems picks one best match when a hint is given, otherwise up to
// count distinct items in feed order.
func pickNewsItems(items []NewsItem, hint string, count int) []NewsItem {
	if count <= 0 || len(items) == 0 {
		return nil
	}
	if strings.TrimSpace(hint) != "" {
		return []NewsItem{pickBestNews(items, hint)}
	}
	var picked []NewsItem
	seen := map[string]struct{}{}
	for _, item := range items {
		key := item.URL
		if key == "" {
			key = item.Title
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		picked = append(picked, item)
		if len(picked) >= count {
			break
		}
	}
	return picked
}
