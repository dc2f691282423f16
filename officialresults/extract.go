package officialresults

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const (
	scoreSeparator = "\u2013"
	penaltiesLabel = "Penalties"
)

// GroupHeading names a group as the results page titles it.
type GroupHeading struct {
	Index         int
	DescriptionEN string
}

type Team struct {
	Description string
	Score       *int
	// Won is set only when the match was decided on penalties.
	Won *bool
}

type Match struct {
	GroupIndex int
	Index      int
	Team1      Team
	Team2      Team
}

// Extract walks the page in document order. A span.mw-headline whose text is a known
// group description opens that group; every div.footballbox until the next known
// heading is one of its matches, numbered from 1.
func Extract(r io.Reader, groups []GroupHeading) ([]Match, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	byDescription := make(map[string]int, len(groups))
	for _, g := range groups {
		byDescription[g.DescriptionEN] = g.Index
	}

	var (
		matches    []Match
		current    int
		matchIndex int
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "span" && hasClass(n, "mw-headline"):
				if index, ok := byDescription[strings.TrimSpace(textContent(n))]; ok {
					current = index
					matchIndex = 0
				}
			case n.Data == "div" && hasClass(n, "footballbox"):
				if current != 0 {
					matchIndex++
					matches = append(matches, parseFootballBox(n, current, matchIndex))
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return matches, nil
}

func parseFootballBox(box *html.Node, groupIndex, index int) Match {
	match := Match{GroupIndex: groupIndex, Index: index}

	if th := findElement(box, "th", "fhome"); th != nil {
		match.Team1.Description = cleanText(textContent(th))
	}
	if th := findElement(box, "th", "faway"); th != nil {
		match.Team2.Description = cleanText(textContent(th))
	}
	if th := findElement(box, "th", "fscore"); th != nil {
		match.Team1.Score, match.Team2.Score = parseScore(textContent(th))
	}

	if won, ok := parsePenalties(box); ok {
		lost := !won
		match.Team1.Won = &won
		match.Team2.Won = &lost
	}
	return match
}

// parseScore reads "2–1". A side that is not a number stays nil.
func parseScore(text string) (*int, *int) {
	parts := strings.Split(cleanText(text), scoreSeparator)
	if len(parts) != 2 {
		return nil, nil
	}
	return atoi(parts[0]), atoi(parts[1])
}

// parsePenalties finds the "Penalties" link and reads the shoot-out score from the next th.
func parsePenalties(box *html.Node) (bool, bool) {
	link := findLink(box, penaltiesLabel)
	if link == nil {
		return false, false
	}

	th := nextElement(link, box, "th")
	if th == nil {
		return false, false
	}

	score1, score2 := parseScore(textContent(th))
	if score1 == nil || score2 == nil {
		return false, false
	}
	return *score1 > *score2, true
}

func atoi(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

func cleanText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", ""))
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

func findElement(root *html.Node, tag, class string) *html.Node {
	if root.Type == html.ElementNode && root.Data == tag && (class == "" || hasClass(root, class)) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag, class); found != nil {
			return found
		}
	}
	return nil
}

func findLink(root *html.Node, text string) *html.Node {
	if root.Type == html.ElementNode && root.Data == "a" && strings.TrimSpace(textContent(root)) == text {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := findLink(c, text); found != nil {
			return found
		}
	}
	return nil
}

// nextElement returns the first tag element after n in document order, staying inside root.
func nextElement(n, root *html.Node, tag string) *html.Node {
	for cur := n; cur != nil && cur != root; cur = cur.Parent {
		for sib := cur.NextSibling; sib != nil; sib = sib.NextSibling {
			if found := findElement(sib, tag, ""); found != nil {
				return found
			}
		}
	}
	return nil
}
