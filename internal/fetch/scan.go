package fetch

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Link is one anchor from the quick scan.
type Link struct {
	URL  string
	Text string
}

// ScanResult is a lightweight tokenizer pass over fetched markup. The
// access analyzer needs the complete link list, which the candidate
// extractor deliberately filters down to API-looking anchors.
type ScanResult struct {
	Title            string
	Links            []Link
	ScriptSrcs       []string
	HasPasswordInput bool
}

// Scan tokenizes markup without building a tree. Malformed input ends
// the scan early with whatever was collected; it never errors.
func Scan(body []byte) *ScanResult {
	result := &ScanResult{
		Links:      make([]Link, 0),
		ScriptSrcs: make([]string, 0),
	}

	z := html.NewTokenizer(bytes.NewReader(body))
	var pendingLink *Link
	inTitle := false

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if pendingLink != nil {
				result.Links = append(result.Links, *pendingLink)
			}
			return result

		case html.StartTagToken, html.SelfClosingTagToken:
			token := z.Token()
			switch token.Data {
			case "a":
				if pendingLink != nil {
					result.Links = append(result.Links, *pendingLink)
					pendingLink = nil
				}
				if href := attr(token, "href"); href != "" {
					pendingLink = &Link{URL: href}
				}
			case "script":
				if src := attr(token, "src"); src != "" {
					result.ScriptSrcs = append(result.ScriptSrcs, src)
				}
			case "input":
				if strings.EqualFold(attr(token, "type"), "password") {
					result.HasPasswordInput = true
				}
			case "title":
				inTitle = tt == html.StartTagToken
			}

		case html.TextToken:
			text := string(z.Text())
			if inTitle {
				result.Title += text
			}
			if pendingLink != nil {
				pendingLink.Text += text
			}

		case html.EndTagToken:
			token := z.Token()
			switch token.Data {
			case "a":
				if pendingLink != nil {
					pendingLink.Text = strings.TrimSpace(pendingLink.Text)
					result.Links = append(result.Links, *pendingLink)
					pendingLink = nil
				}
			case "title":
				inTitle = false
				result.Title = strings.TrimSpace(result.Title)
			}
		}
	}
}

func attr(token html.Token, name string) string {
	for _, a := range token.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
