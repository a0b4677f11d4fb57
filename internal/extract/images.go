package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var markdownImage = regexp.MustCompile(`!\[[^\]]*\]\(\s*<?([^)\s>]+)`)

// ImageCandidates collects absolute image URLs referenced by a page, in page order, without duplicates
func ImageCandidates(content, contentType, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var raw []string
	if isHTML(content, contentType) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			return nil
		}
		doc.Find("img").Each(func(_ int, s *goquery.Selection) {
			for _, attr := range []string{"src", "data-src"} {
				if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
					raw = append(raw, v)
				}
			}
		})
	} else {
		for _, m := range markdownImage.FindAllStringSubmatch(content, -1) {
			raw = append(raw, m[1])
		}
	}

	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, src := range raw {
		src = strings.TrimSpace(src)
		if strings.HasPrefix(strings.ToLower(src), "data:") {
			continue
		}
		target, err := base.Parse(src)
		if err != nil {
			continue
		}
		if scheme := strings.ToLower(target.Scheme); scheme != "http" && scheme != "https" {
			continue
		}
		target.Fragment = ""
		resolved := target.String()
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
	}
	return out
}
