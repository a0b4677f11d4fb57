package extract

import (
	"bufio"
	"strings"

	"golang.org/x/net/html"
)

// Row is one label/value line of a specification table
type Row struct {
	Section string
	Label   string
	Value   string
}

// Document is the tabular view of a specification page
type Document struct {
	Title string
	Rows  []Row
}

// ParsePage reads spec tables from HTML or markdown content
func ParsePage(content, contentType string) Document {
	if isHTML(content, contentType) {
		return parseHTML(content)
	}
	return parseMarkdown(content)
}

func parseHTML(content string) Document {
	var doc Document

	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return doc
	}

	var pageTitle string
	var section string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if pageTitle == "" {
					pageTitle = nodeText(n)
				}
				return
			case "h1":
				if doc.Title == "" {
					doc.Title = nodeText(n)
				}
				return
			case "table":
				section = ""
			case "tr":
				section = doc.addCells(section, rowCells(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if doc.Title == "" {
		doc.Title = pageTitle
	}
	return doc
}

type cell struct {
	header bool
	text   string
}

func rowCells(tr *html.Node) []cell {
	var cells []cell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "th" && c.Data != "td") {
			continue
		}
		cells = append(cells, cell{header: c.Data == "th", text: nodeText(c)})
	}
	return cells
}

// addCells appends the row described by cells and returns the section in effect afterwards
func (d *Document) addCells(section string, cells []cell) string {
	var headers, data []string
	for _, c := range cells {
		if c.header {
			headers = append(headers, c.text)
		} else {
			data = append(data, c.text)
		}
	}

	switch {
	case len(headers) == 1 && len(data) == 1:
		d.addRow(section, headers[0], data[0])
	case len(headers) == 1 && len(data) >= 2:
		section = headers[0]
		d.addRow(section, data[0], strings.Join(data[1:], " "))
	case len(headers) >= 1 && len(data) == 0:
		section = headers[0]
	case len(data) >= 2:
		d.addRow(section, data[0], strings.Join(data[1:], " "))
	}
	return section
}

// addRow appends a row; an empty label continues the previous row's value
func (d *Document) addRow(section, label, value string) {
	label = strings.TrimSpace(label)
	value = strings.TrimSpace(value)
	if label == "" {
		if value != "" && len(d.Rows) > 0 {
			last := &d.Rows[len(d.Rows)-1]
			if last.Value == "" {
				last.Value = value
			} else {
				last.Value += ", " + value
			}
		}
		return
	}
	d.Rows = append(d.Rows, Row{Section: strings.TrimSpace(section), Label: label, Value: value})
}

// nodeText returns the whitespace-collapsed text of a node
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			case "br":
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapse(b.String())
}

// collapse joins non-empty lines with ", " and squeezes whitespace within them
func collapse(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, ", ")
}

func parseMarkdown(content string) Document {
	var doc Document
	var section string

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "#") {
			level := len(line) - len(strings.TrimLeft(line, "#"))
			heading := strings.TrimSpace(strings.TrimLeft(line, "#"))
			if level == 1 && doc.Title == "" {
				doc.Title = heading
			} else if heading != "" {
				section = heading
			}
			continue
		}

		if !strings.Contains(line, "|") {
			continue
		}
		cells := splitPipeRow(line)
		if isSeparatorRow(cells) {
			continue
		}
		switch {
		case len(cells) >= 3:
			if s := strings.TrimSpace(cells[0]); s != "" {
				section = s
			}
			doc.addRow(section, cells[1], strings.Join(cells[2:], " "))
		case len(cells) == 2:
			doc.addRow(section, cells[0], cells[1])
		}
	}
	return doc
}

func splitPipeRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.Join(strings.Fields(cells[i]), " ")
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}
