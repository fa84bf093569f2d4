package options

import (
	"fmt"
	"strings"

	"github.com/WessleyAI/whachapay/engine/domain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderFragment renders l as a run of <option> tags.
func RenderFragment(l domain.OptionList) string {
	var b strings.Builder
	for _, o := range l {
		fmt.Fprintf(&b, `<option value="%s">%s</option>`, html.EscapeString(o.Value), html.EscapeString(o.Label))
	}
	return b.String()
}

// ParseFragment reads the <option> tags of an HTML fragment, in order. An
// option without a value attribute uses its text, as browsers do.
func ParseFragment(fragment string) (domain.OptionList, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "select", DataAtom: atom.Select}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse options fragment: %w", err)
	}

	out := domain.OptionList{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Option {
			label := strings.TrimSpace(textOf(n))
			value, ok := attr(n, "value")
			if !ok {
				value = label
			}
			out = append(out, domain.Option{Value: value, Label: label})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}
