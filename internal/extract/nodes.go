// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Scholar markup selectors.
const (
	resultSelector  = "div.gs_ri"
	pdfSelector     = "div.gs_or_ggsm"
	titleSelector   = "h3.gs_rt"
	bylineSelector  = "div.gs_a"
	footerSelector  = "div.gs_fl"
	citedByMarker   = "Cited by"
	sourceSeparator = " - "
	yearTokenLength = 4
)

// NodeKind classifies an element of the parsed page.
type NodeKind int

const (
	NodeOther NodeKind = iota
	NodeResult
	NodePDF
)

// Node is one element of a result block's sibling group. Group identifies
// the parent element; nodes of different groups are never siblings.
type Node struct {
	Kind  NodeKind
	Group int
	Sel   *goquery.Selection
}

// Page is the parsed results page as an ordered node sequence, in
// document order.
type Page struct {
	Nodes []Node
}

// ParsePage parses markup and collects the sibling groups that contain
// result blocks. Every element child of a result block's parent becomes a
// node, so positional relationships between siblings survive.
func ParsePage(markup string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	page := &Page{}
	var parents []*goquery.Selection
	doc.Find(resultSelector).Each(func(_ int, s *goquery.Selection) {
		parent := s.Parent()
		for _, p := range parents {
			if p.IsSelection(parent) {
				return
			}
		}
		parents = append(parents, parent)
		group := len(parents) - 1
		parent.Children().Each(func(_ int, child *goquery.Selection) {
			page.Nodes = append(page.Nodes, Node{Kind: classify(child), Group: group, Sel: child})
		})
	})
	return page, nil
}

func classify(s *goquery.Selection) NodeKind {
	switch {
	case s.Is(resultSelector):
		return NodeResult
	case s.Is(pdfSelector):
		return NodePDF
	default:
		return NodeOther
	}
}

// Results returns the indexes of the result nodes.
func (p *Page) Results() []int {
	var idx []int
	for i, n := range p.Nodes {
		if n.Kind == NodeResult {
			idx = append(idx, i)
		}
	}
	return idx
}

// pdfContainerFor returns the PDF container that belongs to the result
// node at i: the sibling immediately before it, when that sibling is a PDF
// node of the same group. Any other element in between breaks the tie.
func pdfContainerFor(nodes []Node, i int) *goquery.Selection {
	if i <= 0 {
		return nil
	}
	prev := nodes[i-1]
	if prev.Group != nodes[i].Group || prev.Kind != NodePDF {
		return nil
	}
	return prev.Sel
}
