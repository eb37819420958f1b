package embedgen

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	StartMarker   = "<!-- Post 1 -->"
	sectionClose  = "</section>"
	fallbackClass = "ig-fallback-styled"
	embedClass    = "instagram-media"
)

var (
	ErrNoSnippets      = errors.New("no Instagram blockquotes found")
	ErrMarkersNotFound = errors.New("markers not found in target")
)

var snippetPattern = regexp.MustCompile(`(?s)<blockquote class="instagram-media".*?</blockquote>`)

// FallbackCSS replaces the inline style the embed snippets ship with.
const FallbackCSS = `
/* Instagram Embed Fallback Style */
.ig-fallback-styled {
    background: #FFF;
    border: 0;
    border-radius: 3px;
    box-shadow: 0 0 1px 0 rgba(0,0,0,0.5), 0 1px 10px 0 rgba(0,0,0,0.15);
    margin: 1px;
    max-width: 540px;
    min-width: 326px;
    padding: 0;
    width: 99.375%;
    width: -webkit-calc(100% - 2px);
    width: calc(100% - 2px);
}
`

type BackLink struct {
	Href  string
	Label string
}

var DefaultBackLink = BackLink{Href: "index.html", Label: "กลับหน้าแรก"}

// FindSnippets returns every embed blockquote in src, in order.
func FindSnippets(src string) []string {
	return snippetPattern.FindAllString(src, -1)
}

// CleanSnippet tags the embed with the fallback class, drops its inline
// presentation style and adds rel="noopener" to links opening a new tab.
func CleanSnippet(snippet string) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(snippet), ctx)
	if err != nil {
		return "", fmt.Errorf("parse snippet: %w", err)
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Blockquote:
				cleanBlockquote(n)
			case atom.A:
				hardenLink(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		walk(n)
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("render snippet: %w", err)
		}
	}
	return buf.String(), nil
}

func cleanBlockquote(n *html.Node) {
	classIdx := -1
	for i, a := range n.Attr {
		if a.Key == "class" {
			classIdx = i
		}
	}
	if classIdx < 0 || !hasClass(n.Attr[classIdx].Val, embedClass) {
		return
	}
	if !hasClass(n.Attr[classIdx].Val, fallbackClass) {
		n.Attr[classIdx].Val = strings.TrimSpace(n.Attr[classIdx].Val + " " + fallbackClass)
	}

	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key == "style" && strings.Contains(strings.ReplaceAll(a.Val, " ", ""), "background:#FFF") {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}

func hardenLink(n *html.Node) {
	blank := false
	relIdx := -1
	for i, a := range n.Attr {
		switch a.Key {
		case "target":
			blank = a.Val == "_blank"
		case "rel":
			relIdx = i
		}
	}
	if !blank {
		return
	}
	if relIdx < 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "rel", Val: "noopener"})
		return
	}
	if !hasClass(n.Attr[relIdx].Val, "noopener") {
		n.Attr[relIdx].Val = strings.TrimSpace(n.Attr[relIdx].Val + " noopener")
	}
}

func hasClass(list, name string) bool {
	for _, f := range strings.Fields(list) {
		if f == name {
			return true
		}
	}
	return false
}

// BuildSections renders one snap section per snippet. The last section gets
// the back link.
func BuildSections(snippets []string, back BackLink) (string, error) {
	var b strings.Builder
	for i, s := range snippets {
		clean, err := CleanSnippet(s)
		if err != nil {
			return "", fmt.Errorf("snippet %d: %w", i+1, err)
		}
		fmt.Fprintf(&b, "\n        <!-- Post %d -->\n", i+1)
		b.WriteString("        <section class=\"snap-section\">\n")
		b.WriteString("            <div class=\"ig-post-wrapper\">\n")
		b.WriteString("                " + clean + "\n")
		b.WriteString("            </div>\n")
		if i == len(snippets)-1 {
			fmt.Fprintf(&b, "            <a href=\"%s\" class=\"back-btn floating-back\">\n", html.EscapeString(back.Href))
			fmt.Fprintf(&b, "                <i class=\"ph-bold ph-arrow-left\"></i> %s\n", html.EscapeString(back.Label))
			b.WriteString("            </a>\n")
		}
		b.WriteString("        </section>\n")
	}
	return b.String(), nil
}

// ReplaceRegion swaps everything from the first start marker through the
// last closing section tag for sections.
func ReplaceRegion(target, sections string) (string, error) {
	start := strings.Index(target, StartMarker)
	last := strings.LastIndex(target, sectionClose)
	if start == -1 || last == -1 || last < start {
		return "", ErrMarkersNotFound
	}
	end := last + len(sectionClose)
	return target[:start] + sections + target[end:], nil
}

// EnsureFallbackCSS appends the fallback rule unless css already defines it.
func EnsureFallbackCSS(css string) (string, bool) {
	if strings.Contains(css, "."+fallbackClass) {
		return css, false
	}
	return css + FallbackCSS, true
}

type Options struct {
	Source string
	Target string
	CSS    string
	Back   BackLink
}

type Result struct {
	Posts      int
	CSSUpdated bool
}

// Run regenerates the post region of the target page from the snippets in
// the source file. Nothing is written unless every step succeeds.
func Run(opts Options) (Result, error) {
	if opts.Back == (BackLink{}) {
		opts.Back = DefaultBackLink
	}
	src, err := os.ReadFile(opts.Source)
	if err != nil {
		return Result{}, fmt.Errorf("read source: %w", err)
	}
	target, err := os.ReadFile(opts.Target)
	if err != nil {
		return Result{}, fmt.Errorf("read target: %w", err)
	}
	targetInfo, err := os.Stat(opts.Target)
	if err != nil {
		return Result{}, err
	}

	snippets := FindSnippets(string(src))
	if len(snippets) == 0 {
		return Result{}, ErrNoSnippets
	}
	sections, err := BuildSections(snippets, opts.Back)
	if err != nil {
		return Result{}, err
	}
	out, err := ReplaceRegion(string(target), sections)
	if err != nil {
		return Result{}, err
	}

	var css string
	var cssMode os.FileMode = 0o644
	cssChanged := false
	if opts.CSS != "" {
		b, err := os.ReadFile(opts.CSS)
		if err != nil {
			return Result{}, fmt.Errorf("read css: %w", err)
		}
		if info, err := os.Stat(opts.CSS); err == nil {
			cssMode = info.Mode().Perm()
		}
		css, cssChanged = EnsureFallbackCSS(string(b))
	}

	if err := os.WriteFile(opts.Target, []byte(out), targetInfo.Mode().Perm()); err != nil {
		return Result{}, fmt.Errorf("write target: %w", err)
	}
	if cssChanged {
		if err := os.WriteFile(opts.CSS, []byte(css), cssMode); err != nil {
			return Result{}, fmt.Errorf("write css: %w", err)
		}
	}
	return Result{Posts: len(snippets), CSSUpdated: cssChanged}, nil
}
