package embedgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snippet(n int) string {
	return `<blockquote class="instagram-media" data-instgrm-permalink="https://www.instagram.com/p/POST` +
		string(rune('0'+n)) + `/" data-instgrm-version="14" style=" background:#FFF; border:0; margin: 1px;">` +
		`<div><a href="https://www.instagram.com/p/POST` + string(rune('0'+n)) + `/" target="_blank">View</a></div></blockquote>`
}

const targetPage = `<html><body>
<main class="snap-container">
        <!-- Post 1 -->
        <section class="snap-section"><div class="ig-post-wrapper">old</div></section>
        <!-- Post 2 -->
        <section class="snap-section"><div class="ig-post-wrapper">old</div></section>
</main>
<footer>keep</footer>
</body></html>`

func TestFindSnippets(t *testing.T) {
	src := "# links\n" + snippet(1) + "\n<script async src=\"//www.instagram.com/embed.js\"></script>\n" +
		snippet(2) + "\ntext\n" + snippet(3)
	got := FindSnippets(src)
	require.Len(t, got, 3)
	assert.Contains(t, got[1], "POST2")
}

func TestCleanSnippet(t *testing.T) {
	out, err := CleanSnippet(snippet(1))
	require.NoError(t, err)
	assert.Contains(t, out, `class="instagram-media ig-fallback-styled"`)
	assert.NotContains(t, out, "background:#FFF")
	assert.Contains(t, out, `rel="noopener"`)
	assert.Contains(t, out, `data-instgrm-permalink="https://www.instagram.com/p/POST1/"`)
}

func TestBuildSectionsBackLinkOnLastOnly(t *testing.T) {
	out, err := BuildSections([]string{snippet(1), snippet(2), snippet(3)}, DefaultBackLink)
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out, `<section class="snap-section">`))
	assert.Equal(t, 1, strings.Count(out, "floating-back"))
	for _, marker := range []string{"<!-- Post 1 -->", "<!-- Post 2 -->", "<!-- Post 3 -->"} {
		assert.Contains(t, out, marker)
	}
	assert.Greater(t, strings.Index(out, "floating-back"), strings.Index(out, "<!-- Post 3 -->"))
	assert.Contains(t, out, "กลับหน้าแรก")
}

func TestReplaceRegion(t *testing.T) {
	out, err := ReplaceRegion(targetPage, "NEW")
	require.NoError(t, err)
	assert.NotContains(t, out, "old")
	assert.Contains(t, out, "NEW\n</main>")
	assert.Contains(t, out, "<footer>keep</footer>")

	_, err = ReplaceRegion("<html></html>", "NEW")
	assert.ErrorIs(t, err, ErrMarkersNotFound)
}

func TestEnsureFallbackCSS(t *testing.T) {
	css, changed := EnsureFallbackCSS("body{}")
	assert.True(t, changed)
	assert.Contains(t, css, ".ig-fallback-styled")

	again, changed := EnsureFallbackCSS(css)
	assert.False(t, changed)
	assert.Equal(t, css, again)
}

func writeFixture(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir, "linkIG.md", snippet(1)+"\n"+snippet(2)+"\n"+snippet(3))
	target := writeFixture(t, dir, "special_post.html", targetPage)
	css := writeFixture(t, dir, "style.css", "body{}\n")

	res, err := Run(Options{Source: src, Target: target, CSS: css})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Posts)
	assert.True(t, res.CSSUpdated)

	page, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(page), `<section class="snap-section">`))
	assert.Equal(t, 1, strings.Count(string(page), "floating-back"))
	assert.Contains(t, string(page), "<footer>keep</footer>")

	res, err = Run(Options{Source: src, Target: target, CSS: css})
	require.NoError(t, err)
	assert.False(t, res.CSSUpdated)
}

func TestRunLeavesTargetUntouchedOnError(t *testing.T) {
	dir := t.TempDir()
	target := writeFixture(t, dir, "special_post.html", targetPage)

	empty := writeFixture(t, dir, "empty.md", "no embeds here")
	_, err := Run(Options{Source: empty, Target: target})
	assert.ErrorIs(t, err, ErrNoSnippets)

	src := writeFixture(t, dir, "linkIG.md", snippet(1))
	bare := writeFixture(t, dir, "bare.html", "<html></html>")
	_, err = Run(Options{Source: src, Target: bare})
	assert.ErrorIs(t, err, ErrMarkersNotFound)

	page, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, targetPage, string(page))
	page, err = os.ReadFile(bare)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(page))
}
