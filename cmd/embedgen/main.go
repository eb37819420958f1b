// Command embedgen rebuilds the post sections of the special posts page from
// the Instagram embed snippets collected in a markdown file.
package main

import (
	"flag"
	"fmt"
	"os"

	"hny-greeting-service/internal/embedgen"
)

func main() {
	opts := embedgen.Options{Back: embedgen.DefaultBackLink}
	flag.StringVar(&opts.Source, "source", "linkIG.md", "file holding the embed snippets")
	flag.StringVar(&opts.Target, "target", "special_post.html", "page whose post region is rewritten")
	flag.StringVar(&opts.CSS, "css", "", "stylesheet that receives the fallback embed rule (optional)")
	flag.StringVar(&opts.Back.Href, "back-href", opts.Back.Href, "back link target on the last post")
	flag.StringVar(&opts.Back.Label, "back-label", opts.Back.Label, "back link label on the last post")
	flag.Parse()

	res, err := embedgen.Run(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Found %d Instagram posts.\n", res.Posts)
	fmt.Printf("Updated %s with %d posts.\n", opts.Target, res.Posts)
	if res.CSSUpdated {
		fmt.Printf("Appended fallback style to %s.\n", opts.CSS)
	}
}
