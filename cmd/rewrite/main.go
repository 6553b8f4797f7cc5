// Command rewrite applies a phrase replacement vocabulary to a content
// stream: fragmented show-text groups are reassembled, matched, and
// rewritten with their fragment boundaries and positioning intact.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/shekharashishraj/codex-code-glyph/contentstream"
	"github.com/shekharashishraj/codex-code-glyph/editor"
	"github.com/shekharashishraj/codex-code-glyph/vocab"
)

type options struct {
	streamPath string
	vocabPath  string
	outPath    string
	windowSize int
	threshold  float64
	verbose    bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rewrite: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "rewrite: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: rewrite -vocab <table.md> [flags] <stream>\n")
		flag.PrintDefaults()
	}
	flag.StringVar(&opts.vocabPath, "vocab", "", "Markdown file with a phrase|replacement table")
	flag.StringVar(&opts.outPath, "o", "", "output path (default: stdout)")
	flag.IntVar(&opts.windowSize, "window", editor.DefaultWindowSize, "cross-group window size")
	flag.Float64Var(&opts.threshold, "space-threshold", editor.DefaultSpaceThreshold, "adjustment magnitude treated as a space")
	flag.BoolVar(&opts.verbose, "v", false, "print applied matches and suppressed windows")
	flag.Parse()

	if opts.vocabPath == "" {
		return opts, fmt.Errorf("missing -vocab")
	}
	if flag.NArg() != 1 {
		return opts, fmt.Errorf("expected exactly one content stream argument")
	}
	opts.streamPath = flag.Arg(0)
	return opts, nil
}

func run(opts options) error {
	streamData, err := os.ReadFile(opts.streamPath)
	if err != nil {
		return err
	}
	vocabData, err := os.ReadFile(opts.vocabPath)
	if err != nil {
		return err
	}

	mapping, err := vocab.ParseMarkdown(vocabData)
	if err != nil {
		return err
	}
	v := vocab.Compile(mapping)
	if v.Empty() {
		return fmt.Errorf("vocabulary %s holds no usable entries", opts.vocabPath)
	}

	ops, err := contentstream.Parse(streamData)
	if err != nil {
		return err
	}

	ed := editor.NewEditor(v,
		editor.WithWindowSize(opts.windowSize),
		editor.WithSpaceThreshold(opts.threshold),
	)
	rewritten, res, err := ed.RewritePage(context.Background(), ops)
	if err != nil {
		return err
	}

	out := os.Stdout
	if opts.outPath != "" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if _, err := out.Write(contentstream.Serialize(rewritten)); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "rewrite: %d entries, %d groups rewritten, %d matches, %d windows suppressed\n",
		v.Len(), res.GroupsRewritten, len(res.Matches), len(res.Suppressed))
	if opts.verbose {
		for _, m := range res.Matches {
			kind := "group"
			if m.CrossGroup {
				kind = "cross-group"
			}
			fmt.Fprintf(os.Stderr, "  op %d (%s): %q -> %q\n", m.Op, kind, m.Original, m.Replacement)
		}
		for _, s := range res.Suppressed {
			fmt.Fprintf(os.Stderr, "  op %d suppressed (%s): %q: %s\n", s.Op, s.Pattern, s.Text, s.Reason)
		}
	}
	return nil
}
