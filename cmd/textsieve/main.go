// Package main provides the entry point for the textsieve CLI.
//
// textsieve measures and repairs the quality of text extracted from
// documents. It removes markup and glyph artifacts, scores how damaged a
// text is, and finds broken Markdown tables, either for a whole directory
// tree or over HTTP.
//
// Usage:
//
//	textsieve clean <input-dir> -o <output-dir>
//	textsieve analyze <input-dir>
//	textsieve tables <input-dir>
//	textsieve run <input-dir> -o <output-dir>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
