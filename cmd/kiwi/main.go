// Command kiwi is the Kiwi schema compiler, decoder, and code generator.
//
// Usage:
//
//	kiwi compile  -i <schema.kiwi> -o <schema.kiwi.bin>
//	kiwi decode   -i <data.bin> -s <schema.kiwi.bin> [-aux <newer.kiwi.bin>] [-root <Name>]
//	kiwi gen-rust -i <schema.kiwi> -o <out.rs>
//	kiwi gen-go   -i <schema.kiwi> -o <out.go>
//	kiwi gen-ts   -i <schema.kiwi> -o <out.ts>
//	kiwi format   [-w] <schema.kiwi>...
//	kiwi validate [-against <old.kiwi>] <schema.kiwi>...
//	kiwi schema   [options] <go-package>...
//
// Compile parses and validates a schema and writes its self-describing
// binary form. Decode reads encoded message bytes and prints them as JSON;
// it needs the schema binary to direct decoding, and accepts a second,
// newer schema via -aux to skip fields the primary schema doesn't know.
// The gen-* commands emit statically-typed bindings. Validate with
// -against additionally reports breaking changes relative to a previously
// deployed schema version. Schema extracts a .kiwi schema from annotated
// Go struct declarations, the reverse of gen-go.
//
// Exit codes: 0 success, 1 user error (bad input, validation failure),
// 2 internal error.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kiwiproto/kiwi-go/pkg/codegen"
	"github.com/kiwiproto/kiwi-go/pkg/extract"
	"github.com/kiwiproto/kiwi-go/pkg/kiwi"
	"github.com/kiwiproto/kiwi-go/pkg/schema"
)

const (
	exitOK       = 0
	exitUser     = 1
	exitInternal = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitUser)
	}

	switch os.Args[1] {
	case "compile", "c":
		cmdCompile(os.Args[2:])
	case "decode", "d":
		cmdDecode(os.Args[2:])
	case "gen-rust":
		cmdGenerate(os.Args[2:], codegen.LanguageRust)
	case "gen-go":
		cmdGenerate(os.Args[2:], codegen.LanguageGo)
	case "gen-ts", "gen-typescript":
		cmdGenerate(os.Args[2:], codegen.LanguageTypeScript)
	case "format", "fmt", "f":
		cmdFormat(os.Args[2:])
	case "validate", "val", "v":
		cmdValidate(os.Args[2:])
	case "schema", "extract", "s":
		cmdSchema(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(exitUser)
	}
}

func printUsage() {
	fmt.Println(`Kiwi Schema Compiler

Usage:
  kiwi <command> [options]

Commands:
  compile     Compile a schema to its self-describing binary form
  decode      Decode message bytes and print them as JSON
  gen-rust    Generate Rust bindings from a schema
  gen-go      Generate Go bindings from a schema
  gen-ts      Generate TypeScript bindings from a schema
  format      Format schema files
  validate    Validate schema files, optionally against an older version
  schema      Extract a schema from annotated Go struct declarations
  help        Print this help message

Run 'kiwi <command> -h' for command-specific help.`)
}

// stringSliceFlag allows a flag to be repeated.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string { return strings.Join(*s, ",") }

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		fmt.Fprintln(os.Stderr, "\nOptions:")
		fs.PrintDefaults()
	}
	return fs
}

// loadSchema parses and validates a .kiwi text file, exiting with a user
// error when it doesn't hold up.
func loadSchema(path string) *schema.Schema {
	s, errs := schema.LoadFile(path)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitUser)
	}
	return s
}

func cmdCompile(args []string) {
	fs := newFlagSet("compile", "Usage: kiwi compile -i <schema.kiwi> -o <schema.kiwi.bin>")
	input := fs.String("i", "", "Input schema file")
	output := fs.String("o", "", "Output binary schema file")
	if err := fs.Parse(args); err != nil {
		os.Exit(exitUser)
	}
	if *input == "" || *output == "" {
		fs.Usage()
		os.Exit(exitUser)
	}

	s := loadSchema(*input)
	bin, err := schema.EncodeBinary(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitInternal)
	}
	if err := os.WriteFile(*output, bin, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitInternal)
	}
}

func cmdDecode(args []string) {
	fs := newFlagSet("decode", "Usage: kiwi decode -i <data.bin> -s <schema.kiwi.bin> [-aux <newer.kiwi.bin>] [-root <Name>]")
	input := fs.String("i", "", "Input message bytes")
	schemaPath := fs.String("s", "", "Binary schema directing the decode")
	auxPath := fs.String("aux", "", "Newer binary schema used to skip unknown fields")
	root := fs.String("root", "", "Root definition name (defaults to the schema's only message)")
	if err := fs.Parse(args); err != nil {
		os.Exit(exitUser)
	}
	if *input == "" {
		fs.Usage()
		os.Exit(exitUser)
	}
	if *schemaPath == "" {
		fmt.Fprintln(os.Stderr, "decode needs a schema (-s) to direct it; Kiwi message bytes carry no type information of their own")
		os.Exit(exitUser)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUser)
	}
	s := loadBinarySchema(*schemaPath)

	def := resolveRoot(s, *root)
	dec := kiwi.NewDecoder(s)
	if *auxPath != "" {
		dec = dec.WithAux(loadBinarySchema(*auxPath))
	}

	value, n, err := dec.Decode(data, def)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUser)
	}
	if n != len(data) {
		fmt.Fprintf(os.Stderr, "%d trailing bytes after %s\n", len(data)-n, def.Name)
		os.Exit(exitUser)
	}

	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitInternal)
	}
	fmt.Println(string(out))
}

func loadBinarySchema(path string) *schema.Schema {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUser)
	}
	s, err := schema.DecodeBinary(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUser)
	}
	return s
}

// resolveRoot picks the definition to decode against: the named one, or
// the schema's sole message definition when no name is given.
func resolveRoot(s *schema.Schema, name string) *schema.Definition {
	if name != "" {
		def := s.DefinitionByName(name)
		if def == nil {
			fmt.Fprintf(os.Stderr, "schema has no definition named %q\n", name)
			os.Exit(exitUser)
		}
		return def
	}

	var root *schema.Definition
	for i := range s.Definitions {
		if s.Definitions[i].Kind == schema.KindMessage {
			if root != nil {
				fmt.Fprintln(os.Stderr, "schema has multiple messages; pick one with -root")
				os.Exit(exitUser)
			}
			root = &s.Definitions[i]
		}
	}
	if root == nil {
		fmt.Fprintln(os.Stderr, "schema has no message definition; pick a root with -root")
		os.Exit(exitUser)
	}
	return root
}

func cmdGenerate(args []string, lang codegen.Language) {
	fs := newFlagSet("gen-"+string(lang), fmt.Sprintf("Usage: kiwi gen-%s -i <schema.kiwi> -o <output>", lang))
	input := fs.String("i", "", "Input schema file")
	output := fs.String("o", "", "Output source file")
	pkg := fs.String("package", "", "Override package/module name")
	prefix := fs.String("prefix", "", "Add prefix to all type names")
	suffix := fs.String("suffix", "", "Add suffix to all type names")
	jsonSupport := fs.Bool("json", true, "Generate JSON support")
	comments := fs.Bool("comments", true, "Copy schema doc comments into generated source")
	if err := fs.Parse(args); err != nil {
		os.Exit(exitUser)
	}
	if *input == "" || *output == "" {
		fs.Usage()
		os.Exit(exitUser)
	}

	gen, ok := codegen.Get(lang)
	if !ok {
		fmt.Fprintf(os.Stderr, "no generator registered for %s\n", lang)
		os.Exit(exitInternal)
	}

	s := loadSchema(*input)

	opts := codegen.DefaultOptions()
	opts.Package = *pkg
	opts.TypePrefix = *prefix
	opts.TypeSuffix = *suffix
	opts.GenerateJSON = *jsonSupport
	opts.GenerateComments = *comments

	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitInternal)
	}
	if err := gen.Generate(f, s, opts); err != nil {
		f.Close()
		os.Remove(*output)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitInternal)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitInternal)
	}
}

func cmdFormat(args []string) {
	fs := newFlagSet("format", "Usage: kiwi format [-w] <schema.kiwi>...")
	write := fs.Bool("w", false, "Write result back to the source file instead of stdout")
	if err := fs.Parse(args); err != nil {
		os.Exit(exitUser)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(exitUser)
	}

	hasErrors := false
	for _, inputFile := range fs.Args() {
		content, err := os.ReadFile(inputFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			hasErrors = true
			continue
		}

		s, parseErrors := schema.ParseFile(inputFile, string(content))
		if len(parseErrors) > 0 {
			for _, e := range parseErrors {
				fmt.Fprintln(os.Stderr, e)
			}
			hasErrors = true
			continue
		}

		formatted := schema.FormatSchema(s)
		if *write {
			if err := os.WriteFile(inputFile, []byte(formatted), 0o644); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitInternal)
			}
		} else {
			fmt.Print(formatted)
		}
	}

	if hasErrors {
		os.Exit(exitUser)
	}
}

func cmdValidate(args []string) {
	fs := newFlagSet("validate", "Usage: kiwi validate [-against <old.kiwi>] <schema.kiwi>...")
	against := fs.String("against", "", "Previously deployed schema version to check compatibility against")
	if err := fs.Parse(args); err != nil {
		os.Exit(exitUser)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(exitUser)
	}

	hasErrors := false
	for _, inputFile := range fs.Args() {
		s, errs := schema.LoadFile(inputFile)
		if len(errs) > 0 {
			for _, err := range errs {
				fmt.Fprintln(os.Stderr, err)
			}
			hasErrors = true
			continue
		}
		fmt.Printf("Valid: %s\n", inputFile)

		if *against != "" {
			old := loadSchema(*against)
			report := schema.CheckCompatibility(old, s)
			for _, w := range report.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
			for _, b := range report.Breaking {
				fmt.Fprintf(os.Stderr, "breaking: %s\n", b.Error())
				hasErrors = true
			}
		}
	}

	if hasErrors {
		os.Exit(exitUser)
	}
}

func cmdSchema(args []string) {
	fs := newFlagSet("schema", `Usage: kiwi schema [options] <go-package>...

Extract a Kiwi schema from annotated Go struct declarations. Message field
IDs come from `+"`kiwi:\"N\"`"+` struct tags; a @kiwi:struct doc marker opts
a type into struct (positional, all-required) kind.`)
	outFile := fs.String("out", "", "Output file (default: stdout)")
	private := fs.Bool("private", false, "Include unexported types")
	var includePatterns stringSliceFlag
	fs.Var(&includePatterns, "include", "Type name pattern to include (glob, can be repeated)")
	var excludePatterns stringSliceFlag
	fs.Var(&excludePatterns, "exclude", "Type name pattern to exclude (glob, can be repeated)")
	if err := fs.Parse(args); err != nil {
		os.Exit(exitUser)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(exitUser)
	}

	cfg := &extract.ExtractorConfig{
		Config: &extract.Config{
			IncludePrivate:  *private,
			IncludePatterns: includePatterns,
			ExcludePatterns: excludePatterns,
		},
		Patterns:   fs.Args(),
		OutputPath: *outFile,
	}

	extractor := extract.NewExtractor()
	if err := extractor.ExtractAndWrite(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUser)
	}
	for _, w := range extractor.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
