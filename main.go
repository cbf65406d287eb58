package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"occlight/internal/dump"
	"occlight/internal/engine"
	"occlight/internal/engine/chromaengine"
	"occlight/internal/engine/sitterengine"
	"occlight/internal/highlight"
	"occlight/internal/input"
	"occlight/internal/lang"
	"occlight/internal/scopemap"
)

type config struct {
	Engine     string
	Lang       string
	MapPath    string
	MaxLineLen int
	JSON       bool
	Verbose    bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.Engine, "engine", "chroma", "grammar engine: chroma or sitter")
	flag.StringVar(&cfg.Lang, "lang", "", "language override (default: detect from file name)")
	flag.StringVar(&cfg.MapPath, "map", "", "TOML scope map overlaying the built-in table")
	flag.IntVar(&cfg.MaxLineLen, "max-line-len", 0, "skip highlighting lines longer than this many bytes (0 = no limit)")
	flag.BoolVar(&cfg.JSON, "json", false, "emit occurrences as JSON instead of the annotated dump")
	flag.BoolVar(&cfg.Verbose, "v", false, "debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: occlight [flags] <file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(cfg, flag.Arg(0), logger); err != nil {
		logger.Error().Err(err).Msg("occlight failed")
		os.Exit(1)
	}
}

func run(cfg config, path string, logger zerolog.Logger) error {
	source, err := input.ReadSource(path)
	if err != nil {
		return errors.Errorf("reading source: %w", err)
	}

	id, err := resolveLang(cfg.Lang, path, source)
	if err != nil {
		return err
	}
	logger.Debug().Str("lang", string(id)).Str("engine", cfg.Engine).Msg("highlighting")

	table := scopemap.Default()
	if cfg.MapPath != "" {
		table, err = scopemap.Load(cfg.MapPath)
		if err != nil {
			return errors.Errorf("loading scope map: %w", err)
		}
	}

	eng, err := buildEngine(cfg.Engine, id, source)
	if err != nil {
		return err
	}

	gen := highlight.NewGenerator(eng, highlight.NewResolver(table), highlight.Options{
		MaxLineLen: cfg.MaxLineLen,
		Logger:     &logger,
	})
	doc, err := gen.Generate(source)
	if err != nil {
		return err
	}

	if skipped := gen.SkippedLines(); len(skipped) > 0 {
		logger.Info().Ints("rows", skipped).Msg("lines skipped for length")
	}
	if unhandled := gen.UnhandledScopes(); len(unhandled) > 0 {
		logger.Debug().Strs("scopes", unhandled).Msg("scopes without a kind mapping")
	}

	if cfg.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return errors.WithStack(enc.Encode(doc))
	}
	fmt.Print(dump.Document(doc, source))
	return nil
}

func resolveLang(override, path, source string) (lang.ID, error) {
	if override == "" {
		return lang.DetectWithShebang(path, firstLine(source)), nil
	}
	id, ok := lang.Parse(override)
	if !ok {
		if hint, found := lang.Suggest(override); found {
			return "", errors.Errorf("unknown language %q (did you mean %q?)", override, hint)
		}
		return "", errors.Errorf("unknown language %q", override)
	}
	return id, nil
}

func buildEngine(name string, id lang.ID, source string) (engine.Engine, error) {
	switch name {
	case "chroma":
		return chromaengine.New(lang.ChromaLexer(id), source)
	case "sitter":
		sl, ok := lang.SitterLanguage(id)
		if !ok {
			return nil, errors.Errorf("no tree-sitter grammar for %q (use -engine chroma)", id)
		}
		return sitterengine.New(sl, string(id), []byte(source))
	default:
		return nil, errors.Errorf("unknown engine %q (use chroma or sitter)", name)
	}
}

func firstLine(source string) string {
	if i := strings.IndexByte(source, '\n'); i >= 0 {
		return source[:i]
	}
	return source
}
