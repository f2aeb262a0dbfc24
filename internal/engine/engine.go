// Package engine wires the tokenizer, inverted file, scoring plug-ins,
// and validation pipeline into the small set of operations the CLI
// exposes: indexing a document and running a validated query.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/orneryd/nornicdb/internal/doclen"
	"github.com/orneryd/nornicdb/internal/ftsconfig"
	"github.com/orneryd/nornicdb/internal/ftslog"
	"github.com/orneryd/nornicdb/internal/invert"
	"github.com/orneryd/nornicdb/internal/qcache"
	"github.com/orneryd/nornicdb/internal/qnode"
	"github.com/orneryd/nornicdb/internal/querystring"
	"github.com/orneryd/nornicdb/internal/scoring/calc"
	"github.com/orneryd/nornicdb/internal/scoring/combiner"
	"github.com/orneryd/nornicdb/internal/token"
	"github.com/orneryd/nornicdb/internal/validate"
)

// Engine owns the badger-backed collaborators for one data directory.
type Engine struct {
	File      *invert.BadgerInvertedFile
	Lengths   *doclen.BadgerLengthFile
	Tokenizer token.Tokenizer
	Cache     *qcache.PlanCache
	Opts      validate.Options
	cfg       *ftsconfig.Config
	logLevel  ftslog.Level
}

func Open(cfg *ftsconfig.Config) (*Engine, error) {
	indexingType := indexingTypeOf(cfg.IndexingType)

	db, err := invert.OpenBadgerDB(cfg.DataDir, false)
	if err != nil {
		return nil, err
	}
	lengths := doclen.NewBadgerLengthFile(db)
	file := invert.NewBadgerInvertedFileFromDB(db, indexingType, lengths)

	tok, err := token.Parse(cfg.Tokenizer, token.DefaultRegistry())
	if err != nil {
		return nil, fmt.Errorf("opening engine: %w", err)
	}

	plan := qcache.NewPlanCache(cfg.Cache.MaxEntries, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	plan.SetEnabled(cfg.Cache.Enabled)

	opts := validate.DefaultOptions()
	opts.OrFlattenThreshold = cfg.OrFlattenThreshold
	opts.ShortWordRangeLimit = cfg.ShortWordRangeLimit
	if c, ok := calc.New(cfg.ScoreCalculator); ok {
		c.SetDocumentLengthFile(lengths)
		opts.Calculator = c
	}
	if c, ok := combiner.New(cfg.ScoreCombiner); ok {
		opts.Combiner = c
	}

	return &Engine{
		File:      file,
		Lengths:   lengths,
		Tokenizer: tok,
		Cache:     plan,
		Opts:      opts,
		cfg:       cfg,
		logLevel:  parseLogLevel(cfg.LogLevel),
	}, nil
}

// parseLogLevel maps a config string to an ftslog.Level, defaulting to
// LevelInfo for an empty or unrecognized value.
func parseLogLevel(s string) ftslog.Level {
	switch s {
	case "debug":
		return ftslog.LevelDebug
	case "warn":
		return ftslog.LevelWarn
	case "error":
		return ftslog.LevelError
	default:
		return ftslog.LevelInfo
	}
}

func (e *Engine) Close() error {
	return e.File.Close()
}

// Index tokenizes text in document mode and writes its postings and
// length to the inverted file / length file. It gets its own *ftslog.Logger
// scoped to this IndexReader call (spec.md §10.1).
func (e *Engine) Index(ctx context.Context, doc qnode.DocumentID, text string) error {
	logger := ftslog.New(fmt.Sprintf("index:%d", doc), e.logLevel)
	res, err := e.Tokenizer.Tokenize(ctx, text, token.DocumentMode)
	if err != nil {
		logger.Error("tokenize failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	positions := make(map[string][]qnode.Location)
	for i, t := range res.Tokens {
		positions[t.Text] = append(positions[t.Text], qnode.Location(i+1))
	}
	for term, locs := range positions {
		if err := e.File.IndexTerm(ctx, term, doc, locs); err != nil {
			logger.Error("indexing term failed", map[string]interface{}{"term": term, "error": err.Error()})
			return err
		}
	}
	if err := e.Lengths.Set(ctx, doc, uint32(len(res.Tokens))); err != nil {
		logger.Error("setting document length failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	e.Cache.Invalidate()
	logger.Debug("indexed document", map[string]interface{}{"tokens": len(res.Tokens), "terms": len(positions)})
	return nil
}

// Validate compiles a TermLeaf-bearing tree into an executable plan,
// consulting/populating the plan cache by canonical query string. It gets
// its own *ftslog.Logger scoped to this Query (spec.md §10.1).
func (e *Engine) Validate(ctx context.Context, root qnode.Node) (qnode.Node, error) {
	key := querystring.Hash(root.CanonicalString())
	logger := ftslog.New("query:"+logPrefix(key), e.logLevel)
	if cached, ok := e.Cache.Get(key); ok {
		logger.Debug("plan cache hit", nil)
		return cached, nil
	}
	logger.Debug("plan cache miss, validating", nil)
	plan, err := validate.Validate(ctx, root, e.File, e.Tokenizer, e.Opts)
	if err != nil {
		logger.Error("validation failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	e.Cache.Put(key, plan)
	logger.Debug("validation complete", nil)
	return plan, nil
}

// logPrefix shortens a canonical-query hash to a readable log prefix.
func logPrefix(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

// Retrieve runs a validated plan in ranking mode and returns its results.
func (e *Engine) Retrieve(ctx context.Context, plan qnode.Node) (qnode.ResultSet, error) {
	return plan.Retrieve(ctx, qnode.RankingMode)
}

func indexingTypeOf(name string) qnode.IndexingType {
	switch name {
	case "word":
		return qnode.Word
	case "dual":
		return qnode.Dual
	default:
		return qnode.Ngram
	}
}
