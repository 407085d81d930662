package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/fm301check/core/agg"
	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/internal/source"
	"github.com/huangsam/fm301check/internal/specfile"
	"github.com/huangsam/fm301check/schema"
	"go.uber.org/zap"
)

// OpenFunc opens a data file. It is swapped out in tests.
type OpenFunc func(path string) (contract.DataSource, error)

// ValidationBuilder runs one validation using a builder pattern:
// LoadSchema, OpenSource, RunChecks, BuildReport.
type ValidationBuilder struct {
	ctx    context.Context
	cfg    *contract.Config
	logger *zap.Logger
	open   OpenFunc
	start  time.Time
	spec   *schema.Spec
	src    contract.DataSource
	eval   *Evaluator
	report *schema.Report
}

// NewValidationBuilder creates a builder for the configured files.
func NewValidationBuilder(ctx context.Context, cfg *contract.Config, logger *zap.Logger) *ValidationBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidationBuilder{
		ctx:    ctx,
		cfg:    cfg,
		logger: logger,
		open:   source.Open,
		start:  time.Now(),
	}
}

// WithOpener replaces how the data file is opened.
func (b *ValidationBuilder) WithOpener(open OpenFunc) *ValidationBuilder {
	b.open = open
	return b
}

// WithSpec uses an already loaded schema instead of reading cfg.SchemaPath.
func (b *ValidationBuilder) WithSpec(spec *schema.Spec) *ValidationBuilder {
	b.spec = spec
	return b
}

// LoadSchema reads the compliance schema.
func (b *ValidationBuilder) LoadSchema() (*ValidationBuilder, error) {
	if b.spec != nil {
		return b, nil
	}
	spec, err := specfile.Load(b.cfg.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", b.cfg.SchemaPath, err)
	}
	for _, w := range spec.Warnings {
		b.logger.Warn("schema warning", zap.String("schema", b.cfg.SchemaPath), zap.String("detail", w))
	}
	b.spec = spec
	return b, nil
}

// OpenSource opens the data file read-only.
func (b *ValidationBuilder) OpenSource() (*ValidationBuilder, error) {
	if err := b.ctx.Err(); err != nil {
		return nil, err
	}
	src, err := b.open(b.cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", b.cfg.DataPath, err)
	}
	b.logger.Debug("data source opened", zap.String("path", src.Path()), zap.String("format", src.Format()))
	b.src = src
	return b, nil
}

// RunChecks evaluates every section. The data source is closed before it
// returns, also when an evaluation panics.
func (b *ValidationBuilder) RunChecks() *ValidationBuilder {
	defer b.Close()
	policy := agg.TallyPolicy{FoldOptionalIntoNotUsed: b.cfg.FoldOptional}
	b.eval = NewEvaluator(b.spec, policy, b.logger)
	b.eval.Run(b.src.Root(), b.cfg.SweepMode)
	return b
}

// BuildReport assembles the report from the evaluated rows.
func (b *ValidationBuilder) BuildReport() *ValidationBuilder {
	b.report = b.eval.Aggregator().Report(uuid.NewString(), b.cfg.DataPath, b.cfg.SchemaPath, b.cfg.SweepMode, b.start)
	return b
}

// GetReport returns the built report.
func (b *ValidationBuilder) GetReport() *schema.Report {
	return b.report
}

// Close releases the data source. It is safe to call more than once.
func (b *ValidationBuilder) Close() {
	if b.src == nil {
		return
	}
	if err := b.src.Close(); err != nil {
		b.logger.Warn("failed to close data source", zap.Error(err))
	}
	b.src = nil
}
