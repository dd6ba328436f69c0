package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pharos-integrity/pharos/internal/analysis"
	"github.com/pharos-integrity/pharos/internal/audit"
	"github.com/pharos-integrity/pharos/internal/config"
	"github.com/pharos-integrity/pharos/internal/db"
	"github.com/pharos-integrity/pharos/internal/llm"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `pharos init` to create a config file", err)
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return c, nil
}

// newLogger builds a zap logger writing to stderr. Stdout stays free for
// command output and the MCP protocol.
func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if lc.Level != "" {
		l, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	return zc.Build()
}

// buildAnalyzer creates the provider chain and analyzer from config. A
// missing credential is not an error: the analyzer then answers every
// request with "AI service not configured".
func buildAnalyzer(c *config.Config, logger *zap.Logger) (*analysis.Analyzer, error) {
	gw, err := llm.NewProvider(llm.Options{
		Provider: string(c.LLM.Provider),
		APIKey:   c.ResolveAPIKey(),
		BaseURL:  c.LLM.BaseURL,
		Model:    c.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	if !gw.Configured() {
		logger.Warn("No API key configured; analysis requests will fail until one is set",
			zap.String("provider", gw.Name()),
			zap.String("api_key_env", c.LLM.APIKeyEnv))
		return analysis.New(gw, logger, analysis.WithModel(c.LLM.Model)), nil
	}

	p := llm.Wrap(gw, llm.WrapOptions{
		Timeout:           c.LLM.Timeout,
		MaxRetries:        c.LLM.MaxRetries,
		RequestsPerMinute: c.LLM.RequestsPerMinute,
		CacheTTL:          c.LLM.CacheTTL,
	})
	logger.Info("LLM provider ready",
		zap.String("provider", gw.Name()),
		zap.String("model", gw.Model()))
	return analysis.New(p, logger, analysis.WithModel(c.LLM.Model)), nil
}

// openAudit opens the activity log when it is enabled. Both results are nil
// when it is disabled.
func openAudit(c *config.Config) (*db.DB, *audit.Store, error) {
	if !c.Audit.Enabled {
		return nil, nil, nil
	}
	database, err := db.Open(c.Audit.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return database, audit.NewStore(database), nil
}

// recorderFor returns store as a Recorder, or Nop when it is nil.
func recorderFor(store *audit.Store) audit.Recorder {
	if store == nil {
		return audit.Nop{}
	}
	return store
}

// recordCLI logs a command-line analysis to the activity log.
func recordCLI(ctx context.Context, rec audit.Recorder, entry audit.Entry, start time.Time, interp analysis.Interpretation, model string, err error) {
	entry.Source = audit.SourceCLI
	entry.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		entry.Status = analysis.StatusOf(err)
		entry.Error = analysis.MessageOf(err)
	} else {
		entry.Status = 200
		entry.Interpretation = string(interp.Kind)
		entry.Model = model
	}
	if lerr := rec.Log(ctx, entry); lerr != nil {
		logger.Warn("Recording analysis event failed", zap.Error(lerr))
	}
}
