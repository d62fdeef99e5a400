package nlsql

import (
	"context"
	"time"

	"FinSight/internal/catalog"
	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/internal/domain/service"
	"FinSight/pkg/logger"
)

const confidenceThreshold = 0.7

// Service turns natural-language questions into executed warehouse queries.
type Service struct {
	classifier  service.IntentClassifier
	synthesizer *Synthesizer
	guard       *Guard
	reasoner    service.Reasoner
	catalog     *catalog.Catalog
	store       repository.RowStore
	metrics     repository.Metrics
	log         *logger.Logger
	rowLimit    int
}

// NewService wires the query pipeline.
func NewService(
	classifier service.IntentClassifier,
	synthesizer *Synthesizer,
	guard *Guard,
	reasoner service.Reasoner,
	cat *catalog.Catalog,
	store repository.RowStore,
	metrics repository.Metrics,
	log *logger.Logger,
	rowLimit int,
) *Service {
	if rowLimit <= 0 {
		rowLimit = 100
	}
	return &Service{
		classifier:  classifier,
		synthesizer: synthesizer,
		guard:       guard,
		reasoner:    reasoner,
		catalog:     cat,
		store:       store,
		metrics:     metrics,
		log:         log,
		rowLimit:    rowLimit,
	}
}

// Process answers a natural-language question. The template path is tried
// first when the intent is confident or AI is disabled; otherwise the
// remote reasoner generates the SQL from schema context. limit caps the
// executed row count; non-positive values fall back to the configured
// default.
func (s *Service) Process(ctx context.Context, question string, limit int, useAI bool) models.QueryResult {
	start := time.Now()
	if limit <= 0 {
		limit = s.rowLimit
	}

	intentRes := s.classifier.Classify(ctx, question)
	s.log.Debug("classified query intent",
		logger.String("intent", string(intentRes.Intent)),
		logger.Any("confidence", intentRes.Confidence))

	var sql string
	var method models.GenerationMethod
	if intentRes.Confidence > confidenceThreshold || !useAI {
		sql = s.synthesizer.Synthesize(question, intentRes.Intent)
		method = models.MethodTemplate
	} else {
		method = models.MethodAttemptedTemplate
	}

	if sql == "" && useAI {
		schemaCtx := s.catalog.SchemaForGeneration(question)
		if generated, ok := s.reasoner.GenerateSQL(ctx, question, schemaCtx); ok {
			sql = generated
			method = models.MethodAIGenerated
		}
	}

	if sql == "" {
		s.metrics.RecordQuery(string(method), false)
		return models.QueryResult{
			Success:        false,
			Question:       question,
			Error:          "could not generate SQL query",
			Suggestion:     "try rephrasing your question or be more specific",
			Intent:         intentRes.Intent,
			Confidence:     intentRes.Confidence,
			ProcessingTime: time.Since(start),
		}
	}

	if err := s.guard.Validate(sql); err != nil {
		s.log.Warn("rejected generated SQL", logger.Error(err), logger.String("sql", sql))
		s.metrics.RecordQuery(string(method), false)
		return models.QueryResult{
			Success:        false,
			Question:       question,
			SQL:            sql,
			Error:          "SQL validation failed: " + err.Error(),
			Intent:         intentRes.Intent,
			Confidence:     intentRes.Confidence,
			Method:         method,
			ProcessingTime: time.Since(start),
		}
	}

	rows, err := s.store.Execute(ctx, sql, limit)
	if err != nil {
		s.log.Error("query execution failed", logger.Error(err), logger.String("sql", sql))
		s.metrics.RecordQuery(string(method), false)
		return models.QueryResult{
			Success:        false,
			Question:       question,
			SQL:            sql,
			Error:          err.Error(),
			Intent:         intentRes.Intent,
			Confidence:     intentRes.Confidence,
			Method:         method,
			ProcessingTime: time.Since(start),
		}
	}

	elapsed := time.Since(start)
	s.metrics.RecordQuery(string(method), true)
	s.metrics.RecordLatency("nl_query", elapsed.Seconds())
	s.log.Info("answered natural-language query",
		logger.String("method", string(method)),
		logger.Int("rows", len(rows)),
		logger.Duration("took", elapsed))

	return models.QueryResult{
		Success:        true,
		Question:       question,
		SQL:            sql,
		Rows:           rows,
		RowCount:       len(rows),
		Intent:         intentRes.Intent,
		Confidence:     intentRes.Confidence,
		Method:         method,
		ProcessingTime: elapsed,
	}
}
