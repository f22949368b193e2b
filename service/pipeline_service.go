package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ragforge/pdfrag/database"
	"github.com/ragforge/pdfrag/types"
)

// ProgressFunc receives a status update after each pipeline stage. Callers
// may pass nil.
type ProgressFunc func(types.ProcessingDocumentStatus)

// PipelineService drives one document through validation, extraction,
// structuring, splitting, chunking and storage. Validation is a hard gate: a
// FAIL report stops the run before any page is extracted. The state machine
// only moves forward; FAILED is absorbing and records the stage that broke.
type PipelineService struct {
	validator  *ValidatorService
	extractor  *PDFService
	structurer *MarkdownService
	splitter   *SplitterService
	chunker    *ChunkerService
	store      database.VectorStore
}

func NewPipelineService(
	validator *ValidatorService,
	extractor *PDFService,
	structurer *MarkdownService,
	splitter *SplitterService,
	chunker *ChunkerService,
	store database.VectorStore,
) *PipelineService {
	return &PipelineService{
		validator:  validator,
		extractor:  extractor,
		structurer: structurer,
		splitter:   splitter,
		chunker:    chunker,
		store:      store,
	}
}

// Run processes a single PDF into the named collection. It always returns a
// state; callers check state.Failed() rather than an error because a failed
// run is still a fully described outcome.
func (s *PipelineService) Run(ctx context.Context, filePath, fileName, collectionName string, progress ProgressFunc) *types.PipelineState {
	state := &types.PipelineState{
		FilePath:       filePath,
		FileName:       fileName,
		CollectionName: collectionName,
		Stage:          types.StageValidating,
	}

	s.report(progress, state, "validating document")
	report, err := s.validator.Validate(filePath)
	if err != nil {
		state.Fail(types.StageValidating, err)
		s.report(progress, state, "validation failed")
		return state
	}
	state.Validation = report
	if report.Status == types.ValidationFail {
		state.Fail(types.StageValidating, fmt.Errorf("document failed validation: %s", failureSummary(report)))
		s.report(progress, state, "document rejected by validation")
		return state
	}

	state.Stage = types.StageExtracting
	s.report(progress, state, "extracting pages")
	pages, err := s.extractor.Extract(filePath)
	if err != nil {
		state.Fail(types.StageExtracting, err)
		s.report(progress, state, "extraction failed")
		return state
	}
	state.PageCount = len(pages)

	state.Stage = types.StageStructuring
	s.report(progress, state, "structuring text")
	doc := s.structurer.Structure(pages)
	doc.Source = fileName

	state.Stage = types.StageSplitting
	s.report(progress, state, "splitting by headers")
	segments := s.splitter.Split(doc)
	state.SegmentCount = len(segments)

	state.Stage = types.StageChunking
	s.report(progress, state, "chunking segments")
	chunks, err := s.chunker.Chunk(ctx, segments, fileName)
	if err != nil {
		state.ChunkingStatus = types.StatusFail
		state.Fail(types.StageChunking, err)
		s.report(progress, state, "chunking failed")
		return state
	}
	if len(chunks) == 0 {
		state.ChunkingStatus = types.StatusFail
		state.Fail(types.StageChunking, fmt.Errorf("no chunks produced from %d pages", len(pages)))
		s.report(progress, state, "no content to index")
		return state
	}
	state.Chunks = chunks
	state.TotalChunks = len(chunks)
	state.ChunkingStatus = types.StatusSuccess

	state.Stage = types.StageEmbedding
	s.report(progress, state, "embedding and storing chunks")
	result, err := s.store.Store(ctx, collectionName, chunks)
	if err != nil {
		// The store embeds internally; a ServiceError surfaced here means the
		// embedding call broke, anything else is storage.
		var serviceErr *types.ServiceError
		if errors.As(err, &serviceErr) {
			state.EmbeddingStatus = types.StatusFail
			state.Fail(types.StageEmbedding, err)
			s.report(progress, state, "embedding failed")
		} else {
			state.EmbeddingStatus = types.StatusSuccess
			state.Fail(types.StageStoring, err)
			s.report(progress, state, "storage failed")
		}
		return state
	}
	state.EmbeddingStatus = types.StatusSuccess
	state.Stage = types.StageStoring
	state.VectorStoreInfo = result

	state.Stage = types.StageDone
	s.report(progress, state, "document indexed")
	log.Printf("Indexed %s: %d pages, %d segments, %d chunks into %s",
		fileName, state.PageCount, state.SegmentCount, state.TotalChunks, collectionName)
	return state
}

func (s *PipelineService) report(progress ProgressFunc, state *types.PipelineState, message string) {
	if progress == nil {
		return
	}
	status := types.StatusSuccess
	if state.Failed() {
		status = types.StatusFail
	}
	progress(types.ProcessingDocumentStatus{
		Status:   status,
		Stage:    state.Stage,
		Message:  message,
		Progress: stageProgress(state.Stage),
	})
}

func stageProgress(stage types.PipelineStage) float64 {
	switch stage {
	case types.StageValidating:
		return 0.1
	case types.StageExtracting:
		return 0.25
	case types.StageStructuring:
		return 0.4
	case types.StageSplitting:
		return 0.55
	case types.StageChunking:
		return 0.7
	case types.StageEmbedding, types.StageStoring:
		return 0.85
	case types.StageDone:
		return 1.0
	default:
		return 0
	}
}

// failureSummary lists the blocking findings for the error message.
func failureSummary(report *types.ValidationReport) string {
	for _, f := range report.Findings {
		if f.Severity == types.SeverityCritical || f.Severity == types.SeverityError {
			return f.Message
		}
	}
	return "unknown validation failure"
}
