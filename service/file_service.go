package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/ragforge/pdfrag/repository"
	"github.com/ragforge/pdfrag/types"
	"github.com/ragforge/pdfrag/utils"
)

const DefaultCollectionName = "pdf_chunks"

// FileService accepts uploaded PDFs, stores them under uploadDir and drives
// them through the ingestion pipeline. The registry is optional; when
// present every finished run (success or failure) is recorded.
type FileService struct {
	uploadDir string
	pipeline  *PipelineService
	registry  repository.IngestRepo
}

func NewFileService(uploadDir string, pipeline *PipelineService, registry repository.IngestRepo) *FileService {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		panic(err)
	}
	return &FileService{
		uploadDir: uploadDir,
		pipeline:  pipeline,
		registry:  registry,
	}
}

// UploadFile saves the uploaded PDF with a timestamped name and runs the
// pipeline against it. The stored file is removed again when the run fails,
// so uploadDir only holds documents that are actually indexed.
func (s *FileService) UploadFile(ctx context.Context, req types.UploadRequest, file *multipart.FileHeader, progress ProgressFunc) (*types.PipelineState, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	originalName := file.Filename
	if req.Title != "" {
		originalName = req.Title
		if !strings.HasSuffix(strings.ToLower(originalName), ".pdf") {
			originalName += ext
		}
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	storedName := utils.TimestampedFileName(originalName)
	storedPath := filepath.Join(s.uploadDir, storedName)
	dst, err := os.Create(storedPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(storedPath)
		return nil, err
	}
	if err := dst.Close(); err != nil {
		os.Remove(storedPath)
		return nil, err
	}

	collectionName := req.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	state := s.pipeline.Run(ctx, storedPath, originalName, collectionName, progress)
	if state.Failed() {
		os.Remove(storedPath)
	}
	s.recordIngest(ctx, req, state)
	return state, nil
}

// IngestFile runs the pipeline against a file already on disk, for the CLI
// ingestion path.
func (s *FileService) IngestFile(ctx context.Context, filePath, collectionName string, progress ProgressFunc) (*types.PipelineState, error) {
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}
	state := s.pipeline.Run(ctx, filePath, filepath.Base(filePath), collectionName, progress)
	s.recordIngest(ctx, types.UploadRequest{CollectionName: collectionName}, state)
	return state, nil
}

func (s *FileService) recordIngest(ctx context.Context, req types.UploadRequest, state *types.PipelineState) {
	if s.registry == nil {
		return
	}
	status := types.StatusSuccess
	if state.Failed() {
		status = types.StatusFail
	}
	source := req.Source
	if source == "" {
		source = state.FileName
	}
	record := &types.IngestRecord{
		FileName:       state.FileName,
		Source:         source,
		CollectionName: state.CollectionName,
		TotalChunks:    state.TotalChunks,
		Status:         status,
		FailingStage:   state.FailingStage,
		ErrorMessage:   state.ErrorMessage,
	}
	if err := s.registry.SaveIngest(ctx, record); err != nil {
		log.Printf("Error saving ingest record: %v", err)
	}
}
