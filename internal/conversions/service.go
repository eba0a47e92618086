package conversions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"

	"resume-converter/internal/extract"
	"resume-converter/internal/shared/metrics"
	"resume-converter/internal/shared/storage/object"
	"resume-converter/internal/shared/telemetry"
	"resume-converter/internal/shared/util"
	"resume-converter/internal/structurer"
	"resume-converter/resume/compose"
	"resume-converter/resume/model"
)

// ConvertInput carries one conversion request. Exactly one of Data,
// SourceKey, or SourceURL identifies the resume.
type ConvertInput struct {
	Info      model.CandidateInfo
	Data      []byte
	SourceKey string
	SourceURL string
	FileName  string
	MimeType  string
}

// Service runs the conversion pipeline and keeps the bookkeeping record in
// step with it. The stages run strictly in sequence; the record's Status
// always reflects the stage that is (or was) running.
type Service struct {
	repo       Repo
	store      object.ObjectStore
	extractor  *extract.Extractor
	structurer *structurer.Structurer
	composer   *compose.Composer
	templates  TemplateSource
	httpClient *http.Client
	now        func() time.Time
	newID      func() string
}

// NewService wires the pipeline stages together.
func NewService(repo Repo, store object.ObjectStore, ex *extract.Extractor, st *structurer.Structurer, cp *compose.Composer, templates TemplateSource, httpClient *http.Client) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{
		repo:       repo,
		store:      store,
		extractor:  ex,
		structurer: st,
		composer:   cp,
		templates:  templates,
		httpClient: httpClient,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Convert runs the full pipeline for one resume. Validation failures are
// returned before any record is created or any stage starts; once a record
// exists, every failure lands on it with a code and message.
func (s *Service) Convert(ctx context.Context, in ConvertInput) (Conversion, error) {
	if err := validateInput(in); err != nil {
		return Conversion{}, err
	}

	now := s.now().UTC()
	rec := Conversion{
		ID:             s.newID(),
		CandidateName:  in.Info.CandidateName,
		Status:         StateForm,
		SourceKey:      in.SourceKey,
		SourceFileName: in.FileName,
		SourceMimeType: in.MimeType,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return Conversion{}, fmt.Errorf("create conversion record: %w", err)
	}
	metrics.IncConversionStarted()
	started := metrics.NowMillis()

	if err := s.advance(ctx, &rec, EventStart); err != nil {
		return rec, err
	}

	text, err := s.extractStage(ctx, &rec, in)
	if err != nil {
		return s.fail(ctx, rec, err)
	}
	if err := s.advance(ctx, &rec, EventExtracted); err != nil {
		return rec, err
	}

	profile, err := s.structurer.Structure(ctx, text, in.Info)
	if err != nil {
		return s.fail(ctx, rec, err)
	}
	applyCandidateInfo(&profile, in.Info)
	if err := s.advance(ctx, &rec, EventParsed); err != nil {
		return rec, err
	}

	output, err := s.composeStage(ctx, &rec, profile, in.Info.PreparedBy)
	if err != nil {
		return s.fail(ctx, rec, err)
	}

	outputName := util.OutputFileName(in.Info.CandidateName)
	outputKey := path.Join("conversions", rec.ID, outputName)
	if err := s.saveOutput(ctx, outputKey, output); err != nil {
		return s.fail(ctx, rec, err)
	}

	rec.OutputKey = outputKey
	rec.OutputFileName = outputName
	if data, err := json.Marshal(profile); err == nil {
		rec.Profile = data
	}
	if err := s.advance(ctx, &rec, EventGenerated); err != nil {
		return rec, err
	}
	metrics.IncConversionCompleted()
	metrics.ObserveConversionDurationMs(metrics.NowMillis() - started)
	telemetry.Info("conversion complete", map[string]any{
		"conversionId": rec.ID,
		"outputKey":    outputKey,
	})
	return rec, nil
}

// Get returns a conversion record by ID.
func (s *Service) Get(ctx context.Context, id string) (Conversion, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns recent conversion records, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Conversion, error) {
	return s.repo.ListRecent(ctx, limit)
}

// Download opens the generated document of a completed conversion.
func (s *Service) Download(ctx context.Context, id string) (io.ReadCloser, Conversion, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, Conversion{}, err
	}
	if rec.Status != StateComplete || rec.OutputKey == "" {
		return nil, Conversion{}, fmt.Errorf("conversion %s has no output: %w", id, ErrNotFound)
	}
	rc, err := s.store.Open(ctx, rec.OutputKey)
	if err != nil {
		return nil, Conversion{}, fmt.Errorf("open output %s: %w", rec.OutputKey, err)
	}
	return rc, rec, nil
}

func (s *Service) extractStage(ctx context.Context, rec *Conversion, in ConvertInput) (string, error) {
	data := in.Data
	mimeType := in.MimeType
	switch {
	case len(in.Data) > 0:
	case in.SourceURL != "":
		var err error
		data, mimeType, err = extract.FetchRemote(ctx, s.httpClient, in.SourceURL)
		if err != nil {
			return "", err
		}
		if in.MimeType != "" {
			mimeType = in.MimeType
		}
	case in.SourceKey != "":
		// Already stored; extract straight from the store.
		text, err := s.extractor.ExtractStored(ctx, s.store, in.SourceKey, mimeType, in.FileName)
		if err != nil {
			return "", err
		}
		return text, nil
	}

	key, _, storedMime, err := s.store.Save(ctx, "conversions", in.FileName, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("save source upload: %w", err)
	}
	rec.SourceKey = key
	if mimeType == "" {
		mimeType = storedMime
	}
	rec.SourceMimeType = mimeType
	return s.extractor.ExtractStored(ctx, s.store, key, mimeType, in.FileName)
}

func (s *Service) composeStage(ctx context.Context, rec *Conversion, profile model.ParsedResume, preparedBy string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if max := s.composer.Spec.SlotCount(); len(profile.WorkExperience) > max {
		telemetry.Warn("work history exceeds template slots, truncating", map[string]any{
			"conversionId": rec.ID,
			"jobs":         len(profile.WorkExperience),
			"slots":        max,
		})
		profile.WorkExperience = profile.WorkExperience[:max]
	}
	templateBytes, err := s.templates.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", compose.ErrTemplateLoad, err)
	}
	return s.composer.Compose(profile, preparedBy, templateBytes)
}

type keySaver interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
}

func (s *Service) saveOutput(ctx context.Context, key string, data []byte) error {
	if saver, ok := s.store.(keySaver); ok {
		_, err := saver.SaveWithKey(ctx, key, compose.DocxMIMEType, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("save output: %w", err)
		}
		return nil
	}
	_, _, _, err := s.store.Save(ctx, "conversions", path.Base(key), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("save output: %w", err)
	}
	return nil
}

// advance moves the record through the state machine and persists it.
func (s *Service) advance(ctx context.Context, rec *Conversion, event Event) error {
	next, err := Transition(rec.Status, event)
	if err != nil {
		return err
	}
	rec.Status = next
	rec.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, *rec); err != nil {
		return fmt.Errorf("update conversion record: %w", err)
	}
	return nil
}

// fail stamps the record with the failure taxonomy and returns the original
// stage error.
func (s *Service) fail(ctx context.Context, rec Conversion, stageErr error) (Conversion, error) {
	metrics.IncConversionFailed()
	next, terr := Transition(rec.Status, EventFail)
	if terr == nil {
		rec.Status = next
	}
	rec.ErrorCode = ErrorCode(stageErr)
	rec.ErrorMessage = UserMessage(stageErr)
	rec.UpdatedAt = s.now().UTC()
	if uerr := s.repo.Update(ctx, rec); uerr != nil {
		telemetry.Error("record failure update failed", map[string]any{
			"conversionId": rec.ID,
			"error":        uerr.Error(),
		})
	}
	telemetry.Error("conversion failed", map[string]any{
		"conversionId": rec.ID,
		"stage":        string(rec.Status),
		"code":         rec.ErrorCode,
		"error":        stageErr.Error(),
	})
	return rec, stageErr
}

func validateInput(in ConvertInput) error {
	if err := in.Info.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	sources := 0
	if len(in.Data) > 0 {
		sources++
	}
	if in.SourceKey != "" {
		sources++
	}
	if in.SourceURL != "" {
		sources++
	}
	if sources == 0 {
		return fmt.Errorf("%w: no resume provided", ErrValidation)
	}
	if sources > 1 {
		return fmt.Errorf("%w: provide exactly one resume source", ErrValidation)
	}
	if len(in.Data) > 0 && in.FileName == "" && in.MimeType == "" {
		return fmt.Errorf("%w: resume file type is unknown", ErrValidation)
	}
	return nil
}

// applyCandidateInfo makes the form fields authoritative over whatever the
// model put in the personal section.
func applyCandidateInfo(p *model.ParsedResume, info model.CandidateInfo) {
	p.CandidateName = info.CandidateName
	p.Nationality = info.Nationality
	p.Gender = info.Gender
	p.ExpectedSalary = info.ExpectedSalary
	p.NoticePeriod = info.NoticePeriod
}
