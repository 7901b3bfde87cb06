package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
	"github.com/hilthontt/doctrack/internal/infrastructure/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "doctrack/usecases/document"

// Form actions accepted by Transition.
const (
	ActionReceive = "receive"
	ActionForward = "forward"
)

type DocumentUseCase interface {
	Submit(ctx context.Context, fields map[string]string) (*domain.Document, error)
	Receive(ctx context.Context, id string, at domain.Location) (*domain.Document, error)
	Forward(ctx context.Context, id string, to domain.Location) (*domain.Document, error)
	// Transition dispatches on a form action: "receive", "forward", or ""
	// for a plain update of the current location.
	Transition(ctx context.Context, id, action string, at domain.Location) (*domain.Document, error)

	Get(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	ListByDepartment(ctx context.Context, department string) (domain.Department, []domain.Document, error)
	History(ctx context.Context, id string) ([]domain.AuditEntry, error)
	Details(ctx context.Context, id string) (*Details, error)
}

// Details is everything the QR view page shows for one document.
type Details struct {
	Document domain.Document
	History  []domain.AuditEntry
	CodeURL  string
}

type MetricsRecorder interface {
	IncDocumentTransition(action, outcome string)
}

type Config struct {
	// BaseURL prefixes the link encoded into each QR code.
	BaseURL string
	Now     func() time.Time
}

type documentUseCase struct {
	documents domain.DocumentRepository
	audits    domain.AuditRepository
	codes     domain.CodeGenerator
	publisher domain.DocumentEventPublisher
	metrics   MetricsRecorder
	logger    logging.Logger
	tracer    trace.Tracer
	baseURL   string
	now       func() time.Time
}

func NewDocumentUseCase(
	cfg Config,
	documents domain.DocumentRepository,
	audits domain.AuditRepository,
	codes domain.CodeGenerator,
	publisher domain.DocumentEventPublisher,
	metrics MetricsRecorder,
	logger logging.Logger,
) DocumentUseCase {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &documentUseCase{
		documents: documents,
		audits:    audits,
		codes:     codes,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		tracer:    tracing.GetTracer(tracerName),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		now:       now,
	}
}

func (uc *documentUseCase) Submit(ctx context.Context, fields map[string]string) (doc *domain.Document, err error) {
	ctx, span := uc.tracer.Start(ctx, "document.Submit")
	defer func() {
		tracing.RecordError(span, err)
		uc.record(domain.ActionSubmit, err)
		span.End()
	}()

	now := uc.now()

	doc, err = domain.NewDocument(fields, now)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("document.id", doc.ID))

	// the row is only written once its code and first history entry exist
	entry := doc.SubmitEntry(now)
	err = uc.documents.Create(ctx, doc, func(d *domain.Document) error {
		if err := uc.codes.Generate(ctx, d.ID, uc.editURL(d.ID)); err != nil {
			uc.logger.Error(logging.Storage, logging.QRGenerate, "failed to generate qr code", map[logging.ExtraKey]any{
				logging.DocumentID:   d.ID,
				logging.ErrorMessage: err.Error(),
			})
			return fmt.Errorf("generate qr code: %w", err)
		}
		return uc.appendAudit(ctx, d.ID, entry)
	})
	if err != nil {
		uc.logger.Error(logging.Storage, logging.TableWrite, "failed to store document", map[logging.ExtraKey]any{
			logging.DocumentID:   doc.ID,
			logging.ErrorMessage: err.Error(),
		})
		return nil, err
	}

	uc.publish(ctx, doc.ID, entry, now)

	uc.logger.Info(logging.Internal, logging.Submit, "document submitted", map[logging.ExtraKey]any{
		logging.DocumentID: doc.ID,
	})
	return doc, nil
}

func (uc *documentUseCase) Receive(ctx context.Context, id string, at domain.Location) (*domain.Document, error) {
	return uc.move(ctx, id, domain.ActionReceive, func(d *domain.Document, now time.Time) (domain.AuditEntry, error) {
		return d.Receive(domain.ActionReceive, at, now), nil
	})
}

func (uc *documentUseCase) Forward(ctx context.Context, id string, to domain.Location) (*domain.Document, error) {
	return uc.move(ctx, id, domain.ActionForward, func(d *domain.Document, now time.Time) (domain.AuditEntry, error) {
		return d.Forward(to, now)
	})
}

func (uc *documentUseCase) Transition(ctx context.Context, id, action string, at domain.Location) (*domain.Document, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionReceive:
		return uc.Receive(ctx, id, at)
	case ActionForward:
		return uc.Forward(ctx, id, at)
	case "":
		return uc.move(ctx, id, domain.ActionUpdate, func(d *domain.Document, now time.Time) (domain.AuditEntry, error) {
			return d.Receive(domain.ActionUpdate, at, now), nil
		})
	default:
		uc.record("Invalid", domain.ErrInvalidAction)
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAction, action)
	}
}

// move applies one transition and appends its audit entry inside the
// repository's read-modify-write cycle, so a failed append leaves the
// document where it was.
func (uc *documentUseCase) move(
	ctx context.Context,
	id string,
	action domain.AuditAction,
	apply func(d *domain.Document, now time.Time) (domain.AuditEntry, error),
) (doc *domain.Document, err error) {
	ctx, span := uc.tracer.Start(ctx, "document."+string(action),
		trace.WithAttributes(attribute.String("document.id", id)))
	defer func() {
		tracing.RecordError(span, err)
		uc.record(action, err)
		span.End()
	}()

	now := uc.now()
	var entry domain.AuditEntry

	doc, err = uc.documents.Update(ctx, id, func(d *domain.Document) error {
		e, err := apply(d, now)
		if err != nil {
			return err
		}
		entry = e
		return uc.appendAudit(ctx, id, entry)
	})
	if err != nil {
		if !isClientError(err) {
			uc.logger.Error(logging.Storage, logging.Transition, "failed to update document", map[logging.ExtraKey]any{
				logging.DocumentID:   id,
				logging.Action:       string(action),
				logging.ErrorMessage: err.Error(),
			})
		}
		return nil, err
	}

	uc.publish(ctx, id, entry, now)

	uc.logger.Info(logging.Internal, logging.Transition, "document moved", map[logging.ExtraKey]any{
		logging.DocumentID: id,
		logging.Action:     string(action),
		logging.Place:      entry.Place,
	})
	return doc, nil
}

func (uc *documentUseCase) Get(ctx context.Context, id string) (*domain.Document, error) {
	ctx, span := uc.tracer.Start(ctx, "document.Get", trace.WithAttributes(attribute.String("document.id", id)))
	defer span.End()

	doc, err := uc.documents.Get(ctx, id)
	tracing.RecordError(span, err)
	return doc, err
}

func (uc *documentUseCase) List(ctx context.Context) ([]domain.Document, error) {
	ctx, span := uc.tracer.Start(ctx, "document.List")
	defer span.End()

	docs, err := uc.documents.List(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// ListByDepartment returns the documents currently held by department. An
// unknown department is rejected before anything is read.
func (uc *documentUseCase) ListByDepartment(ctx context.Context, department string) (domain.Department, []domain.Document, error) {
	dept, err := domain.ParseDepartment(department)
	if err != nil {
		return "", nil, err
	}

	docs, err := uc.List(ctx)
	if err != nil {
		return "", nil, err
	}

	held := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if dept.Holds(d.RecentPlace) {
			held = append(held, d)
		}
	}
	return dept, held, nil
}

func (uc *documentUseCase) History(ctx context.Context, id string) ([]domain.AuditEntry, error) {
	ctx, span := uc.tracer.Start(ctx, "document.History", trace.WithAttributes(attribute.String("document.id", id)))
	defer span.End()

	entries, err := uc.audits.History(ctx, id)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

func (uc *documentUseCase) Details(ctx context.Context, id string) (*Details, error) {
	doc, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := uc.codes.URL(id)
	if err != nil {
		return nil, err
	}

	history, err := uc.History(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Details{Document: *doc, History: history, CodeURL: url}, nil
}

// editURL is the link encoded into a document's QR code.
func (uc *documentUseCase) editURL(id string) string {
	return uc.baseURL + "/EditDetail/" + id
}

func (uc *documentUseCase) appendAudit(ctx context.Context, id string, entry domain.AuditEntry) error {
	if err := uc.audits.Append(ctx, id, entry); err != nil {
		uc.logger.Error(logging.Storage, logging.AuditAppend, "failed to append audit entry", map[logging.ExtraKey]any{
			logging.DocumentID:   id,
			logging.Action:       string(entry.Action),
			logging.ErrorMessage: err.Error(),
		})
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// publish never fails the transition; the move is already persisted.
func (uc *documentUseCase) publish(ctx context.Context, id string, entry domain.AuditEntry, now time.Time) {
	if uc.publisher == nil {
		return
	}

	event := domain.DocumentEvent{
		Type:       domain.EventTypeFor(entry.Action),
		DocumentID: id,
		Entry:      entry,
		OccurredAt: now.UTC(),
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn(logging.Internal, logging.Publish, "failed to publish document event", map[logging.ExtraKey]any{
			logging.DocumentID:   id,
			logging.Action:       string(entry.Action),
			logging.ErrorMessage: err.Error(),
		})
	}
}

func (uc *documentUseCase) record(action domain.AuditAction, err error) {
	if uc.metrics == nil {
		return
	}

	outcome := "success"
	switch {
	case err == nil:
	case isClientError(err):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	uc.metrics.IncDocumentTransition(string(action), outcome)
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrInvalidAction) ||
		errors.Is(err, domain.ErrDocumentNotFound)
}
