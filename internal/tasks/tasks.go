package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/logger"
	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/printing"
	"gulmohar/billing/internal/services"
	"gulmohar/billing/internal/storage"
	"gulmohar/billing/internal/utils"
)

// TaskType defines the type of a background task.
const (
	TypeBillArchive           = "bill:pdf:archive"
	TypeMonthlySummaryArchive = "report:monthly:archive"
)

const (
	archiveQueue      = "archive"
	archiveMaxRetry   = 5
	archiveTaskTimeout = 2 * time.Minute
)

// --- Task Client (Enqueuing tasks) ---

func redisClientOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisClientOpt(rdb))
}

// TaskEnqueuer is the part of *asynq.Client used to schedule work.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// BillArchivePayload identifies the bill whose PDF is archived.
type BillArchivePayload struct {
	BillID string `json:"bill_id"`
}

// MonthlySummaryArchivePayload identifies the report month to archive.
type MonthlySummaryArchivePayload struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// Archiver schedules archive tasks. It satisfies services.IBillArchiver.
type Archiver struct {
	client TaskEnqueuer
	log    *logger.Logger
}

func NewArchiver(client TaskEnqueuer, log *logger.Logger) *Archiver {
	return &Archiver{client: client, log: log.Named("archiver")}
}

func (a *Archiver) ArchiveBill(ctx context.Context, billID utils.SixID) error {
	payload, err := json.Marshal(BillArchivePayload{BillID: billID.String()})
	if err != nil {
		return errors.Wrap(err, "marshal bill archive payload")
	}
	// One task per bill; a duplicate enqueue is not an error.
	return a.enqueue(ctx, asynq.NewTask(TypeBillArchive, payload), asynq.TaskID(TypeBillArchive+":"+billID.String()))
}

func (a *Archiver) ArchiveMonthlySummary(ctx context.Context, month, year int) error {
	payload, err := json.Marshal(MonthlySummaryArchivePayload{Month: month, Year: year})
	if err != nil {
		return errors.Wrap(err, "marshal monthly archive payload")
	}
	return a.enqueue(ctx, asynq.NewTask(TypeMonthlySummaryArchive, payload))
}

func (a *Archiver) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	opts = append(opts,
		asynq.Queue(archiveQueue),
		asynq.MaxRetry(archiveMaxRetry),
		asynq.Timeout(archiveTaskTimeout),
	)
	info, err := a.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		a.log.Debugw("archive task already queued", "type", task.Type())
		return nil
	}
	if err != nil {
		return ierr.WithError(err).
			WithMessagef("failed to enqueue %s", task.Type()).
			Mark(ierr.ErrSystem)
	}
	a.log.Debugw("enqueued archive task", "type", task.Type(), "task_id", info.ID)
	return nil
}

var _ services.IBillArchiver = (*Archiver)(nil)

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	billService   services.IBillService
	reportService services.IReportService
	renderer      printing.Renderer
	storage       storage.IS3Storage
	log           *logger.Logger
}

func NewTaskProcessor(
	billService services.IBillService,
	reportService services.IReportService,
	renderer printing.Renderer,
	storage storage.IS3Storage,
	log *logger.Logger,
) *TaskProcessor {
	return &TaskProcessor{
		billService:   billService,
		reportService: reportService,
		renderer:      renderer,
		storage:       storage,
		log:           log.Named("tasks"),
	}
}

// Register adds the processor's handlers to mux.
func (p *TaskProcessor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeBillArchive, p.HandleBillArchiveTask)
	mux.HandleFunc(TypeMonthlySummaryArchive, p.HandleMonthlySummaryArchiveTask)
}

// SetupServer configures an Asynq server and the mux holding the archive
// handlers. The caller runs and shuts down the server.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, concurrency int, log *logger.Logger) (*asynq.Server, *asynq.ServeMux) {
	log = log.Named("asynq")

	srv := asynq.NewServer(
		redisClientOpt(rdb),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				archiveQueue: 1,
			},
			Logger: log,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				log.Errorw("task failed",
					"type", task.Type(),
					"payload", string(task.Payload()),
					"retried", retried,
					"error", err,
				)
			}),
		},
	)

	mux := asynq.NewServeMux()
	processor.Register(mux)
	log.Infow("registered task handlers", "types", []string{TypeBillArchive, TypeMonthlySummaryArchive})

	return srv, mux
}

// --- Task Handlers ---

// HandleBillArchiveTask renders a bill's invoice and stores it in S3.
func (p *TaskProcessor) HandleBillArchiveTask(ctx context.Context, t *asynq.Task) error {
	var payload BillArchivePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal bill archive payload: %v: %w", err, asynq.SkipRetry)
	}

	billID, err := utils.ParseSixID(payload.BillID)
	if err != nil {
		return fmt.Errorf("invalid bill ID %q in payload: %w", payload.BillID, asynq.SkipRetry)
	}

	bill, err := p.billService.GetBill(ctx, billID)
	if err != nil {
		if ierr.IsNotFound(err) {
			p.log.Infow("bill gone before archiving, skipping", "bill_id", payload.BillID)
			return fmt.Errorf("bill %s not found: %w", payload.BillID, asynq.SkipRetry)
		}
		return err
	}

	pdf, err := p.renderer.RenderBill(ctx, bill)
	if err != nil {
		return errors.Wrapf(err, "render invoice %s", bill.InvoiceNumber)
	}

	key := storage.BillKey(bill.InvoiceNumber)
	if err := p.storage.PutPDF(ctx, key, pdf); err != nil {
		return err
	}

	p.log.Infow("archived invoice", "invoice_number", bill.InvoiceNumber, "key", key)
	return nil
}

// HandleMonthlySummaryArchiveTask renders a month's report and stores it in
// S3, replacing any earlier copy.
func (p *TaskProcessor) HandleMonthlySummaryArchiveTask(ctx context.Context, t *asynq.Task) error {
	var payload MonthlySummaryArchivePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal monthly archive payload: %v: %w", err, asynq.SkipRetry)
	}

	summary, err := p.reportService.MonthlySummary(ctx, payload.Month, payload.Year, models.SortAsc)
	if err != nil {
		if ierr.IsValidation(err) {
			return fmt.Errorf("invalid report month %d/%d: %w", payload.Month, payload.Year, asynq.SkipRetry)
		}
		return err
	}

	pdf, err := p.renderer.RenderMonthlySummary(ctx, summary)
	if err != nil {
		return errors.Wrapf(err, "render monthly summary %d-%02d", payload.Year, payload.Month)
	}

	key := storage.MonthlySummaryKey(payload.Year, payload.Month)
	if err := p.storage.PutPDF(ctx, key, pdf); err != nil {
		return err
	}

	p.log.Infow("archived monthly summary", "year", payload.Year, "month", payload.Month, "bills", summary.TotalBills, "key", key)
	return nil
}
