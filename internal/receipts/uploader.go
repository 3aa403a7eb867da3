package receipts

import (
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/clarity/internal/metrics"
	"github.com/mmynk/clarity/internal/models"
)

// File is an uploaded receipt.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Job asks for File to be stored and attached to an expense.
type Job struct {
	InstitutionID string
	ExpenseID     string
	// SubmittedBy is recorded as the actor of the resulting audit entry.
	SubmittedBy string
	File        File
}

// RefUpdater records the outcome of an upload on the expense.
type RefUpdater interface {
	SetReceiptRef(ctx context.Context, institutionID, expenseID, ref string, entry models.AuditEntry) error
}

const (
	commentAttached    = "Receipt attached"
	commentPlaceholder = "Receipt upload failed; placeholder attached"

	// recordTimeout bounds the write of the final reference. It is applied
	// on a context detached from Close so the placeholder still lands.
	recordTimeout = 10 * time.Second
)

// Uploader runs receipt uploads in the background. Every upload resolves
// the expense's reference to either the stored object or the placeholder.
type Uploader struct {
	blobs   BlobStore
	refs    RefUpdater
	metrics *metrics.Metrics
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewUploader creates an uploader. timeout bounds each upload.
func NewUploader(blobs BlobStore, refs RefUpdater, m *metrics.Metrics, timeout time.Duration) *Uploader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Uploader{
		blobs:   blobs,
		refs:    refs,
		metrics: m,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Enqueue starts uploading job.File and returns immediately.
func (u *Uploader) Enqueue(job Job) {
	u.wg.Add(1)
	u.metrics.UploadStarted()
	go func() {
		defer u.wg.Done()
		u.run(job)
	}()
}

// Wait blocks until every enqueued upload has resolved.
func (u *Uploader) Wait() {
	u.wg.Wait()
}

// Close cancels outstanding uploads and waits for them to fall back to the
// placeholder.
func (u *Uploader) Close() {
	u.cancel()
	u.wg.Wait()
}

func (u *Uploader) run(job Job) {
	ctx, cancel := context.WithTimeout(u.ctx, u.timeout)
	defer cancel()

	ref, err := u.blobs.Put(ctx, objectKey(job), contentType(job.File), job.File.Data)
	result, comment := metrics.UploadStored, commentAttached
	if err != nil {
		slog.Error("Receipt upload failed, attaching placeholder",
			"institution_id", job.InstitutionID,
			"expense_id", job.ExpenseID,
			"file", job.File.Name,
			"error", err,
		)
		ref = models.ReceiptPlaceholder
		result, comment = metrics.UploadPlaceholder, commentPlaceholder
	}
	u.metrics.UploadFinished(result)

	recordCtx, cancelRecord := context.WithTimeout(context.WithoutCancel(u.ctx), recordTimeout)
	defer cancelRecord()

	entry := models.AuditEntry{
		Timestamp: time.Now(),
		UserID:    job.SubmittedBy,
		Action:    models.ActionUpdated,
		Comments:  comment,
	}
	if err := u.refs.SetReceiptRef(recordCtx, job.InstitutionID, job.ExpenseID, ref, entry); err != nil {
		slog.Error("Failed to record receipt reference",
			"institution_id", job.InstitutionID,
			"expense_id", job.ExpenseID,
			"ref", ref,
			"error", err,
		)
		return
	}

	slog.Info("Receipt resolved", "expense_id", job.ExpenseID, "result", result)
}

// objectKey is institution/expense/random.ext; the caller's file name only
// contributes its extension.
func objectKey(job Job) string {
	ext := strings.ToLower(filepath.Ext(job.File.Name))
	return path.Join("receipts", job.InstitutionID, job.ExpenseID, uuid.New().String()+ext)
}

func contentType(f File) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	return "application/octet-stream"
}
