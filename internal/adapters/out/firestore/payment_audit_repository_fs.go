// internal/adapters/out/firestore/payment_audit_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	uc "essentia/internal/application/usecase"
)

// PaymentAuditRepositoryFS implements usecase.AuditWriter.
//
// Two collections:
// - payment_audits: best-effort capture records (observability, not a ledger)
// - order_sync_failures: durable fallback when the post-payment status
//   update exhausted its retries; reconciled manually or by a later job
type PaymentAuditRepositoryFS struct {
	Client *firestore.Client
}

func NewPaymentAuditRepositoryFS(client *firestore.Client) *PaymentAuditRepositoryFS {
	return &PaymentAuditRepositoryFS{Client: client}
}

func (r *PaymentAuditRepositoryFS) RecordCapture(ctx context.Context, a uc.PaymentAudit) error {
	if r == nil || r.Client == nil {
		return errors.New("payment_audit_repository_fs: firestore client is nil")
	}
	pid := strings.TrimSpace(a.PaymentID)
	if pid == "" {
		return errors.New("payment_audit_repository_fs: paymentID is empty")
	}

	_, err := r.Client.Collection("payment_audits").Doc(pid).Set(ctx, map[string]any{
		"paymentId": pid,
		"orderId":   a.OrderID,
		"amountMin": a.AmountMin,
		"currency":  a.Currency,
		"createdAt": a.CreatedAt,
	})
	return err
}

func (r *PaymentAuditRepositoryFS) RecordSyncFailure(ctx context.Context, f uc.SyncFailure) error {
	if r == nil || r.Client == nil {
		return errors.New("payment_audit_repository_fs: firestore client is nil")
	}
	oid := strings.TrimSpace(f.OrderID)
	if oid == "" {
		return errors.New("payment_audit_repository_fs: orderID is empty")
	}

	_, err := r.Client.Collection("order_sync_failures").Doc(oid).Set(ctx, map[string]any{
		"orderId":    oid,
		"paymentId":  f.PaymentID,
		"wantStatus": string(f.WantStatus),
		"reason":     f.Reason,
		"createdAt":  f.CreatedAt,
	})
	return err
}
