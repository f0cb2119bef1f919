package service

import (
	"bytes"
	"context"

	"github.com/gocarina/gocsv"

	"github.com/nextstep/nextstep/internal/api/dto"
	"github.com/nextstep/nextstep/internal/domain/payment"
	"github.com/nextstep/nextstep/internal/domain/subscriber"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// ExportService produces CSV reports for tenant data.
type ExportService interface {
	// ExportPayments returns the tenant's payment history as CSV, newest
	// first, with the subscriber name resolved per row.
	ExportPayments(ctx context.Context, req *dto.ListPaymentsRequest) ([]byte, int, error)

	// ExportSubscribers returns the tenant's subscriber roster as CSV.
	ExportSubscribers(ctx context.Context, req *dto.ListSubscribersRequest) ([]byte, int, error)
}

type exportService struct {
	ServiceParams
}

func NewExportService(params ServiceParams) ExportService {
	return &exportService{
		ServiceParams: params,
	}
}

// paymentCSV represents the CSV structure for the payment report
type paymentCSV struct {
	PaymentID      string `csv:"payment_id"`
	SubscriberID   string `csv:"subscriber_id"`
	SubscriberName string `csv:"subscriber_name"`
	Amount         string `csv:"amount"`
	Mode           string `csv:"mode"`
	Status         string `csv:"status"`
	TransactionID  string `csv:"transaction_id"`
	PaidAt         string `csv:"paid_at"`
}

// subscriberCSV represents the CSV structure for the subscriber report
type subscriberCSV struct {
	SubscriberID string `csv:"subscriber_id"`
	Name         string `csv:"name"`
	Email        string `csv:"email"`
	Phone        string `csv:"phone"`
	Plan         string `csv:"plan"`
	StartDate    string `csv:"start_date"`
	ExpiryDate   string `csv:"expiry_date"`
	SubStatus    string `csv:"subscription_status"`
	FeesPaid     string `csv:"fees_paid"`
	PendingFees  string `csv:"pending_fees"`
}

func (s *exportService) ExportPayments(ctx context.Context, req *dto.ListPaymentsRequest) ([]byte, int, error) {
	if req == nil {
		req = &dto.ListPaymentsRequest{QueryFilter: *types.NewNoLimitQueryFilter()}
	}

	payments, err := s.PaymentRepo.List(ctx, req.ToFilter())
	if err != nil {
		return nil, 0, err
	}

	names, err := s.subscriberNames(ctx, payments)
	if err != nil {
		return nil, 0, err
	}

	records := make([]*paymentCSV, 0, len(payments))
	for _, p := range payments {
		records = append(records, &paymentCSV{
			PaymentID:      p.ID,
			SubscriberID:   p.SubscriberID,
			SubscriberName: names[p.SubscriberID],
			Amount:         p.Amount.String(),
			Mode:           string(p.Mode),
			Status:         string(p.PaymentStatus),
			TransactionID:  p.TransactionID,
			PaidAt:         p.PaidAt.Format("2006-01-02 15:04:05"),
		})
	}

	csvBytes, err := marshalCSV(records)
	if err != nil {
		return nil, 0, err
	}

	s.Logger.Infow("payment report exported", "records", len(records))
	return csvBytes, len(records), nil
}

func (s *exportService) ExportSubscribers(ctx context.Context, req *dto.ListSubscribersRequest) ([]byte, int, error) {
	if req == nil {
		req = &dto.ListSubscribersRequest{QueryFilter: *types.NewNoLimitQueryFilter()}
	}

	subs, err := s.SubRepo.List(ctx, req.ToFilter())
	if err != nil {
		return nil, 0, err
	}

	records := make([]*subscriberCSV, 0, len(subs))
	for _, sub := range subs {
		records = append(records, &subscriberCSV{
			SubscriberID: sub.ID,
			Name:         sub.Name,
			Email:        sub.Email,
			Phone:        sub.Phone,
			Plan:         string(sub.Plan),
			StartDate:    sub.StartDate.Format("2006-01-02"),
			ExpiryDate:   sub.ExpiryDate.Format("2006-01-02"),
			SubStatus:    string(sub.SubStatus),
			FeesPaid:     sub.FeesPaid.String(),
			PendingFees:  sub.PendingFees.String(),
		})
	}

	csvBytes, err := marshalCSV(records)
	if err != nil {
		return nil, 0, err
	}

	s.Logger.Infow("subscriber report exported", "records", len(records))
	return csvBytes, len(records), nil
}

func (s *exportService) subscriberNames(ctx context.Context, payments []*payment.Payment) (map[string]string, error) {
	ids := make([]string, 0, len(payments))
	seen := map[string]bool{}
	for _, p := range payments {
		if !seen[p.SubscriberID] {
			seen[p.SubscriberID] = true
			ids = append(ids, p.SubscriberID)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	subs, err := s.SubRepo.List(ctx, &subscriber.Filter{
		QueryFilter:   types.NewNoLimitQueryFilter(),
		SubscriberIDs: ids,
	})
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(subs))
	for _, sub := range subs {
		names[sub.ID] = sub.Name
	}
	return names, nil
}

func marshalCSV(records interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gocsv.Marshal(records, &buf); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to marshal data to CSV").
			Mark(ierr.ErrInternal)
	}
	return buf.Bytes(), nil
}
