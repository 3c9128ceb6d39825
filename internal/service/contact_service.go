package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"contact-service/internal/model"
	"contact-service/internal/util"
)

// ErrThrottled is returned when the client address submitted again
// inside the rate-limit window.
var ErrThrottled = errors.New(msgThrottled)

// ContactService runs the submission pipeline: validate, rate-limit,
// persist, then notify and publish on a best-effort basis.
type ContactService struct {
	store    model.MessageStore
	ledger   model.RateLimitLedger
	notifier model.Notifier
	events   model.EventPublisher
	logger   *zap.Logger

	now func() time.Time
}

// NewContactService wires the pipeline. notifier and events may be nil
// when the corresponding relay is not configured.
func NewContactService(store model.MessageStore, ledger model.RateLimitLedger, notifier model.Notifier, events model.EventPublisher, logger *zap.Logger) *ContactService {
	return &ContactService{
		store:    store,
		ledger:   ledger,
		notifier: notifier,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit processes one contact-form submission from the resolved client
// address. It returns ValidationErrors or ErrThrottled for rejections;
// any other error means persistence failed.
//
// Rejected submissions never reach the store, the notifier, or the
// event publisher. The ledger is only updated on acceptance, before the
// store append, so concurrent submissions from one address cannot both
// pass the window check.
func (s *ContactService) Submit(ctx context.Context, payload *model.SubmissionPayload, clientAddr string) (*model.Submission, error) {
	if errs := ValidatePayload(payload); len(errs) > 0 {
		return nil, errs
	}

	now := s.now().UTC()

	allowed, err := s.ledger.Reserve(ctx, clientAddr, now)
	if err != nil {
		// A broken ledger backend must not take the contact form down.
		s.logger.Warn("rate-limit ledger unavailable, allowing submission",
			util.String("addr", clientAddr),
			util.ErrorField(err),
		)
		allowed = true
	}
	if !allowed {
		return nil, ErrThrottled
	}

	sub := &model.Submission{
		Name:      strings.TrimSpace(payload.Name),
		Email:     strings.TrimSpace(payload.Email),
		Message:   strings.TrimSpace(payload.Message),
		IP:        clientAddr,
		CreatedAt: now,
	}

	if err := s.store.Append(ctx, sub); err != nil {
		return nil, fmt.Errorf("append submission: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, sub); err != nil {
			s.logger.Warn("email relay failed",
				util.String("email", sub.Email),
				util.ErrorField(err),
			)
		}
	}

	if s.events != nil {
		event := &model.AcceptedEvent{
			SubmissionID: sub.ID,
			Email:        sub.Email,
			IP:           sub.IP,
			AcceptedAt:   now,
		}
		if err := s.events.PublishAccepted(ctx, event); err != nil {
			s.logger.Warn("accepted-submission event publish failed",
				util.String("submission_id", sub.ID),
				util.ErrorField(err),
			)
		}
	}

	s.logger.Info("submission accepted",
		util.String("submission_id", sub.ID),
		util.String("addr", clientAddr),
	)
	return sub, nil
}

// List returns all stored submissions, most recent first.
func (s *ContactService) List(ctx context.Context) ([]model.Submission, error) {
	subs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}
