package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/logger"
	"github.com/sangkips/clientbook-api/pkg/pagination"
	"github.com/sirupsen/logrus"
)

// MessageSender delivers a text message and returns the provider message id.
type MessageSender interface {
	Channel(to string) string
	Send(ctx context.Context, to, body string) (string, error)
}

// ReminderService sends win-back messages to at-risk clients. It reads the
// precomputed stats only and never recomputes them.
type ReminderService struct {
	businesses repository.BusinessRepository
	clients    repository.ClientRepository
	reminders  repository.ReminderLogRepository
	segments   *SegmentClassifier
	sender     MessageSender
	cooldown   time.Duration
	now        Clock
	log        *logrus.Logger
}

// NewReminderService creates a new reminder service. A client is reminded
// at most once per cooldown.
func NewReminderService(
	businesses repository.BusinessRepository,
	clients repository.ClientRepository,
	reminders repository.ReminderLogRepository,
	segments *SegmentClassifier,
	sender MessageSender,
	cooldown time.Duration,
	now Clock,
) *ReminderService {
	if now == nil {
		now = SystemClock
	}
	return &ReminderService{
		businesses: businesses,
		clients:    clients,
		reminders:  reminders,
		segments:   segments,
		sender:     sender,
		cooldown:   cooldown,
		now:        now,
		log:        logger.GetLogger("reminders"),
	}
}

// ReminderRunSummary counts what one run did.
type ReminderRunSummary struct {
	Businesses int
	Sent       int
	Skipped    int
	Failed     int
}

// Run processes every active business that has reminders enabled.
func (s *ReminderService) Run(ctx context.Context) (*ReminderRunSummary, error) {
	businesses, err := s.businesses.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}

	summary := &ReminderRunSummary{}
	for i := range businesses {
		b := &businesses[i]
		if !b.Settings.Data().RemindersEnabled {
			continue
		}
		summary.Businesses++
		if err := s.processBusiness(ctx, b, summary); err != nil {
			s.log.WithError(err).WithField("business_id", b.ID).Error("reminder run failed for business")
		}
	}

	s.log.WithFields(logrus.Fields{
		"businesses": summary.Businesses,
		"sent":       summary.Sent,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
	}).Info("reminder run finished")
	return summary, nil
}

func (s *ReminderService) processBusiness(ctx context.Context, b *entity.Business, summary *ReminderRunSummary) error {
	criteria := Criteria(enum.SegmentAtRisk, s.segments.TodayFor(b))
	filter := &repository.ClientFilter{Segment: &criteria, HasPhone: true}
	sort := repository.ClientSort{Field: repository.ClientSortCreatedAt, Order: pagination.SortAsc}
	params := &pagination.PaginationParams{Page: 1, PerPage: pagination.MaxPerPage}

	for {
		clients, total, err := s.clients.List(ctx, b.ID, filter, sort, params)
		if err != nil {
			return fmt.Errorf("list at-risk clients: %w", err)
		}
		for i := range clients {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.remind(ctx, b, &clients[i], summary)
		}
		if len(clients) == 0 || int64(params.Offset()+len(clients)) >= total {
			return nil
		}
		params.Page++
	}
}

func (s *ReminderService) remind(ctx context.Context, b *entity.Business, c *entity.Client, summary *ReminderRunSummary) {
	log := s.log.WithFields(logrus.Fields{"business_id": b.ID, "client_id": c.ID})

	last, err := s.reminders.LastSentAt(ctx, b.ID, c.ID)
	if err != nil {
		log.WithError(err).Warn("could not read reminder history")
		summary.Failed++
		return
	}
	if last != nil && s.now().Sub(*last) < s.cooldown {
		summary.Skipped++
		return
	}

	entry := &entity.ReminderLog{
		BusinessID: b.ID,
		ClientID:   c.ID,
		Channel:    s.sender.Channel(c.Phone),
		Recipient:  c.Phone,
		SentAt:     s.now(),
	}

	providerID, err := s.sender.Send(ctx, c.Phone, reminderBody(b, c))
	if err != nil {
		entry.Status = entity.ReminderStatusFailed
		entry.Error = err.Error()
		summary.Failed++
		log.WithError(err).Warn("reminder not delivered")
	} else {
		entry.Status = entity.ReminderStatusSent
		entry.ProviderID = providerID
		summary.Sent++
	}

	if err := s.reminders.Create(ctx, entry); err != nil {
		log.WithError(err).Error("could not record reminder")
	}
}

func reminderBody(b *entity.Business, c *entity.Client) string {
	tmpl := b.Settings.Data().ReminderMessage
	if tmpl == "" {
		tmpl = entity.DefaultBusinessSettings().ReminderMessage
	}
	return strings.NewReplacer("{name}", c.Name, "{business}", b.Name).Replace(tmpl)
}
