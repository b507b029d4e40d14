package distribution

import (
	"context"

	"tubebrief/errors"
	"tubebrief/models"
	"tubebrief/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type service struct {
	summaries      repository.SummaryRepository
	transcriptions repository.TranscriptionRepository
	videos         repository.VideoRepository
	sources        repository.SourceRepository
	recipients     repository.RecipientRepository
	transport      Transport
	limiter        *rate.Limiter
	config         Config
	logger         *logrus.Logger
}

func NewService(
	summaries repository.SummaryRepository,
	transcriptions repository.TranscriptionRepository,
	videos repository.VideoRepository,
	sources repository.SourceRepository,
	recipients repository.RecipientRepository,
	transport Transport,
	config Config,
) Service {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.SendDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(config.SendDelay), 1)
	}
	return &service{
		summaries:      summaries,
		transcriptions: transcriptions,
		videos:         videos,
		sources:        sources,
		recipients:     recipients,
		transport:      transport,
		limiter:        limiter,
		config:         config,
		logger:         logrus.StandardLogger(),
	}
}

func (s *service) Distribute(ctx context.Context, summaryID string) (*Result, error) {
	const op = "DistributionService.Distribute"
	logger := s.logger.WithField("summary_id", summaryID)

	summary, err := s.summaries.Find(ctx, summaryID)
	if err != nil {
		return nil, err
	}
	if summary.Delivered {
		return nil, errors.AlreadyDelivered(op, nil, "Summary has already been delivered")
	}

	summary, video, source, err := s.resolveChain(ctx, summary)
	if err != nil {
		return nil, err
	}

	subscribers, err := s.recipients.SubscribersOf(ctx, source.ID)
	if err != nil {
		return nil, err
	}

	eligible := make([]*models.Recipient, 0, len(subscribers))
	for _, r := range subscribers {
		if !r.Blocked {
			eligible = append(eligible, r)
		}
	}
	logger.WithFields(logrus.Fields{
		"subscribers": len(subscribers),
		"eligible":    len(eligible),
	}).Info("Starting distribution run")

	// Zero live recipients means the summary is trivially distributed.
	if len(eligible) == 0 {
		if err := s.summaries.MarkDelivered(ctx, summary.ID, map[string]string{}); err != nil {
			return nil, err
		}
		return &Result{Status: StatusDelivered, MessagesSent: 0, EligibleRecipients: 0}, nil
	}

	// Rendered exactly once; a render failure aborts before anything is
	// sent or persisted, so the run is safe to retry.
	message, err := renderMessage(summary, video, source)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to render summary message")
	}

	receipts := make(map[string]string)
	for _, recipient := range eligible {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, errors.Internal(op, err, "Distribution cancelled")
		}

		receiptID, err := s.transport.SendMessage(ctx, recipient.ChatID, message)
		if err == nil {
			receipts[recipient.ChatID] = receiptID
			continue
		}

		switch {
		case s.transport.IsUnreachable(err):
			// Persist immediately so concurrent and future runs skip this
			// recipient; not fatal for the batch.
			logger.WithError(err).WithField("chat_id", recipient.ChatID).
				Warn("Recipient unreachable, blocking")
			if berr := s.recipients.SetBlocked(ctx, recipient.ID, true); berr != nil {
				logger.WithError(berr).WithField("recipient_id", recipient.ID).
					Error("Failed to persist blocked flag")
			}
		case s.transport.IsRateLimited(err):
			// The whole channel is throttled; abort and leave the summary
			// undelivered so a retry re-attempts the full eligible set.
			logger.WithError(err).WithField("messages_sent", len(receipts)).
				Warn("Channel rate limited, aborting batch")
			return nil, errors.Internal(op, err, "Messaging channel rate limited")
		default:
			// One bad recipient must not block the rest.
			logger.WithError(err).WithField("chat_id", recipient.ChatID).
				Error("Failed to send to recipient")
		}
	}

	if err := s.summaries.MarkDelivered(ctx, summary.ID, receipts); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"messages_sent": len(receipts),
		"eligible":      len(eligible),
	}).Info("Distribution run completed")

	return &Result{
		Status:             StatusDelivered,
		MessagesSent:       len(receipts),
		EligibleRecipients: len(eligible),
	}, nil
}

// resolveChain walks summary → transcription → video → source.
func (s *service) resolveChain(ctx context.Context, summary *models.Summary) (*models.Summary, *models.Video, *models.Source, error) {
	transcription, err := s.transcriptions.Find(ctx, summary.TranscriptionID)
	if err != nil {
		return nil, nil, nil, err
	}
	video, err := s.videos.Find(ctx, transcription.VideoID)
	if err != nil {
		return nil, nil, nil, err
	}
	source, err := s.sources.Find(ctx, video.SourceID)
	if err != nil {
		return nil, nil, nil, err
	}
	return summary, video, source, nil
}
