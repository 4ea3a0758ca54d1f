package push

import (
	"context"

	"github.com/JuanCGomezS/polla-club/internal/domain/notification"
	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
)

// NopSender stands in when push delivery is disabled. It reports every token
// as delivered so the notification job keeps its accounting without reaching
// any provider.
type NopSender struct {
	logger *logging.Logger
}

func NewNopSender(logger *logging.Logger) *NopSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &NopSender{logger: logger}
}

func (s *NopSender) Send(ctx context.Context, tokens []string, msg notification.Message) ([]notification.SendReport, error) {
	s.logger.DebugContext(ctx, "push delivery disabled, dropping message", "title", msg.Title, "token_count", len(tokens))

	reports := make([]notification.SendReport, 0, len(tokens))
	for _, token := range tokens {
		reports = append(reports, notification.SendReport{Token: token, OK: true})
	}
	return reports, nil
}
