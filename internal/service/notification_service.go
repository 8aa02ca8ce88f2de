package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ams-api/internal/models"
	"github.com/noah-isme/ams-api/pkg/config"
	"github.com/noah-isme/ams-api/pkg/jobs"
	"github.com/noah-isme/ams-api/pkg/mailer"
)

const jobApplicationReceived = "application_received"

var applicationReceivedTemplate = template.Must(template.New("application_received").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hello,</p>
<p><strong>{{.Student.Name}}</strong> ({{.Student.Email}}) applied to <strong>{{.Opening.Name}}</strong> in {{.Opening.Location}}.</p>
<table>
<tr><td>Student ID</td><td>{{.Student.StudentID}}</td></tr>
<tr><td>GPA</td><td>{{printf "%.2f" .Student.GPA}}</td></tr>
<tr><td>Specialization</td><td>{{.Student.Specialization}}</td></tr>
{{- if .Student.MobileNumber}}
<tr><td>Mobile</td><td>{{.Student.MobileNumber}}</td></tr>
{{- end}}
<tr><td>Applied at</td><td>{{.AppliedAt.Format "2006-01-02 15:04 MST"}}</td></tr>
</table>
</body>
</html>`))

type applicationReceivedPayload struct {
	Student   models.Student
	Opening   models.Opening
	AppliedAt time.Time
}

// NotificationService mails companies about new applications from a background queue.
type NotificationService struct {
	queue   *jobs.Queue
	mailer  mailer.Mailer
	metrics *MetricsService
	logger  *zap.Logger
	enabled bool
	now     func() time.Time
}

// NewNotificationService wires the worker queue. When disabled every call is a no-op.
func NewNotificationService(cfg config.NotificationsConfig, m mailer.Mailer, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &NotificationService{
		mailer:  m,
		metrics: metrics,
		logger:  logger,
		enabled: cfg.Enabled && m != nil,
		now:     time.Now,
	}
	svc.queue = jobs.NewQueue("notifications", svc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return svc
}

// Start launches the workers.
func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains in-flight deliveries.
func (s *NotificationService) Stop() {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Stop()
}

// ApplicationReceived queues the mail to the opening's company without blocking the caller.
func (s *NotificationService) ApplicationReceived(_ context.Context, student models.Student, opening models.Opening) error {
	if s == nil || !s.enabled {
		return nil
	}
	err := s.queue.TryEnqueue(jobs.Job{
		Type:    jobApplicationReceived,
		Payload: applicationReceivedPayload{Student: student, Opening: opening, AppliedAt: s.now()},
	})
	if err != nil {
		s.metrics.RecordNotification("dropped")
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(applicationReceivedPayload)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}

	msg, err := renderApplicationReceived(payload)
	if err != nil {
		s.logger.Error("render notification", zap.String("job_id", job.ID), zap.Error(err))
		s.metrics.RecordNotification("failed")
		return nil
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.metrics.RecordNotification("failed")
		return err
	}
	s.metrics.RecordNotification("sent")
	return nil
}

func renderApplicationReceived(payload applicationReceivedPayload) (mailer.Message, error) {
	var buf bytes.Buffer
	if err := applicationReceivedTemplate.Execute(&buf, payload); err != nil {
		return mailer.Message{}, fmt.Errorf("render application mail: %w", err)
	}
	return mailer.Message{
		To:      []string{payload.Opening.CompanyEmail},
		Subject: fmt.Sprintf("New application for %s", payload.Opening.Name),
		HTML:    buf.String(),
	}, nil
}
