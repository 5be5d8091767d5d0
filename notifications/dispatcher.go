package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/anjiri1684/teacheron/events"
	"github.com/anjiri1684/teacheron/models"
)

type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

type UserLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Pusher delivers a realtime payload to a connected user.
type Pusher interface {
	Send(userID uuid.UUID, payload any)
}

// Dispatcher turns domain events into e-mails and realtime pushes.
type Dispatcher struct {
	sub    Subscriber
	users  UserLookup
	mailer Mailer
	pusher Pusher
	logger *slog.Logger
}

func NewDispatcher(sub Subscriber, users UserLookup, mailer Mailer, pusher Pusher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{sub: sub, users: users, mailer: mailer, pusher: pusher, logger: logger}
}

type handlerFunc func(ctx context.Context, payload []byte) error

// Start subscribes to every handled topic. Consumers stop when ctx is done.
func (d *Dispatcher) Start(ctx context.Context) error {
	routes := map[string]handlerFunc{
		events.TopicBidSubmitted:      d.onBidSubmitted,
		events.TopicBidAccepted:       d.onBidAccepted,
		events.TopicTutorDecision:     d.onTutorDecision,
		events.TopicUserStatusChanged: d.onUserStatusChanged,
		events.TopicMessageSent:       d.onMessageSent,
		events.TopicReviewCreated:     d.onReviewCreated,
	}
	for topic, handle := range routes {
		msgs, err := d.sub.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go d.consume(ctx, topic, msgs, handle)
	}
	return nil
}

func (d *Dispatcher) consume(ctx context.Context, topic string, msgs <-chan *message.Message, handle handlerFunc) {
	for msg := range msgs {
		if err := handle(ctx, msg.Payload); err != nil {
			d.logger.ErrorContext(ctx, "notification failed", "topic", topic, "error", err)
		}
		msg.Ack()
	}
}

func decode[T any](payload []byte) (T, error) {
	var v T
	err := json.Unmarshal(payload, &v)
	return v, err
}

func (d *Dispatcher) push(userID uuid.UUID, kind string, data any) {
	if d.pusher == nil {
		return
	}
	d.pusher.Send(userID, map[string]any{"type": kind, "data": data})
}

func (d *Dispatcher) mail(ctx context.Context, userID uuid.UUID, subject, body string) error {
	user, err := d.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	content := fmt.Sprintf("<p>Hi %s,</p><p>%s</p><p>The TeacherOn team</p>", html.EscapeString(name), body)
	return d.mailer.Send(ctx, user.Email, name, subject, content)
}

func (d *Dispatcher) onBidSubmitted(ctx context.Context, payload []byte) error {
	e, err := decode[events.BidSubmitted](payload)
	if err != nil {
		return err
	}
	d.push(e.StudentID, events.TopicBidSubmitted, e)
	return d.mail(ctx, e.StudentID, "New bid on your job",
		fmt.Sprintf("A tutor has bid %.2f on your job. Sign in to review the offer.", e.Amount))
}

func (d *Dispatcher) onBidAccepted(ctx context.Context, payload []byte) error {
	e, err := decode[events.BidAccepted](payload)
	if err != nil {
		return err
	}
	d.push(e.TutorID, events.TopicBidAccepted, e)
	return d.mail(ctx, e.TutorID, "Your bid was accepted",
		"Good news: a student accepted your bid and the job is now assigned to you.")
}

func (d *Dispatcher) onTutorDecision(ctx context.Context, payload []byte) error {
	e, err := decode[events.TutorDecision](payload)
	if err != nil {
		return err
	}
	d.push(e.TutorID, events.TopicTutorDecision, e)
	if e.Status == string(models.ApprovalApproved) {
		return d.mail(ctx, e.TutorID, "Your tutor profile is approved",
			"Your profile is now visible to students.")
	}
	body := "Your tutor profile was not approved. You can update it and resubmit for review."
	if e.Reason != nil {
		body += " Reason: " + html.EscapeString(*e.Reason)
	}
	return d.mail(ctx, e.TutorID, "Your tutor profile needs changes", body)
}

func (d *Dispatcher) onUserStatusChanged(ctx context.Context, payload []byte) error {
	e, err := decode[events.UserStatusChanged](payload)
	if err != nil {
		return err
	}
	if e.Status != string(models.UserStatusBanned) {
		return nil
	}
	body := "Your account has been suspended."
	if e.BanReason != nil {
		body += " Reason: " + html.EscapeString(*e.BanReason)
	}
	return d.mail(ctx, e.UserID, "Your account has been suspended", body)
}

func (d *Dispatcher) onMessageSent(_ context.Context, payload []byte) error {
	e, err := decode[events.MessageSent](payload)
	if err != nil {
		return err
	}
	d.push(e.ReceiverID, events.TopicMessageSent, e)
	return nil
}

func (d *Dispatcher) onReviewCreated(_ context.Context, payload []byte) error {
	e, err := decode[events.ReviewCreated](payload)
	if err != nil {
		return err
	}
	d.push(e.TutorID, events.TopicReviewCreated, e)
	return nil
}
