package services

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// PushService sends push notifications via Firebase Cloud Messaging.
// A PushService without a client silently drops every message.
type PushService struct {
	client *messaging.Client
}

// NewPushService returns a disabled service when no service account is
// configured or Firebase cannot be initialized.
func NewPushService(ctx context.Context, serviceAccountPath string) *PushService {
	if serviceAccountPath == "" {
		logrus.Info("FCM: no service account configured, push notifications disabled")
		return &PushService{}
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		logrus.WithError(err).Error("FCM: failed to initialize Firebase app")
		return &PushService{}
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		logrus.WithError(err).Error("FCM: failed to get messaging client")
		return &PushService{}
	}

	logrus.Info("FCM: push notifications enabled")
	return &PushService{client: client}
}

func (p *PushService) Enabled() bool {
	return p != nil && p.client != nil
}

// Send delivers one message to a device token. No-op when disabled or token is empty.
func (p *PushService) Send(ctx context.Context, token, title, body string, data map[string]string) {
	if !p.Enabled() || token == "" {
		return
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := p.client.Send(ctx, msg); err != nil {
		logrus.WithError(err).Warn("FCM: failed to send message")
	}
}
