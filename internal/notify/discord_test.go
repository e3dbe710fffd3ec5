package notify

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/h2non/gock"

	"screening_notifier/internal/model"
)

const (
	webhookHost = "https://discord.example.com"
	webhookPath = "/api/webhooks/123/token"
)

func newInterceptedClient(t *testing.T) *http.Client {
	t.Helper()
	client := &http.Client{}
	gock.InterceptClient(client)
	t.Cleanup(func() {
		gock.RestoreClient(client)
		gock.Off()
	})
	return client
}

func TestDiscordSend(t *testing.T) {
	client := newInterceptedClient(t)
	dates := []model.DateID{"20250103", "20250101"}

	gock.New(webhookHost).
		Post(webhookPath).
		MatchType("json").
		JSON(map[string]string{"content": "Header\n- 2025-01-01\n- 2025-01-03"}).
		Reply(http.StatusNoContent)

	d := NewDiscord(client, webhookHost+webhookPath, "Header")
	if err := d.Send(context.Background(), dates); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !gock.IsDone() {
		t.Error("webhook was not called")
	}
}

func TestDiscordSendDefaultHeader(t *testing.T) {
	client := newInterceptedClient(t)

	gock.New(webhookHost).
		Post(webhookPath).
		JSON(map[string]string{"content": DefaultHeader + "\n- 2025-02-01"}).
		Reply(http.StatusOK)

	d := NewDiscord(client, webhookHost+webhookPath, "")
	if err := d.Send(context.Background(), []model.DateID{"20250201"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !gock.IsDone() {
		t.Error("webhook was not called")
	}
}

func TestDiscordSendFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
	}{
		{
			name: "server error",
			setup: func() {
				gock.New(webhookHost).Post(webhookPath).Reply(http.StatusInternalServerError)
			},
		},
		{
			name: "rate limited",
			setup: func() {
				gock.New(webhookHost).Post(webhookPath).Reply(http.StatusTooManyRequests)
			},
		},
		{
			name: "transport error",
			setup: func() {
				gock.New(webhookHost).Post(webhookPath).ReplyError(errors.New("connection reset"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newInterceptedClient(t)
			tt.setup()

			d := NewDiscord(client, webhookHost+webhookPath, "Header")
			if err := d.Send(context.Background(), []model.DateID{"20250101"}); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
