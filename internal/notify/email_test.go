package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "test@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
		FromName:  "",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "Pooja Luthra" {
		t.Errorf("expected default from name 'Pooja Luthra', got %q", sender.fromName)
	}
}

func TestNewSendGridSender_CustomFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
		FromName:  "Custom Name",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "Custom Name" {
		t.Errorf("expected from name 'Custom Name', got %q", sender.fromName)
	}
}

type fakeSendGrid struct {
	sent   *mail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	f.sent = m
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

func TestSendGridSender_Send(t *testing.T) {
	client := &fakeSendGrid{status: 202}
	sender := newSendGridSender(client, SendGridConfig{FromEmail: "hello@poojaluthra.com"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:       "asha@example.com",
		ToName:   "Asha",
		ReplyTo:  "support@poojaluthra.com",
		Subject:  "Booked",
		Body:     "text",
		Category: "booking-confirmation",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := client.sent
	if m.From.Address != "hello@poojaluthra.com" || m.From.Name != "Pooja Luthra" {
		t.Errorf("unexpected from %+v", m.From)
	}
	if m.ReplyTo == nil || m.ReplyTo.Address != "support@poojaluthra.com" {
		t.Errorf("unexpected reply-to %+v", m.ReplyTo)
	}
	if len(m.Categories) != 1 || m.Categories[0] != "booking-confirmation" {
		t.Errorf("unexpected categories %v", m.Categories)
	}
	if len(m.Content) != 2 || m.Content[1].Value != "text" {
		t.Errorf("plain body should double as html, got %+v", m.Content)
	}
}

func TestSendGridSender_SendErrorStatus(t *testing.T) {
	sender := newSendGridSender(&fakeSendGrid{status: 401}, SendGridConfig{FromEmail: "a@b.c"}, nil)
	if err := sender.Send(context.Background(), EmailMessage{To: "x@y.z", Body: "hi"}); err == nil {
		t.Fatal("expected error for 401")
	}
	sender = newSendGridSender(&fakeSendGrid{err: errors.New("dial tcp")}, SendGridConfig{FromEmail: "a@b.c"}, nil)
	if err := sender.Send(context.Background(), EmailMessage{To: "x@y.z", Body: "hi"}); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{
		client: nil,
	}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test",
		Body:    "Test body",
	})

	if err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test Subject",
		Body:    "Test body",
	})

	if err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	client := &fakeSES{}
	sender := newSESSender(client, SESConfig{FromEmail: "hello@poojaluthra.com", ReplyTo: "support@poojaluthra.com"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "asha@example.com",
		Subject: "Booked",
		Body:    "text",
		HTML:    "<p>html</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := client.input
	if got := aws.ToString(in.FromEmailAddress); got != "Pooja Luthra <hello@poojaluthra.com>" {
		t.Errorf("unexpected from %q", got)
	}
	if len(in.ReplyToAddresses) != 1 || in.ReplyToAddresses[0] != "support@poojaluthra.com" {
		t.Errorf("unexpected reply-to %v", in.ReplyToAddresses)
	}
	if aws.ToString(in.Content.Simple.Body.Text.Data) != "text" || aws.ToString(in.Content.Simple.Body.Html.Data) != "<p>html</p>" {
		t.Errorf("unexpected body %+v", in.Content.Simple.Body)
	}
}

func TestSESSender_SendError(t *testing.T) {
	sender := newSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{FromEmail: "a@b.c"}, nil)
	if err := sender.Send(context.Background(), EmailMessage{To: "x@y.z", Body: "hi"}); err == nil {
		t.Fatal("expected error from SES")
	}
	if NewSESSender(nil, SESConfig{}, nil) != nil {
		t.Fatal("expected nil sender without client")
	}
}
