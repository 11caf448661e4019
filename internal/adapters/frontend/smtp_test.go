package frontend

import (
	"errors"
	"strings"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/sms-spam-detector/internal/whitelist"
)

type delivery struct {
	sender     string
	recipients []string
	data       string
}

func newTestSMTP(t *testing.T, opts SMTPOptions, domains ...string) (*SMTPFilter, *[]delivery) {
	t.Helper()
	logger := zap.NewNop()
	if opts.SpamHeader == "" {
		opts.SpamHeader = "X-Spam-Status"
		opts.ScoreHeader = "X-Spam-Score"
		opts.ReasonHeader = "X-Spam-Reason"
	}
	f := NewSMTPFilter(newTestService(t, "model.json", logger), logger, whitelist.NewChecker(domains, logger), opts)

	var sent []delivery
	f.deliver = func(sender string, recipients []string, data []byte) error {
		sent = append(sent, delivery{sender: sender, recipients: recipients, data: string(data)})
		return nil
	}
	return f, &sent
}

func sendMail(t *testing.T, f *SMTPFilter, from, raw string) error {
	t.Helper()
	s := &smtpSession{filter: f}
	require.NoError(t, s.Mail(from, nil))
	require.NoError(t, s.Rcpt("user@example.net", nil))
	return s.Data(strings.NewReader(raw))
}

const spamMail = "From: promo@deals.test\r\n" +
	"To: user@example.net\r\n" +
	"Subject: You won a prize\r\n" +
	"Message-Id: <1@deals.test>\r\n" +
	"\r\n" +
	SampleSpam + "\r\n"

const hamMail = "From: john@corp.test\r\n" +
	"To: user@example.net\r\n" +
	"Subject: Meeting\r\n" +
	"\r\n" +
	SampleHam + "\r\n"

func TestSMTP_SpamIsStamped(t *testing.T) {
	f, sent := newTestSMTP(t, SMTPOptions{SubjectPrefix: "[SPAM] "})

	require.NoError(t, sendMail(t, f, "promo@deals.test", spamMail))
	require.Len(t, *sent, 1)

	d := (*sent)[0]
	require.Equal(t, "promo@deals.test", d.sender)
	require.Equal(t, []string{"user@example.net"}, d.recipients)
	require.True(t, strings.HasPrefix(d.data, "X-Spam-Status: true\r\n"))
	require.Contains(t, d.data, "X-Spam-Score: 0.")
	require.Contains(t, d.data, "X-Spam-Reason: Classified as Spam by multinomial_nb (confidence ")
	require.Contains(t, d.data, "Subject: [SPAM] You won a prize\r\n")
	require.NotContains(t, d.data, "Subject: You won a prize")
	require.Contains(t, d.data, "Message-Id: <1@deals.test>\r\n")
	require.True(t, strings.HasSuffix(d.data, "\r\n\r\n"+SampleSpam+"\r\n"))
}

func TestSMTP_HamPassesThrough(t *testing.T) {
	f, sent := newTestSMTP(t, SMTPOptions{SubjectPrefix: "[SPAM] ", BlockSpam: true})

	require.NoError(t, sendMail(t, f, "john@corp.test", hamMail))
	require.Len(t, *sent, 1)
	require.Contains(t, (*sent)[0].data, "X-Spam-Status: false\r\n")
	require.Contains(t, (*sent)[0].data, "Subject: Meeting\r\n")
	require.Contains(t, (*sent)[0].data, "Classified as Not Spam")
}

func TestSMTP_BlockSpam(t *testing.T) {
	f, sent := newTestSMTP(t, SMTPOptions{BlockSpam: true})

	err := sendMail(t, f, "promo@deals.test", spamMail)
	var smtpErr *smtp.SMTPError
	require.True(t, errors.As(err, &smtpErr))
	require.Equal(t, 550, smtpErr.Code)
	require.Empty(t, *sent)
}

func TestSMTP_WhitelistBypassesClassification(t *testing.T) {
	f, sent := newTestSMTP(t, SMTPOptions{BlockSpam: true}, "deals.test")

	require.NoError(t, sendMail(t, f, "promo@deals.test", spamMail))
	require.Len(t, *sent, 1)
	require.Contains(t, (*sent)[0].data, "X-Spam-Status: false\r\n")
	require.Contains(t, (*sent)[0].data, "X-Spam-Score: 0.0000\r\n")
	require.Contains(t, (*sent)[0].data, "X-Spam-Reason: Sender domain is whitelisted\r\n")
}

func TestSMTP_EmptyMessageIsDelivered(t *testing.T) {
	f, sent := newTestSMTP(t, SMTPOptions{})

	require.NoError(t, sendMail(t, f, "a@b.test", "From: a@b.test\r\n\r\n"))
	require.Len(t, *sent, 1)
	require.Contains(t, (*sent)[0].data, "X-Spam-Status: false\r\n")
	require.Contains(t, (*sent)[0].data, "X-Spam-Reason: Please enter a message to classify.\r\n")
	require.NotContains(t, (*sent)[0].data, "X-Spam-Analysis-Error")
}

func TestSMTP_RelayFailureIsTemporary(t *testing.T) {
	f, _ := newTestSMTP(t, SMTPOptions{})
	f.deliver = func(string, []string, []byte) error { return errors.New("connection refused") }

	err := sendMail(t, f, "john@corp.test", hamMail)
	var smtpErr *smtp.SMTPError
	require.True(t, errors.As(err, &smtpErr))
	require.Equal(t, 451, smtpErr.Code)
}

func TestSMTP_MalformedMessage(t *testing.T) {
	f, sent := newTestSMTP(t, SMTPOptions{})

	err := sendMail(t, f, "a@b.test", "not a header line\r\n")
	require.Error(t, err)
	require.Empty(t, *sent)
}

func TestSMTP_StartStop(t *testing.T) {
	f, _ := newTestSMTP(t, SMTPOptions{ListenAddress: "127.0.0.1:0", Domain: "localhost"})
	require.NoError(t, f.Start())
	require.NotEmpty(t, f.Addr())
	require.NoError(t, f.Stop())
	require.NoError(t, f.Stop())
}

func TestDropHeader_Folded(t *testing.T) {
	headers := []byte("From: a@b\r\nSubject: long\r\n  continued\r\nTo: c@d\r\n\r\n")
	require.Equal(t, "From: a@b\r\nTo: c@d\r\n\r\n", string(dropHeader(headers, "subject")))
}

func TestSplitMessage(t *testing.T) {
	h, b := splitMessage([]byte("A: 1\n\nbody"))
	require.Equal(t, "A: 1\n\n", string(h))
	require.Equal(t, "body", string(b))

	h, b = splitMessage([]byte("A: 1\r\n"))
	require.Equal(t, "A: 1\r\n", string(h))
	require.Empty(t, b)
}
