package frontend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/textproc"
	"github.com/mikey/sms-spam-detector/internal/whitelist"
)

// SMTPOptions configures the SMTP content filter
type SMTPOptions struct {
	ListenAddress   string
	Domain          string
	RelayAddress    string
	MaxMessageBytes int64
	BlockSpam       bool
	SubjectPrefix   string
	SpamHeader      string
	ScoreHeader     string
	ReasonHeader    string
	MaxInputSize    int
	Timeout         time.Duration
}

// deliverFunc hands a filtered message to the next hop
type deliverFunc func(sender string, recipients []string, data []byte) error

// SMTPFilter is a content filter that sits between two MTA hops.
// It classifies each message, stamps it with verdict headers and relays it.
type SMTPFilter struct {
	service   *core.SpamDetectorService
	logger    *zap.Logger
	opts      SMTPOptions
	whitelist *whitelist.Checker
	deliver   deliverFunc

	mu       sync.Mutex
	server   *smtp.Server
	listener net.Listener
}

// filterResult is the outcome of classifying one mail
type filterResult struct {
	verdict *core.Verdict
	reason  string
	err     error
}

func (r filterResult) isSpam() bool {
	return r.verdict != nil && r.verdict.IsSpam()
}

// spamScore is the estimated probability that the message is spam
func (r filterResult) spamScore() float64 {
	if r.verdict == nil {
		return 0
	}
	if !r.verdict.HasConfidence {
		if r.verdict.IsSpam() {
			return 1
		}
		return 0
	}
	if r.verdict.IsSpam() {
		return r.verdict.Confidence
	}
	return 1 - r.verdict.Confidence
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(
	service *core.SpamDetectorService,
	logger *zap.Logger,
	checker *whitelist.Checker,
	opts SMTPOptions,
) *SMTPFilter {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if checker == nil {
		checker = whitelist.NewChecker(nil, logger)
	}

	f := &SMTPFilter{
		service:   service,
		logger:    logger,
		opts:      opts,
		whitelist: checker,
	}
	f.deliver = f.relay
	return f
}

// Start starts the SMTP listener
func (f *SMTPFilter) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ln, err := net.Listen("tcp", f.opts.ListenAddress)
	if err != nil {
		return err
	}

	server := smtp.NewServer(&smtpBackend{filter: f})
	server.Addr = f.opts.ListenAddress
	server.Domain = f.opts.Domain
	server.ReadTimeout = f.opts.Timeout
	server.WriteTimeout = f.opts.Timeout
	server.MaxMessageBytes = f.opts.MaxMessageBytes
	server.MaxRecipients = 50

	f.server = server
	f.listener = ln

	f.logger.Info("SMTP filter starting",
		zap.String("address", ln.Addr().String()),
		zap.String("relay", f.opts.RelayAddress))

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address once started
func (f *SMTPFilter) Addr() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listener == nil {
		return ""
	}
	return f.listener.Addr().String()
}

// Stop stops the SMTP listener
func (f *SMTPFilter) Stop() error {
	f.mu.Lock()
	server := f.server
	f.server = nil
	f.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Close()
}

// ProcessMessage classifies a mail message
func (f *SMTPFilter) ProcessMessage(ctx context.Context, msg *core.Message) (*core.Verdict, error) {
	msg.Text = textproc.TruncateText(msg.Text, f.opts.MaxInputSize)
	return f.service.DetectMessage(ctx, msg)
}

// filter classifies a parsed message unless its sender is whitelisted
func (f *SMTPFilter) filter(ctx context.Context, msg *core.Message) filterResult {
	if f.whitelist.IsWhitelisted(msg.Sender) {
		return filterResult{reason: "Sender domain is whitelisted"}
	}

	verdict, err := f.ProcessMessage(ctx, msg)
	if err != nil {
		return filterResult{reason: core.UserMessageOf(err), err: err}
	}

	reason := fmt.Sprintf("Classified as %s by %s", verdict.Label, verdict.ModelUsed)
	if verdict.HasConfidence {
		reason += fmt.Sprintf(" (confidence %s)", FormatConfidence(verdict.Confidence))
	}
	return filterResult{verdict: verdict, reason: reason}
}

// stamp returns raw with verdict headers prepended and, for spam, the subject prefixed
func (f *SMTPFilter) stamp(raw []byte, subject string, res filterResult) []byte {
	headers, body := splitMessage(raw)

	var out bytes.Buffer
	fmt.Fprintf(&out, "%s: %t\r\n", f.opts.SpamHeader, res.isSpam())
	fmt.Fprintf(&out, "%s: %.4f\r\n", f.opts.ScoreHeader, res.spamScore())
	fmt.Fprintf(&out, "%s: %s\r\n", f.opts.ReasonHeader, sanitizeHeaderValue(res.reason))
	if res.err != nil && core.KindOf(res.err) != core.KindEmptyInput && core.KindOf(res.err) != core.KindNormalizationDegenerate {
		fmt.Fprintf(&out, "X-Spam-Analysis-Error: %s\r\n", sanitizeHeaderValue(string(core.KindOf(res.err))))
	}

	if res.isSpam() && f.opts.SubjectPrefix != "" && !strings.HasPrefix(subject, f.opts.SubjectPrefix) {
		fmt.Fprintf(&out, "Subject: %s\r\n", sanitizeHeaderValue(f.opts.SubjectPrefix+subject))
		headers = dropHeader(headers, "Subject")
	}

	out.Write(headers)
	out.Write(body)
	return out.Bytes()
}

// relay sends the filtered message to the downstream MTA
func (f *SMTPFilter) relay(sender string, recipients []string, data []byte) error {
	if f.opts.RelayAddress == "" {
		f.logger.Warn("No relay address configured, message accepted without forwarding")
		return nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", f.opts.RelayAddress, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(f.opts.Timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient", zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// Already delivered
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies, stamps and relays the message
func (s *smtpSession) Data(r io.Reader) error {
	f := s.filter

	raw, err := io.ReadAll(r)
	if err != nil {
		f.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		f.logger.Warn("Failed to parse email message", zap.Error(err))
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Malformed message",
		}
	}

	text, err := extractTextFromMessage(parsed)
	if err != nil {
		f.logger.Warn("Failed to extract text content", zap.Error(err))
	}

	subject := parsed.Header.Get("Subject")
	if decoded, err := decodeEncodedHeader(subject); err == nil {
		subject = decoded
	}

	sender := s.sender
	if sender == "" {
		sender = parsed.Header.Get("From")
	}
	senderDomain := whitelist.Domain(sender)

	ctx, cancel := context.WithTimeout(context.Background(), f.opts.Timeout)
	defer cancel()

	res := f.filter(ctx, &core.Message{
		Text:    text,
		Subject: subject,
		Sender:  sender,
		Source:  "smtp",
	})
	if res.err != nil {
		f.logger.Warn("Failed to classify email",
			zap.String("sender_domain", senderDomain),
			zap.String("kind", string(core.KindOf(res.err))),
			zap.Error(res.err))
	}

	if res.isSpam() && f.opts.BlockSpam {
		f.logger.Info("Rejecting spam email",
			zap.String("sender_domain", senderDomain),
			zap.Float64("score", res.spamScore()))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      "Rejected as spam",
		}
	}

	if err := f.deliver(s.sender, s.recipients, f.stamp(raw, subject, res)); err != nil {
		f.logger.Error("Failed to relay email",
			zap.String("sender_domain", senderDomain),
			zap.Error(err))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 4, 0},
			Message:      "Temporary relay failure",
		}
	}

	f.logger.Info("Processed email",
		zap.String("sender_domain", senderDomain),
		zap.Bool("is_spam", res.isSpam()),
		zap.Float64("score", res.spamScore()))
	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}

// splitMessage splits raw into its header block, including the blank line, and body
func splitMessage(raw []byte) (headers, body []byte) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return raw[:i+4], raw[i+4:]
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return raw[:i+2], raw[i+2:]
	}
	return raw, nil
}

// dropHeader removes every occurrence of name, including folded continuation lines
func dropHeader(headers []byte, name string) []byte {
	var out bytes.Buffer
	skipping := false
	for _, line := range bytes.SplitAfter(headers, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		if skipping && (line[0] == ' ' || line[0] == '\t') {
			continue
		}
		skipping = false
		if colon := bytes.IndexByte(line, ':'); colon > 0 && strings.EqualFold(string(line[:colon]), name) {
			skipping = true
			continue
		}
		out.Write(line)
	}
	return out.Bytes()
}

// sanitizeHeaderValue keeps a value on one line
func sanitizeHeaderValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}
