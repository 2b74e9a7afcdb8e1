package email

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/jhenrym/famlife/internal/config"
	"github.com/jhenrym/famlife/internal/storage"
)

// seenCacheSize bounds the UID dedup cache. Receipts arrive a few per day,
// so this covers months of traffic.
const seenCacheSize = 512

// Scraper polls an IMAP mailbox for receipt emails, extracts the purchase
// details, and files them as receipts.
type Scraper struct {
	cfg    config.IMAPConfig
	store  storage.Store
	logger *zap.Logger
	seen   *lru.Cache[uint32, struct{}]
}

func NewScraper(cfg config.IMAPConfig, store storage.Store, logger *zap.Logger) (*Scraper, error) {
	if cfg.User == "" || cfg.Password == "" {
		return nil, fmt.Errorf("imap credentials not configured")
	}
	seen, err := lru.New[uint32, struct{}](seenCacheSize)
	if err != nil {
		return nil, err
	}
	return &Scraper{cfg: cfg, store: store, logger: logger, seen: seen}, nil
}

// Run polls the mailbox until ctx-like stop signal fires on the done channel.
func (s *Scraper) Run(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First pass immediately so a fresh start drains the backlog.
	if err := s.ProcessOnce(); err != nil {
		s.logger.Error("receipt scan failed", zap.Error(err))
	}

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := s.ProcessOnce(); err != nil {
				s.logger.Error("receipt scan failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce connects, scans unseen messages, logs any receipts found, and
// disconnects. Each message is handled independently; one bad email never
// aborts the pass.
func (s *Scraper) ProcessOnce() error {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port), nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", s.cfg.Host, err)
	}
	defer c.Logout()

	if err := c.Login(s.cfg.User, s.cfg.Password); err != nil {
		return fmt.Errorf("imap login: %w", err)
	}
	if _, err := c.Select(s.cfg.Mailbox, false); err != nil {
		return fmt.Errorf("selecting %s: %w", s.cfg.Mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return fmt.Errorf("searching mailbox: %w", err)
	}
	if len(uids) == 0 {
		return nil
	}

	var pending []uint32
	for _, uid := range uids {
		if _, dup := s.seen.Get(uid); !dup {
			pending = append(pending, uid)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	s.logger.Info("scanning messages", zap.Int("count", len(pending)))

	seqset := new(imap.SeqSet)
	seqset.AddNum(pending...)

	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, 10)
	fetchDone := make(chan error, 1)
	go func() {
		fetchDone <- c.UidFetch(seqset, []imap.FetchItem{imap.FetchUid, imap.FetchEnvelope, section.FetchItem()}, messages)
	}()

	var processed []uint32
	for msg := range messages {
		s.seen.Add(msg.Uid, struct{}{})
		if s.processMessage(msg, section) {
			processed = append(processed, msg.Uid)
		}
	}
	if err := <-fetchDone; err != nil {
		return fmt.Errorf("fetching messages: %w", err)
	}

	if len(processed) > 0 {
		markSet := new(imap.SeqSet)
		markSet.AddNum(processed...)
		item := imap.FormatFlagsOp(imap.AddFlags, true)
		if err := c.UidStore(markSet, item, []interface{}{imap.SeenFlag}, nil); err != nil {
			s.logger.Warn("marking messages seen", zap.Error(err))
		}
	}
	return nil
}

// processMessage extracts a receipt from one message. Returns true when a
// receipt was logged and the message should be marked read.
func (s *Scraper) processMessage(msg *imap.Message, section *imap.BodySectionName) bool {
	subject := ""
	from := ""
	if msg.Envelope != nil {
		subject = msg.Envelope.Subject
		if len(msg.Envelope.From) > 0 {
			from = msg.Envelope.From[0].Address()
		}
	}

	if !LooksLikeReceipt(subject, from) {
		return false
	}

	body := msg.GetBody(section)
	if body == nil {
		s.logger.Warn("message has no body", zap.Uint32("uid", msg.Uid))
		return false
	}

	text, err := s.readBody(body)
	if err != nil {
		s.logger.Warn("reading message body", zap.Uint32("uid", msg.Uid), zap.Error(err))
		return false
	}

	fullText := subject + " " + text
	amount, ok := ExtractAmount(fullText)
	if !ok {
		s.logger.Info("no amount found, skipping", zap.String("subject", subject))
		return false
	}

	now := time.Now().UTC()
	receipt := storage.Receipt{
		Amount:      amount,
		Merchant:    ExtractMerchant(subject, text),
		Date:        ExtractDate(fullText, now),
		Category:    GuessCategory(fullText),
		Notes:       "From email: " + subject,
		ProcessedBy: "email",
		EmailID:     fmt.Sprintf("%d", msg.Uid),
		AddedBy:     "email",
	}
	saved, err := s.store.CreateReceipt(receipt)
	if err != nil {
		s.logger.Error("saving receipt", zap.Error(err))
		return false
	}

	s.logger.Info("receipt logged",
		zap.String("id", saved.ID),
		zap.Float64("amount", saved.Amount),
		zap.String("merchant", saved.Merchant),
		zap.String("category", saved.Category))
	return true
}

// readBody walks the MIME structure and collects text. Plain parts are used
// as-is, HTML parts are stripped, and PDF attachments get their text pulled
// out as a fallback for merchants that only attach the receipt.
func (s *Scraper) readBody(r io.Reader) (string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing mail: %w", err)
	}

	var plain, htmlText, pdfText strings.Builder
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading mime part: %w", err)
		}

		switch header := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := header.ContentType()
			data, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			if contentType == "text/html" {
				htmlText.WriteString(StripHTML(string(data)))
			} else {
				plain.Write(data)
				plain.WriteByte('\n')
			}
		case *mail.AttachmentHeader:
			filename, _ := header.Filename()
			if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
				continue
			}
			data, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			text, err := PDFText(data)
			if err != nil {
				s.logger.Warn("pdf attachment unreadable", zap.String("filename", filename), zap.Error(err))
				continue
			}
			pdfText.WriteString(text)
		}
	}

	if plain.Len() > 0 {
		return plain.String(), nil
	}
	if htmlText.Len() > 0 {
		return htmlText.String(), nil
	}
	return pdfText.String(), nil
}
